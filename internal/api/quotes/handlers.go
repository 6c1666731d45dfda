// internal/api/quotes/handlers.go
package quotes

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/harborlight/tourbook/internal/api/apiutil"
	"github.com/harborlight/tourbook/internal/booking"
	"github.com/harborlight/tourbook/internal/catalog"
	"github.com/harborlight/tourbook/internal/sessions"
)

var (
	catalogSvc   *catalog.Service
	sessionStore *sessions.Store
	initOnce     sync.Once

	nowFunc = time.Now
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(svc *catalog.Service, store *sessions.Store) {
	if svc == nil || store == nil {
		return
	}
	initOnce.Do(func() {
		catalogSvc = svc
		sessionStore = store
	})
}

type createSessionRequest struct {
	TourID int64 `json:"tour_id"`
}

type sessionResponse struct {
	SessionID string        `json:"session_id"`
	TourID    int64         `json:"tour_id"`
	Date      string        `json:"date,omitempty"`
	Time      string        `json:"time,omitempty"`
	Guests    int           `json:"guests,omitempty"`
	Quote     *quotePayload `json:"quote,omitempty"`
}

type quotePayload struct {
	booking.Quote
	GrandTotal string `json:"grand_total"`
}

// POST /api/v1/sessions
func HandleSessionCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if !initialized(w, logger) {
		return
	}

	var req createSessionRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.TourID <= 0 {
		http.Error(w, "tour_id must be greater than 0", http.StatusBadRequest)
		return
	}

	snap, err := catalogSvc.Current()
	if err != nil {
		http.Error(w, "Booking is unavailable, try again shortly", apiutil.StatusForBookingError(err))
		return
	}
	if _, ok := snap.Tour(req.TourID); !ok {
		http.Error(w, "Tour not found", http.StatusNotFound)
		return
	}

	session := sessionStore.Create(req.TourID)
	logger.Info().Str("session_id", session.ID).Int64("tour_id", req.TourID).Msg("Booking session opened")

	response := sessionResponse{SessionID: session.ID, TourID: session.TourID}
	if err := apiutil.WriteJSON(w, http.StatusCreated, response); err != nil {
		logger.Error().Err(err).Msg("Failed to write session response")
	}
}

type selectionRequest struct {
	Date              string                           `json:"date"`
	Time              string                           `json:"time"`
	GuestQuantity     int                              `json:"guest_quantity"`
	DemographicCounts map[int64]int                    `json:"demographic_counts,omitempty"`
	Addons            map[int64]booking.AddonSelection `json:"addons,omitempty"`
}

// PUT /api/v1/sessions/selection?session_id=
//
// Replaces the session's selection. The date/time pair is re-validated
// against the rule set current at update time, not at render time.
func HandleSelectionUpdate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if r.Method != http.MethodPut {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if !initialized(w, logger) {
		return
	}

	sessionID, err := apiutil.RequiredQuery(r, "session_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req selectionRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	session, err := sessionStore.Get(sessionID)
	if err != nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	snap, err := catalogSvc.Current()
	if err != nil {
		http.Error(w, "Booking is unavailable, try again shortly", apiutil.StatusForBookingError(err))
		return
	}
	tour, ok := snap.Tour(session.TourID)
	if !ok {
		http.Error(w, "Tour not found", http.StatusNotFound)
		return
	}

	date, err := booking.ParseCalendarDate(req.Date)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	slot, err := booking.ParseTimeOfDay(req.Time)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.GuestQuantity < tour.MinGuestsPerEvent {
		http.Error(w, fmt.Sprintf("this tour requires at least %d guests", tour.MinGuestsPerEvent), http.StatusBadRequest)
		return
	}

	today := booking.DateOf(nowFunc())
	rules := snap.RuleSetFor(tour.CategoryID)
	if err := booking.ValidateSelection(date, slot, today, tour.Slots, rules); err != nil {
		logger.Info().
			Str("session_id", sessionID).
			Str("date", date.String()).
			Str("time", slot.String()).
			Err(err).
			Msg("Selection rejected by current rule set")
		http.Error(w, "Please pick another date or time", apiutil.StatusForBookingError(err))
		return
	}

	selection := session.Selection.
		WithDateTime(date, slot).
		WithGuests(req.GuestQuantity, req.DemographicCounts).
		WithAddons(req.Addons)

	quote, err := booking.QuoteSelection(selection, snap.PriceTable(tour.TourID), snap.Addons(tour.TourID))
	if err != nil {
		writeQuoteError(w, logger, sessionID, err)
		return
	}
	logClamp(logger, sessionID, quote)

	session, err = sessionStore.SetSelection(sessionID, selection)
	if err != nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, buildSessionResponse(session, quote)); err != nil {
		logger.Error().Err(err).Msg("Failed to write selection response")
	}
}

// GET /api/v1/sessions/quote?session_id=
func HandleQuote(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if !initialized(w, logger) {
		return
	}

	sessionID, err := apiutil.RequiredQuery(r, "session_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	session, err := sessionStore.Get(sessionID)
	if err != nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	snap, err := catalogSvc.Current()
	if err != nil {
		http.Error(w, "Booking is unavailable, try again shortly", apiutil.StatusForBookingError(err))
		return
	}

	quote, err := booking.QuoteSelection(session.Selection,
		snap.PriceTable(session.TourID), snap.Addons(session.TourID))
	if err != nil {
		writeQuoteError(w, logger, sessionID, err)
		return
	}
	logClamp(logger, sessionID, quote)

	if err := apiutil.WriteJSON(w, http.StatusOK, buildSessionResponse(session, quote)); err != nil {
		logger.Error().Err(err).Msg("Failed to write quote response")
	}
}

// DELETE /api/v1/sessions?session_id=
func HandleSessionDelete(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if r.Method != http.MethodDelete {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if !initialized(w, logger) {
		return
	}

	sessionID, err := apiutil.RequiredQuery(r, "session_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sessionStore.Delete(sessionID)
	logger.Info().Str("session_id", sessionID).Msg("Booking session abandoned")
	w.WriteHeader(http.StatusNoContent)
}

func initialized(w http.ResponseWriter, logger *zerolog.Logger) bool {
	if catalogSvc == nil || sessionStore == nil {
		logger.Error().Msg("Quote handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return false
	}
	return true
}

func writeQuoteError(w http.ResponseWriter, logger *zerolog.Logger, sessionID string, err error) {
	status := apiutil.StatusForBookingError(err)
	if status >= http.StatusInternalServerError && !errors.Is(err, booking.ErrNotReady) {
		logger.Error().Err(err).Str("session_id", sessionID).Msg("Quote resolution failed")
		http.Error(w, "Failed to resolve quote", status)
		return
	}
	logger.Info().Err(err).Str("session_id", sessionID).Msg("Quote rejected")
	http.Error(w, err.Error(), status)
}

func logClamp(logger *zerolog.Logger, sessionID string, quote booking.Quote) {
	if quote.Clamped {
		logger.Warn().
			Str("session_id", sessionID).
			Int64("tier_id", quote.TierID).
			Msg("Negative price clamped to zero")
	}
}

func buildSessionResponse(session sessions.Session, quote booking.Quote) sessionResponse {
	response := sessionResponse{
		SessionID: session.ID,
		TourID:    session.TourID,
		Guests:    session.Selection.GuestQuantity,
		Quote: &quotePayload{
			Quote:      quote,
			GrandTotal: apiutil.FormatPriceCents(quote.GrandTotalCents),
		},
	}
	if session.Selection.Date != nil {
		response.Date = session.Selection.Date.String()
	}
	if session.Selection.Slot != nil {
		response.Time = session.Selection.Slot.String()
	}
	return response
}
