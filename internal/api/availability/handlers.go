// internal/api/availability/handlers.go
package availability

import (
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/harborlight/tourbook/internal/api/apiutil"
	"github.com/harborlight/tourbook/internal/booking"
	"github.com/harborlight/tourbook/internal/catalog"
)

var (
	catalogSvc  *catalog.Service
	catalogOnce sync.Once

	// nowFunc supplies "today" at the HTTP edge; the resolver itself
	// never reads the clock.
	nowFunc = time.Now
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(svc *catalog.Service) {
	if svc == nil {
		return
	}
	catalogOnce.Do(func() {
		catalogSvc = svc
	})
}

type monthViewResponse struct {
	TourID int64               `json:"tour_id"`
	Month  string              `json:"month"`
	Days   []booking.DayStatus `json:"days"`
}

// GET /api/v1/availability/month?tour_id=&month=YYYY-MM
func HandleMonthView(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if catalogSvc == nil {
		logger.Error().Msg("Catalog service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	tourID, err := apiutil.QueryID(r, "tour_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rawMonth, err := apiutil.RequiredQuery(r, "month")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	month, err := booking.ParseCalendarMonth(rawMonth)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	snap, err := catalogSvc.Current()
	if err != nil {
		logger.Warn().Err(err).Msg("Availability requested before catalog load")
		http.Error(w, "Availability information is unavailable, try again shortly", apiutil.StatusForBookingError(err))
		return
	}

	tour, ok := snap.Tour(tourID)
	if !ok {
		http.Error(w, "Tour not found", http.StatusNotFound)
		return
	}

	today := booking.DateOf(nowFunc())
	days := booking.MonthView(month, today, tour.Slots, snap.RuleSetFor(tour.CategoryID))

	response := monthViewResponse{TourID: tourID, Month: month.String(), Days: days}
	if err := apiutil.WriteJSON(w, http.StatusOK, response); err != nil {
		logger.Error().Err(err).Msg("Failed to write month view response")
	}
}

type slotsResponse struct {
	TourID int64    `json:"tour_id"`
	Date   string   `json:"date"`
	Slots  []string `json:"slots"`
}

// GET /api/v1/availability/slots?tour_id=&date=YYYY-MM-DD
func HandleSlots(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if catalogSvc == nil {
		logger.Error().Msg("Catalog service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	tourID, err := apiutil.QueryID(r, "tour_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rawDate, err := apiutil.RequiredQuery(r, "date")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	date, err := booking.ParseCalendarDate(rawDate)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	snap, err := catalogSvc.Current()
	if err != nil {
		logger.Warn().Err(err).Msg("Availability requested before catalog load")
		http.Error(w, "Availability information is unavailable, try again shortly", apiutil.StatusForBookingError(err))
		return
	}

	tour, ok := snap.Tour(tourID)
	if !ok {
		http.Error(w, "Tour not found", http.StatusNotFound)
		return
	}

	today := booking.DateOf(nowFunc())
	response := slotsResponse{TourID: tourID, Date: date.String(), Slots: []string{}}
	if !date.Before(today) {
		for _, slot := range booking.BookableSlots(date, tour.Slots, snap.RuleSetFor(tour.CategoryID)) {
			response.Slots = append(response.Slots, slot.String())
		}
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, response); err != nil {
		logger.Error().Err(err).Msg("Failed to write slots response")
	}
}
