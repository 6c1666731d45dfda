// cmd/server/server.go
package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/harborlight/tourbook/internal/api"
	"github.com/harborlight/tourbook/internal/api/availability"
	"github.com/harborlight/tourbook/internal/api/quotes"
	"github.com/harborlight/tourbook/internal/catalog"
	"github.com/harborlight/tourbook/internal/config"
	"github.com/harborlight/tourbook/internal/sessions"
)

func newServer(cfg *config.Config, catalogSvc *catalog.Service) *http.Server {
	router := http.NewServeMux()

	handler := api.ChainMiddleware(
		router,
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
	)

	registerRoutes(router, catalogSvc)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux, catalogSvc *catalog.Service) {
	availability.InitHandlers(catalogSvc)
	quotes.InitHandlers(catalogSvc, sessions.NewStore())

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Availability routes
	mux.HandleFunc("/api/v1/availability/month", availability.HandleMonthView)
	mux.HandleFunc("/api/v1/availability/slots", availability.HandleSlots)

	// Booking session routes
	mux.HandleFunc("/api/v1/sessions", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			quotes.HandleSessionCreate(w, r)
		case http.MethodDelete:
			quotes.HandleSessionDelete(w, r)
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/api/v1/sessions/selection", quotes.HandleSelectionUpdate)
	mux.HandleFunc("/api/v1/sessions/quote", quotes.HandleQuote)
}
