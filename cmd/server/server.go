// cmd/server/server.go
package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/chino-hash/turnero-padel/internal/api"
	"github.com/chino-hash/turnero-padel/internal/api/apiutil"
	"github.com/chino-hash/turnero-padel/internal/api/bookings"
	"github.com/chino-hash/turnero-padel/internal/api/courts"
	"github.com/chino-hash/turnero-padel/internal/api/payments"
	"github.com/chino-hash/turnero-padel/internal/config"
	"github.com/chino-hash/turnero-padel/internal/db"
	"github.com/chino-hash/turnero-padel/internal/ratelimit"
)

func newServer(cfg *config.Config, database *db.DB) *http.Server {
	router := http.NewServeMux()

	handler := api.ChainMiddleware(
		router,
		api.WithLogging,
		api.WithRecovery,
		api.WithActor,
		api.WithRequestID,
		api.WithTenant(database.Queries, cfg.App.BaseDomain),
	)

	registerRoutes(router)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		_ = apiutil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Bookings
	mux.HandleFunc("POST /api/v1/bookings", bookings.HandleBookingCreate)
	mux.HandleFunc("GET /api/v1/bookings", bookings.HandleBookingsList)
	mux.HandleFunc("PUT /api/v1/bookings/{id}", bookings.HandleBookingUpdate)
	mux.HandleFunc("POST /api/v1/bookings/{id}/status", bookings.HandleBookingStatusUpdate)
	mux.HandleFunc("POST /api/v1/bookings/{id}/cancel", bookings.HandleBookingCancel)
	mux.HandleFunc("POST /api/v1/bookings/bulk", bookings.HandleBulkUpdate)

	// Courts
	mux.HandleFunc("POST /api/v1/courts", courts.HandleCourtCreate)
	mux.HandleFunc("GET /api/v1/courts", courts.HandleCourtsList)
	mux.HandleFunc("DELETE /api/v1/courts/{id}", courts.HandleCourtDeactivate)
	mux.HandleFunc("GET /api/v1/courts/{id}/availability", bookings.HandleAvailabilityCheck)

	// Payment provider webhook. The POST side is unauthenticated beyond its
	// signature, so it gets a per-source rate limit.
	limited := ratelimit.Middleware(ratelimit.New(nil))
	mux.Handle("POST /api/v1/payments/webhook", limited(http.HandlerFunc(payments.HandleWebhook)))
	mux.HandleFunc("GET /api/v1/payments/webhook", payments.HandleWebhookInfo)
}
