// internal/api/bookings/bulk.go
package bookings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/chino-hash/turnero-padel/internal/api/apiutil"
	"github.com/chino-hash/turnero-padel/internal/api/authz"
	"github.com/chino-hash/turnero-padel/internal/booking"
	appdb "github.com/chino-hash/turnero-padel/internal/db"
	dbgen "github.com/chino-hash/turnero-padel/internal/db/generated"
)

// maxBulkBookings caps how many bookings one bulk request may touch.
const maxBulkBookings = 50

type bulkRequest struct {
	BookingIDs    []int64 `json:"booking_ids"`
	Status        string  `json:"status,omitempty"`
	PaymentStatus string  `json:"payment_status,omitempty"`
	Reason        string  `json:"reason,omitempty"`
}

type bulkFailure struct {
	BookingID int64  `json:"booking_id"`
	Error     string `json:"error"`
}

type bulkResponse struct {
	UpdatedCount int           `json:"updated_count"`
	Failures     []bulkFailure `json:"failures"`
}

type bulkRejection struct {
	Error        string  `json:"error"`
	OffendingIDs []int64 `json:"offending_ids"`
}

// POST /api/v1/bookings/bulk
//
// Every id must resolve to an accessible booking before any row is touched:
// a single missing or foreign id rejects the whole batch. Transition
// failures after that gate are per-item and do not stop the rest.
func HandleBulkUpdate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	database := loadDB()
	if q == nil || database == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var req bulkRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := validateBulkRequest(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ids := dedupeIDs(req.BookingIDs)

	ctx, cancel := context.WithTimeout(r.Context(), bookingQueryTimeout)
	defer cancel()

	targets, missing, err := fetchBulkTargets(ctx, q, ids)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to fetch bulk bookings")
		http.Error(w, "Failed to fetch bookings", http.StatusInternalServerError)
		return
	}
	if len(missing) > 0 {
		writeBulkRejection(w, logger, http.StatusNotFound, "one or more booking ids do not exist", missing)
		return
	}

	var foreign []int64
	for _, target := range targets {
		if err := authz.RequireTenantAccess(r.Context(), target.TenantID); err != nil {
			foreign = append(foreign, target.ID)
		}
	}
	if len(foreign) > 0 {
		writeBulkRejection(w, logger, http.StatusForbidden, "one or more booking ids belong to another tenant", foreign)
		return
	}
	if req.PaymentStatus != "" {
		if err := authz.RequireRole(r.Context(), authz.RoleAdmin); err != nil {
			http.Error(w, "payment status override requires admin role", http.StatusForbidden)
			return
		}
	}

	item := statusUpdateRequest{
		Status:        req.Status,
		PaymentStatus: req.PaymentStatus,
		Reason:        req.Reason,
	}

	resp := bulkResponse{Failures: []bulkFailure{}}
	for _, target := range targets {
		var updated dbgen.Booking
		err := database.RunInTx(ctx, func(txdb *appdb.DB) error {
			var err error
			updated, err = applyTransition(ctx, txdb.Queries, target.ID, item)
			return err
		})
		if err != nil {
			resp.Failures = append(resp.Failures, bulkFailure{
				BookingID: target.ID,
				Error:     bulkFailureMessage(err),
			})
			continue
		}
		resp.UpdatedCount++
		publishEvent(r.Context(), updated)
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, resp); err != nil {
		logger.Error().Err(err).Msg("Failed to write bulk response")
	}
}

func validateBulkRequest(req bulkRequest) error {
	if len(req.BookingIDs) == 0 {
		return apiutil.FieldError{Field: "booking_ids", Reason: "must not be empty"}
	}
	if len(req.BookingIDs) > maxBulkBookings {
		return apiutil.FieldError{Field: "booking_ids", Reason: fmt.Sprintf("must not exceed %d ids", maxBulkBookings)}
	}
	for _, id := range req.BookingIDs {
		if id <= 0 {
			return apiutil.FieldError{Field: "booking_ids", Reason: "ids must be positive integers"}
		}
	}
	if req.Status == "" && req.PaymentStatus == "" {
		return errors.New("status or payment_status is required")
	}
	if req.Status != "" && !booking.ValidStatus(booking.Status(req.Status)) {
		return apiutil.FieldError{Field: "status", Reason: "unknown status"}
	}
	if req.PaymentStatus != "" && !booking.ValidPaymentStatus(booking.PaymentStatus(req.PaymentStatus)) {
		return apiutil.FieldError{Field: "payment_status", Reason: "unknown payment_status"}
	}
	return nil
}

func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func fetchBulkTargets(ctx context.Context, q *dbgen.Queries, ids []int64) ([]dbgen.Booking, []int64, error) {
	targets := make([]dbgen.Booking, 0, len(ids))
	var missing []int64
	for _, id := range ids {
		b, err := q.GetBookingByID(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				missing = append(missing, id)
				continue
			}
			return nil, nil, err
		}
		targets = append(targets, b)
	}
	return targets, missing, nil
}

func bulkFailureMessage(err error) string {
	var herr apiutil.HandlerError
	if errors.As(err, &herr) {
		return herr.Message
	}
	return err.Error()
}

func writeBulkRejection(w http.ResponseWriter, logger *zerolog.Logger, status int, message string, ids []int64) {
	if err := apiutil.WriteJSON(w, status, bulkRejection{Error: message, OffendingIDs: ids}); err != nil {
		logger.Error().Err(err).Msg("Failed to write bulk rejection response")
	}
}
