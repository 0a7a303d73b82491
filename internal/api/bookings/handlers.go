// internal/api/bookings/handlers.go
package bookings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/chino-hash/turnero-padel/internal/api/apiutil"
	"github.com/chino-hash/turnero-padel/internal/api/authz"
	"github.com/chino-hash/turnero-padel/internal/booking"
	appdb "github.com/chino-hash/turnero-padel/internal/db"
	dbgen "github.com/chino-hash/turnero-padel/internal/db/generated"
	"github.com/chino-hash/turnero-padel/internal/events"
)

var (
	queries   *dbgen.Queries
	store     *appdb.DB
	publisher events.Publisher
	initOnce  sync.Once
)

const bookingQueryTimeout = 5 * time.Second

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(database *appdb.DB, pub events.Publisher) {
	if database == nil {
		return
	}
	initOnce.Do(func() {
		queries = database.Queries
		store = database
		publisher = pub
	})
}

func loadQueries() *dbgen.Queries { return queries }

func loadDB() *appdb.DB { return store }

func publishEvent(ctx context.Context, b dbgen.Booking) {
	if publisher == nil {
		return
	}
	event := booking.Event{
		TenantID:      b.TenantID,
		BookingID:     b.ID,
		Status:        booking.Status(b.Status),
		PaymentStatus: booking.PaymentStatus(b.PaymentStatus),
		OccurredAt:    time.Now().UTC(),
	}
	if err := publisher.PublishBookingEvent(ctx, event); err != nil {
		log.Ctx(ctx).Warn().Err(err).Int64("booking_id", b.ID).Msg("Failed to publish booking event")
	}
}

type bookingRequest struct {
	TenantID        int64  `json:"tenant_id"`
	CourtID         int64  `json:"court_id"`
	BookingDate     string `json:"booking_date"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	TotalPriceCents int64  `json:"total_price_cents"`
	DepositCents    int64  `json:"deposit_cents"`
}

// POST /api/v1/bookings
func HandleBookingCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	database := loadDB()
	if q == nil || database == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var req bookingRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tenantID, err := resolveTenantID(r, req.TenantID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	req.TenantID = tenantID

	if !apiutil.RequireTenantAccess(w, r, tenantID) {
		return
	}

	date, start, end, err := validateBookingInput(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingQueryTimeout)
	defer cancel()

	court, err := q.GetCourtByID(ctx, req.CourtID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Court not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Int64("court_id", req.CourtID).Msg("Failed to fetch court")
		http.Error(w, "Failed to fetch court", http.StatusInternalServerError)
		return
	}
	if court.TenantID != tenantID {
		http.Error(w, "court does not belong to tenant", http.StatusBadRequest)
		return
	}
	if err := withinOperatingHours(court, start, end); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Advisory pre-check; the answer that counts is the one inside the
	// transaction below.
	if err := apiutil.EnsureSlotAvailable(ctx, q, req.CourtID, 0, date, start, end); err != nil {
		writeAvailabilityError(w, logger, err, req.CourtID)
		return
	}

	var created dbgen.Booking
	err = database.RunInTx(ctx, func(txdb *appdb.DB) error {
		qtx := txdb.Queries

		if err := apiutil.EnsureSlotAvailable(ctx, qtx, req.CourtID, 0, date, start, end); err != nil {
			var conflict apiutil.SlotConflictError
			if errors.As(err, &conflict) {
				return apiutil.HandlerError{Status: http.StatusConflict, Message: err.Error(), Err: err}
			}
			return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to check slot availability", Err: err}
		}

		var err error
		created, err = qtx.CreateBooking(ctx, dbgen.CreateBookingParams{
			TenantID:        tenantID,
			CourtID:         req.CourtID,
			BookingDate:     date,
			StartTime:       start,
			EndTime:         end,
			TotalPriceCents: req.TotalPriceCents,
			DepositCents:    req.DepositCents,
			Status:          string(booking.StatusPending),
			PaymentStatus:   string(booking.PaymentPending),
		})
		if err != nil {
			return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to create booking", Err: err}
		}
		return nil
	})
	if err != nil {
		writeHandlerError(w, logger, err, "Failed to create booking")
		return
	}

	publishEvent(r.Context(), created)
	if err := apiutil.WriteJSON(w, http.StatusCreated, created); err != nil {
		logger.Error().Err(err).Int64("booking_id", created.ID).Msg("Failed to write booking response")
	}
}

// PUT /api/v1/bookings/{id}
func HandleBookingUpdate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	database := loadDB()
	if q == nil || database == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	bookingID, err := apiutil.IDFromPath(r, "id")
	if err != nil {
		http.Error(w, "Invalid booking ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingQueryTimeout)
	defer cancel()

	existing, err := q.GetBookingByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Booking not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Int64("booking_id", bookingID).Msg("Failed to fetch booking")
		http.Error(w, "Failed to fetch booking", http.StatusInternalServerError)
		return
	}

	if !apiutil.RequireTenantAccess(w, r, existing.TenantID) {
		return
	}

	var req bookingRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.TenantID != 0 && req.TenantID != existing.TenantID {
		http.Error(w, "tenant_id mismatch between booking and payload", http.StatusBadRequest)
		return
	}
	req.TenantID = existing.TenantID
	if req.CourtID == 0 {
		req.CourtID = existing.CourtID
	}

	date, start, end, err := validateBookingInput(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	court, err := q.GetCourtByID(ctx, req.CourtID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Court not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Int64("court_id", req.CourtID).Msg("Failed to fetch court")
		http.Error(w, "Failed to fetch court", http.StatusInternalServerError)
		return
	}
	if court.TenantID != existing.TenantID {
		http.Error(w, "court does not belong to tenant", http.StatusBadRequest)
		return
	}
	if err := withinOperatingHours(court, start, end); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var updated dbgen.Booking
	err = database.RunInTx(ctx, func(txdb *appdb.DB) error {
		qtx := txdb.Queries

		if _, err := qtx.GetBookingByID(ctx, bookingID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apiutil.HandlerError{Status: http.StatusNotFound, Message: "Booking not found", Err: err}
			}
			return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to fetch booking", Err: err}
		}

		if err := apiutil.EnsureSlotAvailable(ctx, qtx, req.CourtID, bookingID, date, start, end); err != nil {
			var conflict apiutil.SlotConflictError
			if errors.As(err, &conflict) {
				return apiutil.HandlerError{Status: http.StatusConflict, Message: err.Error(), Err: err}
			}
			return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to check slot availability", Err: err}
		}

		var err error
		updated, err = qtx.UpdateBookingTimes(ctx, dbgen.UpdateBookingTimesParams{
			CourtID:         req.CourtID,
			BookingDate:     date,
			StartTime:       start,
			EndTime:         end,
			TotalPriceCents: req.TotalPriceCents,
			DepositCents:    req.DepositCents,
			ID:              bookingID,
		})
		if err != nil {
			return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to update booking", Err: err}
		}
		return nil
	})
	if err != nil {
		writeHandlerError(w, logger, err, "Failed to update booking")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, updated); err != nil {
		logger.Error().Err(err).Int64("booking_id", bookingID).Msg("Failed to write booking response")
	}
}

type statusUpdateRequest struct {
	Status        string `json:"status,omitempty"`
	PaymentStatus string `json:"payment_status,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

// POST /api/v1/bookings/{id}/status
//
// Status changes go through the central transition table; payment-status
// changes are an administrator override of the webhook-driven flow and
// require the admin role.
func HandleBookingStatusUpdate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	database := loadDB()
	if q == nil || database == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	bookingID, err := apiutil.IDFromPath(r, "id")
	if err != nil {
		http.Error(w, "Invalid booking ID", http.StatusBadRequest)
		return
	}

	var req statusUpdateRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Status == "" && req.PaymentStatus == "" {
		http.Error(w, "status or payment_status is required", http.StatusBadRequest)
		return
	}
	if req.Status != "" && !booking.ValidStatus(booking.Status(req.Status)) {
		http.Error(w, "unknown status", http.StatusBadRequest)
		return
	}
	if req.PaymentStatus != "" && !booking.ValidPaymentStatus(booking.PaymentStatus(req.PaymentStatus)) {
		http.Error(w, "unknown payment_status", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingQueryTimeout)
	defer cancel()

	existing, err := q.GetBookingByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Booking not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Int64("booking_id", bookingID).Msg("Failed to fetch booking")
		http.Error(w, "Failed to fetch booking", http.StatusInternalServerError)
		return
	}

	if !apiutil.RequireTenantAccess(w, r, existing.TenantID) {
		return
	}
	if req.PaymentStatus != "" {
		if err := authz.RequireRole(r.Context(), authz.RoleAdmin); err != nil {
			http.Error(w, "payment status override requires admin role", http.StatusForbidden)
			return
		}
	}

	var updated dbgen.Booking
	err = database.RunInTx(ctx, func(txdb *appdb.DB) error {
		var err error
		updated, err = applyTransition(ctx, txdb.Queries, bookingID, req)
		return err
	})
	if err != nil {
		writeHandlerError(w, logger, err, "Failed to update booking status")
		return
	}

	publishEvent(r.Context(), updated)
	if err := apiutil.WriteJSON(w, http.StatusOK, updated); err != nil {
		logger.Error().Err(err).Int64("booking_id", bookingID).Msg("Failed to write booking response")
	}
}

// POST /api/v1/bookings/{id}/cancel
func HandleBookingCancel(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	database := loadDB()
	if q == nil || database == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	bookingID, err := apiutil.IDFromPath(r, "id")
	if err != nil {
		http.Error(w, "Invalid booking ID", http.StatusBadRequest)
		return
	}

	var req statusUpdateRequest
	if r.ContentLength > 0 {
		if err := apiutil.DecodeJSON(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	req.Status = string(booking.StatusCancelled)
	req.PaymentStatus = ""

	ctx, cancel := context.WithTimeout(r.Context(), bookingQueryTimeout)
	defer cancel()

	existing, err := q.GetBookingByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Booking not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Int64("booking_id", bookingID).Msg("Failed to fetch booking")
		http.Error(w, "Failed to fetch booking", http.StatusInternalServerError)
		return
	}

	if !apiutil.RequireTenantAccess(w, r, existing.TenantID) {
		return
	}

	var cancelled dbgen.Booking
	err = database.RunInTx(ctx, func(txdb *appdb.DB) error {
		var err error
		cancelled, err = applyTransition(ctx, txdb.Queries, bookingID, req)
		return err
	})
	if err != nil {
		writeHandlerError(w, logger, err, "Failed to cancel booking")
		return
	}

	publishEvent(r.Context(), cancelled)
	if err := apiutil.WriteJSON(w, http.StatusOK, cancelled); err != nil {
		logger.Error().Err(err).Int64("booking_id", bookingID).Msg("Failed to write booking response")
	}
}

// GET /api/v1/bookings?tenant_id=...&from=...&to=...
func HandleBookingsList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	tenantID, err := resolveTenantID(r, 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !apiutil.RequireTenantAccess(w, r, tenantID) {
		return
	}

	from, err := booking.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		http.Error(w, "from "+err.Error(), http.StatusBadRequest)
		return
	}
	to, err := booking.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		http.Error(w, "to "+err.Error(), http.StatusBadRequest)
		return
	}
	if to < from {
		http.Error(w, "to must not be before from", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingQueryTimeout)
	defer cancel()

	items, err := q.ListBookingsByTenantDateRange(ctx, dbgen.ListBookingsByTenantDateRangeParams{
		TenantID: tenantID,
		FromDate: from,
		ToDate:   to,
	})
	if err != nil {
		logger.Error().Err(err).Int64("tenant_id", tenantID).Msg("Failed to list bookings")
		http.Error(w, "Failed to list bookings", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, items); err != nil {
		logger.Error().Err(err).Int64("tenant_id", tenantID).Msg("Failed to write booking list response")
	}
}

// GET /api/v1/courts/{id}/availability?date=...&start=...&end=...
func HandleAvailabilityCheck(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	courtID, err := apiutil.IDFromPath(r, "id")
	if err != nil {
		http.Error(w, "Invalid court ID", http.StatusBadRequest)
		return
	}

	query := r.URL.Query()
	date, start, end, err := booking.ValidateSlot(query.Get("date"), query.Get("start"), query.Get("end"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingQueryTimeout)
	defer cancel()

	court, err := q.GetCourtByID(ctx, courtID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Court not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Int64("court_id", courtID).Msg("Failed to fetch court")
		http.Error(w, "Failed to fetch court", http.StatusInternalServerError)
		return
	}

	if !apiutil.RequireTenantAccess(w, r, court.TenantID) {
		return
	}

	available, err := apiutil.IsSlotAvailable(ctx, q, courtID, date, start, end)
	if err != nil {
		logger.Error().Err(err).Int64("court_id", courtID).Msg("Failed to check slot availability")
		http.Error(w, "Failed to check slot availability", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]bool{"available": available}); err != nil {
		logger.Error().Err(err).Int64("court_id", courtID).Msg("Failed to write availability response")
	}
}

// applyTransition validates and persists a status and/or payment-status move
// for one booking inside the caller's transaction. Every mutation path (this
// package's direct endpoints, the bulk coordinator, and the webhook
// processor) funnels through the same transition table.
func applyTransition(ctx context.Context, qtx *dbgen.Queries, bookingID int64, req statusUpdateRequest) (dbgen.Booking, error) {
	current, err := qtx.GetBookingByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dbgen.Booking{}, apiutil.HandlerError{Status: http.StatusNotFound, Message: "Booking not found", Err: err}
		}
		return dbgen.Booking{}, apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to fetch booking", Err: err}
	}

	result := current

	if req.Status != "" {
		target := booking.Status(req.Status)
		if err := booking.Transition(booking.Status(current.Status), target); err != nil {
			return dbgen.Booking{}, apiutil.HandlerError{Status: http.StatusConflict, Message: err.Error(), Err: err}
		}
		if target == booking.StatusCancelled {
			result, err = qtx.CancelBooking(ctx, dbgen.CancelBookingParams{
				CancellationReason: apiutil.ToNullString(req.Reason),
				ID:                 bookingID,
			})
		} else {
			result, err = qtx.UpdateBookingStatus(ctx, dbgen.UpdateBookingStatusParams{
				Status: string(target),
				ID:     bookingID,
			})
		}
		if err != nil {
			return dbgen.Booking{}, apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to update booking status", Err: err}
		}
	}

	if req.PaymentStatus != "" {
		target := booking.PaymentStatus(req.PaymentStatus)
		if err := booking.TransitionPayment(booking.PaymentStatus(result.PaymentStatus), target); err != nil {
			return dbgen.Booking{}, apiutil.HandlerError{Status: http.StatusConflict, Message: err.Error(), Err: err}
		}
		result, err = qtx.UpdateBookingPaymentStatus(ctx, dbgen.UpdateBookingPaymentStatusParams{
			PaymentStatus: string(target),
			ID:            bookingID,
		})
		if err != nil {
			return dbgen.Booking{}, apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to update payment status", Err: err}
		}
	}

	return result, nil
}

func validateBookingInput(req bookingRequest) (string, string, string, error) {
	switch {
	case req.TenantID <= 0:
		return "", "", "", apiutil.FieldError{Field: "tenant_id", Reason: "must be a positive integer"}
	case req.CourtID <= 0:
		return "", "", "", apiutil.FieldError{Field: "court_id", Reason: "must be a positive integer"}
	case req.TotalPriceCents < 0:
		return "", "", "", apiutil.FieldError{Field: "total_price_cents", Reason: "must be 0 or greater"}
	case req.DepositCents < 0:
		return "", "", "", apiutil.FieldError{Field: "deposit_cents", Reason: "must be 0 or greater"}
	case req.DepositCents > req.TotalPriceCents:
		return "", "", "", apiutil.FieldError{Field: "deposit_cents", Reason: "must not exceed total_price_cents"}
	}
	return booking.ValidateSlot(req.BookingDate, req.StartTime, req.EndTime)
}

// withinOperatingHours checks the slot against the court's opening hours.
// Times are HH:MM, so string comparison orders them correctly.
func withinOperatingHours(court dbgen.Court, start, end string) error {
	if start < court.OpensAt || end > court.ClosesAt {
		return apiutil.FieldError{
			Field:  "start_time",
			Reason: fmt.Sprintf("slot must fall within court hours %s-%s", court.OpensAt, court.ClosesAt),
		}
	}
	return nil
}

func resolveTenantID(r *http.Request, payloadTenantID int64) (int64, error) {
	if tenant := authz.TenantFromContext(r.Context()); tenant != nil {
		if payloadTenantID != 0 && payloadTenantID != tenant.ID {
			return 0, errors.New("tenant_id mismatch between request and tenant context")
		}
		return tenant.ID, nil
	}

	if payloadTenantID > 0 {
		return payloadTenantID, nil
	}
	return apiutil.TenantIDFromQuery(r)
}

func writeAvailabilityError(w http.ResponseWriter, logger *zerolog.Logger, err error, courtID int64) {
	var conflict apiutil.SlotConflictError
	if errors.As(err, &conflict) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	logger.Error().Err(err).Int64("court_id", courtID).Msg("Failed to check slot availability")
	http.Error(w, "Failed to check slot availability", http.StatusInternalServerError)
}

func writeHandlerError(w http.ResponseWriter, logger *zerolog.Logger, err error, fallback string) {
	var herr apiutil.HandlerError
	if errors.As(err, &herr) {
		if herr.Status == http.StatusInternalServerError {
			logger.Error().Err(herr.Err).Msg(herr.Message)
		}
		http.Error(w, herr.Message, herr.Status)
		return
	}
	logger.Error().Err(err).Msg(fallback)
	http.Error(w, fallback, http.StatusInternalServerError)
}
