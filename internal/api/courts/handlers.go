// internal/api/courts/handlers.go
package courts

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/chino-hash/turnero-padel/internal/api/apiutil"
	"github.com/chino-hash/turnero-padel/internal/api/authz"
	"github.com/chino-hash/turnero-padel/internal/booking"
	appdb "github.com/chino-hash/turnero-padel/internal/db"
	dbgen "github.com/chino-hash/turnero-padel/internal/db/generated"
)

var (
	queries  *dbgen.Queries
	initOnce sync.Once
)

const courtQueryTimeout = 5 * time.Second

func InitHandlers(database *appdb.DB) {
	if database == nil {
		return
	}
	initOnce.Do(func() {
		queries = database.Queries
	})
}

type courtRequest struct {
	TenantID       int64  `json:"tenant_id"`
	Name           string `json:"name"`
	BasePriceCents int64  `json:"base_price_cents"`
	OpensAt        string `json:"opens_at"`
	ClosesAt       string `json:"closes_at"`
}

func validateCourtRequest(req courtRequest) error {
	switch {
	case req.TenantID <= 0:
		return apiutil.FieldError{Field: "tenant_id", Reason: "must be a positive integer"}
	case req.Name == "":
		return apiutil.FieldError{Field: "name", Reason: "is required"}
	case req.BasePriceCents < 0:
		return apiutil.FieldError{Field: "base_price_cents", Reason: "must be 0 or greater"}
	}
	if _, err := booking.ParseTimeOfDay(req.OpensAt); err != nil {
		return apiutil.FieldError{Field: "opens_at", Reason: err.Error()}
	}
	if _, err := booking.ParseTimeOfDay(req.ClosesAt); err != nil {
		return apiutil.FieldError{Field: "closes_at", Reason: err.Error()}
	}
	if req.ClosesAt <= req.OpensAt {
		return apiutil.FieldError{Field: "closes_at", Reason: "must be after opens_at"}
	}
	return nil
}

// POST /api/v1/courts
func HandleCourtCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if queries == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var req courtRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if tenant := authz.TenantFromContext(r.Context()); tenant != nil && req.TenantID == 0 {
		req.TenantID = tenant.ID
	}
	if err := validateCourtRequest(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !apiutil.RequireTenantAccess(w, r, req.TenantID) {
		return
	}
	if err := authz.RequireRole(r.Context(), authz.RoleStaff); err != nil {
		http.Error(w, "court management requires staff role", http.StatusForbidden)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), courtQueryTimeout)
	defer cancel()

	court, err := queries.CreateCourt(ctx, dbgen.CreateCourtParams{
		TenantID:       req.TenantID,
		Name:           req.Name,
		BasePriceCents: req.BasePriceCents,
		OpensAt:        req.OpensAt,
		ClosesAt:       req.ClosesAt,
	})
	if err != nil {
		logger.Error().Err(err).Int64("tenant_id", req.TenantID).Msg("Failed to create court")
		http.Error(w, "Failed to create court", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, court); err != nil {
		logger.Error().Err(err).Int64("court_id", court.ID).Msg("Failed to write court response")
	}
}

// GET /api/v1/courts?tenant_id=...
func HandleCourtsList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if queries == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var tenantID int64
	if tenant := authz.TenantFromContext(r.Context()); tenant != nil {
		tenantID = tenant.ID
	} else {
		var err error
		tenantID, err = apiutil.TenantIDFromQuery(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	if !apiutil.RequireTenantAccess(w, r, tenantID) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), courtQueryTimeout)
	defer cancel()

	courts, err := queries.ListCourts(ctx, tenantID)
	if err != nil {
		logger.Error().Err(err).Int64("tenant_id", tenantID).Msg("Failed to list courts")
		http.Error(w, "Failed to list courts", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, courts); err != nil {
		logger.Error().Err(err).Int64("tenant_id", tenantID).Msg("Failed to write courts response")
	}
}

// DELETE /api/v1/courts/{id}
//
// Soft delete. Existing bookings keep their court reference; the court just
// stops accepting new ones.
func HandleCourtDeactivate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if queries == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	courtID, err := apiutil.IDFromPath(r, "id")
	if err != nil {
		http.Error(w, "Invalid court ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), courtQueryTimeout)
	defer cancel()

	court, err := queries.GetCourtByID(ctx, courtID)
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
	if err := authz.RequireRole(r.Context(), authz.RoleStaff); err != nil {
		http.Error(w, "court management requires staff role", http.StatusForbidden)
		return
	}

	rows, err := queries.DeactivateCourt(ctx, dbgen.DeactivateCourtParams{
		ID:       courtID,
		TenantID: court.TenantID,
	})
	if err != nil {
		logger.Error().Err(err).Int64("court_id", courtID).Msg("Failed to deactivate court")
		http.Error(w, "Failed to deactivate court", http.StatusInternalServerError)
		return
	}
	if rows == 0 {
		http.Error(w, "Court not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
