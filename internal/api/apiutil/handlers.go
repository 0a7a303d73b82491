package apiutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/chino-hash/turnero-padel/internal/api/authz"
)

type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

type HandlerError struct {
	Status  int
	Message string
	Err     error
}

func (e HandlerError) Error() string {
	return e.Message
}

func (e HandlerError) Unwrap() error {
	return e.Err
}

func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return fmt.Errorf("missing request body")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if err := encoder.Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

// RequireTenantAccess writes the appropriate error response and returns false
// when the actor in the request context may not touch the given tenant.
func RequireTenantAccess(w http.ResponseWriter, r *http.Request, tenantID int64) bool {
	logger := log.Ctx(r.Context())
	actor := authz.ActorFromContext(r.Context())
	if err := authz.RequireTenantAccess(r.Context(), tenantID); err != nil {
		switch {
		case errors.Is(err, authz.ErrUnauthenticated):
			logEvent := logger.Warn().Int64("tenant_id", tenantID)
			if actor != nil {
				logEvent = logEvent.Int64("actor_id", actor.ID)
			}
			logEvent.Msg("Tenant access denied: unauthenticated")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
		case errors.Is(err, authz.ErrForbidden):
			logEvent := logger.Warn().Int64("tenant_id", tenantID)
			if actor != nil {
				logEvent = logEvent.Int64("actor_id", actor.ID)
			}
			logEvent.Msg("Tenant access denied: forbidden")
			http.Error(w, "Forbidden", http.StatusForbidden)
		default:
			logEvent := logger.Error().Int64("tenant_id", tenantID).Err(err)
			if actor != nil {
				logEvent = logEvent.Int64("actor_id", actor.ID)
			}
			logEvent.Msg("Tenant access denied: error")
			http.Error(w, "Failed to authorize request", http.StatusInternalServerError)
		}
		return false
	}
	return true
}
