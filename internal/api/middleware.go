// internal/api/middleware.go
package api

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/chino-hash/turnero-padel/internal/api/authz"
	dbgen "github.com/chino-hash/turnero-padel/internal/db/generated"
)

type Middleware func(http.Handler) http.Handler

func ChainMiddleware(h http.Handler, middleware ...Middleware) http.Handler {
	for _, m := range middleware {
		h = m(h)
	}
	return h
}

func WithLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := wrapResponseWriter(w)

		next.ServeHTTP(wrapped, r)

		requestID, _ := r.Context().Value(requestIDContextKey{}).(string)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapped.status).
			Dur("duration", time.Since(start)).
			Str("request_id", requestID).
			Msg("Request completed")
	})
}

func WithRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger := log.Ctx(r.Context())
				stack := debug.Stack()
				logger.Error().
					Interface("error", err).
					Str("stack", string(stack)).
					Msg("Panic recovered")

				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type requestIDContextKey struct{}

func WithRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()

		logger := log.With().Str("request_id", requestID).Logger()

		ctx := context.WithValue(r.Context(), requestIDContextKey{}, requestID)
		ctx = logger.WithContext(ctx)

		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

const (
	headerActorID     = "X-Actor-Id"
	headerActorRole   = "X-Actor-Role"
	headerActorTenant = "X-Actor-Tenant"
)

// WithActor consumes the identity headers stamped by the authenticating
// reverse proxy. Identity-provider integration lives outside this system; by
// the time a request arrives here the proxy has verified the session and
// resolved the caller, so the headers are trusted. Requests without them (or
// with malformed values) stay unauthenticated and are rejected by the
// handlers' authorization checks.
func WithActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawID := strings.TrimSpace(r.Header.Get(headerActorID))
		if rawID == "" {
			next.ServeHTTP(w, r)
			return
		}
		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil || id <= 0 {
			log.Ctx(r.Context()).Warn().Str("actor_id", rawID).Msg("Malformed actor id header, treating request as unauthenticated")
			next.ServeHTTP(w, r)
			return
		}

		actor := &authz.Actor{ID: id, Role: authz.RoleCustomer}
		if role := strings.TrimSpace(r.Header.Get(headerActorRole)); role != "" {
			actor.Role = role
		}
		if rawTenant := strings.TrimSpace(r.Header.Get(headerActorTenant)); rawTenant != "" {
			tenantID, err := strconv.ParseInt(rawTenant, 10, 64)
			if err != nil || tenantID <= 0 {
				log.Ctx(r.Context()).Warn().Str("actor_tenant", rawTenant).Msg("Malformed actor tenant header, treating request as unauthenticated")
				next.ServeHTTP(w, r)
				return
			}
			actor.TenantID = &tenantID
		}

		next.ServeHTTP(w, r.WithContext(authz.ContextWithActor(r.Context(), actor)))
	})
}

// WithTenant resolves the tenant from the subdomain and adds it to context.
// Subdomain format: {tenant-slug}.{base_domain} (e.g. padelclub.localhost).
// Requests without a matching subdomain pass through; handlers that need
// tenant context fall back to explicit tenant ids in the payload.
func WithTenant(queries *dbgen.Queries, baseDomain string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if path == "/health" || path == "/favicon.ico" {
				next.ServeHTTP(w, r)
				return
			}

			logger := log.Ctx(r.Context())

			host := r.Host
			if idx := strings.LastIndex(host, ":"); idx != -1 {
				host = host[:idx]
			}

			if !strings.HasSuffix(host, baseDomain) {
				next.ServeHTTP(w, r)
				return
			}

			subdomain := strings.TrimSuffix(host, "."+baseDomain)
			if subdomain == "" || subdomain == host {
				next.ServeHTTP(w, r)
				return
			}

			queryCtx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel()

			tenant, err := queries.GetTenantBySlug(queryCtx, subdomain)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					logger.Warn().Str("slug", subdomain).Msg("Tenant not found")
					http.Error(w, "Tenant not found", http.StatusNotFound)
					return
				}
				logger.Error().Err(err).Str("slug", subdomain).Msg("Failed to look up tenant")
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			ctx := authz.ContextWithTenant(r.Context(), &authz.Tenant{
				ID:   tenant.ID,
				Name: tenant.Name,
				Slug: tenant.Slug,
			})
			r = r.WithContext(ctx)

			logger.Debug().Int64("tenant_id", tenant.ID).Str("tenant_slug", tenant.Slug).Msg("Tenant resolved from subdomain")
			next.ServeHTTP(w, r)
		})
	}
}

// responseWriter wrapper to capture status code
type responseWriter struct {
	http.ResponseWriter
	status int
}

func wrapResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, status: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
