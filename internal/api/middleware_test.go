package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chino-hash/turnero-padel/internal/api/authz"
)

func captureActor(t *testing.T) (http.Handler, **authz.Actor) {
	t.Helper()
	var got *authz.Actor
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = authz.ActorFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	return h, &got
}

func TestWithActorResolvesIdentityHeaders(t *testing.T) {
	handler, got := captureActor(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
	req.Header.Set("X-Actor-Id", "7")
	req.Header.Set("X-Actor-Role", authz.RoleStaff)
	req.Header.Set("X-Actor-Tenant", "3")
	WithActor(handler).ServeHTTP(httptest.NewRecorder(), req)

	actor := *got
	if actor == nil {
		t.Fatal("no actor in context")
	}
	if actor.ID != 7 || actor.Role != authz.RoleStaff {
		t.Errorf("actor = %+v, want id 7 role staff", actor)
	}
	if actor.TenantID == nil || *actor.TenantID != 3 {
		t.Errorf("actor tenant = %v, want 3", actor.TenantID)
	}
}

func TestWithActorDefaultsAndOmissions(t *testing.T) {
	t.Run("no headers means unauthenticated", func(t *testing.T) {
		handler, got := captureActor(t)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
		WithActor(handler).ServeHTTP(httptest.NewRecorder(), req)
		if *got != nil {
			t.Errorf("actor = %+v, want nil", *got)
		}
	})

	t.Run("role defaults to customer", func(t *testing.T) {
		handler, got := captureActor(t)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
		req.Header.Set("X-Actor-Id", "7")
		WithActor(handler).ServeHTTP(httptest.NewRecorder(), req)
		if actor := *got; actor == nil || actor.Role != authz.RoleCustomer {
			t.Errorf("actor = %+v, want customer role", actor)
		}
	})

	t.Run("no tenant header means platform scope", func(t *testing.T) {
		handler, got := captureActor(t)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
		req.Header.Set("X-Actor-Id", "7")
		req.Header.Set("X-Actor-Role", authz.RoleAdmin)
		WithActor(handler).ServeHTTP(httptest.NewRecorder(), req)
		if actor := *got; actor == nil || actor.TenantID != nil {
			t.Errorf("actor = %+v, want nil tenant binding", actor)
		}
	})

	t.Run("malformed id means unauthenticated", func(t *testing.T) {
		handler, got := captureActor(t)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
		req.Header.Set("X-Actor-Id", "not-a-number")
		WithActor(handler).ServeHTTP(httptest.NewRecorder(), req)
		if *got != nil {
			t.Errorf("actor = %+v, want nil", *got)
		}
	})

	t.Run("malformed tenant means unauthenticated", func(t *testing.T) {
		handler, got := captureActor(t)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
		req.Header.Set("X-Actor-Id", "7")
		req.Header.Set("X-Actor-Tenant", "-1")
		WithActor(handler).ServeHTTP(httptest.NewRecorder(), req)
		if *got != nil {
			t.Errorf("actor = %+v, want nil", *got)
		}
	})
}
