package courts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chino-hash/turnero-padel/internal/api/authz"
	dbgen "github.com/chino-hash/turnero-padel/internal/db/generated"
	"github.com/chino-hash/turnero-padel/internal/testutil"
)

func newTestEnv(t *testing.T) *dbgen.Queries {
	t.Helper()

	database := testutil.NewTestDB(t)
	queries = database.Queries
	t.Cleanup(func() { queries = nil })
	return database.Queries
}

func staffActor(tenantID int64) *authz.Actor {
	return &authz.Actor{ID: 1, Role: authz.RoleStaff, TenantID: &tenantID}
}

func request(t *testing.T, method, target string, body any, actor *authz.Actor) *http.Request {
	t.Helper()

	var r *http.Request
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		r = httptest.NewRequest(method, target, bytes.NewReader(payload))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	return r.WithContext(authz.ContextWithActor(r.Context(), actor))
}

func TestHandleCourtCreateAndList(t *testing.T) {
	q := newTestEnv(t)
	tenant, err := q.CreateTenant(context.Background(), dbgen.CreateTenantParams{Name: "Club Norte", Slug: "club-norte"})
	if err != nil {
		t.Fatalf("create tenant: %v", err)
	}

	w := httptest.NewRecorder()
	HandleCourtCreate(w, request(t, http.MethodPost, "/api/v1/courts", courtRequest{
		TenantID:       tenant.ID,
		Name:           "Court 1",
		BasePriceCents: 2500,
		OpensAt:        "08:00",
		ClosesAt:       "23:00",
	}, staffActor(tenant.ID)))
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d; body = %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	HandleCourtsList(w, request(t, http.MethodGet, fmt.Sprintf("/api/v1/courts?tenant_id=%d", tenant.ID), nil, staffActor(tenant.ID)))
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d; body = %s", w.Code, w.Body.String())
	}
	var courts []dbgen.Court
	if err := json.NewDecoder(w.Body).Decode(&courts); err != nil {
		t.Fatalf("decode courts: %v", err)
	}
	if len(courts) != 1 || courts[0].Name != "Court 1" {
		t.Errorf("courts = %+v, want one named Court 1", courts)
	}
}

func TestHandleCourtCreateValidation(t *testing.T) {
	q := newTestEnv(t)
	tenant, err := q.CreateTenant(context.Background(), dbgen.CreateTenantParams{Name: "Club Norte", Slug: "club-norte"})
	if err != nil {
		t.Fatalf("create tenant: %v", err)
	}

	tests := []struct {
		name string
		req  courtRequest
	}{
		{name: "missing name", req: courtRequest{TenantID: tenant.ID, OpensAt: "08:00", ClosesAt: "22:00"}},
		{name: "negative price", req: courtRequest{TenantID: tenant.ID, Name: "C", BasePriceCents: -1, OpensAt: "08:00", ClosesAt: "22:00"}},
		{name: "bad opens_at", req: courtRequest{TenantID: tenant.ID, Name: "C", OpensAt: "8am", ClosesAt: "22:00"}},
		{name: "closes before opens", req: courtRequest{TenantID: tenant.ID, Name: "C", OpensAt: "22:00", ClosesAt: "08:00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HandleCourtCreate(w, request(t, http.MethodPost, "/api/v1/courts", tt.req, staffActor(tenant.ID)))
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400; body = %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestHandleCourtDeactivate(t *testing.T) {
	q := newTestEnv(t)
	tenant, err := q.CreateTenant(context.Background(), dbgen.CreateTenantParams{Name: "Club Norte", Slug: "club-norte"})
	if err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	court, err := q.CreateCourt(context.Background(), dbgen.CreateCourtParams{
		TenantID: tenant.ID, Name: "Court 1", BasePriceCents: 2500, OpensAt: "08:00", ClosesAt: "23:00",
	})
	if err != nil {
		t.Fatalf("create court: %v", err)
	}

	r := request(t, http.MethodDelete, fmt.Sprintf("/api/v1/courts/%d", court.ID), nil, staffActor(tenant.ID))
	r.SetPathValue("id", fmt.Sprint(court.ID))
	w := httptest.NewRecorder()
	HandleCourtDeactivate(w, r)
	if w.Code != http.StatusNoContent {
		t.Fatalf("deactivate status = %d; body = %s", w.Code, w.Body.String())
	}

	courts, err := q.ListCourts(context.Background(), tenant.ID)
	if err != nil {
		t.Fatalf("list courts: %v", err)
	}
	if len(courts) != 0 {
		t.Errorf("deactivated court still listed: %+v", courts)
	}

	// Second deactivate finds nothing.
	w = httptest.NewRecorder()
	HandleCourtDeactivate(w, r)
	if w.Code != http.StatusNotFound {
		t.Errorf("second deactivate status = %d, want 404", w.Code)
	}
}

func TestHandleCourtDeactivateForeignTenant(t *testing.T) {
	q := newTestEnv(t)
	tenant, err := q.CreateTenant(context.Background(), dbgen.CreateTenantParams{Name: "Club Norte", Slug: "club-norte"})
	if err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	other, err := q.CreateTenant(context.Background(), dbgen.CreateTenantParams{Name: "Club Sur", Slug: "club-sur"})
	if err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	court, err := q.CreateCourt(context.Background(), dbgen.CreateCourtParams{
		TenantID: tenant.ID, Name: "Court 1", BasePriceCents: 2500, OpensAt: "08:00", ClosesAt: "23:00",
	})
	if err != nil {
		t.Fatalf("create court: %v", err)
	}

	r := request(t, http.MethodDelete, fmt.Sprintf("/api/v1/courts/%d", court.ID), nil, staffActor(other.ID))
	r.SetPathValue("id", fmt.Sprint(court.ID))
	w := httptest.NewRecorder()
	HandleCourtDeactivate(w, r)
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}
