package bookings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/chino-hash/turnero-padel/internal/api/authz"
	"github.com/chino-hash/turnero-padel/internal/booking"
	appdb "github.com/chino-hash/turnero-padel/internal/db"
	dbgen "github.com/chino-hash/turnero-padel/internal/db/generated"
	"github.com/chino-hash/turnero-padel/internal/events"
	"github.com/chino-hash/turnero-padel/internal/testutil"
)

func newTestEnv(t *testing.T) *appdb.DB {
	t.Helper()

	database := testutil.NewTestDB(t)
	queries = database.Queries
	store = database
	publisher = events.LogPublisher{}
	t.Cleanup(func() {
		queries = nil
		store = nil
		publisher = nil
	})
	return database
}

func seedTenant(t *testing.T, database *appdb.DB, slug string) dbgen.Tenant {
	t.Helper()

	tenant, err := database.Queries.CreateTenant(context.Background(), dbgen.CreateTenantParams{
		Name: slug,
		Slug: slug,
	})
	if err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	return tenant
}

func seedCourt(t *testing.T, database *appdb.DB, tenantID int64, name string) dbgen.Court {
	t.Helper()

	court, err := database.Queries.CreateCourt(context.Background(), dbgen.CreateCourtParams{
		TenantID:       tenantID,
		Name:           name,
		BasePriceCents: 2000,
		OpensAt:        "08:00",
		ClosesAt:       "23:00",
	})
	if err != nil {
		t.Fatalf("create court: %v", err)
	}
	return court
}

func staffActor(tenantID int64) *authz.Actor {
	return &authz.Actor{ID: 1, Role: authz.RoleStaff, TenantID: &tenantID}
}

func withActor(r *http.Request, actor *authz.Actor) *http.Request {
	return r.WithContext(authz.ContextWithActor(r.Context(), actor))
}

func postJSON(t *testing.T, target string, body any) *http.Request {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	r := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(payload))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func createBookingViaAPI(t *testing.T, tenantID, courtID int64, date, start, end string) dbgen.Booking {
	t.Helper()

	r := withActor(postJSON(t, "/api/v1/bookings", bookingRequest{
		TenantID:        tenantID,
		CourtID:         courtID,
		BookingDate:     date,
		StartTime:       start,
		EndTime:         end,
		TotalPriceCents: 8000,
		DepositCents:    4000,
	}), staffActor(tenantID))
	w := httptest.NewRecorder()
	HandleBookingCreate(w, r)

	if w.Code != http.StatusCreated {
		t.Fatalf("create booking: status = %d, body = %s", w.Code, w.Body.String())
	}
	var created dbgen.Booking
	if err := json.NewDecoder(w.Body).Decode(&created); err != nil {
		t.Fatalf("decode booking: %v", err)
	}
	return created
}

func TestHandleBookingCreate(t *testing.T) {
	database := newTestEnv(t)
	tenant := seedTenant(t, database, "club-norte")
	court := seedCourt(t, database, tenant.ID, "Court 1")

	created := createBookingViaAPI(t, tenant.ID, court.ID, "2026-09-01", "10:00", "11:30")

	if created.Status != string(booking.StatusPending) {
		t.Errorf("status = %q, want PENDING", created.Status)
	}
	if created.PaymentStatus != string(booking.PaymentPending) {
		t.Errorf("payment status = %q, want PENDING", created.PaymentStatus)
	}
	if created.StartTime != "10:00" || created.EndTime != "11:30" {
		t.Errorf("slot = %s-%s, want 10:00-11:30", created.StartTime, created.EndTime)
	}
}

func TestHandleBookingCreateTouchingSlots(t *testing.T) {
	database := newTestEnv(t)
	tenant := seedTenant(t, database, "club-norte")
	court := seedCourt(t, database, tenant.ID, "Court 1")

	createBookingViaAPI(t, tenant.ID, court.ID, "2026-09-01", "10:00", "11:30")

	// Touching at 11:30 is legal under half-open intervals.
	second := createBookingViaAPI(t, tenant.ID, court.ID, "2026-09-01", "11:30", "13:00")
	if second.StartTime != "11:30" {
		t.Errorf("second booking start = %q, want 11:30", second.StartTime)
	}
}

func TestHandleBookingCreateConflict(t *testing.T) {
	database := newTestEnv(t)
	tenant := seedTenant(t, database, "club-norte")
	court := seedCourt(t, database, tenant.ID, "Court 1")

	createBookingViaAPI(t, tenant.ID, court.ID, "2026-09-01", "10:00", "11:30")

	r := withActor(postJSON(t, "/api/v1/bookings", bookingRequest{
		TenantID:        tenant.ID,
		CourtID:         court.ID,
		BookingDate:     "2026-09-01",
		StartTime:       "11:00",
		EndTime:         "12:00",
		TotalPriceCents: 8000,
		DepositCents:    4000,
	}), staffActor(tenant.ID))
	w := httptest.NewRecorder()
	HandleBookingCreate(w, r)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409; body = %s", w.Code, w.Body.String())
	}
}

func TestHandleBookingCreateConcurrentOverlap(t *testing.T) {
	database := newTestEnv(t)
	tenant := seedTenant(t, database, "club-norte")
	court := seedCourt(t, database, tenant.ID, "Court 1")

	// Two overlapping requests race; the transactional re-check lets at most
	// one of them through.
	codes := make(chan int, 2)
	var wg sync.WaitGroup
	for _, slot := range [][2]string{{"10:00", "11:30"}, {"11:00", "12:00"}} {
		wg.Add(1)
		go func(start, end string) {
			defer wg.Done()
			r := withActor(postJSON(t, "/api/v1/bookings", bookingRequest{
				TenantID:        tenant.ID,
				CourtID:         court.ID,
				BookingDate:     "2026-09-01",
				StartTime:       start,
				EndTime:         end,
				TotalPriceCents: 8000,
				DepositCents:    4000,
			}), staffActor(tenant.ID))
			w := httptest.NewRecorder()
			HandleBookingCreate(w, r)
			codes <- w.Code
		}(slot[0], slot[1])
	}
	wg.Wait()
	close(codes)

	var created, conflicted int
	for code := range codes {
		switch code {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicted++
		default:
			t.Errorf("unexpected status %d", code)
		}
	}
	if created != 1 || conflicted != 1 {
		t.Errorf("created = %d, conflicted = %d, want 1 and 1", created, conflicted)
	}
}

func TestHandleBookingCreateOtherCourtSameSlot(t *testing.T) {
	database := newTestEnv(t)
	tenant := seedTenant(t, database, "club-norte")
	court1 := seedCourt(t, database, tenant.ID, "Court 1")
	court2 := seedCourt(t, database, tenant.ID, "Court 2")

	createBookingViaAPI(t, tenant.ID, court1.ID, "2026-09-01", "10:00", "11:30")
	// Same slot on a different court must not conflict.
	createBookingViaAPI(t, tenant.ID, court2.ID, "2026-09-01", "10:00", "11:30")
}

func TestHandleBookingCreateOutsideOperatingHours(t *testing.T) {
	database := newTestEnv(t)
	tenant := seedTenant(t, database, "club-norte")
	court := seedCourt(t, database, tenant.ID, "Court 1") // opens 08:00, closes 23:00

	tests := []struct {
		name       string
		start, end string
		want       int
	}{
		{name: "before opening", start: "07:00", end: "08:30", want: http.StatusBadRequest},
		{name: "past closing", start: "22:30", end: "23:30", want: http.StatusBadRequest},
		{name: "at opening boundary", start: "08:00", end: "09:00", want: http.StatusCreated},
		{name: "at closing boundary", start: "22:00", end: "23:00", want: http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := withActor(postJSON(t, "/api/v1/bookings", bookingRequest{
				TenantID: tenant.ID, CourtID: court.ID, BookingDate: "2026-09-01",
				StartTime: tt.start, EndTime: tt.end, TotalPriceCents: 8000,
			}), staffActor(tenant.ID))
			w := httptest.NewRecorder()
			HandleBookingCreate(w, r)

			if w.Code != tt.want {
				t.Errorf("status = %d, want %d; body = %s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestHandleBookingCreateValidation(t *testing.T) {
	database := newTestEnv(t)
	tenant := seedTenant(t, database, "club-norte")
	court := seedCourt(t, database, tenant.ID, "Court 1")

	tests := []struct {
		name string
		req  bookingRequest
	}{
		{
			name: "end before start",
			req:  bookingRequest{TenantID: tenant.ID, CourtID: court.ID, BookingDate: "2026-09-01", StartTime: "12:00", EndTime: "11:00", TotalPriceCents: 8000},
		},
		{
			name: "zero-length slot",
			req:  bookingRequest{TenantID: tenant.ID, CourtID: court.ID, BookingDate: "2026-09-01", StartTime: "11:00", EndTime: "11:00", TotalPriceCents: 8000},
		},
		{
			name: "bad date",
			req:  bookingRequest{TenantID: tenant.ID, CourtID: court.ID, BookingDate: "01/09/2026", StartTime: "10:00", EndTime: "11:00", TotalPriceCents: 8000},
		},
		{
			name: "deposit exceeds total",
			req:  bookingRequest{TenantID: tenant.ID, CourtID: court.ID, BookingDate: "2026-09-01", StartTime: "10:00", EndTime: "11:00", TotalPriceCents: 1000, DepositCents: 2000},
		},
		{
			name: "missing court",
			req:  bookingRequest{TenantID: tenant.ID, BookingDate: "2026-09-01", StartTime: "10:00", EndTime: "11:00", TotalPriceCents: 8000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := withActor(postJSON(t, "/api/v1/bookings", tt.req), staffActor(tenant.ID))
			w := httptest.NewRecorder()
			HandleBookingCreate(w, r)

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400; body = %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestHandleBookingCreateForeignCourt(t *testing.T) {
	database := newTestEnv(t)
	tenant := seedTenant(t, database, "club-norte")
	other := seedTenant(t, database, "club-sur")
	foreignCourt := seedCourt(t, database, other.ID, "Court 1")

	r := withActor(postJSON(t, "/api/v1/bookings", bookingRequest{
		TenantID:        tenant.ID,
		CourtID:         foreignCourt.ID,
		BookingDate:     "2026-09-01",
		StartTime:       "10:00",
		EndTime:         "11:00",
		TotalPriceCents: 8000,
	}), staffActor(tenant.ID))
	w := httptest.NewRecorder()
	HandleBookingCreate(w, r)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400; body = %s", w.Code, w.Body.String())
	}
}

func TestHandleBookingCreateUnauthenticated(t *testing.T) {
	database := newTestEnv(t)
	tenant := seedTenant(t, database, "club-norte")
	court := seedCourt(t, database, tenant.ID, "Court 1")

	r := postJSON(t, "/api/v1/bookings", bookingRequest{
		TenantID:        tenant.ID,
		CourtID:         court.ID,
		BookingDate:     "2026-09-01",
		StartTime:       "10:00",
		EndTime:         "11:00",
		TotalPriceCents: 8000,
	})
	w := httptest.NewRecorder()
	HandleBookingCreate(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestHandleBookingUpdateReschedule(t *testing.T) {
	database := newTestEnv(t)
	tenant := seedTenant(t, database, "club-norte")
	court := seedCourt(t, database, tenant.ID, "Court 1")

	created := createBookingViaAPI(t, tenant.ID, court.ID, "2026-09-01", "10:00", "11:30")
	createBookingViaAPI(t, tenant.ID, court.ID, "2026-09-01", "14:00", "15:00")

	// Moving to a free slot succeeds.
	r := withActor(putJSON(t, fmt.Sprintf("/api/v1/bookings/%d", created.ID), bookingRequest{
		CourtID:         court.ID,
		BookingDate:     "2026-09-01",
		StartTime:       "16:00",
		EndTime:         "17:30",
		TotalPriceCents: 8000,
		DepositCents:    4000,
	}), staffActor(tenant.ID))
	r.SetPathValue("id", fmt.Sprint(created.ID))
	w := httptest.NewRecorder()
	HandleBookingUpdate(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body = %s", w.Code, w.Body.String())
	}
	var updated dbgen.Booking
	if err := json.NewDecoder(w.Body).Decode(&updated); err != nil {
		t.Fatalf("decode booking: %v", err)
	}
	if updated.StartTime != "16:00" || updated.EndTime != "17:30" {
		t.Errorf("slot = %s-%s, want 16:00-17:30", updated.StartTime, updated.EndTime)
	}
}

func TestHandleBookingUpdateConflict(t *testing.T) {
	database := newTestEnv(t)
	tenant := seedTenant(t, database, "club-norte")
	court := seedCourt(t, database, tenant.ID, "Court 1")

	created := createBookingViaAPI(t, tenant.ID, court.ID, "2026-09-01", "10:00", "11:30")
	createBookingViaAPI(t, tenant.ID, court.ID, "2026-09-01", "14:00", "15:00")

	r := withActor(putJSON(t, fmt.Sprintf("/api/v1/bookings/%d", created.ID), bookingRequest{
		CourtID:         court.ID,
		BookingDate:     "2026-09-01",
		StartTime:       "14:30",
		EndTime:         "15:30",
		TotalPriceCents: 8000,
	}), staffActor(tenant.ID))
	r.SetPathValue("id", fmt.Sprint(created.ID))
	w := httptest.NewRecorder()
	HandleBookingUpdate(w, r)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409; body = %s", w.Code, w.Body.String())
	}
}

func TestHandleBookingUpdateOwnSlotExcluded(t *testing.T) {
	database := newTestEnv(t)
	tenant := seedTenant(t, database, "club-norte")
	court := seedCourt(t, database, tenant.ID, "Court 1")

	created := createBookingViaAPI(t, tenant.ID, court.ID, "2026-09-01", "10:00", "11:30")

	// Shrinking within the booking's own window must not self-conflict.
	r := withActor(putJSON(t, fmt.Sprintf("/api/v1/bookings/%d", created.ID), bookingRequest{
		CourtID:         court.ID,
		BookingDate:     "2026-09-01",
		StartTime:       "10:30",
		EndTime:         "11:30",
		TotalPriceCents: 8000,
	}), staffActor(tenant.ID))
	r.SetPathValue("id", fmt.Sprint(created.ID))
	w := httptest.NewRecorder()
	HandleBookingUpdate(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200; body = %s", w.Code, w.Body.String())
	}
}

func TestHandleBookingCancelFreesSlot(t *testing.T) {
	database := newTestEnv(t)
	tenant := seedTenant(t, database, "club-norte")
	court := seedCourt(t, database, tenant.ID, "Court 1")

	created := createBookingViaAPI(t, tenant.ID, court.ID, "2026-09-01", "10:00", "11:30")

	r := withActor(postJSON(t, fmt.Sprintf("/api/v1/bookings/%d/cancel", created.ID), statusUpdateRequest{Reason: "rain"}), staffActor(tenant.ID))
	r.SetPathValue("id", fmt.Sprint(created.ID))
	w := httptest.NewRecorder()
	HandleBookingCancel(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("cancel status = %d; body = %s", w.Code, w.Body.String())
	}
	var cancelled dbgen.Booking
	if err := json.NewDecoder(w.Body).Decode(&cancelled); err != nil {
		t.Fatalf("decode booking: %v", err)
	}
	if cancelled.Status != string(booking.StatusCancelled) {
		t.Errorf("status = %q, want CANCELLED", cancelled.Status)
	}
	if !cancelled.CancellationReason.Valid || cancelled.CancellationReason.String != "rain" {
		t.Errorf("cancellation reason = %+v, want rain", cancelled.CancellationReason)
	}

	// The cancelled booking no longer blocks the slot.
	createBookingViaAPI(t, tenant.ID, court.ID, "2026-09-01", "10:00", "11:30")
}

func TestHandleBookingCancelTerminalRejected(t *testing.T) {
	database := newTestEnv(t)
	tenant := seedTenant(t, database, "club-norte")
	court := seedCourt(t, database, tenant.ID, "Court 1")

	created := createBookingViaAPI(t, tenant.ID, court.ID, "2026-09-01", "10:00", "11:30")

	cancel := func() *httptest.ResponseRecorder {
		r := withActor(postJSON(t, fmt.Sprintf("/api/v1/bookings/%d/cancel", created.ID), statusUpdateRequest{}), staffActor(tenant.ID))
		r.SetPathValue("id", fmt.Sprint(created.ID))
		w := httptest.NewRecorder()
		HandleBookingCancel(w, r)
		return w
	}

	if w := cancel(); w.Code != http.StatusOK {
		t.Fatalf("first cancel status = %d", w.Code)
	}
	if w := cancel(); w.Code != http.StatusConflict {
		t.Errorf("second cancel status = %d, want 409", w.Code)
	}
}

func TestHandleBookingStatusUpdate(t *testing.T) {
	database := newTestEnv(t)
	tenant := seedTenant(t, database, "club-norte")
	court := seedCourt(t, database, tenant.ID, "Court 1")

	created := createBookingViaAPI(t, tenant.ID, court.ID, "2026-09-01", "10:00", "11:30")

	update := func(actor *authz.Actor, req statusUpdateRequest) *httptest.ResponseRecorder {
		r := withActor(postJSON(t, fmt.Sprintf("/api/v1/bookings/%d/status", created.ID), req), actor)
		r.SetPathValue("id", fmt.Sprint(created.ID))
		w := httptest.NewRecorder()
		HandleBookingStatusUpdate(w, r)
		return w
	}

	if w := update(staffActor(tenant.ID), statusUpdateRequest{Status: "CONFIRMED"}); w.Code != http.StatusOK {
		t.Fatalf("confirm status = %d; body = %s", w.Code, w.Body.String())
	}

	// Skipping ACTIVE is an illegal move.
	if w := update(staffActor(tenant.ID), statusUpdateRequest{Status: "COMPLETED"}); w.Code != http.StatusConflict {
		t.Errorf("skip to COMPLETED status = %d, want 409", w.Code)
	}

	// Unknown value is a validation error, not a conflict.
	if w := update(staffActor(tenant.ID), statusUpdateRequest{Status: "PAUSED"}); w.Code != http.StatusBadRequest {
		t.Errorf("unknown status = %d, want 400", w.Code)
	}

	// Payment override needs the admin role.
	if w := update(staffActor(tenant.ID), statusUpdateRequest{PaymentStatus: "FULLY_PAID"}); w.Code != http.StatusForbidden {
		t.Errorf("staff payment override status = %d, want 403", w.Code)
	}
	admin := &authz.Actor{ID: 9, Role: authz.RoleAdmin}
	if w := update(admin, statusUpdateRequest{PaymentStatus: "FULLY_PAID"}); w.Code != http.StatusOK {
		t.Errorf("admin payment override status = %d; body = %s", w.Code, w.Body.String())
	}
}

func TestHandleBookingsList(t *testing.T) {
	database := newTestEnv(t)
	tenant := seedTenant(t, database, "club-norte")
	other := seedTenant(t, database, "club-sur")
	court := seedCourt(t, database, tenant.ID, "Court 1")
	otherCourt := seedCourt(t, database, other.ID, "Court 1")

	createBookingViaAPI(t, tenant.ID, court.ID, "2026-09-01", "10:00", "11:30")
	createBookingViaAPI(t, tenant.ID, court.ID, "2026-09-02", "10:00", "11:30")
	createBookingViaAPI(t, tenant.ID, court.ID, "2026-09-10", "10:00", "11:30")
	createBookingViaAPI(t, other.ID, otherCourt.ID, "2026-09-01", "10:00", "11:30")

	target := fmt.Sprintf("/api/v1/bookings?tenant_id=%d&from=2026-09-01&to=2026-09-05", tenant.ID)
	r := withActor(httptest.NewRequest(http.MethodGet, target, nil), staffActor(tenant.ID))
	w := httptest.NewRecorder()
	HandleBookingsList(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body = %s", w.Code, w.Body.String())
	}
	var items []dbgen.Booking
	if err := json.NewDecoder(w.Body).Decode(&items); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("len(items) = %d, want 2", len(items))
	}
	for _, item := range items {
		if item.TenantID != tenant.ID {
			t.Errorf("booking %d belongs to tenant %d, want %d", item.ID, item.TenantID, tenant.ID)
		}
	}
}

func TestHandleAvailabilityCheck(t *testing.T) {
	database := newTestEnv(t)
	tenant := seedTenant(t, database, "club-norte")
	court := seedCourt(t, database, tenant.ID, "Court 1")

	createBookingViaAPI(t, tenant.ID, court.ID, "2026-09-01", "10:00", "11:30")

	check := func(date, start, end string) bool {
		target := fmt.Sprintf("/api/v1/courts/%d/availability?date=%s&start=%s&end=%s", court.ID, date, start, end)
		r := withActor(httptest.NewRequest(http.MethodGet, target, nil), staffActor(tenant.ID))
		r.SetPathValue("id", fmt.Sprint(court.ID))
		w := httptest.NewRecorder()
		HandleAvailabilityCheck(w, r)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d; body = %s", w.Code, w.Body.String())
		}
		var resp map[string]bool
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("decode availability: %v", err)
		}
		return resp["available"]
	}

	if check("2026-09-01", "11:00", "12:00") {
		t.Error("overlapping slot reported available")
	}
	if !check("2026-09-01", "11:30", "13:00") {
		t.Error("touching slot reported unavailable")
	}
	if !check("2026-09-02", "10:00", "11:30") {
		t.Error("other day reported unavailable")
	}
}

func putJSON(t *testing.T, target string, body any) *http.Request {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	r := httptest.NewRequest(http.MethodPut, target, bytes.NewReader(payload))
	r.Header.Set("Content-Type", "application/json")
	return r
}
