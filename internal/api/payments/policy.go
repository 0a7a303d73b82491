// internal/api/payments/policy.go
package payments

import (
	"context"
	"fmt"

	"github.com/chino-hash/turnero-padel/internal/api/apiutil"
	"github.com/chino-hash/turnero-padel/internal/booking"
	dbgen "github.com/chino-hash/turnero-padel/internal/db/generated"
)

// RejectedPaymentPolicy decides what happens to a booking when the provider
// reports a rejected or cancelled payment. Whether a failed payment releases
// the slot is an operator decision, so the processor takes it as a strategy.
type RejectedPaymentPolicy interface {
	Name() string
	// Apply may mutate the booking inside the caller's transaction. It
	// returns the (possibly updated) booking and whether it changed.
	Apply(ctx context.Context, qtx *dbgen.Queries, b dbgen.Booking) (dbgen.Booking, bool, error)
}

// KeepBookingPolicy leaves the booking untouched; the customer can retry the
// payment while the hold stands.
type KeepBookingPolicy struct{}

func (KeepBookingPolicy) Name() string { return "keep" }

func (KeepBookingPolicy) Apply(_ context.Context, _ *dbgen.Queries, b dbgen.Booking) (dbgen.Booking, bool, error) {
	return b, false, nil
}

// CancelBookingPolicy releases the slot when a payment fails. Bookings
// already in a terminal state are left alone.
type CancelBookingPolicy struct{}

func (CancelBookingPolicy) Name() string { return "cancel" }

func (CancelBookingPolicy) Apply(ctx context.Context, qtx *dbgen.Queries, b dbgen.Booking) (dbgen.Booking, bool, error) {
	if !booking.CanTransition(booking.Status(b.Status), booking.StatusCancelled) {
		return b, false, nil
	}
	cancelled, err := qtx.CancelBooking(ctx, dbgen.CancelBookingParams{
		CancellationReason: apiutil.ToNullString("payment rejected by provider"),
		ID:                 b.ID,
	})
	if err != nil {
		return b, false, fmt.Errorf("cancel booking %d: %w", b.ID, err)
	}
	return cancelled, true, nil
}

// PolicyFromName maps a configuration value to a policy, defaulting to keep.
func PolicyFromName(name string) RejectedPaymentPolicy {
	if name == "cancel" {
		return CancelBookingPolicy{}
	}
	return KeepBookingPolicy{}
}
