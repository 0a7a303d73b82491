package apiutil

import (
	"context"
	"errors"
	"fmt"

	dbgen "github.com/chino-hash/turnero-padel/internal/db/generated"
)

// EnsureSlotAvailable verifies that no non-cancelled, non-deleted booking on
// the same court and date overlaps [start,end). An answer obtained outside a
// transaction is advisory only; callers must re-run this inside the
// transaction that creates or moves the booking.
func EnsureSlotAvailable(ctx context.Context, q *dbgen.Queries, courtID, excludeBookingID int64, date, start, end string) error {
	count, err := q.CountOverlappingBookings(ctx, dbgen.CountOverlappingBookingsParams{
		CourtID:     courtID,
		BookingDate: date,
		ExcludeID:   excludeBookingID,
		EndTime:     end,
		StartTime:   start,
	})
	if err != nil {
		return fmt.Errorf("availability check failed: %w", err)
	}
	if count > 0 {
		return SlotConflictError{CourtID: courtID, Date: date, Start: start, End: end}
	}
	return nil
}

// IsSlotAvailable is the boolean form of EnsureSlotAvailable.
func IsSlotAvailable(ctx context.Context, q *dbgen.Queries, courtID int64, date, start, end string) (bool, error) {
	err := EnsureSlotAvailable(ctx, q, courtID, 0, date, start, end)
	if err == nil {
		return true, nil
	}
	var conflict SlotConflictError
	if errors.As(err, &conflict) {
		return false, nil
	}
	return false, err
}

type SlotConflictError struct {
	CourtID int64
	Date    string
	Start   string
	End     string
}

func (e SlotConflictError) Error() string {
	return fmt.Sprintf("slot no longer available: court %d on %s %s-%s", e.CourtID, e.Date, e.Start, e.End)
}
