package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"

	"github.com/chino-hash/turnero-padel/internal/api/apiutil"
	"github.com/chino-hash/turnero-padel/internal/booking"
	"github.com/chino-hash/turnero-padel/internal/db"
	dbgen "github.com/chino-hash/turnero-padel/internal/db/generated"
	"github.com/chino-hash/turnero-padel/internal/events"
)

const (
	// pendingHoldTTL is how long an unconfirmed, unpaid booking keeps its
	// slot before the sweep releases it.
	pendingHoldTTL = 30 * time.Minute

	sweepBatchSize  = 100
	sweepJobTimeout = 2 * time.Minute
)

// RegisterBookingJobs wires the recurring maintenance sweeps: releasing
// expired pending holds and completing bookings whose end time has passed.
func RegisterBookingJobs(database *db.DB, publisher events.Publisher) error {
	if database == nil {
		return fmt.Errorf("booking jobs require database")
	}

	if _, err := AddJob("expire_pending_holds", "*/5 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepJobTimeout)
		defer cancel()

		jobLogger := log.With().Str("component", "expire_pending_holds_job").Logger()
		ctx = jobLogger.WithContext(ctx)

		if err := ExpirePendingHolds(ctx, database, publisher, time.Now().UTC()); err != nil {
			jobLogger.Error().Err(err).Msg("Pending hold sweep failed")
		}
	}, gocron.WithSingletonMode(gocron.LimitModeWait)); err != nil {
		return fmt.Errorf("add pending hold job: %w", err)
	}

	if _, err := AddJob("complete_elapsed_bookings", "*/15 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepJobTimeout)
		defer cancel()

		jobLogger := log.With().Str("component", "complete_elapsed_bookings_job").Logger()
		ctx = jobLogger.WithContext(ctx)

		if err := CompleteElapsedBookings(ctx, database, publisher, time.Now().UTC()); err != nil {
			jobLogger.Error().Err(err).Msg("Elapsed booking sweep failed")
		}
	}, gocron.WithSingletonMode(gocron.LimitModeWait)); err != nil {
		return fmt.Errorf("add elapsed booking job: %w", err)
	}

	return nil
}

// ExpirePendingHolds cancels PENDING bookings older than the hold TTL so
// abandoned checkouts stop blocking their slots.
func ExpirePendingHolds(ctx context.Context, database *db.DB, publisher events.Publisher, now time.Time) error {
	if database == nil {
		return fmt.Errorf("pending hold sweep requires database")
	}

	rows, err := database.Queries.ListExpiredPendingBookings(ctx, dbgen.ListExpiredPendingBookingsParams{
		CreatedBefore: now.Add(-pendingHoldTTL),
		Limit:         sweepBatchSize,
	})
	if err != nil {
		return fmt.Errorf("list expired pending bookings: %w", err)
	}

	logger := log.Ctx(ctx)
	for _, row := range rows {
		var cancelled dbgen.Booking
		err := database.RunInTx(ctx, func(txdb *db.DB) error {
			current, err := txdb.Queries.GetBookingByID(ctx, row.ID)
			if err != nil {
				return fmt.Errorf("fetch booking: %w", err)
			}
			// Re-check under the transaction; the hold may have been
			// confirmed or cancelled since the listing.
			if current.Status != string(booking.StatusPending) {
				return nil
			}
			cancelled, err = txdb.Queries.CancelBooking(ctx, dbgen.CancelBookingParams{
				CancellationReason: apiutil.ToNullString("pending hold expired"),
				ID:                 row.ID,
			})
			if err != nil {
				return fmt.Errorf("cancel booking: %w", err)
			}
			return nil
		})
		if err != nil {
			logger.Error().Err(err).Int64("booking_id", row.ID).Msg("Failed to expire pending hold")
			continue
		}
		if cancelled.ID == 0 {
			continue
		}

		logger.Info().Int64("booking_id", row.ID).Msg("Expired pending hold")
		emitEvent(ctx, publisher, cancelled)
	}
	return nil
}

// CompleteElapsedBookings moves CONFIRMED and ACTIVE bookings whose end time
// has passed into COMPLETED.
func CompleteElapsedBookings(ctx context.Context, database *db.DB, publisher events.Publisher, now time.Time) error {
	if database == nil {
		return fmt.Errorf("elapsed booking sweep requires database")
	}

	today := now.Format("2006-01-02")
	cutoff := now.Format("15:04")

	rows, err := database.Queries.ListElapsedBookings(ctx, dbgen.ListElapsedBookingsParams{
		BookingDate: today,
		SameDate:    today,
		EndTime:     cutoff,
		Limit:       sweepBatchSize,
	})
	if err != nil {
		return fmt.Errorf("list elapsed bookings: %w", err)
	}

	logger := log.Ctx(ctx)
	for _, row := range rows {
		var completed dbgen.Booking
		err := database.RunInTx(ctx, func(txdb *db.DB) error {
			current, err := txdb.Queries.GetBookingByID(ctx, row.ID)
			if err != nil {
				return fmt.Errorf("fetch booking: %w", err)
			}
			if err := booking.Transition(booking.Status(current.Status), booking.StatusCompleted); err != nil {
				return err
			}
			completed, err = txdb.Queries.UpdateBookingStatus(ctx, dbgen.UpdateBookingStatusParams{
				Status: string(booking.StatusCompleted),
				ID:     row.ID,
			})
			if err != nil {
				return fmt.Errorf("update booking status: %w", err)
			}
			return nil
		})
		if err != nil {
			logger.Error().Err(err).Int64("booking_id", row.ID).Msg("Failed to complete elapsed booking")
			continue
		}
		if completed.ID == 0 {
			continue
		}

		logger.Info().Int64("booking_id", row.ID).Msg("Completed elapsed booking")
		emitEvent(ctx, publisher, completed)
	}
	return nil
}

func emitEvent(ctx context.Context, publisher events.Publisher, b dbgen.Booking) {
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
