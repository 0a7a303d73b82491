// Package events delivers booking transition events to downstream consumers.
// Publishing is best-effort: callers log failures and move on, since booking
// correctness never depends on delivery.
package events

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/chino-hash/turnero-padel/internal/booking"
)

// Publisher delivers a booking transition event.
type Publisher interface {
	PublishBookingEvent(ctx context.Context, event booking.Event) error
}

// LogPublisher writes events to the structured log. It is the default when no
// broker is configured.
type LogPublisher struct{}

func (LogPublisher) PublishBookingEvent(_ context.Context, event booking.Event) error {
	log.Info().
		Int64("tenant_id", event.TenantID).
		Int64("booking_id", event.BookingID).
		Str("status", string(event.Status)).
		Str("payment_status", string(event.PaymentStatus)).
		Time("occurred_at", event.OccurredAt).
		Msg("Booking event")
	return nil
}
