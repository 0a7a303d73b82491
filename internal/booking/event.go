package booking

import "time"

// Event describes a successful reservation transition, published for
// downstream consumers. Reservation correctness never depends on delivery.
type Event struct {
	TenantID      int64         `json:"tenant_id"`
	BookingID     int64         `json:"booking_id"`
	Status        Status        `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	OccurredAt    time.Time     `json:"occurred_at"`
}
