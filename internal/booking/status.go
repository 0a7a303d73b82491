// Package booking owns the reservation lifecycle: status vocabulary, the
// transition table every mutation path consults, and slot interval rules.
package booking

import (
	"errors"
	"fmt"
)

var ErrInvalidTransition = errors.New("invalid transition")

// Status is the reservation lifecycle state.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusActive    Status = "ACTIVE"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
)

// PaymentStatus tracks how much of the booking has been paid. It moves
// independently of Status and is driven only by the webhook processor or an
// administrator override.
type PaymentStatus string

const (
	PaymentPending     PaymentStatus = "PENDING"
	PaymentDepositPaid PaymentStatus = "DEPOSIT_PAID"
	PaymentFullyPaid   PaymentStatus = "FULLY_PAID"
	PaymentRefunded    PaymentStatus = "REFUNDED"
)

// statusTransitions is the single source of truth for reservation state
// legality. Direct updates, bulk updates, and webhook dispatch all go through
// CanTransition so the rules cannot drift between entry points.
var statusTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusActive, StatusCancelled, StatusCompleted},
	StatusActive:    {StatusCompleted, StatusCancelled},
	StatusCancelled: {},
	StatusCompleted: {},
}

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:     {PaymentDepositPaid, PaymentFullyPaid, PaymentRefunded},
	PaymentDepositPaid: {PaymentFullyPaid, PaymentRefunded},
	PaymentFullyPaid:   {PaymentRefunded},
	PaymentRefunded:    {},
}

// ValidStatus reports whether s names a known reservation status.
func ValidStatus(s Status) bool {
	_, ok := statusTransitions[s]
	return ok
}

// ValidPaymentStatus reports whether s names a known payment status.
func ValidPaymentStatus(s PaymentStatus) bool {
	_, ok := paymentTransitions[s]
	return ok
}

// CanTransition reports whether a reservation may move from one status to
// another.
func CanTransition(from, to Status) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition validates a status move and returns ErrInvalidTransition when it
// is not legal. State is never changed here; callers persist only on nil.
func Transition(from, to Status) error {
	if !ValidStatus(from) || !ValidStatus(to) {
		return fmt.Errorf("%w: unknown status %q -> %q", ErrInvalidTransition, from, to)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// CanTransitionPayment reports whether the payment sub-status may move from
// one value to another.
func CanTransitionPayment(from, to PaymentStatus) bool {
	for _, next := range paymentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionPayment validates a payment-status move.
func TransitionPayment(from, to PaymentStatus) error {
	if !ValidPaymentStatus(from) || !ValidPaymentStatus(to) {
		return fmt.Errorf("%w: unknown payment status %q -> %q", ErrInvalidTransition, from, to)
	}
	if !CanTransitionPayment(from, to) {
		return fmt.Errorf("%w: payment %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// PaymentStatusForAmount maps the running total of approved payments against
// the booking price: anything at or above the total is fully paid, anything
// positive below it is a deposit.
func PaymentStatusForAmount(paidCents, totalCents int64) PaymentStatus {
	if totalCents > 0 && paidCents >= totalCents {
		return PaymentFullyPaid
	}
	if paidCents > 0 {
		return PaymentDepositPaid
	}
	return PaymentPending
}
