package booking

import (
	"errors"
	"testing"
)

func TestTransitionTable(t *testing.T) {
	legal := []struct{ from, to Status }{
		{StatusPending, StatusConfirmed},
		{StatusPending, StatusCancelled},
		{StatusConfirmed, StatusActive},
		{StatusConfirmed, StatusCancelled},
		{StatusConfirmed, StatusCompleted},
		{StatusActive, StatusCompleted},
		{StatusActive, StatusCancelled},
	}
	for _, tc := range legal {
		if err := Transition(tc.from, tc.to); err != nil {
			t.Errorf("expected %s -> %s to be legal: %v", tc.from, tc.to, err)
		}
	}

	illegal := []struct{ from, to Status }{
		{StatusCompleted, StatusPending},
		{StatusCancelled, StatusConfirmed},
		{StatusCancelled, StatusPending},
		{StatusCompleted, StatusActive},
		{StatusPending, StatusActive},
		{StatusPending, StatusCompleted},
		{StatusPending, StatusPending},
	}
	for _, tc := range illegal {
		err := Transition(tc.from, tc.to)
		if !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("expected %s -> %s to fail with ErrInvalidTransition, got %v", tc.from, tc.to, err)
		}
	}
}

func TestTransitionUnknownStatus(t *testing.T) {
	if err := Transition(Status("NOPE"), StatusConfirmed); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestPaymentTransitions(t *testing.T) {
	if err := TransitionPayment(PaymentPending, PaymentDepositPaid); err != nil {
		t.Fatalf("pending -> deposit: %v", err)
	}
	if err := TransitionPayment(PaymentDepositPaid, PaymentFullyPaid); err != nil {
		t.Fatalf("deposit -> fully paid: %v", err)
	}
	for _, from := range []PaymentStatus{PaymentPending, PaymentDepositPaid, PaymentFullyPaid} {
		if err := TransitionPayment(from, PaymentRefunded); err != nil {
			t.Errorf("%s -> refunded should be legal: %v", from, err)
		}
	}
	if err := TransitionPayment(PaymentFullyPaid, PaymentDepositPaid); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if err := TransitionPayment(PaymentRefunded, PaymentPending); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestPaymentStatusForAmount(t *testing.T) {
	if got := PaymentStatusForAmount(500_00, 1000_00); got != PaymentDepositPaid {
		t.Fatalf("partial payment: got %s", got)
	}
	if got := PaymentStatusForAmount(1000_00, 1000_00); got != PaymentFullyPaid {
		t.Fatalf("exact payment: got %s", got)
	}
	if got := PaymentStatusForAmount(1200_00, 1000_00); got != PaymentFullyPaid {
		t.Fatalf("overpayment: got %s", got)
	}
	if got := PaymentStatusForAmount(0, 1000_00); got != PaymentPending {
		t.Fatalf("no payment: got %s", got)
	}
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name           string
		s1, e1, s2, e2 string
		want           bool
	}{
		{"disjoint", "10:00", "11:00", "12:00", "13:00", false},
		{"touching is legal", "10:00", "11:30", "11:30", "13:00", false},
		{"partial overlap", "10:00", "11:30", "11:00", "12:00", true},
		{"containment", "10:00", "13:00", "11:00", "12:00", true},
		{"exact duplicate", "10:00", "11:00", "10:00", "11:00", true},
		{"touching other side", "11:30", "13:00", "10:00", "11:30", false},
	}
	for _, tc := range cases {
		if got := Overlaps(tc.s1, tc.e1, tc.s2, tc.e2); got != tc.want {
			t.Errorf("%s: Overlaps(%s,%s,%s,%s) = %v, want %v", tc.name, tc.s1, tc.e1, tc.s2, tc.e2, got, tc.want)
		}
	}
}

func TestValidateSlot(t *testing.T) {
	date, start, end, err := ValidateSlot("2025-01-01", "10:00", "11:30")
	if err != nil {
		t.Fatalf("valid slot rejected: %v", err)
	}
	if date != "2025-01-01" || start != "10:00" || end != "11:30" {
		t.Fatalf("normalized values: %s %s %s", date, start, end)
	}

	if _, _, _, err := ValidateSlot("01/01/2025", "10:00", "11:00"); err == nil {
		t.Fatal("expected bad date to be rejected")
	}
	if _, _, _, err := ValidateSlot("2025-01-01", "10am", "11:00"); err == nil {
		t.Fatal("expected bad start time to be rejected")
	}
	if _, _, _, err := ValidateSlot("2025-01-01", "11:00", "10:00"); err == nil {
		t.Fatal("expected inverted slot to be rejected")
	}
	if _, _, _, err := ValidateSlot("2025-01-01", "11:00", "11:00"); err == nil {
		t.Fatal("expected empty slot to be rejected")
	}
}
