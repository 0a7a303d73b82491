package booking

import (
	"fmt"
	"time"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Overlaps reports whether two half-open intervals [s1,e1) and [s2,e2)
// intersect. Times are "HH:MM" strings, which compare correctly as text.
// Touching intervals (e1 == s2) do not overlap, so back-to-back bookings on
// the same court are legal.
func Overlaps(s1, e1, s2, e2 string) bool {
	return s1 < e2 && s2 < e1
}

// ParseDate validates a calendar date in YYYY-MM-DD form and returns it
// normalized.
func ParseDate(value string) (string, error) {
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return "", fmt.Errorf("must be a date in YYYY-MM-DD form")
	}
	return parsed.Format(dateLayout), nil
}

// ParseTimeOfDay validates a wall-clock time in HH:MM form and returns it
// normalized.
func ParseTimeOfDay(value string) (string, error) {
	parsed, err := time.Parse(timeLayout, value)
	if err != nil {
		return "", fmt.Errorf("must be a time in HH:MM form")
	}
	return parsed.Format(timeLayout), nil
}

// ValidateSlot checks a prospective [start,end) slot: both ends well-formed
// and start strictly before end. Returns the normalized values.
func ValidateSlot(date, start, end string) (string, string, string, error) {
	normalizedDate, err := ParseDate(date)
	if err != nil {
		return "", "", "", fmt.Errorf("booking_date %s", err)
	}
	normalizedStart, err := ParseTimeOfDay(start)
	if err != nil {
		return "", "", "", fmt.Errorf("start_time %s", err)
	}
	normalizedEnd, err := ParseTimeOfDay(end)
	if err != nil {
		return "", "", "", fmt.Errorf("end_time %s", err)
	}
	if normalizedStart >= normalizedEnd {
		return "", "", "", fmt.Errorf("end_time must be after start_time")
	}
	return normalizedDate, normalizedStart, normalizedEnd, nil
}
