// internal/api/payments/locks.go
package payments

import "sync"

// bookingLocks serializes webhook processing per booking id so two
// near-simultaneous duplicate deliveries cannot both pass the replay check
// before either is recorded. Entries are reference counted and removed when
// the last holder releases, so the map stays bounded by in-flight work.
type bookingLocks struct {
	mu      sync.Mutex
	entries map[int64]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newBookingLocks() *bookingLocks {
	return &bookingLocks{entries: make(map[int64]*lockEntry)}
}

// lock acquires the mutex for the given booking id and returns the matching
// release function.
func (l *bookingLocks) lock(id int64) func() {
	l.mu.Lock()
	entry, ok := l.entries[id]
	if !ok {
		entry = &lockEntry{}
		l.entries[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.entries, id)
		}
		l.mu.Unlock()
	}
}
