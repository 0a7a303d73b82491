// Package replay prevents re-application of duplicated webhook deliveries.
// Entries are keyed by the provider request id and expire after a bounded
// window that must exceed the provider's realistic retry interval.
package replay

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicate marks an event id that was already processed.
var ErrDuplicate = errors.New("webhook event already processed")

// Store is the replay-prevention cache. The in-process MemoryStore is valid
// for a single instance; multi-instance deployments must use a shared store
// (RedisStore) or the guarantee does not hold across instances.
type Store interface {
	// Seen reports whether id was already marked and has not expired.
	Seen(ctx context.Context, id string) (bool, error)
	// Mark records id for ttl, returning ErrDuplicate when a live entry
	// already exists. The check-and-set is atomic so two instances racing
	// on the same delivery cannot both win. Call only after signature
	// validation succeeds, so a forged id can never block the legitimate
	// delivery.
	Mark(ctx context.Context, id string, ttl time.Duration) error
	// Delete releases a marked id. Used when applying the event failed
	// transiently after the mark, so the provider's retry is processed
	// instead of being answered as a replay.
	Delete(ctx context.Context, id string) error
}

// Clock abstracts time for testing expiry behavior.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }
