package replay

import (
	"context"
	"sync"
	"time"
)

const (
	defaultMaxEntries      = 10_000
	defaultCleanupInterval = 5 * time.Minute
)

// MemoryStore is a mutex-guarded TTL map with a bounded total size and
// opportunistic eviction of expired entries.
type MemoryStore struct {
	clock      Clock
	maxEntries int

	mu      sync.RWMutex
	expires map[string]time.Time

	cleanupCtx    context.Context
	cleanupCancel context.CancelFunc
	cleanupOnce   sync.Once
	cleanupWg     sync.WaitGroup
}

// MemoryOption adjusts a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock substitutes the time source, for tests.
func WithClock(clock Clock) MemoryOption {
	return func(s *MemoryStore) { s.clock = clock }
}

// WithMaxEntries bounds the cache size.
func WithMaxEntries(n int) MemoryOption {
	return func(s *MemoryStore) { s.maxEntries = n }
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	ctx, cancel := context.WithCancel(context.Background())
	s := &MemoryStore{
		clock:         realClock{},
		maxEntries:    defaultMaxEntries,
		expires:       make(map[string]time.Time),
		cleanupCtx:    ctx,
		cleanupCancel: cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close stops the cleanup goroutine.
func (s *MemoryStore) Close() {
	s.cleanupCancel()
	s.cleanupWg.Wait()
}

func (s *MemoryStore) Seen(_ context.Context, id string) (bool, error) {
	s.startCleanup()
	now := s.clock.Now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	expiry, ok := s.expires[id]
	if !ok {
		return false, nil
	}
	return now.Before(expiry), nil
}

func (s *MemoryStore) Mark(_ context.Context, id string, ttl time.Duration) error {
	s.startCleanup()
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if expiry, ok := s.expires[id]; ok && now.Before(expiry) {
		return ErrDuplicate
	}

	if len(s.expires) >= s.maxEntries {
		s.evictExpiredLocked(now)
	}
	// Still full after evicting expired entries: drop the entry closest to
	// expiry so a burst cannot grow the map without bound.
	if len(s.expires) >= s.maxEntries {
		s.evictSoonestLocked()
	}

	s.expires[id] = now.Add(ttl)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.expires, id)
	return nil
}

func (s *MemoryStore) evictExpiredLocked(now time.Time) {
	for id, expiry := range s.expires {
		if !now.Before(expiry) {
			delete(s.expires, id)
		}
	}
}

func (s *MemoryStore) evictSoonestLocked() {
	var victim string
	var soonest time.Time
	for id, expiry := range s.expires {
		if victim == "" || expiry.Before(soonest) {
			victim = id
			soonest = expiry
		}
	}
	if victim != "" {
		delete(s.expires, victim)
	}
}

func (s *MemoryStore) startCleanup() {
	s.cleanupOnce.Do(func() {
		s.cleanupWg.Add(1)
		go func() {
			defer s.cleanupWg.Done()
			ticker := time.NewTicker(defaultCleanupInterval)
			defer ticker.Stop()
			for {
				select {
				case <-s.cleanupCtx.Done():
					return
				case <-ticker.C:
					now := s.clock.Now()
					s.mu.Lock()
					s.evictExpiredLocked(now)
					s.mu.Unlock()
				}
			}
		}()
	})
}
