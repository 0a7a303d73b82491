// Package ratelimit provides per-source rate limiting for inbound webhook
// deliveries and other unauthenticated endpoints.
package ratelimit

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Clock interface for testing time-dependent behavior.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Config holds rate limit configuration.
type Config struct {
	// Window is the fixed counting window (default: 1m).
	Window time.Duration
	// MaxPerWindow is the request cap per source per window (default: 120).
	MaxPerWindow int

	// Clock for testing (nil uses real time)
	Clock Clock
}

// DefaultConfig returns production-ready defaults. The cap is generous: a
// payment provider retrying honestly stays far under it, while a flood of
// forged deliveries does not.
func DefaultConfig() *Config {
	return &Config{
		Window:       time.Minute,
		MaxPerWindow: 120,
	}
}

// LimitResult contains the result of a rate limit check.
type LimitResult struct {
	Allowed    bool
	RetryAfter time.Duration
}

type entry struct {
	count   int
	firstAt time.Time
}

// Limiter counts requests per hashed source in fixed windows.
type Limiter struct {
	config *Config
	clock  Clock

	mu sync.Mutex
	// Keyed by hash of the source IP.
	bySource map[string]*entry

	cleanupOnce sync.Once
	closeOnce   sync.Once
	cleanupStop chan struct{}
}

// New creates a new rate limiter with the given config.
func New(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.MaxPerWindow <= 0 {
		cfg.MaxPerWindow = 120
	}
	clock := cfg.Clock
	if clock == nil {
		clock = realClock{}
	}
	return &Limiter{
		config:      cfg,
		clock:       clock,
		bySource:    make(map[string]*entry),
		cleanupStop: make(chan struct{}),
	}
}

// Close stops the cleanup goroutine.
func (l *Limiter) Close() {
	l.closeOnce.Do(func() {
		close(l.cleanupStop)
	})
}

// Check records one request from the given source and reports whether it is
// within the limit.
func (l *Limiter) Check(source string) LimitResult {
	l.startCleanup()
	now := l.clock.Now()
	key := hashKey(source)

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.bySource[key]
	if !ok || now.Sub(e.firstAt) >= l.config.Window {
		l.bySource[key] = &entry{count: 1, firstAt: now}
		return LimitResult{Allowed: true}
	}

	e.count++
	if e.count > l.config.MaxPerWindow {
		return LimitResult{
			Allowed:    false,
			RetryAfter: l.config.Window - now.Sub(e.firstAt),
		}
	}
	return LimitResult{Allowed: true}
}

func (l *Limiter) startCleanup() {
	l.cleanupOnce.Do(func() {
		go func() {
			ticker := time.NewTicker(l.config.Window)
			defer ticker.Stop()
			for {
				select {
				case <-l.cleanupStop:
					return
				case <-ticker.C:
					l.evictStale()
				}
			}
		}()
	})
}

func (l *Limiter) evictStale() {
	now := l.clock.Now()
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, e := range l.bySource {
		if now.Sub(e.firstAt) >= l.config.Window {
			delete(l.bySource, key)
		}
	}
}

func hashKey(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

// SourceIP extracts the client IP for limiting, trusting X-Forwarded-For
// only for its first hop.
func SourceIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if first, _, found := strings.Cut(forwarded, ","); found || first != "" {
			return strings.TrimSpace(first)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Middleware wraps a handler with the limiter, answering 429 when a source
// exceeds its window cap.
func Middleware(l *Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			source := SourceIP(r)
			result := l.Check(source)
			if !result.Allowed {
				log.Ctx(r.Context()).Warn().Str("source", source).Msg("Rate limit exceeded")
				seconds := int(result.RetryAfter.Seconds())
				if seconds < 1 {
					seconds = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
