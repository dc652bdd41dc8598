// Package ratelimit implements a fixed-window request counter keyed by operation name.
//
// A window opens on the first request for a key and lasts for the configured duration.
// Requests past the budget are rejected until the window expires. Because windows are
// fixed rather than sliding, up to 2×max requests can pass around a window boundary.
package ratelimit

import (
	"sync"
	"time"

	"ddogreen/internal/logging"
)

// staleWindows is how many idle windows an entry survives before it is purged
const staleWindows = 10

type entry struct {
	windowStart time.Time
	count       int
	lastRequest time.Time
}

// Limiter is a fixed-window rate limiter safe for concurrent use
type Limiter struct {
	mu          sync.Mutex
	maxRequests int
	window      time.Duration
	entries     map[string]*entry
	now         func() time.Time
	logger      *logging.Logger
}

// Option configures a Limiter
type Option func(*Limiter)

// WithLogger sets the logger used for debug-level rejection events
func WithLogger(logger *logging.Logger) Option {
	return func(l *Limiter) {
		l.logger = logger
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// New creates a limiter allowing maxRequests per window for each key
func New(maxRequests int, window time.Duration, opts ...Option) *Limiter {
	l := &Limiter{
		maxRequests: maxRequests,
		window:      window,
		entries:     make(map[string]*entry),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// IsAllowed records a request for key and reports whether it fits the current window.
// Rejected requests do not consume budget.
func (l *Limiter) IsAllowed(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.purgeStale(now)

	e, ok := l.entries[key]
	if !ok || now.Sub(e.windowStart) >= l.window {
		l.entries[key] = &entry{windowStart: now, count: 1, lastRequest: now}
		return true
	}

	if e.count >= l.maxRequests {
		l.logger.Debug("ratelimit.rejected", "Request over budget for current window", map[string]interface{}{
			"key":          key,
			"max_requests": l.maxRequests,
			"window_ms":    l.window.Milliseconds(),
		})
		return false
	}

	e.count++
	e.lastRequest = now
	return true
}

// Reset forgets the window for key
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, key)
}

// ResetAll forgets every window
func (l *Limiter) ResetAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = make(map[string]*entry)
}

// Len returns the number of tracked keys
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *Limiter) purgeStale(now time.Time) {
	cutoff := l.window * staleWindows
	for key, e := range l.entries {
		if now.Sub(e.lastRequest) > cutoff {
			delete(l.entries, key)
		}
	}
}
