package power

import (
	"sync"

	"ddogreen/internal/ratelimit"
)

// RateLimitKey is the limiter key shared by both mode-change operations
const RateLimitKey = "power_mode_change"

// RateLimited guards mode changes of another PowerManager with a limiter.
// A rejected request returns false without reaching the wrapped backend.
type RateLimited struct {
	next    PowerManager
	limiter *ratelimit.Limiter

	mu       sync.Mutex
	onReject func()
}

// NewRateLimited wraps pm so that mode changes consume limiter budget
func NewRateLimited(pm PowerManager, limiter *ratelimit.Limiter) *RateLimited {
	return &RateLimited{next: pm, limiter: limiter}
}

// OnReject registers a hook invoked for every rejected request
func (r *RateLimited) OnReject(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onReject = fn
}

// SetPerformanceMode forwards when the limiter allows it
func (r *RateLimited) SetPerformanceMode() bool {
	if !r.allow() {
		return false
	}
	return r.next.SetPerformanceMode()
}

// SetPowerSavingMode forwards when the limiter allows it
func (r *RateLimited) SetPowerSavingMode() bool {
	if !r.allow() {
		return false
	}
	return r.next.SetPowerSavingMode()
}

// GetCurrentMode is not rate limited
func (r *RateLimited) GetCurrentMode() string {
	return r.next.GetCurrentMode()
}

// IsAvailable is not rate limited
func (r *RateLimited) IsAvailable() bool {
	return r.next.IsAvailable()
}

func (r *RateLimited) allow() bool {
	if r.limiter.IsAllowed(RateLimitKey) {
		return true
	}

	r.mu.Lock()
	hook := r.onReject
	r.mu.Unlock()
	if hook != nil {
		hook()
	}
	return false
}
