package ratelimit

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestLimiter_AllowsUpToMaxPerWindow(t *testing.T) {
	clock := newFakeClock()
	l := New(3, time.Second, WithClock(clock.Now))

	for i := 0; i < 3; i++ {
		assert.True(t, l.IsAllowed("power_mode_change"), "request %d", i+1)
	}
	assert.False(t, l.IsAllowed("power_mode_change"))
	assert.False(t, l.IsAllowed("power_mode_change"))
}

func TestLimiter_NewWindowAfterExpiry(t *testing.T) {
	clock := newFakeClock()
	l := New(2, time.Second, WithClock(clock.Now))

	require.True(t, l.IsAllowed("k"))
	require.True(t, l.IsAllowed("k"))
	require.False(t, l.IsAllowed("k"))

	clock.Advance(999 * time.Millisecond)
	assert.False(t, l.IsAllowed("k"), "window still open")

	clock.Advance(time.Millisecond)
	assert.True(t, l.IsAllowed("k"), "elapsed == window opens a new one")
	assert.True(t, l.IsAllowed("k"))
	assert.False(t, l.IsAllowed("k"))
}

func TestLimiter_BoundaryBurst(t *testing.T) {
	clock := newFakeClock()
	l := New(5, time.Second, WithClock(clock.Now))

	require.True(t, l.IsAllowed("k"))
	clock.Advance(900 * time.Millisecond)

	allowed := 1
	for i := 0; i < 4; i++ {
		if l.IsAllowed("k") {
			allowed++
		}
	}
	clock.Advance(100 * time.Millisecond)
	for i := 0; i < 5; i++ {
		if l.IsAllowed("k") {
			allowed++
		}
	}

	// 10 requests inside ~100ms are accepted across the boundary
	assert.Equal(t, 10, allowed)
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	l := New(1, time.Minute)

	assert.True(t, l.IsAllowed("a"))
	assert.False(t, l.IsAllowed("a"))
	assert.True(t, l.IsAllowed("b"))
}

func TestLimiter_Reset(t *testing.T) {
	l := New(1, time.Minute)

	require.True(t, l.IsAllowed("a"))
	require.True(t, l.IsAllowed("b"))
	require.False(t, l.IsAllowed("a"))

	l.Reset("a")
	assert.True(t, l.IsAllowed("a"))
	assert.False(t, l.IsAllowed("b"))

	l.ResetAll()
	assert.Equal(t, 0, l.Len())
	assert.True(t, l.IsAllowed("b"))
}

func TestLimiter_PurgesStaleEntries(t *testing.T) {
	clock := newFakeClock()
	l := New(1, 100*time.Millisecond, WithClock(clock.Now))

	require.True(t, l.IsAllowed("old"))
	clock.Advance(time.Second)
	require.True(t, l.IsAllowed("fresh"))
	assert.Equal(t, 2, l.Len(), "exactly 10 windows idle is kept")

	clock.Advance(time.Millisecond)
	require.True(t, l.IsAllowed("fresh2"))
	assert.Equal(t, 2, l.Len(), "old entry purged after 10 windows")
}

func TestLimiter_ConcurrentBudget(t *testing.T) {
	l := New(50, time.Hour)

	var allowed atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				if l.IsAllowed("shared") {
					allowed.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), allowed.Load())
}
