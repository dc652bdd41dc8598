// Package power applies the two-state power policy through an OS specific backend.
package power

import "sync"

// Mode names reported by GetCurrentMode
const (
	ModePerformance = "performance"
	ModePowerSaving = "powersaving"
	ModeUnknown     = "unknown"
)

// PowerManager switches the system between performance and power-saving profiles.
// Implementations are idempotent: requesting the last applied mode succeeds without
// re-issuing the OS command.
type PowerManager interface {
	SetPerformanceMode() bool
	SetPowerSavingMode() bool
	GetCurrentMode() string
	IsAvailable() bool
}

// modeTracker remembers the last mode a backend applied; the zero value is unknown
type modeTracker struct {
	mu      sync.Mutex
	current string
}

// apply runs fn unless mode is already current, recording mode on success
func (t *modeTracker) apply(mode string, fn func() bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current == mode {
		return true
	}
	if !fn() {
		return false
	}
	t.current = mode
	return true
}

func (t *modeTracker) get() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == "" {
		return ModeUnknown
	}
	return t.current
}

func (t *modeTracker) set(mode string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = mode
}
