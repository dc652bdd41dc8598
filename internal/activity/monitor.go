// Package activity decides between performance and power-saving from sampled CPU load.
//
// A Monitor samples a SystemMonitor once per interval on its own goroutine and keeps a
// two-state machine (active / inactive). Load at or above the high threshold proposes
// active, load at or below the low threshold proposes inactive, anything in between keeps
// the current state. A proposed change is accepted only when MinimumStateChangeInterval has
// passed since the last accepted transition. The first sample after Start is always reported
// without the dwell check; if it leaves the inactive default, later changes wait out the dwell.
package activity

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"ddogreen/internal/logging"
	"ddogreen/internal/sysmon"
)

// MinimumStateChangeInterval is the dwell time between accepted transitions
const MinimumStateChangeInterval = 60 * time.Second

var (
	// ErrRunning is returned by setters while the worker is running
	ErrRunning = errors.New("activity monitor is running")
	// ErrInvalidInterval is returned when the sampling interval is unset or not positive
	ErrInvalidInterval = errors.New("sampling interval must be positive")
	// ErrInvalidThresholds is returned unless 0 < low < high <= 1
	ErrInvalidThresholds = errors.New("thresholds must satisfy 0 < power_save < high_performance <= 1")
	// ErrMonitorUnavailable is returned when the system monitor cannot sample load
	ErrMonitorUnavailable = errors.New("system monitor unavailable")
)

// Snapshot is a point-in-time view of the monitor
type Snapshot struct {
	Running        bool
	Active         bool
	Load           float64
	NormalizedLoad float64
	CoreCount      int
	HighThreshold  float64
	LowThreshold   float64
	Interval       time.Duration
	LastSample     time.Time
	// LastChange is zero until the first accepted transition
	LastChange  time.Time
	Samples     uint64
	Transitions uint64
	Suppressed  uint64
}

// Option configures a Monitor
type Option func(*Monitor)

// WithClock overrides the time source used for dwell decisions
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) {
		m.now = now
	}
}

// WithMinimumStateChangeInterval overrides the dwell time
func WithMinimumStateChangeInterval(d time.Duration) Option {
	return func(m *Monitor) {
		m.minDwell = d
	}
}

// Monitor is the load-driven activity state machine
type Monitor struct {
	sys       sysmon.SystemMonitor
	logger    *logging.Logger
	coreCount int
	minDwell  time.Duration
	now       func() time.Time

	// lifecycle serializes Start and Stop
	lifecycle sync.Mutex

	mu       sync.Mutex
	high     float64
	low      float64
	interval time.Duration
	callback func(active bool)
	observer func(Snapshot)
	running  bool
	stopCh   chan struct{}
	doneCh   chan struct{}

	active         bool
	load           float64
	normalizedLoad float64
	lastSample     time.Time
	lastChange     time.Time
	samples        uint64
	transitions    uint64
	suppressed     uint64
}

// NewMonitor creates a stopped monitor. The core count is read once here; an
// unavailable monitor or a non-positive count falls back to one core.
func NewMonitor(sys sysmon.SystemMonitor, logger *logging.Logger, opts ...Option) *Monitor {
	cores := 1
	if sys.IsAvailable() {
		if n := sys.GetCPUCoreCount(); n > 0 {
			cores = n
		}
	}

	m := &Monitor{
		sys:       sys,
		logger:    logger,
		coreCount: cores,
		minDwell:  MinimumStateChangeInterval,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetLoadThresholds sets the per-core load thresholds
func (m *Monitor) SetLoadThresholds(high, low float64) error {
	if !(low > 0 && low < high && high <= 1) {
		return fmt.Errorf("%w: high=%g low=%g", ErrInvalidThresholds, high, low)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return ErrRunning
	}
	m.high, m.low = high, low
	return nil
}

// SetMonitoringFrequency sets the sampling period in whole seconds
func (m *Monitor) SetMonitoringFrequency(seconds int) error {
	return m.SetSamplingInterval(time.Duration(seconds) * time.Second)
}

// SetSamplingInterval sets the sampling period
func (m *Monitor) SetSamplingInterval(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInterval, d)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return ErrRunning
	}
	m.interval = d
	return nil
}

// SetActivityCallback registers the function called on every accepted state change.
// It runs on the worker goroutine and must not call Stop.
func (m *Monitor) SetActivityCallback(fn func(active bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callback = fn
}

// SetSampleObserver registers a function called with a snapshot after every sample.
// It runs on the worker goroutine and must not call Stop.
func (m *Monitor) SetSampleObserver(fn func(Snapshot)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observer = fn
}

// Start launches the sampling goroutine and returns once the first sample has been
// evaluated. Starting a running monitor is a no-op.
func (m *Monitor) Start() error {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return nil
	}
	if m.interval <= 0 {
		m.mu.Unlock()
		return ErrInvalidInterval
	}
	if !(m.low > 0 && m.low < m.high && m.high <= 1) {
		m.mu.Unlock()
		return ErrInvalidThresholds
	}
	if !m.sys.IsAvailable() {
		m.mu.Unlock()
		return ErrMonitorUnavailable
	}

	m.active = false
	m.lastChange = time.Time{}
	m.lastSample = time.Time{}
	m.load, m.normalizedLoad = 0, 0
	m.samples, m.transitions, m.suppressed = 0, 0, 0

	stop := make(chan struct{})
	done := make(chan struct{})
	ready := make(chan struct{})
	m.stopCh, m.doneCh = stop, done
	m.running = true
	interval := m.interval
	high, low := m.high, m.low
	m.mu.Unlock()

	m.logger.Info("activity.started", "Activity monitor started", map[string]interface{}{
		"interval_s":     interval.Seconds(),
		"high_threshold": high,
		"low_threshold":  low,
		"cores":          m.coreCount,
	})

	go m.run(interval, stop, done, ready)
	<-ready
	return nil
}

// Stop signals the worker and waits for it to exit. Safe to call when not running.
func (m *Monitor) Stop() {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	stop, done := m.stopCh, m.doneCh
	m.mu.Unlock()

	close(stop)
	<-done

	m.mu.Lock()
	m.running = false
	m.stopCh, m.doneCh = nil, nil
	samples := m.samples
	m.mu.Unlock()

	m.logger.Info("activity.stopped", "Activity monitor stopped", map[string]interface{}{
		"samples": samples,
	})
}

// IsActive returns the last decided state; false until the first sample
func (m *Monitor) IsActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// IsRunning reports whether the worker goroutine is running
func (m *Monitor) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Snapshot returns the current monitor state
func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Monitor) snapshotLocked() Snapshot {
	return Snapshot{
		Running:        m.running,
		Active:         m.active,
		Load:           m.load,
		NormalizedLoad: m.normalizedLoad,
		CoreCount:      m.coreCount,
		HighThreshold:  m.high,
		LowThreshold:   m.low,
		Interval:       m.interval,
		LastSample:     m.lastSample,
		LastChange:     m.lastChange,
		Samples:        m.samples,
		Transitions:    m.transitions,
		Suppressed:     m.suppressed,
	}
}

func (m *Monitor) run(interval time.Duration, stop <-chan struct{}, done chan<- struct{}, ready chan<- struct{}) {
	defer close(done)

	func() {
		defer close(ready)
		m.sample(true)
	}()

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-stop:
			return
		case <-timer.C:
			m.sample(false)
			timer.Reset(interval)
		}
	}
}

// sample reads load once and applies the state machine
func (m *Monitor) sample(first bool) {
	load := m.sys.GetLoad()
	normalized := load / float64(m.coreCount)
	now := m.now()

	m.mu.Lock()
	m.load, m.normalizedLoad = load, normalized
	m.lastSample = now
	m.samples++

	candidate := m.active
	if normalized >= m.high {
		candidate = true
	} else if normalized <= m.low {
		candidate = false
	}

	report := false
	switch {
	case first:
		// the initial state is always reported; a change from the inactive
		// default is an accepted transition and arms the dwell guard
		if candidate != m.active {
			m.active = candidate
			m.lastChange = now
			m.transitions++
		}
		report = true
	case candidate != m.active:
		if m.lastChange.IsZero() || now.Sub(m.lastChange) >= m.minDwell {
			m.active = candidate
			m.lastChange = now
			m.transitions++
			report = true
		} else {
			m.suppressed++
			m.logger.Debug("activity.transition.suppressed", "State change held by dwell guard", map[string]interface{}{
				"candidate_active": candidate,
				"normalized_load":  normalized,
				"since_change_s":   now.Sub(m.lastChange).Seconds(),
			})
		}
	}

	active := m.active
	callback := m.callback
	observer := m.observer
	snapshot := m.snapshotLocked()
	m.mu.Unlock()

	m.logger.Debug("activity.sample", "Load sampled", map[string]interface{}{
		"load":            load,
		"normalized_load": normalized,
		"active":          active,
	})

	if report {
		event, message := "activity.transition", "Activity state changed"
		if first {
			event, message = "activity.initial", "Initial activity state"
		}
		m.logger.Info(event, message, map[string]interface{}{
			"active":          active,
			"normalized_load": normalized,
		})
		m.invoke("callback", func() {
			if callback != nil {
				callback(active)
			}
		})
	}

	if observer != nil {
		m.invoke("observer", func() { observer(snapshot) })
	}
}

// invoke runs fn, recovering and logging a panic so the worker keeps sampling
func (m *Monitor) invoke(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("activity.callback.panic", "Recovered panic in activity "+name, map[string]interface{}{
				"panic": fmt.Sprint(r),
			})
		}
	}()
	fn()
}
