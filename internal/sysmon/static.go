package sysmon

import "sync"

// Static is a SystemMonitor returning scripted load values.
// Each GetLoad call consumes the next queued value; the last one repeats.
type Static struct {
	mu        sync.Mutex
	cores     int
	available bool
	loads     []float64
	calls     int
}

// NewStatic creates an available monitor with the given core count and load script
func NewStatic(cores int, loads ...float64) *Static {
	if len(loads) == 0 {
		loads = []float64{0}
	}
	return &Static{cores: cores, available: true, loads: loads}
}

// SetLoad replaces the script with a single repeating value
func (s *Static) SetLoad(load float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads = []float64{load}
}

// SetAvailable toggles availability
func (s *Static) SetAvailable(available bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.available = available
}

// GetLoad returns the next scripted value
func (s *Static) GetLoad() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	load := s.loads[0]
	if len(s.loads) > 1 {
		s.loads = s.loads[1:]
	}
	return load
}

// GetCPUCoreCount returns the configured core count
func (s *Static) GetCPUCoreCount() int {
	return s.cores
}

// IsAvailable reports the configured availability
func (s *Static) IsAvailable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.available
}

// Calls returns how many times GetLoad was invoked
func (s *Static) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
