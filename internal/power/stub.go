package power

import "ddogreen/internal/logging"

// Stub records mode changes without touching the system
type Stub struct {
	logger  *logging.Logger
	tracker modeTracker
}

// NewStub creates a dry-run backend
func NewStub(logger *logging.Logger) *Stub {
	return &Stub{logger: logger}
}

// SetPerformanceMode logs the switch
func (s *Stub) SetPerformanceMode() bool {
	return s.tracker.apply(ModePerformance, func() bool { return s.log(ModePerformance) })
}

// SetPowerSavingMode logs the switch
func (s *Stub) SetPowerSavingMode() bool {
	return s.tracker.apply(ModePowerSaving, func() bool { return s.log(ModePowerSaving) })
}

func (s *Stub) log(mode string) bool {
	s.logger.Info("power.stub.set", "Dry run: would switch power mode", map[string]interface{}{
		"mode": mode,
	})
	return true
}

// GetCurrentMode returns the last recorded mode
func (s *Stub) GetCurrentMode() string {
	return s.tracker.get()
}

// IsAvailable always reports true
func (s *Stub) IsAvailable() bool {
	return true
}
