package power

import (
	"strings"

	"ddogreen/internal/logging"
)

// pmset argument sets; -c applies on charger, -b on battery, -a on both
var (
	pmsetPerformance = [][]string{
		{"-c", "sleep", "0"},
		{"-c", "displaysleep", "15"},
		{"-c", "disksleep", "0"},
		{"-c", "powernap", "1"},
	}
	pmsetPowerSaving = [][]string{
		{"-c", "sleep", "30"},
		{"-c", "displaysleep", "10"},
		{"-c", "disksleep", "10"},
		{"-b", "sleep", "5"},
		{"-b", "displaysleep", "2"},
		{"-b", "disksleep", "5"},
		{"-a", "powernap", "0"},
	}
)

// Pmset applies macOS power profiles through pmset
type Pmset struct {
	runner  Runner
	logger  *logging.Logger
	tracker modeTracker
}

// NewPmset creates a pmset backend
func NewPmset(runner Runner, logger *logging.Logger) *Pmset {
	return &Pmset{
		runner: runner,
		logger: logger,
	}
}

// SetPerformanceMode disables sleep on AC and enables Power Nap
func (p *Pmset) SetPerformanceMode() bool {
	return p.tracker.apply(ModePerformance, func() bool { return p.applyProfile(ModePerformance, pmsetPerformance) })
}

// SetPowerSavingMode shortens sleep timers and disables Power Nap
func (p *Pmset) SetPowerSavingMode() bool {
	return p.tracker.apply(ModePowerSaving, func() bool { return p.applyProfile(ModePowerSaving, pmsetPowerSaving) })
}

func (p *Pmset) applyProfile(mode string, profile [][]string) bool {
	for _, args := range profile {
		if output, err := p.runner.Run("pmset", args...); err != nil {
			p.logger.Error("power.pmset.failed", "pmset command failed", map[string]interface{}{
				"mode":   mode,
				"args":   strings.Join(args, " "),
				"error":  err.Error(),
				"output": strings.TrimSpace(string(output)),
			})
			return false
		}
	}

	p.logger.Info("power.pmset.set", "Power profile applied", map[string]interface{}{
		"mode":     mode,
		"settings": len(profile),
	})
	return true
}

// GetCurrentMode returns the last applied profile; pmset has no notion of a named mode
func (p *Pmset) GetCurrentMode() string {
	return p.tracker.get()
}

// IsAvailable reports whether pmset is on PATH
func (p *Pmset) IsAvailable() bool {
	_, err := p.runner.LookPath("pmset")
	return err == nil
}
