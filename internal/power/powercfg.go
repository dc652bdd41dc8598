package power

import (
	"strings"

	"ddogreen/internal/logging"
)

// Built-in Windows power scheme GUIDs
const (
	SchemeHighPerformance = "8c5e7fda-e8bf-4a96-9a85-a6e23a8c635c"
	SchemePowerSaver      = "a1841308-3541-4fab-bc81-f71556f20b4a"
)

// Powercfg activates Windows power schemes with powercfg.exe
type Powercfg struct {
	runner  Runner
	logger  *logging.Logger
	tracker modeTracker
}

// NewPowercfg creates a powercfg backend
func NewPowercfg(runner Runner, logger *logging.Logger) *Powercfg {
	return &Powercfg{
		runner: runner,
		logger: logger,
	}
}

// SetPerformanceMode activates the High Performance scheme
func (p *Powercfg) SetPerformanceMode() bool {
	return p.tracker.apply(ModePerformance, func() bool { return p.activate(ModePerformance, SchemeHighPerformance) })
}

// SetPowerSavingMode activates the Power Saver scheme
func (p *Powercfg) SetPowerSavingMode() bool {
	return p.tracker.apply(ModePowerSaving, func() bool { return p.activate(ModePowerSaving, SchemePowerSaver) })
}

func (p *Powercfg) activate(mode, guid string) bool {
	output, err := p.runner.Run("powercfg", "/setactive", guid)
	if err != nil {
		p.logger.Error("power.powercfg.failed", "Failed to activate power scheme", map[string]interface{}{
			"mode":   mode,
			"scheme": guid,
			"error":  err.Error(),
			"output": strings.TrimSpace(string(output)),
		})
		return false
	}

	p.logger.Info("power.powercfg.set", "Power scheme activated", map[string]interface{}{
		"mode":   mode,
		"scheme": guid,
	})
	return true
}

// GetCurrentMode maps the active scheme GUID to a mode
func (p *Powercfg) GetCurrentMode() string {
	output, err := p.runner.Run("powercfg", "/getactivescheme")
	if err != nil {
		p.logger.Warn("power.powercfg.query_failed", "Failed to query active power scheme", map[string]interface{}{
			"error": err.Error(),
		})
		return p.tracker.get()
	}

	out := strings.ToLower(string(output))
	switch {
	case strings.Contains(out, SchemeHighPerformance):
		return ModePerformance
	case strings.Contains(out, SchemePowerSaver):
		return ModePowerSaving
	default:
		return ModeUnknown
	}
}

// IsAvailable reports whether powercfg is on PATH
func (p *Powercfg) IsAvailable() bool {
	_, err := p.runner.LookPath("powercfg")
	return err == nil
}
