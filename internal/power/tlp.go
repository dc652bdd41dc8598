package power

import (
	"bufio"
	"strings"

	"ddogreen/internal/logging"
)

// TLP drives the Linux TLP tool: "tlp ac" for performance, "tlp bat" for power saving
type TLP struct {
	runner  Runner
	logger  *logging.Logger
	tracker modeTracker
}

// NewTLP creates a TLP backend
func NewTLP(runner Runner, logger *logging.Logger) *TLP {
	return &TLP{
		runner: runner,
		logger: logger,
	}
}

// SetPerformanceMode runs "tlp ac"
func (t *TLP) SetPerformanceMode() bool {
	return t.tracker.apply(ModePerformance, func() bool { return t.switchTo(ModePerformance, "ac") })
}

// SetPowerSavingMode runs "tlp bat"
func (t *TLP) SetPowerSavingMode() bool {
	return t.tracker.apply(ModePowerSaving, func() bool { return t.switchTo(ModePowerSaving, "bat") })
}

func (t *TLP) switchTo(mode, arg string) bool {
	t.logger.Info("power.tlp.switch", "Switching TLP mode", map[string]interface{}{
		"mode":    mode,
		"command": "tlp " + arg,
	})

	// tlp does not reliably signal failure through its exit code, so the output is inspected too
	output, err := t.runner.Run("tlp", arg)
	cleaned := cleanTLPOutput(string(output))
	if err != nil || strings.Contains(strings.ToLower(cleaned), "error") {
		payload := map[string]interface{}{
			"mode":   mode,
			"output": cleaned,
		}
		if err != nil {
			payload["error"] = err.Error()
		}
		t.logger.Error("power.tlp.failed", "TLP mode switch failed", payload)
		return false
	}

	if cleaned != "" {
		t.logger.Debug("power.tlp.output", "TLP output", map[string]interface{}{"output": cleaned})
	}
	return true
}

// GetCurrentMode parses "tlp-stat -s", falling back to the last applied mode
func (t *TLP) GetCurrentMode() string {
	output, err := t.runner.Run("tlp-stat", "-s")
	if err != nil {
		t.logger.Warn("power.tlp.stat_failed", "Failed to query TLP status", map[string]interface{}{
			"error": err.Error(),
		})
		return t.tracker.get()
	}

	if mode := parseTLPMode(string(output)); mode != ModeUnknown {
		t.tracker.set(mode)
		return mode
	}
	return t.tracker.get()
}

// IsAvailable reports whether tlp is installed
func (t *TLP) IsAvailable() bool {
	_, err := t.runner.LookPath("tlp")
	return err == nil
}

// parseTLPMode reads "Mode = AC" / "Mode = battery" lines, and the older
// TLP_DEFAULT_MODE=AC|BAT form.
func parseTLPMode(output string) string {
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if key, value, ok := strings.Cut(line, "="); ok {
			key = strings.TrimSpace(key)
			value = strings.TrimSpace(value)
			if i := strings.IndexAny(value, " \t("); i >= 0 {
				value = value[:i]
			}

			switch key {
			case "Mode":
				switch strings.ToLower(value) {
				case "ac":
					return ModePerformance
				case "battery", "bat":
					return ModePowerSaving
				}
			case "TLP_DEFAULT_MODE":
				switch strings.ToUpper(value) {
				case "AC":
					return ModePerformance
				case "BAT":
					return ModePowerSaving
				}
			}
		}
	}
	return ModeUnknown
}

// cleanTLPOutput drops blank lines and the "TLP started in ..." banner
func cleanTLPOutput(output string) string {
	var kept []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "TLP started in") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "; ")
}
