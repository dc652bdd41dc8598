package power

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ddogreen/internal/logging"
)

// DefaultCPUSysfsRoot is where per-CPU cpufreq directories live on Linux
const DefaultCPUSysfsRoot = "/sys/devices/system/cpu"

const (
	governorPerformance = "performance"
	governorPowersave   = "powersave"
)

// Governor switches the cpufreq scaling governor of every CPU
type Governor struct {
	root    string
	logger  *logging.Logger
	tracker modeTracker
}

// NewGovernor creates a governor backend rooted at a sysfs cpu directory
func NewGovernor(root string, logger *logging.Logger) *Governor {
	return &Governor{
		root:   root,
		logger: logger,
	}
}

// SetPerformanceMode writes "performance" to every scaling_governor
func (g *Governor) SetPerformanceMode() bool {
	return g.tracker.apply(ModePerformance, func() bool { return g.write(governorPerformance) })
}

// SetPowerSavingMode writes "powersave" to every scaling_governor
func (g *Governor) SetPowerSavingMode() bool {
	return g.tracker.apply(ModePowerSaving, func() bool { return g.write(governorPowersave) })
}

func (g *Governor) write(governor string) bool {
	paths, err := g.governorFiles()
	if err != nil {
		g.logger.Error("power.governor.failed", "No cpufreq governors found", map[string]interface{}{
			"error": err.Error(),
		})
		return false
	}

	for _, path := range paths {
		if err := os.WriteFile(path, []byte(governor), 0o644); err != nil { // #nosec G306 -- sysfs attribute
			g.logger.Error("power.governor.failed", "Failed to set CPU governor", map[string]interface{}{
				"path":     path,
				"governor": governor,
				"error":    err.Error(),
			})
			return false
		}
	}

	g.logger.Info("power.governor.set", "CPU governor set", map[string]interface{}{
		"governor": governor,
		"cpus":     len(paths),
	})
	return true
}

// GetCurrentMode reads the first CPU's governor
func (g *Governor) GetCurrentMode() string {
	paths, err := g.governorFiles()
	if err != nil {
		return g.tracker.get()
	}

	data, err := os.ReadFile(paths[0])
	if err != nil {
		g.logger.Warn("power.governor.read_failed", "Failed to read CPU governor", map[string]interface{}{
			"error": err.Error(),
		})
		return g.tracker.get()
	}

	switch strings.TrimSpace(string(data)) {
	case governorPerformance:
		return ModePerformance
	case governorPowersave:
		return ModePowerSaving
	default:
		return ModeUnknown
	}
}

// IsAvailable reports whether both governors are offered by cpufreq
func (g *Governor) IsAvailable() bool {
	data, err := os.ReadFile(filepath.Join(g.root, "cpu0", "cpufreq", "scaling_available_governors"))
	if err != nil {
		return false
	}

	available := strings.Fields(string(data))
	return contains(available, governorPerformance) && contains(available, governorPowersave)
}

func (g *Governor) governorFiles() ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(g.root, "cpu[0-9]*", "cpufreq", "scaling_governor"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scaling_governor under %s", g.root)
	}
	return paths, nil
}

func contains(items []string, item string) bool {
	for _, s := range items {
		if s == item {
			return true
		}
	}
	return false
}
