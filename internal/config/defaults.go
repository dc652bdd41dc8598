package config

import (
	"path/filepath"

	"ddogreen/internal/fsutil"
)

const (
	// BackendAuto picks the best backend for the running platform
	BackendAuto = "auto"
	// BackendTLP drives the Linux TLP tool
	BackendTLP = "tlp"
	// BackendGovernor writes the Linux cpufreq scaling governor
	BackendGovernor = "governor"
	// BackendPowercfg switches Windows power schemes
	BackendPowercfg = "powercfg"
	// BackendPmset applies macOS pmset profiles
	BackendPmset = "pmset"
	// BackendStub only logs what it would do
	BackendStub = "stub"
)

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() Config {
	stateDir := fsutil.GetStateDir()

	return Config{
		MonitoringFrequency:      10,
		HighPerformanceThreshold: 0.7,
		PowerSaveThreshold:       0.3,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		RateLimit: RateLimitConfig{
			MaxRequests: 5,
			WindowMS:    1000,
		},
		Power: PowerConfig{
			Backend: BackendAuto,
		},
		Status: StatusConfig{
			StateFile:   filepath.Join(stateDir, "status.json"),
			HistoryFile: filepath.Join(stateDir, "transitions.jsonl"),
		},
	}
}
