package sysmon

import (
	"runtime"

	"ddogreen/internal/logging"
)

// DefaultProcRoot is the procfs mount read when gopsutil cannot sample load on Linux
const DefaultProcRoot = "/proc"

// New returns the platform system monitor
func New(logger *logging.Logger) SystemMonitor {
	return withFallback(runtime.GOOS, NewHostMonitor(logger), DefaultProcRoot, logger)
}

// withFallback keeps host unless it is unavailable on Linux, where procfs is read directly
func withFallback(goos string, host SystemMonitor, procRoot string, logger *logging.Logger) SystemMonitor {
	if host.IsAvailable() || goos != "linux" {
		return host
	}

	logger.Warn("sysmon.fallback.procfs", "gopsutil load sampling unavailable, reading procfs directly", map[string]interface{}{
		"proc_root": procRoot,
	})
	return NewProcMonitor(procRoot, logger)
}
