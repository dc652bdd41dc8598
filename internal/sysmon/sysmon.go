// Package sysmon provides the load signal that drives the activity monitor.
package sysmon

// SystemMonitor reports aggregate CPU load and the number of logical cores
type SystemMonitor interface {
	// GetLoad returns the 1-minute load average, or 0 when it cannot be read.
	// Failures are logged by the implementation.
	GetLoad() float64
	// GetCPUCoreCount returns the logical core count cached at construction
	GetCPUCoreCount() int
	// IsAvailable reports whether load can be sampled on this host
	IsAvailable() bool
}

var (
	_ SystemMonitor = (*ProcMonitor)(nil)
	_ SystemMonitor = (*HostMonitor)(nil)
	_ SystemMonitor = (*Static)(nil)
)
