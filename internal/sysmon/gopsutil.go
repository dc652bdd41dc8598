package sysmon

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"

	"ddogreen/internal/logging"
)

const sampleTimeout = 5 * time.Second

// HostMonitor samples load through gopsutil; it is the default monitor on every platform
type HostMonitor struct {
	logger    *logging.Logger
	coreCount int
	available bool
}

// NewHostMonitor creates a gopsutil backed monitor, caching the logical core count
func NewHostMonitor(logger *logging.Logger) *HostMonitor {
	m := &HostMonitor{logger: logger}

	ctx, cancel := context.WithTimeout(context.Background(), sampleTimeout)
	defer cancel()

	count, err := cpu.CountsWithContext(ctx, true)
	if err != nil || count <= 0 {
		payload := map[string]interface{}{"count": count}
		if err != nil {
			payload["error"] = err.Error()
		}
		logger.Warn("sysmon.cores.unknown", "Could not determine core count, assuming 1 core", payload)
		count = 1
	}
	m.coreCount = count

	if _, err := load.AvgWithContext(ctx); err != nil {
		logger.Error("sysmon.load.unavailable", "Load average not supported on this host", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		m.available = true
	}

	return m
}

// GetLoad returns the 1-minute load average
func (m *HostMonitor) GetLoad() float64 {
	ctx, cancel := context.WithTimeout(context.Background(), sampleTimeout)
	defer cancel()

	avg, err := load.AvgWithContext(ctx)
	if err != nil {
		m.logger.Error("sysmon.load.read_failed", "Failed to read load average", map[string]interface{}{
			"error": err.Error(),
		})
		return 0
	}
	return avg.Load1
}

// GetCPUCoreCount returns the cached core count
func (m *HostMonitor) GetCPUCoreCount() int {
	return m.coreCount
}

// IsAvailable reports whether load sampling worked at construction
func (m *HostMonitor) IsAvailable() bool {
	return m.available
}
