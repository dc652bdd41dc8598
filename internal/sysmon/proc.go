package sysmon

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"ddogreen/internal/logging"
)

// ProcMonitor reads load from a procfs mount; the Linux fallback when gopsutil cannot sample
type ProcMonitor struct {
	logger    *logging.Logger
	procRoot  string
	coreCount int
	available bool
}

// NewProcMonitor creates a monitor rooted at procRoot (normally "/proc").
// The core count is read once here.
func NewProcMonitor(procRoot string, logger *logging.Logger) *ProcMonitor {
	m := &ProcMonitor{
		logger:   logger,
		procRoot: procRoot,
	}

	m.coreCount = m.readCoreCount()

	if _, err := os.Stat(m.loadavgPath()); err != nil {
		logger.Error("sysmon.loadavg.unavailable", "Cannot access load average", map[string]interface{}{
			"path":  m.loadavgPath(),
			"error": err.Error(),
		})
	} else {
		m.available = true
	}

	logger.Debug("sysmon.proc.init", "Proc system monitor initialized", map[string]interface{}{
		"cores":     m.coreCount,
		"available": m.available,
	})
	return m
}

// GetLoad returns the first field of loadavg
func (m *ProcMonitor) GetLoad() float64 {
	data, err := os.ReadFile(m.loadavgPath())
	if err != nil {
		m.logger.Error("sysmon.load.read_failed", "Failed to read load average", map[string]interface{}{
			"error": err.Error(),
		})
		return 0
	}

	load, err := parseLoadavg(data)
	if err != nil {
		m.logger.Error("sysmon.load.parse_failed", "Failed to parse load average", map[string]interface{}{
			"error": err.Error(),
		})
		return 0
	}
	return load
}

// GetCPUCoreCount returns the cached core count
func (m *ProcMonitor) GetCPUCoreCount() int {
	return m.coreCount
}

// IsAvailable reports whether loadavg was readable at construction
func (m *ProcMonitor) IsAvailable() bool {
	return m.available && m.coreCount > 0
}

func (m *ProcMonitor) loadavgPath() string {
	return filepath.Join(m.procRoot, "loadavg")
}

func (m *ProcMonitor) readCoreCount() int {
	path := filepath.Join(m.procRoot, "cpuinfo")
	data, err := os.ReadFile(path) // #nosec G304 -- procfs path
	if err != nil {
		m.logger.Warn("sysmon.cpuinfo.unavailable", "Cannot read cpuinfo, assuming 1 core", map[string]interface{}{
			"error": err.Error(),
		})
		return 1
	}

	count := countProcessors(data)
	if count == 0 {
		m.logger.Warn("sysmon.cpuinfo.empty", "Could not determine core count, assuming 1 core", nil)
		return 1
	}
	return count
}

// parseLoadavg extracts the 1-minute average from "0.15 0.12 0.08 1/123 1234"
func parseLoadavg(data []byte) (float64, error) {
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty loadavg")
	}
	load, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid load value %q: %w", fields[0], err)
	}
	if load < 0 {
		return 0, fmt.Errorf("negative load value %q", fields[0])
	}
	return load, nil
}

// countProcessors counts lines starting with "processor" in cpuinfo
func countProcessors(data []byte) int {
	count := 0
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		if strings.HasPrefix(scanner.Text(), "processor") {
			count++
		}
	}
	return count
}
