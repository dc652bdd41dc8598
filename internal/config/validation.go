package config

import (
	"fmt"
	"net"

	"ddogreen/internal/pathguard"
)

const (
	minMonitoringFrequency = 1
	maxMonitoringFrequency = 300

	minHighThreshold = 0.1
	maxHighThreshold = 1.0

	minPowerSaveThreshold = 0.05
	maxPowerSaveThreshold = 0.9

	recommendedThresholdGap = 0.1
	recommendedFrequency    = 10
)

// Backends lists the accepted power.backend values
var Backends = []string{BackendAuto, BackendTLP, BackendGovernor, BackendPowercfg, BackendPmset, BackendStub}

// Validate checks if the configuration is valid
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateMonitoring()...)
	errors = append(errors, c.validateThresholds()...)
	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateRateLimit()...)
	errors = append(errors, c.validatePower()...)
	errors = append(errors, c.validateStatus()...)

	return errors
}

func (c *Config) validateMonitoring() []ValidationError {
	if c.MonitoringFrequency >= minMonitoringFrequency && c.MonitoringFrequency <= maxMonitoringFrequency {
		return nil
	}

	return []ValidationError{{
		Path: "monitoring_frequency",
		Message: fmt.Sprintf("must be between %d and %d seconds, got %d",
			minMonitoringFrequency, maxMonitoringFrequency, c.MonitoringFrequency),
	}}
}

func (c *Config) validateThresholds() []ValidationError {
	var errors []ValidationError

	high, low := c.HighPerformanceThreshold, c.PowerSaveThreshold
	if high < minHighThreshold || high > maxHighThreshold {
		errors = append(errors, ValidationError{
			Path:    "high_performance_threshold",
			Message: fmt.Sprintf("must be between %.2f and %.2f, got %g", minHighThreshold, maxHighThreshold, high),
		})
	}

	if low < minPowerSaveThreshold || low > maxPowerSaveThreshold {
		errors = append(errors, ValidationError{
			Path:    "power_save_threshold",
			Message: fmt.Sprintf("must be between %.2f and %.2f, got %g", minPowerSaveThreshold, maxPowerSaveThreshold, low),
		})
	}

	if low >= high {
		errors = append(errors, ValidationError{
			Path:    "power_save_threshold",
			Message: fmt.Sprintf("must be less than high_performance_threshold (%g), got %g", high, low),
		})
	}

	return errors
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError
	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, c.Logging.Level) {
		errors = append(errors, ValidationError{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got '%s'", validLevels, c.Logging.Level),
		})
	}

	validFormats := []string{"json", "text"}
	if !contains(validFormats, c.Logging.Format) {
		errors = append(errors, ValidationError{
			Path:    "logging.format",
			Message: fmt.Sprintf("must be one of %v, got '%s'", validFormats, c.Logging.Format),
		})
	}

	errors = append(errors, validateFilePath("logging.file", c.Logging.File)...)
	return errors
}

func (c *Config) validateRateLimit() []ValidationError {
	var errors []ValidationError

	if c.RateLimit.MaxRequests < 1 {
		errors = append(errors, ValidationError{
			Path:    "rate_limit.max_requests",
			Message: fmt.Sprintf("must be at least 1, got %d", c.RateLimit.MaxRequests),
		})
	}
	if c.RateLimit.WindowMS < 1 {
		errors = append(errors, ValidationError{
			Path:    "rate_limit.window_ms",
			Message: fmt.Sprintf("must be at least 1, got %d", c.RateLimit.WindowMS),
		})
	}

	return errors
}

func (c *Config) validatePower() []ValidationError {
	if contains(Backends, c.Power.Backend) {
		return nil
	}

	return []ValidationError{{
		Path:    "power.backend",
		Message: fmt.Sprintf("must be one of %v, got '%s'", Backends, c.Power.Backend),
	}}
}

func (c *Config) validateStatus() []ValidationError {
	var errors []ValidationError

	if c.Status.ListenAddr != "" {
		if _, _, err := net.SplitHostPort(c.Status.ListenAddr); err != nil {
			errors = append(errors, ValidationError{
				Path:    "status.listen_addr",
				Message: fmt.Sprintf("must be host:port, got '%s'", c.Status.ListenAddr),
			})
		}
	}

	errors = append(errors, validateFilePath("status.state_file", c.Status.StateFile)...)
	errors = append(errors, validateFilePath("status.history_file", c.Status.HistoryFile)...)
	return errors
}

// Warnings returns advice about settings that are valid but likely to misbehave
func (c *Config) Warnings() []string {
	var warnings []string

	if gap := c.HighPerformanceThreshold - c.PowerSaveThreshold; gap < recommendedThresholdGap {
		warnings = append(warnings, fmt.Sprintf(
			"threshold gap of %.0f%% may cause frequent mode switching; recommended minimum is %.0f%%",
			gap*100, recommendedThresholdGap*100))
	}
	if c.MonitoringFrequency < recommendedFrequency {
		warnings = append(warnings, fmt.Sprintf(
			"monitoring every %ds may impact system performance; consider %ds or more",
			c.MonitoringFrequency, recommendedFrequency))
	}
	if c.HighPerformanceThreshold > 0.9 {
		warnings = append(warnings, fmt.Sprintf(
			"high_performance_threshold of %.0f%% may rarely trigger performance mode",
			c.HighPerformanceThreshold*100))
	}
	if c.PowerSaveThreshold < 0.1 {
		warnings = append(warnings, fmt.Sprintf(
			"power_save_threshold of %.0f%% may rarely trigger power saving mode",
			c.PowerSaveThreshold*100))
	}

	return warnings
}

func validateFilePath(field, path string) []ValidationError {
	if path == "" || pathguard.ValidatePathTraversal(path) {
		return nil
	}
	return []ValidationError{{
		Path:    field,
		Message: fmt.Sprintf("must not contain parent directory references, got '%s'", path),
	}}
}

// contains checks if a string is in a slice
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
