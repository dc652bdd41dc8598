package config

import "time"

// Config represents the complete ddogreen configuration
type Config struct {
	MonitoringFrequency      int             `yaml:"monitoring_frequency" env:"DDOGREEN_MONITORING_FREQUENCY"`
	HighPerformanceThreshold float64         `yaml:"high_performance_threshold" env:"DDOGREEN_HIGH_PERFORMANCE_THRESHOLD"`
	PowerSaveThreshold       float64         `yaml:"power_save_threshold" env:"DDOGREEN_POWER_SAVE_THRESHOLD"`
	Logging                  LoggingConfig   `yaml:"logging"`
	RateLimit                RateLimitConfig `yaml:"rate_limit"`
	Power                    PowerConfig     `yaml:"power"`
	Status                   StatusConfig    `yaml:"status"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" env:"DDOGREEN_LOG_LEVEL"`
	Format string `yaml:"format"`
	// File is the log destination; empty means stderr
	File string `yaml:"file"`
}

// RateLimitConfig bounds how often the power mode may be switched
type RateLimitConfig struct {
	MaxRequests int `yaml:"max_requests"`
	WindowMS    int `yaml:"window_ms"`
}

// PowerConfig selects the power backend
type PowerConfig struct {
	Backend string `yaml:"backend" env:"DDOGREEN_POWER_BACKEND"`
}

// StatusConfig controls status persistence and the HTTP status endpoint
type StatusConfig struct {
	// ListenAddr enables the status server when non-empty (e.g. "127.0.0.1:9477")
	ListenAddr  string `yaml:"listen_addr" env:"DDOGREEN_STATUS_LISTEN"`
	StateFile   string `yaml:"state_file"`
	HistoryFile string `yaml:"history_file"`
}

// MonitoringInterval returns the sampling period as a duration
func (c Config) MonitoringInterval() time.Duration {
	return time.Duration(c.MonitoringFrequency) * time.Second
}

// Window returns the rate limit window as a duration
func (r RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowMS) * time.Millisecond
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Path    string
	Message string
}

func (e ValidationError) Error() string {
	return e.Path + ": " + e.Message
}
