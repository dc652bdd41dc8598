package config

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

var requiredLegacyKeys = []string{
	"monitoring_frequency",
	"high_performance_threshold",
	"power_save_threshold",
}

// parseLegacy reads the original "key = value" format. Blank lines and lines starting
// with '#' are skipped. All three controller keys must be present.
func parseLegacy(cfg *Config, data []byte) error {
	seen := make(map[string]bool, len(requiredLegacyKeys))
	var problems []string

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if !ok || key == "" || value == "" {
			problems = append(problems, fmt.Sprintf("line %d: expected key = value", lineNumber))
			continue
		}

		if err := setLegacyKey(cfg, key, value); err != nil {
			problems = append(problems, fmt.Sprintf("line %d: %v", lineNumber, err))
			continue
		}
		seen[key] = true
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read legacy config: %w", err)
	}

	for _, key := range requiredLegacyKeys {
		if !seen[key] {
			problems = append(problems, "missing required key "+key)
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid legacy config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func setLegacyKey(cfg *Config, key, value string) error {
	switch key {
	case "monitoring_frequency":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %q", key, value)
		}
		cfg.MonitoringFrequency = n
	case "high_performance_threshold":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid number for %s: %q", key, value)
		}
		cfg.HighPerformanceThreshold = f
	case "power_save_threshold":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid number for %s: %q", key, value)
		}
		cfg.PowerSaveThreshold = f
	default:
		return fmt.Errorf("unknown key %q", key)
	}
	return nil
}
