package configdir

import (
	"os"
	"path/filepath"
	"runtime"
)

// FileName is the default configuration file name inside ConfigDir
const FileName = "ddogreen.yaml"

// LegacyFileName is the key=value format accepted for older installs
const LegacyFileName = "ddogreen.conf"

// ConfigDir resolves the configuration directory respecting DDOGREEN_CONFIG_DIR
func ConfigDir() string {
	if env := os.Getenv("DDOGREEN_CONFIG_DIR"); env != "" {
		if abs, err := filepath.Abs(env); err == nil {
			return abs
		}
		return env
	}
	return defaultDir(runtime.GOOS)
}

func defaultDir(goos string) string {
	switch goos {
	case "windows":
		if programData := os.Getenv("ProgramData"); programData != "" {
			return filepath.Join(programData, "ddogreen")
		}
		return `C:\ProgramData\ddogreen`
	case "darwin":
		return "/usr/local/etc/ddogreen"
	default:
		return "/etc/ddogreen"
	}
}

// DefaultConfigPath returns the YAML config path, falling back to the legacy
// file when only that one exists.
func DefaultConfigPath() string {
	dir := ConfigDir()
	yamlPath := filepath.Join(dir, FileName)
	if _, err := os.Stat(yamlPath); err == nil {
		return yamlPath
	}
	legacy := filepath.Join(dir, LegacyFileName)
	if _, err := os.Stat(legacy); err == nil {
		return legacy
	}
	return yamlPath
}
