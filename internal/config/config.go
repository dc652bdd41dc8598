package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"ddogreen/internal/configdir"
	"ddogreen/internal/pathguard"
)

// Load reads the configuration at path, applies DDOGREEN_* environment overrides
// and validates the result. Files ending in .conf use the legacy key=value format.
// The path must be free of traversal sequences and must not be writable by others.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if err := pathguard.CheckPathTraversal(path); err != nil {
		return cfg, fmt.Errorf("config path rejected: %w", err)
	}
	if err := pathguard.CheckConfigFilePermissions(path); err != nil {
		return cfg, fmt.Errorf("config file rejected: %w", err)
	}

	if err := mergeConfigFile(&cfg, path); err != nil {
		return cfg, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	return finalize(cfg)
}

// LoadDefault loads the config from the default location. A missing default file is
// not an error: defaults plus environment overrides are used and the returned path is empty.
func LoadDefault() (Config, string, error) {
	path := configdir.DefaultConfigPath()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg, err := finalize(DefaultConfig())
		return cfg, "", err
	}

	cfg, err := Load(path)
	return cfg, path, err
}

func finalize(cfg Config) (Config, error) {
	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}

	if validationErrors := cfg.Validate(); len(validationErrors) > 0 {
		return cfg, fmt.Errorf("config.validation.error: %v", formatValidationErrors(validationErrors))
	}

	return cfg, nil
}

// ApplyEnv overlays DDOGREEN_* environment variables onto cfg
func ApplyEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("failed to parse environment overrides: %w", err)
	}
	return nil
}

// mergeConfigFile reads a config file and overlays it onto cfg
func mergeConfigFile(cfg *Config, path string) error {
	data, err := os.ReadFile(pathguard.CanonicalizePath(path)) // #nosec G304 -- path validated by pathguard
	if err != nil {
		return err
	}

	if strings.EqualFold(filepath.Ext(path), ".conf") {
		return parseLegacy(cfg, data)
	}
	return parseYAML(cfg, data)
}

// parseYAML decodes data over cfg; keys absent from the file keep their current value
func parseYAML(cfg *Config, data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

// formatValidationErrors formats validation errors for display
func formatValidationErrors(errors []ValidationError) string {
	if len(errors) == 0 {
		return ""
	}
	if len(errors) == 1 {
		return errors[0].Error()
	}
	result := fmt.Sprintf("%d validation errors:\n", len(errors))
	for _, err := range errors {
		result += "  - " + err.Error() + "\n"
	}
	return result
}
