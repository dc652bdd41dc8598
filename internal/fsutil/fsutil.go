package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"ddogreen/internal/logging"
)

const (
	// DefaultStatePermissions is the default permission for state directories
	DefaultStatePermissions = 0o750
	// DefaultFilePermissions is the default permission for state files
	DefaultFilePermissions = 0o600
)

// DefaultStateDir returns the platform location for ddogreen runtime state
func DefaultStateDir() string {
	switch runtime.GOOS {
	case "windows":
		if programData := os.Getenv("ProgramData"); programData != "" {
			return filepath.Join(programData, "ddogreen")
		}
		return `C:\ProgramData\ddogreen`
	case "darwin":
		return "/usr/local/var/ddogreen"
	default:
		return "/var/lib/ddogreen"
	}
}

// GetStateDir returns DDOGREEN_STATE_DIR when set, else the platform default.
// It returns an absolute path when possible.
func GetStateDir() string {
	if env := os.Getenv("DDOGREEN_STATE_DIR"); env != "" {
		if abs, err := filepath.Abs(env); err == nil {
			return abs
		}
		return env
	}
	return DefaultStateDir()
}

// EnsureDir creates the parent directory of path if it doesn't exist
func EnsureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), DefaultStatePermissions); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	return nil
}

// AtomicWriteFile writes data to a temp file next to path and renames it into place,
// so readers never observe a partially written file.
func AtomicWriteFile(path string, data []byte, perm os.FileMode, logger *logging.Logger) error {
	if err := EnsureDir(path); err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, perm); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		if removeErr := os.Remove(tmpPath); removeErr != nil && !os.IsNotExist(removeErr) {
			logger.Warn("fsutil.cleanup.failed", "Failed to remove temp file", map[string]interface{}{
				"path":  tmpPath,
				"error": removeErr.Error(),
			})
		}
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}

// AppendLine appends one line to path, creating the file and its directory on demand
func AppendLine(path string, line []byte) error {
	if err := EnsureDir(path); err != nil {
		return err
	}

	f, err := os.OpenFile(filepath.Clean(path), os.O_APPEND|os.O_CREATE|os.O_WRONLY, DefaultFilePermissions)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}

	if _, err := f.Write(append(line, '\n')); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to append to %s: %w", path, err)
	}
	return f.Close()
}

// CloseWithError closes a resource and logs any error.
// Useful in defer statements where close errors should not be dropped silently.
func CloseWithError(closer func() error, logger *logging.Logger, resource string) {
	if err := closer(); err != nil {
		logger.Warn("fsutil.close.failed", fmt.Sprintf("Failed to close %s", resource), map[string]interface{}{
			"error": err.Error(),
		})
	}
}
