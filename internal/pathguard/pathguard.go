// Package pathguard checks configuration paths before their contents are trusted.
package pathguard

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrTraversal is returned when a path contains a parent directory reference
	ErrTraversal = errors.New("path contains a parent directory reference")
	// ErrInsecurePermissions is returned for group- or world-writable files
	ErrInsecurePermissions = errors.New("file is writable by group or others")
)

var encodedReplacer = strings.NewReplacer(
	"%2e", ".",
	"%2f", "/",
	"%5c", `\`,
)

// CheckPathTraversal returns ErrTraversal when any component of path, after decoding
// URL-encoded dots and separators, is "..".
func CheckPathTraversal(path string) error {
	decoded := encodedReplacer.Replace(strings.ToLower(path))
	components := strings.FieldsFunc(decoded, func(r rune) bool {
		return r == '/' || r == '\\'
	})
	for _, c := range components {
		if c == ".." {
			return fmt.Errorf("%w: %q", ErrTraversal, path)
		}
	}
	return nil
}

// ValidatePathTraversal reports whether path is free of traversal sequences
func ValidatePathTraversal(path string) bool {
	return CheckPathTraversal(path) == nil
}

// CheckConfigFilePermissions returns an error when path is missing, is not a regular
// file, or may be modified by users other than its owner.
func CheckConfigFilePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", path)
	}
	return checkWritableByOthers(path)
}

// ValidateConfigFilePermissions reports whether path exists with owner-only write access
func ValidateConfigFilePermissions(path string) bool {
	return CheckConfigFilePermissions(path) == nil
}

// CanonicalizePath returns an absolute, cleaned form of path with symlinks resolved
// for the longest existing prefix. On failure the best available form is returned.
func CanonicalizePath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}

	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}

	// Resolve the deepest existing ancestor and re-attach the missing tail.
	dir, tail := abs, ""
	for {
		parent := filepath.Dir(dir)
		tail = filepath.Join(filepath.Base(dir), tail)
		if parent == dir {
			return abs
		}
		dir = parent
		if resolved, err := filepath.EvalSymlinks(dir); err == nil {
			return filepath.Join(resolved, tail)
		}
	}
}

// IsPathWithinDirectory reports whether path is a strict descendant of dir.
// A directory is not within itself.
func IsPathWithinDirectory(path, dir string) bool {
	canonicalPath := CanonicalizePath(path)
	canonicalDir := CanonicalizePath(dir)

	rel, err := filepath.Rel(canonicalDir, canonicalPath)
	if err != nil || rel == "." {
		return false
	}
	if filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return true
}
