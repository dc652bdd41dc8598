package pathguard

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePathTraversal(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"../../etc/passwd", false},
		{"a/../b", false},
		{`..\windows\system32`, false},
		{`config\..\secret`, false},
		{"..%2fetc/passwd", false},
		{"..%2Fetc", false},
		{"..%5cwindows", false},
		{"%2e%2e/etc", false},
		{"%2E%2E%2Fetc", false},
		{"config/..", false},
		{"..", false},
		{"config/app.conf", true},
		{"/etc/ddogreen/ddogreen.yaml", true},
		{".ddogreen.yaml", true},
		{".", true},
		{"./config.yaml", true},
		{"..hidden/file", true},
		{"file..bak", true},
	}

	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.want, ValidatePathTraversal(tc.path))
		})
	}
}

func TestCheckPathTraversal_WrapsSentinel(t *testing.T) {
	err := CheckPathTraversal("../x")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTraversal)
}

func TestValidateConfigFilePermissions(t *testing.T) {
	dir := t.TempDir()

	write := func(name string, mode os.FileMode) string {
		t.Helper()
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("monitoring_frequency: 10\n"), 0o600))
		require.NoError(t, os.Chmod(path, mode))
		return path
	}

	t.Run("missing file", func(t *testing.T) {
		assert.False(t, ValidateConfigFilePermissions(filepath.Join(dir, "missing.yaml")))
	})

	t.Run("owner read write", func(t *testing.T) {
		assert.True(t, ValidateConfigFilePermissions(write("owner.yaml", 0o600)))
	})

	t.Run("read only", func(t *testing.T) {
		assert.True(t, ValidateConfigFilePermissions(write("readonly.yaml", 0o444)))
	})

	t.Run("directory", func(t *testing.T) {
		assert.False(t, ValidateConfigFilePermissions(dir))
	})
}

func TestCanonicalizePath(t *testing.T) {
	dir := CanonicalizePath(t.TempDir())

	t.Run("cleans dot segments", func(t *testing.T) {
		got := CanonicalizePath(filepath.Join(dir, "a", ".", "b", "..", "c"))
		assert.Equal(t, filepath.Join(dir, "a", "c"), got)
	})

	t.Run("relative becomes absolute", func(t *testing.T) {
		assert.True(t, filepath.IsAbs(CanonicalizePath("ddogreen.yaml")))
	})

	t.Run("missing tail is kept", func(t *testing.T) {
		got := CanonicalizePath(filepath.Join(dir, "does", "not", "exist.yaml"))
		assert.Equal(t, filepath.Join(dir, "does", "not", "exist.yaml"), got)
	})
}

func TestIsPathWithinDirectory(t *testing.T) {
	dir := t.TempDir()

	assert.False(t, IsPathWithinDirectory(dir, dir), "a directory is not within itself")
	assert.True(t, IsPathWithinDirectory(filepath.Join(dir, "subdir", "file"), dir))
	assert.False(t, IsPathWithinDirectory(filepath.Join(dir, "..", "escape"), dir))
	assert.False(t, IsPathWithinDirectory(dir+"-sibling/file", dir))
}
