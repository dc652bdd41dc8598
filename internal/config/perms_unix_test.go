//go:build !windows

package config

import (
	"os"
	"testing"
)

func TestLoad_RejectsWorldWritable(t *testing.T) {
	path := writeConfig(t, "ddogreen.yaml", "monitoring_frequency: 30\n")
	if err := os.Chmod(path, 0o666); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load() should reject a world-writable config file")
	}
}
