package sysmon

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ddogreen/internal/logging"
)

func testLogger() *logging.Logger {
	return logging.NewWriterLogger(logging.LevelDebug, logging.FormatJSON, &bytes.Buffer{})
}

func fakeProc(t *testing.T, loadavg, cpuinfo string) string {
	t.Helper()
	root := t.TempDir()
	if loadavg != "" {
		require.NoError(t, os.WriteFile(filepath.Join(root, "loadavg"), []byte(loadavg), 0o600))
	}
	if cpuinfo != "" {
		require.NoError(t, os.WriteFile(filepath.Join(root, "cpuinfo"), []byte(cpuinfo), 0o600))
	}
	return root
}

const fourCores = `processor	: 0
model name	: Test CPU
processor	: 1
model name	: Test CPU
processor	: 2
model name	: Test CPU
processor	: 3
model name	: Test CPU
`

func TestParseLoadavg(t *testing.T) {
	cases := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"0.15 0.12 0.08 1/123 1234\n", 0.15, false},
		{"3.50 2.00 1.00 4/567 8910", 3.5, false},
		{"", 0, true},
		{"abc 1 2", 0, true},
		{"-1.0 0 0", 0, true},
	}

	for _, tc := range cases {
		got, err := parseLoadavg([]byte(tc.in))
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.InDelta(t, tc.want, got, 1e-9)
	}
}

func TestCountProcessors(t *testing.T) {
	assert.Equal(t, 4, countProcessors([]byte(fourCores)))
	assert.Equal(t, 0, countProcessors([]byte("model name : x\n")))
}

func TestProcMonitor(t *testing.T) {
	root := fakeProc(t, "2.00 1.00 0.50 1/100 42\n", fourCores)

	m := NewProcMonitor(root, testLogger())

	assert.True(t, m.IsAvailable())
	assert.Equal(t, 4, m.GetCPUCoreCount())
	assert.InDelta(t, 2.0, m.GetLoad(), 1e-9)
}

func TestProcMonitor_MissingLoadavg(t *testing.T) {
	root := fakeProc(t, "", fourCores)

	m := NewProcMonitor(root, testLogger())

	assert.False(t, m.IsAvailable())
	assert.Equal(t, 0.0, m.GetLoad())
}

func TestProcMonitor_MissingCpuinfoDefaultsToOneCore(t *testing.T) {
	root := fakeProc(t, "1.00 1.00 1.00 1/1 1\n", "")

	m := NewProcMonitor(root, testLogger())

	assert.Equal(t, 1, m.GetCPUCoreCount())
	assert.True(t, m.IsAvailable())
}

func TestProcMonitor_CorruptLoadavgReturnsZero(t *testing.T) {
	root := fakeProc(t, "garbage\n", fourCores)

	m := NewProcMonitor(root, testLogger())

	assert.Equal(t, 0.0, m.GetLoad())
}

func TestHostMonitor(t *testing.T) {
	m := NewHostMonitor(testLogger())

	assert.GreaterOrEqual(t, m.GetCPUCoreCount(), 1)
	if m.IsAvailable() {
		assert.GreaterOrEqual(t, m.GetLoad(), 0.0)
	}
}

func TestWithFallback(t *testing.T) {
	root := fakeProc(t, "1.50 1.00 0.50 1/100 42\n", fourCores)

	working := NewStatic(2, 0.5)
	broken := NewStatic(2, 0.5)
	broken.SetAvailable(false)

	tests := []struct {
		name     string
		goos     string
		host     *Static
		wantProc bool
	}{
		{"available host kept on linux", "linux", working, false},
		{"unavailable host falls back on linux", "linux", broken, true},
		{"unavailable host kept elsewhere", "darwin", broken, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := withFallback(tt.goos, tt.host, root, testLogger())

			proc, isProc := got.(*ProcMonitor)
			require.Equal(t, tt.wantProc, isProc)
			if isProc {
				assert.True(t, proc.IsAvailable())
				assert.Equal(t, 4, proc.GetCPUCoreCount())
				assert.InDelta(t, 1.5, proc.GetLoad(), 1e-9)
			} else {
				assert.Same(t, tt.host, got)
			}
		})
	}
}

func TestNew_ReturnsUsableMonitor(t *testing.T) {
	m := New(testLogger())

	assert.GreaterOrEqual(t, m.GetCPUCoreCount(), 1)
}

func TestStatic(t *testing.T) {
	s := NewStatic(2, 0.1, 0.5, 1.9)

	assert.Equal(t, 2, s.GetCPUCoreCount())
	assert.True(t, s.IsAvailable())
	assert.Equal(t, 0.1, s.GetLoad())
	assert.Equal(t, 0.5, s.GetLoad())
	assert.Equal(t, 1.9, s.GetLoad())
	assert.Equal(t, 1.9, s.GetLoad(), "last value repeats")
	assert.Equal(t, 4, s.Calls())

	s.SetLoad(0.3)
	assert.Equal(t, 0.3, s.GetLoad())

	s.SetAvailable(false)
	assert.False(t, s.IsAvailable())
}
