package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestReadTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transitions.jsonl")
	writer := NewWriter(path, testLogger())

	for i := 0; i < 5; i++ {
		if err := writer.Write(Transition{
			Timestamp: time.Unix(int64(i), 0).UTC(),
			Active:    i%2 == 1,
			Load:      float64(i),
		}); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name      string
		n         int
		wantLen   int
		wantFirst float64
	}{
		{"last two", 2, 2, 3},
		{"more than available", 10, 5, 0},
		{"all", 0, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadTail(path, tt.n)
			if err != nil {
				t.Fatalf("ReadTail() error = %v", err)
			}
			if len(got) != tt.wantLen {
				t.Fatalf("len = %d, want %d", len(got), tt.wantLen)
			}
			if got[0].Load != tt.wantFirst {
				t.Errorf("first load = %v, want %v", got[0].Load, tt.wantFirst)
			}
		})
	}
}

func TestReadTail_SkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transitions.jsonl")
	content := "{\"ts\":\"2025-06-01T12:00:00Z\",\"active\":true,\"load\":1,\"normalized_load\":0.5,\"mode\":\"performance\",\"applied\":true}\nnot json\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := ReadTail(path, 10)
	if err != nil {
		t.Fatalf("ReadTail() error = %v", err)
	}
	if len(got) != 1 || !got[0].Active {
		t.Errorf("ReadTail() = %+v, want one active entry", got)
	}
}

func TestReadTail_Missing(t *testing.T) {
	if _, err := ReadTail(filepath.Join(t.TempDir(), "missing.jsonl"), 5); err == nil {
		t.Error("expected error for missing file")
	}
}
