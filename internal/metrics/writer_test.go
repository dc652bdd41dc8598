package metrics

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ddogreen/internal/logging"
)

func testLogger() *logging.Logger {
	return logging.NewWriterLogger(logging.LevelDebug, logging.FormatJSON, &bytes.Buffer{})
}

func TestWriter_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history", "transitions.jsonl")
	writer := NewWriter(path, testLogger())

	transitions := []Transition{
		{Timestamp: time.Now().UTC(), Active: false, Initial: true, Load: 0.5, NormalizedLoad: 0.125, Mode: "powersaving", Applied: true},
		{Timestamp: time.Now().UTC(), Active: true, Load: 3.2, NormalizedLoad: 0.8, Mode: "performance", Applied: false, RateLimited: true},
	}
	for _, tr := range transitions {
		if err := writer.Write(tr); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open history: %v", err)
	}
	defer file.Close()

	var got []Transition
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var tr Transition
		if err := json.Unmarshal(scanner.Bytes(), &tr); err != nil {
			t.Fatalf("invalid JSONL line %q: %v", scanner.Text(), err)
		}
		got = append(got, tr)
	}

	if len(got) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(got))
	}
	if !got[0].Initial || got[0].Mode != "powersaving" {
		t.Errorf("first transition = %+v", got[0])
	}
	if !got[1].RateLimited || got[1].Applied {
		t.Errorf("second transition = %+v", got[1])
	}
}

func TestWriter_DisabledWithEmptyPath(t *testing.T) {
	writer := NewWriter("", testLogger())
	if err := writer.Write(Transition{Mode: "performance"}); err != nil {
		t.Errorf("Write() with empty path error = %v", err)
	}
}
