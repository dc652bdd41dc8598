package status

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"ddogreen/internal/activity"
	"ddogreen/internal/logging"
)

func testLogger() *logging.Logger {
	return logging.NewWriterLogger(logging.LevelDebug, logging.FormatJSON, &bytes.Buffer{})
}

func sampleDocument() Document {
	doc := Document{
		RunID:     "6f1c1a52-3c1e-4f55-9c55-0c6c5f1f7b1e",
		PID:       4242,
		StartedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Backend:   "stub",
		PowerMode: "performance",
	}
	doc.ApplySnapshot(activity.Snapshot{
		Running:        true,
		Active:         true,
		Load:           3.2,
		NormalizedLoad: 0.8,
		CoreCount:      4,
		HighThreshold:  0.7,
		LowThreshold:   0.3,
		Interval:       10 * time.Second,
		Samples:        12,
		Transitions:    1,
	})
	return doc
}

func TestStore_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "status.json")
	store := NewStore(path, testLogger())

	doc := sampleDocument()
	if err := store.Save(doc); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got.RunID != doc.RunID || got.CoreCount != 4 || got.IntervalSeconds != 10 || !got.Active {
		t.Errorf("Load() = %+v, want %+v", got, doc)
	}
	if got.State() != "performance" {
		t.Errorf("State() = %s, want performance", got.State())
	}
}

func TestStore_LoadMissing(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "status.json"), testLogger())

	if _, err := store.Load(); !errors.Is(err, ErrNoStatus) {
		t.Errorf("Load() error = %v, want ErrNoStatus", err)
	}
}

func TestStore_MarkStopped(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "status.json"), testLogger())
	if err := store.Save(sampleDocument()); err != nil {
		t.Fatal(err)
	}

	if err := store.MarkStopped(); err != nil {
		t.Fatalf("MarkStopped() error = %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.Running {
		t.Error("expected running=false after MarkStopped")
	}
}

func TestStore_EmptyPathDisabled(t *testing.T) {
	store := NewStore("", testLogger())
	if err := store.Save(sampleDocument()); err != nil {
		t.Errorf("Save() with empty path error = %v", err)
	}
	if err := store.MarkStopped(); err != nil {
		t.Errorf("MarkStopped() with empty path error = %v", err)
	}
}

func TestServer_Routes(t *testing.T) {
	doc := sampleDocument()
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ddogreen_load 3.2\n"))
	})
	srv := NewServer("127.0.0.1:0", func() Document { return doc }, nil, metrics, testLogger())
	handler := srv.Handler()

	tests := []struct {
		path string
		code int
	}{
		{"/healthz", http.StatusOK},
		{"/status", http.StatusOK},
		{"/metrics", http.StatusOK},
		{"/missing", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.code {
				t.Errorf("GET %s = %d, want %d", tt.path, rec.Code, tt.code)
			}
		})
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	var got Document
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid /status body: %v", err)
	}
	if got.NormalizedLoad != 0.8 || got.Backend != "stub" {
		t.Errorf("/status = %+v", got)
	}
}

func TestServer_HealthWhenStopped(t *testing.T) {
	srv := NewServer("", func() Document { return Document{} }, nil, nil, testLogger())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("GET /healthz = %d, want 503", rec.Code)
	}
}

func TestServer_HealthCheck(t *testing.T) {
	doc := sampleDocument()
	healthErr := errors.New("activity monitor is not running")

	tests := []struct {
		name   string
		health HealthFunc
		code   int
		status string
	}{
		{"healthy", func() error { return nil }, http.StatusOK, "ok"},
		{"unhealthy", func() error { return healthErr }, http.StatusServiceUnavailable, "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := NewServer("", func() Document { return doc }, tt.health, nil, testLogger())

			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			if rec.Code != tt.code {
				t.Errorf("GET /healthz = %d, want %d", rec.Code, tt.code)
			}
			var body map[string]interface{}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid /healthz body: %v", err)
			}
			if body["status"] != tt.status {
				t.Errorf("status = %v, want %s", body["status"], tt.status)
			}
		})
	}
}

func TestServer_ServeUntilCancelled(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	doc := sampleDocument()
	srv := NewServer(ln.Addr().String(), func() Document { return doc }, nil, nil, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /healthz = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
