package tui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"ddogreen/internal/metrics"
	"ddogreen/internal/status"
)

func writeFixtures(t *testing.T) Sources {
	t.Helper()
	dir := t.TempDir()
	src := Sources{
		StatusFile:  filepath.Join(dir, "status.json"),
		HistoryFile: filepath.Join(dir, "transitions.jsonl"),
	}

	doc := status.Document{
		RunID:              "run-1",
		PID:                99,
		Running:            true,
		Active:             true,
		Backend:            "stub",
		PowerMode:          "performance",
		PowerReady:         true,
		Load:               3.2,
		NormalizedLoad:     0.8,
		CoreCount:          4,
		HighThreshold:      0.7,
		PowerSaveThreshold: 0.3,
		IntervalSeconds:    10,
		Samples:            7,
		LastSample:         time.Now(),
	}
	if err := status.NewStore(src.StatusFile, nil).Save(doc); err != nil {
		t.Fatal(err)
	}

	w := metrics.NewWriter(src.HistoryFile, nil)
	for _, tr := range []metrics.Transition{
		{Timestamp: time.Now(), Active: false, Initial: true, Applied: true, NormalizedLoad: 0.1},
		{Timestamp: time.Now(), Active: true, RateLimited: true, NormalizedLoad: 0.8},
	} {
		if err := w.Write(tr); err != nil {
			t.Fatal(err)
		}
	}
	return src
}

func TestNewModel_LoadsStatus(t *testing.T) {
	m := NewModel(writeFixtures(t))

	if !m.hasDoc {
		t.Fatalf("expected status document, error: %s", m.statusErr)
	}
	if m.currentScreen != ScreenStatus {
		t.Errorf("screen = %s, want status", m.currentScreen)
	}
	if len(m.history) != 2 {
		t.Errorf("history entries = %d, want 2", len(m.history))
	}

	view := m.View()
	for _, want := range []string{"ACTIVE (performance)", "performance via stub", "3.20 on 4 cores"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestNewModel_MissingStatus(t *testing.T) {
	m := NewModel(Sources{StatusFile: filepath.Join(t.TempDir(), "status.json")})

	if m.hasDoc {
		t.Fatal("expected no status document")
	}
	if !strings.Contains(m.View(), "No status available") {
		t.Error("View() should report missing status")
	}
	if m.sources.Refresh != DefaultRefreshInterval {
		t.Errorf("refresh = %s, want default", m.sources.Refresh)
	}
}

func TestModelUpdate_Screens(t *testing.T) {
	m := NewModel(writeFixtures(t))

	tests := []struct {
		key  rune
		want Screen
	}{
		{'h', ScreenHistory},
		{'?', ScreenHelp},
		{'s', ScreenStatus},
	}

	for _, tt := range tests {
		updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{tt.key}})
		m = updated.(Model)
		if m.currentScreen != tt.want {
			t.Errorf("after %q screen = %s, want %s", tt.key, m.currentScreen, tt.want)
		}
	}
}

func TestModelUpdate_HistoryView(t *testing.T) {
	m := NewModel(writeFixtures(t))
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'h'}})

	view := updated.(Model).View()
	if !strings.Contains(view, "rate limited") || !strings.Contains(view, "applied, initial") {
		t.Errorf("history view missing entries:\n%s", view)
	}
}

func TestModelUpdate_QuitOnQ(t *testing.T) {
	m := NewModel(writeFixtures(t))

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if !updated.(Model).quitting {
		t.Error("expected quitting after 'q'")
	}
	if cmd == nil {
		t.Error("expected quit command")
	}
	if updated.(Model).View() != "" {
		t.Error("expected empty view when quitting")
	}
}

func TestModelUpdate_TickRefreshes(t *testing.T) {
	src := writeFixtures(t)
	m := NewModel(src)

	doc := m.doc
	doc.Active = false
	doc.PowerMode = "powersaving"
	if err := status.NewStore(src.StatusFile, nil).Save(doc); err != nil {
		t.Fatal(err)
	}

	now := time.Now().Add(time.Minute)
	updated, cmd := m.Update(tickMsg(now))
	got := updated.(Model)

	if got.doc.Active || got.doc.PowerMode != "powersaving" {
		t.Errorf("tick did not reload status: %+v", got.doc)
	}
	if !got.lastRefresh.Equal(now) {
		t.Errorf("lastRefresh = %s, want %s", got.lastRefresh, now)
	}
	if cmd == nil {
		t.Error("tick should schedule the next refresh")
	}
}

func TestLoadBar(t *testing.T) {
	bar := loadBar(0.5, 0.3, 0.7, 11)
	if len(bar) != 13 {
		t.Fatalf("bar length = %d, want 13", len(bar))
	}
	if strings.Count(bar, "|") != 2 {
		t.Errorf("expected two threshold markers in %s", bar)
	}
	if loadBar(0, 0.3, 0.7, 11) != "[...|...|...]" {
		t.Errorf("empty bar = %s", loadBar(0, 0.3, 0.7, 11))
	}
}
