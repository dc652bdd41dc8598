// Package tui implements the live `ddogreen status --watch` dashboard.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"ddogreen/internal/metrics"
	"ddogreen/internal/status"
)

// Sources tells the dashboard where the agent publishes its state
type Sources struct {
	StatusFile  string
	HistoryFile string
	Refresh     time.Duration
}

// Model represents the dashboard state
type Model struct {
	sources  Sources
	store    *status.Store
	quitting bool

	currentScreen Screen

	doc       status.Document
	hasDoc    bool
	statusErr string

	history    []metrics.Transition
	historyErr string

	lastRefresh time.Time
}

type tickMsg time.Time

// NewModel creates a dashboard model and performs the first read
func NewModel(src Sources) Model {
	if src.Refresh <= 0 {
		src.Refresh = DefaultRefreshInterval
	}

	m := Model{
		sources:       src,
		store:         status.NewStore(src.StatusFile, nil),
		currentScreen: ScreenStatus,
	}
	return m.refresh(time.Now())
}

// Init starts the refresh ticker
func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.sources.Refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles key presses and refresh ticks
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m.refresh(time.Time(msg)), m.tick()
	case tea.KeyMsg:
		return m.handleKey(msg.String())
	}
	return m, nil
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit
	case "esc", "s":
		m.currentScreen = ScreenStatus
	case "h":
		m.currentScreen = ScreenHistory
	case "?":
		m.currentScreen = ScreenHelp
	case "r":
		m = m.refresh(time.Now())
	}
	return m, nil
}

// refresh re-reads the status and history files
func (m Model) refresh(now time.Time) Model {
	m.lastRefresh = now

	doc, err := m.store.Load()
	if err != nil {
		m.statusErr = err.Error()
		m.hasDoc = false
	} else {
		m.doc = doc
		m.hasDoc = true
		m.statusErr = ""
	}

	if m.sources.HistoryFile == "" {
		m.history, m.historyErr = nil, ""
		return m
	}

	history, err := metrics.ReadTail(m.sources.HistoryFile, historyLimit)
	if err != nil {
		m.historyErr = err.Error()
	} else {
		m.history = history
		m.historyErr = ""
	}
	return m
}

// Run starts the dashboard until the user quits
func Run(src Sources) error {
	_, err := tea.NewProgram(NewModel(src), tea.WithAltScreen()).Run()
	return err
}
