package tui

import "time"

// Screen represents different TUI screens
type Screen string

const (
	// ScreenStatus shows the live controller state
	ScreenStatus Screen = "status"
	// ScreenHistory shows recent transitions
	ScreenHistory Screen = "history"
	// ScreenHelp shows key bindings
	ScreenHelp Screen = "help"
)

// DefaultRefreshInterval is how often the dashboard re-reads the status file
const DefaultRefreshInterval = 2 * time.Second

// historyLimit is the number of transitions shown on the history screen
const historyLimit = 15

// KeyBinding documents one key on the help screen
type KeyBinding struct {
	Key         string
	Description string
}

// DefaultKeyBindings returns the dashboard key bindings
func DefaultKeyBindings() []KeyBinding {
	return []KeyBinding{
		{Key: "s", Description: "Status"},
		{Key: "h", Description: "Transition history"},
		{Key: "r", Description: "Refresh now"},
		{Key: "?", Description: "Help"},
		{Key: "esc", Description: "Back to status"},
		{Key: "q", Description: "Quit"},
	}
}
