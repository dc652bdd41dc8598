package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00d7ff")).MarginBottom(1)
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffd700")).MarginTop(1)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#87d7af")).Width(22)
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff"))
	activeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff8700")).Bold(true)
	savingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#5fd75f")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5f5f"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#5fafff")).MarginTop(1)
)

// View renders the current screen
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	switch m.currentScreen {
	case ScreenHistory:
		body = m.renderHistory()
	case ScreenHelp:
		body = m.renderHelp()
	default:
		body = m.renderStatus()
	}

	var b strings.Builder
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(hintStyle.Render(fmt.Sprintf("Updated %s | s status | h history | ? help | q quit",
		m.lastRefresh.Format(time.TimeOnly))))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderStatus() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("ddogreen"))
	b.WriteString("\n")

	if !m.hasDoc {
		b.WriteString(errorStyle.Render("No status available: " + m.statusErr))
		b.WriteString("\n")
		return b.String()
	}

	d := m.doc
	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}

	b.WriteString(sectionStyle.Render("Controller"))
	b.WriteString("\n")
	running := "stopped"
	if d.Running {
		running = "running"
	}
	row("Agent", fmt.Sprintf("%s (pid %d)", running, d.PID))
	b.WriteString(labelStyle.Render("State"))
	b.WriteString(renderState(d.Active))
	b.WriteString("\n")
	row("Power mode", fmt.Sprintf("%s via %s", d.PowerMode, d.Backend))
	if !d.PowerReady {
		b.WriteString(errorStyle.Render("Power backend reported unavailable"))
		b.WriteString("\n")
	}

	b.WriteString(sectionStyle.Render("Load"))
	b.WriteString("\n")
	row("Load average", fmt.Sprintf("%.2f on %d cores", d.Load, d.CoreCount))
	row("Per core", fmt.Sprintf("%.3f", d.NormalizedLoad))
	row("Thresholds", fmt.Sprintf("high %.2f / power save %.2f", d.HighThreshold, d.PowerSaveThreshold))
	row("Bar", loadBar(d.NormalizedLoad, d.PowerSaveThreshold, d.HighThreshold, 30))

	b.WriteString(sectionStyle.Render("Counters"))
	b.WriteString("\n")
	row("Samples", fmt.Sprintf("%d every %.0fs", d.Samples, d.IntervalSeconds))
	row("Transitions", fmt.Sprintf("%d (%d held by dwell guard)", d.Transitions, d.Suppressed))
	row("Rate limited", fmt.Sprintf("%d", d.RateLimited))
	if !d.LastChange.IsZero() {
		row("Last change", d.LastChange.Local().Format(time.DateTime))
	}
	row("Last sample", d.LastSample.Local().Format(time.DateTime))

	return b.String()
}

func (m Model) renderHistory() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Recent transitions"))
	b.WriteString("\n")

	if m.historyErr != "" {
		b.WriteString(errorStyle.Render(m.historyErr))
		b.WriteString("\n")
		return b.String()
	}
	if len(m.history) == 0 {
		b.WriteString(valueStyle.Render("No transitions recorded yet"))
		b.WriteString("\n")
		return b.String()
	}

	for i := len(m.history) - 1; i >= 0; i-- {
		t := m.history[i]
		result := "applied"
		switch {
		case t.RateLimited:
			result = "rate limited"
		case !t.Applied:
			result = "failed"
		}
		if t.Initial {
			result += ", initial"
		}
		fmt.Fprintf(&b, "%s  %s  %s\n",
			valueStyle.Render(t.Timestamp.Local().Format(time.DateTime)),
			renderState(t.Active),
			valueStyle.Render(fmt.Sprintf("load/core %.3f (%s)", t.NormalizedLoad, result)))
	}
	return b.String()
}

func (m Model) renderHelp() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Keys"))
	b.WriteString("\n")
	for _, kb := range DefaultKeyBindings() {
		b.WriteString(labelStyle.Render(kb.Key))
		b.WriteString(valueStyle.Render(kb.Description))
		b.WriteString("\n")
	}
	return b.String()
}

func renderState(active bool) string {
	if active {
		return activeStyle.Render("ACTIVE (performance)")
	}
	return savingStyle.Render("IDLE (power saving)")
}

// loadBar draws normalized load on a 0..1 scale with threshold markers
func loadBar(value, low, high float64, width int) string {
	pos := func(v float64) int {
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		return int(v * float64(width-1))
	}

	cells := make([]rune, width)
	filled := pos(value)
	for i := range cells {
		if i <= filled && value > 0 {
			cells[i] = '#'
		} else {
			cells[i] = '.'
		}
	}
	cells[pos(low)] = '|'
	cells[pos(high)] = '|'
	return "[" + string(cells) + "]"
}
