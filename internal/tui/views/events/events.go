// Package events keeps a scrollable log of what happened during the session
// and renders it as an overlay.
package events

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/stillpath/journey/internal/tui/theme"
)

const maxEntries = 200

// Kind tags an entry.
type Kind string

const (
	KindXP    Kind = "xp"
	KindLevel Kind = "lvl"
	KindTest  Kind = "test"
	KindConn  Kind = "ws"
	KindError Kind = "err"
)

// Entry is a single log line.
type Entry struct {
	Time    time.Time
	Kind    Kind
	Message string
}

// Model holds the log.
type Model struct {
	Entries []Entry
	Offset  int // lines scrolled up from the newest entry

	now func() time.Time
}

// New creates an empty log.
func New() Model {
	return Model{now: time.Now}
}

// Addf appends an entry, trims the oldest beyond the cap and scrolls back
// to the newest.
func (m *Model) Addf(kind Kind, format string, args ...interface{}) {
	now := time.Now
	if m.now != nil {
		now = m.now
	}
	m.Entries = append(m.Entries, Entry{Time: now(), Kind: kind, Message: fmt.Sprintf(format, args...)})
	if len(m.Entries) > maxEntries {
		m.Entries = m.Entries[len(m.Entries)-maxEntries:]
	}
	m.Offset = 0
}

// Last returns the newest entry.
func (m Model) Last() (Entry, bool) {
	if len(m.Entries) == 0 {
		return Entry{}, false
	}
	return m.Entries[len(m.Entries)-1], true
}

// ScrollUp moves towards older entries.
func (m *Model) ScrollUp(n int) {
	m.Offset = min(m.Offset+n, max(len(m.Entries)-1, 0))
}

// ScrollDown moves towards newer entries.
func (m *Model) ScrollDown(n int) {
	m.Offset = max(m.Offset-n, 0)
}

// View renders the log as an overlay panel.
func (m Model) View(width, height int) string {
	innerW := max(width-4, 20)
	visible := max(height-6, 3)

	title := theme.StyleHeader.Render(" JOURNAL ")
	help := theme.StyleDimmed.Render(fmt.Sprintf("j/k:scroll  esc:close  %d entries", len(m.Entries)))
	panel := lipgloss.NewStyle().
		Width(innerW).
		Padding(1, 2).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder)

	if len(m.Entries) == 0 {
		body := theme.StyleDimmed.Render("  Nothing yet. Complete an activity to start the log.")
		return panel.Render(lipgloss.JoinVertical(lipgloss.Left, title, "", body, "", help))
	}

	end := max(len(m.Entries)-m.Offset, 0)
	start := max(end-visible, 0)

	lines := make([]string, 0, end-start)
	for _, e := range m.Entries[start:end] {
		ts := theme.StyleDimmed.Render(e.Time.Format("15:04:05"))
		kind := lipgloss.NewStyle().Foreground(kindColor(e.Kind)).Width(5).Render(string(e.Kind))
		msg := e.Message
		if limit := innerW - 18; limit > 3 && len(msg) > limit {
			msg = msg[:limit-3] + "..."
		}
		lines = append(lines, ts+" "+kind+msg)
	}

	more := ""
	if m.Offset > 0 {
		more = theme.StyleDimmed.Render(fmt.Sprintf(" ↓ %d newer", m.Offset))
	}
	return panel.Render(lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(lines, "\n"), more, help))
}

func kindColor(k Kind) lipgloss.Color {
	switch k {
	case KindXP:
		return theme.ColorXPFill
	case KindLevel:
		return theme.ColorCurrent
	case KindTest:
		return theme.ColorMilestone
	case KindConn:
		return theme.ColorHealthy
	case KindError:
		return theme.ColorDanger
	default:
		return theme.ColorDimmed
	}
}
