// Package plan renders today's activities for the player's current level
// with a cursor for choosing the one to complete.
package plan

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/stillpath/journey/internal/journey"
	"github.com/stillpath/journey/internal/tui/theme"
	"github.com/stillpath/journey/internal/tui/views/level"
)

// Model holds the plan state.
type Model struct {
	Level       journey.JourneyLevel
	SelectedIdx int
	Focused     bool
	Width       int
}

// New creates an empty plan.
func New() Model {
	return Model{}
}

// SetLevel replaces the plan, keeping the cursor on the same activity type
// when it is still listed.
func (m *Model) SetLevel(jl journey.JourneyLevel) {
	keep := ""
	if a, ok := m.Selected(); ok {
		keep = a.Type
	}
	m.Level = jl
	m.SelectedIdx = 0
	for i, a := range jl.Activities {
		if a.Type == keep {
			m.SelectedIdx = i
			return
		}
	}
	m.SelectedIdx = m.firstOpen()
}

func (m Model) firstOpen() int {
	for i, a := range m.Level.Activities {
		if !a.CompletedToday {
			return i
		}
	}
	return 0
}

// Selected returns the activity under the cursor.
func (m Model) Selected() (journey.ActivityInstance, bool) {
	acts := m.Level.Activities
	if m.SelectedIdx < 0 || m.SelectedIdx >= len(acts) {
		return journey.ActivityInstance{}, false
	}
	return acts[m.SelectedIdx], true
}

// MoveUp moves the cursor up, wrapping.
func (m *Model) MoveUp() {
	if n := len(m.Level.Activities); n > 0 {
		m.SelectedIdx = (m.SelectedIdx - 1 + n) % n
	}
}

// MoveDown moves the cursor down, wrapping.
func (m *Model) MoveDown() {
	if n := len(m.Level.Activities); n > 0 {
		m.SelectedIdx = (m.SelectedIdx + 1) % n
	}
}

// Remaining counts the required activities not yet completed today.
func (m Model) Remaining() int {
	n := 0
	for _, a := range m.Level.Activities {
		if a.RequiredForProgression && !a.CompletedToday {
			n++
		}
	}
	return n
}

// View renders the plan.
func (m Model) View() string {
	title := fmt.Sprintf("TODAY · Level %d", m.Level.Level)
	if m.Focused {
		title = "▸ " + title
	}
	lines := []string{theme.StyleHeader.Render(title)}

	if len(m.Level.Activities) == 0 {
		lines = append(lines, theme.StyleDimmed.Render("  No plan loaded"))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for i, a := range m.Level.Activities {
		lines = append(lines, m.renderActivity(i, a))
	}

	summary := fmt.Sprintf("%d required left", m.Remaining())
	if t := m.Level.Test; t != nil && !t.Completed {
		summary += "  ·  " + t.Name + " pending"
	}
	lines = append(lines, "", theme.StyleDimmed.Render(summary))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) renderActivity(i int, a journey.ActivityInstance) string {
	prefix := "  "
	if m.Focused && i == m.SelectedIdx {
		prefix = "> "
	}

	check := "[ ]"
	if a.CompletedToday {
		check = "[✓]"
	}
	glyph := lipgloss.NewStyle().Foreground(theme.KindColor(a.Kind)).Render(theme.KindGlyph(a.Kind))

	name := a.Name
	if w := m.Width - 30; w > 8 && len(name) > w {
		name = name[:w-1] + "…"
	}
	nameStyle := lipgloss.NewStyle().Foreground(theme.ColorBright)
	switch {
	case a.CompletedToday:
		nameStyle = theme.StyleDimmed
	case a.IsBonus:
		nameStyle = lipgloss.NewStyle().Foreground(theme.ColorBonus)
	}
	if m.Focused && i == m.SelectedIdx {
		nameStyle = nameStyle.Bold(true)
	}

	tag := ""
	if a.IsBonus {
		tag = " bonus"
	}
	meta := theme.StyleDimmed.Render(fmt.Sprintf("  %s  +%d XP%s",
		level.FormatDuration(a.ScaledDuration), a.ScaledReward, tag))

	return strings.Join([]string{prefix + check, glyph, nameStyle.Render(name) + meta}, " ")
}
