// Package path renders the scrolling list of levels around the player's
// current level. Milestone levels carry their mastery test marker and realm
// boundaries are drawn as headers.
package path

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/stillpath/journey/internal/journey"
	"github.com/stillpath/journey/internal/tui/theme"
)

// Model holds the path view state.
type Model struct {
	Levels  []journey.JourneyLevel
	Current int
	Passed  map[int]bool

	// Navigation state, an index into Levels.
	SelectedIdx int

	Width  int
	Height int
}

// New creates a path model.
func New() Model {
	return Model{Passed: map[int]bool{}}
}

// SetLevels replaces the visible levels and keeps the selection on the
// same level number when it is still visible, otherwise on current.
func (m *Model) SetLevels(levels []journey.JourneyLevel, current int) {
	keep := 0
	if sel, ok := m.Selected(); ok {
		keep = sel.Level
	}
	m.Levels = levels
	m.Current = current
	m.SelectedIdx = 0
	target := current
	if keep != 0 && m.indexOf(keep) >= 0 {
		target = keep
	}
	if i := m.indexOf(target); i >= 0 {
		m.SelectedIdx = i
	}
}

// SetPassed records the milestone levels whose test has been passed.
func (m *Model) SetPassed(levels []int) {
	m.Passed = make(map[int]bool, len(levels))
	for _, l := range levels {
		m.Passed[l] = true
	}
}

// Selected returns the level under the cursor.
func (m Model) Selected() (journey.JourneyLevel, bool) {
	if m.SelectedIdx < 0 || m.SelectedIdx >= len(m.Levels) {
		return journey.JourneyLevel{}, false
	}
	return m.Levels[m.SelectedIdx], true
}

// MoveUp moves the cursor towards earlier levels.
func (m *Model) MoveUp() {
	if m.SelectedIdx > 0 {
		m.SelectedIdx--
	}
}

// MoveDown moves the cursor towards later levels.
func (m *Model) MoveDown() {
	if m.SelectedIdx < len(m.Levels)-1 {
		m.SelectedIdx++
	}
}

func (m Model) indexOf(level int) int {
	for i, jl := range m.Levels {
		if jl.Level == level {
			return i
		}
	}
	return -1
}

// View renders the path with a header at each realm boundary.
func (m Model) View() string {
	if len(m.Levels) == 0 {
		return theme.StyleDimmed.Render("  No levels loaded")
	}

	var lines []string
	realm := -1
	for i, jl := range m.Levels {
		if jl.RealmID != realm {
			realm = jl.RealmID
			lines = append(lines, renderRealmHeader(jl, m.Width))
		}
		lines = append(lines, m.renderLevel(i, jl))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderRealmHeader(jl journey.JourneyLevel, width int) string {
	label := fmt.Sprintf("── %s ", jl.RealmName)
	fill := max(width-lipgloss.Width(label)-2, 4)
	return theme.StyleHeader.Render(label) + theme.StyleDimmed.Render(strings.Repeat("─", fill))
}

func (m Model) renderLevel(i int, jl journey.JourneyLevel) string {
	prefix := "  "
	if i == m.SelectedIdx {
		prefix = "> "
	}

	state := Classify(jl, m.Current)
	var color lipgloss.Color
	var glyph string
	switch state {
	case StateDone:
		color, glyph = theme.ColorPassed, "●"
	case StateCurrent:
		color, glyph = theme.ColorCurrent, "◉"
	default:
		color, glyph = theme.ColorLocked, "○"
	}
	style := lipgloss.NewStyle().Foreground(color)
	if i == m.SelectedIdx {
		style = style.Bold(true)
	}

	line := prefix + style.Render(fmt.Sprintf("%s Lv %-3d", glyph, jl.Level))
	line += theme.StyleDimmed.Render(fmt.Sprintf("  %d activities  %d XP", len(jl.Activities), jl.XPRequired))

	if jl.Test != nil {
		marker := "◆ " + jl.Test.Name
		mc := theme.ColorMilestone
		if m.Passed[jl.Level] {
			marker += " ✓"
			mc = theme.ColorPassed
		}
		line += "  " + lipgloss.NewStyle().Foreground(mc).Render(marker)
	}
	return line
}
