// Package status renders the header bar: connection, realm, level and streak.
package status

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/stillpath/journey/internal/journey"
	"github.com/stillpath/journey/internal/tui/theme"
)

// Model holds the header state.
type Model struct {
	Connected     bool
	UserID        string
	Realm         journey.Realm
	Level         int
	MaxLevel      int
	Streak        int
	LongestStreak int
	Width         int
}

// New creates a header model.
func New() Model {
	return Model{}
}

// View renders the header bar.
func (m Model) View() string {
	width := m.Width
	if width < 40 {
		width = 40
	}

	var connStr string
	if m.Connected {
		connStr = lipgloss.NewStyle().Foreground(theme.ColorHealthy).Render("● Live")
	} else {
		connStr = lipgloss.NewStyle().Foreground(theme.ColorDanger).Render("○ Connecting...")
	}

	realmName := m.Realm.Name
	if realmName == "" {
		realmName = "—"
	}
	realm := lipgloss.NewStyle().Foreground(theme.RealmColor(m.Realm)).Bold(true).Render(realmName)

	levelStr := fmt.Sprintf("Level %d", m.Level)
	if m.MaxLevel > 0 {
		levelStr = fmt.Sprintf("Level %d/%d", m.Level, m.MaxLevel)
	}
	level := lipgloss.NewStyle().Foreground(theme.RealmAccent(m.Realm)).Render(levelStr)

	streak := fmt.Sprintf("streak %d", m.Streak)
	if m.LongestStreak > m.Streak {
		streak += fmt.Sprintf(" (best %d)", m.LongestStreak)
	}
	streakColor := theme.ColorDimmed
	if m.Streak > 0 {
		streakColor = theme.ColorWarning
	}

	sep := lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(" | ")
	content := connStr + sep + realm + sep + level + sep +
		lipgloss.NewStyle().Foreground(streakColor).Render(streak)
	if m.UserID != "" {
		content += sep + theme.StyleDimmed.Render(shortID(m.UserID))
	}

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder).
		Render(content)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
