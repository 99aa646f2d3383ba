// Package level renders the level detail overlay. The briefing is written
// as markdown and rendered with glamour once per level.
package level

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/stillpath/journey/internal/journey"
	"github.com/stillpath/journey/internal/tui/theme"
)

const (
	panelWidth = 72
	glamStyle  = "dark"
)

var (
	stylePanel = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.ColorBorder).
			Padding(0, 1)

	styleFooter = lipgloss.NewStyle().
			Foreground(theme.ColorDimmed)
)

// Model holds the overlay for one level.
type Model struct {
	Level    journey.JourneyLevel
	Current  int
	Passed   bool
	Markdown string

	rendered string
}

// New builds the overlay and renders its briefing for the given width.
func New(jl journey.JourneyLevel, current int, passed bool, width int) Model {
	m := Model{Level: jl, Current: current, Passed: passed}
	m.Markdown = Briefing(jl, current, passed)
	m.rendered = render(m.Markdown, wrapWidth(width))
	return m
}

func wrapWidth(width int) int {
	if width <= 0 || width > panelWidth {
		width = panelWidth
	}
	return max(width-6, 20)
}

// render falls back to the raw markdown when glamour cannot build a
// renderer, so the overlay always shows something.
func render(md string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(glamStyle),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

// View renders the overlay panel.
func (m Model) View() string {
	footer := "[esc] close"
	if m.Level.Level == m.Current {
		footer = "[tab] plan  [c] complete  [esc] close"
	}
	inner := m.rendered + "\n\n" + styleFooter.Render(footer)
	return stylePanel.Width(panelWidth).Render(inner)
}

// Briefing describes jl as markdown for a player at current.
func Briefing(jl journey.JourneyLevel, current int, passed bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Level %d · %s\n\n", jl.Level, jl.RealmName)
	switch {
	case jl.Level < current:
		b.WriteString("_Cleared._\n\n")
	case jl.Level == current:
		b.WriteString("_You are here._\n\n")
	default:
		fmt.Fprintf(&b, "_Locked. %d levels ahead._\n\n", jl.Level-current)
	}
	fmt.Fprintf(&b, "**Difficulty** %d · **XP to clear** %d · **Total XP to reach** %d\n\n",
		jl.DifficultyLevel, jl.XPRequired, jl.TotalXPToReach)

	b.WriteString("## Activities\n\n")
	b.WriteString("| | Activity | Kind | Duration | XP |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, a := range jl.Activities {
		role := "required"
		if a.IsBonus {
			role = "bonus"
		}
		name := a.Name
		if a.CompletedToday {
			name = "~~" + name + "~~"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %d |\n",
			a.Icon, name, role+" "+string(a.Kind), FormatDuration(a.ScaledDuration), a.ScaledReward)
	}

	if t := jl.Test; t != nil {
		fmt.Fprintf(&b, "\n## %s\n\n", t.Name)
		status := "Not yet taken."
		if passed || t.Completed {
			status = "Passed."
		}
		fmt.Fprintf(&b, "%s Score at least **%d** to pass and earn **%d XP**.\n\n",
			status, t.PassingScore, t.XPReward)
		for _, typ := range t.Activities {
			fmt.Fprintf(&b, "- `%s`\n", typ)
		}
	}
	return b.String()
}

// FormatDuration renders seconds as "1m 30s".
func FormatDuration(seconds int) string {
	switch {
	case seconds < 60:
		return fmt.Sprintf("%ds", seconds)
	case seconds%60 == 0:
		return fmt.Sprintf("%dm", seconds/60)
	default:
		return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
	}
}
