// Package xpbar renders the player's progress through the current level as
// a bar whose fill follows a damped spring towards the latest value.
package xpbar

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"

	"github.com/stillpath/journey/internal/journey"
	"github.com/stillpath/journey/internal/tui/theme"
)

const (
	fps         = 60
	frequency   = 6.0
	damping     = 0.6
	settleDelta = 0.001
	minWidth    = 10
)

// FrameMsg advances the animation by one frame.
type FrameMsg struct{ id int }

// Model holds the bar state.
type Model struct {
	Level     int
	IntoLevel int64
	LevelCost int64
	Width     int

	spring    harmonica.Spring
	target    float64
	pos       float64
	vel       float64
	animating bool
	id        int
}

// New returns an empty bar.
func New() Model {
	return Model{spring: harmonica.NewSpring(harmonica.FPS(fps), frequency, damping)}
}

// SetProgress points the bar at lp. Moving to a new level restarts the fill
// from empty. The returned command drives the animation and is nil when a
// frame loop is already running or nothing changed.
func (m *Model) SetProgress(lp journey.LevelProgress) tea.Cmd {
	if lp.Level != m.Level {
		m.pos, m.vel = 0, 0
	}
	m.Level = lp.Level
	m.IntoLevel = lp.IntoLevel
	m.LevelCost = lp.LevelCost
	m.target = clamp(lp.Pct)

	if m.settled() || m.animating {
		return nil
	}
	m.animating = true
	m.id++
	return m.frame()
}

// Update steps the spring on each frame.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	f, ok := msg.(FrameMsg)
	if !ok || f.id != m.id || !m.animating {
		return m, nil
	}
	m.pos, m.vel = m.spring.Update(m.pos, m.vel, m.target)
	if m.settled() {
		m.pos, m.vel = m.target, 0
		m.animating = false
		return m, nil
	}
	return m, m.frame()
}

// Animating reports whether a frame loop is running.
func (m Model) Animating() bool { return m.animating }

// Fill returns the displayed fraction, 0.0–1.0.
func (m Model) Fill() float64 { return clamp(m.pos) }

func (m Model) settled() bool {
	return math.Abs(m.pos-m.target) < settleDelta && math.Abs(m.vel) < settleDelta
}

func (m Model) frame() tea.Cmd {
	id := m.id
	return tea.Tick(time.Second/fps, func(time.Time) tea.Msg {
		return FrameMsg{id: id}
	})
}

// View renders the bar and its label.
func (m Model) View() string {
	width := m.Width
	if width < minWidth {
		width = 30
	}
	fill := int(math.Round(m.Fill() * float64(width)))
	bar := renderBar(fill, width)
	label := lipgloss.NewStyle().Foreground(theme.ColorBright).
		Render(fmt.Sprintf("%d / %d XP", m.IntoLevel, m.LevelCost))
	pct := theme.StyleDimmed.Render(fmt.Sprintf("%3.0f%%", clamp(m.target)*100))
	return bar + "  " + pct + "  " + label
}

func renderBar(fill, total int) string {
	fill = max(0, min(fill, total))
	filled := strings.Repeat("█", fill)
	empty := strings.Repeat("░", total-fill)
	return "[" + lipgloss.NewStyle().Foreground(theme.ColorXPFill).Render(filled) +
		lipgloss.NewStyle().Foreground(theme.ColorXPEmpty).Render(empty) + "]"
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(v, 1))
}
