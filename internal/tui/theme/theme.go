// Package theme provides the Lip Gloss palette and reusable styles for the
// journey TUI. It only imports the engine's value types.
package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/stillpath/journey/internal/journey"
)

// Activity kind colors.
var (
	ColorChallenge = lipgloss.Color("#3b82f6")
	ColorExercise  = lipgloss.Color("#22c55e")
	ColorDefault   = lipgloss.Color("#9ca3af")
)

// Level state colors.
var (
	ColorPassed    = lipgloss.Color("#16a34a")
	ColorCurrent   = lipgloss.Color("#f59e0b")
	ColorLocked    = lipgloss.Color("#4b5563")
	ColorMilestone = lipgloss.Color("#a855f7")
	ColorBonus     = lipgloss.Color("#67e8f9")
)

// XP bar colors.
var (
	ColorXPFill  = lipgloss.Color("#f59e0b")
	ColorXPEmpty = lipgloss.Color("#374151")
)

// UI chrome colors.
var (
	ColorBorder  = lipgloss.Color("#4b5563")
	ColorDimmed  = lipgloss.Color("#6b7280")
	ColorBright  = lipgloss.Color("#f9fafb")
	ColorHealthy = lipgloss.Color("#22c55e")
	ColorWarning = lipgloss.Color("#d97706")
	ColorDanger  = lipgloss.Color("#dc2626")
)

// RealmColor returns the realm's primary color, falling back to the default
// when the catalog leaves it empty.
func RealmColor(r journey.Realm) lipgloss.Color {
	if r.Color == "" {
		return ColorDefault
	}
	return lipgloss.Color(r.Color)
}

// RealmAccent returns the realm's accent color, or its primary color.
func RealmAccent(r journey.Realm) lipgloss.Color {
	if r.Accent == "" {
		return RealmColor(r)
	}
	return lipgloss.Color(r.Accent)
}

// KindColor returns the color for an activity kind.
func KindColor(k journey.Kind) lipgloss.Color {
	switch k {
	case journey.KindChallenge:
		return ColorChallenge
	case journey.KindExercise:
		return ColorExercise
	default:
		return ColorDefault
	}
}

// KindGlyph returns a glyph for an activity kind.
func KindGlyph(k journey.Kind) string {
	switch k {
	case journey.KindChallenge:
		return "◇"
	case journey.KindExercise:
		return "≈"
	default:
		return "·"
	}
}

// Reusable styles.
var (
	StyleBorder = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)

	StyleDimmed = lipgloss.NewStyle().
			Foreground(ColorDimmed)

	StyleSelected = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)

	StyleError = lipgloss.NewStyle().
			Foreground(ColorDanger)
)
