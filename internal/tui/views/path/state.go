package path

import "github.com/stillpath/journey/internal/journey"

// State is where a level sits relative to the player.
type State int

const (
	StateDone State = iota
	StateCurrent
	StateLocked
)

// Classify returns the state of jl for a player at current.
func Classify(jl journey.JourneyLevel, current int) State {
	switch {
	case jl.Level == current:
		return StateCurrent
	case jl.Level < current:
		return StateDone
	default:
		return StateLocked
	}
}

// StateName returns a display label.
func StateName(s State) string {
	switch s {
	case StateDone:
		return "DONE"
	case StateCurrent:
		return "HERE"
	case StateLocked:
		return "LOCKED"
	default:
		return "?"
	}
}

// Window returns the inclusive level range of size n centred on current,
// clamped to 1..maxLevel.
func Window(current, n, maxLevel int) (from, to int) {
	if n < 1 {
		n = 1
	}
	if maxLevel < 1 {
		maxLevel = 1
	}
	from = current - n/2
	if from+n-1 > maxLevel {
		from = maxLevel - n + 1
	}
	if from < 1 {
		from = 1
	}
	to = min(from+n-1, maxLevel)
	return from, to
}
