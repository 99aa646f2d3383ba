package journey

import (
	"errors"
	"fmt"
)

// ErrInvalidLevel is returned when a level or current level argument is below 1.
// Levels are never clamped: a bad level is always a caller bug.
var ErrInvalidLevel = errors.New("invalid level")

func checkLevel(level int) error {
	if level < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidLevel, level)
	}
	return nil
}
