// Package progress keeps per-player state for the journey: current level,
// earned XP, daily completions, streaks and passed mastery tests.
package progress

import (
	"errors"
	"slices"
	"time"
)

// ErrNotFound is returned when no progress exists for a user ID.
var ErrNotFound = errors.New("progress not found")

// ErrUnknownActivity is returned when the activity is not on today's plan.
var ErrUnknownActivity = errors.New("activity not on today's plan")

// ErrAlreadyCompleted is returned for an activity already completed today or
// a mastery test already passed.
var ErrAlreadyCompleted = errors.New("already completed")

// ErrNoTest is returned when a level has no mastery test.
var ErrNoTest = errors.New("level has no mastery test")

// ErrLevelLocked is returned when acting on a level the player has not reached.
var ErrLevelLocked = errors.New("level locked")

// ErrInvalidBaseline is returned when an enrolment start level is outside
// the baseline range.
var ErrInvalidBaseline = errors.New("invalid baseline level")

// ErrInvalidScore is returned for test scores outside 0-100.
var ErrInvalidScore = errors.New("invalid test score")

// Baseline assessment results fall in this range.
const (
	MinStartLevel = 1
	MaxStartLevel = 5
)

const dayLayout = "2006-01-02"

// Progress is one player's journey state. XP is the cumulative total, so the
// player sits at the start of Level once XP reaches the curve's total for it.
type Progress struct {
	UserID        string `json:"userId"`
	StartLevel    int    `json:"startLevel"`
	Level         int    `json:"level"`
	XP            int64  `json:"xp"`
	Streak        int    `json:"streak"`
	LongestStreak int    `json:"longestStreak"`
	// LastActiveDay is the calendar day (YYYY-MM-DD) of the last completion.
	LastActiveDay  string    `json:"lastActiveDay,omitempty"`
	CompletedToday []string  `json:"completedToday"`
	PassedTests    []int     `json:"passedTests"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// HasPassed reports whether the mastery test at level has been passed.
func (p *Progress) HasPassed(level int) bool {
	return slices.Contains(p.PassedTests, level)
}

func (p *Progress) completed(typ string) bool {
	return slices.Contains(p.CompletedToday, typ)
}

// rollDay clears the daily completions when day differs from the last
// active day. The streak is only touched by touchDay.
func (p *Progress) rollDay(day string) {
	if p.LastActiveDay != day {
		p.CompletedToday = p.CompletedToday[:0]
	}
}

// touchDay records activity on day and maintains the streak of consecutive
// active days.
func (p *Progress) touchDay(day string) {
	if p.LastActiveDay == day {
		return
	}
	if isNextDay(p.LastActiveDay, day) {
		p.Streak++
	} else {
		p.Streak = 1
	}
	if p.Streak > p.LongestStreak {
		p.LongestStreak = p.Streak
	}
	p.LastActiveDay = day
}

func isNextDay(prev, day string) bool {
	if prev == "" {
		return false
	}
	a, err := time.Parse(dayLayout, prev)
	if err != nil {
		return false
	}
	b, err := time.Parse(dayLayout, day)
	if err != nil {
		return false
	}
	return a.AddDate(0, 0, 1).Equal(b)
}

// initSlices keeps JSON output as [] rather than null after decoding.
func (p *Progress) initSlices() {
	if p.CompletedToday == nil {
		p.CompletedToday = []string{}
	}
	if p.PassedTests == nil {
		p.PassedTests = []int{}
	}
}

// clone returns a deep copy safe to hand to callers.
func (p *Progress) clone() *Progress {
	cp := *p
	cp.CompletedToday = slices.Clone(p.CompletedToday)
	cp.PassedTests = slices.Clone(p.PassedTests)
	cp.initSlices()
	return &cp
}
