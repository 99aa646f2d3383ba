package journey

import (
	"fmt"
	"math"
)

// Test is the mastery checkpoint emitted on every milestone level. Its
// activities are always the mandatory activities of the same level.
type Test struct {
	Level        int      `json:"level"`
	Name         string   `json:"name"`
	Activities   []string `json:"activities"`
	PassingScore int      `json:"passingScore"`
	XPReward     int      `json:"xpReward"`
	// Completed is owned by the caller; the engine always leaves it false.
	Completed bool `json:"completed"`
}

// Passed reports whether score meets the test's threshold.
func (t *Test) Passed(score int) bool {
	return score >= t.PassingScore
}

// TestForLevel returns the mastery test for level, or nil when level is not
// a milestone.
func (e *Engine) TestForLevel(level int) (*Test, error) {
	acts, err := e.ActivitiesForLevel(level)
	if err != nil {
		return nil, err
	}
	return e.testFrom(level, acts), nil
}

// testFrom builds the test from an already computed plan so the tested set
// never drifts from the presented one.
func (e *Engine) testFrom(level int, acts []ActivityInstance) *Test {
	if !e.policy.IsMilestone(level) {
		return nil
	}
	t := &Test{
		Level:        level,
		Name:         fmt.Sprintf("Level %d Mastery Test", level),
		Activities:   []string{},
		PassingScore: e.policy.PassingScore,
	}
	sum := 0
	for _, a := range acts {
		if !a.RequiredForProgression {
			continue
		}
		t.Activities = append(t.Activities, a.Type)
		sum += a.ScaledReward
	}
	t.XPReward = sum + int(math.Round(float64(sum)*float64(e.policy.TestBonusPct)/100))
	return t
}
