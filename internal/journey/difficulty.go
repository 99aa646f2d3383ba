package journey

import "math"

const (
	// NominalMaxLevel is the level at which scaling reaches its nominal
	// ceiling (1.5x duration, 3x reward). Scaling continues linearly past it.
	NominalMaxLevel = 250

	levelsPerDifficulty = 25
	maxDifficulty       = 10

	challengeDurationGain = 0.5
	rewardGain            = 2.0
)

// DifficultyLevel returns the 1–10 difficulty rating for level.
// It is safe for any positive level; levels past 250 stay at 10.
func DifficultyLevel(level int) int {
	d := level / levelsPerDifficulty
	if level%levelsPerDifficulty != 0 {
		d++
	}
	return max(min(d, maxDifficulty), 1)
}

// ScaledDuration returns the duration in seconds of an activity at level.
// Exercises are time-fixed; challenges lengthen with progress.
func ScaledDuration(base, level int, kind Kind) int {
	if kind != KindChallenge {
		return base
	}
	return int(math.Round(float64(base) * (1 + float64(level)/NominalMaxLevel*challengeDurationGain)))
}

// ScaledReward returns the XP reward of an activity at level.
func ScaledReward(base, level int) int {
	return int(math.Round(float64(base) * (1 + float64(level)/NominalMaxLevel*rewardGain)))
}
