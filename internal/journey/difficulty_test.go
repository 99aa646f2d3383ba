package journey

import (
	"math"
	"testing"
)

func TestDifficultyLevel(t *testing.T) {
	tests := []struct {
		level int
		want  int
	}{
		{1, 1},
		{25, 1},
		{26, 2},
		{50, 2},
		{125, 5},
		{226, 10},
		{250, 10},
		{251, 10},
		{100000, 10},
		{math.MaxInt - 10, 10},
		{math.MaxInt, 10},
	}
	for _, tt := range tests {
		if got := DifficultyLevel(tt.level); got != tt.want {
			t.Errorf("DifficultyLevel(%d) = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestDifficultyLevel_AlwaysInRange(t *testing.T) {
	for level := 1; level <= 2000; level++ {
		d := DifficultyLevel(level)
		if d < 1 || d > 10 {
			t.Fatalf("DifficultyLevel(%d) = %d, outside [1, 10]", level, d)
		}
	}
}

func TestScaledDuration(t *testing.T) {
	tests := []struct {
		name  string
		base  int
		level int
		kind  Kind
		want  int
	}{
		{"challenge level 10", 60, 10, KindChallenge, 61},
		{"challenge nominal max", 60, 250, KindChallenge, 90},
		{"challenge past max keeps growing", 60, 500, KindChallenge, 120},
		{"exercise fixed early", 240, 1, KindExercise, 240},
		{"exercise fixed late", 240, 250, KindExercise, 240},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScaledDuration(tt.base, tt.level, tt.kind); got != tt.want {
				t.Errorf("ScaledDuration(%d, %d, %s) = %d, want %d", tt.base, tt.level, tt.kind, got, tt.want)
			}
		})
	}
}

func TestScaledReward(t *testing.T) {
	tests := []struct {
		base, level, want int
	}{
		{20, 10, 22},  // 21.6
		{20, 125, 40}, // 2x at half way
		{20, 250, 60}, // 3x at nominal max
		{15, 10, 16},  // 16.2
		{40, 60, 59},  // 59.2
	}
	for _, tt := range tests {
		if got := ScaledReward(tt.base, tt.level); got != tt.want {
			t.Errorf("ScaledReward(%d, %d) = %d, want %d", tt.base, tt.level, got, tt.want)
		}
	}
}

func TestScaling_NeverBelowBase(t *testing.T) {
	for _, tmpl := range DefaultRegistry().Union(Pools...) {
		for level := 1; level <= 300; level++ {
			if got := ScaledReward(tmpl.BaseReward, level); got < tmpl.BaseReward {
				t.Fatalf("%s: ScaledReward at level %d = %d < base %d", tmpl.Type, level, got, tmpl.BaseReward)
			}
			if got := ScaledDuration(tmpl.BaseDuration, level, KindChallenge); got < tmpl.BaseDuration {
				t.Fatalf("%s: challenge duration at level %d = %d < base %d", tmpl.Type, level, got, tmpl.BaseDuration)
			}
			if got := ScaledDuration(tmpl.BaseDuration, level, KindExercise); got != tmpl.BaseDuration {
				t.Fatalf("%s: exercise duration at level %d = %d, want base %d", tmpl.Type, level, got, tmpl.BaseDuration)
			}
		}
	}
}
