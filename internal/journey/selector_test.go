package journey

import (
	"errors"
	"reflect"
	"testing"
)

func types(acts []ActivityInstance) []string {
	out := make([]string, len(acts))
	for i, a := range acts {
		out[i] = a.Type
	}
	return out
}

func mandatoryTypes(acts []ActivityInstance) []string {
	var out []string
	for _, a := range acts {
		if a.RequiredForProgression {
			out = append(out, a.Type)
		}
	}
	return out
}

// --- Rotate / PickIndex ---

func TestRotate(t *testing.T) {
	tests := []struct {
		name           string
		start, n, size int
		want           []int
	}{
		{"prefix", 0, 2, 4, []int{0, 1}},
		{"wraps at end", 7, 2, 8, []int{7, 0}},
		{"start past size", 21, 4, 8, []int{5, 6, 7, 0}},
		{"window longer than pool", 0, 3, 2, []int{0, 1, 0}},
		{"negative start", -1, 2, 3, []int{2, 0}},
		{"empty pool", 3, 2, 0, nil},
		{"zero window", 3, 0, 4, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Rotate(tt.start, tt.n, tt.size); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Rotate(%d, %d, %d) = %v, want %v", tt.start, tt.n, tt.size, got, tt.want)
			}
		})
	}
}

func TestPickIndex(t *testing.T) {
	if got := PickIndex(10, 3); got != 1 {
		t.Errorf("PickIndex(10, 3) = %d, want 1", got)
	}
	if got := PickIndex(-1, 3); got != 2 {
		t.Errorf("PickIndex(-1, 3) = %d, want 2", got)
	}
	if got := PickIndex(5, 0); got != -1 {
		t.Errorf("PickIndex(5, 0) = %d, want -1", got)
	}
}

// --- ActivitiesForLevel ---

func TestActivitiesForLevel_TierSelections(t *testing.T) {
	e := MustNew()
	tests := []struct {
		level     int
		mandatory []string
		all       []string
	}{
		{
			level:     1,
			mandatory: []string{"focus_tap", "color_match"},
			all:       []string{"focus_tap", "color_match", "four_seven_eight", "body_scan"},
		},
		{
			level:     10,
			mandatory: []string{"focus_tap", "color_match"},
			all:       []string{"focus_tap", "color_match", "four_seven_eight", "body_scan"},
		},
		{
			level:     12,
			mandatory: []string{"focus_tap", "color_match"},
			all:       []string{"focus_tap", "color_match", "box_breathing", "five_senses"},
		},
		{
			level:     60,
			mandatory: []string{"dual_focus", "number_span"},
			all:       []string{"dual_focus", "number_span", "mental_math", "gratitude_journal"},
		},
		{
			level:     61,
			mandatory: []string{"dual_focus", "number_span"},
			all:       []string{"dual_focus", "number_span", "mental_math"},
		},
		{
			level:     75,
			mandatory: []string{"number_span", "focus_tap"},
			all:       []string{"number_span", "focus_tap", "word_association", "gratitude_journal"},
		},
		{
			level:     120,
			mandatory: []string{"sequence_memory", "stroop_test", "dual_focus"},
			all:       []string{"sequence_memory", "stroop_test", "dual_focus", "mental_math", "gratitude_journal"},
		},
		{
			level:     151,
			mandatory: []string{"deep_focus", "sequence_memory", "stroop_test"},
			all:       []string{"deep_focus", "sequence_memory", "stroop_test", "mental_math"},
		},
		{
			level:     180,
			mandatory: []string{"dual_focus", "number_span", "n_back"},
			all:       []string{"dual_focus", "number_span", "n_back", "mental_math", "gratitude_journal"},
		},
		{
			level:     210,
			mandatory: []string{"divided_attention", "rapid_switch", "deep_focus", "sequence_memory"},
			all:       []string{"divided_attention", "rapid_switch", "deep_focus", "sequence_memory", "mental_math", "daily_intention"},
		},
	}
	for _, tt := range tests {
		acts, err := e.ActivitiesForLevel(tt.level)
		if err != nil {
			t.Fatalf("ActivitiesForLevel(%d) error: %v", tt.level, err)
		}
		if got := mandatoryTypes(acts); !reflect.DeepEqual(got, tt.mandatory) {
			t.Errorf("level %d mandatory = %v, want %v", tt.level, got, tt.mandatory)
		}
		if got := types(acts); !reflect.DeepEqual(got, tt.all) {
			t.Errorf("level %d plan = %v, want %v", tt.level, got, tt.all)
		}
	}
}

func TestActivitiesForLevel_FlagsAndScaling(t *testing.T) {
	e := MustNew()
	for level := 1; level <= 300; level++ {
		acts, err := e.ActivitiesForLevel(level)
		if err != nil {
			t.Fatalf("ActivitiesForLevel(%d) error: %v", level, err)
		}
		if got := len(mandatoryTypes(acts)); got != e.Policy().MandatoryCount(level) {
			t.Fatalf("level %d: %d mandatory, want %d", level, got, e.Policy().MandatoryCount(level))
		}
		seenBonus := false
		for _, a := range acts {
			if a.RequiredForProgression == a.IsBonus {
				t.Fatalf("level %d %s: required=%v bonus=%v", level, a.Type, a.RequiredForProgression, a.IsBonus)
			}
			if a.RequiredForProgression && seenBonus {
				t.Fatalf("level %d: mandatory %s listed after a bonus", level, a.Type)
			}
			seenBonus = seenBonus || a.IsBonus
			if a.RequiredForProgression && a.Kind != KindChallenge {
				t.Fatalf("level %d: mandatory %s is not a challenge", level, a.Type)
			}
			if a.IsBonus && a.Kind != KindExercise {
				t.Fatalf("level %d: bonus %s is not an exercise", level, a.Type)
			}
			if a.ScaledDuration < a.BaseDuration || a.ScaledReward < a.BaseReward {
				t.Fatalf("level %d %s: scaled values below base", level, a.Type)
			}
			if a.DifficultyLevel != DifficultyLevel(level) {
				t.Fatalf("level %d %s: difficulty %d, want %d", level, a.Type, a.DifficultyLevel, DifficultyLevel(level))
			}
		}
	}
}

func TestActivitiesForLevel_Deterministic(t *testing.T) {
	e := MustNew()
	other := MustNew()
	for level := 1; level <= 250; level++ {
		a, _ := e.ActivitiesForLevel(level)
		b, _ := e.ActivitiesForLevel(level)
		c, _ := other.ActivitiesForLevel(level)
		if !reflect.DeepEqual(a, b) || !reflect.DeepEqual(a, c) {
			t.Fatalf("ActivitiesForLevel(%d) differs between calls", level)
		}
	}
}

func TestActivitiesForLevel_InvalidLevel(t *testing.T) {
	e := MustNew()
	for _, level := range []int{0, -3} {
		acts, err := e.ActivitiesForLevel(level)
		if !errors.Is(err, ErrInvalidLevel) {
			t.Errorf("ActivitiesForLevel(%d) error = %v, want ErrInvalidLevel", level, err)
		}
		if acts != nil {
			t.Errorf("ActivitiesForLevel(%d) returned %v alongside error", level, acts)
		}
	}
}

func TestActivitiesForLevel_SmallPoolWraps(t *testing.T) {
	pools := DefaultTemplates()
	pools[PoolBeginner] = pools[PoolBeginner][:1]
	reg, err := NewRegistry(pools)
	if err != nil {
		t.Fatalf("NewRegistry() error: %v", err)
	}
	e := MustNew(WithRegistry(reg))
	acts, err := e.ActivitiesForLevel(3)
	if err != nil {
		t.Fatalf("ActivitiesForLevel(3) error: %v", err)
	}
	want := []string{"focus_tap", "focus_tap"}
	if got := mandatoryTypes(acts); !reflect.DeepEqual(got, want) {
		t.Errorf("mandatory = %v, want %v", got, want)
	}
}

func TestActivitiesForLevel_EmptyBonusPoolSkipped(t *testing.T) {
	pools := DefaultTemplates()
	delete(pools, PoolGrounding)
	reg, err := NewRegistry(pools)
	if err != nil {
		t.Fatalf("NewRegistry() error: %v", err)
	}
	e := MustNew(WithRegistry(reg))
	acts, _ := e.ActivitiesForLevel(1)
	want := []string{"focus_tap", "color_match", "four_seven_eight"}
	if got := types(acts); !reflect.DeepEqual(got, want) {
		t.Errorf("plan = %v, want %v", got, want)
	}
}

// --- PlanForLevel ---

func TestPlanForLevel_EmptySetMatchesActivities(t *testing.T) {
	e := MustNew()
	for _, level := range []int{1, 60, 180} {
		a, _ := e.ActivitiesForLevel(level)
		b, _ := e.PlanForLevel(level, []string{})
		if !reflect.DeepEqual(a, b) {
			t.Errorf("PlanForLevel(%d, {}) != ActivitiesForLevel(%d)", level, level)
		}
	}
}

func TestPlanForLevel_CompletedBonusRollsForward(t *testing.T) {
	e := MustNew()
	acts, err := e.PlanForLevel(10, []string{"four_seven_eight"})
	if err != nil {
		t.Fatalf("PlanForLevel error: %v", err)
	}
	want := []string{"focus_tap", "color_match", "coherent_breathing", "body_scan"}
	if got := types(acts); !reflect.DeepEqual(got, want) {
		t.Errorf("plan = %v, want %v", got, want)
	}
}

func TestPlanForLevel_ExhaustedBonusPoolDropped(t *testing.T) {
	e := MustNew()
	acts, _ := e.PlanForLevel(10, []string{"box_breathing", "four_seven_eight", "coherent_breathing"})
	want := []string{"focus_tap", "color_match", "body_scan"}
	if got := types(acts); !reflect.DeepEqual(got, want) {
		t.Errorf("plan = %v, want %v", got, want)
	}
}

func TestPlanForLevel_CompletedMandatoryFlagged(t *testing.T) {
	e := MustNew()
	acts, _ := e.PlanForLevel(10, []string{"focus_tap"})
	if acts[0].Type != "focus_tap" || !acts[0].CompletedToday {
		t.Errorf("acts[0] = %s completed=%v, want focus_tap completed", acts[0].Type, acts[0].CompletedToday)
	}
	if acts[1].CompletedToday {
		t.Errorf("acts[1] %s should not be flagged completed", acts[1].Type)
	}
}
