package journey

import (
	"errors"
	"math"
	"reflect"
	"sync"
	"testing"
)

func TestJourneyLevel_Level10(t *testing.T) {
	e := MustNew()
	jl, err := e.JourneyLevel(10, 10)
	if err != nil {
		t.Fatalf("JourneyLevel(10, 10) error: %v", err)
	}
	if !jl.IsUnlocked {
		t.Error("IsUnlocked = false, want true")
	}
	if jl.Test == nil {
		t.Fatal("Test = nil, want a mastery test on level 10")
	}
	if jl.Test.PassingScore != 70 {
		t.Errorf("Test.PassingScore = %d, want 70", jl.Test.PassingScore)
	}
	if jl.RealmID != 1 || jl.RealmName != "Dawn Meadow" {
		t.Errorf("realm = %d %q, want 1 Dawn Meadow", jl.RealmID, jl.RealmName)
	}
	cost, _ := XPRequiredForLevel(10)
	total, _ := TotalXPToLevel(10)
	if jl.XPRequired != cost || jl.TotalXPToReach != total {
		t.Errorf("XP = %d/%d, want %d/%d", jl.XPRequired, jl.TotalXPToReach, cost, total)
	}
}

func TestJourneyLevel_Locked(t *testing.T) {
	e := MustNew()
	jl, err := e.JourneyLevel(11, 10)
	if err != nil {
		t.Fatalf("JourneyLevel(11, 10) error: %v", err)
	}
	if jl.IsUnlocked {
		t.Error("IsUnlocked = true, want false")
	}
	if jl.Test != nil {
		t.Error("level 11 should have no test")
	}
}

func TestJourneyLevel_InvalidArguments(t *testing.T) {
	e := MustNew()
	for _, args := range [][2]int{{0, 1}, {1, 0}, {-3, 5}, {5, -3}} {
		if _, err := e.JourneyLevel(args[0], args[1]); !errors.Is(err, ErrInvalidLevel) {
			t.Errorf("JourneyLevel(%d, %d) error = %v, want ErrInvalidLevel", args[0], args[1], err)
		}
	}
}

func TestJourneyLevel_TestMatchesPresentedPlan(t *testing.T) {
	e := MustNew()
	jl, _ := e.JourneyLevelWithPlan(10, 10, []string{"four_seven_eight"})
	if !reflect.DeepEqual(jl.Test.Activities, mandatoryTypes(jl.Activities)) {
		t.Errorf("test activities %v != presented mandatory %v", jl.Test.Activities, mandatoryTypes(jl.Activities))
	}
}

func TestJourneyLevel_CurrentLevelOnlyAffectsUnlock(t *testing.T) {
	e := MustNew()
	a, _ := e.JourneyLevel(42, 1)
	b, _ := e.JourneyLevel(42, 100)
	b.IsUnlocked = a.IsUnlocked
	if !reflect.DeepEqual(a, b) {
		t.Error("JourneyLevel output depends on currentLevel beyond IsUnlocked")
	}
}

func TestJourneyLevel_BeyondCatalog(t *testing.T) {
	e := MustNew()
	jl, err := e.JourneyLevel(300, 1)
	if err != nil {
		t.Fatalf("JourneyLevel(300, 1) error: %v", err)
	}
	if jl.RealmID != 1 {
		t.Errorf("RealmID = %d, want fallback realm 1", jl.RealmID)
	}
	if jl.DifficultyLevel != 10 {
		t.Errorf("DifficultyLevel = %d, want 10", jl.DifficultyLevel)
	}
}

func TestPath(t *testing.T) {
	e := MustNew()
	path, err := e.Path(8, 12, 10)
	if err != nil {
		t.Fatalf("Path error: %v", err)
	}
	if len(path) != 5 {
		t.Fatalf("len(Path) = %d, want 5", len(path))
	}
	for i, jl := range path {
		if jl.Level != 8+i {
			t.Errorf("path[%d].Level = %d, want %d", i, jl.Level, 8+i)
		}
		if jl.IsUnlocked != (jl.Level <= 10) {
			t.Errorf("path[%d].IsUnlocked = %v", i, jl.IsUnlocked)
		}
	}
	if _, err := e.Path(12, 8, 10); !errors.Is(err, ErrInvalidLevel) {
		t.Errorf("inverted Path error = %v, want ErrInvalidLevel", err)
	}
}

func TestPath_RejectsOversizedRange(t *testing.T) {
	e := MustNew()
	tests := []struct {
		name     string
		from, to int
	}{
		{"whole int range", 1, math.MaxInt},
		{"one past the span", 1, MaxPathSpan + 1},
		{"far out", math.MaxInt - MaxPathSpan, math.MaxInt},
		{"invalid to", 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := e.Path(tt.from, tt.to, 1); !errors.Is(err, ErrInvalidLevel) {
				t.Errorf("Path(%d, %d) error = %v, want ErrInvalidLevel", tt.from, tt.to, err)
			}
		})
	}

	path, err := e.Path(1, MaxPathSpan, 1)
	if err != nil {
		t.Fatalf("Path over the full span: %v", err)
	}
	if len(path) != MaxPathSpan {
		t.Errorf("len(Path) = %d, want %d", len(path), MaxPathSpan)
	}
}

func TestNew_RejectsBadDependencies(t *testing.T) {
	bad := DefaultPolicy()
	bad.WindowStride = 0
	if _, err := New(WithPolicy(bad)); err == nil {
		t.Error("New with invalid policy should fail")
	}
	if _, err := New(WithXPCurve(XPCurve{Base: 100, Growth: 1})); err == nil {
		t.Error("New with flat curve should fail")
	}
	pools := DefaultTemplates()
	delete(pools, PoolAdvanced)
	reg, _ := NewRegistry(pools)
	if _, err := New(WithRegistry(reg)); err == nil {
		t.Error("New with empty advanced pool should fail")
	}
	if _, err := New(WithRealms(nil)); err == nil {
		t.Error("New with nil realms should fail")
	}
}

func TestEngine_ConcurrentUse(t *testing.T) {
	e := MustNew()
	want, _ := e.JourneyLevel(130, 130)
	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := e.JourneyLevel(130, 130)
			if err != nil || !reflect.DeepEqual(got, want) {
				errs <- "concurrent JourneyLevel diverged"
			}
		}()
	}
	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Error(msg)
	}
}
