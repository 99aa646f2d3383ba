package level

import (
	"strings"
	"testing"

	"github.com/stillpath/journey/internal/journey"
)

func engineLevel(t *testing.T, level, current int) journey.JourneyLevel {
	t.Helper()
	e := journey.MustNew()
	jl, err := e.JourneyLevel(level, current)
	if err != nil {
		t.Fatalf("JourneyLevel(%d): %v", level, err)
	}
	return jl
}

func TestBriefingListsActivities(t *testing.T) {
	jl := engineLevel(t, 3, 3)
	md := Briefing(jl, 3, false)

	if !strings.HasPrefix(md, "# Level 3 · Dawn Meadow") {
		t.Errorf("unexpected heading: %q", strings.SplitN(md, "\n", 2)[0])
	}
	if !strings.Contains(md, "You are here") {
		t.Error("current level should say so")
	}
	for _, a := range jl.Activities {
		if !strings.Contains(md, a.Name) {
			t.Errorf("briefing missing activity %q", a.Name)
		}
	}
	if strings.Contains(md, "Mastery Test") {
		t.Error("level 3 has no test")
	}
}

func TestBriefingMilestone(t *testing.T) {
	jl := engineLevel(t, 10, 4)
	md := Briefing(jl, 4, false)

	if !strings.Contains(md, "Locked. 6 levels ahead") {
		t.Error("locked level should show distance")
	}
	if !strings.Contains(md, "## Level 10 Mastery Test") {
		t.Error("milestone level should describe its test")
	}
	if !strings.Contains(md, "earn **57 XP**") {
		t.Error("test reward missing")
	}
	if !strings.Contains(Briefing(jl, 12, true), "Passed.") {
		t.Error("passed test should say so")
	}
}

func TestBriefingStrikesCompleted(t *testing.T) {
	jl := engineLevel(t, 2, 2)
	jl.Activities[0].CompletedToday = true
	md := Briefing(jl, 2, false)
	if !strings.Contains(md, "~~"+jl.Activities[0].Name+"~~") {
		t.Error("completed activity should be struck through")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := map[int]string{
		45:  "45s",
		60:  "1m",
		90:  "1m 30s",
		600: "10m",
	}
	for in, want := range tests {
		if got := FormatDuration(in); got != want {
			t.Errorf("FormatDuration(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestViewRendersBriefing(t *testing.T) {
	jl := engineLevel(t, 10, 10)
	m := New(jl, 10, false, 80)
	v := m.View()
	if !strings.Contains(v, "Mastery") {
		t.Error("rendered overlay should include the test")
	}
	if !strings.Contains(v, "[c] complete") {
		t.Error("current level footer should offer completion")
	}
	if strings.Contains(New(jl, 11, true, 80).View(), "[c] complete") {
		t.Error("other levels cannot be completed from the overlay")
	}
}
