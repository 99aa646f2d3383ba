package xpbar

import (
	"strings"
	"testing"

	"github.com/stillpath/journey/internal/journey"
)

// run drives the animation synchronously until it settles.
func run(t *testing.T, m Model) Model {
	t.Helper()
	for i := 0; i < 10*fps && m.Animating(); i++ {
		m, _ = m.Update(FrameMsg{id: m.id})
	}
	if m.Animating() {
		t.Fatal("spring never settled")
	}
	return m
}

func TestSetProgressAnimatesToTarget(t *testing.T) {
	m := New()
	cmd := m.SetProgress(journey.LevelProgress{Level: 3, IntoLevel: 58, LevelCost: 117, Pct: 0.5})
	if cmd == nil {
		t.Fatal("expected a frame command")
	}
	if !m.Animating() {
		t.Fatal("expected animation to start")
	}
	m = run(t, m)
	if m.Fill() != 0.5 {
		t.Errorf("Fill = %v, want 0.5", m.Fill())
	}
}

func TestSetProgressWhileAnimatingReusesLoop(t *testing.T) {
	m := New()
	m.SetProgress(journey.LevelProgress{Level: 3, Pct: 0.3})
	if cmd := m.SetProgress(journey.LevelProgress{Level: 3, Pct: 0.6}); cmd != nil {
		t.Error("a running loop should pick up the new target")
	}
	m = run(t, m)
	if m.Fill() != 0.6 {
		t.Errorf("Fill = %v, want 0.6", m.Fill())
	}
}

func TestNewLevelRestartsFromEmpty(t *testing.T) {
	m := New()
	m.SetProgress(journey.LevelProgress{Level: 3, Pct: 0.9})
	m = run(t, m)

	m.SetProgress(journey.LevelProgress{Level: 4, Pct: 0.1})
	if m.Fill() != 0 {
		t.Errorf("Fill after level change = %v, want 0", m.Fill())
	}
	m = run(t, m)
	if m.Fill() != 0.1 {
		t.Errorf("Fill = %v, want 0.1", m.Fill())
	}
}

func TestUnchangedProgressIsNoop(t *testing.T) {
	m := New()
	if cmd := m.SetProgress(journey.LevelProgress{Level: 0, Pct: 0}); cmd != nil {
		t.Error("nothing to animate")
	}
}

func TestStaleFrameIgnored(t *testing.T) {
	m := New()
	m.SetProgress(journey.LevelProgress{Level: 1, Pct: 1})
	m2, cmd := m.Update(FrameMsg{id: m.id - 1})
	if cmd != nil || m2.pos != 0 {
		t.Error("frames from an earlier loop must be ignored")
	}
}

func TestView(t *testing.T) {
	m := New()
	m.Width = 20
	m.SetProgress(journey.LevelProgress{Level: 10, IntoLevel: 100, LevelCost: 200, Pct: 0.5})
	m = run(t, m)

	v := m.View()
	if !strings.Contains(v, "100 / 200 XP") {
		t.Errorf("view missing label: %q", v)
	}
	if strings.Count(v, "█") != 10 {
		t.Errorf("expected 10 filled cells, got %d", strings.Count(v, "█"))
	}
	if !strings.Contains(v, "50%") {
		t.Error("view missing percentage")
	}
}
