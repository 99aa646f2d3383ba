package status

import (
	"strings"
	"testing"

	"github.com/stillpath/journey/internal/journey"
)

func TestView(t *testing.T) {
	m := New()
	m.Width = 100
	m.Connected = true
	m.UserID = "0f8fad5b-d9cb-469f-a165-70867728950e"
	m.Realm = journey.Realm{ID: 1, Name: "Dawn Meadow", Color: "#a3e635"}
	m.Level = 12
	m.MaxLevel = 250
	m.Streak = 3
	m.LongestStreak = 7

	v := m.View()
	for _, want := range []string{"Live", "Dawn Meadow", "Level 12/250", "streak 3 (best 7)", "0f8fad5b"} {
		if !strings.Contains(v, want) {
			t.Errorf("header missing %q", want)
		}
	}
}

func TestViewDisconnected(t *testing.T) {
	v := New().View()
	if !strings.Contains(v, "Connecting") {
		t.Error("disconnected header should say Connecting")
	}
	if !strings.Contains(v, "streak 0") {
		t.Error("zero streak should render")
	}
}
