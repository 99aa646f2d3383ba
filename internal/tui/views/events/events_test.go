package events

import (
	"strings"
	"testing"
	"time"
)

func fixed() Model {
	m := New()
	ts := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	m.now = func() time.Time { return ts }
	return m
}

func TestAddf(t *testing.T) {
	m := fixed()
	m.Addf(KindXP, "+%d XP %s", 20, "Box Breathing")
	e, ok := m.Last()
	if !ok {
		t.Fatal("expected an entry")
	}
	if e.Kind != KindXP || e.Message != "+20 XP Box Breathing" {
		t.Errorf("entry = %+v", e)
	}
	if e.Time.Hour() != 9 {
		t.Errorf("entry time = %v", e.Time)
	}
}

func TestCap(t *testing.T) {
	m := fixed()
	for i := 0; i < maxEntries+25; i++ {
		m.Addf(KindXP, "entry %d", i)
	}
	if len(m.Entries) != maxEntries {
		t.Fatalf("len = %d, want %d", len(m.Entries), maxEntries)
	}
	if m.Entries[0].Message != "entry 25" {
		t.Errorf("oldest = %q, want entry 25", m.Entries[0].Message)
	}
}

func TestScroll(t *testing.T) {
	m := fixed()
	for i := 0; i < 6; i++ {
		m.Addf(KindConn, "msg")
	}
	m.ScrollUp(4)
	if m.Offset != 4 {
		t.Errorf("Offset = %d, want 4", m.Offset)
	}
	m.ScrollUp(10)
	if m.Offset != 5 {
		t.Errorf("Offset capped = %d, want 5", m.Offset)
	}
	m.ScrollDown(2)
	if m.Offset != 3 {
		t.Errorf("Offset = %d, want 3", m.Offset)
	}
	m.Addf(KindLevel, "level up")
	if m.Offset != 0 {
		t.Error("a new entry should scroll back to the newest")
	}
	m.ScrollDown(1)
	if m.Offset != 0 {
		t.Error("Offset must not go negative")
	}
}

func TestView(t *testing.T) {
	m := fixed()
	if !strings.Contains(m.View(80, 20), "Nothing yet") {
		t.Error("empty log should say so")
	}

	m.Addf(KindLevel, "reached level 11")
	m.Addf(KindTest, "passed Level 10 Mastery Test")
	v := m.View(80, 20)
	for _, want := range []string{"JOURNAL", "09:30:00", "reached level 11", "passed Level 10"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
