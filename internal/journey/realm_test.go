package journey

import (
	"strings"
	"testing"
)

func TestDefaultRealms_PartitionLevels(t *testing.T) {
	c := DefaultRealmCatalog()
	if c.MaxLevel() != NominalMaxLevel {
		t.Fatalf("MaxLevel() = %d, want %d", c.MaxLevel(), NominalMaxLevel)
	}
	for level := 1; level <= NominalMaxLevel; level++ {
		matches := 0
		for _, r := range c.All() {
			if r.Contains(level) {
				matches++
			}
		}
		if matches != 1 {
			t.Fatalf("level %d is covered by %d realms, want exactly 1", level, matches)
		}
		if r := c.ForLevel(level); !r.Contains(level) {
			t.Fatalf("ForLevel(%d) = %q [%d-%d], does not contain level", level, r.Name, r.Start, r.End)
		}
	}
}

func TestForLevel_Boundaries(t *testing.T) {
	c := DefaultRealmCatalog()
	first := c.ForLevel(1)
	last := c.ForLevel(250)
	if first.ID != 1 || first.Start != 1 {
		t.Errorf("ForLevel(1) = %+v, want realm 1 starting at 1", first)
	}
	if last.ID != 10 || last.End != 250 {
		t.Errorf("ForLevel(250) = %+v, want realm 10 ending at 250", last)
	}
	if first.ID == last.ID {
		t.Error("levels 1 and 250 should resolve to distinct realms")
	}
	if got := c.ForLevel(25).ID; got != 1 {
		t.Errorf("ForLevel(25).ID = %d, want 1", got)
	}
	if got := c.ForLevel(26).ID; got != 2 {
		t.Errorf("ForLevel(26).ID = %d, want 2", got)
	}
}

func TestForLevel_OutOfRangeFallsBackToFirst(t *testing.T) {
	c := DefaultRealmCatalog()
	for _, level := range []int{251, 1000, 0, -4} {
		if got := c.ForLevel(level); got.ID != 1 {
			t.Errorf("ForLevel(%d).ID = %d, want fallback to realm 1", level, got.ID)
		}
		if c.Contains(level) {
			t.Errorf("Contains(%d) = true, want false", level)
		}
	}
}

func TestNewRealmCatalog_Validation(t *testing.T) {
	tests := []struct {
		name    string
		realms  []Realm
		wantErr string
	}{
		{
			name:    "empty",
			realms:  nil,
			wantErr: "no realms",
		},
		{
			name: "gap",
			realms: []Realm{
				{ID: 1, Name: "A", Start: 1, End: 10},
				{ID: 2, Name: "B", Start: 12, End: 20},
			},
			wantErr: "gap",
		},
		{
			name: "overlap",
			realms: []Realm{
				{ID: 1, Name: "A", Start: 1, End: 10},
				{ID: 2, Name: "B", Start: 10, End: 20},
			},
			wantErr: "overlaps",
		},
		{
			name:    "not starting at one",
			realms:  []Realm{{ID: 1, Name: "A", Start: 2, End: 10}},
			wantErr: "gap",
		},
		{
			name: "duplicate id",
			realms: []Realm{
				{ID: 1, Name: "A", Start: 1, End: 10},
				{ID: 1, Name: "B", Start: 11, End: 20},
			},
			wantErr: "duplicate",
		},
		{
			name:    "inverted",
			realms:  []Realm{{ID: 1, Name: "A", Start: 1, End: 0}},
			wantErr: "before it starts",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRealmCatalog(tt.realms)
			if err == nil {
				t.Fatal("NewRealmCatalog() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestNewRealmCatalog_SortsAndCopies(t *testing.T) {
	in := []Realm{
		{ID: 2, Name: "B", Start: 6, End: 10},
		{ID: 1, Name: "A", Start: 1, End: 5},
	}
	c, err := NewRealmCatalog(in)
	if err != nil {
		t.Fatalf("NewRealmCatalog() error: %v", err)
	}
	in[0].Name = "mutated"
	all := c.All()
	if all[0].ID != 1 || all[1].Name != "B" {
		t.Errorf("All() = %+v, want sorted copy unaffected by caller mutation", all)
	}
	all[0].Name = "mutated"
	if c.ForLevel(1).Name != "A" {
		t.Error("mutating All() result leaked into the catalog")
	}
}
