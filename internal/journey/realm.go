package journey

import (
	"fmt"
	"sort"
)

// Realm is a themed, contiguous band of levels.
type Realm struct {
	ID     int    `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Theme  string `json:"theme" yaml:"theme"`
	Start  int    `json:"start" yaml:"start"` // inclusive
	End    int    `json:"end" yaml:"end"`     // inclusive
	Color  string `json:"color" yaml:"color"`
	Accent string `json:"accent" yaml:"accent"`
}

// Contains reports whether level falls inside the realm's range.
func (r Realm) Contains(level int) bool {
	return level >= r.Start && level <= r.End
}

// RealmCatalog is an immutable, ordered realm table. Ranges partition
// [1, MaxLevel] with no gaps or overlaps.
type RealmCatalog struct {
	realms []Realm
}

// NewRealmCatalog validates realms and returns a catalog ordered by Start.
// The input slice is copied.
func NewRealmCatalog(realms []Realm) (*RealmCatalog, error) {
	if len(realms) == 0 {
		return nil, fmt.Errorf("realm catalog: no realms")
	}
	sorted := make([]Realm, len(realms))
	copy(sorted, realms)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	ids := make(map[int]bool, len(sorted))
	next := 1
	for _, r := range sorted {
		if r.Name == "" {
			return nil, fmt.Errorf("realm catalog: realm %d has no name", r.ID)
		}
		if ids[r.ID] {
			return nil, fmt.Errorf("realm catalog: duplicate realm id %d", r.ID)
		}
		ids[r.ID] = true
		if r.End < r.Start {
			return nil, fmt.Errorf("realm catalog: realm %q ends (%d) before it starts (%d)", r.Name, r.End, r.Start)
		}
		switch {
		case r.Start > next:
			return nil, fmt.Errorf("realm catalog: gap before realm %q (levels %d-%d uncovered)", r.Name, next, r.Start-1)
		case r.Start < next:
			return nil, fmt.Errorf("realm catalog: realm %q overlaps level %d", r.Name, r.Start)
		}
		next = r.End + 1
	}
	return &RealmCatalog{realms: sorted}, nil
}

// ForLevel returns the realm whose range contains level.
//
// Levels outside the catalog (including levels past the final realm) resolve
// to the first realm. This is a tolerated extrapolation, not an error:
// callers that must distinguish the case use Contains.
func (c *RealmCatalog) ForLevel(level int) Realm {
	i := sort.Search(len(c.realms), func(i int) bool { return c.realms[i].End >= level })
	if i < len(c.realms) && c.realms[i].Contains(level) {
		return c.realms[i]
	}
	return c.realms[0]
}

// Contains reports whether level is covered by some realm.
func (c *RealmCatalog) Contains(level int) bool {
	return level >= 1 && level <= c.MaxLevel()
}

// MaxLevel returns the last cataloged level.
func (c *RealmCatalog) MaxLevel() int {
	return c.realms[len(c.realms)-1].End
}

// All returns a copy of the realms in level order.
func (c *RealmCatalog) All() []Realm {
	out := make([]Realm, len(c.realms))
	copy(out, c.realms)
	return out
}

// DefaultRealms returns the ten 25-level realms spanning levels 1–250.
func DefaultRealms() []Realm {
	return []Realm{
		{ID: 1, Name: "Dawn Meadow", Theme: "meadow", Start: 1, End: 25, Color: "#86efac", Accent: "#facc15"},
		{ID: 2, Name: "Whispering Grove", Theme: "forest", Start: 26, End: 50, Color: "#22c55e", Accent: "#a3e635"},
		{ID: 3, Name: "Misty Lake", Theme: "lake", Start: 51, End: 75, Color: "#67e8f9", Accent: "#e0f2fe"},
		{ID: 4, Name: "Stone Steps", Theme: "mountain", Start: 76, End: 100, Color: "#a8a29e", Accent: "#fbbf24"},
		{ID: 5, Name: "Cloud Valley", Theme: "sky", Start: 101, End: 125, Color: "#93c5fd", Accent: "#f9fafb"},
		{ID: 6, Name: "Ember Canyon", Theme: "desert", Start: 126, End: 150, Color: "#fb923c", Accent: "#dc2626"},
		{ID: 7, Name: "Moonlit Shore", Theme: "ocean", Start: 151, End: 175, Color: "#6366f1", Accent: "#c7d2fe"},
		{ID: 8, Name: "Crystal Caverns", Theme: "cave", Start: 176, End: 200, Color: "#a855f7", Accent: "#67e8f9"},
		{ID: 9, Name: "Starlight Peaks", Theme: "night", Start: 201, End: 225, Color: "#1e3a8a", Accent: "#fde68a"},
		{ID: 10, Name: "Summit of Stillness", Theme: "summit", Start: 226, End: 250, Color: "#f5f5f4", Accent: "#f59e0b"},
	}
}

var defaultRealmCatalog = mustRealmCatalog(DefaultRealms())

func mustRealmCatalog(realms []Realm) *RealmCatalog {
	c, err := NewRealmCatalog(realms)
	if err != nil {
		panic(err)
	}
	return c
}

// DefaultRealmCatalog returns the shared catalog built from DefaultRealms.
func DefaultRealmCatalog() *RealmCatalog {
	return defaultRealmCatalog
}
