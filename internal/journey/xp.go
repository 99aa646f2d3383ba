package journey

import (
	"fmt"
	"math"
)

const (
	defaultBaseXP   = 100
	defaultGrowthXP = 1.08
)

// XPCurve describes the exponential cost of each level.
//
// The cost of level L is round(Base * Growth^(L-1)). The cumulative cost to
// reach L is the sum of the costs of every level below it, so level 1 is free.
// Costs saturate at math.MaxInt64 once the float result no longer fits
// (around level 490 with the default curve).
type XPCurve struct {
	Base   float64 `json:"base" yaml:"base"`
	Growth float64 `json:"growth" yaml:"growth"`
}

// DefaultXPCurve returns the 100 XP, 8% growth curve.
func DefaultXPCurve() XPCurve {
	return XPCurve{Base: defaultBaseXP, Growth: defaultGrowthXP}
}

// LevelProgress describes where a cumulative XP total sits on the curve.
type LevelProgress struct {
	Level     int     `json:"level"`
	IntoLevel int64   `json:"intoLevel"` // XP earned since the start of Level
	LevelCost int64   `json:"levelCost"` // XP cost of Level itself
	Pct       float64 `json:"pct"`       // IntoLevel / LevelCost, 0.0–1.0
}

// Validate reports whether the curve grows. A flat or shrinking curve would
// make LevelForTotalXP unbounded.
func (c XPCurve) Validate() error {
	if c.Base <= 0 {
		return fmt.Errorf("xp curve: base must be positive, got %v", c.Base)
	}
	if c.Growth <= 1 {
		return fmt.Errorf("xp curve: growth must be greater than 1, got %v", c.Growth)
	}
	return nil
}

// XPRequiredForLevel returns the XP cost of level alone.
func (c XPCurve) XPRequiredForLevel(level int) (int64, error) {
	if err := checkLevel(level); err != nil {
		return 0, err
	}
	return c.cost(level), nil
}

// TotalXPToLevel returns the XP already spent reaching the start of level.
func (c XPCurve) TotalXPToLevel(level int) (int64, error) {
	if err := checkLevel(level); err != nil {
		return 0, err
	}
	var total int64
	for i := 1; i < level && total < math.MaxInt64; i++ {
		total = saturatingAdd(total, c.cost(i))
	}
	return total, nil
}

// LevelForTotalXP returns the highest level whose cumulative threshold is
// covered by total. Totals below zero map to level 1.
func (c XPCurve) LevelForTotalXP(total int64) int {
	level := 1
	var spent int64
	for {
		next := saturatingAdd(spent, c.cost(level))
		if next > total || next == math.MaxInt64 {
			return level
		}
		spent = next
		level++
	}
}

// Progress reports the level reached by total and how far into it the
// player is.
func (c XPCurve) Progress(total int64) LevelProgress {
	return c.ProgressAt(c.LevelForTotalXP(total), total)
}

// ProgressAt reports how far total is into level, for players whose level is
// tracked separately from their XP. A player held below a milestone may hold
// more XP than the level costs; Pct is capped at 1. Levels below 1 count as 1.
func (c XPCurve) ProgressAt(level int, total int64) LevelProgress {
	level = max(level, 1)
	start, _ := c.TotalXPToLevel(level)
	cost := c.cost(level)
	into := max(total-start, 0)
	pct := 0.0
	if cost > 0 {
		pct = min(float64(into)/float64(cost), 1)
	}
	return LevelProgress{
		Level:     level,
		IntoLevel: into,
		LevelCost: cost,
		Pct:       pct,
	}
}

func (c XPCurve) cost(level int) int64 {
	v := math.Round(c.Base * math.Pow(c.Growth, float64(level-1)))
	if v >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}

func saturatingAdd(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

// XPRequiredForLevel returns the cost of level on the default curve.
func XPRequiredForLevel(level int) (int64, error) {
	return DefaultXPCurve().XPRequiredForLevel(level)
}

// TotalXPToLevel returns the cumulative XP to reach level on the default curve.
func TotalXPToLevel(level int) (int64, error) {
	return DefaultXPCurve().TotalXPToLevel(level)
}
