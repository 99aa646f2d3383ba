package journey

import "fmt"

// Tier is a coarse level band governing pool choice and mandatory count.
type Tier int

const (
	TierA Tier = iota + 1 // early levels: introductory challenges
	TierB                 // mid levels: introductory + intermediate
	TierC                 // late levels: intermediate + advanced
)

func (t Tier) String() string {
	switch t {
	case TierA:
		return "A"
	case TierB:
		return "B"
	case TierC:
		return "C"
	default:
		return fmt.Sprintf("Tier(%d)", int(t))
	}
}

// Policy holds the product-tuning constants of the activity selector.
// The values are load-bearing for the milestone cadence and are preserved
// exactly; DefaultPolicy is the shipped configuration.
type Policy struct {
	// TierAEnd and TierBEnd are the last levels of tiers A and B.
	TierAEnd int `json:"tierAEnd" yaml:"tier_a_end"`
	TierBEnd int `json:"tierBEnd" yaml:"tier_b_end"`

	// TierBStep and TierCStep are the levels after which the late
	// mandatory count of the tier applies.
	TierBStep int `json:"tierBStep" yaml:"tier_b_step"`
	TierCStep int `json:"tierCStep" yaml:"tier_c_step"`

	TierAMandatory     int `json:"tierAMandatory" yaml:"tier_a_mandatory"`
	TierBMandatory     int `json:"tierBMandatory" yaml:"tier_b_mandatory"`
	TierBMandatoryLate int `json:"tierBMandatoryLate" yaml:"tier_b_mandatory_late"`
	TierCMandatory     int `json:"tierCMandatory" yaml:"tier_c_mandatory"`
	TierCMandatoryLate int `json:"tierCMandatoryLate" yaml:"tier_c_mandatory_late"`

	// WindowStride is the number of levels the mandatory window stays on
	// one starting index: start = floor(level/WindowStride) mod poolSize.
	WindowStride int `json:"windowStride" yaml:"window_stride"`
	// CognitiveStride plays the same role for the cognitive bonus.
	CognitiveStride int `json:"cognitiveStride" yaml:"cognitive_stride"`

	// Reflection bonuses appear on levels divisible by these values and
	// rotate with floor(level/value).
	TierBReflectionEvery int `json:"tierBReflectionEvery" yaml:"tier_b_reflection_every"`
	TierCReflectionEvery int `json:"tierCReflectionEvery" yaml:"tier_c_reflection_every"`

	// MilestoneEvery is the mastery test cadence.
	MilestoneEvery int `json:"milestoneEvery" yaml:"milestone_every"`
	// PassingScore is the 0–100 threshold a mastery test must reach.
	PassingScore int `json:"passingScore" yaml:"passing_score"`
	// TestBonusPct is added on top of the summed mandatory reward.
	TestBonusPct int `json:"testBonusPct" yaml:"test_bonus_pct"`
}

// DefaultPolicy returns the shipped selector constants.
func DefaultPolicy() Policy {
	return Policy{
		TierAEnd:             50,
		TierBEnd:             150,
		TierBStep:            100,
		TierCStep:            200,
		TierAMandatory:       2,
		TierBMandatory:       2,
		TierBMandatoryLate:   3,
		TierCMandatory:       3,
		TierCMandatoryLate:   4,
		WindowStride:         10,
		CognitiveStride:      10,
		TierBReflectionEvery: 5,
		TierCReflectionEvery: 3,
		MilestoneEvery:       10,
		PassingScore:         70,
		TestBonusPct:         50,
	}
}

// Validate checks the tier layout and that each tier widens the mandatory
// count monotonically.
func (p Policy) Validate() error {
	if p.TierAEnd < 1 {
		return fmt.Errorf("policy: tier A must end at level 1 or later, got %d", p.TierAEnd)
	}
	if p.TierBEnd <= p.TierAEnd {
		return fmt.Errorf("policy: tier B end %d must be after tier A end %d", p.TierBEnd, p.TierAEnd)
	}
	if p.TierBStep <= p.TierAEnd || p.TierBStep > p.TierBEnd {
		return fmt.Errorf("policy: tier B step %d must fall inside tier B (%d-%d)", p.TierBStep, p.TierAEnd+1, p.TierBEnd)
	}
	if p.TierCStep <= p.TierBEnd {
		return fmt.Errorf("policy: tier C step %d must fall inside tier C (after %d)", p.TierCStep, p.TierBEnd)
	}
	counts := []int{p.TierAMandatory, p.TierBMandatory, p.TierBMandatoryLate, p.TierCMandatory, p.TierCMandatoryLate}
	for i, c := range counts {
		if c < 1 {
			return fmt.Errorf("policy: mandatory counts must be positive, got %v", counts)
		}
		if i > 0 && c < counts[i-1] {
			return fmt.Errorf("policy: mandatory counts must not decrease across tiers, got %v", counts)
		}
	}
	for name, v := range map[string]int{
		"window_stride":           p.WindowStride,
		"cognitive_stride":        p.CognitiveStride,
		"tier_b_reflection_every": p.TierBReflectionEvery,
		"tier_c_reflection_every": p.TierCReflectionEvery,
		"milestone_every":         p.MilestoneEvery,
	} {
		if v < 1 {
			return fmt.Errorf("policy: %s must be positive, got %d", name, v)
		}
	}
	if p.PassingScore < 0 || p.PassingScore > 100 {
		return fmt.Errorf("policy: passing score must be within 0-100, got %d", p.PassingScore)
	}
	if p.TestBonusPct < 0 {
		return fmt.Errorf("policy: test bonus must not be negative, got %d", p.TestBonusPct)
	}
	return nil
}

// TierFor returns the tier containing level.
func (p Policy) TierFor(level int) Tier {
	switch {
	case level <= p.TierAEnd:
		return TierA
	case level <= p.TierBEnd:
		return TierB
	default:
		return TierC
	}
}

// MandatoryCount returns how many mandatory challenges level receives.
func (p Policy) MandatoryCount(level int) int {
	switch p.TierFor(level) {
	case TierA:
		return p.TierAMandatory
	case TierB:
		if level > p.TierBStep {
			return p.TierBMandatoryLate
		}
		return p.TierBMandatory
	default:
		if level > p.TierCStep {
			return p.TierCMandatoryLate
		}
		return p.TierCMandatory
	}
}

// IsMilestone reports whether level carries a mastery test.
func (p Policy) IsMilestone(level int) bool {
	return level%p.MilestoneEvery == 0
}
