package journey

import (
	"fmt"
)

// Kind is the tagged variant every template carries. Scaling dispatches on it.
type Kind string

const (
	// KindChallenge activities lengthen as levels increase.
	KindChallenge Kind = "challenge"
	// KindExercise activities have an intrinsic pace and a fixed duration.
	KindExercise Kind = "exercise"
)

// Pool names a partition of the template registry.
type Pool string

// Difficulty pools hold challenges; the remaining pools hold exercises.
const (
	PoolBeginner     Pool = "beginner"
	PoolIntermediate Pool = "intermediate"
	PoolAdvanced     Pool = "advanced"
	PoolBreathing    Pool = "breathing"
	PoolGrounding    Pool = "grounding"
	PoolCognitive    Pool = "cognitive"
	PoolReflection   Pool = "reflection"
	PoolMovement     Pool = "movement"
)

// Pools lists every pool in registry order.
var Pools = []Pool{
	PoolBeginner, PoolIntermediate, PoolAdvanced,
	PoolBreathing, PoolGrounding, PoolCognitive, PoolReflection, PoolMovement,
}

// Kind returns the template kind a pool holds.
func (p Pool) Kind() Kind {
	switch p {
	case PoolBeginner, PoolIntermediate, PoolAdvanced:
		return KindChallenge
	default:
		return KindExercise
	}
}

func (p Pool) valid() bool {
	for _, known := range Pools {
		if p == known {
			return true
		}
	}
	return false
}

// ActivityTemplate is an immutable catalog entry. It never carries
// level-specific data.
type ActivityTemplate struct {
	Type         string `json:"type" yaml:"type"`
	Kind         Kind   `json:"kind" yaml:"kind"`
	Category     Pool   `json:"category" yaml:"category"`
	Name         string `json:"name" yaml:"name"`
	BaseDuration int    `json:"baseDuration" yaml:"base_duration"` // seconds
	BaseReward   int    `json:"baseReward" yaml:"base_reward"`     // XP
	Icon         string `json:"icon" yaml:"icon"`
}

// Registry is the template catalog partitioned into pools. It is built once
// and never mutated.
type Registry struct {
	pools  map[Pool][]ActivityTemplate
	byType map[string]ActivityTemplate
}

// NewRegistry validates pools and returns a registry. Type tags must be
// unique across all pools, durations and rewards positive. Each template's
// Category and Kind are set from the pool it is listed under.
func NewRegistry(pools map[Pool][]ActivityTemplate) (*Registry, error) {
	r := &Registry{
		pools:  make(map[Pool][]ActivityTemplate, len(pools)),
		byType: make(map[string]ActivityTemplate),
	}
	for _, p := range Pools {
		list := pools[p]
		out := make([]ActivityTemplate, 0, len(list))
		for _, t := range list {
			if t.Type == "" {
				return nil, fmt.Errorf("registry: template in pool %s has no type", p)
			}
			if _, dup := r.byType[t.Type]; dup {
				return nil, fmt.Errorf("registry: duplicate template type %q", t.Type)
			}
			if t.BaseDuration <= 0 {
				return nil, fmt.Errorf("registry: template %q: base duration must be positive", t.Type)
			}
			if t.BaseReward <= 0 {
				return nil, fmt.Errorf("registry: template %q: base reward must be positive", t.Type)
			}
			if t.Kind != "" && t.Kind != p.Kind() {
				return nil, fmt.Errorf("registry: template %q is a %s but listed in %s pool", t.Type, t.Kind, p)
			}
			t.Kind = p.Kind()
			t.Category = p
			out = append(out, t)
			r.byType[t.Type] = t
		}
		r.pools[p] = out
	}
	for p := range pools {
		if !p.valid() {
			return nil, fmt.Errorf("registry: unknown pool %q", p)
		}
	}
	return r, nil
}

// Pool returns a copy of the templates in p.
func (r *Registry) Pool(p Pool) []ActivityTemplate {
	src := r.pools[p]
	out := make([]ActivityTemplate, len(src))
	copy(out, src)
	return out
}

// Union concatenates pools in the order given.
func (r *Registry) Union(pools ...Pool) []ActivityTemplate {
	var out []ActivityTemplate
	for _, p := range pools {
		out = append(out, r.pools[p]...)
	}
	return out
}

// Lookup returns the template with the given type tag.
func (r *Registry) Lookup(typ string) (ActivityTemplate, bool) {
	t, ok := r.byType[typ]
	return t, ok
}

// All returns every template grouped by pool, in registry order.
func (r *Registry) All() map[Pool][]ActivityTemplate {
	out := make(map[Pool][]ActivityTemplate, len(r.pools))
	for p := range r.pools {
		out[p] = r.Pool(p)
	}
	return out
}

// DefaultTemplates returns the built-in catalog.
func DefaultTemplates() map[Pool][]ActivityTemplate {
	return map[Pool][]ActivityTemplate{
		PoolBeginner: {
			{Type: "focus_tap", Name: "Focus Tap", BaseDuration: 60, BaseReward: 20, Icon: "target"},
			{Type: "color_match", Name: "Color Match", BaseDuration: 45, BaseReward: 15, Icon: "palette"},
			{Type: "pattern_recall", Name: "Pattern Recall", BaseDuration: 60, BaseReward: 25, Icon: "grid"},
			{Type: "reaction_time", Name: "Reaction Time", BaseDuration: 30, BaseReward: 15, Icon: "zap"},
		},
		PoolIntermediate: {
			{Type: "sequence_memory", Name: "Sequence Memory", BaseDuration: 90, BaseReward: 35, Icon: "list"},
			{Type: "stroop_test", Name: "Stroop Test", BaseDuration: 75, BaseReward: 30, Icon: "type"},
			{Type: "dual_focus", Name: "Dual Focus", BaseDuration: 90, BaseReward: 40, Icon: "columns"},
			{Type: "number_span", Name: "Number Span", BaseDuration: 60, BaseReward: 35, Icon: "hash"},
		},
		PoolAdvanced: {
			{Type: "n_back", Name: "N-Back", BaseDuration: 120, BaseReward: 60, Icon: "layers"},
			{Type: "divided_attention", Name: "Divided Attention", BaseDuration: 120, BaseReward: 55, Icon: "split"},
			{Type: "rapid_switch", Name: "Rapid Switch", BaseDuration: 90, BaseReward: 50, Icon: "shuffle"},
			{Type: "deep_focus", Name: "Deep Focus", BaseDuration: 180, BaseReward: 70, Icon: "eye"},
		},
		PoolBreathing: {
			{Type: "box_breathing", Name: "Box Breathing", BaseDuration: 240, BaseReward: 20, Icon: "square"},
			{Type: "four_seven_eight", Name: "4-7-8 Breathing", BaseDuration: 180, BaseReward: 20, Icon: "wind"},
			{Type: "coherent_breathing", Name: "Coherent Breathing", BaseDuration: 300, BaseReward: 25, Icon: "activity"},
		},
		PoolGrounding: {
			{Type: "five_senses", Name: "5-4-3-2-1 Senses", BaseDuration: 180, BaseReward: 15, Icon: "hand"},
			{Type: "body_scan", Name: "Body Scan", BaseDuration: 300, BaseReward: 25, Icon: "user"},
			{Type: "feet_on_floor", Name: "Feet on the Floor", BaseDuration: 120, BaseReward: 10, Icon: "anchor"},
		},
		PoolCognitive: {
			{Type: "mental_math", Name: "Mental Math", BaseDuration: 120, BaseReward: 25, Icon: "plus"},
			{Type: "word_association", Name: "Word Association", BaseDuration: 90, BaseReward: 20, Icon: "message"},
			{Type: "visualization", Name: "Visualization", BaseDuration: 180, BaseReward: 30, Icon: "image"},
		},
		PoolReflection: {
			{Type: "gratitude_journal", Name: "Gratitude Journal", BaseDuration: 180, BaseReward: 20, Icon: "book"},
			{Type: "daily_intention", Name: "Daily Intention", BaseDuration: 120, BaseReward: 15, Icon: "compass"},
			{Type: "thought_labeling", Name: "Thought Labeling", BaseDuration: 150, BaseReward: 20, Icon: "tag"},
		},
		PoolMovement: {
			{Type: "mindful_walk", Name: "Mindful Walk", BaseDuration: 300, BaseReward: 30, Icon: "footprints"},
			{Type: "stretch_sequence", Name: "Stretch Sequence", BaseDuration: 240, BaseReward: 25, Icon: "move"},
			{Type: "posture_reset", Name: "Posture Reset", BaseDuration: 90, BaseReward: 10, Icon: "align"},
		},
	}
}

var defaultRegistry = mustRegistry(DefaultTemplates())

func mustRegistry(pools map[Pool][]ActivityTemplate) *Registry {
	r, err := NewRegistry(pools)
	if err != nil {
		panic(err)
	}
	return r
}

// DefaultRegistry returns the shared registry built from DefaultTemplates.
func DefaultRegistry() *Registry {
	return defaultRegistry
}
