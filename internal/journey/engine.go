// Package journey is the progression and activity scheduling engine.
//
// Given a level number it derives the XP cost curve, the realm the level
// belongs to, the training activities assigned to it and, every tenth
// level, the mastery test gating further progress. Every function is a pure
// mapping of its arguments: the engine holds no mutable state, performs no
// I/O and never logs, so an Engine may be shared by any number of
// goroutines and results may be memoised by level.
package journey

import "fmt"

// JourneyLevel is everything a presentation layer needs for one level.
type JourneyLevel struct {
	Level           int                `json:"level"`
	RealmID         int                `json:"realmId"`
	RealmName       string             `json:"realmName"`
	Activities      []ActivityInstance `json:"activities"`
	DifficultyLevel int                `json:"difficultyLevel"`
	XPRequired      int64              `json:"xpRequired"`
	TotalXPToReach  int64              `json:"totalXpToReach"`
	IsUnlocked      bool               `json:"isUnlocked"`
	Test            *Test              `json:"test,omitempty"`
}

// Engine composes the static catalogs into per-level plans.
type Engine struct {
	realms   *RealmCatalog
	registry *Registry
	policy   Policy
	curve    XPCurve
}

// Option configures an Engine.
type Option func(*Engine)

// WithRealms replaces the default realm catalog.
func WithRealms(c *RealmCatalog) Option {
	return func(e *Engine) { e.realms = c }
}

// WithRegistry replaces the default template registry.
func WithRegistry(r *Registry) Option {
	return func(e *Engine) { e.registry = r }
}

// WithPolicy replaces the default selector policy.
func WithPolicy(p Policy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithXPCurve replaces the default XP curve.
func WithXPCurve(c XPCurve) Option {
	return func(e *Engine) { e.curve = c }
}

// New returns an Engine over the default catalogs, modified by opts.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		realms:   DefaultRealmCatalog(),
		registry: DefaultRegistry(),
		policy:   DefaultPolicy(),
		curve:    DefaultXPCurve(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.realms == nil || e.registry == nil {
		return nil, fmt.Errorf("journey: nil catalog")
	}
	if err := e.policy.Validate(); err != nil {
		return nil, err
	}
	if err := e.curve.Validate(); err != nil {
		return nil, err
	}
	for _, p := range []Pool{PoolBeginner, PoolIntermediate, PoolAdvanced} {
		if len(e.registry.pools[p]) == 0 {
			return nil, fmt.Errorf("journey: %s pool is empty", p)
		}
	}
	return e, nil
}

// MustNew is New that panics on error. It is meant for the default catalogs.
func MustNew(opts ...Option) *Engine {
	e, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return e
}

// Realms returns the realm catalog.
func (e *Engine) Realms() *RealmCatalog { return e.realms }

// Registry returns the template registry.
func (e *Engine) Registry() *Registry { return e.registry }

// Policy returns the selector policy.
func (e *Engine) Policy() Policy { return e.policy }

// Curve returns the XP curve.
func (e *Engine) Curve() XPCurve { return e.curve }

// RealmForLevel resolves the realm of level; see RealmCatalog.ForLevel.
func (e *Engine) RealmForLevel(level int) Realm {
	return e.realms.ForLevel(level)
}

// XPRequiredForLevel returns the XP cost of level on the engine's curve.
func (e *Engine) XPRequiredForLevel(level int) (int64, error) {
	return e.curve.XPRequiredForLevel(level)
}

// TotalXPToLevel returns the cumulative XP to reach level on the engine's curve.
func (e *Engine) TotalXPToLevel(level int) (int64, error) {
	return e.curve.TotalXPToLevel(level)
}

// JourneyLevel composes the record for level as seen by a player at
// currentLevel. Only IsUnlocked depends on currentLevel.
func (e *Engine) JourneyLevel(level, currentLevel int) (JourneyLevel, error) {
	return e.JourneyLevelWithPlan(level, currentLevel, nil)
}

// JourneyLevelWithPlan is JourneyLevel with the activities completed today
// applied to the plan (see PlanForLevel). The test is still derived from the
// same plan.
func (e *Engine) JourneyLevelWithPlan(level, currentLevel int, completed []string) (JourneyLevel, error) {
	if err := checkLevel(level); err != nil {
		return JourneyLevel{}, err
	}
	if err := checkLevel(currentLevel); err != nil {
		return JourneyLevel{}, err
	}
	acts, err := e.PlanForLevel(level, completed)
	if err != nil {
		return JourneyLevel{}, err
	}
	cost, err := e.curve.XPRequiredForLevel(level)
	if err != nil {
		return JourneyLevel{}, err
	}
	total, err := e.curve.TotalXPToLevel(level)
	if err != nil {
		return JourneyLevel{}, err
	}
	realm := e.realms.ForLevel(level)
	return JourneyLevel{
		Level:           level,
		RealmID:         realm.ID,
		RealmName:       realm.Name,
		Activities:      acts,
		DifficultyLevel: DifficultyLevel(level),
		XPRequired:      cost,
		TotalXPToReach:  total,
		IsUnlocked:      level <= currentLevel,
		Test:            e.testFrom(level, acts),
	}, nil
}

// MaxPathSpan is the most levels one Path call returns.
const MaxPathSpan = 1000

// Path returns the journey levels from through to, inclusive. Ranges longer
// than MaxPathSpan are rejected with ErrInvalidLevel.
func (e *Engine) Path(from, to, currentLevel int) ([]JourneyLevel, error) {
	if err := checkLevel(from); err != nil {
		return nil, err
	}
	if err := checkLevel(to); err != nil {
		return nil, err
	}
	if to < from {
		return nil, fmt.Errorf("%w: range %d-%d is inverted", ErrInvalidLevel, from, to)
	}
	if to-from >= MaxPathSpan {
		return nil, fmt.Errorf("%w: range %d-%d exceeds %d levels", ErrInvalidLevel, from, to, MaxPathSpan)
	}
	out := make([]JourneyLevel, 0, to-from+1)
	for level := from; level <= to; level++ {
		jl, err := e.JourneyLevel(level, currentLevel)
		if err != nil {
			return nil, err
		}
		out = append(out, jl)
	}
	return out, nil
}
