package progress

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/stillpath/journey/internal/journey"
)

// Callback receives a copy of the progress after every change.
type Callback func(p *Progress)

// ActivityResult describes a recorded activity completion.
type ActivityResult struct {
	Progress     *Progress                `json:"progress"`
	Activity     journey.ActivityInstance `json:"activity"`
	XPAwarded    int64                    `json:"xpAwarded"`
	LevelsGained int                      `json:"levelsGained"`
}

// TestResult describes a graded mastery test submission.
type TestResult struct {
	Progress     *Progress     `json:"progress"`
	Test         *journey.Test `json:"test"`
	Score        int           `json:"score"`
	Passed       bool          `json:"passed"`
	XPAwarded    int64         `json:"xpAwarded"`
	LevelsGained int           `json:"levelsGained"`
}

// Tracker applies completions and test results to stored progress. It
// serialises read-modify-write cycles so one process never loses an update.
type Tracker struct {
	engine *journey.Engine
	store  Store
	mu     sync.Mutex
	now    func() time.Time

	onProgress Callback
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock replaces time.Now. Calendar days are taken in the clock's
// location.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// NewTracker creates a tracker that composes plans with engine and persists
// progress in store.
func NewTracker(engine *journey.Engine, store Store, opts ...Option) *Tracker {
	t := &Tracker{engine: engine, store: store, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// OnProgress registers a callback invoked after every saved change.
// Must be called before the tracker is used.
func (t *Tracker) OnProgress(cb Callback) {
	t.onProgress = cb
}

func (t *Tracker) today() string {
	return t.now().Format(dayLayout)
}

// Enroll creates progress for a new player seeded by a baseline assessment
// result. The player starts with exactly the XP needed to reach startLevel.
func (t *Tracker) Enroll(ctx context.Context, startLevel int) (*Progress, error) {
	if startLevel < MinStartLevel || startLevel > MaxStartLevel {
		return nil, fmt.Errorf("%w: %d (want %d-%d)", ErrInvalidBaseline, startLevel, MinStartLevel, MaxStartLevel)
	}
	xp, err := t.engine.TotalXPToLevel(startLevel)
	if err != nil {
		return nil, err
	}
	now := t.now().UTC()
	p := &Progress{
		UserID:         uuid.NewString(),
		StartLevel:     startLevel,
		Level:          startLevel,
		XP:             xp,
		CompletedToday: []string{},
		PassedTests:    []int{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := t.store.Save(ctx, p); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"user_id": p.UserID,
		"level":   startLevel,
	}).Info("player enrolled")

	cp := p.clone()
	t.notify(cp)
	return cp, nil
}

// Get returns the player's progress as of today. Completions from earlier
// days are not reported.
func (t *Tracker) Get(ctx context.Context, userID string) (*Progress, error) {
	p, err := t.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	p.rollDay(t.today())
	return p.clone(), nil
}

// Plan returns the player's current level with today's completions applied.
// The test, if any, is marked completed once passed.
func (t *Tracker) Plan(ctx context.Context, userID string) (journey.JourneyLevel, error) {
	p, err := t.Get(ctx, userID)
	if err != nil {
		return journey.JourneyLevel{}, err
	}
	jl, err := t.engine.JourneyLevelWithPlan(p.Level, p.Level, p.CompletedToday)
	if err != nil {
		return journey.JourneyLevel{}, err
	}
	if jl.Test != nil {
		jl.Test.Completed = p.HasPassed(p.Level)
	}
	return jl, nil
}

// CompleteActivity records that the player finished an activity from
// today's plan and awards its scaled reward.
func (t *Tracker) CompleteActivity(ctx context.Context, userID, activityType string) (*ActivityResult, error) {
	t.mu.Lock()
	p, err := t.store.Load(ctx, userID)
	if err != nil {
		t.mu.Unlock()
		return nil, err
	}
	day := t.today()
	p.rollDay(day)
	if p.completed(activityType) {
		t.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrAlreadyCompleted, activityType)
	}

	plan, err := t.engine.PlanForLevel(p.Level, p.CompletedToday)
	if err != nil {
		t.mu.Unlock()
		return nil, err
	}
	idx := slices.IndexFunc(plan, func(a journey.ActivityInstance) bool { return a.Type == activityType })
	if idx < 0 {
		t.mu.Unlock()
		return nil, fmt.Errorf("%w: %s at level %d", ErrUnknownActivity, activityType, p.Level)
	}
	act := plan[idx]
	act.CompletedToday = true

	p.CompletedToday = append(p.CompletedToday, activityType)
	p.touchDay(day)
	awarded := int64(act.ScaledReward)
	p.XP = addXP(p.XP, awarded)
	gained := t.advance(p)
	p.UpdatedAt = t.now().UTC()

	if err := t.store.Save(ctx, p); err != nil {
		t.mu.Unlock()
		return nil, err
	}
	cp := p.clone()
	t.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"user_id":  userID,
		"activity": activityType,
		"xp":       awarded,
		"level":    cp.Level,
		"gained":   gained,
	}).Info("activity completed")

	t.notify(cp)
	return &ActivityResult{Progress: cp, Activity: act, XPAwarded: awarded, LevelsGained: gained}, nil
}

// SubmitTest grades a mastery test score. A passing score records the test,
// awards its XP once and lifts the gate on further levels. A failing score
// changes nothing.
func (t *Tracker) SubmitTest(ctx context.Context, userID string, level, score int) (*TestResult, error) {
	if score < 0 || score > 100 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidScore, score)
	}
	test, err := t.engine.TestForLevel(level)
	if err != nil {
		return nil, err
	}
	if test == nil {
		return nil, fmt.Errorf("%w: level %d", ErrNoTest, level)
	}

	t.mu.Lock()
	p, err := t.store.Load(ctx, userID)
	if err != nil {
		t.mu.Unlock()
		return nil, err
	}
	if level > p.Level {
		t.mu.Unlock()
		return nil, fmt.Errorf("%w: level %d (current %d)", ErrLevelLocked, level, p.Level)
	}
	if p.HasPassed(level) {
		t.mu.Unlock()
		return nil, fmt.Errorf("%w: level %d test", ErrAlreadyCompleted, level)
	}

	res := &TestResult{Test: test, Score: score, Passed: test.Passed(score)}
	if !res.Passed {
		p.rollDay(t.today())
		res.Progress = p.clone()
		t.mu.Unlock()
		logrus.WithFields(logrus.Fields{"user_id": userID, "level": level, "score": score}).Info("mastery test failed")
		return res, nil
	}

	day := t.today()
	p.rollDay(day)
	p.touchDay(day)
	p.PassedTests = append(p.PassedTests, level)
	slices.Sort(p.PassedTests)
	res.XPAwarded = int64(test.XPReward)
	p.XP = addXP(p.XP, res.XPAwarded)
	res.LevelsGained = t.advance(p)
	p.UpdatedAt = t.now().UTC()
	test.Completed = true

	if err := t.store.Save(ctx, p); err != nil {
		t.mu.Unlock()
		return nil, err
	}
	res.Progress = p.clone()
	t.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"user_id": userID,
		"level":   level,
		"score":   score,
		"xp":      res.XPAwarded,
	}).Info("mastery test passed")

	t.notify(res.Progress)
	return res, nil
}

// Remove deletes the player's progress.
func (t *Tracker) Remove(ctx context.Context, userID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.Delete(ctx, userID)
}

// advance raises the level while the XP total covers the next level, never
// leaving a milestone level whose test is still unpassed nor passing the
// last catalogued level. It returns the number of levels gained.
func (t *Tracker) advance(p *Progress) int {
	maxLevel := t.engine.Realms().MaxLevel()
	policy := t.engine.Policy()
	gained := 0
	for p.Level < maxLevel {
		if policy.IsMilestone(p.Level) && !p.HasPassed(p.Level) {
			break
		}
		next, err := t.engine.TotalXPToLevel(p.Level + 1)
		if err != nil || p.XP < next {
			break
		}
		p.Level++
		gained++
	}
	return gained
}

func (t *Tracker) notify(p *Progress) {
	if t.onProgress != nil {
		t.onProgress(p.clone())
	}
}

func addXP(a, b int64) int64 {
	if b > 0 && a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}
