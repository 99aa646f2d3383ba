// Package mock drives demo players through the journey so the server and
// TUI have live traffic without real clients.
package mock

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stillpath/journey/internal/journey"
	"github.com/stillpath/journey/internal/progress"
)

// Player habits.
const (
	patternSteady     = "steady"     // mandatory first, then bonuses; strong test scores
	patternExplorer   = "explorer"   // bonuses first
	patternStruggling = "struggling" // mandatory only; fails tests now and then
)

type mockPlayer struct {
	id         string
	name       string
	pattern    string
	startLevel int
	minScore   int
	maxScore   int
}

type MockGenerator struct {
	tracker  *progress.Tracker
	interval time.Duration
	players  []*mockPlayer

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewGenerator(tracker *progress.Tracker, interval time.Duration) *MockGenerator {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &MockGenerator{
		tracker:  tracker,
		interval: interval,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start enrolls the demo players synchronously, then advances one of them
// on every tick until ctx is cancelled.
func (g *MockGenerator) Start(ctx context.Context) error {
	defs := []*mockPlayer{
		{name: "steady-sam", pattern: patternSteady, startLevel: 1, minScore: 75, maxScore: 98},
		{name: "explorer-eve", pattern: patternExplorer, startLevel: 3, minScore: 65, maxScore: 92},
		{name: "struggling-sol", pattern: patternStruggling, startLevel: 5, minScore: 45, maxScore: 85},
	}
	for _, mp := range defs {
		p, err := g.tracker.Enroll(ctx, mp.startLevel)
		if err != nil {
			return err
		}
		mp.id = p.UserID
		logrus.WithFields(logrus.Fields{"name": mp.name, "user_id": mp.id}).Info("mock player enrolled")
	}
	g.players = defs

	go g.run(ctx)
	return nil
}

// PlayerIDs returns the enrolled demo players' IDs.
func (g *MockGenerator) PlayerIDs() []string {
	ids := make([]string, len(g.players))
	for i, mp := range g.players {
		ids[i] = mp.id
	}
	return ids
}

func (g *MockGenerator) run(ctx context.Context) {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	tick := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			mp := g.players[tick%len(g.players)]
			tick++
			if _, err := g.step(ctx, mp); err != nil && ctx.Err() == nil {
				logrus.WithField("name", mp.name).Warnf("mock step failed: %v", err)
			}
		}
	}
}

// step performs one action for mp. It reports false when the player has
// nothing left to do today.
func (g *MockGenerator) step(ctx context.Context, mp *mockPlayer) (bool, error) {
	plan, err := g.tracker.Plan(ctx, mp.id)
	if err != nil {
		return false, err
	}

	if plan.Test != nil && !plan.Test.Completed && mandatoryDone(plan.Activities) {
		_, err := g.tracker.SubmitTest(ctx, mp.id, plan.Level, g.score(mp))
		return true, err
	}

	act, ok := g.choose(mp, plan.Activities)
	if !ok {
		return false, nil
	}
	_, err = g.tracker.CompleteActivity(ctx, mp.id, act.Type)
	if errors.Is(err, progress.ErrAlreadyCompleted) {
		return false, nil
	}
	return true, err
}

// choose picks the next open activity according to the player's habit.
func (g *MockGenerator) choose(mp *mockPlayer, acts []journey.ActivityInstance) (journey.ActivityInstance, bool) {
	var mandatory, bonus []journey.ActivityInstance
	for _, a := range acts {
		switch {
		case a.CompletedToday:
		case a.RequiredForProgression:
			mandatory = append(mandatory, a)
		default:
			bonus = append(bonus, a)
		}
	}

	var order [][]journey.ActivityInstance
	switch mp.pattern {
	case patternExplorer:
		order = [][]journey.ActivityInstance{bonus, mandatory}
	case patternStruggling:
		order = [][]journey.ActivityInstance{mandatory}
	default:
		order = [][]journey.ActivityInstance{mandatory, bonus}
	}
	for _, group := range order {
		if len(group) > 0 {
			return group[g.intn(len(group))], true
		}
	}
	return journey.ActivityInstance{}, false
}

func mandatoryDone(acts []journey.ActivityInstance) bool {
	for _, a := range acts {
		if a.RequiredForProgression && !a.CompletedToday {
			return false
		}
	}
	return true
}

func (g *MockGenerator) score(mp *mockPlayer) int {
	return mp.minScore + g.intn(mp.maxScore-mp.minScore+1)
}

func (g *MockGenerator) intn(n int) int {
	g.rngMu.Lock()
	defer g.rngMu.Unlock()
	return g.rng.Intn(n)
}

// FastClock returns a clock that starts at start and lets one calendar day
// pass every dayEvery of real time, so demo players get fresh daily plans.
func FastClock(start time.Time, dayEvery time.Duration) func() time.Time {
	origin := time.Now()
	scale := float64(24*time.Hour) / float64(dayEvery)
	return func() time.Time {
		elapsed := time.Since(origin)
		return start.Add(time.Duration(float64(elapsed) * scale))
	}
}
