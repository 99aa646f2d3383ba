package journey

// ActivityInstance is a template bound to a level. Instances are built fresh
// on every query; callers own them.
type ActivityInstance struct {
	ActivityTemplate
	ScaledDuration         int  `json:"scaledDuration"`
	ScaledReward           int  `json:"scaledReward"`
	DifficultyLevel        int  `json:"difficultyLevel"`
	RequiredForProgression bool `json:"requiredForProgression"`
	IsBonus                bool `json:"isBonus"`
	CompletedToday         bool `json:"completedToday,omitempty"`
}

// Rotate returns n indices into a pool of the given size, starting at
// start mod size and wrapping. A window longer than the pool repeats
// entries rather than reading past the end. It returns nil for an empty pool.
func Rotate(start, n, size int) []int {
	if size <= 0 || n <= 0 {
		return nil
	}
	first := PickIndex(start, size)
	out := make([]int, n)
	for i := range out {
		out[i] = (first + i) % size
	}
	return out
}

// PickIndex maps a rotation key onto a pool of the given size. It returns
// -1 for an empty pool.
func PickIndex(key, size int) int {
	if size <= 0 {
		return -1
	}
	return ((key % size) + size) % size
}

// bonusSlot is one rotating bonus pick: the pool it draws from and the key
// that selects the starting template.
type bonusSlot struct {
	pool Pool
	key  int
}

// selection is the tier-specific outcome before scaling.
type selection struct {
	mandatory []ActivityTemplate
	bonus     []bonusSlot
}

// selectTemplates applies the tier policy to level. It never allocates
// instances so the choice can be tested on its own.
func (e *Engine) selectTemplates(level int) selection {
	p := e.policy
	n := p.MandatoryCount(level)

	var sel selection
	switch p.TierFor(level) {
	case TierA:
		sel.mandatory = pick(e.registry.Union(PoolBeginner), 0, n)
		sel.bonus = []bonusSlot{
			{pool: PoolBreathing, key: level},
			{pool: PoolGrounding, key: level},
		}
	case TierB:
		sel.mandatory = pick(e.registry.Union(PoolBeginner, PoolIntermediate), level/p.WindowStride, n)
		sel.bonus = []bonusSlot{{pool: PoolCognitive, key: level / p.CognitiveStride}}
		if level%p.TierBReflectionEvery == 0 {
			sel.bonus = append(sel.bonus, bonusSlot{pool: PoolReflection, key: level / p.TierBReflectionEvery})
		}
	default:
		sel.mandatory = pick(e.registry.Union(PoolIntermediate, PoolAdvanced), level/p.WindowStride, n)
		sel.bonus = []bonusSlot{{pool: PoolCognitive, key: level / p.CognitiveStride}}
		if level%p.TierCReflectionEvery == 0 {
			sel.bonus = append(sel.bonus, bonusSlot{pool: PoolReflection, key: level / p.TierCReflectionEvery})
		}
	}
	return sel
}

func pick(pool []ActivityTemplate, start, n int) []ActivityTemplate {
	idx := Rotate(start, n, len(pool))
	out := make([]ActivityTemplate, len(idx))
	for i, j := range idx {
		out[i] = pool[j]
	}
	return out
}

// resolveBonus returns the template a bonus slot lands on, rolling forward
// past templates in done. ok is false when the pool is empty or exhausted.
func (e *Engine) resolveBonus(slot bonusSlot, done map[string]bool) (ActivityTemplate, bool) {
	pool := e.registry.pools[slot.pool]
	first := PickIndex(slot.key, len(pool))
	if first < 0 {
		return ActivityTemplate{}, false
	}
	for i := range pool {
		t := pool[(first+i)%len(pool)]
		if !done[t.Type] {
			return t, true
		}
	}
	return ActivityTemplate{}, false
}

func instance(t ActivityTemplate, level int, mandatory bool) ActivityInstance {
	return ActivityInstance{
		ActivityTemplate:       t,
		ScaledDuration:         ScaledDuration(t.BaseDuration, level, t.Kind),
		ScaledReward:           ScaledReward(t.BaseReward, level),
		DifficultyLevel:        DifficultyLevel(level),
		RequiredForProgression: mandatory,
		IsBonus:                !mandatory,
	}
}

// ActivitiesForLevel returns the ordered activity plan for level: mandatory
// challenges first, then bonus exercises. The result is identical for
// identical input.
func (e *Engine) ActivitiesForLevel(level int) ([]ActivityInstance, error) {
	return e.PlanForLevel(level, nil)
}

// PlanForLevel is ActivitiesForLevel with a set of activity types already
// completed today. Completed mandatory activities stay in the plan and are
// flagged; a completed bonus rolls forward to the next template in its pool
// and is dropped when every template there is done.
func (e *Engine) PlanForLevel(level int, completed []string) ([]ActivityInstance, error) {
	if err := checkLevel(level); err != nil {
		return nil, err
	}
	done := make(map[string]bool, len(completed))
	for _, c := range completed {
		done[c] = true
	}

	sel := e.selectTemplates(level)
	out := make([]ActivityInstance, 0, len(sel.mandatory)+len(sel.bonus))
	for _, t := range sel.mandatory {
		inst := instance(t, level, true)
		inst.CompletedToday = done[t.Type]
		out = append(out, inst)
	}
	for _, slot := range sel.bonus {
		if t, ok := e.resolveBonus(slot, done); ok {
			out = append(out, instance(t, level, false))
		}
	}
	return out, nil
}
