package ws

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/stillpath/journey/internal/journey"
	"github.com/stillpath/journey/internal/progress"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"wsClients": s.broadcaster.ClientCount(),
	})
}

func (s *Server) handleRealms(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Realms().All())
}

func (s *Server) handleTemplates(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Registry().All())
}

type policyResponse struct {
	Policy   journey.Policy  `json:"policy"`
	XPCurve  journey.XPCurve `json:"xpCurve"`
	MaxLevel int             `json:"maxLevel"`
}

func (s *Server) handlePolicy(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, policyResponse{
		Policy:   s.engine.Policy(),
		XPCurve:  s.engine.Curve(),
		MaxLevel: s.engine.Realms().MaxLevel(),
	})
}

// parseLevel reads a level from a path or query value. Anything that is not
// a positive integer is an invalid level.
func parseLevel(raw, what string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %s %q", journey.ErrInvalidLevel, what, raw)
	}
	return n, nil
}

// queryLevel is parseLevel for an optional query parameter.
func queryLevel(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return parseLevel(raw, name)
}

func pathLevel(r *http.Request) (int, error) {
	return parseLevel(chi.URLParam(r, "level"), "level")
}

// journeyLevel serves levels inside the catalog from the memo. Only
// IsUnlocked depends on current, so it is applied to the cached value.
func (s *Server) journeyLevel(level, current int) (journey.JourneyLevel, error) {
	if current < 1 {
		return journey.JourneyLevel{}, fmt.Errorf("%w: current level %d", journey.ErrInvalidLevel, current)
	}
	if !s.engine.Realms().Contains(level) {
		return s.engine.JourneyLevel(level, current)
	}

	key := strconv.Itoa(level)
	if v, ok := s.levels.Get(key); ok {
		s.metrics.CacheHit()
		jl := v.(journey.JourneyLevel)
		jl.IsUnlocked = level <= current
		return jl, nil
	}
	s.metrics.CacheMiss()
	jl, err := s.engine.JourneyLevel(level, level)
	if err != nil {
		return journey.JourneyLevel{}, err
	}
	s.levels.SetDefault(key, jl)
	jl.IsUnlocked = level <= current
	return jl, nil
}

func (s *Server) handleLevel(w http.ResponseWriter, r *http.Request) {
	level, err := pathLevel(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	current, err := queryLevel(r, "current", 1)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	jl, err := s.journeyLevel(level, current)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jl)
}

// handleActivities returns the level's plan. A comma-separated ?completed=
// list applies the exclusion set.
func (s *Server) handleActivities(w http.ResponseWriter, r *http.Request) {
	level, err := pathLevel(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var completed []string
	if raw := r.URL.Query().Get("completed"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				completed = append(completed, t)
			}
		}
	}
	acts, err := s.engine.PlanForLevel(level, completed)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, acts)
}

func (s *Server) handleTest(w http.ResponseWriter, r *http.Request) {
	level, err := pathLevel(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	test, err := s.engine.TestForLevel(level)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if test == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, test)
}

type levelXPResponse struct {
	Level           int   `json:"level"`
	XPRequired      int64 `json:"xpRequired"`
	TotalXPToReach  int64 `json:"totalXpToReach"`
	DifficultyLevel int   `json:"difficultyLevel"`
}

func (s *Server) handleLevelXP(w http.ResponseWriter, r *http.Request) {
	level, err := pathLevel(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cost, err := s.engine.XPRequiredForLevel(level)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	total, err := s.engine.TotalXPToLevel(level)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, levelXPResponse{
		Level:           level,
		XPRequired:      cost,
		TotalXPToReach:  total,
		DifficultyLevel: journey.DifficultyLevel(level),
	})
}

// handleXPProgress places a cumulative XP total on the curve.
func (s *Server) handleXPProgress(w http.ResponseWriter, r *http.Request) {
	total, err := strconv.ParseInt(r.URL.Query().Get("total"), 10, 64)
	if err != nil || total < 0 {
		s.writeError(w, r, fmt.Errorf("%w: total must be a non-negative integer", errBadRequest))
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Curve().Progress(total))
}

func (s *Server) handleJourney(w http.ResponseWriter, r *http.Request) {
	current, err := queryLevel(r, "current", 1)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	from, err := queryLevel(r, "from", 1)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	to, err := queryLevel(r, "to", from+s.maxPathLevels-1)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if to < from {
		s.writeError(w, r, fmt.Errorf("%w: range %d-%d is inverted", journey.ErrInvalidLevel, from, to))
		return
	}
	if to-from+1 > s.maxPathLevels {
		s.writeError(w, r, fmt.Errorf("%w: at most %d levels per request", errBadRequest, s.maxPathLevels))
		return
	}

	out := make([]journey.JourneyLevel, 0, to-from+1)
	for level := from; level <= to; level++ {
		jl, err := s.journeyLevel(level, current)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		out = append(out, jl)
	}
	writeJSON(w, http.StatusOK, out)
}

type enrollRequest struct {
	StartLevel int `json:"startLevel"`
}

func (s *Server) handleEnroll(w http.ResponseWriter, r *http.Request) {
	var req enrollRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.tracker.Enroll(r.Context(), req.StartLevel)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.metrics.Enrollments.Inc()
	writeJSON(w, http.StatusCreated, p)
}

type progressResponse struct {
	*progress.Progress
	Standing journey.LevelProgress `json:"standing"`
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	p, err := s.tracker.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, progressResponse{Progress: p, Standing: s.standing(p)})
}

// standing reports how far the player is into their current level.
func (s *Server) standing(p *progress.Progress) journey.LevelProgress {
	return s.engine.Curve().ProgressAt(p.Level, p.XP)
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	jl, err := s.tracker.Plan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jl)
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.tracker.Remove(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.broadcaster.Forget(id)
	w.WriteHeader(http.StatusNoContent)
}

type completeRequest struct {
	Type string `json:"type"`
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Type == "" {
		s.writeError(w, r, fmt.Errorf("%w: type is required", errBadRequest))
		return
	}
	res, err := s.tracker.CompleteActivity(r.Context(), chi.URLParam(r, "id"), req.Type)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	role := "mandatory"
	if res.Activity.IsBonus {
		role = "bonus"
	}
	s.metrics.Completions.WithLabelValues(string(res.Activity.Kind), role).Inc()
	s.announceLevelUp(res.Progress, res.LevelsGained)
	writeJSON(w, http.StatusOK, res)
}

type submitTestRequest struct {
	Level int `json:"level"`
	Score int `json:"score"`
}

func (s *Server) handleSubmitTest(w http.ResponseWriter, r *http.Request) {
	var req submitTestRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	res, err := s.tracker.SubmitTest(r.Context(), id, req.Level, req.Score)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	outcome := "fail"
	if res.Passed {
		outcome = "pass"
	}
	s.metrics.TestSubmissions.WithLabelValues(outcome).Inc()
	s.broadcaster.QueueTestResult(TestResultPayload{
		UserID:    id,
		Level:     req.Level,
		Score:     req.Score,
		Passed:    res.Passed,
		XPAwarded: res.XPAwarded,
	})
	s.announceLevelUp(res.Progress, res.LevelsGained)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) announceLevelUp(p *progress.Progress, gained int) {
	if gained <= 0 {
		return
	}
	s.metrics.LevelUps.Add(float64(gained))
	realm := s.engine.RealmForLevel(p.Level)
	s.broadcaster.QueueLevelUp(p.UserID, p.Level-gained, p.Level, realm.Name)
}
