// internal/engine/scoring/scorer.go
package scoring

import (
	"fmt"

	"trip-recommender/internal/engine/catalog"
	"trip-recommender/internal/engine/preferences"
)

// unsetBaseline is the credit fraction an unset soft preference earns.
// An unset preference must not inflate every score as much as an exact
// match on a set preference would.
const unsetBaseline = 0.5

// reasonThreshold is the fraction of a factor's weight its credit must
// reach before a match reason is emitted for it.
const reasonThreshold = 0.5

// Engine computes match scores. It is a pure function of
// (candidate, preferences) and safe for concurrent use.
type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// Score returns the 0-100 match score and the match-reason strings for a
// candidate. Reasons follow a fixed factor order: type, themes, budget,
// duration, difficulty.
func (e *Engine) Score(cand catalog.Candidate, prefs *preferences.Preferences) (float64, []string) {
	reasons := []string{}
	total := 0.0

	add := func(credit float64, weight float64, reason string) {
		total += credit
		if reason != "" && credit >= weight*reasonThreshold {
			reasons = append(reasons, reason)
		}
	}

	add(e.typeCredit(cand, prefs))
	add(e.themeCredit(cand, prefs))
	add(e.budgetCredit(cand, prefs))
	add(e.durationCredit(cand, prefs))
	add(e.difficultyCredit(cand, prefs))

	return clamp(total), reasons
}

func (e *Engine) typeCredit(cand catalog.Candidate, prefs *preferences.Preferences) (float64, float64, string) {
	w := e.cfg.Weights.Type
	if prefs.TripTypeID == 0 {
		return w * unsetBaseline, w, ""
	}
	if cand.TripTypeID == prefs.TripTypeID {
		return w, w, "Matches your preferred trip style"
	}
	return 0, w, ""
}

func (e *Engine) themeCredit(cand catalog.Candidate, prefs *preferences.Preferences) (float64, float64, string) {
	w := e.cfg.Weights.Theme
	if len(prefs.ThemeIDs) == 0 {
		return w * unsetBaseline, w, ""
	}

	candThemes := make(map[int64]bool, len(cand.ThemeIDs))
	for _, id := range cand.ThemeIDs {
		candThemes[id] = true
	}

	matched := 0
	for _, id := range prefs.ThemeIDs {
		if candThemes[id] {
			matched++
		}
	}
	if matched == 0 {
		return 0, w, ""
	}

	// Each matching theme earns an equal share of the theme allotment,
	// capped at full credit once every preferred theme matches.
	credit := w * float64(matched) / float64(len(prefs.ThemeIDs))
	reason := fmt.Sprintf("Matches %d of your preferred themes", matched)
	if matched == len(prefs.ThemeIDs) {
		reason = "Matches all your preferred themes"
	}
	return credit, w, reason
}

func (e *Engine) budgetCredit(cand catalog.Candidate, prefs *preferences.Preferences) (float64, float64, string) {
	w := e.cfg.Weights.Budget
	if prefs.Budget == 0 {
		return w * unsetBaseline, w, ""
	}
	if cand.Price <= prefs.Budget {
		return w, w, "Within your budget"
	}

	// Linear decay over the tolerance band, zero beyond it.
	over := (cand.Price - prefs.Budget) / prefs.Budget
	if over >= e.cfg.BudgetTolerance {
		return 0, w, ""
	}
	credit := w * (1 - over/e.cfg.BudgetTolerance)
	return credit, w, "Slightly above your budget"
}

func (e *Engine) durationCredit(cand catalog.Candidate, prefs *preferences.Preferences) (float64, float64, string) {
	w := e.cfg.Weights.Duration
	if cand.DurationDays >= prefs.MinDuration && cand.DurationDays <= prefs.MaxDuration {
		return w, w, "Fits your duration range"
	}

	var distance int
	if cand.DurationDays < prefs.MinDuration {
		distance = prefs.MinDuration - cand.DurationDays
	} else {
		distance = cand.DurationDays - prefs.MaxDuration
	}
	if distance >= e.cfg.DurationTolerance {
		return 0, w, ""
	}
	credit := w * (1 - float64(distance)/float64(e.cfg.DurationTolerance))
	return credit, w, "Close to your duration range"
}

func (e *Engine) difficultyCredit(cand catalog.Candidate, prefs *preferences.Preferences) (float64, float64, string) {
	w := e.cfg.Weights.Difficulty
	if prefs.Difficulty == 0 {
		return w, w, ""
	}
	diff := cand.Difficulty - prefs.Difficulty
	if diff < 0 {
		diff = -diff
	}
	switch diff {
	case 0:
		return w, w, "Matches your difficulty level"
	case 1:
		return w * 0.5, w, "Close to your difficulty level"
	default:
		return w * 0.2, w, ""
	}
}

func clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
