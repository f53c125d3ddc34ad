// internal/engine/relaxation/tiers.go
package relaxation

import (
	"context"
	"strconv"

	"trip-recommender/internal/common/logger"
	"trip-recommender/internal/common/metrics"
	"trip-recommender/internal/engine/catalog"
	"trip-recommender/internal/engine/preferences"
	"trip-recommender/internal/engine/results"
	"trip-recommender/internal/engine/scoring"
)

// Tier numbers. Each tier widens exactly one hard constraint, narrowest
// first, and builds on the tiers before it so every tier's candidate set
// is a superset of all earlier ones.
const (
	TierDropMonth         = 1
	TierDropYear          = 2
	TierCountryToContinent = 3
	TierDropLocation      = 4
)

// tier mutates the criteria, returning false when the step would not
// change the query and can be skipped.
type tier struct {
	number int
	name   string
	apply  func(ctx context.Context, f *Fallback, q *catalog.Criteria, prefs *preferences.Preferences) (bool, error)
}

var tiers = []tier{
	{
		number: TierDropMonth,
		name:   "drop-month",
		apply: func(_ context.Context, _ *Fallback, q *catalog.Criteria, _ *preferences.Preferences) (bool, error) {
			if q.Month == 0 {
				return false, nil
			}
			q.Month = 0
			return true, nil
		},
	},
	{
		number: TierDropYear,
		name:   "drop-year",
		apply: func(_ context.Context, _ *Fallback, q *catalog.Criteria, _ *preferences.Preferences) (bool, error) {
			if q.Year == 0 {
				return false, nil
			}
			q.Year = 0
			return true, nil
		},
	},
	{
		number: TierCountryToContinent,
		name:   "country-to-continent",
		apply: func(ctx context.Context, f *Fallback, q *catalog.Criteria, _ *preferences.Preferences) (bool, error) {
			if len(q.CountryIDs) == 0 {
				return false, nil
			}
			continents, err := f.store.ContinentsForCountries(ctx, q.CountryIDs)
			if err != nil {
				return false, err
			}
			q.CountryIDs = nil
			q.Continents = mergeContinents(q.Continents, continents)
			return true, nil
		},
	},
	{
		number: TierDropLocation,
		name:   "drop-location",
		apply: func(_ context.Context, _ *Fallback, q *catalog.Criteria, _ *preferences.Preferences) (bool, error) {
			if !q.HasLocation() {
				return false, nil
			}
			q.CountryIDs = nil
			q.Continents = nil
			return true, nil
		},
	},
}

// Fallback re-queries the catalog with progressively loosened constraints
// when the primary result set is too thin.
type Fallback struct {
	store        catalog.Store
	scorer       *scoring.Engine
	minViable    int
	midThreshold float64
	logger       logger.Logger
}

func NewFallback(store catalog.Store, scorer *scoring.Engine, minViable int, midThreshold float64, log logger.Logger) *Fallback {
	return &Fallback{
		store:        store,
		scorer:       scorer,
		minViable:    minViable,
		midThreshold: midThreshold,
		logger:       log.WithFields(map[string]interface{}{"component": "relaxed-search"}),
	}
}

// Needed reports whether the fallback should run for the given primary
// result set.
func (f *Fallback) Needed(primary []results.ScoredResult) bool {
	return f.countViable(primary) < f.minViable
}

// Run walks the tiers in order, querying new candidates only (already seen
// ids are excluded), until enough viable results exist or the tiers are
// exhausted. Termination is guaranteed: the tier list is finite and each
// step strictly widens the query.
func (f *Fallback) Run(ctx context.Context, prefs *preferences.Preferences, primary []results.ScoredResult) ([]results.ScoredResult, error) {
	seen := make(map[int64]bool, len(primary))
	for _, r := range primary {
		seen[r.Candidate.ID] = true
	}

	viable := f.countViable(primary)
	criteria := catalog.CriteriaFromPreferences(prefs).Clone()

	var relaxed []results.ScoredResult
	for _, t := range tiers {
		if viable >= f.minViable {
			break
		}

		applied, err := t.apply(ctx, f, &criteria, prefs)
		if err != nil {
			return nil, err
		}
		if !applied {
			continue
		}

		metrics.RelaxationTriggered.WithLabelValues(strconv.Itoa(t.number)).Inc()

		candidates, err := f.store.Search(ctx, criteria)
		if err != nil {
			return nil, err
		}

		added := 0
		for _, cand := range candidates {
			if seen[cand.ID] {
				continue
			}
			seen[cand.ID] = true

			score, details := f.scorer.Score(cand, prefs)
			relaxed = append(relaxed, results.ScoredResult{
				Candidate:    cand,
				MatchScore:   score,
				MatchDetails: details,
				IsRelaxed:    true,
				Tier:         t.number,
			})
			added++
			if score >= f.midThreshold {
				viable++
			}
		}

		f.logger.Info("relaxation tier complete", map[string]interface{}{
			"tier":   t.number,
			"name":   t.name,
			"added":  added,
			"viable": viable,
		})
	}

	return relaxed, nil
}

func (f *Fallback) countViable(scored []results.ScoredResult) int {
	viable := 0
	for _, r := range scored {
		if r.MatchScore >= f.midThreshold {
			viable++
		}
	}
	return viable
}

func mergeContinents(existing, resolved []string) []string {
	seen := make(map[string]bool, len(existing)+len(resolved))
	out := []string{}
	for _, c := range existing {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	for _, c := range resolved {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}
