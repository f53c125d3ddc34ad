// internal/measure/aggregate/aggregator.go
package aggregate

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"trip-recommender/internal/common/errors"
	"trip-recommender/internal/common/logger"
	"trip-recommender/internal/engine/preferences"
	"trip-recommender/internal/measure/requestlog"
)

// Report is the rolled-up view of a log window.
type Report struct {
	From              time.Time    `json:"from"`
	To                time.Time    `json:"to"`
	RequestCount      int          `json:"request_count"`
	LatencyP50Ms      float64      `json:"latency_p50_ms"`
	LatencyP95Ms      float64      `json:"latency_p95_ms"`
	LatencyP99Ms      float64      `json:"latency_p99_ms"`
	RelaxedRate       float64      `json:"relaxed_rate"`
	NoResultsRate     float64      `json:"no_results_rate"`
	AverageTopScore   float64      `json:"average_top_score"`
	TopCombinations   []ComboCount `json:"top_combinations"`
}

// ComboCount is one preference combination and its request count.
type ComboCount struct {
	Combination string `json:"combination"`
	Count       int    `json:"count"`
}

// Aggregator is a pure read-side component: all state lives in the
// persisted logs, so it is safe to run concurrently with live traffic.
type Aggregator struct {
	store  requestlog.Store
	logger logger.Logger
}

func NewAggregator(store requestlog.Store, log logger.Logger) *Aggregator {
	return &Aggregator{
		store:  store,
		logger: log.WithFields(map[string]interface{}{"component": "metrics-aggregator"}),
	}
}

const maxCombinations = 10

// Aggregate computes the window report from the stored request logs.
func (a *Aggregator) Aggregate(ctx context.Context, from, to time.Time) (*Report, error) {
	records, err := a.store.ListByWindow(ctx, from, to)
	if err != nil {
		return nil, errors.NewLogQueryFailedError(err)
	}

	report := &Report{From: from, To: to, RequestCount: len(records), TopCombinations: []ComboCount{}}
	if len(records) == 0 {
		return report, nil
	}

	latencies := make([]float64, 0, len(records))
	combos := make(map[string]int)
	relaxedCount := 0
	noResultsCount := 0
	topScoreSum := 0.0
	scoredCount := 0

	for _, rec := range records {
		latencies = append(latencies, float64(rec.LatencyMs))

		if rec.RelaxedCount > 0 {
			relaxedCount++
		}
		if rec.Outcome == requestlog.OutcomeEmpty {
			noResultsCount++
		}
		if rec.Outcome != requestlog.OutcomeError {
			topScoreSum += rec.TopScore
			scoredCount++
		}

		if key := comboKey(rec.Preferences); key != "" {
			combos[key]++
		}
	}

	sort.Float64s(latencies)
	report.LatencyP50Ms = percentile(latencies, 50)
	report.LatencyP95Ms = percentile(latencies, 95)
	report.LatencyP99Ms = percentile(latencies, 99)
	report.RelaxedRate = float64(relaxedCount) / float64(len(records))
	report.NoResultsRate = float64(noResultsCount) / float64(len(records))
	if scoredCount > 0 {
		report.AverageTopScore = topScoreSum / float64(scoredCount)
	}
	report.TopCombinations = rankCombos(combos)

	a.logger.Info("window aggregated", map[string]interface{}{
		"from":     from,
		"to":       to,
		"requests": report.RequestCount,
	})

	return report, nil
}

// percentile uses nearest-rank on a sorted slice.
func percentile(sorted []float64, p int) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := (p*len(sorted) + 99) / 100
	if rank < 1 {
		rank = 1
	}
	if rank > len(sorted) {
		rank = len(sorted)
	}
	return sorted[rank-1]
}

// comboKey reduces serialized preferences to a stable combination label.
func comboKey(serialized string) string {
	if serialized == "" {
		return ""
	}

	var prefs preferences.Preferences
	if err := json.Unmarshal([]byte(serialized), &prefs); err != nil {
		return ""
	}

	parts := []string{}
	if prefs.TripTypeID != 0 {
		parts = append(parts, fmt.Sprintf("type=%d", prefs.TripTypeID))
	}
	if len(prefs.ThemeIDs) > 0 {
		themes := make([]string, len(prefs.ThemeIDs))
		for i, id := range prefs.ThemeIDs {
			themes[i] = fmt.Sprintf("%d", id)
		}
		parts = append(parts, "themes="+strings.Join(themes, ","))
	}
	if len(prefs.CountryIDs) > 0 {
		countries := make([]string, len(prefs.CountryIDs))
		for i, id := range prefs.CountryIDs {
			countries[i] = fmt.Sprintf("%d", id)
		}
		parts = append(parts, "countries="+strings.Join(countries, ","))
	}
	if len(prefs.Continents) > 0 {
		parts = append(parts, "continents="+strings.Join(prefs.Continents, ","))
	}
	if prefs.Budget > 0 {
		parts = append(parts, fmt.Sprintf("budget=%.0f", prefs.Budget))
	}
	if prefs.Difficulty != 0 {
		parts = append(parts, fmt.Sprintf("difficulty=%d", prefs.Difficulty))
	}
	if len(parts) == 0 {
		return "unconstrained"
	}
	return strings.Join(parts, "|")
}

// rankCombos orders combinations by count descending, then label, and
// keeps the top slice.
func rankCombos(combos map[string]int) []ComboCount {
	ranked := make([]ComboCount, 0, len(combos))
	for combo, count := range combos {
		ranked = append(ranked, ComboCount{Combination: combo, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Combination < ranked[j].Combination
	})
	if len(ranked) > maxCombinations {
		ranked = ranked[:maxCombinations]
	}
	return ranked
}
