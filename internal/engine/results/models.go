// internal/engine/results/models.go
package results

import "trip-recommender/internal/engine/catalog"

// Score bands.
const (
	BandHigh = "high"
	BandMid  = "mid"
	BandLow  = "low"
)

// Thresholds holds the two score cut points partitioning results into
// high/mid/low bands. Configuration, not derived from data.
type Thresholds struct {
	High float64 `json:"high"`
	Mid  float64 `json:"mid"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{High: 70, Mid: 50}
}

// Band classifies a score against the thresholds.
func (t Thresholds) Band(score float64) string {
	switch {
	case score >= t.High:
		return BandHigh
	case score >= t.Mid:
		return BandMid
	default:
		return BandLow
	}
}

// ScoredResult is one scored candidate. Tier 0 means the primary query
// produced it; relaxed results carry the tier that backfilled them.
type ScoredResult struct {
	Candidate    catalog.Candidate `json:"candidate"`
	MatchScore   float64           `json:"match_score"`
	MatchDetails []string          `json:"match_details"`
	IsRelaxed    bool              `json:"is_relaxed"`
	Tier         int               `json:"relaxation_tier"`
}

// Assembled is the merged, ordered, truncated result set plus the summary
// counters presentation logic needs.
type Assembled struct {
	Results               []ScoredResult `json:"results"`
	PrimaryCount          int            `json:"primary_count"`
	RelaxedCount          int            `json:"relaxed_count"`
	TotalTrips            int            `json:"total_trips"`
	ScoreThresholds       Thresholds     `json:"score_thresholds"`
	ShowRefinementMessage bool           `json:"show_refinement_message"`
}
