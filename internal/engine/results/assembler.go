// internal/engine/results/assembler.go
package results

import "sort"

// Assembler merges primary and relaxed results into the final payload.
type Assembler struct {
	thresholds Thresholds
	maxResults int
}

func NewAssembler(thresholds Thresholds, maxResults int) *Assembler {
	if maxResults <= 0 {
		maxResults = 50
	}
	return &Assembler{thresholds: thresholds, maxResults: maxResults}
}

// Assemble sorts by score descending with candidate id ascending as the
// tie-break, so ordering never depends on insertion order, then truncates
// to the result cap. The refinement message fires exactly when the top
// result sits in the mid band.
func (a *Assembler) Assemble(primary, relaxed []ScoredResult, totalTrips int) *Assembled {
	merged := make([]ScoredResult, 0, len(primary)+len(relaxed))
	merged = append(merged, primary...)
	merged = append(merged, relaxed...)

	sort.Slice(merged, func(i, j int) bool {
		if merged[i].MatchScore != merged[j].MatchScore {
			return merged[i].MatchScore > merged[j].MatchScore
		}
		return merged[i].Candidate.ID < merged[j].Candidate.ID
	})

	if len(merged) > a.maxResults {
		merged = merged[:a.maxResults]
	}

	showRefinement := false
	if len(merged) > 0 {
		showRefinement = a.thresholds.Band(merged[0].MatchScore) == BandMid
	}

	return &Assembled{
		Results:               merged,
		PrimaryCount:          len(primary),
		RelaxedCount:          len(relaxed),
		TotalTrips:            totalTrips,
		ScoreThresholds:       a.thresholds,
		ShowRefinementMessage: showRefinement,
	}
}
