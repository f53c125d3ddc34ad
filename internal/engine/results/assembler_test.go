// internal/engine/results/assembler_test.go
package results

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"trip-recommender/internal/engine/catalog"
)

func scored(id int64, score float64, relaxed bool) ScoredResult {
	return ScoredResult{
		Candidate:  catalog.Candidate{ID: id},
		MatchScore: score,
		IsRelaxed:  relaxed,
	}
}

func TestAssembler_Assemble_Ordering(t *testing.T) {
	a := NewAssembler(DefaultThresholds(), 50)

	primary := []ScoredResult{
		scored(3, 62, false),
		scored(1, 88, false),
	}
	relaxed := []ScoredResult{
		scored(7, 88, true),
		scored(2, 71, true),
	}

	out := a.Assemble(primary, relaxed, 240)

	ids := make([]int64, len(out.Results))
	for i, r := range out.Results {
		ids[i] = r.Candidate.ID
	}
	// Score descending, candidate id ascending on ties.
	assert.Equal(t, []int64{1, 7, 2, 3}, ids)
	assert.Equal(t, 2, out.PrimaryCount)
	assert.Equal(t, 2, out.RelaxedCount)
	assert.Equal(t, 240, out.TotalTrips)
}

func TestAssembler_Assemble_TieBreakIsInsertionIndependent(t *testing.T) {
	a := NewAssembler(DefaultThresholds(), 50)

	forward := a.Assemble([]ScoredResult{scored(1, 80, false), scored(2, 80, false)}, nil, 10)
	reversed := a.Assemble([]ScoredResult{scored(2, 80, false), scored(1, 80, false)}, nil, 10)

	assert.Equal(t, forward.Results, reversed.Results)
	assert.Equal(t, int64(1), forward.Results[0].Candidate.ID)
}

func TestAssembler_Assemble_Truncation(t *testing.T) {
	a := NewAssembler(DefaultThresholds(), 3)

	primary := []ScoredResult{
		scored(1, 90, false),
		scored(2, 85, false),
		scored(3, 80, false),
		scored(4, 75, false),
		scored(5, 70, false),
	}

	out := a.Assemble(primary, nil, 100)

	assert.Len(t, out.Results, 3)
	// Counters reflect the pre-truncation sets.
	assert.Equal(t, 5, out.PrimaryCount)
	assert.Equal(t, int64(1), out.Results[0].Candidate.ID)
	assert.Equal(t, int64(3), out.Results[2].Candidate.ID)
}

func TestAssembler_Assemble_RefinementMessage(t *testing.T) {
	tests := []struct {
		name     string
		topScore float64
		want     bool
	}{
		{"high band top", 75, false},
		{"exactly at high", 70, false},
		{"mid band top", 62, true},
		{"exactly at mid", 50, true},
		{"low band top", 40, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAssembler(DefaultThresholds(), 50)
			out := a.Assemble([]ScoredResult{scored(1, tt.topScore, false)}, nil, 10)

			assert.Equal(t, tt.want, out.ShowRefinementMessage)
		})
	}
}

func TestAssembler_Assemble_Empty(t *testing.T) {
	a := NewAssembler(DefaultThresholds(), 50)

	out := a.Assemble(nil, nil, 120)

	assert.Empty(t, out.Results)
	assert.False(t, out.ShowRefinementMessage)
	assert.Equal(t, 120, out.TotalTrips)
}

func TestThresholds_Band(t *testing.T) {
	th := DefaultThresholds()

	assert.Equal(t, BandHigh, th.Band(100))
	assert.Equal(t, BandHigh, th.Band(70))
	assert.Equal(t, BandMid, th.Band(69.9))
	assert.Equal(t, BandMid, th.Band(50))
	assert.Equal(t, BandLow, th.Band(49.9))
	assert.Equal(t, BandLow, th.Band(0))
}
