// internal/engine/catalog/elastic_test.go
package catalog

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queryJSON(t *testing.T, criteria Criteria) string {
	t.Helper()
	body, err := json.Marshal(buildSearchQuery(criteria))
	require.NoError(t, err)
	return string(body)
}

func TestBuildSearchQuery(t *testing.T) {
	tests := []struct {
		name        string
		criteria    Criteria
		contains    []string
		notContains []string
	}{
		{
			name:     "duration window always filtered",
			criteria: Criteria{MinDuration: 7, MaxDuration: 14},
			contains: []string{
				`"duration_days":{"gte":7,"lte":14}`,
				`"must_not":[{"terms":{"status":["full","cancelled"]}}]`,
			},
			notContains: []string{"country_id", "continent", "start_year", "start_month"},
		},
		{
			name:     "countries only",
			criteria: Criteria{MinDuration: 1, MaxDuration: 60, CountryIDs: []int64{7, 44}},
			contains: []string{`"terms":{"country_id":[7,44]}`},
			notContains: []string{"minimum_should_match"},
		},
		{
			name:     "continents only",
			criteria: Criteria{MinDuration: 1, MaxDuration: 60, Continents: []string{"Asia"}},
			contains: []string{`"terms":{"continent":["Asia"]}`},
		},
		{
			name: "countries or continents become a should clause",
			criteria: Criteria{
				MinDuration: 1, MaxDuration: 60,
				CountryIDs: []int64{7},
				Continents: []string{"Africa"},
			},
			contains: []string{
				`"minimum_should_match":1`,
				`"terms":{"country_id":[7]}`,
				`"terms":{"continent":["Africa"]}`,
			},
		},
		{
			name:     "date window terms",
			criteria: Criteria{MinDuration: 1, MaxDuration: 60, Year: 2027, Month: 6},
			contains: []string{
				`"term":{"start_year":2027}`,
				`"term":{"start_month":6}`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := queryJSON(t, tt.criteria)
			for _, fragment := range tt.contains {
				assert.Contains(t, body, fragment)
			}
			for _, fragment := range tt.notContains {
				assert.NotContains(t, body, fragment)
			}
		})
	}
}

func TestCandidateDoc_ToCandidate(t *testing.T) {
	doc := candidateDoc{
		ID:           3,
		TripID:       10,
		Name:         "Kilimanjaro Ascent",
		CountryID:    7,
		Continent:    "Africa",
		TripTypeID:   3,
		ThemeIDs:     []int64{3, 6},
		StartDate:    "2027-02-15",
		DurationDays: 9,
		Price:        3200,
		SpotsLeft:    4,
		Status:       StatusLastPlaces,
		Difficulty:   3,
	}

	cand := doc.toCandidate()

	assert.Equal(t, int64(3), cand.ID)
	assert.Equal(t, "Kilimanjaro Ascent", cand.Name)
	assert.Equal(t, time.Date(2027, 2, 15, 0, 0, 0, 0, time.UTC), cand.StartDate)
	assert.Equal(t, []int64{3, 6}, cand.ThemeIDs)
	assert.Equal(t, StatusLastPlaces, cand.Status)
}

func TestCandidateDoc_ToCandidate_BadDate(t *testing.T) {
	doc := candidateDoc{ID: 1, StartDate: "not-a-date"}

	cand := doc.toCandidate()

	assert.True(t, cand.StartDate.IsZero())
}
