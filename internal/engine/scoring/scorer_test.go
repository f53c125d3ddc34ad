// internal/engine/scoring/scorer_test.go
package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trip-recommender/internal/engine/catalog"
	"trip-recommender/internal/engine/preferences"
)

func newTestEngine(t *testing.T) *Engine {
	eng, err := NewEngine(DefaultConfig())
	require.NoError(t, err)
	return eng
}

func fullPreferences() *preferences.Preferences {
	return &preferences.Preferences{
		Budget:      10000,
		TripTypeID:  1,
		ThemeIDs:    []int64{2, 5},
		MinDuration: 7,
		MaxDuration: 14,
		Difficulty:  2,
	}
}

func TestEngine_Score_PerfectMatch(t *testing.T) {
	cand := catalog.Candidate{
		ID:           1,
		Price:        9500,
		TripTypeID:   1,
		ThemeIDs:     []int64{2, 5, 9},
		DurationDays: 10,
		Difficulty:   2,
	}

	score, details := newTestEngine(t).Score(cand, fullPreferences())

	assert.Equal(t, 100.0, score)
	assert.Equal(t, []string{
		"Matches your preferred trip style",
		"Matches all your preferred themes",
		"Within your budget",
		"Fits your duration range",
		"Matches your difficulty level",
	}, details)
}

func TestEngine_Score_MostlyMismatched(t *testing.T) {
	// Over budget by 5%, type mismatch, no themes, duration 6 days out,
	// difficulty one level off.
	cand := catalog.Candidate{
		ID:           2,
		Price:        10500,
		TripTypeID:   3,
		ThemeIDs:     []int64{},
		DurationDays: 20,
		Difficulty:   1,
	}

	score, details := newTestEngine(t).Score(cand, fullPreferences())

	// budget 25*(1-0.05/0.2)=18.75, duration 20*(1-6/7)≈2.86, difficulty 5
	assert.InDelta(t, 26.61, score, 0.05)
	assert.Less(t, score, 50.0)
	assert.Equal(t, []string{
		"Slightly above your budget",
		"Close to your difficulty level",
	}, details)
}

func TestEngine_Score_NoSoftMatchesWithDifficultyUnset(t *testing.T) {
	prefs := fullPreferences()
	prefs.Difficulty = 0

	cand := catalog.Candidate{
		ID:           3,
		Price:        25000, // far over budget
		TripTypeID:   9,
		ThemeIDs:     []int64{8},
		DurationDays: 40, // far outside window
		Difficulty:   3,
	}

	score, details := newTestEngine(t).Score(cand, prefs)

	// Only the difficulty allotment survives, which equals the unset-type
	// baseline of a 20-point factor at half credit.
	assert.Equal(t, 10.0, score)
	assert.Empty(t, details)
}

func TestEngine_Score_AllPreferencesUnset(t *testing.T) {
	prefs := &preferences.Preferences{
		MinDuration: 1,
		MaxDuration: 60,
	}
	cand := catalog.Candidate{
		ID:           4,
		Price:        3000,
		TripTypeID:   2,
		ThemeIDs:     []int64{1},
		DurationDays: 10,
		Difficulty:   2,
	}

	score, details := newTestEngine(t).Score(cand, prefs)

	// 10 + 12.5 + 12.5 + 20 + 10
	assert.Equal(t, 65.0, score)
	assert.Equal(t, []string{"Fits your duration range"}, details)
}

func TestEngine_Score_ThemePartialCredit(t *testing.T) {
	tests := []struct {
		name       string
		prefThemes []int64
		candThemes []int64
		credit     float64
		reason     string
	}{
		{
			name:       "two of three themes",
			prefThemes: []int64{2, 5, 7},
			candThemes: []int64{2, 5},
			credit:     25.0 * 2 / 3,
			reason:     "Matches 2 of your preferred themes",
		},
		{
			name:       "one of three themes",
			prefThemes: []int64{2, 5, 7},
			candThemes: []int64{7},
			credit:     25.0 / 3,
			reason:     "", // below the reason threshold
		},
		{
			name:       "all themes",
			prefThemes: []int64{2, 5},
			candThemes: []int64{5, 2, 11},
			credit:     25,
			reason:     "Matches all your preferred themes",
		},
		{
			name:       "no overlap",
			prefThemes: []int64{2},
			candThemes: []int64{3},
			credit:     0,
			reason:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefs := &preferences.Preferences{
				ThemeIDs:    tt.prefThemes,
				MinDuration: 1,
				MaxDuration: 60,
			}
			cand := catalog.Candidate{ThemeIDs: tt.candThemes, DurationDays: 10}

			base := catalog.Candidate{DurationDays: 10}
			baseScore, _ := newTestEngine(t).Score(base, prefs)
			score, details := newTestEngine(t).Score(cand, prefs)

			assert.InDelta(t, tt.credit, score-baseScore, 0.001)
			if tt.reason == "" {
				assert.NotContains(t, details, "Matches all your preferred themes")
			} else {
				assert.Contains(t, details, tt.reason)
			}
		})
	}
}

func TestEngine_Score_BudgetDecay(t *testing.T) {
	prefs := &preferences.Preferences{
		Budget:      1000,
		MinDuration: 1,
		MaxDuration: 60,
	}
	eng := newTestEngine(t)

	within, _ := eng.Score(catalog.Candidate{Price: 1000, DurationDays: 10}, prefs)
	slightly, _ := eng.Score(catalog.Candidate{Price: 1100, DurationDays: 10}, prefs)
	far, _ := eng.Score(catalog.Candidate{Price: 1200, DurationDays: 10}, prefs)

	assert.Greater(t, within, slightly)
	assert.Greater(t, slightly, far)
	// 10% over with 20% tolerance earns half the budget weight.
	assert.InDelta(t, 12.5, within-slightly, 0.001)
	// At the tolerance edge, the budget credit is gone entirely.
	assert.InDelta(t, 25.0, within-far, 0.001)
}

func TestEngine_Score_DurationDecay(t *testing.T) {
	prefs := &preferences.Preferences{
		MinDuration: 7,
		MaxDuration: 14,
	}
	eng := newTestEngine(t)

	tests := []struct {
		name   string
		days   int
		credit float64
	}{
		{"inside window", 10, 20},
		{"one day short", 6, 20.0 * 6 / 7},
		{"three days over", 17, 20.0 * 4 / 7},
		{"at tolerance edge", 21, 0},
		{"far outside", 40, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, _ := eng.Score(catalog.Candidate{DurationDays: tt.days}, prefs)
			// Unset type/theme/budget baselines plus unset difficulty: 45.
			assert.InDelta(t, 45+tt.credit, score, 0.001)
		})
	}
}

func TestEngine_Score_DifficultySteps(t *testing.T) {
	prefs := &preferences.Preferences{
		Difficulty:  1,
		MinDuration: 1,
		MaxDuration: 60,
	}
	eng := newTestEngine(t)

	exact, exactDetails := eng.Score(catalog.Candidate{Difficulty: 1, DurationDays: 10}, prefs)
	oneOff, oneOffDetails := eng.Score(catalog.Candidate{Difficulty: 2, DurationDays: 10}, prefs)
	twoOff, twoOffDetails := eng.Score(catalog.Candidate{Difficulty: 3, DurationDays: 10}, prefs)

	assert.InDelta(t, 5.0, exact-oneOff, 0.001)
	assert.InDelta(t, 8.0, exact-twoOff, 0.001)
	assert.Contains(t, exactDetails, "Matches your difficulty level")
	assert.Contains(t, oneOffDetails, "Close to your difficulty level")
	assert.NotContains(t, twoOffDetails, "Close to your difficulty level")
}

func TestEngine_Score_Deterministic(t *testing.T) {
	eng := newTestEngine(t)
	prefs := fullPreferences()
	cand := catalog.Candidate{
		ID:           7,
		Price:        10200,
		TripTypeID:   1,
		ThemeIDs:     []int64{5},
		DurationDays: 16,
		Difficulty:   3,
	}

	firstScore, firstDetails := eng.Score(cand, prefs)
	for i := 0; i < 10; i++ {
		score, details := eng.Score(cand, prefs)
		assert.Equal(t, firstScore, score)
		assert.Equal(t, firstDetails, details)
	}
}

func TestEngine_Score_Bounds(t *testing.T) {
	eng := newTestEngine(t)
	prefs := fullPreferences()

	candidates := []catalog.Candidate{
		{Price: 1, TripTypeID: 1, ThemeIDs: []int64{2, 5}, DurationDays: 10, Difficulty: 2},
		{Price: 1e9, TripTypeID: 99, DurationDays: 1, Difficulty: 3},
		{},
	}

	for _, cand := range candidates {
		score, _ := eng.Score(cand, prefs)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 100.0)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr bool
	}{
		{"defaults valid", func(cfg *Config) {}, false},
		{"weights must sum to 100", func(cfg *Config) { cfg.Weights.Type = 50 }, true},
		{"budget tolerance must be positive", func(cfg *Config) { cfg.BudgetTolerance = 0 }, true},
		{"duration tolerance must be positive", func(cfg *Config) { cfg.DurationTolerance = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
