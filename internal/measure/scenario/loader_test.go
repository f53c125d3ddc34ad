// internal/measure/scenario/loader_test.go
package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrs "trip-recommender/internal/common/errors"
)

func writeCorpus(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenarios.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validCorpus = `{
	"version": "2026-08",
	"scenarios": [
		{
			"name": "budget-backpacker",
			"category": "budget",
			"preferences": {"budget": 900, "trip_type_id": 2},
			"min_results": 3,
			"min_top_score": 60
		},
		{
			"name": "luxury-safari",
			"category": "premium",
			"preferences": {"budget": 8000, "continents": ["Africa"]},
			"min_results": 2,
			"min_top_score": 65
		}
	]
}`

func TestLoad_ValidCorpus(t *testing.T) {
	corpus, err := Load(writeCorpus(t, validCorpus))

	require.NoError(t, err)
	assert.Equal(t, "2026-08", corpus.Version)
	require.Len(t, corpus.Scenarios, 2)
	assert.Equal(t, "budget-backpacker", corpus.Scenarios[0].Name)
	assert.Equal(t, 3, corpus.Scenarios[0].MinResults)
	assert.Equal(t, 60.0, corpus.Scenarios[0].MinTopScore)
}

func TestLoad_MissingFile(t *testing.T) {
	corpus, err := Load(filepath.Join(t.TempDir(), "absent.json"))

	assert.Nil(t, corpus)
	require.Error(t, err)
	assert.Equal(t, stderrs.ErrCodeScenarioLoadFailed, stderrs.CodeOf(err))
}

func TestLoad_SchemaViolations(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", `{{{`},
		{"missing version", `{"scenarios": []}`},
		{"empty scenario list", `{"version": "v1", "scenarios": []}`},
		{
			"scenario missing category",
			`{"version": "v1", "scenarios": [
				{"name": "a", "preferences": {}, "min_results": 1, "min_top_score": 50}
			]}`,
		},
		{
			"negative min_results",
			`{"version": "v1", "scenarios": [
				{"name": "a", "category": "c", "preferences": {}, "min_results": -1, "min_top_score": 50}
			]}`,
		},
		{
			"min_top_score above 100",
			`{"version": "v1", "scenarios": [
				{"name": "a", "category": "c", "preferences": {}, "min_results": 1, "min_top_score": 120}
			]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			corpus, err := Load(writeCorpus(t, tt.content))

			assert.Nil(t, corpus)
			require.Error(t, err)
			assert.Equal(t, stderrs.ErrCodeScenarioCorpusInvalid, stderrs.CodeOf(err))
		})
	}
}

func TestLoad_DuplicateScenarioNames(t *testing.T) {
	content := `{"version": "v1", "scenarios": [
		{"name": "dup", "category": "c", "preferences": {}, "min_results": 1, "min_top_score": 50},
		{"name": "dup", "category": "c", "preferences": {}, "min_results": 1, "min_top_score": 50}
	]}`

	corpus, err := Load(writeCorpus(t, content))

	assert.Nil(t, corpus)
	require.Error(t, err)
	assert.Equal(t, stderrs.ErrCodeScenarioCorpusInvalid, stderrs.CodeOf(err))
}
