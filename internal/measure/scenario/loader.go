// internal/measure/scenario/loader.go
package scenario

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"

	"trip-recommender/internal/common/errors"
)

// corpusSchema validates the corpus shape before any scenario runs, so
// a malformed fixture fails the whole evaluation up front.
const corpusSchema = `{
	"type": "object",
	"required": ["version", "scenarios"],
	"properties": {
		"version": {"type": "string", "minLength": 1},
		"scenarios": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["name", "category", "preferences", "min_results", "min_top_score"],
				"properties": {
					"name": {"type": "string", "minLength": 1},
					"category": {"type": "string", "minLength": 1},
					"preferences": {"type": "object"},
					"min_results": {"type": "integer", "minimum": 0},
					"min_top_score": {"type": "number", "minimum": 0, "maximum": 100}
				}
			}
		}
	}
}`

// Load reads and validates a scenario corpus from disk.
func Load(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewScenarioLoadFailedError(path, err)
	}

	schemaLoader := gojsonschema.NewStringLoader(corpusSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, errors.NewScenarioCorpusInvalidError(fmt.Sprintf("schema validation error: %s", err))
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return nil, errors.NewScenarioCorpusInvalidError(fmt.Sprintf("corpus validation failed: %v", errs))
	}

	var corpus Corpus
	if err := json.Unmarshal(data, &corpus); err != nil {
		return nil, errors.NewScenarioCorpusInvalidError(err.Error())
	}

	names := make(map[string]bool, len(corpus.Scenarios))
	for _, sc := range corpus.Scenarios {
		if names[sc.Name] {
			return nil, errors.NewScenarioCorpusInvalidError(fmt.Sprintf("duplicate scenario name %q", sc.Name))
		}
		names[sc.Name] = true
	}

	return &corpus, nil
}
