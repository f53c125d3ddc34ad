// internal/measure/scenario/models.go
package scenario

// Scenario is one synthetic user persona and the minimum outcome the
// engine must produce for it.
type Scenario struct {
	Name        string                 `json:"name"`
	Category    string                 `json:"category"`
	Preferences map[string]interface{} `json:"preferences"`
	MinResults  int                    `json:"min_results"`
	MinTopScore float64                `json:"min_top_score"`
}

// Corpus is the full evaluation fixture.
type Corpus struct {
	Version   string     `json:"version"`
	Scenarios []Scenario `json:"scenarios"`
}

// Result is the outcome of running one scenario.
type Result struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Passed      bool    `json:"passed"`
	ResultCount int     `json:"result_count"`
	TopScore    float64 `json:"top_score"`
	Reason      string  `json:"reason,omitempty"`
}

// CategorySummary is the pass/fail rollup for one scenario category.
type CategorySummary struct {
	Category string `json:"category"`
	Total    int    `json:"total"`
	Passed   int    `json:"passed"`
}

// EvalReport is the full evaluation run output.
type EvalReport struct {
	CorpusVersion string            `json:"corpus_version"`
	Total         int               `json:"total"`
	Passed        int               `json:"passed"`
	PassRate      float64           `json:"pass_rate"`
	Categories    []CategorySummary `json:"categories"`
	Results       []Result          `json:"results"`
	Regression    bool              `json:"regression"`
	BaselineRate  float64           `json:"baseline_rate,omitempty"`
}
