// internal/measure/scenario/evaluator.go
package scenario

import (
	"context"
	"fmt"
	"sort"

	"trip-recommender/internal/common/logger"
	"trip-recommender/internal/engine"
)

// Recommender is the slice of the engine the evaluator needs.
type Recommender interface {
	Recommend(ctx context.Context, raw map[string]interface{}) (*engine.Response, error)
}

// Evaluator replays a scenario corpus against a live engine and
// reports pass rates per category.
type Evaluator struct {
	engine Recommender
	logger logger.Logger
}

func NewEvaluator(eng Recommender, log logger.Logger) *Evaluator {
	return &Evaluator{
		engine: eng,
		logger: log.WithFields(map[string]interface{}{"component": "scenario-evaluator"}),
	}
}

// Run executes every scenario and builds the report. baselineRate <= 0
// disables the regression check.
func (e *Evaluator) Run(ctx context.Context, corpus *Corpus, baselineRate float64) (*EvalReport, error) {
	report := &EvalReport{
		CorpusVersion: corpus.Version,
		Total:         len(corpus.Scenarios),
		Results:       make([]Result, 0, len(corpus.Scenarios)),
	}

	categories := make(map[string]*CategorySummary)

	for _, sc := range corpus.Scenarios {
		res := e.runOne(ctx, sc)
		report.Results = append(report.Results, res)
		if res.Passed {
			report.Passed++
		}

		summary, ok := categories[sc.Category]
		if !ok {
			summary = &CategorySummary{Category: sc.Category}
			categories[sc.Category] = summary
		}
		summary.Total++
		if res.Passed {
			summary.Passed++
		}
	}

	if report.Total > 0 {
		report.PassRate = float64(report.Passed) / float64(report.Total)
	}
	if baselineRate > 0 {
		report.BaselineRate = baselineRate
		report.Regression = report.PassRate < baselineRate
	}

	for _, summary := range categories {
		report.Categories = append(report.Categories, *summary)
	}
	sort.Slice(report.Categories, func(i, j int) bool {
		return report.Categories[i].Category < report.Categories[j].Category
	})

	e.logger.Info("evaluation complete", map[string]interface{}{
		"corpus_version": corpus.Version,
		"total":          report.Total,
		"passed":         report.Passed,
		"pass_rate":      report.PassRate,
		"regression":     report.Regression,
	})

	return report, nil
}

func (e *Evaluator) runOne(ctx context.Context, sc Scenario) Result {
	res := Result{Name: sc.Name, Category: sc.Category}

	resp, err := e.engine.Recommend(ctx, sc.Preferences)
	if err != nil {
		res.Reason = fmt.Sprintf("engine error: %s", err)
		e.logger.Warn("scenario errored", map[string]interface{}{
			"scenario": sc.Name,
			"error":    err.Error(),
		})
		return res
	}

	res.ResultCount = len(resp.Results)
	res.TopScore = resp.TopScore()

	switch {
	case res.ResultCount < sc.MinResults:
		res.Reason = fmt.Sprintf("expected at least %d results, got %d", sc.MinResults, res.ResultCount)
	case res.TopScore < sc.MinTopScore:
		res.Reason = fmt.Sprintf("expected top score >= %.1f, got %.1f", sc.MinTopScore, res.TopScore)
	default:
		res.Passed = true
	}

	return res
}
