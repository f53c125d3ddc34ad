// internal/engine/engine.go
package engine

import (
	"context"
	stderrors "errors"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"trip-recommender/internal/common/errors"
	"trip-recommender/internal/common/logger"
	"trip-recommender/internal/common/metrics"
	"trip-recommender/internal/engine/catalog"
	"trip-recommender/internal/engine/preferences"
	"trip-recommender/internal/engine/relaxation"
	"trip-recommender/internal/engine/results"
	"trip-recommender/internal/engine/scoring"
	"trip-recommender/internal/measure/requestlog"
)

// Recorder is the asynchronous request-log sink. Logging is best-effort;
// the engine never inspects the result beyond handing the record over.
type Recorder interface {
	Enqueue(rec requestlog.Record) bool
}

// Config carries the engine-level knobs not owned by the scorer.
type Config struct {
	Thresholds results.Thresholds
	MinViable  int
	MaxResults int
}

func DefaultConfig() Config {
	return Config{
		Thresholds: results.DefaultThresholds(),
		MinViable:  5,
		MaxResults: 50,
	}
}

// Engine runs the full recommendation pipeline. It is stateless per
// request; concurrent calls share only the read-only catalog and the
// append-only log sink.
type Engine struct {
	builder   *preferences.Builder
	store     catalog.Store
	scorer    *scoring.Engine
	fallback  *relaxation.Fallback
	assembler *results.Assembler
	recorder  Recorder
	logger    logger.Logger
}

func New(cfg Config, scoringCfg scoring.Config, store catalog.Store, recorder Recorder, log logger.Logger) (*Engine, error) {
	scorer, err := scoring.NewEngine(scoringCfg)
	if err != nil {
		return nil, err
	}

	return &Engine{
		builder:   preferences.NewBuilder(log),
		store:     store,
		scorer:    scorer,
		fallback:  relaxation.NewFallback(store, scorer, cfg.MinViable, cfg.Thresholds.Mid, log),
		assembler: results.NewAssembler(cfg.Thresholds, cfg.MaxResults),
		recorder:  recorder,
		logger:    log.WithFields(map[string]interface{}{"component": "recommendation-engine"}),
	}, nil
}

// Recommend is the single inbound operation: raw preferences in, ordered
// scored results out.
func (e *Engine) Recommend(ctx context.Context, raw map[string]interface{}) (*Response, error) {
	start := time.Now()
	requestID := uuid.NewString()

	prefs, err := e.builder.Build(raw)
	if err != nil {
		e.finish(requestID, raw, nil, nil, start, requestlog.OutcomeError)
		return nil, err
	}

	criteria := catalog.CriteriaFromPreferences(prefs)
	candidates, err := e.store.Search(ctx, criteria)
	if err != nil {
		e.finish(requestID, nil, prefs, nil, start, requestlog.OutcomeError)
		return nil, catalogError(err)
	}

	totalTrips, err := e.store.CountActive(ctx)
	if err != nil {
		e.finish(requestID, nil, prefs, nil, start, requestlog.OutcomeError)
		return nil, catalogError(err)
	}

	primary := make([]results.ScoredResult, 0, len(candidates))
	for _, cand := range candidates {
		score, details := e.scorer.Score(cand, prefs)
		primary = append(primary, results.ScoredResult{
			Candidate:    cand,
			MatchScore:   score,
			MatchDetails: details,
		})
	}

	var relaxed []results.ScoredResult
	if e.fallback.Needed(primary) {
		relaxed, err = e.fallback.Run(ctx, prefs, primary)
		if err != nil {
			e.finish(requestID, nil, prefs, nil, start, requestlog.OutcomeError)
			return nil, catalogError(err)
		}
	}

	assembled := e.assembler.Assemble(primary, relaxed, totalTrips)

	response := &Response{
		RequestID:             requestID,
		Success:               true,
		Results:               assembled.Results,
		PrimaryCount:          assembled.PrimaryCount,
		RelaxedCount:          assembled.RelaxedCount,
		TotalTrips:            assembled.TotalTrips,
		ScoreThresholds:       assembled.ScoreThresholds,
		ShowRefinementMessage: assembled.ShowRefinementMessage,
	}

	outcome := requestlog.OutcomeSuccess
	if len(response.Results) == 0 {
		// A legitimate zero-result outcome after full relaxation, not an
		// error; total_trips still flows out for messaging.
		outcome = requestlog.OutcomeEmpty
	}

	e.finish(requestID, nil, prefs, response, start, outcome)

	e.logger.Info("recommendation complete", map[string]interface{}{
		"requestId":    requestID,
		"primaryCount": response.PrimaryCount,
		"relaxedCount": response.RelaxedCount,
		"topScore":     response.TopScore(),
		"outcome":      outcome,
	})

	return response, nil
}

// finish records metrics and enqueues the request log record. Runs on
// every exit path, success or not.
func (e *Engine) finish(requestID string, raw map[string]interface{}, prefs *preferences.Preferences, response *Response, start time.Time, outcome string) {
	elapsed := time.Since(start)
	metrics.RecommendationRequests.WithLabelValues(outcome).Inc()
	metrics.RecommendationDuration.Observe(elapsed.Seconds())

	rec := requestlog.Record{
		ID:        uuid.NewString(),
		RequestID: requestID,
		CreatedAt: time.Now().UTC(),
		LatencyMs: elapsed.Milliseconds(),
		Outcome:   outcome,
	}

	switch {
	case prefs != nil:
		data, _ := json.Marshal(prefs)
		rec.Preferences = string(data)
	case raw != nil:
		data, _ := json.Marshal(raw)
		rec.Preferences = string(data)
	}

	if response != nil {
		rec.CandidateCount = response.PrimaryCount + response.RelaxedCount
		rec.PrimaryCount = response.PrimaryCount
		rec.RelaxedCount = response.RelaxedCount
		rec.TopScore = response.TopScore()
		metrics.ResultsReturned.Observe(float64(len(response.Results)))
	}

	if e.recorder != nil {
		e.recorder.Enqueue(rec)
	}
}

// catalogError maps store failures onto the error taxonomy; deadline
// expiry becomes a dedicated timeout code.
func catalogError(err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewCatalogTimeoutError()
	}
	var std *errors.StandardError
	if stderrors.As(err, &std) {
		return std
	}
	return errors.NewCatalogUnavailableError(err)
}
