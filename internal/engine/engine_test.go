// internal/engine/engine_test.go
package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrs "trip-recommender/internal/common/errors"
	"trip-recommender/internal/common/logger"
	"trip-recommender/internal/engine/catalog"
	"trip-recommender/internal/engine/scoring"
	"trip-recommender/internal/measure/requestlog"
)

type fakeStore struct {
	candidates  []catalog.Candidate
	relaxedSets [][]catalog.Candidate
	total       int
	searchErr   error
	countErr    error
	searchCalls int
}

func (s *fakeStore) Search(_ context.Context, _ catalog.Criteria) ([]catalog.Candidate, error) {
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	s.searchCalls++
	if s.searchCalls == 1 {
		return s.candidates, nil
	}
	idx := s.searchCalls - 2
	if idx < len(s.relaxedSets) {
		return s.relaxedSets[idx], nil
	}
	return nil, nil
}

func (s *fakeStore) CountActive(_ context.Context) (int, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	return s.total, nil
}

func (s *fakeStore) ContinentsForCountries(_ context.Context, _ []int64) ([]string, error) {
	return []string{"Europe"}, nil
}

type fakeRecorder struct {
	records []requestlog.Record
}

func (r *fakeRecorder) Enqueue(rec requestlog.Record) bool {
	r.records = append(r.records, rec)
	return true
}

func newTestEngine(t *testing.T, store catalog.Store, recorder Recorder) *Engine {
	eng, err := New(DefaultConfig(), scoring.DefaultConfig(), store, recorder, logger.NewTestLogger(t))
	require.NoError(t, err)
	return eng
}

func matchingCandidate(id int64) catalog.Candidate {
	return catalog.Candidate{
		ID:           id,
		Price:        900,
		TripTypeID:   1,
		ThemeIDs:     []int64{2},
		DurationDays: 10,
		Difficulty:   2,
	}
}

func fullRequest() map[string]interface{} {
	return map[string]interface{}{
		"budget":       float64(1000),
		"trip_type_id": float64(1),
		"theme_ids":    []interface{}{float64(2)},
		"min_duration": float64(7),
		"max_duration": float64(14),
		"difficulty":   float64(2),
	}
}

func TestEngine_Recommend_Success(t *testing.T) {
	store := &fakeStore{
		candidates: []catalog.Candidate{
			matchingCandidate(1),
			matchingCandidate(2),
			matchingCandidate(3),
			matchingCandidate(4),
			matchingCandidate(5),
		},
		total: 240,
	}
	recorder := &fakeRecorder{}
	eng := newTestEngine(t, store, recorder)

	resp, err := eng.Recommend(context.Background(), fullRequest())

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.RequestID)
	assert.Len(t, resp.Results, 5)
	assert.Equal(t, 5, resp.PrimaryCount)
	assert.Equal(t, 0, resp.RelaxedCount)
	assert.Equal(t, 240, resp.TotalTrips)
	assert.Equal(t, 100.0, resp.TopScore())
	assert.False(t, resp.ShowRefinementMessage)
	// Five viable primaries, so no relaxation query ran.
	assert.Equal(t, 1, store.searchCalls)

	require.Len(t, recorder.records, 1)
	rec := recorder.records[0]
	assert.Equal(t, resp.RequestID, rec.RequestID)
	assert.Equal(t, requestlog.OutcomeSuccess, rec.Outcome)
	assert.Equal(t, 5, rec.PrimaryCount)
	assert.Equal(t, 100.0, rec.TopScore)
	assert.Contains(t, rec.Preferences, `"trip_type_id":1`)
}

func TestEngine_Recommend_RelaxationBackfills(t *testing.T) {
	raw := fullRequest()
	raw["year"] = float64(2027)
	raw["month"] = float64(2)

	store := &fakeStore{
		candidates: []catalog.Candidate{matchingCandidate(1)},
		relaxedSets: [][]catalog.Candidate{
			{matchingCandidate(1), matchingCandidate(2)}, // drop month
			{matchingCandidate(3), matchingCandidate(4), matchingCandidate(5)}, // drop year
		},
		total: 240,
	}
	eng := newTestEngine(t, store, &fakeRecorder{})

	resp, err := eng.Recommend(context.Background(), raw)

	require.NoError(t, err)
	assert.Equal(t, 1, resp.PrimaryCount)
	assert.Equal(t, 4, resp.RelaxedCount)
	assert.Len(t, resp.Results, 5)

	relaxedSeen := false
	for _, r := range resp.Results {
		if r.IsRelaxed {
			relaxedSeen = true
			assert.Greater(t, r.Tier, 0)
		}
	}
	assert.True(t, relaxedSeen)
}

func TestEngine_Recommend_EmptyOutcome(t *testing.T) {
	store := &fakeStore{total: 240}
	recorder := &fakeRecorder{}
	eng := newTestEngine(t, store, recorder)

	resp, err := eng.Recommend(context.Background(), fullRequest())

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Empty(t, resp.Results)
	assert.Equal(t, 240, resp.TotalTrips)

	require.Len(t, recorder.records, 1)
	assert.Equal(t, requestlog.OutcomeEmpty, recorder.records[0].Outcome)
}

func TestEngine_Recommend_ValidationError(t *testing.T) {
	recorder := &fakeRecorder{}
	eng := newTestEngine(t, &fakeStore{}, recorder)

	resp, err := eng.Recommend(context.Background(), map[string]interface{}{
		"budget": "not-a-number",
	})

	assert.Nil(t, resp)
	require.Error(t, err)
	assert.Equal(t, stderrs.ErrCodeValidationFailed, stderrs.CodeOf(err))

	// The raw payload is still logged for the error outcome.
	require.Len(t, recorder.records, 1)
	assert.Equal(t, requestlog.OutcomeError, recorder.records[0].Outcome)
	assert.Contains(t, recorder.records[0].Preferences, "not-a-number")
}

func TestEngine_Recommend_CatalogErrors(t *testing.T) {
	tests := []struct {
		name     string
		store    *fakeStore
		wantCode stderrs.ErrorCode
	}{
		{
			name:     "search failure maps to catalog unavailable",
			store:    &fakeStore{searchErr: errors.New("connection refused")},
			wantCode: stderrs.ErrCodeCatalogUnavailable,
		},
		{
			name:     "deadline exceeded maps to catalog timeout",
			store:    &fakeStore{searchErr: context.DeadlineExceeded},
			wantCode: stderrs.ErrCodeCatalogTimeout,
		},
		{
			name:     "count failure maps to catalog unavailable",
			store:    &fakeStore{countErr: errors.New("connection reset")},
			wantCode: stderrs.ErrCodeCatalogUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := &fakeRecorder{}
			eng := newTestEngine(t, tt.store, recorder)

			resp, err := eng.Recommend(context.Background(), fullRequest())

			assert.Nil(t, resp)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, stderrs.CodeOf(err))
			assert.True(t, stderrs.IsRetryable(err))

			require.Len(t, recorder.records, 1)
			assert.Equal(t, requestlog.OutcomeError, recorder.records[0].Outcome)
		})
	}
}

func TestEngine_Recommend_NilRecorder(t *testing.T) {
	eng := newTestEngine(t, &fakeStore{total: 10}, nil)

	resp, err := eng.Recommend(context.Background(), fullRequest())

	require.NoError(t, err)
	assert.True(t, resp.Success)
}
