// internal/measure/requestlog/worker_test.go
package requestlog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trip-recommender/internal/common/logger"
)

// memStore collects inserts, with optional per-record failure injection.
type memStore struct {
	mu       sync.Mutex
	inserted []Record
	failFor  map[string]error
}

func (s *memStore) Insert(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failFor[rec.ID]; ok {
		return err
	}
	s.inserted = append(s.inserted, rec)
	return nil
}

func (s *memStore) ListByWindow(_ context.Context, _, _ time.Time) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Record(nil), s.inserted...), nil
}

func (s *memStore) records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Record(nil), s.inserted...)
}

func testRecord(id string) Record {
	return Record{
		ID:        id,
		RequestID: "req-" + id,
		CreatedAt: time.Now().UTC(),
		Outcome:   OutcomeSuccess,
	}
}

func TestAsyncLogger_EnqueueAndFlush(t *testing.T) {
	store := &memStore{}
	l := NewAsyncLogger(store, nil, 16, time.Second, logger.NewTestLogger(t))
	l.Start()

	assert.True(t, l.Enqueue(testRecord("a")))
	assert.True(t, l.Enqueue(testRecord("b")))
	assert.True(t, l.Enqueue(testRecord("c")))

	// Stop drains the queue before returning.
	l.Stop()

	records := store.records()
	require.Len(t, records, 3)
	assert.Equal(t, "a", records[0].ID)
	assert.Equal(t, "c", records[2].ID)
}

func TestAsyncLogger_DropsWhenQueueFull(t *testing.T) {
	store := &memStore{}
	l := NewAsyncLogger(store, nil, 2, time.Second, logger.NewTestLogger(t))
	// Worker not started, so the queue cannot drain.

	assert.True(t, l.Enqueue(testRecord("a")))
	assert.True(t, l.Enqueue(testRecord("b")))
	assert.False(t, l.Enqueue(testRecord("c")))

	l.Start()
	l.Stop()

	records := store.records()
	require.Len(t, records, 2)
	assert.Equal(t, "a", records[0].ID)
	assert.Equal(t, "b", records[1].ID)
}

func TestAsyncLogger_WriteFailureDoesNotStopDraining(t *testing.T) {
	store := &memStore{
		failFor: map[string]error{"bad": errors.New("disk full")},
	}
	l := NewAsyncLogger(store, nil, 16, time.Second, logger.NewTestLogger(t))
	l.Start()

	l.Enqueue(testRecord("ok-1"))
	l.Enqueue(testRecord("bad"))
	l.Enqueue(testRecord("ok-2"))

	l.Stop()

	records := store.records()
	require.Len(t, records, 2)
	assert.Equal(t, "ok-1", records[0].ID)
	assert.Equal(t, "ok-2", records[1].ID)
}

func TestAsyncLogger_StopIsIdempotent(t *testing.T) {
	l := NewAsyncLogger(&memStore{}, nil, 4, time.Second, logger.NewTestLogger(t))
	l.Start()

	l.Stop()
	assert.NotPanics(t, func() { l.Stop() })
}

func TestAsyncLogger_DefaultQueueSize(t *testing.T) {
	l := NewAsyncLogger(&memStore{}, nil, 0, time.Second, logger.NewTestLogger(t))

	assert.Equal(t, 256, cap(l.queue))
}
