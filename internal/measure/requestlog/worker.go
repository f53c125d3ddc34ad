// internal/measure/requestlog/worker.go
package requestlog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"trip-recommender/internal/common/alert"
	"trip-recommender/internal/common/errors"
	"trip-recommender/internal/common/logger"
	"trip-recommender/internal/common/metrics"
)

// AsyncLogger decouples log persistence from the request path. Enqueue
// never blocks and never fails the caller; a background worker drains the
// queue and reports write failures to the operational channel only.
type AsyncLogger struct {
	store    Store
	notifier *alert.Notifier
	logger   logger.Logger
	timeout  time.Duration

	queue chan Record
	wg    sync.WaitGroup
	once  sync.Once
}

func NewAsyncLogger(store Store, notifier *alert.Notifier, queueSize int, timeout time.Duration, log logger.Logger) *AsyncLogger {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &AsyncLogger{
		store:    store,
		notifier: notifier,
		logger:   log.WithFields(map[string]interface{}{"component": "request-logger"}),
		timeout:  timeout,
		queue:    make(chan Record, queueSize),
	}
}

// Start launches the drain worker.
func (l *AsyncLogger) Start() {
	l.wg.Add(1)
	go l.drain()
}

// Stop closes the queue and waits for buffered records to flush.
func (l *AsyncLogger) Stop() {
	l.once.Do(func() {
		close(l.queue)
	})
	l.wg.Wait()
}

// Enqueue hands a record to the background worker. When the queue is full
// the record is dropped and counted; the request path is never blocked.
func (l *AsyncLogger) Enqueue(rec Record) bool {
	select {
	case l.queue <- rec:
		metrics.RequestLogQueueDepth.Set(float64(len(l.queue)))
		return true
	default:
		metrics.RequestLogDropped.Inc()
		l.logger.Warn("request log queue full, record dropped", map[string]interface{}{
			"requestId": rec.RequestID,
		})
		return false
	}
}

func (l *AsyncLogger) drain() {
	defer l.wg.Done()

	for rec := range l.queue {
		metrics.RequestLogQueueDepth.Set(float64(len(l.queue)))

		ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
		err := l.store.Insert(ctx, rec)
		cancel()

		if err == nil {
			continue
		}

		// Captured, never propagated: a failed write only degrades
		// metrics completeness.
		metrics.RequestLogFailures.Inc()
		stdErr := errors.NewLogWriteFailedError(err)
		l.logger.Error("request log write failed", map[string]interface{}{
			"requestId": rec.RequestID,
			"error":     err,
		})
		if l.notifier != nil {
			alertCtx, alertCancel := context.WithTimeout(context.Background(), l.timeout)
			l.notifier.PublishOperational(alertCtx, "request-log write failure",
				fmt.Sprintf("requestId=%s code=%s details=%s", rec.RequestID, stdErr.Code, stdErr.Details))
			alertCancel()
		}
	}
}
