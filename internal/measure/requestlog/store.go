// internal/measure/requestlog/store.go
package requestlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Store is the append-only log persistence interface. Insert is the only
// write path in the whole engine; ListByWindow serves the metrics
// aggregator.
type Store interface {
	Insert(ctx context.Context, rec Record) error
	ListByWindow(ctx context.Context, from, to time.Time) ([]Record, error)
}

// PostgresStore persists log records over database/sql.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Insert(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO recommendation_request_logs
			(id, request_id, created_at, preferences, candidate_count,
			 primary_count, relaxed_count, top_score, latency_ms, outcome)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rec.ID, rec.RequestID, rec.CreatedAt, rec.Preferences, rec.CandidateCount,
		rec.PrimaryCount, rec.RelaxedCount, rec.TopScore, rec.LatencyMs, rec.Outcome,
	)
	if err != nil {
		return fmt.Errorf("request log insert: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByWindow(ctx context.Context, from, to time.Time) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, request_id, created_at, preferences, candidate_count,
		       primary_count, relaxed_count, top_score, latency_ms, outcome
		FROM recommendation_request_logs
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at`, from, to)
	if err != nil {
		return nil, fmt.Errorf("request log query: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		err := rows.Scan(
			&rec.ID, &rec.RequestID, &rec.CreatedAt, &rec.Preferences, &rec.CandidateCount,
			&rec.PrimaryCount, &rec.RelaxedCount, &rec.TopScore, &rec.LatencyMs, &rec.Outcome,
		)
		if err != nil {
			return nil, fmt.Errorf("request log scan: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("request log rows: %w", err)
	}

	return records, nil
}
