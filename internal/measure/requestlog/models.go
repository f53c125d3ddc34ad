// internal/measure/requestlog/models.go
package requestlog

import "time"

// Request outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeEmpty   = "empty"
	OutcomeError   = "error"
)

// Record is one row per recommendation call. Written once, never updated.
type Record struct {
	ID             string    `json:"id"`
	RequestID      string    `json:"request_id"`
	CreatedAt      time.Time `json:"created_at"`
	Preferences    string    `json:"preferences"` // serialized canonical preferences
	CandidateCount int       `json:"candidate_count"`
	PrimaryCount   int       `json:"primary_count"`
	RelaxedCount   int       `json:"relaxed_count"`
	TopScore       float64   `json:"top_score"`
	LatencyMs      int64     `json:"latency_ms"`
	Outcome        string    `json:"outcome"`
}
