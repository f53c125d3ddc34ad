// internal/engine/models.go
package engine

import "trip-recommender/internal/engine/results"

// Response is the payload returned to the routing layer for one
// recommendation call.
type Response struct {
	RequestID             string                 `json:"request_id"`
	Success               bool                   `json:"success"`
	Results               []results.ScoredResult `json:"results"`
	PrimaryCount          int                    `json:"primary_count"`
	RelaxedCount          int                    `json:"relaxed_count"`
	TotalTrips            int                    `json:"total_trips"`
	ScoreThresholds       results.Thresholds     `json:"score_thresholds"`
	ShowRefinementMessage bool                   `json:"show_refinement_message"`
}

// TopScore returns the best score in the ordered result list, 0 when empty.
func (r *Response) TopScore() float64 {
	if len(r.Results) == 0 {
		return 0
	}
	return r.Results[0].MatchScore
}
