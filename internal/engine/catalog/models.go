// internal/engine/catalog/models.go
package catalog

import (
	"time"

	"trip-recommender/internal/engine/preferences"
)

// Occurrence statuses as stored in the catalog. Full and cancelled
// occurrences are excluded from hard filtering by default.
const (
	StatusOpen       = "open"
	StatusGuaranteed = "guaranteed"
	StatusLastPlaces = "last_places"
	StatusFull       = "full"
	StatusCancelled  = "cancelled"
)

// Candidate is a bookable trip occurrence. The engine only reads it.
type Candidate struct {
	ID           int64     `json:"id"`
	TripID       int64     `json:"trip_id"`
	Name         string    `json:"name"`
	CountryID    int64     `json:"country_id"`
	Continent    string    `json:"continent"`
	TripTypeID   int64     `json:"trip_type_id"`
	ThemeIDs     []int64   `json:"theme_ids"`
	StartDate    time.Time `json:"start_date"`
	DurationDays int       `json:"duration_days"`
	Price        float64   `json:"price"`
	SpotsLeft    int       `json:"spots_left"`
	Status       string    `json:"status"`
	Difficulty   int       `json:"difficulty"`
}

// Criteria holds the hard constraints applied by the candidate filter.
// Soft preferences (budget, type, theme, difficulty) never appear here;
// they only affect scoring.
type Criteria struct {
	CountryIDs  []int64
	Continents  []string
	MinDuration int
	MaxDuration int
	Year        int // 0 = any
	Month       int // 0 = any
}

// CriteriaFromPreferences maps the hard-constraint subset of canonical
// preferences onto a catalog query.
func CriteriaFromPreferences(p *preferences.Preferences) Criteria {
	return Criteria{
		CountryIDs:  append([]int64(nil), p.CountryIDs...),
		Continents:  append([]string(nil), p.Continents...),
		MinDuration: p.MinDuration,
		MaxDuration: p.MaxDuration,
		Year:        p.Year,
		Month:       p.Month,
	}
}

// Clone returns an independent copy, used by the relaxation tiers so each
// widening step never mutates the primary criteria.
func (c Criteria) Clone() Criteria {
	out := c
	out.CountryIDs = append([]int64(nil), c.CountryIDs...)
	out.Continents = append([]string(nil), c.Continents...)
	return out
}

// HasLocation reports whether any location constraint remains.
func (c Criteria) HasLocation() bool {
	return len(c.CountryIDs) > 0 || len(c.Continents) > 0
}
