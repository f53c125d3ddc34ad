// internal/engine/preferences/models.go
package preferences

// Preferences is the canonical, validated preference structure every
// downstream component operates on. Zero values mean "unset".
type Preferences struct {
	Budget      float64  `json:"budget"`
	TripTypeID  int64    `json:"trip_type_id"`
	ThemeIDs    []int64  `json:"theme_ids"`
	CountryIDs  []int64  `json:"country_ids"`
	Continents  []string `json:"continents"`
	MinDuration int      `json:"min_duration"`
	MaxDuration int      `json:"max_duration"`
	Difficulty  int      `json:"difficulty"`
	Year        int      `json:"year"`
	Month       int      `json:"month"`
}

// HasLocation reports whether any location constraint is set. An empty
// location set means "any location".
func (p Preferences) HasLocation() bool {
	return len(p.CountryIDs) > 0 || len(p.Continents) > 0
}

// HasDateWindow reports whether a year or month constraint is set.
func (p Preferences) HasDateWindow() bool {
	return p.Year != 0 || p.Month != 0
}
