// internal/engine/preferences/builder.go
package preferences

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"trip-recommender/internal/common/errors"
	"trip-recommender/internal/common/logger"
)

const (
	// Catalog duration bounds; requested windows are clamped into this range.
	MinCatalogDuration = 1
	MaxCatalogDuration = 60

	// MaxThemes is the number of theme ids kept from the request.
	MaxThemes = 3

	minYear = 2000
	maxYear = 2100
)

// Builder normalizes raw request input into canonical Preferences.
// Malformed optional fields are coerced to their most permissive valid
// interpretation rather than rejected; only a structurally unparseable
// payload fails.
type Builder struct {
	logger logger.Logger
}

func NewBuilder(log logger.Logger) *Builder {
	return &Builder{
		logger: log.WithFields(map[string]interface{}{"component": "preference-builder"}),
	}
}

// Build accepts either snake_case or camelCase field names; this is the
// single canonicalization point, so internal components see one shape only.
func (b *Builder) Build(raw map[string]interface{}) (*Preferences, error) {
	if raw == nil {
		raw = make(map[string]interface{})
	}

	prefs := &Preferences{
		ThemeIDs:    []int64{},
		CountryIDs:  []int64{},
		Continents:  []string{},
		MinDuration: MinCatalogDuration,
		MaxDuration: MaxCatalogDuration,
	}

	// Budget is the one field whose structural failure rejects the payload.
	if budgetRaw, ok := field(raw, "budget", "maxBudget", "max_budget"); ok && budgetRaw != nil {
		budget, err := parseFloat(budgetRaw)
		if err != nil {
			return nil, errors.NewValidationFailedError(fmt.Sprintf("budget is not numeric: %v", budgetRaw))
		}
		if budget > 0 {
			prefs.Budget = budget
		}
	}

	if typeRaw, ok := field(raw, "trip_type_id", "tripTypeId", "preferred_type_id", "preferredTypeId"); ok {
		if id, err := parseInt64(typeRaw); err == nil && id > 0 {
			prefs.TripTypeID = id
		}
	}

	if themesRaw, ok := field(raw, "theme_ids", "themeIds", "preferred_theme_ids", "preferredThemeIds"); ok {
		themes := parseInt64Array(themesRaw)
		if len(themes) > MaxThemes {
			themes = themes[:MaxThemes]
		}
		prefs.ThemeIDs = dedupeSorted(themes)
	}

	if countriesRaw, ok := field(raw, "country_ids", "countryIds"); ok {
		prefs.CountryIDs = dedupeSorted(parseInt64Array(countriesRaw))
	}

	if continentsRaw, ok := field(raw, "continents"); ok {
		prefs.Continents = dedupeStrings(parseStringArray(continentsRaw))
	}

	if minRaw, ok := field(raw, "min_duration", "minDuration"); ok {
		if days, err := parseInt(minRaw); err == nil && days > 0 {
			prefs.MinDuration = clampDuration(days)
		}
	}
	if maxRaw, ok := field(raw, "max_duration", "maxDuration"); ok {
		if days, err := parseInt(maxRaw); err == nil && days > 0 {
			prefs.MaxDuration = clampDuration(days)
		}
	}
	// Invariant: min <= max. An inverted window is read permissively, not rejected.
	if prefs.MinDuration > prefs.MaxDuration {
		prefs.MinDuration, prefs.MaxDuration = prefs.MaxDuration, prefs.MinDuration
	}

	if diffRaw, ok := field(raw, "difficulty"); ok {
		if level, err := parseInt(diffRaw); err == nil && level >= 1 && level <= 3 {
			prefs.Difficulty = level
		}
	}

	if yearRaw, ok := field(raw, "year", "target_year", "targetYear"); ok && !isWildcard(yearRaw) {
		if year, err := parseInt(yearRaw); err == nil && year >= minYear && year <= maxYear {
			prefs.Year = year
		}
	}

	if monthRaw, ok := field(raw, "month", "target_month", "targetMonth"); ok && !isWildcard(monthRaw) {
		if month, err := parseInt(monthRaw); err == nil && month >= 1 && month <= 12 {
			prefs.Month = month
		}
	}

	b.logger.Debug("preferences normalized", map[string]interface{}{
		"budget":     prefs.Budget,
		"tripTypeId": prefs.TripTypeID,
		"themeIds":   prefs.ThemeIDs,
		"countryIds": prefs.CountryIDs,
		"continents": prefs.Continents,
		"duration":   fmt.Sprintf("%d-%d", prefs.MinDuration, prefs.MaxDuration),
		"difficulty": prefs.Difficulty,
		"year":       prefs.Year,
		"month":      prefs.Month,
	})

	return prefs, nil
}

// field returns the first present key from the candidate names.
func field(raw map[string]interface{}, names ...string) (interface{}, bool) {
	for _, name := range names {
		if val, ok := raw[name]; ok {
			return val, true
		}
	}
	return nil, false
}

// isWildcard treats "all"/"any"/empty/zero as an absent date constraint.
func isWildcard(raw interface{}) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		s := strings.ToLower(strings.TrimSpace(v))
		return s == "" || s == "all" || s == "any" || s == "0"
	case float64:
		return v == 0
	case int:
		return v == 0
	}
	return false
}

func clampDuration(days int) int {
	if days < MinCatalogDuration {
		return MinCatalogDuration
	}
	if days > MaxCatalogDuration {
		return MaxCatalogDuration
	}
	return days
}

func parseFloat(raw interface{}) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	}
	return 0, fmt.Errorf("not a number: %T", raw)
}

func parseInt(raw interface{}) (int, error) {
	f, err := parseFloat(raw)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

func parseInt64(raw interface{}) (int64, error) {
	f, err := parseFloat(raw)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}

// parseInt64Array accepts []interface{}, []int, []float64 or a single
// numeric value; anything non-numeric inside is skipped.
func parseInt64Array(raw interface{}) []int64 {
	result := []int64{}

	switch v := raw.(type) {
	case []interface{}:
		for _, item := range v {
			if id, err := parseInt64(item); err == nil && id > 0 {
				result = append(result, id)
			}
		}
	case []int64:
		for _, id := range v {
			if id > 0 {
				result = append(result, id)
			}
		}
	case []int:
		for _, id := range v {
			if id > 0 {
				result = append(result, int64(id))
			}
		}
	case []float64:
		for _, f := range v {
			if f > 0 {
				result = append(result, int64(f))
			}
		}
	default:
		if id, err := parseInt64(raw); err == nil && id > 0 {
			result = append(result, id)
		}
	}

	return result
}

func parseStringArray(raw interface{}) []string {
	result := []string{}

	switch v := raw.(type) {
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				if trimmed := strings.TrimSpace(s); trimmed != "" {
					result = append(result, trimmed)
				}
			}
		}
	case []string:
		for _, s := range v {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				result = append(result, trimmed)
			}
		}
	case string:
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

func dedupeSorted(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func dedupeStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}
