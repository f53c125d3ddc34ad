// internal/engine/catalog/elastic.go
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	"trip-recommender/internal/common/logger"
)

// ElasticStore is the Elasticsearch-backed catalog query implementation.
// Documents are indexed with the same shape as Candidate plus start_year
// and start_month fields for date-window filtering.
type ElasticStore struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewElasticStore(client *elasticsearch.Client, index string, log logger.Logger) *ElasticStore {
	return &ElasticStore{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "catalog-elastic"}),
	}
}

const maxSearchSize = 1000

func (s *ElasticStore) Search(ctx context.Context, criteria Criteria) ([]Candidate, error) {
	queryBody := buildSearchQuery(criteria)

	body, _ := json.Marshal(queryBody)
	size := maxSearchSize
	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(strings.NewReader(string(body))),
		s.client.Search.WithSize(size),
		s.client.Search.WithSort("id:asc"),
	)
	if err != nil {
		return nil, fmt.Errorf("catalog search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("catalog search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source candidateDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("catalog search decode: %w", err)
	}

	candidates := make([]Candidate, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		candidates = append(candidates, hit.Source.toCandidate())
	}

	s.logger.Debug("catalog search complete", map[string]interface{}{
		"candidates": len(candidates),
	})

	return candidates, nil
}

func (s *ElasticStore) CountActive(ctx context.Context) (int, error) {
	body := `{"query":{"bool":{"must_not":[{"terms":{"status":["` +
		StatusFull + `","` + StatusCancelled + `"]}}]}}}`

	res, err := s.client.Count(
		s.client.Count.WithContext(ctx),
		s.client.Count.WithIndex(s.index),
		s.client.Count.WithBody(strings.NewReader(body)),
	)
	if err != nil {
		return 0, fmt.Errorf("catalog count: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, fmt.Errorf("catalog count: %s", res.Status())
	}

	var parsed struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("catalog count decode: %w", err)
	}
	return parsed.Count, nil
}

func (s *ElasticStore) ContinentsForCountries(ctx context.Context, countryIDs []int64) ([]string, error) {
	if len(countryIDs) == 0 {
		return []string{}, nil
	}

	queryBody := map[string]interface{}{
		"size": 0,
		"query": map[string]interface{}{
			"terms": map[string]interface{}{"country_id": countryIDs},
		},
		"aggs": map[string]interface{}{
			"continents": map[string]interface{}{
				"terms": map[string]interface{}{
					"field": "continent",
					"size":  10,
					"order": map[string]interface{}{"_key": "asc"},
				},
			},
		},
	}

	body, _ := json.Marshal(queryBody)
	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(strings.NewReader(string(body))),
	)
	if err != nil {
		return nil, fmt.Errorf("continent lookup: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("continent lookup: %s", res.Status())
	}

	var parsed struct {
		Aggregations struct {
			Continents struct {
				Buckets []struct {
					Key string `json:"key"`
				} `json:"buckets"`
			} `json:"continents"`
		} `json:"aggregations"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("continent lookup decode: %w", err)
	}

	continents := make([]string, 0, len(parsed.Aggregations.Continents.Buckets))
	for _, bucket := range parsed.Aggregations.Continents.Buckets {
		continents = append(continents, bucket.Key)
	}
	return continents, nil
}

// buildSearchQuery translates hard constraints into an ES bool query.
func buildSearchQuery(criteria Criteria) map[string]interface{} {
	filterClauses := []interface{}{
		map[string]interface{}{
			"range": map[string]interface{}{
				"duration_days": map[string]interface{}{
					"gte": criteria.MinDuration,
					"lte": criteria.MaxDuration,
				},
			},
		},
	}

	if len(criteria.CountryIDs) > 0 && len(criteria.Continents) > 0 {
		filterClauses = append(filterClauses, map[string]interface{}{
			"bool": map[string]interface{}{
				"should": []interface{}{
					map[string]interface{}{"terms": map[string]interface{}{"country_id": criteria.CountryIDs}},
					map[string]interface{}{"terms": map[string]interface{}{"continent": criteria.Continents}},
				},
				"minimum_should_match": 1,
			},
		})
	} else if len(criteria.CountryIDs) > 0 {
		filterClauses = append(filterClauses, map[string]interface{}{
			"terms": map[string]interface{}{"country_id": criteria.CountryIDs},
		})
	} else if len(criteria.Continents) > 0 {
		filterClauses = append(filterClauses, map[string]interface{}{
			"terms": map[string]interface{}{"continent": criteria.Continents},
		})
	}

	if criteria.Year != 0 {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"start_year": criteria.Year},
		})
	}
	if criteria.Month != 0 {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"start_month": criteria.Month},
		})
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": filterClauses,
				"must_not": []interface{}{
					map[string]interface{}{
						"terms": map[string]interface{}{"status": []string{StatusFull, StatusCancelled}},
					},
				},
			},
		},
	}
}

// candidateDoc is the indexed document shape.
type candidateDoc struct {
	ID           int64   `json:"id"`
	TripID       int64   `json:"trip_id"`
	Name         string  `json:"name"`
	CountryID    int64   `json:"country_id"`
	Continent    string  `json:"continent"`
	TripTypeID   int64   `json:"trip_type_id"`
	ThemeIDs     []int64 `json:"theme_ids"`
	StartDate    string  `json:"start_date"`
	DurationDays int     `json:"duration_days"`
	Price        float64 `json:"price"`
	SpotsLeft    int     `json:"spots_left"`
	Status       string  `json:"status"`
	Difficulty   int     `json:"difficulty"`
}

func (d candidateDoc) toCandidate() Candidate {
	startDate, _ := time.Parse("2006-01-02", d.StartDate)
	return Candidate{
		ID:           d.ID,
		TripID:       d.TripID,
		Name:         d.Name,
		CountryID:    d.CountryID,
		Continent:    d.Continent,
		TripTypeID:   d.TripTypeID,
		ThemeIDs:     d.ThemeIDs,
		StartDate:    startDate,
		DurationDays: d.DurationDays,
		Price:        d.Price,
		SpotsLeft:    d.SpotsLeft,
		Status:       d.Status,
		Difficulty:   d.Difficulty,
	}
}
