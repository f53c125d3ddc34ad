// internal/engine/catalog/cache.go
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"trip-recommender/internal/common/logger"
)

// CachedStore wraps a Store with redis cache-aside for the lookups that
// rarely change: continent mappings and the active catalog total.
// Candidate searches always pass through. Cache failures degrade to the
// inner store, never to an error.
type CachedStore struct {
	inner  Store
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedStore(inner Store, rdb *redis.Client, ttl time.Duration, log logger.Logger) *CachedStore {
	return &CachedStore{
		inner:  inner,
		redis:  rdb,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "catalog-cache"}),
	}
}

func (s *CachedStore) Search(ctx context.Context, criteria Criteria) ([]Candidate, error) {
	return s.inner.Search(ctx, criteria)
}

const totalActiveKey = "catalog:total_active"

func (s *CachedStore) CountActive(ctx context.Context) (int, error) {
	if val, err := s.redis.Get(ctx, totalActiveKey).Result(); err == nil {
		if total, err := strconv.Atoi(val); err == nil {
			return total, nil
		}
	}

	total, err := s.inner.CountActive(ctx)
	if err != nil {
		return 0, err
	}

	if err := s.redis.Set(ctx, totalActiveKey, strconv.Itoa(total), s.ttl).Err(); err != nil {
		s.logger.Warn("cache write failed", map[string]interface{}{
			"key":   totalActiveKey,
			"error": err,
		})
	}

	return total, nil
}

func (s *CachedStore) ContinentsForCountries(ctx context.Context, countryIDs []int64) ([]string, error) {
	if len(countryIDs) == 0 {
		return []string{}, nil
	}

	key := continentsKey(countryIDs)
	if val, err := s.redis.Get(ctx, key).Result(); err == nil {
		var continents []string
		if err := json.Unmarshal([]byte(val), &continents); err == nil {
			return continents, nil
		}
	}

	continents, err := s.inner.ContinentsForCountries(ctx, countryIDs)
	if err != nil {
		return nil, err
	}

	data, _ := json.Marshal(continents)
	if err := s.redis.Set(ctx, key, data, s.ttl).Err(); err != nil {
		s.logger.Warn("cache write failed", map[string]interface{}{
			"key":   key,
			"error": err,
		})
	}

	return continents, nil
}

// continentsKey is stable because canonical preferences carry sorted ids.
func continentsKey(countryIDs []int64) string {
	parts := make([]string, len(countryIDs))
	for i, id := range countryIDs {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return fmt.Sprintf("catalog:continents:%s", strings.Join(parts, ","))
}
