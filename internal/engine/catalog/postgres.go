// internal/engine/catalog/postgres.go
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"trip-recommender/internal/common/logger"
)

// PostgresStore queries the catalog over database/sql.
type PostgresStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresStore(db *sql.DB, log logger.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "catalog-postgres"}),
	}
}

const candidateColumns = `
	o.id, o.trip_id, t.name, t.country_id, c.continent, t.trip_type_id,
	t.theme_ids, o.start_date, o.duration_days, o.price, o.spots_left,
	o.status, t.difficulty`

func (s *PostgresStore) Search(ctx context.Context, criteria Criteria) ([]Candidate, error) {
	where, args := buildWhere(criteria)

	query := fmt.Sprintf(`
		SELECT %s
		FROM trip_occurrences o
		JOIN trips t ON t.id = o.trip_id
		JOIN countries c ON c.id = t.country_id
		WHERE %s
		ORDER BY o.id`, candidateColumns, where)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("catalog search: %w", err)
	}
	defer rows.Close()

	var candidates []Candidate
	for rows.Next() {
		var cand Candidate
		var themeIDs pq.Int64Array
		err := rows.Scan(
			&cand.ID, &cand.TripID, &cand.Name, &cand.CountryID, &cand.Continent,
			&cand.TripTypeID, &themeIDs, &cand.StartDate, &cand.DurationDays,
			&cand.Price, &cand.SpotsLeft, &cand.Status, &cand.Difficulty,
		)
		if err != nil {
			return nil, fmt.Errorf("catalog scan: %w", err)
		}
		cand.ThemeIDs = []int64(themeIDs)
		candidates = append(candidates, cand)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog rows: %w", err)
	}

	s.logger.Debug("catalog search complete", map[string]interface{}{
		"candidates": len(candidates),
	})

	return candidates, nil
}

func (s *PostgresStore) CountActive(ctx context.Context) (int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM trip_occurrences
		WHERE status NOT IN ($1, $2)`, StatusFull, StatusCancelled).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("catalog count: %w", err)
	}
	return total, nil
}

func (s *PostgresStore) ContinentsForCountries(ctx context.Context, countryIDs []int64) ([]string, error) {
	if len(countryIDs) == 0 {
		return []string{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT continent
		FROM countries
		WHERE id = ANY($1)
		ORDER BY continent`, pq.Array(countryIDs))
	if err != nil {
		return nil, fmt.Errorf("continent lookup: %w", err)
	}
	defer rows.Close()

	var continents []string
	for rows.Next() {
		var continent string
		if err := rows.Scan(&continent); err != nil {
			return nil, fmt.Errorf("continent scan: %w", err)
		}
		continents = append(continents, continent)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("continent rows: %w", err)
	}

	return continents, nil
}

// buildWhere translates hard constraints into SQL. Full and cancelled
// occurrences are always excluded.
func buildWhere(criteria Criteria) (string, []interface{}) {
	clauses := []string{}
	args := []interface{}{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	clauses = append(clauses, fmt.Sprintf("o.status NOT IN (%s, %s)", arg(StatusFull), arg(StatusCancelled)))
	clauses = append(clauses, fmt.Sprintf("o.duration_days BETWEEN %s AND %s",
		arg(criteria.MinDuration), arg(criteria.MaxDuration)))

	if len(criteria.CountryIDs) > 0 && len(criteria.Continents) > 0 {
		clauses = append(clauses, fmt.Sprintf("(t.country_id = ANY(%s) OR c.continent = ANY(%s))",
			arg(pq.Array(criteria.CountryIDs)), arg(pq.Array(criteria.Continents))))
	} else if len(criteria.CountryIDs) > 0 {
		clauses = append(clauses, fmt.Sprintf("t.country_id = ANY(%s)", arg(pq.Array(criteria.CountryIDs))))
	} else if len(criteria.Continents) > 0 {
		clauses = append(clauses, fmt.Sprintf("c.continent = ANY(%s)", arg(pq.Array(criteria.Continents))))
	}

	if criteria.Year != 0 {
		clauses = append(clauses, fmt.Sprintf("EXTRACT(YEAR FROM o.start_date) = %s", arg(criteria.Year)))
	}
	if criteria.Month != 0 {
		clauses = append(clauses, fmt.Sprintf("EXTRACT(MONTH FROM o.start_date) = %s", arg(criteria.Month)))
	}

	return strings.Join(clauses, " AND "), args
}
