// internal/engine/catalog/store.go
package catalog

import "context"

// Store is the read-only query interface over the external catalog.
type Store interface {
	// Search returns the candidates matching the hard-filter criteria.
	Search(ctx context.Context, criteria Criteria) ([]Candidate, error)

	// CountActive returns the total number of bookable occurrences in the
	// catalog, used for "out of N trips" messaging.
	CountActive(ctx context.Context) (int, error)

	// ContinentsForCountries resolves the continents the given countries
	// belong to, used when relaxation widens location to continent level.
	ContinentsForCountries(ctx context.Context, countryIDs []int64) ([]string, error)
}
