// internal/engine/scoring/config.go
package scoring

import "fmt"

// Weights is the per-factor point allocation. The sum must equal 100 so a
// candidate satisfying every soft preference scores exactly 100.
type Weights struct {
	Type       float64
	Theme      float64
	Budget     float64
	Duration   float64
	Difficulty float64
}

func (w Weights) Total() float64 {
	return w.Type + w.Theme + w.Budget + w.Duration + w.Difficulty
}

// DefaultWeights is the weight set the scenario corpus is tuned against.
func DefaultWeights() Weights {
	return Weights{
		Type:       20,
		Theme:      25,
		Budget:     25,
		Duration:   20,
		Difficulty: 10,
	}
}

// Config is the immutable scoring configuration. It is passed in at
// construction, never mutated, so different weight sets can run
// side by side without cross-request interference.
type Config struct {
	Weights Weights

	// BudgetTolerance is the fraction over budget at which budget credit
	// decays to zero (0.2 = zero credit at 20% over).
	BudgetTolerance float64

	// DurationTolerance is the distance in days outside the requested
	// window at which duration credit decays to zero.
	DurationTolerance int
}

func DefaultConfig() Config {
	return Config{
		Weights:           DefaultWeights(),
		BudgetTolerance:   0.2,
		DurationTolerance: 7,
	}
}

// Validate rejects weight sets that break the 0-100 score contract.
func (c Config) Validate() error {
	if total := c.Weights.Total(); total != 100 {
		return fmt.Errorf("scoring weights must sum to 100, got %.2f", total)
	}
	if c.BudgetTolerance <= 0 {
		return fmt.Errorf("budget tolerance must be positive, got %.2f", c.BudgetTolerance)
	}
	if c.DurationTolerance <= 0 {
		return fmt.Errorf("duration tolerance must be positive, got %d", c.DurationTolerance)
	}
	return nil
}
