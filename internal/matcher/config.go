// Package matcher implements the candidate filter and tie-break resolver of
// the reconciliation engine.
//
// For each bank transaction the matcher narrows the unconsumed ledger pool
// to compatible candidates (same direction, amount within tolerance, date
// within tolerance) and then resolves multiple candidates with ordered
// deterministic rules:
//
//  1. A unique check-number match wins outright (strongest signal).
//  2. Otherwise the unique nearest date wins.
//  3. Remaining ties are surfaced as ambiguous for manual review.
package matcher

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Config holds the tolerance parameters for candidate filtering.
type Config struct {
	// DateToleranceDays is the maximum whole-day difference between a bank
	// and ledger transaction for the pair to be considered a candidate.
	DateToleranceDays int `json:"dateToleranceDays"`

	// AmountTolerance is the maximum allowed difference between the
	// absolute amounts of a bank and ledger transaction. Zero requires an
	// exact amount match.
	AmountTolerance decimal.Decimal `json:"amountTolerance"`
}

// DefaultConfig returns the standard matching tolerances: exact amounts,
// dates up to three days apart.
func DefaultConfig() *Config {
	return &Config{
		DateToleranceDays: 3,
		AmountTolerance:   decimal.Zero,
	}
}

// StrictConfig returns tolerances for same-day exact matching only
func StrictConfig() *Config {
	return &Config{
		DateToleranceDays: 0,
		AmountTolerance:   decimal.Zero,
	}
}

// RelaxedConfig returns loose tolerances for exploratory matching
func RelaxedConfig() *Config {
	return &Config{
		DateToleranceDays: 7,
		AmountTolerance:   decimal.NewFromFloat(0.05),
	}
}

// Validate checks if the matching configuration is valid
func (c *Config) Validate() error {
	if c.DateToleranceDays < 0 {
		return fmt.Errorf("date tolerance days cannot be negative: %d", c.DateToleranceDays)
	}

	if c.AmountTolerance.IsNegative() {
		return fmt.Errorf("amount tolerance cannot be negative: %s", c.AmountTolerance)
	}

	return nil
}

// Clone creates a copy of the configuration
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	return &Config{
		DateToleranceDays: c.DateToleranceDays,
		AmountTolerance:   c.AmountTolerance,
	}
}

// String returns a human-readable description of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{DateTolerance: %d days, AmountTolerance: %s}",
		c.DateToleranceDays, c.AmountTolerance)
}
