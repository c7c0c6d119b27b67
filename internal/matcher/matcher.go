package matcher

import (
	"fmt"

	"bank-reconciliation-service/internal/models"
)

// Matcher applies the candidate filter and tie-break rules for a single
// bank transaction against the ledger pool. It holds no per-run state;
// consumed tracking belongs to the reconciliation engine that drives it.
type Matcher struct {
	config *Config
}

// New creates a matcher with the given tolerances. A nil config selects the
// defaults.
func New(config *Config) *Matcher {
	if config == nil {
		config = DefaultConfig()
	}
	return &Matcher{config: config}
}

// Config returns a copy of the matcher configuration
func (m *Matcher) Config() *Config {
	return m.config.Clone()
}

// FindCandidates narrows the ledger pool to transactions compatible with the
// bank transaction. Ledger entries already consumed in this run, entries of
// the opposite direction, and entries outside the amount or date tolerances
// are excluded. The returned candidates preserve ledger order and carry the
// derived comparison values used by Resolve.
func (m *Matcher) FindCandidates(bank *models.Transaction, ledger []*models.Transaction, consumed []bool) []*models.MatchCandidate {
	var candidates []*models.MatchCandidate

	bankAbs := bank.AbsoluteAmount()
	for i, entry := range ledger {
		if consumed[i] {
			continue
		}

		if entry.Type() != bank.Type() {
			continue
		}

		amountDiff := bankAbs.Sub(entry.AbsoluteAmount()).Abs()
		if amountDiff.GreaterThan(m.config.AmountTolerance) {
			continue
		}

		dateDiff := bank.DateDiffDays(entry)
		if dateDiff > m.config.DateToleranceDays {
			continue
		}

		candidates = append(candidates, &models.MatchCandidate{
			Ledger:      entry,
			LedgerIndex: i,
			DateDiff:    dateDiff,
			AmountDiff:  amountDiff,
			CheckMatch:  checkMatch(bank, entry),
		})
	}

	return candidates
}

// Resolution is the outcome of tie-breaking over one candidate set. Exactly
// one of Selected and Tied is populated: Selected when a single winner was
// determined, Tied when the candidates could not be separated.
type Resolution struct {
	Selected   *models.MatchCandidate
	Confidence models.Confidence
	Reason     string
	Tied       []*models.MatchCandidate
}

// Resolve selects at most one candidate using the ordered tie-break rules.
// It must be called with a non-empty candidate set; empty sets are the
// caller's BANK_UNRECONCILED case.
//
// A single candidate wins directly: HIGH confidence when it agrees on both
// date and amount exactly, MEDIUM otherwise. With multiple candidates, a
// unique check-number match wins at HIGH confidence; failing that, a unique
// minimum date distance wins at MEDIUM. Candidates that still tie are
// returned for review.
func (m *Matcher) Resolve(candidates []*models.MatchCandidate) Resolution {
	if len(candidates) == 1 {
		confidence := singleCandidateConfidence(candidates[0])
		reason := "Exact match on date and amount"
		if confidence == models.ConfidenceMedium {
			reason = "Matched within date and amount tolerance"
		}
		return Resolution{
			Selected:   candidates[0],
			Confidence: confidence,
			Reason:     reason,
		}
	}

	// Check numbers are intentional identifiers, so a unique check match
	// beats any date heuristic.
	if winner := uniqueCheckMatch(candidates); winner != nil {
		return Resolution{
			Selected:   winner,
			Confidence: models.ConfidenceHigh,
			Reason:     "Matched by check number",
		}
	}

	// Date proximity runs over all original candidates, not just the ones
	// that failed the check tie-break.
	nearest := nearestByDate(candidates)
	if len(nearest) == 1 {
		return Resolution{
			Selected:   nearest[0],
			Confidence: models.ConfidenceMedium,
			Reason:     "Matched by date proximity",
		}
	}

	return Resolution{
		Confidence: models.ConfidenceReview,
		Reason:     fmt.Sprintf("%d equally plausible ledger entries; manual review required", len(nearest)),
		Tied:       nearest,
	}
}

// checkMatch reports whether both transactions carry the same non-empty
// check number.
func checkMatch(bank, ledger *models.Transaction) bool {
	return bank.HasCheck() && ledger.HasCheck() && bank.Check == ledger.Check
}

func singleCandidateConfidence(c *models.MatchCandidate) models.Confidence {
	if c.DateDiff == 0 && c.AmountDiff.IsZero() {
		return models.ConfidenceHigh
	}
	return models.ConfidenceMedium
}

// uniqueCheckMatch returns the candidate with a check match if exactly one
// candidate has one, nil otherwise.
func uniqueCheckMatch(candidates []*models.MatchCandidate) *models.MatchCandidate {
	var winner *models.MatchCandidate
	for _, c := range candidates {
		if !c.CheckMatch {
			continue
		}
		if winner != nil {
			return nil
		}
		winner = c
	}
	return winner
}

// nearestByDate filters candidates to those achieving the minimum date
// distance, preserving ledger order.
func nearestByDate(candidates []*models.MatchCandidate) []*models.MatchCandidate {
	minDiff := candidates[0].DateDiff
	for _, c := range candidates[1:] {
		if c.DateDiff < minDiff {
			minDiff = c.DateDiff
		}
	}

	var nearest []*models.MatchCandidate
	for _, c := range candidates {
		if c.DateDiff == minDiff {
			nearest = append(nearest, c)
		}
	}
	return nearest
}
