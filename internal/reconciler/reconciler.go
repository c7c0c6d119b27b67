// Package reconciler orchestrates a reconciliation run: it walks the bank
// transaction list in input order against the shared pool of unconsumed
// ledger transactions, classifies every record into one of the five outcome
// states and produces the ordered result list with summary counts.
//
// The algorithm is deliberately order-dependent and greedy: an earlier bank
// transaction can consume a ledger candidate a later one would also have
// matched. Consumed state lives in a per-run boolean slice owned by the
// engine for the duration of one Reconcile call; transactions themselves are
// never mutated.
//
// Ledger entries tied in an AMBIGUOUS result are not consumed, so the same
// ledger transaction can appear as a tied candidate of more than one bank
// transaction. This surfaces every plausible option to the reviewer instead
// of hiding later ones.
package reconciler

import (
	"time"

	"bank-reconciliation-service/internal/matcher"
	"bank-reconciliation-service/internal/models"
	"bank-reconciliation-service/pkg/errors"
	"bank-reconciliation-service/pkg/logger"
)

// Reason strings for non-matched classifications. The report renderer
// depends on these being stable.
const (
	ReasonInvalid            = "Invalid date or zero amount"
	ReasonBankUnreconciled   = "No matching ledger entry found."
	ReasonLedgerUnreconciled = "No matching bank entry found."
)

// Engine runs reconciliation passes. It is stateless between runs and safe
// to reuse; each Reconcile call owns its own consumed-marker state.
type Engine struct {
	matcher *matcher.Matcher
	log     logger.Logger
}

// NewEngine creates a reconciliation engine with the given matching
// tolerances. A nil config selects the defaults (exact amounts, three-day
// date window).
func NewEngine(config *matcher.Config) (*Engine, error) {
	if config == nil {
		config = matcher.DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "matching", config.String(), err)
	}

	return &Engine{
		matcher: matcher.New(config),
		log:     logger.WithComponent("reconciler"),
	}, nil
}

// Result is the complete output of one reconciliation run: bank-driven
// results first in bank input order, then leftover ledger results in ledger
// input order, plus the summary counts.
type Result struct {
	Results     []*models.MatchResult `json:"results"`
	Summary     models.Summary        `json:"summary"`
	ProcessedAt time.Time             `json:"processedAt"`
}

// Reconcile classifies every bank transaction and every leftover ledger
// transaction. Empty or nil slices are valid input (everything on the other
// side comes back unreconciled); a nil transaction inside a list is a
// structural failure the normalizer should have prevented.
//
// The computation is pure and synchronous: same input and tolerances always
// produce byte-identical output ordering and classification.
func (e *Engine) Reconcile(bank, ledger []*models.Transaction) (*Result, error) {
	for i, tx := range bank {
		if tx == nil {
			return nil, errors.ReconciliationError(errors.CodeNilInput, "reconcile", nil).
				WithContext("side", models.SideBank).
				WithContext("index", i)
		}
	}
	for i, tx := range ledger {
		if tx == nil {
			return nil, errors.ReconciliationError(errors.CodeNilInput, "reconcile", nil).
				WithContext("side", models.SideLedger).
				WithContext("index", i)
		}
	}

	result := &Result{
		Results:     make([]*models.MatchResult, 0, len(bank)+len(ledger)),
		Summary:     models.Summary{TotalBank: len(bank), TotalLedger: len(ledger)},
		ProcessedAt: time.Now(),
	}

	consumed := make([]bool, len(ledger))

	for _, b := range bank {
		r := e.classify(b, ledger, consumed)
		result.Results = append(result.Results, r)
		result.Summary.Add(r.Status)
	}

	for i, l := range ledger {
		if consumed[i] {
			continue
		}
		r := &models.MatchResult{
			Status:     models.StatusLedgerUnreconciled,
			Ledger:     l,
			Confidence: models.ConfidenceNone,
			Reason:     ReasonLedgerUnreconciled,
		}
		result.Results = append(result.Results, r)
		result.Summary.Add(r.Status)
	}

	e.log.WithFields(logger.Fields{
		"total_bank":          result.Summary.TotalBank,
		"total_ledger":        result.Summary.TotalLedger,
		"matched":             result.Summary.Matched,
		"ambiguous":           result.Summary.Ambiguous,
		"bank_unreconciled":   result.Summary.BankUnreconciled,
		"ledger_unreconciled": result.Summary.LedgerUnreconciled,
		"invalid":             result.Summary.Invalid,
	}).Info("reconciliation run completed")

	return result, nil
}

// classify determines the terminal state for one bank transaction, marking
// the chosen ledger entry consumed when a match is selected.
func (e *Engine) classify(b *models.Transaction, ledger []*models.Transaction, consumed []bool) *models.MatchResult {
	if !b.HasValidDate() || b.Amount.IsZero() {
		return &models.MatchResult{
			Status:     models.StatusInvalid,
			Bank:       b,
			Confidence: models.ConfidenceNone,
			Reason:     ReasonInvalid,
		}
	}

	candidates := e.matcher.FindCandidates(b, ledger, consumed)
	if len(candidates) == 0 {
		return &models.MatchResult{
			Status:     models.StatusBankUnreconciled,
			Bank:       b,
			Confidence: models.ConfidenceNone,
			Reason:     ReasonBankUnreconciled,
		}
	}

	resolution := e.matcher.Resolve(candidates)

	if resolution.Selected != nil {
		consumed[resolution.Selected.LedgerIndex] = true
		return &models.MatchResult{
			Status:     models.StatusMatched,
			Bank:       b,
			Ledger:     resolution.Selected.Ledger,
			Confidence: resolution.Confidence,
			Reason:     resolution.Reason,
			DateDiff:   resolution.Selected.DateDiff,
			AmountDiff: resolution.Selected.AmountDiff,
			CheckMatch: resolution.Selected.CheckMatch,
		}
	}

	// Tied candidates stay unconsumed so later bank transactions can still
	// claim them.
	tied := make([]*models.Transaction, 0, len(resolution.Tied))
	for _, c := range resolution.Tied {
		tied = append(tied, c.Ledger)
	}

	return &models.MatchResult{
		Status:     models.StatusAmbiguous,
		Bank:       b,
		Confidence: resolution.Confidence,
		Reason:     resolution.Reason,
		Candidates: tied,
	}
}
