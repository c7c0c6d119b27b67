// Package models defines the canonical data types shared across the
// reconciliation pipeline: normalized transactions, match candidates,
// classified match results and the run summary.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the direction of a transaction. It is always
// derived from the sign of the amount and never stored independently.
type TransactionType string

const (
	// TransactionTypeDebit represents a debit (non-negative amount)
	TransactionTypeDebit TransactionType = "DEBIT"
	// TransactionTypeCredit represents a credit (negative amount)
	TransactionTypeCredit TransactionType = "CREDIT"
)

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// Side identifies which source collection a transaction came from
type Side string

const (
	// SideBank marks transactions taken from the bank statement
	SideBank Side = "BANK"
	// SideLedger marks transactions taken from the general ledger
	SideLedger Side = "LEDGER"
)

// Transaction is a normalized transaction record. Instances are created once
// by the normalizer and are immutable afterwards; match state is tracked
// outside the record by the reconciliation engine.
//
// Sign convention: a non-negative amount is a debit, a negative amount is a
// credit. Type() computes the direction from the sign so the two can never
// contradict each other.
type Transaction struct {
	Date      time.Time       `json:"date"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference"`
	Check     string          `json:"check,omitempty"`
	Side      Side            `json:"side"`
}

// NewTransaction creates a new Transaction instance
func NewTransaction(date time.Time, amount decimal.Decimal, reference, check string, side Side) *Transaction {
	return &Transaction{
		Date:      date,
		Amount:    amount,
		Reference: reference,
		Check:     check,
		Side:      side,
	}
}

// Type returns the transaction direction derived from the amount sign
func (t *Transaction) Type() TransactionType {
	if t.Amount.IsNegative() {
		return TransactionTypeCredit
	}
	return TransactionTypeDebit
}

// AbsoluteAmount returns the absolute value of the transaction amount
func (t *Transaction) AbsoluteAmount() decimal.Decimal {
	return t.Amount.Abs()
}

// HasCheck reports whether the transaction carries a check number. Empty
// string and absent are equivalent.
func (t *Transaction) HasCheck() bool {
	return strings.TrimSpace(t.Check) != ""
}

// HasValidDate reports whether the transaction date could be parsed
func (t *Transaction) HasValidDate() bool {
	return !t.Date.IsZero()
}

// String returns a string representation of the Transaction
func (t *Transaction) String() string {
	return fmt.Sprintf("Transaction{Side: %s, Date: %s, Amount: %s, Type: %s, Ref: %q}",
		t.Side, t.Date.Format("2006-01-02"), t.Amount.String(), t.Type(), t.Reference)
}

// MarshalJSON implements custom JSON marshaling for Transaction so amounts
// serialize as decimal strings and the derived type is included.
func (t *Transaction) MarshalJSON() ([]byte, error) {
	type Alias Transaction
	var date string
	if !t.Date.IsZero() {
		date = t.Date.Format("2006-01-02")
	}
	return json.Marshal(&struct {
		Date   string          `json:"date"`
		Amount string          `json:"amount"`
		Type   TransactionType `json:"type"`
		*Alias
	}{
		Date:   date,
		Amount: t.Amount.String(),
		Type:   t.Type(),
		Alias:  (*Alias)(t),
	})
}

// DateDiffDays returns the absolute whole-day difference between the dates
// of two transactions. Times of day are ignored: both dates are truncated to
// midnight UTC before comparison, so sub-day timestamps never produce
// fractional differences.
func (t *Transaction) DateDiffDays(other *Transaction) int {
	return DateDiffDays(t.Date, other.Date)
}

// DateOnly truncates a time to midnight UTC, discarding the time of day
func DateOnly(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateDiffDays returns the absolute difference between two dates in whole days
func DateDiffDays(a, b time.Time) int {
	diff := DateOnly(a).Sub(DateOnly(b))
	if diff < 0 {
		diff = -diff
	}
	return int(diff / (24 * time.Hour))
}

// MatchCandidate references one ledger transaction that passed the candidate
// filter for a bank transaction, together with the derived comparison values
// the tie-break rules operate on. Candidates are ephemeral; they live only
// for the classification of a single bank transaction.
type MatchCandidate struct {
	Ledger      *Transaction
	LedgerIndex int
	DateDiff    int
	AmountDiff  decimal.Decimal
	CheckMatch  bool
}

// MatchStatus is the closed set of classification outcomes. Every bank
// transaction and every leftover ledger transaction terminates in exactly
// one of these states.
type MatchStatus string

const (
	// StatusMatched means exactly one ledger entry was selected for the bank entry
	StatusMatched MatchStatus = "MATCHED"
	// StatusAmbiguous means multiple ledger entries tied after all tie-breaks
	StatusAmbiguous MatchStatus = "AMBIGUOUS"
	// StatusBankUnreconciled means no ledger entry was compatible with the bank entry
	StatusBankUnreconciled MatchStatus = "BANK_UNRECONCILED"
	// StatusLedgerUnreconciled means the ledger entry was never claimed by any bank entry
	StatusLedgerUnreconciled MatchStatus = "LEDGER_UNRECONCILED"
	// StatusInvalid means the bank entry had an unparseable date or zero amount
	StatusInvalid MatchStatus = "INVALID"
)

// String returns the string representation of MatchStatus
func (s MatchStatus) String() string {
	return string(s)
}

// IsValid checks if the match status is one of the five known states
func (s MatchStatus) IsValid() bool {
	switch s {
	case StatusMatched, StatusAmbiguous, StatusBankUnreconciled, StatusLedgerUnreconciled, StatusInvalid:
		return true
	default:
		return false
	}
}

// Confidence grades how strong the evidence for a classification is
type Confidence string

const (
	// ConfidenceHigh marks exact matches (same date and amount, or a unique check match)
	ConfidenceHigh Confidence = "HIGH"
	// ConfidenceMedium marks matches selected within tolerances or by date proximity
	ConfidenceMedium Confidence = "MEDIUM"
	// ConfidenceReview marks ambiguous results that need a human decision
	ConfidenceReview Confidence = "REVIEW_REQUIRED"
	// ConfidenceNone applies to unreconciled and invalid records
	ConfidenceNone Confidence = "N/A"
)

// String returns the string representation of Confidence
func (c Confidence) String() string {
	return string(c)
}

// MatchResult is one classified record in the reconciliation output.
// Bank is nil only for LEDGER_UNRECONCILED results; Ledger is set for
// MATCHED results and carries the leftover entry for LEDGER_UNRECONCILED
// results. For AMBIGUOUS results, Candidates retains all tied ledger
// transactions for manual review.
type MatchResult struct {
	Status     MatchStatus     `json:"status"`
	Bank       *Transaction    `json:"bank,omitempty"`
	Ledger     *Transaction    `json:"ledger,omitempty"`
	Confidence Confidence      `json:"confidence"`
	Reason     string          `json:"reason"`
	DateDiff   int             `json:"dateDiff,omitempty"`
	AmountDiff decimal.Decimal `json:"amountDiff"`
	CheckMatch bool            `json:"checkMatch,omitempty"`
	Candidates []*Transaction  `json:"candidates,omitempty"`
}

// Summary aggregates per-status counts for one reconciliation run
type Summary struct {
	Matched            int `json:"matched"`
	BankUnreconciled   int `json:"bankUnreconciled"`
	LedgerUnreconciled int `json:"ledgerUnreconciled"`
	Ambiguous          int `json:"ambiguous"`
	Invalid            int `json:"invalid"`
	TotalBank          int `json:"totalBank"`
	TotalLedger        int `json:"totalLedger"`
}

// Add counts one result status into the summary
func (s *Summary) Add(status MatchStatus) {
	switch status {
	case StatusMatched:
		s.Matched++
	case StatusAmbiguous:
		s.Ambiguous++
	case StatusBankUnreconciled:
		s.BankUnreconciled++
	case StatusLedgerUnreconciled:
		s.LedgerUnreconciled++
	case StatusInvalid:
		s.Invalid++
	}
}

// ParseDecimal parses a decimal amount from a raw cell value. Currency
// symbols, thousand separators and surrounding parentheses (accounting
// negative notation) are tolerated.
func ParseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("amount string cannot be empty")
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal format %q: %w", s, err)
	}

	if negative {
		d = d.Neg()
	}
	return d, nil
}

// dateFormats lists the layouts tried when parsing dates from tabular input,
// ordered by how commonly they appear in bank exports.
var dateFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006",
	"02-01-2006",
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
}

// ParseDate attempts to parse a date from a raw cell value using multiple
// common layouts. The zero time is returned with an error when no layout
// applies.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("date string cannot be empty")
	}

	var lastErr error
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date %q: %w", s, lastErr)
}
