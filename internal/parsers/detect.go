package parsers

import (
	"strings"

	"bank-reconciliation-service/internal/normalizer"
	"bank-reconciliation-service/pkg/errors"
)

// Column role keyword lists, ordered by specificity. Detection is fuzzy
// substring matching on lowercased headers: the first header containing one
// of the keywords takes the role. The heuristic is a convenience for the CLI
// and HTTP surfaces; callers with known formats should supply an explicit
// ColumnMapping instead.
var (
	dateKeywords      = []string{"date", "posted", "posting"}
	amountKeywords    = []string{"amount", "value"}
	debitKeywords     = []string{"debit", "withdrawal"}
	creditKeywords    = []string{"credit", "deposit"}
	referenceKeywords = []string{"description", "reference", "memo", "narrative", "details", "payee"}
	checkKeywords     = []string{"check", "cheque", "chk", "doc"}
)

// DetectColumns infers a ColumnMapping from a CSV header row. It prefers a
// single signed amount column; when none is found it falls back to separate
// debit/credit columns. An error is returned when the headers cannot supply
// a date column and at least one amount source.
func DetectColumns(headers []string) (*normalizer.ColumnMapping, error) {
	mapping := &normalizer.ColumnMapping{
		DateColumn:      findColumn(headers, dateKeywords),
		ReferenceColumn: findColumn(headers, referenceKeywords),
		CheckColumn:     findColumn(headers, checkKeywords),
	}

	// A column named e.g. "Debit Amount" must not be mistaken for the
	// signed amount column, so debit/credit detection runs first and wins.
	debit := findColumn(headers, debitKeywords)
	credit := findColumn(headers, creditKeywords)
	if debit != "" || credit != "" {
		mapping.DebitColumn = debit
		mapping.CreditColumn = credit
	} else {
		mapping.AmountColumn = findColumn(headers, amountKeywords)
	}

	if err := mapping.Validate(); err != nil {
		return nil, errors.ParseError(errors.CodeMissingColumn, "headers", 0, err.Error(), err).
			WithSuggestion("supply an explicit column mapping when headers are non-standard")
	}

	return mapping, nil
}

// findColumn returns the first header containing any of the keywords as a
// case-insensitive substring, or empty when none matches.
func findColumn(headers []string, keywords []string) string {
	for _, keyword := range keywords {
		for _, header := range headers {
			if strings.Contains(strings.ToLower(strings.TrimSpace(header)), keyword) {
				return header
			}
		}
	}
	return ""
}
