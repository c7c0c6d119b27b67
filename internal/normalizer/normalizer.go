// Package normalizer converts raw tabular rows into canonical Transaction
// records. Column detection happens upstream; the normalizer only consumes a
// caller-supplied ColumnMapping describing which columns play which role.
package normalizer

import (
	"fmt"
	"strings"

	"bank-reconciliation-service/internal/models"
	"bank-reconciliation-service/pkg/logger"

	"github.com/shopspring/decimal"
)

// RawRow is one extracted tabular row, keyed by column header
type RawRow map[string]string

// ColumnMapping assigns roles to the columns of a raw row set. Either
// AmountColumn or the DebitColumn/CreditColumn pair must be set; Reference
// and Check columns are optional.
type ColumnMapping struct {
	DateColumn      string `json:"dateColumn"`
	AmountColumn    string `json:"amountColumn,omitempty"`
	DebitColumn     string `json:"debitColumn,omitempty"`
	CreditColumn    string `json:"creditColumn,omitempty"`
	ReferenceColumn string `json:"referenceColumn,omitempty"`
	CheckColumn     string `json:"checkColumn,omitempty"`
}

// Validate checks that the mapping names enough columns to produce amounts
func (m *ColumnMapping) Validate() error {
	if strings.TrimSpace(m.DateColumn) == "" {
		return fmt.Errorf("date column cannot be empty")
	}

	hasAmount := strings.TrimSpace(m.AmountColumn) != ""
	hasSplit := strings.TrimSpace(m.DebitColumn) != "" || strings.TrimSpace(m.CreditColumn) != ""
	if !hasAmount && !hasSplit {
		return fmt.Errorf("either an amount column or debit/credit columns are required")
	}

	return nil
}

// HasExplicitAmount reports whether a single signed amount column is mapped
func (m *ColumnMapping) HasExplicitAmount() bool {
	return strings.TrimSpace(m.AmountColumn) != ""
}

// Normalizer builds canonical transactions from raw rows
type Normalizer struct {
	mapping *ColumnMapping
	log     logger.Logger
}

// New creates a normalizer for the given column mapping
func New(mapping *ColumnMapping) (*Normalizer, error) {
	if mapping == nil {
		return nil, fmt.Errorf("column mapping is required")
	}
	if err := mapping.Validate(); err != nil {
		return nil, fmt.Errorf("invalid column mapping: %w", err)
	}

	return &Normalizer{
		mapping: mapping,
		log:     logger.WithComponent("normalizer"),
	}, nil
}

// Normalize converts raw rows into an ordered transaction list for one side.
// Input order is preserved because it determines match precedence later.
//
// Rows whose amount is zero or unparseable are dropped; they carry no
// reconciliation value and would distort tie-breaking. Rows with an
// unparseable date are kept with a zero date so the engine can classify
// them, rather than silently vanishing.
func (n *Normalizer) Normalize(rows []RawRow, side models.Side) []*models.Transaction {
	transactions := make([]*models.Transaction, 0, len(rows))
	dropped := 0

	for _, row := range rows {
		amount := n.extractAmount(row)
		if amount.IsZero() {
			dropped++
			continue
		}

		date, err := models.ParseDate(row[n.mapping.DateColumn])
		if err != nil {
			n.log.WithFields(logger.Fields{
				"side":  side,
				"value": row[n.mapping.DateColumn],
			}).Debug("row has unparseable date")
		}

		transactions = append(transactions, models.NewTransaction(
			date,
			amount,
			n.columnValue(row, n.mapping.ReferenceColumn),
			n.columnValue(row, n.mapping.CheckColumn),
			side,
		))
	}

	if dropped > 0 {
		n.log.WithFields(logger.Fields{
			"side":    side,
			"dropped": dropped,
			"kept":    len(transactions),
		}).Info("dropped zero-amount rows during normalization")
	}

	return transactions
}

// extractAmount computes the signed amount for a row. With an explicit amount
// column the cell value is used as-is; otherwise debit and credit columns are
// combined (debit positive, credit negative). Malformed values yield zero,
// which the caller drops.
func (n *Normalizer) extractAmount(row RawRow) decimal.Decimal {
	if n.mapping.HasExplicitAmount() {
		amount, err := models.ParseDecimal(row[n.mapping.AmountColumn])
		if err != nil {
			return decimal.Zero
		}
		return amount
	}

	debit := n.parseOptionalAmount(row, n.mapping.DebitColumn)
	if !debit.IsZero() {
		return debit
	}

	credit := n.parseOptionalAmount(row, n.mapping.CreditColumn)
	if !credit.IsZero() {
		return credit.Neg()
	}

	return decimal.Zero
}

func (n *Normalizer) parseOptionalAmount(row RawRow, column string) decimal.Decimal {
	if strings.TrimSpace(column) == "" {
		return decimal.Zero
	}
	amount, err := models.ParseDecimal(row[column])
	if err != nil {
		return decimal.Zero
	}
	return amount
}

func (n *Normalizer) columnValue(row RawRow, column string) string {
	if strings.TrimSpace(column) == "" {
		return ""
	}
	return strings.TrimSpace(row[column])
}
