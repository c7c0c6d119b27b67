// Package reporter renders reconciliation results for human and machine
// consumers.
//
// Supported output formats:
//   - Console: tabular summary plus per-status sections for terminal display
//   - JSON: the full result structure for programmatic consumption
//   - CSV: one row per classified record for spreadsheet review
//
// Every format can reproduce, for each MATCHED result, both transactions'
// dates, amounts and references with the confidence grade, and for each
// AMBIGUOUS result the full list of tied ledger candidates.
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"bank-reconciliation-service/internal/models"
	"bank-reconciliation-service/internal/reconciler"
)

// Format represents the supported report output formats
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
	FormatCSV     Format = "csv"
)

// IsValid checks if the output format is supported
func (f Format) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// Config holds configuration options for report generation
type Config struct {
	Format Format `json:"format"`

	// Section toggles for the console format
	IncludeMatched   bool `json:"includeMatched"`
	IncludeAmbiguous bool `json:"includeAmbiguous"`
	IncludeUnmatched bool `json:"includeUnmatched"`
	IncludeInvalid   bool `json:"includeInvalid"`
}

// DefaultConfig returns a default report configuration
func DefaultConfig() *Config {
	return &Config{
		Format:           FormatConsole,
		IncludeMatched:   true,
		IncludeAmbiguous: true,
		IncludeUnmatched: true,
		IncludeInvalid:   true,
	}
}

// Validate validates the report configuration
func (c *Config) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}
	return nil
}

// Generator renders reconciliation results in the configured format
type Generator struct {
	config *Config
}

// NewGenerator creates a report generator. A nil config selects the
// console defaults.
func NewGenerator(config *Config) (*Generator, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}
	return &Generator{config: config}, nil
}

// Generate writes the report for a reconciliation result to the writer
func (g *Generator) Generate(result *reconciler.Result, w io.Writer) error {
	if result == nil {
		return fmt.Errorf("reconciliation result cannot be nil")
	}

	switch g.config.Format {
	case FormatConsole:
		return g.writeConsole(result, w)
	case FormatJSON:
		return g.writeJSON(result, w)
	case FormatCSV:
		return g.writeCSV(result, w)
	default:
		return fmt.Errorf("unsupported output format: %s", g.config.Format)
	}
}

func (g *Generator) writeConsole(result *reconciler.Result, w io.Writer) error {
	fmt.Fprintf(w, "RECONCILIATION REPORT\n")
	fmt.Fprintf(w, "Generated: %s\n\n", result.ProcessedAt.Format(time.RFC3339))

	s := result.Summary
	fmt.Fprintf(w, "=== SUMMARY ===\n")
	fmt.Fprintf(w, "%-22s %d\n", "Bank transactions:", s.TotalBank)
	fmt.Fprintf(w, "%-22s %d\n", "Ledger transactions:", s.TotalLedger)
	fmt.Fprintf(w, "%-22s %d\n", "Matched:", s.Matched)
	fmt.Fprintf(w, "%-22s %d\n", "Ambiguous:", s.Ambiguous)
	fmt.Fprintf(w, "%-22s %d\n", "Bank unreconciled:", s.BankUnreconciled)
	fmt.Fprintf(w, "%-22s %d\n", "Ledger unreconciled:", s.LedgerUnreconciled)
	fmt.Fprintf(w, "%-22s %d\n\n", "Invalid:", s.Invalid)

	if g.config.IncludeMatched && s.Matched > 0 {
		fmt.Fprintf(w, "=== MATCHED ===\n")
		for _, r := range result.Results {
			if r.Status != models.StatusMatched {
				continue
			}
			fmt.Fprintf(w, "  [%s] bank %s %s %q <-> ledger %s %s %q (%s)\n",
				r.Confidence,
				formatDate(r.Bank), r.Bank.Amount, r.Bank.Reference,
				formatDate(r.Ledger), r.Ledger.Amount, r.Ledger.Reference,
				r.Reason)
		}
		fmt.Fprintf(w, "\n")
	}

	if g.config.IncludeAmbiguous && s.Ambiguous > 0 {
		fmt.Fprintf(w, "=== AMBIGUOUS (REVIEW REQUIRED) ===\n")
		for _, r := range result.Results {
			if r.Status != models.StatusAmbiguous {
				continue
			}
			fmt.Fprintf(w, "  bank %s %s %q: %s\n",
				formatDate(r.Bank), r.Bank.Amount, r.Bank.Reference, r.Reason)
			for _, c := range r.Candidates {
				fmt.Fprintf(w, "    candidate: ledger %s %s %q\n",
					formatDate(c), c.Amount, c.Reference)
			}
		}
		fmt.Fprintf(w, "\n")
	}

	if g.config.IncludeUnmatched && (s.BankUnreconciled > 0 || s.LedgerUnreconciled > 0) {
		fmt.Fprintf(w, "=== UNRECONCILED ===\n")
		for _, r := range result.Results {
			switch r.Status {
			case models.StatusBankUnreconciled:
				fmt.Fprintf(w, "  bank:   %s %s %q\n", formatDate(r.Bank), r.Bank.Amount, r.Bank.Reference)
			case models.StatusLedgerUnreconciled:
				fmt.Fprintf(w, "  ledger: %s %s %q\n", formatDate(r.Ledger), r.Ledger.Amount, r.Ledger.Reference)
			}
		}
		fmt.Fprintf(w, "\n")
	}

	if g.config.IncludeInvalid && s.Invalid > 0 {
		fmt.Fprintf(w, "=== INVALID ===\n")
		for _, r := range result.Results {
			if r.Status != models.StatusInvalid {
				continue
			}
			fmt.Fprintf(w, "  bank: %s %s %q (%s)\n",
				formatDate(r.Bank), r.Bank.Amount, r.Bank.Reference, r.Reason)
		}
		fmt.Fprintf(w, "\n")
	}

	return nil
}

func (g *Generator) writeJSON(result *reconciler.Result, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

var csvHeader = []string{
	"status", "confidence",
	"bank_date", "bank_amount", "bank_reference", "bank_check",
	"ledger_date", "ledger_amount", "ledger_reference", "ledger_check",
	"date_diff", "amount_diff", "check_match", "reason",
}

func (g *Generator) writeCSV(result *reconciler.Result, w io.Writer) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, r := range result.Results {
		record := []string{
			r.Status.String(),
			r.Confidence.String(),
		}
		record = append(record, transactionCells(r.Bank)...)
		record = append(record, transactionCells(r.Ledger)...)
		record = append(record,
			strconv.Itoa(r.DateDiff),
			r.AmountDiff.String(),
			strconv.FormatBool(r.CheckMatch),
			r.Reason,
		)
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func transactionCells(t *models.Transaction) []string {
	if t == nil {
		return []string{"", "", "", ""}
	}
	return []string{formatDate(t), t.Amount.String(), t.Reference, t.Check}
}

func formatDate(t *models.Transaction) string {
	if t == nil || !t.HasValidDate() {
		return ""
	}
	return t.Date.Format("2006-01-02")
}

// ParseFormat converts a string to a report Format
func ParseFormat(s string) (Format, error) {
	f := Format(s)
	if !f.IsValid() {
		return "", fmt.Errorf("unknown report format %q (expected console, json or csv)", s)
	}
	return f, nil
}
