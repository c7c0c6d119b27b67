package parsers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bank-reconciliation-service/pkg/errors"
)

func TestReadCSV(t *testing.T) {
	input := strings.NewReader("Date,Amount,Description\n2024-01-10,100.50,deposit\n2024-01-11,-42.00,withdrawal\n")

	headers, rows, err := ReadCSV(input, "test.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(headers) != 3 {
		t.Fatalf("expected 3 headers, got %d", len(headers))
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0]["Date"] != "2024-01-10" || rows[0]["Amount"] != "100.50" {
		t.Errorf("unexpected first row: %v", rows[0])
	}
	if rows[1]["Description"] != "withdrawal" {
		t.Errorf("unexpected second row: %v", rows[1])
	}
}

func TestReadCSV_ShortRecordsPadded(t *testing.T) {
	input := strings.NewReader("Date,Amount,Check\n2024-01-10,100.50\n")

	_, rows, err := ReadCSV(input, "test.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rows[0]["Check"] != "" {
		t.Errorf("expected missing trailing cell to be empty, got %q", rows[0]["Check"])
	}
}

func TestReadCSV_Empty(t *testing.T) {
	_, _, err := ReadCSV(strings.NewReader(""), "empty.csv")
	if err == nil {
		t.Fatal("expected error for empty input")
	}
	if !errors.Is(err, errors.CategoryParse) {
		t.Errorf("expected parse category error, got %v", err)
	}
}

func TestLoadCSV_FileNotFound(t *testing.T) {
	_, _, err := LoadCSV("/nonexistent/statement.csv")
	if err == nil {
		t.Fatal("expected error for missing file")
	}

	e, ok := errors.As(err)
	if !ok {
		t.Fatalf("expected taxonomy error, got %v", err)
	}
	if e.Code != errors.CodeFileNotFound {
		t.Errorf("Code = %s, want %s", e.Code, errors.CodeFileNotFound)
	}
}

func TestLoadCSV_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bank.csv")
	content := "Posting Date,Amount,Memo\n2024-01-10,55.00,coffee\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	headers, rows, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(headers) != 3 || len(rows) != 1 {
		t.Fatalf("unexpected shape: %d headers, %d rows", len(headers), len(rows))
	}
}

func TestDetectColumns(t *testing.T) {
	tests := []struct {
		name       string
		headers    []string
		wantDate   string
		wantAmount string
		wantDebit  string
		wantCredit string
		wantRef    string
		wantCheck  string
		wantErr    bool
	}{
		{
			name:       "standard bank export",
			headers:    []string{"Date", "Amount", "Description", "Check Number"},
			wantDate:   "Date",
			wantAmount: "Amount",
			wantRef:    "Description",
			wantCheck:  "Check Number",
		},
		{
			name:       "debit credit split",
			headers:    []string{"Posting Date", "Debit", "Credit", "Memo"},
			wantDate:   "Posting Date",
			wantDebit:  "Debit",
			wantCredit: "Credit",
			wantRef:    "Memo",
		},
		{
			name:       "debit amount column not mistaken for signed amount",
			headers:    []string{"Date", "Debit Amount", "Credit Amount"},
			wantDate:   "Date",
			wantDebit:  "Debit Amount",
			wantCredit: "Credit Amount",
		},
		{
			name:     "mixed case fuzzy match",
			headers:  []string{"TRANSACTION DATE", "transaction amount", "Payee"},
			wantDate: "TRANSACTION DATE",
			// amount detected on substring
			wantAmount: "transaction amount",
			wantRef:    "Payee",
		},
		{
			name:    "no date column",
			headers: []string{"Amount", "Description"},
			wantErr: true,
		},
		{
			name:    "no amount source",
			headers: []string{"Date", "Description"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapping, err := DetectColumns(tt.headers)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected detection error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if mapping.DateColumn != tt.wantDate {
				t.Errorf("DateColumn = %q, want %q", mapping.DateColumn, tt.wantDate)
			}
			if mapping.AmountColumn != tt.wantAmount {
				t.Errorf("AmountColumn = %q, want %q", mapping.AmountColumn, tt.wantAmount)
			}
			if mapping.DebitColumn != tt.wantDebit {
				t.Errorf("DebitColumn = %q, want %q", mapping.DebitColumn, tt.wantDebit)
			}
			if mapping.CreditColumn != tt.wantCredit {
				t.Errorf("CreditColumn = %q, want %q", mapping.CreditColumn, tt.wantCredit)
			}
			if mapping.ReferenceColumn != tt.wantRef {
				t.Errorf("ReferenceColumn = %q, want %q", mapping.ReferenceColumn, tt.wantRef)
			}
			if mapping.CheckColumn != tt.wantCheck {
				t.Errorf("CheckColumn = %q, want %q", mapping.CheckColumn, tt.wantCheck)
			}
		})
	}
}
