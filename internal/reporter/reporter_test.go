package reporter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"bank-reconciliation-service/internal/models"
	"bank-reconciliation-service/internal/reconciler"
)

func tx(date string, amount string, reference string) *models.Transaction {
	d, _ := time.Parse("2006-01-02", date)
	return &models.Transaction{
		Date:      d,
		Amount:    decimal.RequireFromString(amount),
		Reference: reference,
	}
}

func sampleResult(t *testing.T) *reconciler.Result {
	t.Helper()

	engine, err := reconciler.NewEngine(nil)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	bank := []*models.Transaction{
		tx("2024-03-01", "100.00", "PAYROLL MAR"),
		tx("2024-03-05", "42.50", "COFFEE"),
	}
	ledger := []*models.Transaction{
		tx("2024-03-01", "100.00", "Payroll"),
		tx("2024-03-10", "77.00", "Rent"),
	}

	result, err := engine.Reconcile(bank, ledger)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	return result
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		format  Format
		wantErr bool
	}{
		{"console", FormatConsole, false},
		{"json", FormatJSON, false},
		{"csv", FormatCSV, false},
		{"unknown", Format("xml"), true},
		{"empty", Format(""), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			config.Format = tt.format
			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewGeneratorDefaults(t *testing.T) {
	g, err := NewGenerator(nil)
	if err != nil {
		t.Fatalf("NewGenerator(nil) error = %v", err)
	}
	if g.config.Format != FormatConsole {
		t.Errorf("default format = %s, want %s", g.config.Format, FormatConsole)
	}
}

func TestGenerateNilResult(t *testing.T) {
	g, err := NewGenerator(nil)
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}
	if err := g.Generate(nil, &bytes.Buffer{}); err == nil {
		t.Error("Generate(nil) expected error, got nil")
	}
}

func TestConsoleReport(t *testing.T) {
	g, err := NewGenerator(DefaultConfig())
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}

	var buf bytes.Buffer
	if err := g.Generate(sampleResult(t), &buf); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"=== SUMMARY ===",
		"=== MATCHED ===",
		"=== UNRECONCILED ===",
		"PAYROLL MAR",
		"Payroll",
		"COFFEE",
		"Rent",
		"HIGH",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("console report missing %q\n%s", want, out)
		}
	}
}

func TestConsoleReportSectionToggles(t *testing.T) {
	config := DefaultConfig()
	config.IncludeUnmatched = false
	g, err := NewGenerator(config)
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}

	var buf bytes.Buffer
	if err := g.Generate(sampleResult(t), &buf); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if strings.Contains(buf.String(), "=== UNRECONCILED ===") {
		t.Error("unreconciled section rendered despite IncludeUnmatched=false")
	}
}

func TestJSONReport(t *testing.T) {
	config := DefaultConfig()
	config.Format = FormatJSON
	g, err := NewGenerator(config)
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}

	var buf bytes.Buffer
	if err := g.Generate(sampleResult(t), &buf); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	var decoded struct {
		Results []json.RawMessage `json:"results"`
		Summary models.Summary    `json:"summary"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded.Results) != 4 {
		t.Errorf("results length = %d, want 4", len(decoded.Results))
	}
	if decoded.Summary.Matched != 1 {
		t.Errorf("summary.matched = %d, want 1", decoded.Summary.Matched)
	}
}

func TestCSVReport(t *testing.T) {
	config := DefaultConfig()
	config.Format = FormatCSV
	g, err := NewGenerator(config)
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}

	var buf bytes.Buffer
	if err := g.Generate(sampleResult(t), &buf); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}

	// header plus one row per classification
	if len(records) != 5 {
		t.Fatalf("record count = %d, want 5", len(records))
	}
	if records[0][0] != "status" {
		t.Errorf("header[0] = %q, want %q", records[0][0], "status")
	}
	for i, record := range records[1:] {
		if len(record) != len(csvHeader) {
			t.Errorf("row %d has %d fields, want %d", i+1, len(record), len(csvHeader))
		}
	}
	if records[1][0] != models.StatusMatched.String() {
		t.Errorf("first row status = %q, want %q", records[1][0], models.StatusMatched)
	}
}

func TestParseFormat(t *testing.T) {
	if _, err := ParseFormat("json"); err != nil {
		t.Errorf("ParseFormat(json) error = %v", err)
	}
	if _, err := ParseFormat("yaml"); err == nil {
		t.Error("ParseFormat(yaml) expected error, got nil")
	}
}
