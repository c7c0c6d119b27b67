package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CategoryParse, CodeInvalidFormat, "bad row")

	if err.Category != CategoryParse {
		t.Errorf("Category = %s, want %s", err.Category, CategoryParse)
	}
	if err.Code != CodeInvalidFormat {
		t.Errorf("Code = %s, want %s", err.Code, CodeInvalidFormat)
	}
	if err.Error() != "bad row" {
		t.Errorf("Error() = %q, want %q", err.Error(), "bad row")
	}
	if err.StackTrace == nil {
		t.Error("expected stack trace to be captured")
	}
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("underlying failure")
	err := Wrap(cause, CategoryFile, CodeFileNotFound, "cannot open statement")

	if err.Cause != cause {
		t.Error("expected cause to be preserved")
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause through Unwrap")
	}

	if Wrap(nil, CategoryFile, CodeFileNotFound, "x") != nil {
		t.Error("wrapping nil should return nil")
	}
}

func TestError_Suggestion(t *testing.T) {
	err := New(CategoryValidation, CodeMissingField, "field missing").
		WithSuggestion("provide the field")

	if !strings.Contains(err.Error(), "suggestion: provide the field") {
		t.Errorf("Error() = %q, expected suggestion to be included", err.Error())
	}
}

func TestExitCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, 0},
		{"file error", FileError(CodeFileNotFound, "/tmp/x.csv", nil), 2},
		{"parse error", ParseError(CodeInvalidFormat, "bank.csv", 3, "bad quote", nil), 3},
		{"validation error", ValidationError(CodeMissingField, "amount", nil), 3},
		{"config error", ConfigurationError(CodeInvalidConfig, "date_tolerance", -1, nil), 4},
		{"reconciliation error", ReconciliationError(CodeNilInput, "reconcile", nil), 5},
		{"plain error", fmt.Errorf("boom"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.expected {
				t.Errorf("ExitCode() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestIs(t *testing.T) {
	err := ParseError(CodeMissingColumn, "ledger.csv", 0, "date", nil)

	if !Is(err, CategoryParse) {
		t.Error("expected Is to report parse category")
	}
	if Is(err, CategoryFile) {
		t.Error("expected Is to reject wrong category")
	}
	if Is(fmt.Errorf("plain"), CategoryParse) {
		t.Error("expected Is to reject plain errors")
	}
}

func TestAs_ThroughWrapping(t *testing.T) {
	inner := FileError(CodeFilePermission, "/statements/jan.csv", nil)
	wrapped := fmt.Errorf("loading inputs: %w", inner)

	got, ok := As(wrapped)
	if !ok {
		t.Fatal("expected As to extract the taxonomy error")
	}
	if got.Code != CodeFilePermission {
		t.Errorf("Code = %s, want %s", got.Code, CodeFilePermission)
	}
	if got.Context["file_path"] != "/statements/jan.csv" {
		t.Errorf("context file_path = %v", got.Context["file_path"])
	}
}

func TestFormatContext(t *testing.T) {
	err := New(CategoryParse, CodeInvalidFormat, "x").
		WithContext("source", "bank.csv").
		WithContext("line", 7)

	got := err.FormatContext()
	if got != "line=7 source=bank.csv" {
		t.Errorf("FormatContext() = %q, want sorted key=value pairs", got)
	}
}
