// Package errors defines the structural error taxonomy for the service.
//
// These errors cover failures the caller must fix: missing files, malformed
// CSV structure, invalid configuration and broken reconciliation input.
// Per-record irregularities (bad dates, zero amounts, unmatched entries) are
// never errors; they are absorbed into the classification states produced by
// the reconciliation engine.
package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Category groups errors by the subsystem that produced them
type Category string

const (
	CategoryFile           Category = "file"
	CategoryParse          Category = "parse"
	CategoryValidation     Category = "validation"
	CategoryConfiguration  Category = "configuration"
	CategoryReconciliation Category = "reconciliation"
)

// Code identifies a specific failure within a category
type Code string

const (
	// File errors
	CodeFileNotFound   Code = "file_not_found"
	CodeFilePermission Code = "file_permission"

	// Parse errors
	CodeInvalidFormat Code = "invalid_format"
	CodeMissingColumn Code = "missing_column"
	CodeEmptyInput    Code = "empty_input"

	// Validation errors
	CodeMissingField Code = "missing_field"
	CodeOutOfRange   Code = "out_of_range"

	// Configuration errors
	CodeInvalidConfig Code = "invalid_config"
	CodeMissingConfig Code = "missing_config"

	// Reconciliation errors
	CodeNilInput        Code = "nil_input"
	CodeProcessingError Code = "processing_error"
)

// Error is the base error type for all structural failures in the service
type Error struct {
	Category   Category               `json:"category"`
	Code       Code                   `json:"code"`
	Message    string                 `json:"message"`
	Suggestion string                 `json:"suggestion,omitempty"`
	Context    map[string]interface{} `json:"context,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace errors.StackTrace      `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *Error) Unwrap() error {
	return e.Cause
}

// ExitCode maps the error category to a process exit code for the CLI
func (e *Error) ExitCode() int {
	switch e.Category {
	case CategoryFile:
		return 2
	case CategoryParse, CategoryValidation:
		return 3
	case CategoryConfiguration:
		return 4
	case CategoryReconciliation:
		return 5
	default:
		return 1
	}
}

// WithContext attaches a key/value pair to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithSuggestion attaches a hint for fixing the error
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestion = suggestion
	return e
}

// stackTracer is the interface pkg/errors exposes for stack extraction
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// New creates a new Error with a captured stack trace
func New(category Category, code Code, message string) *Error {
	return &Error{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with taxonomy context
func Wrap(err error, category Category, code Code, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

// FileError creates a file access error
func FileError(code Code, path string, err error) *Error {
	var message, suggestion string
	switch code {
	case CodeFileNotFound:
		message = fmt.Sprintf("file not found: %s", path)
		suggestion = "check that the file path is correct and the file exists"
	case CodeFilePermission:
		message = fmt.Sprintf("permission denied accessing file: %s", path)
		suggestion = "check file permissions and ensure you have read access"
	default:
		message = fmt.Sprintf("file error: %s", path)
		suggestion = "check the file and try again"
	}

	result := New(CategoryFile, code, message)
	if err != nil {
		result = Wrap(err, CategoryFile, code, message)
	}
	return result.WithSuggestion(suggestion).WithContext("file_path", path)
}

// ParseError creates a structural parsing error for tabular input
func ParseError(code Code, source string, line int, detail string, err error) *Error {
	var message, suggestion string
	switch code {
	case CodeInvalidFormat:
		message = fmt.Sprintf("invalid format in %s at line %d: %s", source, line, detail)
		suggestion = "check the CSV structure, delimiter and quoting"
	case CodeMissingColumn:
		message = fmt.Sprintf("missing required column in %s: %s", source, detail)
		suggestion = "verify the file has a header row with the expected columns"
	case CodeEmptyInput:
		message = fmt.Sprintf("no data rows found in %s", source)
		suggestion = "ensure the file contains at least a header row and one data row"
	default:
		message = fmt.Sprintf("parse error in %s at line %d: %s", source, line, detail)
		suggestion = "check the file format and data integrity"
	}

	result := New(CategoryParse, code, message)
	if err != nil {
		result = Wrap(err, CategoryParse, code, message)
	}
	return result.
		WithSuggestion(suggestion).
		WithContext("source", source).
		WithContext("line", line)
}

// ValidationError creates a field validation error
func ValidationError(code Code, field string, value interface{}) *Error {
	var message, suggestion string
	switch code {
	case CodeMissingField:
		message = fmt.Sprintf("required field %q is missing or empty", field)
		suggestion = "provide a value for this required field"
	case CodeOutOfRange:
		message = fmt.Sprintf("value out of range in field %q: %v", field, value)
		suggestion = "ensure the value is within the acceptable range"
	default:
		message = fmt.Sprintf("validation error in field %q: %v", field, value)
		suggestion = "check the field value and format"
	}

	return New(CategoryValidation, code, message).
		WithSuggestion(suggestion).
		WithContext("field", field).
		WithContext("value", value)
}

// ConfigurationError creates a configuration error
func ConfigurationError(code Code, setting string, value interface{}, err error) *Error {
	var message, suggestion string
	switch code {
	case CodeInvalidConfig:
		message = fmt.Sprintf("invalid configuration for %q: %v", setting, value)
		suggestion = "check the documentation for valid values"
	case CodeMissingConfig:
		message = fmt.Sprintf("missing required configuration: %s", setting)
		suggestion = "provide this setting via flag, environment or config file"
	default:
		message = fmt.Sprintf("configuration error: %s", setting)
		suggestion = "check your configuration and try again"
	}

	result := New(CategoryConfiguration, code, message)
	if err != nil {
		result = Wrap(err, CategoryConfiguration, code, message)
	}
	return result.
		WithSuggestion(suggestion).
		WithContext("setting", setting).
		WithContext("value", value)
}

// ReconciliationError creates an error for a structurally broken reconciliation run
func ReconciliationError(code Code, operation string, err error) *Error {
	var message, suggestion string
	switch code {
	case CodeNilInput:
		message = fmt.Sprintf("nil input provided to %s", operation)
		suggestion = "normalize both transaction lists before reconciling"
	case CodeProcessingError:
		message = fmt.Sprintf("processing error during %s", operation)
		suggestion = "review the input data and configuration"
	default:
		message = fmt.Sprintf("reconciliation error during %s", operation)
		suggestion = "review the input data and configuration"
	}

	result := New(CategoryReconciliation, code, message)
	if err != nil {
		result = Wrap(err, CategoryReconciliation, code, message)
	}
	return result.WithSuggestion(suggestion).WithContext("operation", operation)
}

// Is checks whether an error carries the given category
func Is(err error, category Category) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Category == category
	}
	return false
}

// As extracts an *Error from an error chain
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// ExitCode returns the exit code for an arbitrary error, defaulting to 1
// for errors outside the taxonomy and 0 for nil.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if e, ok := As(err); ok {
		return e.ExitCode()
	}
	return 1
}

// FormatContext renders the error context as a stable, sorted string for
// logs and CLI output.
func (e *Error) FormatContext() string {
	if len(e.Context) == 0 {
		return ""
	}
	parts := make([]string, 0, len(e.Context))
	for k, v := range e.Context {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	// Map iteration order is not stable; sort for deterministic output.
	for i := 0; i < len(parts); i++ {
		for j := i + 1; j < len(parts); j++ {
			if parts[j] < parts[i] {
				parts[i], parts[j] = parts[j], parts[i]
			}
		}
	}
	return strings.Join(parts, " ")
}
