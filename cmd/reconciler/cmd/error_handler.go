package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"bank-reconciliation-service/pkg/errors"
	"bank-reconciliation-service/pkg/logger"
)

// HandleError prints a user-friendly message for a failed command and
// returns the process exit code.
func HandleError(err error) int {
	if err == nil {
		return 0
	}

	logger.WithComponent("cli").WithError(err).Error("command failed")

	appErr, ok := errors.As(err)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Fprintf(os.Stderr, "Error: %s\n", appErr.Message)

	if len(appErr.Context) > 0 {
		fmt.Fprintf(os.Stderr, "\nContext:\n%s\n", appErr.FormatContext())
	}

	if appErr.Suggestion != "" {
		fmt.Fprintf(os.Stderr, "\nSuggestion: %s\n", appErr.Suggestion)
	}

	fmt.Fprintf(os.Stderr, "\n%s\n", categoryHelp(appErr.Category))

	if viper.GetBool("verbose") && appErr.Cause != nil {
		fmt.Fprintf(os.Stderr, "\nUnderlying error: %v\n", appErr.Cause)
	}

	return appErr.ExitCode()
}

func categoryHelp(category errors.Category) string {
	switch category {
	case errors.CategoryFile:
		return `File error help:
• Check if the file exists and is readable
• Verify the file path is correct
• Ensure you have permission to access the file`

	case errors.CategoryParse:
		return `Parse error help:
• Verify the CSV file has a header row
• Check that date and amount columns are recognizable from the headers
• Ensure the file uses UTF-8 encoding`

	case errors.CategoryValidation:
		return `Validation error help:
• Check that all required fields have values
• Verify date formats (YYYY-MM-DD works everywhere)
• Ensure amounts are decimal numbers`

	case errors.CategoryConfiguration:
		return `Configuration error help:
• Check your command-line flags and arguments
• Verify configuration file syntax if using --config
• Use 'reconciler reconcile --help' to see all available options`

	case errors.CategoryReconciliation:
		return `Reconciliation error help:
• Check data quality in your input files
• Try adjusting matching tolerances (--date-tolerance, --amount-tolerance)`

	default:
		return `For more help:
• Use 'reconciler --help' for general help
• Use 'reconciler reconcile --help' for command-specific help`
	}
}
