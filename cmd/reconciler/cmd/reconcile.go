package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bank-reconciliation-service/internal/matcher"
	"bank-reconciliation-service/internal/models"
	"bank-reconciliation-service/internal/normalizer"
	"bank-reconciliation-service/internal/parsers"
	"bank-reconciliation-service/internal/reconciler"
	"bank-reconciliation-service/internal/reporter"
	"bank-reconciliation-service/pkg/logger"
)

// Flags for the reconcile command
var (
	bankFile        string
	ledgerFile      string
	outputFormat    string
	outputFile      string
	dateTolerance   int
	amountTolerance string
)

// reconcileCmd represents the reconcile command
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile a bank statement against the general ledger",
	Long: `Reconcile compares bank statement records with general ledger records
to identify matches, unreconciled entries on either side, and records
needing manual review.

This command requires:
- A bank statement file (CSV format)
- A general ledger file (CSV format)

Examples:
  # Basic reconciliation
  reconciler reconcile --bank-file statement.csv --ledger-file ledger.csv

  # Custom output format and tolerances
  reconciler reconcile -b statement.csv -l ledger.csv \
    --output-format json --output-file report.json \
    --date-tolerance 1 --amount-tolerance 0.05`,

	PreRunE: validateReconcileFlags,
	RunE:    runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	// Required flags
	reconcileCmd.Flags().StringVarP(&bankFile, "bank-file", "b", "", "path to bank statement CSV file (required)")
	reconcileCmd.Flags().StringVarP(&ledgerFile, "ledger-file", "l", "", "path to general ledger CSV file (required)")

	// Output flags
	reconcileCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "console", "output format: console, json, csv")
	reconcileCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "output file path (default: stdout)")

	// Matching configuration flags
	reconcileCmd.Flags().IntVarP(&dateTolerance, "date-tolerance", "d", 3, "date matching tolerance in whole days")
	reconcileCmd.Flags().StringVarP(&amountTolerance, "amount-tolerance", "a", "0", "absolute amount tolerance (decimal)")

	reconcileCmd.MarkFlagRequired("bank-file")
	reconcileCmd.MarkFlagRequired("ledger-file")

	viper.BindPFlag("bank-file", reconcileCmd.Flags().Lookup("bank-file"))
	viper.BindPFlag("ledger-file", reconcileCmd.Flags().Lookup("ledger-file"))
	viper.BindPFlag("output-format", reconcileCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("output-file", reconcileCmd.Flags().Lookup("output-file"))
	viper.BindPFlag("date-tolerance", reconcileCmd.Flags().Lookup("date-tolerance"))
	viper.BindPFlag("amount-tolerance", reconcileCmd.Flags().Lookup("amount-tolerance"))
}

func validateReconcileFlags(cmd *cobra.Command, args []string) error {
	// Values come from viper so a config file can override flags
	bankFile = viper.GetString("bank-file")
	ledgerFile = viper.GetString("ledger-file")
	outputFormat = viper.GetString("output-format")
	outputFile = viper.GetString("output-file")
	dateTolerance = viper.GetInt("date-tolerance")
	amountTolerance = viper.GetString("amount-tolerance")

	if bankFile == "" {
		return fmt.Errorf("bank-file is required")
	}
	if ledgerFile == "" {
		return fmt.Errorf("ledger-file is required")
	}

	if err := validateFileExists(bankFile, "bank statement file"); err != nil {
		return err
	}
	if err := validateFileExists(ledgerFile, "general ledger file"); err != nil {
		return err
	}

	if _, err := reporter.ParseFormat(outputFormat); err != nil {
		return err
	}

	if dateTolerance < 0 {
		return fmt.Errorf("date tolerance cannot be negative")
	}
	if _, err := decimal.NewFromString(amountTolerance); err != nil {
		return fmt.Errorf("invalid amount tolerance %q: %w", amountTolerance, err)
	}

	if outputFile != "" {
		dir := filepath.Dir(outputFile)
		if dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return fmt.Errorf("output directory does not exist: %s", dir)
			}
		}
	}

	return nil
}

func validateFileExists(filePath, description string) error {
	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, filePath)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, filePath)
	}
	return nil
}

func runReconcile(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("cli")

	bank, err := loadTransactions(bankFile, models.SideBank)
	if err != nil {
		return err
	}
	ledger, err := loadTransactions(ledgerFile, models.SideLedger)
	if err != nil {
		return err
	}

	log.WithFields(logger.Fields{
		"bank_count":   len(bank),
		"ledger_count": len(ledger),
	}).Debug("input files loaded")

	config := matcher.DefaultConfig()
	config.DateToleranceDays = dateTolerance
	config.AmountTolerance = decimal.RequireFromString(amountTolerance)

	engine, err := reconciler.NewEngine(config)
	if err != nil {
		return err
	}

	result, err := engine.Reconcile(bank, ledger)
	if err != nil {
		return err
	}

	reportConfig := reporter.DefaultConfig()
	reportConfig.Format = reporter.Format(outputFormat)

	generator, err := reporter.NewGenerator(reportConfig)
	if err != nil {
		return err
	}

	output := os.Stdout
	if outputFile != "" {
		output, err = os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer output.Close()
	}

	return generator.Generate(result, output)
}

// loadTransactions reads a CSV file, detects its column layout from the
// headers and normalizes the rows into transactions.
func loadTransactions(path string, side models.Side) ([]*models.Transaction, error) {
	headers, rows, err := parsers.LoadCSV(path)
	if err != nil {
		return nil, err
	}

	mapping, err := parsers.DetectColumns(headers)
	if err != nil {
		return nil, err
	}

	n, err := normalizer.New(mapping)
	if err != nil {
		return nil, err
	}

	return n.Normalize(rows, side), nil
}
