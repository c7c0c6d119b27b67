// Package parsers loads tabular reconciliation input from CSV files and
// detects which columns play which role. It sits upstream of the
// normalizer: everything here produces raw rows plus a column mapping, and
// nothing here participates in the matching logic or its correctness
// guarantees.
package parsers

import (
	"encoding/csv"
	"io"
	"os"

	"bank-reconciliation-service/internal/normalizer"
	"bank-reconciliation-service/pkg/errors"
	"bank-reconciliation-service/pkg/logger"
)

// LoadCSV reads a CSV file into header and raw-row form
func LoadCSV(path string) ([]string, []normalizer.RawRow, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.FileError(errors.CodeFileNotFound, path, err)
		}
		if os.IsPermission(err) {
			return nil, nil, errors.FileError(errors.CodeFilePermission, path, err)
		}
		return nil, nil, errors.FileError("", path, err)
	}
	defer file.Close()

	return ReadCSV(file, path)
}

// ReadCSV reads CSV data from a reader. The first record is treated as the
// header row; every following record becomes a RawRow keyed by header.
// Short records are padded with empty cells rather than rejected, since
// bank exports frequently omit trailing empty fields.
func ReadCSV(r io.Reader, source string) ([]string, []normalizer.RawRow, error) {
	log := logger.WithComponent("parsers")

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		line := 0
		if parseErr, ok := err.(*csv.ParseError); ok {
			line = parseErr.Line
		}
		return nil, nil, errors.ParseError(errors.CodeInvalidFormat, source, line, err.Error(), err)
	}

	if len(records) == 0 {
		return nil, nil, errors.ParseError(errors.CodeEmptyInput, source, 0, "", nil)
	}

	headers := records[0]
	rows := make([]normalizer.RawRow, 0, len(records)-1)

	for _, record := range records[1:] {
		row := make(normalizer.RawRow, len(headers))
		for i, header := range headers {
			if i < len(record) {
				row[header] = record[i]
			} else {
				row[header] = ""
			}
		}
		rows = append(rows, row)
	}

	log.WithFields(logger.Fields{
		"source":  source,
		"columns": len(headers),
		"rows":    len(rows),
	}).Debug("loaded CSV input")

	return headers, rows, nil
}
