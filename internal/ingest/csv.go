package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// ErrEmptyFile is returned when the uploaded CSV has no header row.
var ErrEmptyFile = errors.New("csv file has no header row")

// ReadCSV decodes an uploaded CSV into its header columns and raw rows.
// The reader is expected to already be capped at the configured upload
// size limit; malformed CSV (ragged rows, bad quoting) is a hard error.
func ReadCSV(r io.Reader) ([]string, []RawRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, ErrEmptyFile
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	var rows []RawRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read csv row: %w", err)
		}

		row := make(RawRow, len(header))
		for i, column := range header {
			row[column] = record[i]
		}
		rows = append(rows, row)
	}

	return header, rows, nil
}
