package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// maxReportedErrors caps how many per-field errors a validation result
// carries; the remainder is summarized in one synthetic entry.
const maxReportedErrors = 10

// Aliases accepted when locating the required role columns. Validation
// uses exact (case-insensitive) name matches, unlike the fuzzier
// substring hints the field mapper works with.
var (
	timestampAliases = []string{"timestamp", "time", "date", "created_at", "event_time"}
	eventTypeAliases = []string{"event_type", "type", "event", "action"}
	valueAliases     = []string{"value", "amount", "count", "metric", "metric_value"}
)

// RowError describes one validation failure. Row is 1-indexed and
// offset by the header line; schema-level errors use row 0.
type RowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidatedRow is a raw row plus its normalized event payload, tagged
// with the source column that fed each field.
type ValidatedRow struct {
	Raw           RawRow
	Timestamp     time.Time
	EventType     string
	Value         float64
	SourceColumns map[string]string
}

// ValidationSummary counts rows by outcome.
type ValidationSummary struct {
	TotalRows   int `json:"total_rows"`
	ValidRows   int `json:"valid_rows"`
	InvalidRows int `json:"invalid_rows"`
}

// ValidationResult is the structured outcome of validating one file.
// Valid is true only when every row passed; an invalid result means the
// batch must not be committed, even though ValidRows still carries the
// rows that individually passed for diagnostics.
type ValidationResult struct {
	Valid     bool
	ValidRows []ValidatedRow
	Errors    []RowError
	Summary   ValidationSummary
}

// ValidateRows enforces the minimal event contract on every row: a
// parseable timestamp, a non-empty event type and a numeric value. If
// any required role has no matching column at all, the whole batch fails
// with a single schema-level error and zero rows are validated.
func ValidateRows(rows []RawRow, columns []string) *ValidationResult {
	result := &ValidationResult{
		ValidRows: []ValidatedRow{},
		Errors:    []RowError{},
		Summary:   ValidationSummary{TotalRows: len(rows)},
	}

	tsColumn := findColumnByAlias(columns, timestampAliases)
	typeColumn := findColumnByAlias(columns, eventTypeAliases)
	valueColumn := findColumnByAlias(columns, valueAliases)

	var missing []string
	if tsColumn == "" {
		missing = append(missing, "timestamp")
	}
	if typeColumn == "" {
		missing = append(missing, "event_type")
	}
	if valueColumn == "" {
		missing = append(missing, "value")
	}
	if len(missing) > 0 {
		result.Errors = append(result.Errors, RowError{
			Row:     0,
			Field:   "schema",
			Message: fmt.Sprintf("Missing required columns: %s", strings.Join(missing, ", ")),
		})
		result.Summary.InvalidRows = len(rows)
		return result
	}

	totalErrors := 0
	addError := func(row int, field, message string) {
		totalErrors++
		if len(result.Errors) < maxReportedErrors {
			result.Errors = append(result.Errors, RowError{Row: row, Field: field, Message: message})
		}
	}

	for i, row := range rows {
		// 1-indexed data rows, plus one for the header line.
		rowNum := i + 2
		rowOK := true

		timestamp, ok := ParseTimestamp(row[tsColumn])
		if !ok {
			addError(rowNum, tsColumn, fmt.Sprintf("invalid timestamp: %q", row[tsColumn]))
			rowOK = false
		}

		eventType := strings.TrimSpace(row[typeColumn])
		if eventType == "" {
			addError(rowNum, typeColumn, "event type must be a non-empty string")
			rowOK = false
		}

		value, err := strconv.ParseFloat(strings.TrimSpace(row[valueColumn]), 64)
		if err != nil {
			addError(rowNum, valueColumn, fmt.Sprintf("value must be numeric, got %q", row[valueColumn]))
			rowOK = false
		}

		if !rowOK {
			result.Summary.InvalidRows++
			continue
		}

		result.ValidRows = append(result.ValidRows, ValidatedRow{
			Raw:       row,
			Timestamp: timestamp,
			EventType: eventType,
			Value:     value,
			SourceColumns: map[string]string{
				"timestamp":  tsColumn,
				"event_type": typeColumn,
				"value":      valueColumn,
			},
		})
		result.Summary.ValidRows++
	}

	if remaining := totalErrors - maxReportedErrors; remaining > 0 {
		result.Errors = append(result.Errors, RowError{
			Row:     0,
			Field:   "validation",
			Message: fmt.Sprintf("%d more validation errors not shown", remaining),
		})
	}

	result.Valid = totalErrors == 0
	return result
}

func findColumnByAlias(columns []string, aliases []string) string {
	for _, column := range columns {
		name := strings.ToLower(strings.TrimSpace(column))
		for _, alias := range aliases {
			if name == alias {
				return column
			}
		}
	}
	return ""
}
