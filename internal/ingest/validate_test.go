package ingest

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validColumns() []string {
	return []string{"timestamp", "event_type", "value", "user_id"}
}

func validRow(ts, eventType, value string) RawRow {
	return RawRow{
		"timestamp":  ts,
		"event_type": eventType,
		"value":      value,
		"user_id":    "user_1",
	}
}

func TestValidateRows_AllValid(t *testing.T) {
	rows := []RawRow{
		validRow("2024-03-01T10:00:00Z", "page_view", "12"),
		validRow("2024-03-01T11:00:00Z", "signup", "1"),
	}

	result := ValidateRows(rows, validColumns())

	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	assert.Len(t, result.ValidRows, 2)
	assert.Equal(t, 2, result.Summary.TotalRows)
	assert.Equal(t, 2, result.Summary.ValidRows)
	assert.Equal(t, 0, result.Summary.InvalidRows)

	row := result.ValidRows[0]
	assert.Equal(t, "page_view", row.EventType)
	assert.Equal(t, 12.0, row.Value)
	assert.Equal(t, "timestamp", row.SourceColumns["timestamp"])
	assert.Equal(t, "event_type", row.SourceColumns["event_type"])
	assert.Equal(t, "value", row.SourceColumns["value"])
}

func TestValidateRows_MissingValueColumn(t *testing.T) {
	columns := []string{"timestamp", "event_type", "user_id"}
	rows := []RawRow{
		{"timestamp": "2024-03-01T10:00:00Z", "event_type": "page_view", "user_id": "u1"},
	}

	result := ValidateRows(rows, columns)

	assert.False(t, result.Valid)
	assert.Empty(t, result.ValidRows)
	assert.Len(t, result.Errors, 1)
	assert.Equal(t, 0, result.Errors[0].Row)
	assert.Equal(t, "schema", result.Errors[0].Field)
	assert.Contains(t, result.Errors[0].Message, "Missing required columns: value")
	assert.Equal(t, 0, result.Summary.ValidRows)
}

func TestValidateRows_AllRolesMissing(t *testing.T) {
	columns := []string{"foo", "bar"}
	rows := []RawRow{{"foo": "1", "bar": "2"}}

	result := ValidateRows(rows, columns)

	assert.False(t, result.Valid)
	assert.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Message, "timestamp, event_type, value")
}

func TestValidateRows_RoleAliases(t *testing.T) {
	columns := []string{"created_at", "action", "amount"}
	rows := []RawRow{
		{"created_at": "2024-03-01", "action": "purchase", "amount": "42.50"},
	}

	result := ValidateRows(rows, columns)

	assert.True(t, result.Valid)
	assert.Len(t, result.ValidRows, 1)
	assert.Equal(t, 42.50, result.ValidRows[0].Value)
	assert.Equal(t, "created_at", result.ValidRows[0].SourceColumns["timestamp"])
}

func TestValidateRows_BadRowExcludedWhole(t *testing.T) {
	rows := []RawRow{
		validRow("2024-03-01T10:00:00Z", "page_view", "12"),
		// Two failing fields on one row: two errors, zero partial rows.
		validRow("not a date", "page_view", "abc"),
	}

	result := ValidateRows(rows, validColumns())

	assert.False(t, result.Valid)
	assert.Len(t, result.ValidRows, 1)
	assert.Len(t, result.Errors, 2)
	assert.Equal(t, 1, result.Summary.InvalidRows)

	// Rows are 1-indexed plus the header line.
	for _, e := range result.Errors {
		assert.Equal(t, 3, e.Row)
	}
}

func TestValidateRows_EmptyEventType(t *testing.T) {
	rows := []RawRow{
		validRow("2024-03-01T10:00:00Z", "   ", "5"),
	}

	result := ValidateRows(rows, validColumns())

	assert.False(t, result.Valid)
	assert.Len(t, result.Errors, 1)
	assert.Equal(t, "event_type", result.Errors[0].Field)
	assert.Contains(t, result.Errors[0].Message, "non-empty")
}

func TestValidateRows_ErrorListCappedAtTen(t *testing.T) {
	rows := make([]RawRow, 0, 15)
	for i := 0; i < 15; i++ {
		rows = append(rows, validRow("bogus", fmt.Sprintf("type_%d", i), "1"))
	}

	result := ValidateRows(rows, validColumns())

	assert.False(t, result.Valid)
	// Ten real errors plus one synthetic remainder entry.
	assert.Len(t, result.Errors, 11)
	last := result.Errors[10]
	assert.Equal(t, "validation", last.Field)
	assert.Contains(t, last.Message, "5 more validation errors")
	assert.Equal(t, 15, result.Summary.InvalidRows)
}

func TestValidateRows_ValidFlagIsAllOrNothing(t *testing.T) {
	rows := []RawRow{
		validRow("2024-03-01T10:00:00Z", "page_view", "12"),
		validRow("2024-03-01T11:00:00Z", "page_view", "not numeric"),
		validRow("2024-03-01T12:00:00Z", "page_view", "9"),
	}

	result := ValidateRows(rows, validColumns())

	// Individual rows still validate for diagnostics, but the file as
	// a whole must not be committed.
	assert.False(t, result.Valid)
	assert.Len(t, result.ValidRows, 2)
}
