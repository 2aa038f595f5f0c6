package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInferCellType(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected ColumnType
	}{
		{"empty cell", "", TypeString},
		{"whitespace cell", "   ", TypeString},
		{"integer literal", "42", TypeInteger},
		{"negative integer", "-7", TypeInteger},
		{"decimal literal", "129.99", TypeNumber},
		{"decimal below one", "0.5", TypeNumber},
		{"date only", "2024-01-15", TypeTimestamp},
		{"slash date", "01/15/2024", TypeTimestamp},
		{"iso timestamp", "2024-01-15T10:30:00Z", TypeTimestamp},
		{"space separated timestamp", "2024-01-15 10:30:00", TypeTimestamp},
		{"impossible calendar date", "2024-13-45", TypeString},
		{"boolean true", "true", TypeBoolean},
		{"boolean mixed case", "FALSE", TypeBoolean},
		{"plain text", "page_view", TypeString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, InferCellType(tt.value))
		})
	}
}

func TestInferSchema_MajorityVote(t *testing.T) {
	columns := []string{"value"}
	rows := []RawRow{
		{"value": "1"},
		{"value": "2"},
		{"value": "3"},
		{"value": "oops"},
	}

	schema := InferSchema(rows, columns)

	assert.Equal(t, TypeInteger, schema["value"])
}

func TestInferSchema_TieResolvesToFirstSeen(t *testing.T) {
	columns := []string{"mixed"}
	rows := []RawRow{
		{"mixed": "hello"},
		{"mixed": "42"},
		{"mixed": "world"},
		{"mixed": "7"},
	}

	schema := InferSchema(rows, columns)

	// Two strings, two integers; string was sampled first.
	assert.Equal(t, TypeString, schema["mixed"])
}

func TestInferSchema_EmptyRowsDefaultToString(t *testing.T) {
	schema := InferSchema(nil, []string{"a", "b"})

	assert.Equal(t, TypeString, schema["a"])
	assert.Equal(t, TypeString, schema["b"])
}

func TestInferSchema_SamplesAtMostHundredRows(t *testing.T) {
	columns := []string{"v"}
	rows := make([]RawRow, 0, 250)
	for i := 0; i < 100; i++ {
		rows = append(rows, RawRow{"v": "1"})
	}
	// Everything past the sample boundary contradicts the sample.
	for i := 0; i < 150; i++ {
		rows = append(rows, RawRow{"v": "text"})
	}

	schema := InferSchema(rows, columns)

	assert.Equal(t, TypeInteger, schema["v"])
}

func TestInferSchema_Deterministic(t *testing.T) {
	columns := []string{"timestamp", "event_type", "value", "active"}
	rows := []RawRow{
		{"timestamp": "2024-03-01T00:00:00Z", "event_type": "page_view", "value": "12", "active": "true"},
		{"timestamp": "2024-03-01T01:00:00Z", "event_type": "signup", "value": "3", "active": "false"},
	}

	first := InferSchema(rows, columns)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, InferSchema(rows, columns))
	}
	assert.Equal(t, TypeTimestamp, first["timestamp"])
	assert.Equal(t, TypeString, first["event_type"])
	assert.Equal(t, TypeInteger, first["value"])
	assert.Equal(t, TypeBoolean, first["active"])
}

func TestNormalizeValue(t *testing.T) {
	assert.Equal(t, int64(42), NormalizeValue("42", TypeInteger))
	assert.Equal(t, 129.99, NormalizeValue("129.99", TypeNumber))
	assert.Equal(t, true, NormalizeValue("TRUE", TypeBoolean))
	assert.Equal(t, "hello", NormalizeValue("hello", TypeString))

	ts := NormalizeValue("2024-01-15", TypeTimestamp)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), ts)

	// Malformed literals normalize to nil rather than erroring.
	assert.Nil(t, NormalizeValue("not-a-number", TypeInteger))
	assert.Nil(t, NormalizeValue("12.5.3", TypeNumber))
	assert.Nil(t, NormalizeValue("yesterday", TypeTimestamp))
	assert.Nil(t, NormalizeValue("yes", TypeBoolean))
	assert.Nil(t, NormalizeValue("", TypeInteger))
}
