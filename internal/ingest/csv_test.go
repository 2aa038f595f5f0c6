package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadCSV(t *testing.T) {
	input := "timestamp,event_type,value\n2024-03-01T10:00:00Z,page_view,12\n2024-03-01T11:00:00Z,signup,1\n"

	columns, rows, err := ReadCSV(strings.NewReader(input))

	assert.NoError(t, err)
	assert.Equal(t, []string{"timestamp", "event_type", "value"}, columns)
	assert.Len(t, rows, 2)
	assert.Equal(t, "page_view", rows[0]["event_type"])
	assert.Equal(t, "1", rows[1]["value"])
}

func TestReadCSV_EmptyFile(t *testing.T) {
	_, _, err := ReadCSV(strings.NewReader(""))

	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestReadCSV_HeaderOnly(t *testing.T) {
	columns, rows, err := ReadCSV(strings.NewReader("a,b,c\n"))

	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, columns)
	assert.Empty(t, rows)
}

func TestReadCSV_RaggedRowIsAnError(t *testing.T) {
	input := "a,b\n1,2\n3\n"

	_, _, err := ReadCSV(strings.NewReader(input))

	assert.Error(t, err)
}
