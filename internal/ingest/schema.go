package ingest

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// schemaSampleSize bounds how many rows inference looks at per column.
const schemaSampleSize = 100

var (
	dateOnlyPattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dateSlashPattern = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`)
	isoPrefixPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}`)
	timestampLayouts = []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
		"01/02/2006",
		"1/2/2006",
	}
)

// InferSchema infers a semantic type per column by majority vote over a
// sample of up to schemaSampleSize rows. It never fails: columns with no
// classifiable cells default to string, and ties resolve to the type
// seen first while sampling.
func InferSchema(rows []RawRow, columns []string) ColumnSchema {
	sampleSize := len(rows)
	if sampleSize > schemaSampleSize {
		sampleSize = schemaSampleSize
	}

	schema := make(ColumnSchema, len(columns))
	for _, column := range columns {
		counts := make(map[ColumnType]int)
		firstSeen := make(map[ColumnType]int)

		for i := 0; i < sampleSize; i++ {
			t := InferCellType(rows[i][column])
			if _, ok := firstSeen[t]; !ok {
				firstSeen[t] = i
			}
			counts[t]++
		}

		dominant := TypeString
		best := 0
		for t, n := range counts {
			if n > best || (n == best && firstSeen[t] < firstSeen[dominant]) {
				dominant = t
				best = n
			}
		}
		schema[column] = dominant
	}

	return schema
}

// InferCellType classifies a single cell value.
func InferCellType(value string) ColumnType {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return TypeString
	}

	if _, err := strconv.ParseFloat(trimmed, 64); err == nil {
		if strings.Contains(trimmed, ".") {
			return TypeNumber
		}
		return TypeInteger
	}

	if looksLikeDate(trimmed) {
		if _, ok := ParseTimestamp(trimmed); ok {
			return TypeTimestamp
		}
	}

	if strings.EqualFold(trimmed, "true") || strings.EqualFold(trimmed, "false") {
		return TypeBoolean
	}

	return TypeString
}

func looksLikeDate(value string) bool {
	return dateOnlyPattern.MatchString(value) ||
		dateSlashPattern.MatchString(value) ||
		isoPrefixPattern.MatchString(value)
}

// ParseTimestamp parses a cell against the recognized date and timestamp
// layouts, returning the parsed time in UTC.
func ParseTimestamp(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// NormalizeValue coerces a raw cell to the Go value for its semantic
// type. Malformed literals normalize to nil rather than erroring.
func NormalizeValue(raw string, semanticType ColumnType) interface{} {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	switch semanticType {
	case TypeInteger:
		if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return n
		}
		return nil
	case TypeNumber:
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return f
		}
		return nil
	case TypeTimestamp:
		if t, ok := ParseTimestamp(trimmed); ok {
			return t
		}
		return nil
	case TypeBoolean:
		if strings.EqualFold(trimmed, "true") {
			return true
		}
		if strings.EqualFold(trimmed, "false") {
			return false
		}
		return nil
	default:
		return raw
	}
}
