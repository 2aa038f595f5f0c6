package ingest

import "strings"

// roleRule describes one field-mapping rule: a column claims the role
// when the role is still unassigned, its inferred type is in types, and
// its lowercased name contains one of the hints.
type roleRule struct {
	role  string
	types []ColumnType
	hints []string
}

const (
	roleTimestamp   = "timestamp"
	roleEventType   = "event_type"
	roleMetricValue = "value"
)

// mappingRules is evaluated in order for every column; the first rule a
// column satisfies wins and later rules never reconsider it.
var mappingRules = []roleRule{
	{
		role:  roleTimestamp,
		types: []ColumnType{TypeTimestamp},
		hints: []string{"timestamp", "time", "date", "created", "occurred", "event_time"},
	},
	{
		role:  roleEventType,
		types: []ColumnType{TypeString},
		hints: []string{"type", "event_type", "event", "action", "category"},
	},
	{
		role:  roleMetricValue,
		types: []ColumnType{TypeInteger, TypeNumber},
		hints: []string{"value", "amount", "count", "metric", "score", "revenue", "total"},
	},
}

func (r roleRule) matches(column string, schema ColumnSchema) bool {
	typeOK := false
	for _, t := range r.types {
		if schema[column] == t {
			typeOK = true
			break
		}
	}
	if !typeOK {
		return false
	}

	name := strings.ToLower(column)
	for _, hint := range r.hints {
		if strings.Contains(name, hint) {
			return true
		}
	}
	return false
}

// DetectFieldMapping assigns columns to event roles in a single greedy
// pass: each column is tested against the rules in order and claims the
// first unassigned role it matches, otherwise it becomes a dimension.
// If no column matched the timestamp rule by name, the first
// timestamp-typed column is promoted out of the dimensions. If no column
// matched the event-type rule, EventTypeColumn stays empty and rows get
// DefaultEventType downstream.
func DetectFieldMapping(columns []string, schema ColumnSchema) FieldMapping {
	mapping := FieldMapping{DimensionColumns: []string{}}
	assigned := map[string]*string{
		roleTimestamp:   &mapping.TimestampColumn,
		roleEventType:   &mapping.EventTypeColumn,
		roleMetricValue: &mapping.MetricValueColumn,
	}

	for _, column := range columns {
		claimed := false
		for _, rule := range mappingRules {
			target := assigned[rule.role]
			if *target != "" {
				continue
			}
			if rule.matches(column, schema) {
				*target = column
				claimed = true
				break
			}
		}
		if !claimed {
			mapping.DimensionColumns = append(mapping.DimensionColumns, column)
		}
	}

	if mapping.TimestampColumn == "" {
		for _, column := range columns {
			if schema[column] == TypeTimestamp {
				mapping.TimestampColumn = column
				mapping.DimensionColumns = removeColumn(mapping.DimensionColumns, column)
				break
			}
		}
	}

	return mapping
}

func removeColumn(columns []string, target string) []string {
	out := columns[:0]
	for _, c := range columns {
		if c != target {
			out = append(out, c)
		}
	}
	return out
}
