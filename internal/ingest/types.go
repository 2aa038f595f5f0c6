package ingest

// RawRow is one parsed CSV row keyed by column name. It only exists
// during ingestion of a single file.
type RawRow map[string]string

// ColumnType is the inferred semantic type of a CSV column.
type ColumnType string

const (
	TypeString    ColumnType = "string"
	TypeInteger   ColumnType = "integer"
	TypeNumber    ColumnType = "number"
	TypeTimestamp ColumnType = "timestamp"
	TypeBoolean   ColumnType = "boolean"
)

// ColumnSchema maps column names to their inferred semantic type.
type ColumnSchema map[string]ColumnType

// FieldMapping records which columns feed the three event roles. Columns
// not claimed by a role are free-form dimensions. An empty
// EventTypeColumn means no suitable column exists and every row gets
// DefaultEventType; no column lookup must happen for it.
type FieldMapping struct {
	TimestampColumn   string   `json:"timestamp_column"`
	EventTypeColumn   string   `json:"event_type_column"`
	MetricValueColumn string   `json:"metric_value_column"`
	DimensionColumns  []string `json:"dimension_columns"`
}

// DefaultEventType is the literal event type assigned when a file has no
// recognizable event-type column.
const DefaultEventType = "event"
