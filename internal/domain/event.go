package domain

import "time"

// AnalyticsEvent represents a normalized event stored in ClickHouse.
// Events are immutable once inserted; TenantID is never reassigned.
type AnalyticsEvent struct {
	EventID        string            `ch:"event_id"`
	TenantID       string            `ch:"tenant_id"`
	FileID         string            `ch:"file_id"`
	EventType      string            `ch:"event_type"`
	EventTimestamp time.Time         `ch:"event_timestamp"`
	MetricValue    *float64          `ch:"metric_value"`
	Dimensions     map[string]string `ch:"dimensions"`
	RawData        string            `ch:"raw_data"`
	IngestedAt     time.Time         `ch:"ingested_at"`
	Version        uint64            `ch:"version"`
}
