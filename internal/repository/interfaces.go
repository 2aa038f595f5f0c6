package repository

import (
	"context"
	"time"

	"github.com/pranav8431/saas-analytics-dashboard/internal/domain"
)

// EventQuery selects events for one tenant and event type inside a
// half-open time range [From, To).
type EventQuery struct {
	TenantID  string
	EventType string
	From      time.Time
	To        time.Time
}

// AnomalyQuery filters a tenant's anomaly records. EventType and
// Acknowledged are optional; zero From/To disable the range filter.
type AnomalyQuery struct {
	TenantID     string
	EventType    string
	Acknowledged *bool
	From         time.Time
	To           time.Time
}

// EventRepository defines storage operations for analytics events
type EventRepository interface {
	// InsertBatch inserts a batch of validated events in one call
	InsertBatch(ctx context.Context, events []*domain.AnalyticsEvent) (int, error)

	// QueryEvents returns a tenant's events of one type within a range,
	// ordered by event timestamp ascending
	QueryEvents(ctx context.Context, query EventQuery) ([]*domain.AnalyticsEvent, error)
}

// MetricRepository defines storage operations for aggregated metrics
type MetricRepository interface {
	// UpsertMetrics writes aggregation buckets; rows sharing the unique
	// aggregate key replace earlier versions rather than duplicating
	UpsertMetrics(ctx context.Context, metrics []*domain.AggregatedMetric) error
}

// AnomalyRepository defines storage operations for anomaly records
type AnomalyRepository interface {
	// InsertAnomalies stores freshly detected anomaly records
	InsertAnomalies(ctx context.Context, records []*domain.AnomalyRecord) error

	// QueryAnomalies lists a tenant's anomaly records
	QueryAnomalies(ctx context.Context, query AnomalyQuery) ([]*domain.AnomalyRecord, error)

	// AcknowledgeAnomaly marks a record acknowledged by the given actor.
	// The operation is idempotent: re-acknowledging overwrites the
	// actor and timestamp
	AcknowledgeAnomaly(ctx context.Context, anomalyID, actorUserID string) error
}

// Store combines the three repositories with lifecycle operations; the
// ClickHouse implementation backs all of them with one connection.
type Store interface {
	EventRepository
	MetricRepository
	AnomalyRepository

	// InitSchema initializes the database schema (creates tables if they don't exist)
	InitSchema(ctx context.Context) error

	// Ping checks if the database connection is alive
	Ping(ctx context.Context) error

	// Close closes the store and releases resources
	Close() error
}
