package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"github.com/pranav8431/saas-analytics-dashboard/internal/domain"
	"github.com/pranav8431/saas-analytics-dashboard/internal/repository"
)

// InsertBatch inserts a batch of analytics events in one prepared batch
func (r *Repository) InsertBatch(ctx context.Context, events []*domain.AnalyticsEvent) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	batch, err := r.client.Conn().PrepareBatch(ctx, "INSERT INTO analytics_events")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare batch: %w", err)
	}

	insertedCount := 0
	for _, event := range events {
		if event.Version == 0 {
			event.Version = uint64(time.Now().UnixNano())
		}

		dimensions := event.Dimensions
		if dimensions == nil {
			dimensions = map[string]string{}
		}

		rawData := event.RawData
		if rawData == "" {
			rawData = "{}"
		}

		err := batch.Append(
			event.EventID,
			event.TenantID,
			event.FileID,
			event.EventType,
			event.EventTimestamp,
			event.MetricValue,
			dimensions,
			rawData,
			event.IngestedAt,
			event.Version,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to append event to batch: %w", err)
		}
		insertedCount++
	}

	if err := batch.Send(); err != nil {
		return 0, fmt.Errorf("failed to send batch: %w", err)
	}

	return insertedCount, nil
}

// QueryEvents returns a tenant's events of one type inside [From, To),
// ordered by event timestamp ascending
func (r *Repository) QueryEvents(ctx context.Context, query repository.EventQuery) ([]*domain.AnalyticsEvent, error) {
	const q = `
		SELECT
			event_id, tenant_id, file_id, event_type, event_timestamp,
			metric_value, dimensions, raw_data, ingested_at, version
		FROM analytics_events FINAL
		WHERE tenant_id = ?
		  AND event_type = ?
		  AND event_timestamp >= ?
		  AND event_timestamp < ?
		ORDER BY event_timestamp ASC
	`

	rows, err := r.client.Conn().Query(ctx, q, query.TenantID, query.EventType, query.From, query.To)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer func(rows driver.Rows) {
		if err := rows.Close(); err != nil {
			r.log.Error("Failed to close event rows", zap.Error(err))
		}
	}(rows)

	var events []*domain.AnalyticsEvent
	for rows.Next() {
		var event domain.AnalyticsEvent
		if err := rows.ScanStruct(&event); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}

	return events, nil
}
