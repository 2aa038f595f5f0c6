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

// InsertAnomalies stores freshly detected anomaly records
func (r *Repository) InsertAnomalies(ctx context.Context, records []*domain.AnomalyRecord) error {
	if len(records) == 0 {
		return nil
	}

	batch, err := r.client.Conn().PrepareBatch(ctx, "INSERT INTO anomalies")
	if err != nil {
		return fmt.Errorf("failed to prepare anomalies batch: %w", err)
	}

	for _, record := range records {
		if record.Version == 0 {
			record.Version = uint64(time.Now().UnixNano())
		}
		if err := appendAnomaly(batch, record); err != nil {
			return fmt.Errorf("failed to append anomaly to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send anomalies batch: %w", err)
	}

	return nil
}

// QueryAnomalies lists a tenant's anomaly records, newest first
func (r *Repository) QueryAnomalies(ctx context.Context, query repository.AnomalyQuery) ([]*domain.AnomalyRecord, error) {
	q := `
		SELECT
			anomaly_id, tenant_id, event_type, detected_at, anomaly_type,
			severity, metric_value, expected_value, deviation_percentage,
			threshold_used, metadata, acknowledged, acknowledged_by,
			acknowledged_at, version
		FROM anomalies FINAL
		WHERE tenant_id = ?
	`
	args := []interface{}{query.TenantID}

	if query.EventType != "" {
		q += " AND event_type = ?"
		args = append(args, query.EventType)
	}
	if query.Acknowledged != nil {
		q += " AND acknowledged = ?"
		args = append(args, *query.Acknowledged)
	}
	if !query.From.IsZero() {
		q += " AND detected_at >= ?"
		args = append(args, query.From)
	}
	if !query.To.IsZero() {
		q += " AND detected_at < ?"
		args = append(args, query.To)
	}
	q += " ORDER BY detected_at DESC"

	rows, err := r.client.Conn().Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query anomalies: %w", err)
	}
	defer func(rows driver.Rows) {
		if err := rows.Close(); err != nil {
			r.log.Error("Failed to close anomaly rows", zap.Error(err))
		}
	}(rows)

	var records []*domain.AnomalyRecord
	for rows.Next() {
		var record domain.AnomalyRecord
		if err := rows.ScanStruct(&record); err != nil {
			return nil, fmt.Errorf("failed to scan anomaly row: %w", err)
		}
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating anomaly rows: %w", err)
	}

	return records, nil
}

// AcknowledgeAnomaly marks a record acknowledged by inserting a newer
// version of the row; the ReplacingMergeTree converges to it. The
// operation is idempotent: acknowledging again just overwrites the
// actor and timestamp.
func (r *Repository) AcknowledgeAnomaly(ctx context.Context, anomalyID, actorUserID string) error {
	const q = `
		SELECT
			anomaly_id, tenant_id, event_type, detected_at, anomaly_type,
			severity, metric_value, expected_value, deviation_percentage,
			threshold_used, metadata, acknowledged, acknowledged_by,
			acknowledged_at, version
		FROM anomalies FINAL
		WHERE anomaly_id = ?
		LIMIT 1
	`

	var record domain.AnomalyRecord
	row := r.client.Conn().QueryRow(ctx, q, anomalyID)
	if err := row.ScanStruct(&record); err != nil {
		return fmt.Errorf("anomaly %s not found: %w", anomalyID, err)
	}

	now := time.Now().UTC()
	record.Acknowledged = true
	record.AcknowledgedBy = actorUserID
	record.AcknowledgedAt = &now
	record.Version = uint64(now.UnixNano())

	batch, err := r.client.Conn().PrepareBatch(ctx, "INSERT INTO anomalies")
	if err != nil {
		return fmt.Errorf("failed to prepare acknowledge batch: %w", err)
	}
	if err := appendAnomaly(batch, &record); err != nil {
		return fmt.Errorf("failed to append acknowledged anomaly: %w", err)
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send acknowledged anomaly: %w", err)
	}

	r.log.Info("Anomaly acknowledged",
		zap.String("anomaly_id", anomalyID),
		zap.String("acknowledged_by", actorUserID))
	return nil
}

func appendAnomaly(batch driver.Batch, record *domain.AnomalyRecord) error {
	metadata := record.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}

	return batch.Append(
		record.AnomalyID,
		record.TenantID,
		record.EventType,
		record.DetectedAt,
		string(record.AnomalyType),
		string(record.Severity),
		record.MetricValue,
		record.ExpectedValue,
		record.DeviationPercentage,
		record.ThresholdUsed,
		metadata,
		record.Acknowledged,
		record.AcknowledgedBy,
		record.AcknowledgedAt,
		record.Version,
	)
}
