package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/pranav8431/saas-analytics-dashboard/internal/domain"
)

// UpsertMetrics writes aggregation buckets. Every row carries a fresh
// version, so recomputing a window replaces the previous rows for the
// same (tenant, event_type, period, period_start, dimensions) key.
func (r *Repository) UpsertMetrics(ctx context.Context, metrics []*domain.AggregatedMetric) error {
	if len(metrics) == 0 {
		return nil
	}

	batch, err := r.client.Conn().PrepareBatch(ctx, "INSERT INTO aggregated_metrics")
	if err != nil {
		return fmt.Errorf("failed to prepare metrics batch: %w", err)
	}

	version := uint64(time.Now().UnixNano())
	for _, metric := range metrics {
		dimensions := metric.Dimensions
		if dimensions == nil {
			dimensions = map[string]string{}
		}

		err := batch.Append(
			metric.TenantID,
			metric.EventType,
			metric.AggregationPeriod,
			metric.PeriodStart,
			metric.PeriodEnd,
			metric.EventCount,
			metric.SumValue,
			metric.AvgValue,
			metric.MinValue,
			metric.MaxValue,
			metric.StddevValue,
			dimensions,
			dimensionsKey(dimensions),
			version,
		)
		if err != nil {
			return fmt.Errorf("failed to append metric to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send metrics batch: %w", err)
	}

	return nil
}
