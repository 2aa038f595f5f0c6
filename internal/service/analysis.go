package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pranav8431/saas-analytics-dashboard/internal/aggregate"
	"github.com/pranav8431/saas-analytics-dashboard/internal/anomaly"
	"github.com/pranav8431/saas-analytics-dashboard/internal/domain"
	"github.com/pranav8431/saas-analytics-dashboard/internal/dto"
	"github.com/pranav8431/saas-analytics-dashboard/internal/queue"
	"github.com/pranav8431/saas-analytics-dashboard/internal/repository"
)

// GetTimeSeries aggregates a tenant's events on demand for charting.
// The series is sparse: buckets with no events are omitted.
func (s *AnalyticsService) GetTimeSeries(ctx context.Context, tenantID string, req *dto.TimeSeriesRequest) (*dto.TimeSeriesResponse, error) {
	if req.From > req.To {
		return nil, fmt.Errorf("from timestamp must be less than or equal to to timestamp")
	}

	periodName := req.Period
	if periodName == "" {
		periodName = string(aggregate.PeriodHour)
	}
	period, err := aggregate.ParsePeriod(periodName)
	if err != nil {
		return nil, err
	}

	events, err := s.store.QueryEvents(ctx, repository.EventQuery{
		TenantID:  tenantID,
		EventType: req.EventType,
		From:      time.Unix(req.From, 0).UTC(),
		To:        time.Unix(req.To, 0).UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}

	points := aggregate.Series(events, period)
	response := &dto.TimeSeriesResponse{
		TenantID:  tenantID,
		EventType: req.EventType,
		Period:    string(period),
		From:      req.From,
		To:        req.To,
		Points:    make([]dto.TimeSeriesPointData, 0, len(points)),
	}
	for _, point := range points {
		response.Points = append(response.Points, dto.TimeSeriesPointData{
			Timestamp: point.Timestamp,
			Value:     point.Value,
			Count:     point.Count,
		})
	}
	return response, nil
}

// ComputeAndPersistAggregates recomputes the stored aggregation buckets
// for one tenant, event type, period and window. The upsert converges
// on the aggregate key, so re-running is idempotent.
func (s *AnalyticsService) ComputeAndPersistAggregates(ctx context.Context, tenantID, eventType string, period aggregate.Period, from, to time.Time) error {
	events, err := s.store.QueryEvents(ctx, repository.EventQuery{
		TenantID:  tenantID,
		EventType: eventType,
		From:      from,
		To:        to,
	})
	if err != nil {
		return fmt.Errorf("failed to query events: %w", err)
	}

	metrics := aggregate.Metrics(tenantID, eventType, events, period)
	if len(metrics) == 0 {
		return nil
	}

	if err := s.store.UpsertMetrics(ctx, metrics); err != nil {
		return fmt.Errorf("failed to upsert metrics: %w", err)
	}

	s.log.Info("Aggregates persisted",
		zap.String("tenant_id", tenantID),
		zap.String("event_type", eventType),
		zap.String("period", string(period)),
		zap.Int("buckets", len(metrics)))
	return nil
}

// computeAnomalyID derives the record ID from the finding's identity,
// so re-running detection over the same window converges on the stored
// row instead of accumulating duplicates.
func computeAnomalyID(tenantID, eventType string, finding anomaly.Finding) string {
	data := fmt.Sprintf("%s|%s|%d|%s",
		tenantID,
		eventType,
		finding.Timestamp.UnixMilli(),
		finding.Pass,
	)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// DetectAnomalies runs the detector over an aggregated series and
// stores one record per surviving finding, acknowledged=false.
func (s *AnalyticsService) DetectAnomalies(ctx context.Context, tenantID, eventType string, series []domain.TimeSeriesPoint) error {
	findings := anomaly.Detect(series, s.detection)
	if len(findings) == 0 {
		return nil
	}

	records := make([]*domain.AnomalyRecord, 0, len(findings))
	for _, finding := range findings {
		records = append(records, &domain.AnomalyRecord{
			AnomalyID:           computeAnomalyID(tenantID, eventType, finding),
			TenantID:            tenantID,
			EventType:           eventType,
			DetectedAt:          finding.Timestamp,
			AnomalyType:         finding.Type,
			Severity:            finding.Severity,
			MetricValue:         finding.Value,
			ExpectedValue:       finding.ExpectedValue,
			DeviationPercentage: finding.DeviationPercentage,
			ThresholdUsed:       finding.ThresholdUsed,
			Metadata:            map[string]string{"pass": finding.Pass},
			Acknowledged:        false,
		})
	}

	if err := s.store.InsertAnomalies(ctx, records); err != nil {
		return fmt.Errorf("failed to insert anomalies: %w", err)
	}

	s.log.Info("Anomalies detected",
		zap.String("tenant_id", tenantID),
		zap.String("event_type", eventType),
		zap.Int("count", len(records)))
	return nil
}

// RunAnalysisJob recomputes aggregates and re-runs anomaly detection
// for every event type and period a job covers. Both halves are
// idempotent, so a redelivered job converges to the same state.
func (s *AnalyticsService) RunAnalysisJob(ctx context.Context, job *queue.AnalysisJob) error {
	for _, periodName := range job.Periods {
		period, err := aggregate.ParsePeriod(periodName)
		if err != nil {
			return err
		}

		// Detection looks at whole buckets, so widen the window to the
		// bucket boundaries around the job's span.
		from := period.Truncate(job.From)
		to := period.Next(period.Truncate(job.To))

		for _, eventType := range job.EventTypes {
			if err := s.ComputeAndPersistAggregates(ctx, job.TenantID, eventType, period, from, to); err != nil {
				return err
			}

			events, err := s.store.QueryEvents(ctx, repository.EventQuery{
				TenantID:  job.TenantID,
				EventType: eventType,
				From:      from,
				To:        to,
			})
			if err != nil {
				return fmt.Errorf("failed to query events: %w", err)
			}

			series := aggregate.Series(events, period)
			if err := s.DetectAnomalies(ctx, job.TenantID, eventType, series); err != nil {
				return err
			}
		}
	}
	return nil
}

// ListAnomalies lists a tenant's anomaly records
func (s *AnalyticsService) ListAnomalies(ctx context.Context, tenantID string, req *dto.ListAnomaliesRequest) (*dto.ListAnomaliesResponse, error) {
	query := repository.AnomalyQuery{
		TenantID:     tenantID,
		EventType:    req.EventType,
		Acknowledged: req.Acknowledged,
	}
	if req.From > 0 {
		query.From = time.Unix(req.From, 0).UTC()
	}
	if req.To > 0 {
		query.To = time.Unix(req.To, 0).UTC()
	}

	records, err := s.store.QueryAnomalies(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query anomalies: %w", err)
	}

	response := &dto.ListAnomaliesResponse{
		TenantID:  tenantID,
		Count:     len(records),
		Anomalies: make([]dto.AnomalyData, 0, len(records)),
	}
	for _, record := range records {
		response.Anomalies = append(response.Anomalies, dto.AnomalyData{
			AnomalyID:           record.AnomalyID,
			EventType:           record.EventType,
			DetectedAt:          record.DetectedAt,
			AnomalyType:         string(record.AnomalyType),
			Severity:            string(record.Severity),
			MetricValue:         record.MetricValue,
			ExpectedValue:       record.ExpectedValue,
			DeviationPercentage: record.DeviationPercentage,
			ThresholdUsed:       record.ThresholdUsed,
			Metadata:            record.Metadata,
			Acknowledged:        record.Acknowledged,
			AcknowledgedBy:      record.AcknowledgedBy,
			AcknowledgedAt:      record.AcknowledgedAt,
		})
	}
	return response, nil
}

// AcknowledgeAnomaly marks a record acknowledged by the given actor.
// Idempotent: acknowledging twice overwrites the actor and timestamp.
func (s *AnalyticsService) AcknowledgeAnomaly(ctx context.Context, anomalyID, actorUserID string) error {
	if err := s.store.AcknowledgeAnomaly(ctx, anomalyID, actorUserID); err != nil {
		return fmt.Errorf("failed to acknowledge anomaly: %w", err)
	}
	return nil
}
