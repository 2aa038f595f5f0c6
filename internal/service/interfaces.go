package service

import (
	"context"
	"io"
	"time"

	"github.com/pranav8431/saas-analytics-dashboard/internal/aggregate"
	"github.com/pranav8431/saas-analytics-dashboard/internal/domain"
	"github.com/pranav8431/saas-analytics-dashboard/internal/dto"
	"github.com/pranav8431/saas-analytics-dashboard/internal/queue"
)

// AnalyticsServicer defines the interface for analytics pipeline operations
type AnalyticsServicer interface {
	IngestCSV(ctx context.Context, tenantID string, r io.Reader) (*dto.UploadResponse, error)
	GetTimeSeries(ctx context.Context, tenantID string, req *dto.TimeSeriesRequest) (*dto.TimeSeriesResponse, error)
	ListAnomalies(ctx context.Context, tenantID string, req *dto.ListAnomaliesRequest) (*dto.ListAnomaliesResponse, error)
	AcknowledgeAnomaly(ctx context.Context, anomalyID, actorUserID string) error
	ComputeAndPersistAggregates(ctx context.Context, tenantID, eventType string, period aggregate.Period, from, to time.Time) error
	DetectAnomalies(ctx context.Context, tenantID, eventType string, series []domain.TimeSeriesPoint) error
	RunAnalysisJob(ctx context.Context, job *queue.AnalysisJob) error
}
