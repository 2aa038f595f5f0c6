package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pranav8431/saas-analytics-dashboard/internal/aggregate"
	"github.com/pranav8431/saas-analytics-dashboard/internal/anomaly"
	"github.com/pranav8431/saas-analytics-dashboard/internal/domain"
	"github.com/pranav8431/saas-analytics-dashboard/internal/dto"
	"github.com/pranav8431/saas-analytics-dashboard/internal/ingest"
	"github.com/pranav8431/saas-analytics-dashboard/internal/queue"
	"github.com/pranav8431/saas-analytics-dashboard/internal/repository"
)

const (
	uploadStatusCommitted = "committed"
	uploadStatusRejected  = "rejected"
)

// AnalyticsService implements the analytics pipeline over an injected
// store and job queue. It is stateless between calls and trusts the
// tenant ID it is given; authentication and role checks happen before
// any call reaches it.
type AnalyticsService struct {
	store     repository.Store
	publisher queue.JobPublisher
	detection anomaly.Config
	periods   []aggregate.Period
	log       *zap.Logger
}

// NewAnalyticsService creates a new analytics service. publisher may be
// nil for worker processes that only run jobs and never enqueue them.
func NewAnalyticsService(store repository.Store, publisher queue.JobPublisher, detection anomaly.Config, periods []aggregate.Period, log *zap.Logger) *AnalyticsService {
	return &AnalyticsService{
		store:     store,
		publisher: publisher,
		detection: detection,
		periods:   periods,
		log:       log,
	}
}

// computeEventID generates a deterministic event ID from event content,
// so re-uploading the same file converges in storage instead of
// duplicating rows. The file ID is deliberately excluded.
func computeEventID(event *domain.AnalyticsEvent) string {
	value := "null"
	if event.MetricValue != nil {
		value = fmt.Sprintf("%g", *event.MetricValue)
	}

	keys := make([]string, 0, len(event.Dimensions))
	for k := range event.Dimensions {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	data := fmt.Sprintf("%s|%s|%d|%s",
		event.TenantID,
		event.EventType,
		event.EventTimestamp.UnixMilli(),
		value,
	)
	for _, k := range keys {
		data += "|" + k + "=" + event.Dimensions[k]
	}

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// IngestCSV runs the full ingestion pipeline on one uploaded file:
// decode, infer the column schema, detect the field mapping, validate
// every row, and, only if the whole batch is valid, bulk insert the
// events and enqueue an analysis job. A rejected upload stores nothing
// and reports per-row diagnostics instead.
func (s *AnalyticsService) IngestCSV(ctx context.Context, tenantID string, r io.Reader) (*dto.UploadResponse, error) {
	columns, rows, err := ingest.ReadCSV(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}

	fileID := uuid.NewString()
	schema := ingest.InferSchema(rows, columns)
	mapping := ingest.DetectFieldMapping(columns, schema)
	result := ingest.ValidateRows(rows, columns)

	response := &dto.UploadResponse{
		FileID: fileID,
		Summary: dto.ValidationSummaryData{
			TotalRows:   result.Summary.TotalRows,
			ValidRows:   result.Summary.ValidRows,
			InvalidRows: result.Summary.InvalidRows,
		},
		Schema:  schemaData(schema),
		Mapping: mappingData(mapping),
		Errors:  errorData(result.Errors),
	}

	if !result.Valid {
		s.log.Warn("Upload rejected by validation",
			zap.String("tenant_id", tenantID),
			zap.String("file_id", fileID),
			zap.Int("total_rows", result.Summary.TotalRows),
			zap.Int("invalid_rows", result.Summary.InvalidRows))
		response.Status = uploadStatusRejected
		return response, nil
	}

	// A header-only file validates trivially; there is nothing to store
	// or analyze.
	if len(result.ValidRows) == 0 {
		s.log.Info("Upload contained no data rows",
			zap.String("tenant_id", tenantID),
			zap.String("file_id", fileID))
		response.Status = uploadStatusCommitted
		return response, nil
	}

	events := s.buildEvents(tenantID, fileID, columns, result.ValidRows)

	inserted, err := s.store.InsertBatch(ctx, events)
	if err != nil {
		return nil, fmt.Errorf("failed to insert events: %w", err)
	}
	response.EventsInserted = inserted
	response.Status = uploadStatusCommitted

	job := buildAnalysisJob(tenantID, fileID, events, s.periods)
	if err := s.publisher.PublishAnalysisJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to enqueue analysis job: %w", err)
	}

	s.log.Info("Upload committed",
		zap.String("tenant_id", tenantID),
		zap.String("file_id", fileID),
		zap.Int("events_inserted", inserted),
		zap.Strings("event_types", job.EventTypes))

	return response, nil
}

// buildEvents converts validated rows into analytics events. Dimensions
// are every column that did not feed a role field on that row.
func (s *AnalyticsService) buildEvents(tenantID, fileID string, columns []string, rows []ingest.ValidatedRow) []*domain.AnalyticsEvent {
	now := time.Now().UTC()
	version := uint64(now.UnixNano())

	events := make([]*domain.AnalyticsEvent, 0, len(rows))
	for _, row := range rows {
		used := make(map[string]bool, len(row.SourceColumns))
		for _, column := range row.SourceColumns {
			used[column] = true
		}

		dimensions := make(map[string]string)
		for _, column := range columns {
			if !used[column] {
				dimensions[column] = row.Raw[column]
			}
		}

		rawJSON, err := json.Marshal(row.Raw)
		if err != nil {
			rawJSON = []byte("{}")
		}

		value := row.Value
		event := &domain.AnalyticsEvent{
			TenantID:       tenantID,
			FileID:         fileID,
			EventType:      row.EventType,
			EventTimestamp: row.Timestamp,
			MetricValue:    &value,
			Dimensions:     dimensions,
			RawData:        string(rawJSON),
			IngestedAt:     now,
			Version:        version,
		}
		event.EventID = computeEventID(event)
		events = append(events, event)
	}
	return events
}

// buildAnalysisJob covers the event types and time span of one
// committed batch.
func buildAnalysisJob(tenantID, fileID string, events []*domain.AnalyticsEvent, periods []aggregate.Period) *queue.AnalysisJob {
	typeSet := make(map[string]bool)
	from := events[0].EventTimestamp
	to := events[0].EventTimestamp
	for _, event := range events {
		typeSet[event.EventType] = true
		if event.EventTimestamp.Before(from) {
			from = event.EventTimestamp
		}
		if event.EventTimestamp.After(to) {
			to = event.EventTimestamp
		}
	}

	eventTypes := make([]string, 0, len(typeSet))
	for t := range typeSet {
		eventTypes = append(eventTypes, t)
	}
	sort.Strings(eventTypes)

	periodNames := make([]string, 0, len(periods))
	for _, p := range periods {
		periodNames = append(periodNames, string(p))
	}

	return &queue.AnalysisJob{
		TenantID:   tenantID,
		FileID:     fileID,
		EventTypes: eventTypes,
		Periods:    periodNames,
		From:       from,
		// The query range is half-open, so nudge past the last event.
		To: to.Add(time.Millisecond),
	}
}

func schemaData(schema ingest.ColumnSchema) map[string]string {
	out := make(map[string]string, len(schema))
	for column, t := range schema {
		out[column] = string(t)
	}
	return out
}

func mappingData(mapping ingest.FieldMapping) dto.FieldMappingData {
	return dto.FieldMappingData{
		TimestampColumn:   mapping.TimestampColumn,
		EventTypeColumn:   mapping.EventTypeColumn,
		MetricValueColumn: mapping.MetricValueColumn,
		DimensionColumns:  mapping.DimensionColumns,
	}
}

func errorData(errors []ingest.RowError) []dto.RowErrorData {
	if len(errors) == 0 {
		return nil
	}
	out := make([]dto.RowErrorData, 0, len(errors))
	for _, e := range errors {
		out = append(out, dto.RowErrorData{Row: e.Row, Field: e.Field, Message: e.Message})
	}
	return out
}
