package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/pranav8431/saas-analytics-dashboard/internal/aggregate"
	"github.com/pranav8431/saas-analytics-dashboard/internal/domain"
	"github.com/pranav8431/saas-analytics-dashboard/internal/dto"
	"github.com/pranav8431/saas-analytics-dashboard/internal/queue"
)

// MockAnalyticsService is a mock implementation of service.AnalyticsServicer
type MockAnalyticsService struct {
	mock.Mock
}

func (m *MockAnalyticsService) IngestCSV(ctx context.Context, tenantID string, r io.Reader) (*dto.UploadResponse, error) {
	args := m.Called(ctx, tenantID, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UploadResponse), args.Error(1)
}

func (m *MockAnalyticsService) GetTimeSeries(ctx context.Context, tenantID string, req *dto.TimeSeriesRequest) (*dto.TimeSeriesResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TimeSeriesResponse), args.Error(1)
}

func (m *MockAnalyticsService) ListAnomalies(ctx context.Context, tenantID string, req *dto.ListAnomaliesRequest) (*dto.ListAnomaliesResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListAnomaliesResponse), args.Error(1)
}

func (m *MockAnalyticsService) AcknowledgeAnomaly(ctx context.Context, anomalyID, actorUserID string) error {
	args := m.Called(ctx, anomalyID, actorUserID)
	return args.Error(0)
}

func (m *MockAnalyticsService) ComputeAndPersistAggregates(ctx context.Context, tenantID, eventType string, period aggregate.Period, from, to time.Time) error {
	args := m.Called(ctx, tenantID, eventType, period, from, to)
	return args.Error(0)
}

func (m *MockAnalyticsService) DetectAnomalies(ctx context.Context, tenantID, eventType string, series []domain.TimeSeriesPoint) error {
	args := m.Called(ctx, tenantID, eventType, series)
	return args.Error(0)
}

func (m *MockAnalyticsService) RunAnalysisJob(ctx context.Context, job *queue.AnalysisJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func newTestHandler(analytics *MockAnalyticsService) *Handler {
	gin.SetMode(gin.TestMode)
	return NewHandler(analytics, 10*1024*1024, zap.NewNop())
}

func multipartUpload(t *testing.T, fieldName, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(fieldName, "events.csv")
	assert.NoError(t, err)
	_, err = part.Write([]byte(content))
	assert.NoError(t, err)
	assert.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestHealthCheck(t *testing.T) {
	h := newTestHandler(new(MockAnalyticsService))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestUploadCSV_Committed(t *testing.T) {
	analytics := new(MockAnalyticsService)
	h := newTestHandler(analytics)

	analytics.On("IngestCSV", mock.Anything, "tenant_1", mock.Anything).Return(&dto.UploadResponse{
		FileID: "file_1",
		Status: "committed",
		Summary: dto.ValidationSummaryData{
			TotalRows: 2,
			ValidRows: 2,
		},
		EventsInserted: 2,
	}, nil)

	body, contentType := multipartUpload(t, "file", "timestamp,event_type,value\n2024-03-01T10:00:00Z,page_view,12\n")
	req := httptest.NewRequest(http.MethodPost, "/v1/tenants/tenant_1/uploads", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"file_id":"file_1"`)
	assert.Contains(t, w.Body.String(), `"status":"committed"`)
	analytics.AssertExpectations(t)
}

func TestUploadCSV_Rejected(t *testing.T) {
	analytics := new(MockAnalyticsService)
	h := newTestHandler(analytics)

	analytics.On("IngestCSV", mock.Anything, "tenant_1", mock.Anything).Return(&dto.UploadResponse{
		FileID: "file_1",
		Status: "rejected",
		Summary: dto.ValidationSummaryData{
			TotalRows:   2,
			InvalidRows: 2,
		},
		Errors: []dto.RowErrorData{
			{Row: 0, Field: "schema", Message: "Missing required columns: value"},
		},
	}, nil)

	body, contentType := multipartUpload(t, "file", "timestamp,event_type\n2024-03-01T10:00:00Z,page_view\n")
	req := httptest.NewRequest(http.MethodPost, "/v1/tenants/tenant_1/uploads", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"rejected"`)
	assert.Contains(t, w.Body.String(), "Missing required columns")
}

func TestUploadCSV_MissingFilePart(t *testing.T) {
	analytics := new(MockAnalyticsService)
	h := newTestHandler(analytics)

	body, contentType := multipartUpload(t, "attachment", "timestamp,event_type,value\n")
	req := httptest.NewRequest(http.MethodPost, "/v1/tenants/tenant_1/uploads", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	analytics.AssertNotCalled(t, "IngestCSV")
}

func TestUploadCSV_ServiceError(t *testing.T) {
	analytics := new(MockAnalyticsService)
	h := newTestHandler(analytics)

	analytics.On("IngestCSV", mock.Anything, "tenant_1", mock.Anything).
		Return(nil, errors.New("clickhouse unavailable"))

	body, contentType := multipartUpload(t, "file", "timestamp,event_type,value\n2024-03-01T10:00:00Z,page_view,12\n")
	req := httptest.NewRequest(http.MethodPost, "/v1/tenants/tenant_1/uploads", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal_error")
}

func TestGetTimeSeries(t *testing.T) {
	analytics := new(MockAnalyticsService)
	h := newTestHandler(analytics)

	analytics.On("GetTimeSeries", mock.Anything, "tenant_1", mock.AnythingOfType("*dto.TimeSeriesRequest")).
		Return(&dto.TimeSeriesResponse{
			TenantID:  "tenant_1",
			EventType: "page_view",
			Period:    "hour",
			Points: []dto.TimeSeriesPointData{
				{Timestamp: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), Value: 20, Count: 2},
			},
		}, nil)

	req := httptest.NewRequest(http.MethodGet,
		"/v1/tenants/tenant_1/timeseries?event_type=page_view&from=1709287200&to=1709290800&period=hour", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"event_type":"page_view"`)

	bound := analytics.Calls[0].Arguments.Get(2).(*dto.TimeSeriesRequest)
	assert.Equal(t, "page_view", bound.EventType)
	assert.Equal(t, int64(1709287200), bound.From)
	assert.Equal(t, "hour", bound.Period)
}

func TestGetTimeSeries_MissingEventType(t *testing.T) {
	analytics := new(MockAnalyticsService)
	h := newTestHandler(analytics)

	req := httptest.NewRequest(http.MethodGet, "/v1/tenants/tenant_1/timeseries?from=1&to=2", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	analytics.AssertNotCalled(t, "GetTimeSeries")
}

func TestListAnomalies(t *testing.T) {
	analytics := new(MockAnalyticsService)
	h := newTestHandler(analytics)

	analytics.On("ListAnomalies", mock.Anything, "tenant_1", mock.AnythingOfType("*dto.ListAnomaliesRequest")).
		Return(&dto.ListAnomaliesResponse{
			TenantID: "tenant_1",
			Count:    1,
			Anomalies: []dto.AnomalyData{
				{AnomalyID: "a1", EventType: "page_view", AnomalyType: "spike", Severity: "critical"},
			},
		}, nil)

	req := httptest.NewRequest(http.MethodGet,
		"/v1/tenants/tenant_1/anomalies?event_type=page_view&acknowledged=false", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"anomaly_id":"a1"`)

	bound := analytics.Calls[0].Arguments.Get(2).(*dto.ListAnomaliesRequest)
	assert.NotNil(t, bound.Acknowledged)
	assert.False(t, *bound.Acknowledged)
}

func TestAcknowledgeAnomaly(t *testing.T) {
	analytics := new(MockAnalyticsService)
	h := newTestHandler(analytics)

	analytics.On("AcknowledgeAnomaly", mock.Anything, "a1", "user_9").Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/anomalies/a1/acknowledge",
		strings.NewReader(`{"acknowledged_by":"user_9"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"acknowledged"`)
	analytics.AssertExpectations(t)
}

func TestAcknowledgeAnomaly_MissingActor(t *testing.T) {
	analytics := new(MockAnalyticsService)
	h := newTestHandler(analytics)

	req := httptest.NewRequest(http.MethodPost, "/v1/anomalies/a1/acknowledge",
		strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	analytics.AssertNotCalled(t, "AcknowledgeAnomaly")
}

func TestAcknowledgeAnomaly_ServiceError(t *testing.T) {
	analytics := new(MockAnalyticsService)
	h := newTestHandler(analytics)

	analytics.On("AcknowledgeAnomaly", mock.Anything, "missing", "user_9").
		Return(errors.New("anomaly not found"))

	req := httptest.NewRequest(http.MethodPost, "/v1/anomalies/missing/acknowledge",
		strings.NewReader(`{"acknowledged_by":"user_9"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
