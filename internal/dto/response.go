package dto

import "time"

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error" example:"validation_error"`
	Message string `json:"message,omitempty" example:"event_type is required"`
}

// FieldMappingData reports which columns were mapped to event roles
type FieldMappingData struct {
	TimestampColumn   string   `json:"timestamp_column" example:"timestamp"`
	EventTypeColumn   string   `json:"event_type_column" example:"event_type"`
	MetricValueColumn string   `json:"metric_value_column" example:"value"`
	DimensionColumns  []string `json:"dimension_columns" example:"user_id,region"`
}

// RowErrorData is one validation failure; schema-level errors use row 0
type RowErrorData struct {
	Row     int    `json:"row" example:"3"`
	Field   string `json:"field" example:"value"`
	Message string `json:"message" example:"value must be numeric"`
}

// ValidationSummaryData counts upload rows by outcome
type ValidationSummaryData struct {
	TotalRows   int `json:"total_rows" example:"25"`
	ValidRows   int `json:"valid_rows" example:"25"`
	InvalidRows int `json:"invalid_rows" example:"0"`
}

// UploadResponse is the outcome of one CSV upload. Status is
// "committed" when every row validated and the batch was stored, or
// "rejected" when validation failed and nothing was stored.
type UploadResponse struct {
	FileID         string                `json:"file_id" example:"2b1c3a64-7f3e-4f6e-9f1a-8f2f4f0a1b2c"`
	Status         string                `json:"status" example:"committed"`
	Summary        ValidationSummaryData `json:"summary"`
	Schema         map[string]string     `json:"schema"`
	Mapping        FieldMappingData      `json:"mapping"`
	Errors         []RowErrorData        `json:"errors,omitempty"`
	EventsInserted int                   `json:"events_inserted" example:"25"`
}

// TimeSeriesPointData is one bucket of an aggregated series
type TimeSeriesPointData struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value" example:"102.5"`
	Count     uint64    `json:"count" example:"42"`
}

// TimeSeriesResponse is the charting series for one tenant and event type
type TimeSeriesResponse struct {
	TenantID  string                `json:"tenant_id" example:"tenant_1"`
	EventType string                `json:"event_type" example:"page_view"`
	Period    string                `json:"period" example:"hour"`
	From      int64                 `json:"from" example:"1723475612"`
	To        int64                 `json:"to" example:"1723562012"`
	Points    []TimeSeriesPointData `json:"points"`
}

// AnomalyData is one anomaly record in API shape
type AnomalyData struct {
	AnomalyID           string            `json:"anomaly_id"`
	EventType           string            `json:"event_type" example:"page_view"`
	DetectedAt          time.Time         `json:"detected_at"`
	AnomalyType         string            `json:"anomaly_type" example:"spike"`
	Severity            string            `json:"severity" example:"critical"`
	MetricValue         float64           `json:"metric_value" example:"500"`
	ExpectedValue       float64           `json:"expected_value" example:"133.3"`
	DeviationPercentage float64           `json:"deviation_percentage" example:"276.1"`
	ThresholdUsed       float64           `json:"threshold_used" example:"2.5"`
	Metadata            map[string]string `json:"metadata,omitempty"`
	Acknowledged        bool              `json:"acknowledged" example:"false"`
	AcknowledgedBy      string            `json:"acknowledged_by,omitempty"`
	AcknowledgedAt      *time.Time        `json:"acknowledged_at,omitempty"`
}

// ListAnomaliesResponse lists a tenant's anomaly records
type ListAnomaliesResponse struct {
	TenantID  string        `json:"tenant_id" example:"tenant_1"`
	Count     int           `json:"count" example:"2"`
	Anomalies []AnomalyData `json:"anomalies"`
}

// AcknowledgeAnomalyResponse confirms an acknowledge operation
type AcknowledgeAnomalyResponse struct {
	AnomalyID string `json:"anomaly_id"`
	Status    string `json:"status" example:"acknowledged"`
}
