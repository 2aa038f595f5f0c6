package domain

import "time"

// AnomalyType classifies the direction of a detected anomaly.
type AnomalyType string

const (
	AnomalySpike   AnomalyType = "spike"
	AnomalyDrop    AnomalyType = "drop"
	AnomalyOutlier AnomalyType = "outlier"
)

// Severity is a four-level ordinal classification of how extreme a
// detected anomaly is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// AnomalyRecord represents one detected anomaly. It is created by the
// detector with Acknowledged=false and mutated only by the acknowledge
// operation; records are never deleted by this service.
type AnomalyRecord struct {
	AnomalyID           string            `ch:"anomaly_id"`
	TenantID            string            `ch:"tenant_id"`
	EventType           string            `ch:"event_type"`
	DetectedAt          time.Time         `ch:"detected_at"`
	AnomalyType         AnomalyType       `ch:"anomaly_type"`
	Severity            Severity          `ch:"severity"`
	MetricValue         float64           `ch:"metric_value"`
	ExpectedValue       float64           `ch:"expected_value"`
	DeviationPercentage float64           `ch:"deviation_percentage"`
	ThresholdUsed       float64           `ch:"threshold_used"`
	Metadata            map[string]string `ch:"metadata"`
	Acknowledged        bool              `ch:"acknowledged"`
	AcknowledgedBy      string            `ch:"acknowledged_by"`
	AcknowledgedAt      *time.Time        `ch:"acknowledged_at"`
	Version             uint64            `ch:"version"`
}
