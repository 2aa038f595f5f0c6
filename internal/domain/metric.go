package domain

import "time"

// TimeSeriesPoint is one bucket of an aggregated series. Value is the
// average metric for the bucket; Count is the number of events in it.
// Series are sparse: buckets with zero events are never emitted.
type TimeSeriesPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
	Count     uint64    `json:"count"`
}

// AggregatedMetric is one persisted aggregation bucket. It is uniquely
// keyed by (tenant_id, event_type, aggregation_period, period_start,
// dimensions); recomputation upserts on that key and never duplicates.
type AggregatedMetric struct {
	TenantID          string            `ch:"tenant_id"`
	EventType         string            `ch:"event_type"`
	AggregationPeriod string            `ch:"aggregation_period"`
	PeriodStart       time.Time         `ch:"period_start"`
	PeriodEnd         time.Time         `ch:"period_end"`
	EventCount        uint64            `ch:"count_events"`
	SumValue          float64           `ch:"sum_value"`
	AvgValue          float64           `ch:"avg_value"`
	MinValue          float64           `ch:"min_value"`
	MaxValue          float64           `ch:"max_value"`
	StddevValue       float64           `ch:"stddev_value"`
	Dimensions        map[string]string `ch:"dimensions"`
	Version           uint64            `ch:"version"`
}
