package aggregate

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/pranav8431/saas-analytics-dashboard/internal/domain"
)

// Period is a fixed-width, calendar-aligned bucket size.
type Period string

const (
	PeriodHour  Period = "hour"
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// ParsePeriod validates a period literal from config or a request.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodHour, PeriodDay, PeriodWeek, PeriodMonth:
		return Period(s), nil
	default:
		return "", fmt.Errorf("invalid aggregation period: %q (supported: hour, day, week, month)", s)
	}
}

// Truncate aligns t to the start of its bucket in UTC. Weeks start on
// Monday.
func (p Period) Truncate(t time.Time) time.Time {
	t = t.UTC()
	switch p {
	case PeriodHour:
		return t.Truncate(time.Hour)
	case PeriodDay:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	case PeriodWeek:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case PeriodMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return t
	}
}

// Next returns the start of the bucket following the one beginning at
// start, i.e. the exclusive end of that bucket.
func (p Period) Next(start time.Time) time.Time {
	switch p {
	case PeriodHour:
		return start.Add(time.Hour)
	case PeriodDay:
		return start.AddDate(0, 0, 1)
	case PeriodWeek:
		return start.AddDate(0, 0, 7)
	case PeriodMonth:
		return start.AddDate(0, 1, 0)
	default:
		return start
	}
}

// bucket accumulates statistics for one time window. Count covers every
// event in the window; the numeric statistics cover non-null metric
// values only.
type bucket struct {
	start   time.Time
	count   uint64
	nonNull uint64
	sum     float64
	sumSq   float64
	min     float64
	max     float64
}

func (b *bucket) add(value *float64) {
	b.count++
	if value == nil {
		return
	}
	v := *value
	if b.nonNull == 0 || v < b.min {
		b.min = v
	}
	if b.nonNull == 0 || v > b.max {
		b.max = v
	}
	b.nonNull++
	b.sum += v
	b.sumSq += v * v
}

func (b *bucket) avg() float64 {
	if b.nonNull == 0 {
		return 0
	}
	return b.sum / float64(b.nonNull)
}

// stddev is the population standard deviation (divide by N, not N-1).
func (b *bucket) stddev() float64 {
	if b.nonNull == 0 {
		return 0
	}
	mean := b.avg()
	variance := b.sumSq/float64(b.nonNull) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

// bucketize groups events by truncated timestamp and returns the buckets
// ordered by start time ascending. Empty windows produce no bucket, so
// the result is a sparse series.
func bucketize(events []*domain.AnalyticsEvent, period Period) []*bucket {
	byStart := make(map[time.Time]*bucket)
	for _, event := range events {
		start := period.Truncate(event.EventTimestamp)
		b, ok := byStart[start]
		if !ok {
			b = &bucket{start: start}
			byStart[start] = b
		}
		b.add(event.MetricValue)
	}

	buckets := make([]*bucket, 0, len(byStart))
	for _, b := range byStart {
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].start.Before(buckets[j].start)
	})
	return buckets
}

// Series buckets events into the charting shape: one point per occupied
// window, carrying the average metric and the event count.
func Series(events []*domain.AnalyticsEvent, period Period) []domain.TimeSeriesPoint {
	buckets := bucketize(events, period)
	points := make([]domain.TimeSeriesPoint, 0, len(buckets))
	for _, b := range buckets {
		points = append(points, domain.TimeSeriesPoint{
			Timestamp: b.start,
			Value:     b.avg(),
			Count:     b.count,
		})
	}
	return points
}

// Metrics buckets events into the storage shape with the full statistic
// set. Re-running over the same events yields identical rows, so the
// caller can upsert the result idempotently.
func Metrics(tenantID, eventType string, events []*domain.AnalyticsEvent, period Period) []*domain.AggregatedMetric {
	buckets := bucketize(events, period)
	metrics := make([]*domain.AggregatedMetric, 0, len(buckets))
	for _, b := range buckets {
		metrics = append(metrics, &domain.AggregatedMetric{
			TenantID:          tenantID,
			EventType:         eventType,
			AggregationPeriod: string(period),
			PeriodStart:       b.start,
			PeriodEnd:         period.Next(b.start),
			EventCount:        b.count,
			SumValue:          b.sum,
			AvgValue:          b.avg(),
			MinValue:          b.min,
			MaxValue:          b.max,
			StddevValue:       b.stddev(),
			Dimensions:        map[string]string{},
		})
	}
	return metrics
}
