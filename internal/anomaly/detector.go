package anomaly

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/pranav8431/saas-analytics-dashboard/internal/domain"
)

// TieBreakPolicy decides which finding survives when the outlier and
// trend passes flag the same timestamp.
type TieBreakPolicy string

const (
	// LastWriteWins keeps whichever finding was merged last; trend-pass
	// findings are merged after outlier-pass findings, so they win.
	// This mirrors the legacy merge behavior and is the default.
	LastWriteWins TieBreakPolicy = "last_write_wins"
	// HighestSeverityWins keeps the more severe finding on collision.
	HighestSeverityWins TieBreakPolicy = "highest_severity_wins"
)

// ParseTieBreak validates a tie-break literal from config.
func ParseTieBreak(s string) (TieBreakPolicy, error) {
	switch TieBreakPolicy(s) {
	case LastWriteWins, HighestSeverityWins:
		return TieBreakPolicy(s), nil
	default:
		return "", fmt.Errorf("invalid tie-break policy: %q (supported: last_write_wins, highest_severity_wins)", s)
	}
}

// Config tunes detection. SensitivityLevel runs 1-5; higher is more
// sensitive.
type Config struct {
	SensitivityLevel int
	MinDataPoints    int
	StddevThreshold  float64
	TieBreak         TieBreakPolicy
}

// DefaultConfig returns the stock detection settings.
func DefaultConfig() Config {
	return Config{
		SensitivityLevel: 3,
		MinDataPoints:    10,
		StddevThreshold:  2.5,
		TieBreak:         LastWriteWins,
	}
}

// Finding is one flagged point before it is turned into a persisted
// AnomalyRecord.
type Finding struct {
	Timestamp           time.Time
	Type                domain.AnomalyType
	Severity            domain.Severity
	Value               float64
	ExpectedValue       float64
	DeviationPercentage float64
	ThresholdUsed       float64
	Pass                string
}

const (
	passOutlier = "outlier"
	passTrend   = "trend"
)

// Detect runs the outlier and trend passes over a series ordered by
// timestamp ascending and merges their findings, deduplicated by exact
// timestamp under the configured tie-break policy. Detection is
// deterministic for a given series and config.
func Detect(series []domain.TimeSeriesPoint, cfg Config) []Finding {
	combined := detectOutliers(series, cfg)
	combined = append(combined, detectTrendBreaks(series, cfg)...)

	rank := map[domain.Severity]int{
		domain.SeverityLow:      0,
		domain.SeverityMedium:   1,
		domain.SeverityHigh:     2,
		domain.SeverityCritical: 3,
	}

	byTimestamp := make(map[time.Time]Finding)
	for _, finding := range combined {
		existing, ok := byTimestamp[finding.Timestamp]
		if ok && cfg.TieBreak == HighestSeverityWins && rank[existing.Severity] > rank[finding.Severity] {
			continue
		}
		byTimestamp[finding.Timestamp] = finding
	}

	merged := make([]Finding, 0, len(byTimestamp))
	for _, finding := range byTimestamp {
		merged = append(merged, finding)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Timestamp.Before(merged[j].Timestamp)
	})
	return merged
}

// detectOutliers flags points outside mean ± StddevThreshold·stddev over
// the whole window. A flat series (stddev 0) cannot be anomalous, and a
// non-positive lower bound never flags drops: for small non-negative
// counts the bound is meaningless.
func detectOutliers(series []domain.TimeSeriesPoint, cfg Config) []Finding {
	if len(series) < cfg.MinDataPoints {
		return nil
	}

	mean, stddev := meanStddev(series)
	if stddev == 0 {
		return nil
	}

	upper := mean + cfg.StddevThreshold*stddev
	lower := mean - cfg.StddevThreshold*stddev

	var findings []Finding
	for _, point := range series {
		var anomalyType domain.AnomalyType
		switch {
		case point.Value > upper:
			anomalyType = domain.AnomalySpike
		case point.Value < lower && lower > 0:
			anomalyType = domain.AnomalyDrop
		default:
			continue
		}

		deviation := math.Abs(point.Value-mean) / mean * 100
		findings = append(findings, Finding{
			Timestamp:           point.Timestamp,
			Type:                anomalyType,
			Severity:            severityFor(deviation, cfg.SensitivityLevel),
			Value:               point.Value,
			ExpectedValue:       mean,
			DeviationPercentage: deviation,
			ThresholdUsed:       cfg.StddevThreshold,
			Pass:                passOutlier,
		})
	}
	return findings
}

// detectTrendBreaks flags points whose percentage change against the
// average of the two preceding points exceeds 50/sensitivity.
func detectTrendBreaks(series []domain.TimeSeriesPoint, cfg Config) []Finding {
	if len(series) < cfg.MinDataPoints+2 {
		return nil
	}

	threshold := 50 / float64(cfg.SensitivityLevel)

	var findings []Finding
	for i := 2; i < len(series); i++ {
		avgPrev := (series[i-1].Value + series[i-2].Value) / 2
		if avgPrev == 0 {
			continue
		}

		change := (series[i].Value - avgPrev) / avgPrev * 100
		if math.Abs(change) <= threshold {
			continue
		}

		anomalyType := domain.AnomalySpike
		if change < 0 {
			anomalyType = domain.AnomalyDrop
		}

		deviation := math.Abs(change)
		findings = append(findings, Finding{
			Timestamp:           series[i].Timestamp,
			Type:                anomalyType,
			Severity:            severityFor(deviation, cfg.SensitivityLevel),
			Value:               series[i].Value,
			ExpectedValue:       avgPrev,
			DeviationPercentage: deviation,
			ThresholdUsed:       threshold,
			Pass:                passTrend,
		})
	}
	return findings
}

// severityFor maps a deviation percentage onto the severity ladder,
// scaled by sensitivity.
func severityFor(deviation float64, sensitivityLevel int) domain.Severity {
	adjusted := 100 / float64(sensitivityLevel)
	switch {
	case deviation >= 3*adjusted:
		return domain.SeverityCritical
	case deviation >= 2*adjusted:
		return domain.SeverityHigh
	case deviation >= adjusted:
		return domain.SeverityMedium
	default:
		return domain.SeverityLow
	}
}

// meanStddev computes the population mean and standard deviation of the
// series values.
func meanStddev(series []domain.TimeSeriesPoint) (float64, float64) {
	n := float64(len(series))
	var sum float64
	for _, point := range series {
		sum += point.Value
	}
	mean := sum / n

	var sumSq float64
	for _, point := range series {
		d := point.Value - mean
		sumSq += d * d
	}
	return mean, math.Sqrt(sumSq / n)
}
