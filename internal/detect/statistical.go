package detect

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/advisoros/analytics-service/internal/domain"
	"github.com/advisoros/analytics-service/internal/pkg/logger"
	"github.com/advisoros/analytics-service/internal/stats"
)

// StatisticalDetector flags points whose z-score against the global
// mean/stddev baseline of the supplied window exceeds the configured
// multiplier. The caller is responsible for windowing the series by
// LookbackDays; the baseline here is always the whole input.
type StatisticalDetector struct {
	log *logger.Logger
}

// NewStatisticalDetector creates a new statistical detector
func NewStatisticalDetector(log *logger.Logger) *StatisticalDetector {
	return &StatisticalDetector{log: log.Named("statistical_detector")}
}

// Name returns the registry name of this detector
func (d *StatisticalDetector) Name() string {
	return AlgorithmStatistical
}

// Detect runs z-score detection over the series. Fewer points than
// MinDataPoints is a normal empty result, not an error.
func (d *StatisticalDetector) Detect(points []domain.TimeSeriesPoint, cfg Config) ([]domain.DetectedAnomaly, error) {
	if len(points) < cfg.MinDataPoints {
		d.log.Debug("insufficient data for statistical detection",
			logger.IntField("points", len(points)),
			logger.IntField("min_data_points", cfg.MinDataPoints),
		)
		return nil, nil
	}

	values := domain.Values(points)
	mean := stats.Mean(values)
	stdDev := stats.StdDev(values)

	// A constant series has no deviation to measure.
	if stdDev == 0 {
		return nil, nil
	}

	cutoff := cfg.ThresholdMultiplier * cfg.Sensitivity.normalized().zScoreScale()

	var anomalies []domain.DetectedAnomaly
	for _, p := range points {
		zScore := (p.Value - mean) / stdDev
		if math.Abs(zScore) <= cutoff {
			continue
		}

		deviation := p.Value - mean
		deviationPct := 0.0
		if mean != 0 {
			deviationPct = deviation / mean * 100
		}

		anomaly := domain.DetectedAnomaly{
			ID:               uuid.New(),
			Type:             p.SeriesType(),
			Severity:         domain.SeverityFromDeviation(deviationPct),
			Value:            p.Value,
			ExpectedValue:    mean,
			Deviation:        deviation,
			DeviationPercent: deviationPct,
			Confidence:       math.Min(math.Abs(zScore)/5, 1),
			Timestamp:        p.Timestamp,
			Description:      describeDeviation(p.Value, mean, deviationPct),
			Context: domain.AnomalyContext{
				Algorithm:  AlgorithmStatistical,
				ZScore:     zScore,
				WindowSize: len(points),
			},
			Recommendations: recommendForDeviation(deviation),
		}
		anomalies = append(anomalies, anomaly)

		d.log.AnomalyDetected(AlgorithmStatistical, string(anomaly.Type), string(anomaly.Severity), anomaly.Confidence)
	}

	return anomalies, nil
}

// describeDeviation names the direction and magnitude of the deviation.
func describeDeviation(value, expected, deviationPct float64) string {
	direction := "spike"
	if value < expected {
		direction = "drop"
	}
	return fmt.Sprintf("Unusual %s: value %.2f deviates %.1f%% from the expected %.2f",
		direction, value, math.Abs(deviationPct), expected)
}

// recommendForDeviation returns direction-specific follow-ups.
func recommendForDeviation(deviation float64) []string {
	if deviation > 0 {
		return []string{
			"Verify the underlying transactions are recorded correctly",
			"Confirm the spike reflects legitimate business activity",
		}
	}
	return []string{
		"Check for service outages or missed billing cycles",
		"Review whether expected transactions failed to post",
	}
}

// WindowByLookback trims a series to the configured lookback window ending
// at the latest observation. Convenience for callers that hold raw history.
func WindowByLookback(points []domain.TimeSeriesPoint, lookbackDays int) []domain.TimeSeriesPoint {
	if len(points) == 0 || lookbackDays <= 0 {
		return points
	}
	cutoff := points[len(points)-1].Timestamp.AddDate(0, 0, -lookbackDays)
	for i, p := range points {
		if !p.Timestamp.Before(cutoff) {
			return points[i:]
		}
	}
	return points[:0]
}
