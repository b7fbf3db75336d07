package detect

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/advisoros/analytics-service/internal/domain"
	"github.com/advisoros/analytics-service/internal/pkg/logger"
	"github.com/advisoros/analytics-service/internal/stats"
)

// DistanceDetector scores each point by its average Euclidean distance to
// every other point's feature vector, min-max normalized across the batch.
// This is an isolation-style heuristic, not a true isolation forest: there
// is no tree ensemble and no sub-sampling, and scoring is O(n^2) in the
// number of points. That cost is acceptable only because callers window the
// series to a bounded lookback before detection.
type DistanceDetector struct {
	log *logger.Logger
}

// NewDistanceDetector creates a new distance-based detector
func NewDistanceDetector(log *logger.Logger) *DistanceDetector {
	return &DistanceDetector{log: log.Named("distance_detector")}
}

// Name returns the registry name of this detector
func (d *DistanceDetector) Name() string {
	return AlgorithmML
}

// featureVector builds the per-point features: value, first difference,
// week-over-week difference (0 for the first 7 points), and days since the
// start of the series.
func featureVector(points []domain.TimeSeriesPoint, i int) [4]float64 {
	v := points[i].Value

	var diffPrev float64
	if i > 0 {
		diffPrev = v - points[i-1].Value
	}

	var diffWeek float64
	if i >= 7 {
		diffWeek = v - points[i-7].Value
	}

	days := points[i].Timestamp.Sub(points[0].Timestamp).Hours() / 24

	return [4]float64{v, diffPrev, diffWeek, days}
}

func euclidean(a, b [4]float64) float64 {
	var sum float64
	for k := 0; k < 4; k++ {
		d := a[k] - b[k]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Detect computes isolation scores and flags points above the sensitivity
// threshold as pattern anomalies.
func (d *DistanceDetector) Detect(points []domain.TimeSeriesPoint, cfg Config) ([]domain.DetectedAnomaly, error) {
	if len(points) < cfg.MinDataPoints {
		return nil, nil
	}

	n := len(points)
	features := make([][4]float64, n)
	for i := range points {
		features[i] = featureVector(points, i)
	}

	// Average pairwise distance per point.
	scores := make([]float64, n)
	for i := 0; i < n; i++ {
		var total float64
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			total += euclidean(features[i], features[j])
		}
		scores[i] = total / float64(n-1)
	}

	// Min-max normalize to [0,1].
	minScore, maxScore := scores[0], scores[0]
	for _, s := range scores[1:] {
		minScore = math.Min(minScore, s)
		maxScore = math.Max(maxScore, s)
	}
	spread := maxScore - minScore
	if spread == 0 {
		return nil, nil
	}

	threshold := cfg.Sensitivity.normalized().isolationThreshold()

	values := domain.Values(points)
	mean := stats.Mean(values)

	var anomalies []domain.DetectedAnomaly
	for i, raw := range scores {
		normalized := (raw - minScore) / spread
		if normalized <= threshold {
			continue
		}

		p := points[i]
		deviation := p.Value - mean
		deviationPct := 0.0
		if mean != 0 {
			deviationPct = deviation / mean * 100
		}

		anomaly := domain.DetectedAnomaly{
			ID:               uuid.New(),
			Type:             domain.AnomalyTypePattern,
			Severity:         domain.SeverityFromDeviation(deviationPct),
			Value:            p.Value,
			ExpectedValue:    mean,
			Deviation:        deviation,
			DeviationPercent: deviationPct,
			Confidence:       normalized,
			Timestamp:        p.Timestamp,
			Description: fmt.Sprintf("Point isolated from the rest of the series (isolation score %.2f)",
				normalized),
			Context: domain.AnomalyContext{
				Algorithm:      AlgorithmML,
				IsolationScore: normalized,
				WindowSize:     n,
			},
			Recommendations: []string{
				"Review the surrounding transactions for irregular activity",
				"Compare against the same period in prior months",
			},
		}
		anomalies = append(anomalies, anomaly)

		d.log.AnomalyDetected(AlgorithmML, string(anomaly.Type), string(anomaly.Severity), anomaly.Confidence)
	}

	return anomalies, nil
}
