package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/advisoros/analytics-service/internal/domain"
	"github.com/advisoros/analytics-service/internal/pkg/logger"
)

func TestStatisticalDetectorFlagsOutlier(t *testing.T) {
	d := NewStatisticalDetector(logger.NewNop())
	cfg := Config{Sensitivity: SensitivityMedium, MinDataPoints: 5, ThresholdMultiplier: 2.5}

	points := series("revenue", 100, 100, 100, 100, 100, 400)
	anomalies, err := d.Detect(points, cfg)
	require.NoError(t, err)
	require.Len(t, anomalies, 1)

	a := anomalies[0]
	assert.Equal(t, domain.AnomalyTypeRevenue, a.Type)
	assert.Equal(t, domain.SeverityCritical, a.Severity)
	assert.Equal(t, 400.0, a.Value)
	assert.InDelta(t, 150.0, a.ExpectedValue, 1e-9)
	assert.InDelta(t, 166.67, a.DeviationPercent, 0.01)
	assert.InDelta(t, 2.236, a.Context.ZScore, 0.001)
	assert.Equal(t, points[5].Timestamp, a.Timestamp)
	assert.Equal(t, AlgorithmStatistical, a.Context.Algorithm)
	assert.Contains(t, a.Description, "spike")
	assert.NotEmpty(t, a.Recommendations)
}

func TestStatisticalDetectorConstantSeries(t *testing.T) {
	d := NewStatisticalDetector(logger.NewNop())
	cfg := Config{Sensitivity: SensitivityMedium, MinDataPoints: 3, ThresholdMultiplier: 2.5}

	anomalies, err := d.Detect(series("revenue", 50, 50, 50, 50, 50), cfg)
	require.NoError(t, err)
	assert.Empty(t, anomalies)
}

func TestStatisticalDetectorInsufficientData(t *testing.T) {
	d := NewStatisticalDetector(logger.NewNop())
	cfg := Config{Sensitivity: SensitivityMedium, MinDataPoints: 30, ThresholdMultiplier: 2.5}

	anomalies, err := d.Detect(series("revenue", 100, 400), cfg)
	require.NoError(t, err)
	assert.Empty(t, anomalies)
}

func TestStatisticalDetectorDropDirection(t *testing.T) {
	d := NewStatisticalDetector(logger.NewNop())
	cfg := Config{Sensitivity: SensitivityHigh, MinDataPoints: 5, ThresholdMultiplier: 2.5}

	points := series("expense", 500, 500, 500, 500, 500, 10)
	anomalies, err := d.Detect(points, cfg)
	require.NoError(t, err)
	require.Len(t, anomalies, 1)

	a := anomalies[0]
	assert.Equal(t, domain.AnomalyTypeExpense, a.Type)
	assert.Negative(t, a.Deviation)
	assert.Contains(t, a.Description, "drop")
	assert.Contains(t, a.Recommendations[0], "outages")
}

func TestSensitivityScalesCutoff(t *testing.T) {
	d := NewStatisticalDetector(logger.NewNop())
	points := series("revenue", 100, 100, 100, 100, 100, 400)

	// The outlier's z-score is about 2.24: below the raw 2.5 multiplier at
	// low sensitivity, above the scaled cutoff at medium and high.
	low := Config{Sensitivity: SensitivityLow, MinDataPoints: 5, ThresholdMultiplier: 2.5}
	anomalies, err := d.Detect(points, low)
	require.NoError(t, err)
	assert.Empty(t, anomalies)

	high := Config{Sensitivity: SensitivityHigh, MinDataPoints: 5, ThresholdMultiplier: 2.5}
	anomalies, err = d.Detect(points, high)
	require.NoError(t, err)
	assert.Len(t, anomalies, 1)
}

func TestWindowByLookback(t *testing.T) {
	points := series("revenue", 1, 2, 3, 4, 5, 6, 7, 8, 9, 10)

	trimmed := WindowByLookback(points, 3)
	require.Len(t, trimmed, 4)
	assert.Equal(t, 7.0, trimmed[0].Value)
	assert.Equal(t, 10.0, trimmed[3].Value)

	assert.Len(t, WindowByLookback(points, 0), len(points))
	assert.Empty(t, WindowByLookback(nil, 5))
}
