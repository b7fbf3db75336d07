package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/advisoros/analytics-service/internal/domain"
	"github.com/advisoros/analytics-service/internal/pkg/logger"
)

func TestDistanceDetectorIsolatesOutlier(t *testing.T) {
	d := NewDistanceDetector(logger.NewNop())
	cfg := Config{Sensitivity: SensitivityMedium, MinDataPoints: 5}

	points := series("revenue", 100, 100, 100, 100, 100, 1000, 100, 100, 100, 100)
	anomalies, err := d.Detect(points, cfg)
	require.NoError(t, err)
	require.NotEmpty(t, anomalies)

	var outlier *domain.DetectedAnomaly
	for i := range anomalies {
		assert.Equal(t, domain.AnomalyTypePattern, anomalies[i].Type)
		assert.Equal(t, AlgorithmML, anomalies[i].Context.Algorithm)
		if anomalies[i].Value == 1000 {
			outlier = &anomalies[i]
		}
	}
	require.NotNil(t, outlier, "the 1000 point must be flagged")

	// The most isolated point normalizes to the top of the scale.
	assert.InDelta(t, 1.0, outlier.Confidence, 1e-9)
	assert.Equal(t, domain.SeverityCritical, outlier.Severity)
	assert.Equal(t, outlier.Confidence, outlier.Context.IsolationScore)
}

func TestDistanceDetectorUniformScores(t *testing.T) {
	d := NewDistanceDetector(logger.NewNop())
	cfg := Config{Sensitivity: SensitivityMedium, MinDataPoints: 2}

	// With two points the scores are symmetric, so nothing stands out.
	anomalies, err := d.Detect(series("revenue", 100, 900), cfg)
	require.NoError(t, err)
	assert.Empty(t, anomalies)
}

func TestDistanceDetectorInsufficientData(t *testing.T) {
	d := NewDistanceDetector(logger.NewNop())
	cfg := Config{Sensitivity: SensitivityMedium, MinDataPoints: 30}

	anomalies, err := d.Detect(series("revenue", 1, 2, 3), cfg)
	require.NoError(t, err)
	assert.Empty(t, anomalies)
}
