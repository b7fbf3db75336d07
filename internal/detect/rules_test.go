package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/advisoros/analytics-service/internal/domain"
	"github.com/advisoros/analytics-service/internal/pkg/logger"
)

func TestRuleDetectorSuddenSpike(t *testing.T) {
	d := NewRuleDetector(logger.NewNop())

	anomalies, err := d.Detect(series("revenue", 10, 35), Config{})
	require.NoError(t, err)
	require.Len(t, anomalies, 1)

	a := anomalies[0]
	assert.Equal(t, "sudden_spike", a.Context.RuleID)
	assert.Equal(t, domain.AnomalyTypeRevenue, a.Type)
	assert.Equal(t, domain.SeverityHigh, a.Severity)
	assert.Equal(t, 0.9, a.Confidence)
	assert.Equal(t, 35.0, a.Value)
	assert.Equal(t, 10.0, a.ExpectedValue)
	assert.InDelta(t, 250.0, a.DeviationPercent, 1e-9)
}

func TestRuleDetectorSpikeNotTriggered(t *testing.T) {
	d := NewRuleDetector(logger.NewNop())

	// Exactly 3x is not a spike, and a zero previous value never divides.
	anomalies, err := d.Detect(series("revenue", 10, 30), Config{})
	require.NoError(t, err)
	assert.Empty(t, anomalies)

	anomalies, err = d.Detect(series("revenue", 0, 500), Config{})
	require.NoError(t, err)
	assert.Empty(t, anomalies)
}

func TestRuleDetectorConsecutiveZeros(t *testing.T) {
	d := NewRuleDetector(logger.NewNop())

	anomalies, err := d.Detect(series("transaction", 120, 0, 0, 0), Config{})
	require.NoError(t, err)
	require.Len(t, anomalies, 1)

	a := anomalies[0]
	assert.Equal(t, "consecutive_zeros", a.Context.RuleID)
	assert.Equal(t, domain.AnomalyTypeTransaction, a.Type)
	assert.Equal(t, domain.SeverityMedium, a.Severity)
	assert.Equal(t, 0.85, a.Confidence)

	// Two zeros are not enough.
	anomalies, err = d.Detect(series("transaction", 120, 0, 0), Config{})
	require.NoError(t, err)
	assert.Empty(t, anomalies)
}

func TestRuleDetectorIgnoresMinDataPoints(t *testing.T) {
	d := NewRuleDetector(logger.NewNop())

	// Rules run even on short series where the statistical baseline cannot.
	anomalies, err := d.Detect(series("revenue", 10, 35), Config{MinDataPoints: 30})
	require.NoError(t, err)
	assert.Len(t, anomalies, 1)
}
