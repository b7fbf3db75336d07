package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 2.0, Mean([]float64{1, 2, 3}))
	assert.Equal(t, -5.0, Mean([]float64{-5}))
}

func TestStdDev(t *testing.T) {
	assert.Equal(t, 0.0, StdDev(nil))
	assert.Equal(t, 0.0, StdDev([]float64{42}))
	assert.Equal(t, 0.0, StdDev([]float64{7, 7, 7, 7}))

	// Population stddev of [2,4,4,4,5,5,7,9] is exactly 2.
	assert.InDelta(t, 2.0, StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-9)
}

func TestLinearRegression(t *testing.T) {
	slope, intercept := LinearRegression([]float64{0, 1, 2, 3}, []float64{1, 3, 5, 7})
	assert.InDelta(t, 2.0, slope, 1e-9)
	assert.InDelta(t, 1.0, intercept, 1e-9)

	// Degenerate inputs fall back to the mean.
	slope, intercept = LinearRegression([]float64{5, 5, 5}, []float64{1, 2, 3})
	assert.Equal(t, 0.0, slope)
	assert.Equal(t, 2.0, intercept)

	slope, intercept = LinearRegression(nil, nil)
	assert.Equal(t, 0.0, slope)
	assert.Equal(t, 0.0, intercept)
}

func TestCorrelation(t *testing.T) {
	assert.InDelta(t, 1.0, Correlation([]float64{0, 1, 2}, []float64{10, 20, 30}), 1e-9)
	assert.InDelta(t, -1.0, Correlation([]float64{0, 1, 2}, []float64{30, 20, 10}), 1e-9)

	// Zero variance on either side yields 0, not NaN.
	assert.Equal(t, 0.0, Correlation([]float64{1, 1, 1}, []float64{1, 2, 3}))
	assert.Equal(t, 0.0, Correlation([]float64{1, 2}, []float64{1, 2, 3}))
}

func TestIndices(t *testing.T) {
	assert.Equal(t, []float64{0, 1, 2}, Indices(3))
	assert.Empty(t, Indices(0))
}
