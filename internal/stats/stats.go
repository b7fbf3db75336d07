// Package stats provides the small set of statistical primitives the
// analytics engine needs. All functions are pure and guard their edge cases
// so callers never see NaN or Inf.
package stats

import "math"

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the population standard deviation, or 0 for fewer than
// two values.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	sumSq := 0.0
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

// LinearRegression fits y = slope*x + intercept by least squares.
// A degenerate input (fewer than two points, or zero x-variance) returns
// (0, mean(ys)).
func LinearRegression(xs, ys []float64) (slope, intercept float64) {
	n := len(xs)
	if n < 2 || n != len(ys) {
		return 0, Mean(ys)
	}
	meanX := Mean(xs)
	meanY := Mean(ys)

	var num, den float64
	for i := 0; i < n; i++ {
		dx := xs[i] - meanX
		num += dx * (ys[i] - meanY)
		den += dx * dx
	}
	if den == 0 {
		return 0, meanY
	}
	slope = num / den
	return slope, meanY - slope*meanX
}

// Correlation returns the Pearson sample correlation coefficient, or 0 when
// either series has zero variance or the lengths differ.
func Correlation(xs, ys []float64) float64 {
	n := len(xs)
	if n < 2 || n != len(ys) {
		return 0
	}
	meanX := Mean(xs)
	meanY := Mean(ys)

	var num, varX, varY float64
	for i := 0; i < n; i++ {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		num += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0
	}
	return num / math.Sqrt(varX*varY)
}

// Indices returns [0, 1, ..., n-1] as float64 x-values for regressions over
// sequence position.
func Indices(n int) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	return xs
}
