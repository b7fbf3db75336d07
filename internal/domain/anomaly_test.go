package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSeverityFromDeviation(t *testing.T) {
	assert.Equal(t, SeverityLow, SeverityFromDeviation(0))
	assert.Equal(t, SeverityLow, SeverityFromDeviation(24.9))
	assert.Equal(t, SeverityMedium, SeverityFromDeviation(25))
	assert.Equal(t, SeverityMedium, SeverityFromDeviation(49.9))
	assert.Equal(t, SeverityHigh, SeverityFromDeviation(50))
	assert.Equal(t, SeverityHigh, SeverityFromDeviation(99.9))
	assert.Equal(t, SeverityCritical, SeverityFromDeviation(100))
	assert.Equal(t, SeverityCritical, SeverityFromDeviation(450))

	// Bucketing is symmetric in sign.
	assert.Equal(t, SeverityHigh, SeverityFromDeviation(-60))
	assert.Equal(t, SeverityCritical, SeverityFromDeviation(-120))
}

func TestSeverityRankOrdering(t *testing.T) {
	assert.Greater(t, SeverityCritical.Rank(), SeverityHigh.Rank())
	assert.Greater(t, SeverityHigh.Rank(), SeverityMedium.Rank())
	assert.Greater(t, SeverityMedium.Rank(), SeverityLow.Rank())
	assert.Greater(t, SeverityLow.Rank(), Severity("bogus").Rank())
}

func TestDedupKeyUsesUTCDay(t *testing.T) {
	// 23:30 in UTC-5 is the next day in UTC.
	loc := time.FixedZone("EST", -5*3600)
	a := DetectedAnomaly{
		Type:      AnomalyTypeRevenue,
		Timestamp: time.Date(2025, 3, 10, 23, 30, 0, 0, loc),
	}
	assert.Equal(t, "2025-03-11|revenue", a.DedupKey())
}

func TestSeriesType(t *testing.T) {
	assert.Equal(t, AnomalyTypeRevenue, TimeSeriesPoint{Category: "income"}.SeriesType())
	assert.Equal(t, AnomalyTypeExpense, TimeSeriesPoint{Category: "cost"}.SeriesType())
	assert.Equal(t, AnomalyTypeSeasonal, TimeSeriesPoint{Category: "seasonal"}.SeriesType())
	assert.Equal(t, AnomalyTypeTransaction, TimeSeriesPoint{}.SeriesType())

	// Category falls back to metadata when unset.
	p := TimeSeriesPoint{Metadata: map[string]string{"category": "sales"}}
	assert.Equal(t, AnomalyTypeRevenue, p.SeriesType())
}

func TestDateRange(t *testing.T) {
	r := DateRange{
		Start: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	assert.True(t, r.Contains(r.Start))
	assert.False(t, r.Contains(r.End))
	assert.Equal(t, 31, r.Days())

	empty := DateRange{Start: r.Start, End: r.Start}
	assert.Equal(t, 1, empty.Days())
}
