package domain

import (
	"time"
)

// TimeSeriesPoint is a single observation in a financial time series.
// Sequences are expected in chronological order; duplicate timestamps are
// allowed and treated as independent observations.
type TimeSeriesPoint struct {
	Timestamp time.Time         `json:"timestamp"`
	Value     float64           `json:"value"`
	Category  string            `json:"category,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// DateRange is a half-open analysis window [Start, End).
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// Days returns the window length in whole days, never less than 1.
func (r DateRange) Days() int {
	d := int(r.End.Sub(r.Start).Hours() / 24)
	if d < 1 {
		return 1
	}
	return d
}

// LastNDays builds a range ending now and spanning n days back.
func LastNDays(n int) DateRange {
	now := time.Now().UTC()
	return DateRange{Start: now.AddDate(0, 0, -n), End: now}
}

// Values extracts the raw value sequence from a series.
func Values(points []TimeSeriesPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Value
	}
	return out
}

// SeriesType derives the anomaly type carried by a series point from its
// category metadata. Unknown or missing categories map to transaction data,
// the most common stream this engine sees.
func (p TimeSeriesPoint) SeriesType() AnomalyType {
	category := p.Category
	if category == "" {
		category = p.Metadata["category"]
	}
	switch category {
	case "revenue", "income", "sales":
		return AnomalyTypeRevenue
	case "expense", "expenses", "cost":
		return AnomalyTypeExpense
	case "seasonal":
		return AnomalyTypeSeasonal
	default:
		return AnomalyTypeTransaction
	}
}
