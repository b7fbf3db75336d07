package insight

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/advisoros/analytics-service/internal/detect"
	"github.com/advisoros/analytics-service/internal/domain"
)

// anomalyInsights delegates to the detection facade and wraps each finding
// into a GeneratedInsight. Transaction-level detection uses the default
// algorithms, pattern-level detection uses the distance heuristic, and
// benchmark-deviation findings are added when a benchmark table is
// supplied.
func (e *Engine) anomalyInsights(ctx context.Context, records []domain.FinancialRecord, benchmarks map[string]domain.Benchmark) ([]domain.GeneratedInsight, error) {
	series := recordSeries(records)

	algorithms := append(detect.DefaultAlgorithms(), detect.AlgorithmML)
	anomalies, err := e.detector.DetectAnomalies(ctx, series, algorithms)
	if err != nil {
		return nil, err
	}

	insights := make([]domain.GeneratedInsight, 0, len(anomalies))
	for _, a := range anomalies {
		insights = append(insights, wrapAnomaly(a))
	}

	if len(benchmarks) > 0 {
		insights = append(insights, benchmarkDeviationInsights(AggregateMetrics(records), benchmarks)...)
	}

	return insights, nil
}

// recordSeries flattens records into one chronological series; the point
// category preserves the record type so detectors can derive anomaly
// types.
func recordSeries(records []domain.FinancialRecord) []domain.TimeSeriesPoint {
	points := make([]domain.TimeSeriesPoint, 0, len(records))
	for _, r := range records {
		category := r.Category
		if category == "" {
			category = string(r.Type)
		}
		points = append(points, domain.TimeSeriesPoint{
			Timestamp: r.Timestamp,
			Value:     r.AmountFloat(),
			Category:  category,
			Metadata:  map[string]string{"record_type": string(r.Type)},
		})
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})
	return points
}

// wrapAnomaly converts a detector finding into the insight shape the
// reporting collaborator consumes.
func wrapAnomaly(a domain.DetectedAnomaly) domain.GeneratedInsight {
	return domain.GeneratedInsight{
		ID:              uuid.New(),
		Type:            domain.InsightTypeAnomaly,
		Severity:        a.Severity,
		Title:           fmt.Sprintf("Anomaly: %s activity on %s", a.Type, a.Timestamp.UTC().Format("2006-01-02")),
		Description:     a.Description,
		Recommendations: a.Recommendations,
		Metrics: []domain.InsightMetric{
			{Name: "Observed", Value: a.Value},
			{Name: "Expected", Value: a.ExpectedValue},
			{Name: "Deviation", Value: a.DeviationPercent, Unit: "%"},
		},
		Confidence: a.Confidence,
		CreatedAt:  time.Now().UTC(),
	}
}

// benchmarkDeviationInsights flags aggregate metrics that sit far from the
// industry benchmark. Only metrics present in the table are compared.
func benchmarkDeviationInsights(m FinancialMetrics, benchmarks map[string]domain.Benchmark) []domain.GeneratedInsight {
	observed := map[string]float64{
		"Gross Margin":   m.GrossMargin,
		"Current Ratio":  m.CurrentRatio,
		"Debt To Equity": m.DebtToEquity,
	}

	names := make([]string, 0, len(observed))
	for name := range observed {
		names = append(names, name)
	}
	sort.Strings(names)

	var insights []domain.GeneratedInsight
	for _, name := range names {
		benchmark, ok := benchmarks[name]
		if !ok || benchmark.Value == 0 {
			continue
		}
		value := observed[name]
		deviationPct := (value - benchmark.Value) / benchmark.Value * 100
		if math.Abs(deviationPct) < 25 {
			continue
		}

		insights = append(insights, domain.GeneratedInsight{
			ID:       uuid.New(),
			Type:     domain.InsightTypeBenchmark,
			Severity: domain.SeverityFromDeviation(deviationPct),
			Title:    fmt.Sprintf("Benchmark Deviation: %s", name),
			Description: fmt.Sprintf("%s of %.2f deviates %.1f%% from the %s industry benchmark of %.2f",
				name, value, math.Abs(deviationPct), benchmark.Industry, benchmark.Value),
			Recommendations: []string{
				fmt.Sprintf("Review what sets this client apart from %s peers on %s", benchmark.Industry, name),
			},
			Metrics: []domain.InsightMetric{
				{Name: name, Value: value, Benchmark: &benchmark},
			},
			Confidence: 0.8,
			CreatedAt:  time.Now().UTC(),
		})
	}
	return insights
}
