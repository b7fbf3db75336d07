package insight

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/advisoros/analytics-service/internal/domain"
	"github.com/advisoros/analytics-service/internal/stats"
)

// trendConfig carries the significance thresholds for trend analysis.
type trendConfig struct {
	significance         float64 // revenue and expense series
	categorySignificance float64 // per-category series
	minCategoryObs       int
}

// trendInsights fits a linear regression of value against sequence index
// for revenue, expenses, and every category with enough observations, and
// reports a trend whenever the absolute sample correlation clears the
// per-context significance threshold.
func trendInsights(records []domain.FinancialRecord, cfg trendConfig) []domain.GeneratedInsight {
	sorted := make([]domain.FinancialRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	var insights []domain.GeneratedInsight

	revenue := seriesFor(sorted, func(r domain.FinancialRecord) bool { return r.Type == domain.RecordTypeIncome })
	if insight := trendInsightFor("Revenue", revenue, cfg.significance); insight != nil {
		insights = append(insights, *insight)
	}

	expenses := seriesFor(sorted, func(r domain.FinancialRecord) bool { return r.Type == domain.RecordTypeExpense })
	if insight := trendInsightFor("Expenses", expenses, cfg.significance); insight != nil {
		insights = append(insights, *insight)
	}

	byCategory := make(map[string][]float64)
	for _, r := range sorted {
		byCategory[r.Category] = append(byCategory[r.Category], r.AmountFloat())
	}
	categories := make([]string, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		values := byCategory[category]
		if len(values) <= cfg.minCategoryObs {
			continue
		}
		if insight := trendInsightFor(category, values, cfg.categorySignificance); insight != nil {
			insights = append(insights, *insight)
		}
	}

	return insights
}

func seriesFor(records []domain.FinancialRecord, keep func(domain.FinancialRecord) bool) []float64 {
	var values []float64
	for _, r := range records {
		if keep(r) {
			values = append(values, r.AmountFloat())
		}
	}
	return values
}

// trendInsightFor returns nil when the correlation is below the
// significance threshold.
func trendInsightFor(label string, values []float64, significance float64) *domain.GeneratedInsight {
	if len(values) < 2 {
		return nil
	}

	xs := stats.Indices(len(values))
	correlation := stats.Correlation(xs, values)
	if math.Abs(correlation) <= significance {
		return nil
	}

	slope, _ := stats.LinearRegression(xs, values)
	direction := "upward"
	trend := domain.KPITrendIncreasing
	if slope < 0 {
		direction = "downward"
		trend = domain.KPITrendDecreasing
	}

	severity := domain.SeverityLow
	if direction == "downward" && label == "Revenue" {
		severity = domain.SeverityMedium
	}
	if direction == "upward" && label == "Expenses" {
		severity = domain.SeverityMedium
	}

	return &domain.GeneratedInsight{
		ID:       uuid.New(),
		Type:     domain.InsightTypeTrend,
		Severity: severity,
		Title:    fmt.Sprintf("%s Trend", label),
		Description: fmt.Sprintf("%s shows a consistent %s trend (slope %.2f per observation, correlation %.2f)",
			label, direction, slope, correlation),
		Recommendations: trendRecommendations(label, slope),
		Metrics: []domain.InsightMetric{
			{Name: fmt.Sprintf("%s Slope", label), Value: slope, Trend: trend},
			{Name: "Correlation", Value: correlation},
		},
		Visualizations: []domain.Visualization{
			{Kind: "line", Title: fmt.Sprintf("%s Trend", label), Series: []string{label}},
		},
		Confidence: math.Abs(correlation),
		CreatedAt:  time.Now().UTC(),
	}
}

func trendRecommendations(label string, slope float64) []string {
	if slope >= 0 {
		return []string{
			fmt.Sprintf("Confirm the drivers behind rising %s and whether they are sustainable", label),
		}
	}
	return []string{
		fmt.Sprintf("Investigate what is pulling %s down before it compounds", label),
	}
}
