package insight

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/advisoros/analytics-service/internal/domain"
)

// varianceInsights compares actual spend and income per category against
// the budget figures, flags categories whose variance exceeds the
// threshold, and adds one roll-up insight built from the mean absolute
// variance across all budgeted categories.
func varianceInsights(records []domain.FinancialRecord, budget map[string]float64, thresholdPct float64) []domain.GeneratedInsight {
	if len(budget) == 0 {
		return nil
	}

	actuals := make(map[string]float64)
	for _, r := range records {
		actuals[r.Category] += r.AmountFloat()
	}

	// Deterministic order across runs.
	categories := make([]string, 0, len(budget))
	for category := range budget {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var insights []domain.GeneratedInsight
	var totalAbsVariance float64
	compared := 0

	for _, category := range categories {
		planned := budget[category]
		actual := actuals[category]

		variancePct := 0.0
		if planned != 0 {
			variancePct = (actual - planned) / planned * 100
		}
		totalAbsVariance += math.Abs(variancePct)
		compared++

		if math.Abs(variancePct) <= thresholdPct {
			continue
		}

		direction := "over"
		if variancePct < 0 {
			direction = "under"
		}

		insights = append(insights, domain.GeneratedInsight{
			ID:       uuid.New(),
			Type:     domain.InsightTypeVariance,
			Severity: domain.SeverityFromDeviation(variancePct),
			Title:    fmt.Sprintf("Budget Variance: %s", category),
			Description: fmt.Sprintf("%s is %.1f%% %s budget (actual %.2f vs planned %.2f)",
				category, math.Abs(variancePct), direction, actual, planned),
			Recommendations: varianceRecommendations(variancePct),
			Metrics: []domain.InsightMetric{
				{Name: "Actual", Value: actual, Unit: "USD"},
				{Name: "Planned", Value: planned, Unit: "USD"},
				{Name: "Variance", Value: variancePct, Unit: "%"},
			},
			Visualizations: []domain.Visualization{
				{Kind: "bar", Title: "Budget vs Actual", Series: []string{category}},
			},
			Confidence: 0.85,
			CreatedAt:  time.Now().UTC(),
		})
	}

	if compared > 0 {
		meanAbs := totalAbsVariance / float64(compared)
		insights = append(insights, domain.GeneratedInsight{
			ID:       uuid.New(),
			Type:     domain.InsightTypeVariance,
			Severity: domain.SeverityFromDeviation(meanAbs),
			Title:    "Overall Budget Performance",
			Description: fmt.Sprintf("Mean absolute variance of %.1f%% across %d budgeted categories",
				meanAbs, compared),
			Recommendations: []string{
				"Review the flagged categories with the client",
				"Revisit budget assumptions if variances persist",
			},
			Metrics: []domain.InsightMetric{
				{Name: "Mean Absolute Variance", Value: meanAbs, Unit: "%"},
				{Name: "Categories Compared", Value: float64(compared)},
			},
			Confidence: 0.85,
			CreatedAt:  time.Now().UTC(),
		})
	}

	return insights
}

func varianceRecommendations(variancePct float64) []string {
	if variancePct > 0 {
		return []string{
			"Investigate what drove spending above plan",
			"Adjust forecasts for the remaining periods",
		}
	}
	return []string{
		"Confirm planned activity actually happened",
		"Reallocate the unspent budget if appropriate",
	}
}
