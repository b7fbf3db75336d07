package kpi

import "github.com/advisoros/analytics-service/internal/domain"

// defaultDefinitions is the static KPI registry loaded once at startup.
// Threshold values are applied with the shared ladder (<= critical, <=
// warning, >= good) for every KPI, regardless of direction; the values
// below are tuned so the ladder reads correctly for each metric.
func defaultDefinitions() []domain.KPIDefinition {
	return []domain.KPIDefinition{
		{
			ID:       "revenue_growth",
			Name:     "Revenue Growth",
			Category: "financial",
			Formula:  "((current_revenue - previous_revenue) / previous_revenue) * 100",
			Thresholds: domain.KPIThresholds{
				Critical: -10,
				Warning:  0,
				Good:     5,
			},
			Frequency: "monthly",
			Unit:      "%",
		},
		{
			ID:       "client_retention",
			Name:     "Client Retention",
			Category: "clients",
			Formula:  "(retained_clients / start_clients) * 100",
			Thresholds: domain.KPIThresholds{
				Critical: 80,
				Warning:  90,
				Good:     95,
			},
			Frequency: "monthly",
			Unit:      "%",
		},
		{
			ID:       "average_invoice_value",
			Name:     "Average Invoice Value",
			Category: "financial",
			Formula:  "total_revenue / invoice_count",
			Thresholds: domain.KPIThresholds{
				Critical: 500,
				Warning:  1000,
				Good:     1500,
			},
			Frequency: "monthly",
			Unit:      "USD",
		},
		{
			ID:       "task_completion_rate",
			Name:     "Task Completion Rate",
			Category: "operations",
			Formula:  "(completed_tasks / total_tasks) * 100",
			Thresholds: domain.KPIThresholds{
				Critical: 60,
				Warning:  75,
				Good:     90,
			},
			Frequency: "weekly",
			Unit:      "%",
		},
	}
}
