package insight

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/advisoros/analytics-service/internal/domain"
)

// FinancialMetrics are the aggregate figures derived from one window of
// financial records.
type FinancialMetrics struct {
	TotalRevenue     float64 `json:"total_revenue"`
	TotalExpenses    float64 `json:"total_expenses"`
	TotalAssets      float64 `json:"total_assets"`
	TotalLiabilities float64 `json:"total_liabilities"`
	NetIncome        float64 `json:"net_income"`
	GrossMargin      float64 `json:"gross_margin"`
	DebtToEquity     float64 `json:"debt_to_equity"`
	CurrentRatio     float64 `json:"current_ratio"`
	QuickRatio       float64 `json:"quick_ratio"`
}

// AggregateMetrics derives the health metrics from raw records. Current
// and quick ratios only consider the liquid-asset and short-term-liability
// categories; every ratio guards a zero denominator by resolving to 0.
func AggregateMetrics(records []domain.FinancialRecord) FinancialMetrics {
	var m FinancialMetrics
	var currentAssets, quickAssets, currentLiabilities float64

	for _, r := range records {
		amount := r.AmountFloat()
		switch r.Type {
		case domain.RecordTypeIncome:
			m.TotalRevenue += amount
		case domain.RecordTypeExpense:
			m.TotalExpenses += amount
		case domain.RecordTypeAsset:
			m.TotalAssets += amount
		case domain.RecordTypeLiability:
			m.TotalLiabilities += amount
		}
		if r.IsCurrentAsset() {
			currentAssets += amount
		}
		if r.IsQuickAsset() {
			quickAssets += amount
		}
		if r.IsCurrentLiability() {
			currentLiabilities += amount
		}
	}

	m.NetIncome = m.TotalRevenue - m.TotalExpenses
	if m.TotalRevenue != 0 {
		m.GrossMargin = m.NetIncome / m.TotalRevenue
	}
	if equity := m.TotalAssets - m.TotalLiabilities; equity != 0 {
		m.DebtToEquity = m.TotalLiabilities / equity
	}
	if currentLiabilities != 0 {
		m.CurrentRatio = currentAssets / currentLiabilities
		m.QuickRatio = quickAssets / currentLiabilities
	}
	return m
}

// financialHealthInsights runs the four health sub-analyses. Each decides
// severity from fixed numeric bands; the bands are design constants.
func financialHealthInsights(m FinancialMetrics) []domain.GeneratedInsight {
	return []domain.GeneratedInsight{
		cashFlowInsight(m),
		profitabilityInsight(m),
		liquidityInsight(m),
		debtInsight(m),
	}
}

func cashFlowInsight(m FinancialMetrics) domain.GeneratedInsight {
	severity := domain.SeverityLow
	recommendations := []string{"Maintain current cash management practices"}

	switch {
	case m.NetIncome < 0:
		severity = domain.SeverityCritical
		recommendations = []string{
			"Review discretionary spending immediately",
			"Accelerate receivables collection",
			"Consider short-term financing to cover the gap",
		}
	case m.TotalRevenue > 0 && m.NetIncome < 0.1*m.TotalRevenue:
		severity = domain.SeverityMedium
		recommendations = []string{
			"Tighten expense approvals",
			"Build a cash reserve covering at least one quarter",
		}
	}

	return domain.GeneratedInsight{
		ID:       uuid.New(),
		Type:     domain.InsightTypeCashFlow,
		Severity: severity,
		Title:    "Cash Flow Position",
		Description: fmt.Sprintf("Net income of %.2f on revenue of %.2f over the period",
			m.NetIncome, m.TotalRevenue),
		Recommendations: recommendations,
		Metrics: []domain.InsightMetric{
			{Name: "Net Income", Value: m.NetIncome, Unit: "USD"},
			{Name: "Total Revenue", Value: m.TotalRevenue, Unit: "USD"},
			{Name: "Total Expenses", Value: m.TotalExpenses, Unit: "USD"},
		},
		Visualizations: []domain.Visualization{
			{Kind: "line", Title: "Cash Flow", Series: []string{"revenue", "expenses"}},
		},
		Confidence: 0.95,
		CreatedAt:  time.Now().UTC(),
	}
}

func profitabilityInsight(m FinancialMetrics) domain.GeneratedInsight {
	severity := domain.SeverityLow
	recommendations := []string{"Margins are healthy; continue monitoring quarterly"}

	switch {
	case m.GrossMargin < 0:
		severity = domain.SeverityCritical
		recommendations = []string{
			"Reprice services below cost",
			"Identify and cut unprofitable engagements",
		}
	case m.GrossMargin < 0.05:
		severity = domain.SeverityHigh
		recommendations = []string{
			"Review pricing against delivery cost",
			"Shift effort toward higher-margin service lines",
		}
	case m.GrossMargin < 0.15:
		severity = domain.SeverityMedium
		recommendations = []string{
			"Benchmark margin against industry peers",
			"Look for automation opportunities in delivery",
		}
	}

	return domain.GeneratedInsight{
		ID:       uuid.New(),
		Type:     domain.InsightTypeProfitability,
		Severity: severity,
		Title:    "Profitability",
		Description: fmt.Sprintf("Gross margin of %.1f%% over the period",
			m.GrossMargin*100),
		Recommendations: recommendations,
		Metrics: []domain.InsightMetric{
			{Name: "Gross Margin", Value: m.GrossMargin, Unit: "ratio"},
			{Name: "Net Income", Value: m.NetIncome, Unit: "USD"},
		},
		Visualizations: []domain.Visualization{
			{Kind: "gauge", Title: "Gross Margin"},
		},
		Confidence: 0.9,
		CreatedAt:  time.Now().UTC(),
	}
}

func liquidityInsight(m FinancialMetrics) domain.GeneratedInsight {
	severity := domain.SeverityLow
	recommendations := []string{"Liquidity is adequate"}

	switch {
	case m.CurrentRatio < 1.0:
		severity = domain.SeverityCritical
		recommendations = []string{
			"Current liabilities exceed current assets; arrange a credit line",
			"Defer non-essential purchases",
		}
	case m.CurrentRatio < 1.5:
		severity = domain.SeverityMedium
		recommendations = []string{
			"Build current assets toward a 2:1 ratio",
			"Negotiate longer payment terms with vendors",
		}
	}

	return domain.GeneratedInsight{
		ID:       uuid.New(),
		Type:     domain.InsightTypeLiquidity,
		Severity: severity,
		Title:    "Liquidity",
		Description: fmt.Sprintf("Current ratio %.2f, quick ratio %.2f",
			m.CurrentRatio, m.QuickRatio),
		Recommendations: recommendations,
		Metrics: []domain.InsightMetric{
			{Name: "Current Ratio", Value: m.CurrentRatio, Unit: "ratio"},
			{Name: "Quick Ratio", Value: m.QuickRatio, Unit: "ratio"},
		},
		Confidence: 0.9,
		CreatedAt:  time.Now().UTC(),
	}
}

func debtInsight(m FinancialMetrics) domain.GeneratedInsight {
	severity := domain.SeverityLow
	recommendations := []string{"Leverage is within a comfortable range"}

	switch {
	case m.DebtToEquity > 3.0:
		severity = domain.SeverityCritical
		recommendations = []string{
			"Leverage is far above sustainable levels; restructure debt",
			"Pause new borrowing until the ratio falls below 2.0",
		}
	case m.DebtToEquity > 2.0:
		severity = domain.SeverityHigh
		recommendations = []string{
			"Prioritize paying down the highest-rate obligations",
			"Review covenants for breach risk",
		}
	case m.DebtToEquity > 1.0:
		severity = domain.SeverityMedium
		recommendations = []string{
			"Monitor leverage monthly",
		}
	}

	return domain.GeneratedInsight{
		ID:       uuid.New(),
		Type:     domain.InsightTypeDebt,
		Severity: severity,
		Title:    "Debt Position",
		Description: fmt.Sprintf("Debt-to-equity ratio of %.2f over the period",
			m.DebtToEquity),
		Recommendations: recommendations,
		Metrics: []domain.InsightMetric{
			{Name: "Debt To Equity", Value: m.DebtToEquity, Unit: "ratio"},
			{Name: "Total Liabilities", Value: m.TotalLiabilities, Unit: "USD"},
		},
		Confidence: 0.9,
		CreatedAt:  time.Now().UTC(),
	}
}
