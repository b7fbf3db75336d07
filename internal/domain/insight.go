package domain

import (
	"time"

	"github.com/google/uuid"
)

// InsightType identifies which analysis family produced an insight.
type InsightType string

const (
	InsightTypeCashFlow      InsightType = "cash_flow"
	InsightTypeProfitability InsightType = "profitability"
	InsightTypeLiquidity     InsightType = "liquidity"
	InsightTypeDebt          InsightType = "debt"
	InsightTypeVariance      InsightType = "variance"
	InsightTypeTrend         InsightType = "trend"
	InsightTypeAnomaly       InsightType = "anomaly"
	InsightTypeBenchmark     InsightType = "benchmark"
)

// AnalysisType selects which analysis families the engine runs.
type AnalysisType string

const (
	AnalysisFinancialHealth AnalysisType = "financial_health"
	AnalysisVariance        AnalysisType = "variance"
	AnalysisTrend           AnalysisType = "trend"
	AnalysisAnomalies       AnalysisType = "anomalies"
	AnalysisComprehensive   AnalysisType = "comprehensive"
)

// Benchmark is an industry reference value attached to a metric.
type Benchmark struct {
	Industry string  `json:"industry"`
	Value    float64 `json:"value"`
	Source   string  `json:"source,omitempty"`
}

// InsightMetric is a named measurement carried by an insight.
type InsightMetric struct {
	Name      string     `json:"name"`
	Value     float64    `json:"value"`
	Trend     KPITrend   `json:"trend,omitempty"`
	Unit      string     `json:"unit,omitempty"`
	Benchmark *Benchmark `json:"benchmark,omitempty"`
}

// Visualization describes a chart the reporting layer may render.
type Visualization struct {
	Kind   string   `json:"kind"` // line, bar, gauge
	Title  string   `json:"title"`
	Series []string `json:"series,omitempty"`
}

// GeneratedInsight is a narrated, severity-ranked finding returned to the
// reporting collaborator.
type GeneratedInsight struct {
	ID              uuid.UUID       `json:"id"`
	Type            InsightType     `json:"type"`
	Severity        Severity        `json:"severity"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Narrative       string          `json:"narrative"`
	Recommendations []string        `json:"recommendations,omitempty"`
	Metrics         []InsightMetric `json:"metrics,omitempty"`
	Visualizations  []Visualization `json:"visualizations,omitempty"`
	Confidence      float64         `json:"confidence"`
	CreatedAt       time.Time       `json:"created_at"`
}

// InsightRequest describes one insight-generation call.
type InsightRequest struct {
	OrganizationID    uuid.UUID    `json:"organization_id"`
	ClientID          *uuid.UUID   `json:"client_id,omitempty"`
	Period            DateRange    `json:"period"`
	AnalysisType      AnalysisType `json:"analysis_type"`
	IncludeBenchmarks bool         `json:"include_benchmarks,omitempty"`
	Industry          string       `json:"industry,omitempty"`
}
