package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// AnomalyType classifies what kind of financial signal an anomaly concerns.
type AnomalyType string

const (
	AnomalyTypeRevenue     AnomalyType = "revenue"
	AnomalyTypeExpense     AnomalyType = "expense"
	AnomalyTypeTransaction AnomalyType = "transaction"
	AnomalyTypePattern     AnomalyType = "pattern"
	AnomalyTypeSeasonal    AnomalyType = "seasonal"
)

// Severity grades how serious a finding is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank maps severities onto a total order for sorting and deduplication.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// SeverityFromDeviation applies the shared severity bucketing used by every
// detector: |deviationPercent| >= 100 critical, >= 50 high, >= 25 medium,
// otherwise low. Severity is non-decreasing in |deviationPercent|.
func SeverityFromDeviation(deviationPercent float64) Severity {
	abs := math.Abs(deviationPercent)
	switch {
	case abs >= 100:
		return SeverityCritical
	case abs >= 50:
		return SeverityHigh
	case abs >= 25:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// AnomalyContext carries the detector-specific evidence behind a finding.
// Known shapes get typed fields; anything else goes into Extra.
type AnomalyContext struct {
	Algorithm      string            `json:"algorithm"`
	ZScore         float64           `json:"z_score,omitempty"`
	IsolationScore float64           `json:"isolation_score,omitempty"`
	RuleID         string            `json:"rule_id,omitempty"`
	WindowSize     int               `json:"window_size,omitempty"`
	Extra          map[string]string `json:"extra,omitempty"`
}

// DetectedAnomaly is an immutable finding produced by exactly one detector
// invocation.
type DetectedAnomaly struct {
	ID               uuid.UUID      `json:"id"`
	Type             AnomalyType    `json:"type"`
	Severity         Severity       `json:"severity"`
	Value            float64        `json:"value"`
	ExpectedValue    float64        `json:"expected_value"`
	Deviation        float64        `json:"deviation"`
	DeviationPercent float64        `json:"deviation_percent"`
	Confidence       float64        `json:"confidence"` // 0.0 - 1.0
	Timestamp        time.Time      `json:"timestamp"`
	Description      string         `json:"description"`
	Context          AnomalyContext `json:"context"`
	Recommendations  []string       `json:"recommendations,omitempty"`
}

// DedupKey groups anomalies by UTC day and type for deduplication.
func (a DetectedAnomaly) DedupKey() string {
	return a.Timestamp.UTC().Format("2006-01-02") + "|" + string(a.Type)
}

// IsCritical reports whether the anomaly needs immediate attention.
func (a DetectedAnomaly) IsCritical() bool {
	return a.Severity == SeverityCritical
}
