package domain

import (
	"time"
)

// KPIStatus is the threshold classification of a KPI value.
type KPIStatus string

const (
	KPIStatusCritical KPIStatus = "critical"
	KPIStatusWarning  KPIStatus = "warning"
	KPIStatusGood     KPIStatus = "good"
	KPIStatusUnknown  KPIStatus = "unknown"
)

// KPITrend is the short-horizon direction of a KPI.
type KPITrend string

const (
	KPITrendIncreasing KPITrend = "increasing"
	KPITrendDecreasing KPITrend = "decreasing"
	KPITrendStable     KPITrend = "stable"
)

// KPIThresholds are the status breakpoints for one KPI. The ladder is
// applied as: value <= Critical -> critical; value <= Warning -> warning;
// value >= Good -> good; otherwise unknown. The comparison shape is the
// same for every KPI regardless of whether higher or lower is better.
type KPIThresholds struct {
	Critical float64 `json:"critical"`
	Warning  float64 `json:"warning"`
	Good     float64 `json:"good"`
}

// Classify applies the threshold ladder to a value.
func (t KPIThresholds) Classify(value float64) KPIStatus {
	switch {
	case value <= t.Critical:
		return KPIStatusCritical
	case value <= t.Warning:
		return KPIStatusWarning
	case value >= t.Good:
		return KPIStatusGood
	default:
		return KPIStatusUnknown
	}
}

// KPIDefinition is a static registry entry describing one KPI. Definitions
// are loaded once at startup and never mutated.
type KPIDefinition struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Category   string        `json:"category"`
	Formula    string        `json:"formula"` // documentation only
	Thresholds KPIThresholds `json:"thresholds"`
	Frequency  string        `json:"frequency"`
	Unit       string        `json:"unit"`
}

// KPIValue is one calculated KPI observation.
type KPIValue struct {
	KPIID  string    `json:"kpi_id"`
	Value  float64   `json:"value"`
	Date   time.Time `json:"date"`
	Period string    `json:"period"` // yyyy-MM
	Status KPIStatus `json:"status"`
	Trend  KPITrend  `json:"trend"`
}

// KPIComparison is the result of comparing one KPI across two periods.
type KPIComparison struct {
	KPIID           string   `json:"kpi_id"`
	PeriodA         string   `json:"period_a"`
	PeriodB         string   `json:"period_b"`
	ValueA          float64  `json:"value_a"`
	ValueB          float64  `json:"value_b"`
	Variance        float64  `json:"variance"`
	VariancePercent float64  `json:"variance_percent"`
	Trend           string   `json:"trend"`        // increasing, decreasing, flat
	Significance    Severity `json:"significance"` // high > 10%, medium > 5%, else low
}

// KPIAlert is emitted for KPI values in critical or warning status.
type KPIAlert struct {
	KPIID       string    `json:"kpi_id"`
	KPIName     string    `json:"kpi_name"`
	Status      KPIStatus `json:"status"`
	Value       float64   `json:"value"`
	Threshold   float64   `json:"threshold"` // nearest breached threshold
	Period      string    `json:"period"`
	Message     string    `json:"message"`
	TriggeredAt time.Time `json:"triggered_at"`
}
