// Package kpi implements the KPI tracker: a static metric registry,
// per-KPI bounded history, threshold classification, trend estimation,
// period comparison, and alerting.
package kpi

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/advisoros/analytics-service/internal/config"
	"github.com/advisoros/analytics-service/internal/domain"
	"github.com/advisoros/analytics-service/internal/pkg/logger"
	"github.com/advisoros/analytics-service/internal/stats"
)

// ErrUnknownKPI is returned when a KPI id has no registry entry. There is
// no sensible default formula, so this is a surfaced error rather than an
// empty result.
var ErrUnknownKPI = errors.New("unknown kpi")

// trendWindow is how many stored values feed the trend regression.
const trendWindow = 3

// Analyzer owns the KPI registry and the bounded per-KPI history. One
// analyzer instance may be shared across requests; history writes are
// serialized internally.
type Analyzer struct {
	registry map[string]domain.KPIDefinition

	historyCap      int
	stableSlope     float64
	flatVariancePct float64

	mu      sync.Mutex
	history map[string][]domain.KPIValue

	log *logger.Logger
}

// NewAnalyzer creates an analyzer with the built-in KPI registry.
func NewAnalyzer(cfg *config.KPIConfig, log *logger.Logger) *Analyzer {
	registry := make(map[string]domain.KPIDefinition)
	for _, def := range defaultDefinitions() {
		registry[def.ID] = def
	}

	return &Analyzer{
		registry:        registry,
		historyCap:      cfg.HistoryCap,
		stableSlope:     cfg.StableSlopeEpsilon,
		flatVariancePct: cfg.FlatVariancePct,
		history:         make(map[string][]domain.KPIValue),
		log:             log.Named("kpi_analyzer"),
	}
}

// Definition looks up a registry entry.
func (a *Analyzer) Definition(kpiID string) (domain.KPIDefinition, bool) {
	def, ok := a.registry[kpiID]
	return def, ok
}

// Definitions returns every registered KPI.
func (a *Analyzer) Definitions() []domain.KPIDefinition {
	return defaultDefinitions()
}

// CalculateKPI computes one KPI value for the given period, classifies its
// status and trend, and appends it to the KPI's history.
func (a *Analyzer) CalculateKPI(kpiID string, raw map[string]float64, period time.Time) (domain.KPIValue, error) {
	def, ok := a.registry[kpiID]
	if !ok {
		return domain.KPIValue{}, fmt.Errorf("%w: %s", ErrUnknownKPI, kpiID)
	}

	value, err := evaluateFormula(kpiID, raw)
	if err != nil {
		return domain.KPIValue{}, err
	}

	kv := domain.KPIValue{
		KPIID:  kpiID,
		Value:  value,
		Date:   period,
		Period: period.Format("2006-01"),
		Status: def.Thresholds.Classify(value),
	}

	a.mu.Lock()
	kv.Trend = a.trendLocked(kpiID, value)
	a.appendLocked(kpiID, kv)
	a.mu.Unlock()

	a.log.KPICalculated(kpiID, value, string(kv.Status))
	return kv, nil
}

// evaluateFormula dispatches to the KPI-specific formula. Every division
// guards a zero denominator by resolving to 0.
func evaluateFormula(kpiID string, raw map[string]float64) (float64, error) {
	switch kpiID {
	case "revenue_growth":
		prev := raw["previous_revenue"]
		if prev == 0 {
			return 0, nil
		}
		return (raw["current_revenue"] - prev) / prev * 100, nil
	case "client_retention":
		start := raw["start_clients"]
		if start == 0 {
			return 0, nil
		}
		return raw["retained_clients"] / start * 100, nil
	case "average_invoice_value":
		count := raw["invoice_count"]
		if count == 0 {
			return 0, nil
		}
		return raw["total_revenue"] / count, nil
	case "task_completion_rate":
		total := raw["total_tasks"]
		if total == 0 {
			return 0, nil
		}
		return raw["completed_tasks"] / total * 100, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownKPI, kpiID)
	}
}

// trendLocked regresses over the last stored values plus the incoming one.
// Slope magnitude under the epsilon reads as stable.
func (a *Analyzer) trendLocked(kpiID string, next float64) domain.KPITrend {
	stored := a.history[kpiID]
	window := make([]float64, 0, trendWindow)
	if len(stored) > trendWindow-1 {
		stored = stored[len(stored)-(trendWindow-1):]
	}
	for _, v := range stored {
		window = append(window, v.Value)
	}
	window = append(window, next)

	if len(window) < 2 {
		return domain.KPITrendStable
	}

	slope, _ := stats.LinearRegression(stats.Indices(len(window)), window)
	switch {
	case math.Abs(slope) < a.stableSlope:
		return domain.KPITrendStable
	case slope > 0:
		return domain.KPITrendIncreasing
	default:
		return domain.KPITrendDecreasing
	}
}

// appendLocked appends to the bounded history, evicting the oldest entry
// once the cap is reached.
func (a *Analyzer) appendLocked(kpiID string, kv domain.KPIValue) {
	h := append(a.history[kpiID], kv)
	if len(h) > a.historyCap {
		h = h[len(h)-a.historyCap:]
	}
	a.history[kpiID] = h
}

// History returns the stored values for a KPI, oldest first.
func (a *Analyzer) History(kpiID string) []domain.KPIValue {
	a.mu.Lock()
	defer a.mu.Unlock()

	stored := a.history[kpiID]
	out := make([]domain.KPIValue, len(stored))
	copy(out, stored)
	return out
}

// CompareKPI compares one KPI across two yyyy-MM periods. A missing period
// is a normal "no comparison available" nil result, not an error.
func (a *Analyzer) CompareKPI(kpiID, periodA, periodB string) (*domain.KPIComparison, error) {
	if _, ok := a.registry[kpiID]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKPI, kpiID)
	}

	a.mu.Lock()
	valueA, okA := a.lookupLocked(kpiID, periodA)
	valueB, okB := a.lookupLocked(kpiID, periodB)
	a.mu.Unlock()

	if !okA || !okB {
		return nil, nil
	}

	variance := valueB - valueA
	variancePct := 0.0
	if valueA != 0 {
		variancePct = variance / valueA * 100
	}

	trend := "flat"
	if math.Abs(variancePct) >= a.flatVariancePct {
		if variance > 0 {
			trend = "increasing"
		} else {
			trend = "decreasing"
		}
	}

	significance := domain.SeverityLow
	switch {
	case math.Abs(variancePct) > 10:
		significance = domain.SeverityHigh
	case math.Abs(variancePct) > 5:
		significance = domain.SeverityMedium
	}

	return &domain.KPIComparison{
		KPIID:           kpiID,
		PeriodA:         periodA,
		PeriodB:         periodB,
		ValueA:          valueA,
		ValueB:          valueB,
		Variance:        variance,
		VariancePercent: variancePct,
		Trend:           trend,
		Significance:    significance,
	}, nil
}

// lookupLocked finds the most recent stored value for a period key.
func (a *Analyzer) lookupLocked(kpiID, period string) (float64, bool) {
	stored := a.history[kpiID]
	for i := len(stored) - 1; i >= 0; i-- {
		if stored[i].Period == period {
			return stored[i].Value, true
		}
	}
	return 0, false
}

// GenerateAlerts emits one alert per value in critical or warning status,
// carrying the nearest breached threshold. Good and unknown statuses are
// silent.
func (a *Analyzer) GenerateAlerts(values []domain.KPIValue) []domain.KPIAlert {
	var alerts []domain.KPIAlert
	for _, v := range values {
		def, ok := a.registry[v.KPIID]
		if !ok {
			continue
		}

		var threshold float64
		switch v.Status {
		case domain.KPIStatusCritical:
			threshold = def.Thresholds.Critical
		case domain.KPIStatusWarning:
			threshold = def.Thresholds.Warning
		default:
			continue
		}

		alert := domain.KPIAlert{
			KPIID:     v.KPIID,
			KPIName:   def.Name,
			Status:    v.Status,
			Value:     v.Value,
			Threshold: threshold,
			Period:    v.Period,
			Message: fmt.Sprintf("%s is %.2f%s for %s, breaching the %s threshold of %.2f%s",
				def.Name, v.Value, def.Unit, v.Period, v.Status, threshold, def.Unit),
			TriggeredAt: time.Now().UTC(),
		}
		alerts = append(alerts, alert)

		a.log.AlertCreated(v.KPIID, string(v.Status), v.Value)
	}
	return alerts
}
