package kpi

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/advisoros/analytics-service/internal/config"
	"github.com/advisoros/analytics-service/internal/domain"
	"github.com/advisoros/analytics-service/internal/pkg/logger"
)

func newTestAnalyzer() *Analyzer {
	return NewAnalyzer(&config.KPIConfig{
		HistoryCap:         24,
		StableSlopeEpsilon: 0.1,
		FlatVariancePct:    2.0,
	}, logger.NewNop())
}

func month(i int) time.Time {
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, i, 0)
}

func TestCalculateKPIClientRetention(t *testing.T) {
	a := newTestAnalyzer()

	kv, err := a.CalculateKPI("client_retention", map[string]float64{
		"start_clients":    100,
		"retained_clients": 82,
	}, month(0))
	require.NoError(t, err)

	assert.Equal(t, "client_retention", kv.KPIID)
	assert.InDelta(t, 82.0, kv.Value, 1e-9)
	assert.Equal(t, domain.KPIStatusWarning, kv.Status)
	assert.Equal(t, "2025-01", kv.Period)
	assert.Equal(t, domain.KPITrendStable, kv.Trend)
}

func TestCalculateKPIUnknownID(t *testing.T) {
	a := newTestAnalyzer()

	_, err := a.CalculateKPI("burn_rate", nil, month(0))
	assert.ErrorIs(t, err, ErrUnknownKPI)
}

func TestCalculateKPIZeroDenominator(t *testing.T) {
	a := newTestAnalyzer()

	kv, err := a.CalculateKPI("client_retention", map[string]float64{
		"start_clients":    0,
		"retained_clients": 50,
	}, month(0))
	require.NoError(t, err)
	assert.Equal(t, 0.0, kv.Value)
	assert.Equal(t, domain.KPIStatusCritical, kv.Status)
}

func TestCalculateKPITrend(t *testing.T) {
	a := newTestAnalyzer()

	values := []float64{80, 85, 90}
	var last domain.KPIValue
	for i, retained := range values {
		var err error
		last, err = a.CalculateKPI("client_retention", map[string]float64{
			"start_clients":    100,
			"retained_clients": retained,
		}, month(i))
		require.NoError(t, err)
	}
	assert.Equal(t, domain.KPITrendIncreasing, last.Trend)

	// Constant values are stable, falling ones are decreasing.
	for i := 0; i < 3; i++ {
		last, _ = a.CalculateKPI("task_completion_rate", map[string]float64{
			"total_tasks":     100,
			"completed_tasks": 80,
		}, month(i))
	}
	assert.Equal(t, domain.KPITrendStable, last.Trend)

	for i, growth := range []float64{90, 80, 70} {
		last, _ = a.CalculateKPI("revenue_growth", map[string]float64{
			"previous_revenue": 100,
			"current_revenue":  100 + growth,
		}, month(i))
	}
	assert.Equal(t, domain.KPITrendDecreasing, last.Trend)
}

func TestHistoryIsBounded(t *testing.T) {
	a := newTestAnalyzer()

	for i := 0; i < 30; i++ {
		_, err := a.CalculateKPI("average_invoice_value", map[string]float64{
			"total_revenue": float64(1000 + i),
			"invoice_count": 1,
		}, month(i))
		require.NoError(t, err)
	}

	history := a.History("average_invoice_value")
	require.Len(t, history, 24)

	// Oldest six were evicted; the rest are in append order.
	assert.Equal(t, 1006.0, history[0].Value)
	assert.Equal(t, 1029.0, history[23].Value)
	for i := 1; i < len(history); i++ {
		assert.True(t, history[i].Value > history[i-1].Value)
	}
}

func TestHistoryReturnsCopy(t *testing.T) {
	a := newTestAnalyzer()
	_, err := a.CalculateKPI("client_retention", map[string]float64{
		"start_clients":    100,
		"retained_clients": 95,
	}, month(0))
	require.NoError(t, err)

	history := a.History("client_retention")
	history[0].Value = -1
	assert.Equal(t, 95.0, a.History("client_retention")[0].Value)
}

func TestCompareKPI(t *testing.T) {
	a := newTestAnalyzer()

	for i, retained := range []float64{90, 81} {
		_, err := a.CalculateKPI("client_retention", map[string]float64{
			"start_clients":    100,
			"retained_clients": retained,
		}, month(i))
		require.NoError(t, err)
	}

	cmp, err := a.CompareKPI("client_retention", "2025-01", "2025-02")
	require.NoError(t, err)
	require.NotNil(t, cmp)

	assert.Equal(t, 90.0, cmp.ValueA)
	assert.Equal(t, 81.0, cmp.ValueB)
	assert.InDelta(t, -9.0, cmp.Variance, 1e-9)
	assert.InDelta(t, -10.0, cmp.VariancePercent, 1e-9)
	assert.Equal(t, "decreasing", cmp.Trend)
	assert.Equal(t, domain.SeverityMedium, cmp.Significance)
}

func TestCompareKPIMissingPeriod(t *testing.T) {
	a := newTestAnalyzer()

	cmp, err := a.CompareKPI("client_retention", "2025-01", "2025-02")
	require.NoError(t, err)
	assert.Nil(t, cmp)

	_, err = a.CompareKPI("nonexistent", "2025-01", "2025-02")
	assert.ErrorIs(t, err, ErrUnknownKPI)
}

func TestGenerateAlerts(t *testing.T) {
	a := newTestAnalyzer()

	values := []domain.KPIValue{
		{KPIID: "client_retention", Value: 75, Period: "2025-01", Status: domain.KPIStatusCritical},
		{KPIID: "client_retention", Value: 85, Period: "2025-02", Status: domain.KPIStatusWarning},
		{KPIID: "client_retention", Value: 96, Period: "2025-03", Status: domain.KPIStatusGood},
		{KPIID: "revenue_growth", Value: 3, Period: "2025-03", Status: domain.KPIStatusUnknown},
	}

	alerts := a.GenerateAlerts(values)
	require.Len(t, alerts, 2)

	assert.Equal(t, domain.KPIStatusCritical, alerts[0].Status)
	assert.Equal(t, 80.0, alerts[0].Threshold)
	assert.Equal(t, domain.KPIStatusWarning, alerts[1].Status)
	assert.Equal(t, 90.0, alerts[1].Threshold)
	assert.Contains(t, alerts[0].Message, "Client Retention")
}

func TestRegistryCoversBuiltinKPIs(t *testing.T) {
	a := newTestAnalyzer()

	for _, id := range []string{"revenue_growth", "client_retention", "average_invoice_value", "task_completion_rate"} {
		def, ok := a.Definition(id)
		require.True(t, ok, fmt.Sprintf("missing definition %s", id))
		assert.Equal(t, id, def.ID)
		assert.NotEmpty(t, def.Name)
	}
}
