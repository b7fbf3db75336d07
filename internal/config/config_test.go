package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8086, cfg.Server.Port)
	assert.Equal(t, "advisoros_analytics", cfg.Database.Database)

	assert.Equal(t, "medium", cfg.Detection.Sensitivity)
	assert.Equal(t, 90, cfg.Detection.LookbackDays)
	assert.Equal(t, 30, cfg.Detection.MinDataPoints)
	assert.Equal(t, 2.5, cfg.Detection.ThresholdMultiplier)

	assert.Equal(t, 24, cfg.KPI.HistoryCap)
	assert.Equal(t, 0.1, cfg.KPI.StableSlopeEpsilon)

	assert.Equal(t, 10.0, cfg.Insights.VarianceThresholdPct)
	assert.Equal(t, 0.7, cfg.Insights.TrendSignificance)
	assert.Equal(t, 5, cfg.Insights.MinCategoryObservations)
	assert.Equal(t, "professional_services", cfg.Insights.DefaultIndustry)

	assert.Equal(t, 0.5, cfg.Risk.FinancialWeight)
	assert.Equal(t, 0.3, cfg.Risk.BehavioralWeight)
	assert.Equal(t, 0.2, cfg.Risk.MarketWeight)
	assert.Equal(t, 5, cfg.Risk.TrendEpsilon)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("ANALYTICS_SERVICE_SERVER_PORT", "9090")
	t.Setenv("ANALYTICS_SERVICE_DETECTION_SENSITIVITY", "high")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "high", cfg.Detection.Sensitivity)
}
