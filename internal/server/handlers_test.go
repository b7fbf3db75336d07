package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/advisoros/analytics-service/internal/config"
	"github.com/advisoros/analytics-service/internal/detect"
	"github.com/advisoros/analytics-service/internal/domain"
	"github.com/advisoros/analytics-service/internal/insight"
	"github.com/advisoros/analytics-service/internal/kpi"
	"github.com/advisoros/analytics-service/internal/pkg/logger"
)

type stubData struct {
	records []domain.FinancialRecord
	err     error
}

func (s *stubData) FetchRecords(context.Context, uuid.UUID, *uuid.UUID, domain.DateRange) ([]domain.FinancialRecord, error) {
	return s.records, s.err
}

func (s *stubData) FetchBudget(context.Context, uuid.UUID, domain.DateRange) (map[string]float64, error) {
	return nil, nil
}

type stubBenchmarks struct{}

func (stubBenchmarks) FetchBenchmarks(context.Context, string) (map[string]domain.Benchmark, error) {
	return nil, nil
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type capturingPublisher struct {
	alerts    []domain.KPIAlert
	anomalies []domain.DetectedAnomaly
}

func (p *capturingPublisher) PublishAlerts(alerts []domain.KPIAlert) {
	p.alerts = append(p.alerts, alerts...)
}

func (p *capturingPublisher) PublishAnomalies(anomalies []domain.DetectedAnomaly) {
	p.anomalies = append(p.anomalies, anomalies...)
}

func newTestHandlers(data *stubData, publisher AlertPublisher, db Pinger) *Handlers {
	log := logger.NewNop()
	detector := detect.New(detect.Config{
		Sensitivity:         detect.SensitivityMedium,
		MinDataPoints:       5,
		ThresholdMultiplier: 2.5,
	}, log)
	analyzer := kpi.NewAnalyzer(&config.KPIConfig{HistoryCap: 24, StableSlopeEpsilon: 0.1, FlatVariancePct: 2.0}, log)
	engine := insight.NewEngine(data, data, stubBenchmarks{}, detector,
		&config.InsightsConfig{
			VarianceThresholdPct:    10,
			TrendSignificance:       0.7,
			CategorySignificance:    0.8,
			MinCategoryObservations: 5,
			DefaultIndustry:         "professional_services",
		},
		&config.RiskConfig{FinancialWeight: 0.5, BehavioralWeight: 0.3, MarketWeight: 0.2, TrendEpsilon: 5},
		log)
	return NewHandlers(engine, analyzer, detector, publisher, db, log)
}

func doJSON(t *testing.T, handler echo.HandlerFunc, method, target, body string, setup func(echo.Context)) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if setup != nil {
		setup(c)
	}
	return rec, handler(c)
}

func TestHealthOK(t *testing.T) {
	h := newTestHandlers(&stubData{}, nil, stubPinger{})

	rec, err := doJSON(t, h.Health, http.MethodGet, "/health", "", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestHealthDegraded(t *testing.T) {
	h := newTestHandlers(&stubData{}, nil, stubPinger{err: errors.New("connection refused")})

	rec, err := doJSON(t, h.Health, http.MethodGet, "/health", "", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "degraded")
}

func TestGenerateInsightsRequiresOrganization(t *testing.T) {
	h := newTestHandlers(&stubData{}, nil, nil)

	_, err := doJSON(t, h.GenerateInsights, http.MethodPost, "/api/v1/insights",
		`{"analysis_type":"financial_health"}`, nil)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestGenerateInsightsOK(t *testing.T) {
	h := newTestHandlers(&stubData{}, nil, nil)

	body := `{"organization_id":"` + uuid.NewString() + `","analysis_type":"financial_health"}`
	rec, err := doJSON(t, h.GenerateInsights, http.MethodPost, "/api/v1/insights", body, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Count    int                       `json:"count"`
		Insights []domain.GeneratedInsight `json:"insights"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 4, resp.Count)
}

func TestGenerateInsightsEngineFailure(t *testing.T) {
	h := newTestHandlers(&stubData{err: errors.New("database unavailable")}, nil, nil)

	body := `{"organization_id":"` + uuid.NewString() + `","analysis_type":"financial_health"}`
	_, err := doJSON(t, h.GenerateInsights, http.MethodPost, "/api/v1/insights", body, nil)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusInternalServerError, he.Code)
}

func TestDetectAnomaliesPublishes(t *testing.T) {
	publisher := &capturingPublisher{}
	h := newTestHandlers(&stubData{}, publisher, nil)

	points := make([]map[string]interface{}, 0, 6)
	start := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	for i, v := range []float64{100, 100, 100, 100, 100, 400} {
		points = append(points, map[string]interface{}{
			"timestamp": start.AddDate(0, 0, i).Format(time.RFC3339),
			"value":     v,
			"category":  "revenue",
		})
	}
	body, err := json.Marshal(map[string]interface{}{"points": points})
	require.NoError(t, err)

	rec, err := doJSON(t, h.DetectAnomalies, http.MethodPost, "/api/v1/anomalies/detect", string(body), nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, publisher.anomalies)
}

func TestDetectAnomaliesUnknownAlgorithm(t *testing.T) {
	h := newTestHandlers(&stubData{}, nil, nil)

	_, err := doJSON(t, h.DetectAnomalies, http.MethodPost, "/api/v1/anomalies/detect",
		`{"points":[],"algorithms":["quantum"]}`, nil)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestCalculateKPI(t *testing.T) {
	publisher := &capturingPublisher{}
	h := newTestHandlers(&stubData{}, publisher, nil)

	body := `{"raw":{"start_clients":100,"retained_clients":75},"period":"2025-01"}`
	rec, err := doJSON(t, h.CalculateKPI, http.MethodPost, "/api/v1/kpi/client_retention/calculate", body,
		func(c echo.Context) {
			c.SetParamNames("id")
			c.SetParamValues("client_retention")
		})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	// 75% retention is critical, so one alert is published.
	require.Len(t, publisher.alerts, 1)
	assert.Equal(t, domain.KPIStatusCritical, publisher.alerts[0].Status)
}

func TestCalculateKPIUnknownID(t *testing.T) {
	h := newTestHandlers(&stubData{}, nil, nil)

	_, err := doJSON(t, h.CalculateKPI, http.MethodPost, "/api/v1/kpi/burn_rate/calculate",
		`{"raw":{},"period":"2025-01"}`,
		func(c echo.Context) {
			c.SetParamNames("id")
			c.SetParamValues("burn_rate")
		})
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusNotFound, he.Code)
}

func TestCalculateKPIBadPeriod(t *testing.T) {
	h := newTestHandlers(&stubData{}, nil, nil)

	_, err := doJSON(t, h.CalculateKPI, http.MethodPost, "/api/v1/kpi/client_retention/calculate",
		`{"raw":{},"period":"January"}`,
		func(c echo.Context) {
			c.SetParamNames("id")
			c.SetParamValues("client_retention")
		})
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestKPIHistoryUnknownID(t *testing.T) {
	h := newTestHandlers(&stubData{}, nil, nil)

	_, err := doJSON(t, h.KPIHistory, http.MethodGet, "/api/v1/kpi/burn_rate/history", "",
		func(c echo.Context) {
			c.SetParamNames("id")
			c.SetParamValues("burn_rate")
		})
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusNotFound, he.Code)
}

func TestCompareKPINoData(t *testing.T) {
	h := newTestHandlers(&stubData{}, nil, nil)

	rec, err := doJSON(t, h.CompareKPI, http.MethodGet,
		"/api/v1/kpi/client_retention/compare?period_a=2025-01&period_b=2025-02", "",
		func(c echo.Context) {
			c.SetParamNames("id")
			c.SetParamValues("client_retention")
		})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "no comparison available")
}

func TestGenerateRiskScoreInvalidClientID(t *testing.T) {
	h := newTestHandlers(&stubData{}, nil, nil)

	_, err := doJSON(t, h.GenerateRiskScore, http.MethodPost, "/api/v1/risk-score/not-a-uuid",
		`{"include_financial":true}`,
		func(c echo.Context) {
			c.SetParamNames("clientId")
			c.SetParamValues("not-a-uuid")
		})
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestGenerateRiskScoreOK(t *testing.T) {
	h := newTestHandlers(&stubData{}, nil, nil)

	clientID := uuid.New()
	rec, err := doJSON(t, h.GenerateRiskScore, http.MethodPost, "/api/v1/risk-score/"+clientID.String(),
		`{"include_financial":true}`,
		func(c echo.Context) {
			c.SetParamNames("clientId")
			c.SetParamValues(clientID.String())
		})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var score domain.RiskScore
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &score))
	assert.Equal(t, clientID, score.ClientID)
	assert.Equal(t, 30, score.OverallScore)
}
