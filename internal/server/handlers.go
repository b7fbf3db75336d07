package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/advisoros/analytics-service/internal/detect"
	"github.com/advisoros/analytics-service/internal/domain"
	"github.com/advisoros/analytics-service/internal/insight"
	"github.com/advisoros/analytics-service/internal/kpi"
	"github.com/advisoros/analytics-service/internal/pkg/logger"
)

// Pinger is the subset of the store the health endpoint needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// AlertPublisher forwards analysis outcomes to downstream automation.
// A nil publisher disables publishing.
type AlertPublisher interface {
	PublishAlerts(alerts []domain.KPIAlert)
	PublishAnomalies(anomalies []domain.DetectedAnomaly)
}

// Handlers holds the request handlers and their collaborators.
type Handlers struct {
	engine    *insight.Engine
	analyzer  *kpi.Analyzer
	detector  *detect.Detector
	publisher AlertPublisher
	db        Pinger
	log       *logger.Logger
}

// NewHandlers creates the handler set.
func NewHandlers(engine *insight.Engine, analyzer *kpi.Analyzer, detector *detect.Detector, publisher AlertPublisher, db Pinger, log *logger.Logger) *Handlers {
	return &Handlers{
		engine:    engine,
		analyzer:  analyzer,
		detector:  detector,
		publisher: publisher,
		db:        db,
		log:       log.Named("handlers"),
	}
}

// Health reports service and database status.
func (h *Handlers) Health(c echo.Context) error {
	status := map[string]string{"status": "ok"}
	if h.db != nil {
		if err := h.db.Ping(c.Request().Context()); err != nil {
			status["status"] = "degraded"
			status["database"] = err.Error()
			return c.JSON(http.StatusServiceUnavailable, status)
		}
		status["database"] = "ok"
	}
	return c.JSON(http.StatusOK, status)
}

type insightsRequest struct {
	OrganizationID    uuid.UUID  `json:"organization_id"`
	ClientID          *uuid.UUID `json:"client_id,omitempty"`
	Start             time.Time  `json:"start"`
	End               time.Time  `json:"end"`
	AnalysisType      string     `json:"analysis_type"`
	IncludeBenchmarks bool       `json:"include_benchmarks"`
	Industry          string     `json:"industry,omitempty"`
}

// GenerateInsights runs one analysis and returns the ordered insights.
func (h *Handlers) GenerateInsights(c echo.Context) error {
	var req insightsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.OrganizationID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "organization_id is required")
	}

	insights, err := h.engine.GenerateInsights(c.Request().Context(), domain.InsightRequest{
		OrganizationID:    req.OrganizationID,
		ClientID:          req.ClientID,
		Period:            domain.DateRange{Start: req.Start, End: req.End},
		AnalysisType:      domain.AnalysisType(req.AnalysisType),
		IncludeBenchmarks: req.IncludeBenchmarks,
		Industry:          req.Industry,
	})
	if err != nil {
		h.log.Error("insight generation failed", logger.ErrorField(err))
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"insights": insights,
		"count":    len(insights),
	})
}

type detectRequest struct {
	Points     []domain.TimeSeriesPoint `json:"points"`
	Algorithms []string                 `json:"algorithms,omitempty"`
}

// DetectAnomalies runs the detector facade over a caller-supplied series.
func (h *Handlers) DetectAnomalies(c echo.Context) error {
	var req detectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	anomalies, err := h.detector.DetectAnomalies(c.Request().Context(), req.Points, req.Algorithms)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if h.publisher != nil && len(anomalies) > 0 {
		h.publisher.PublishAnomalies(anomalies)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"anomalies": anomalies,
		"count":     len(anomalies),
	})
}

type calculateKPIRequest struct {
	Raw    map[string]float64 `json:"raw"`
	Period string             `json:"period"` // yyyy-MM
}

// CalculateKPI computes one KPI value and emits alerts for breaches.
func (h *Handlers) CalculateKPI(c echo.Context) error {
	var req calculateKPIRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	period, err := time.Parse("2006-01", req.Period)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "period must be yyyy-MM")
	}

	value, err := h.analyzer.CalculateKPI(c.Param("id"), req.Raw, period)
	if err != nil {
		if errors.Is(err, kpi.ErrUnknownKPI) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	alerts := h.analyzer.GenerateAlerts([]domain.KPIValue{value})
	if h.publisher != nil && len(alerts) > 0 {
		h.publisher.PublishAlerts(alerts)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"value":  value,
		"alerts": alerts,
	})
}

// KPIHistory returns the stored values for one KPI, oldest first.
func (h *Handlers) KPIHistory(c echo.Context) error {
	kpiID := c.Param("id")
	if _, ok := h.analyzer.Definition(kpiID); !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown kpi")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"kpi_id":  kpiID,
		"history": h.analyzer.History(kpiID),
	})
}

// CompareKPI compares one KPI across two periods.
func (h *Handlers) CompareKPI(c echo.Context) error {
	comparison, err := h.analyzer.CompareKPI(c.Param("id"), c.QueryParam("period_a"), c.QueryParam("period_b"))
	if err != nil {
		if errors.Is(err, kpi.ErrUnknownKPI) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if comparison == nil {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"comparison": nil,
			"message":    "no comparison available",
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"comparison": comparison})
}

type riskScoreRequest struct {
	IncludeFinancial  bool `json:"include_financial"`
	IncludeBehavioral bool `json:"include_behavioral"`
	IncludeMarket     bool `json:"include_market"`
	WindowDays        int  `json:"window_days"`
}

// GenerateRiskScore computes a client's composite risk score.
func (h *Handlers) GenerateRiskScore(c echo.Context) error {
	clientID, err := uuid.Parse(c.Param("clientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid client id")
	}

	var req riskScoreRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.WindowDays <= 0 {
		req.WindowDays = 90
	}

	score, err := h.engine.GenerateRiskScore(c.Request().Context(), clientID, domain.RiskScoreOptions{
		IncludeFinancial:  req.IncludeFinancial,
		IncludeBehavioral: req.IncludeBehavioral,
		IncludeMarket:     req.IncludeMarket,
	}, domain.LastNDays(req.WindowDays))
	if err != nil {
		h.log.Error("risk score failed", logger.ErrorField(err))
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, score)
}
