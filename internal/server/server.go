// Package server exposes the analytics engine over HTTP for the web and
// reporting collaborators.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/advisoros/analytics-service/internal/config"
	"github.com/advisoros/analytics-service/internal/pkg/logger"
)

// Server wraps echo with the service's middleware stack.
type Server struct {
	echo *echo.Echo
	cfg  *config.ServerConfig
	log  *logger.Logger
}

// New creates the HTTP server and registers routes for the handlers.
func New(cfg *config.Config, handlers *Handlers, log *logger.Logger) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.Secure())
	e.Use(middleware.BodyLimit(fmt.Sprintf("%d", cfg.Server.MaxRequestSize)))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Security.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
	}))

	registerRoutes(e, handlers)

	return &Server{
		echo: e,
		cfg:  &cfg.Server,
		log:  log.Named("server"),
	}
}

func registerRoutes(e *echo.Echo, h *Handlers) {
	e.GET("/health", h.Health)

	v1 := e.Group("/api/v1")
	v1.POST("/insights", h.GenerateInsights)
	v1.POST("/anomalies/detect", h.DetectAnomalies)
	v1.POST("/kpi/:id/calculate", h.CalculateKPI)
	v1.GET("/kpi/:id/history", h.KPIHistory)
	v1.GET("/kpi/:id/compare", h.CompareKPI)
	v1.POST("/risk-score/:clientId", h.GenerateRiskScore)
}

// Start begins serving on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.log.Info("server starting", logger.StringField("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
