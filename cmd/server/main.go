package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.opentelemetry.io/otel"

	"github.com/advisoros/analytics-service/internal/cache"
	"github.com/advisoros/analytics-service/internal/config"
	"github.com/advisoros/analytics-service/internal/detect"
	"github.com/advisoros/analytics-service/internal/events"
	"github.com/advisoros/analytics-service/internal/insight"
	"github.com/advisoros/analytics-service/internal/kpi"
	"github.com/advisoros/analytics-service/internal/pkg/logger"
	"github.com/advisoros/analytics-service/internal/server"
	"github.com/advisoros/analytics-service/internal/store"
	"github.com/advisoros/analytics-service/internal/telemetry"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	// 2. Initialize Logger
	log, err := logger.New(cfg.Telemetry.ServiceName, cfg.Telemetry.Environment, cfg.Telemetry.Environment != "production")
	if err != nil {
		os.Stderr.WriteString("failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()

	// 3. Tracing
	shutdownTracing, err := telemetry.InitTracing(ctx, &cfg.Telemetry)
	if err != nil {
		log.Warn("tracing disabled", logger.ErrorField(err))
	} else {
		defer shutdownTracing(ctx)
	}

	// 4. Data access (circuit-broken Postgres)
	pg, err := store.NewPostgres(ctx, &cfg.Database, log)
	if err != nil {
		log.Fatal("failed to connect database", logger.ErrorField(err))
	}
	defer pg.Close()
	provider := store.NewBreakerProvider(pg, log)

	// 5. Benchmark cache (Redis in front of the static table)
	benchmarks := cache.NewBenchmarkCache(&cfg.Redis, cache.StaticBenchmarks{}, log)
	defer benchmarks.Close()

	// 6. Event publishing (optional; analysis proceeds without Kafka)
	var publisher server.AlertPublisher
	if kafkaPublisher, err := events.NewPublisher(&cfg.Kafka, log); err != nil {
		log.Warn("event publishing disabled", logger.ErrorField(err))
	} else {
		publisher = kafkaPublisher
		defer kafkaPublisher.Close()
	}

	// 7. Analytics core
	detector := detect.New(detect.Config{
		Sensitivity:         detect.Sensitivity(cfg.Detection.Sensitivity),
		LookbackDays:        cfg.Detection.LookbackDays,
		MinDataPoints:       cfg.Detection.MinDataPoints,
		ThresholdMultiplier: cfg.Detection.ThresholdMultiplier,
	}, log)
	analyzer := kpi.NewAnalyzer(&cfg.KPI, log)
	engine := insight.NewEngine(
		provider,
		provider,
		benchmarks,
		detector,
		&cfg.Insights,
		&cfg.Risk,
		log,
		insight.WithTracer(otel.Tracer("insight")),
		insight.WithMaxLatency(cfg.Detection.MaxAnalysisLatency),
	)

	// 8. HTTP server
	handlers := server.NewHandlers(engine, analyzer, detector, publisher, pg, log)
	srv := server.New(cfg, handlers, log)

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server stopped", logger.ErrorField(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", logger.ErrorField(err))
	}

	log.Info("server exited properly")
}
