// Package insight implements the insight-generation engine: it
// orchestrates financial-health, variance, trend, and anomaly analyses
// over a window of financial records and returns narrated,
// recommendation-bearing findings plus a composite client risk score.
package insight

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"github.com/advisoros/analytics-service/internal/config"
	"github.com/advisoros/analytics-service/internal/detect"
	"github.com/advisoros/analytics-service/internal/domain"
	"github.com/advisoros/analytics-service/internal/pkg/logger"
)

// ErrInsightGeneration wraps any failure inside the insight pipeline so
// callers see a single error type regardless of which sub-analysis failed.
var ErrInsightGeneration = errors.New("insight generation failed")

// Engine orchestrates the analysis families over one organization's data.
// Analysis itself is synchronous and pure; the only concurrency is the
// errgroup fan-out to the external data providers. One engine instance may
// be shared across requests; the last-risk-score map is mutex-guarded.
type Engine struct {
	data       FinancialDataProvider
	budgets    BudgetProvider
	benchmarks BenchmarkProvider
	detector   *detect.Detector
	narratives *NarrativeEngine

	cfg     *config.InsightsConfig
	riskCfg *config.RiskConfig

	maxLatency time.Duration
	tracer     trace.Tracer
	log        *logger.Logger

	// Metrics
	analysisCount int64
	avgLatencyMs  float64
	latencyMu     sync.RWMutex

	// Most recent risk score per client, for trend classification.
	riskMu     sync.Mutex
	riskLatest map[uuid.UUID]domain.RiskScore
}

// Option customizes engine construction.
type Option func(*Engine)

// WithTracer attaches an OpenTelemetry tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) { e.tracer = tracer }
}

// WithMaxLatency sets the latency budget used for slow-analysis warnings.
func WithMaxLatency(d time.Duration) Option {
	return func(e *Engine) { e.maxLatency = d }
}

// NewEngine creates a new insight engine
func NewEngine(
	data FinancialDataProvider,
	budgets BudgetProvider,
	benchmarks BenchmarkProvider,
	detector *detect.Detector,
	cfg *config.InsightsConfig,
	riskCfg *config.RiskConfig,
	log *logger.Logger,
	opts ...Option,
) *Engine {
	e := &Engine{
		data:       data,
		budgets:    budgets,
		benchmarks: benchmarks,
		detector:   detector,
		narratives: NewNarrativeEngine(),
		cfg:        cfg,
		riskCfg:    riskCfg,
		maxLatency: 500 * time.Millisecond,
		tracer:     noop.NewTracerProvider().Tracer("insight"),
		log:        log.Named("insight_engine"),
		riskLatest: make(map[uuid.UUID]domain.RiskScore),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// analysisInputs holds everything fetched from the external collaborators
// for one run.
type analysisInputs struct {
	records    []domain.FinancialRecord
	budget     map[string]float64
	benchmarks map[string]domain.Benchmark
}

// GenerateInsights runs the requested analysis family (or all of them for
// comprehensive mode) and returns narrated insights ordered by severity.
func (e *Engine) GenerateInsights(ctx context.Context, req domain.InsightRequest) ([]domain.GeneratedInsight, error) {
	ctx, span := e.tracer.Start(ctx, "insight.generate",
		trace.WithAttributes(
			attribute.String("organization_id", req.OrganizationID.String()),
			attribute.String("analysis_type", string(req.AnalysisType)),
		))
	defer span.End()

	start := time.Now()
	e.log.AnalysisStarted(req.OrganizationID.String(), string(req.AnalysisType))

	insights, err := e.generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInsightGeneration, err)
	}

	e.narratives.Apply(insights)

	sort.SliceStable(insights, func(i, j int) bool {
		return insights[i].Severity.Rank() > insights[j].Severity.Rank()
	})

	durationMs := time.Since(start).Milliseconds()
	e.recordLatency(durationMs)
	if durationMs > e.maxLatency.Milliseconds() {
		e.log.LatencyWarning("generate_insights", durationMs, e.maxLatency.Milliseconds())
	}
	e.log.AnalysisCompleted(req.OrganizationID.String(), string(req.AnalysisType), len(insights), durationMs)

	return insights, nil
}

func (e *Engine) generate(ctx context.Context, req domain.InsightRequest) ([]domain.GeneratedInsight, error) {
	inputs, err := e.fetchInputs(ctx, req)
	if err != nil {
		return nil, err
	}

	var insights []domain.GeneratedInsight
	switch req.AnalysisType {
	case domain.AnalysisFinancialHealth:
		insights = financialHealthInsights(AggregateMetrics(inputs.records))
	case domain.AnalysisVariance:
		insights = varianceInsights(inputs.records, inputs.budget, e.cfg.VarianceThresholdPct)
	case domain.AnalysisTrend:
		insights = trendInsights(inputs.records, e.trendConfig())
	case domain.AnalysisAnomalies:
		insights, err = e.anomalyInsights(ctx, inputs.records, inputs.benchmarks)
	case domain.AnalysisComprehensive, "":
		insights, err = e.comprehensive(ctx, inputs)
	default:
		return nil, fmt.Errorf("unknown analysis type %q", req.AnalysisType)
	}
	if err != nil {
		return nil, err
	}

	if len(inputs.benchmarks) > 0 {
		attachBenchmarks(insights, inputs.benchmarks)
	}
	return insights, nil
}

func (e *Engine) comprehensive(ctx context.Context, inputs analysisInputs) ([]domain.GeneratedInsight, error) {
	insights := financialHealthInsights(AggregateMetrics(inputs.records))
	insights = append(insights, varianceInsights(inputs.records, inputs.budget, e.cfg.VarianceThresholdPct)...)
	insights = append(insights, trendInsights(inputs.records, e.trendConfig())...)

	anomalies, err := e.anomalyInsights(ctx, inputs.records, inputs.benchmarks)
	if err != nil {
		return nil, err
	}
	return append(insights, anomalies...), nil
}

// fetchInputs fans out to the external collaborators. This is the engine's
// only suspension point; everything downstream is pure computation.
func (e *Engine) fetchInputs(ctx context.Context, req domain.InsightRequest) (analysisInputs, error) {
	var inputs analysisInputs
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		records, err := e.data.FetchRecords(gctx, req.OrganizationID, req.ClientID, req.Period)
		if err != nil {
			return fmt.Errorf("fetch records: %w", err)
		}
		inputs.records = records
		return nil
	})

	if e.needsBudget(req.AnalysisType) {
		g.Go(func() error {
			budget, err := e.budgets.FetchBudget(gctx, req.OrganizationID, req.Period)
			if err != nil {
				// Budget data is optional; variance analysis degrades
				// to an empty result without it.
				e.log.Warn("budget fetch failed", logger.ErrorField(err))
				return nil
			}
			inputs.budget = budget
			return nil
		})
	}

	if req.IncludeBenchmarks {
		g.Go(func() error {
			industry := req.Industry
			if industry == "" {
				industry = e.cfg.DefaultIndustry
			}
			benchmarks, err := e.benchmarks.FetchBenchmarks(gctx, industry)
			if err != nil {
				e.log.Warn("benchmark fetch failed", logger.ErrorField(err))
				return nil
			}
			inputs.benchmarks = benchmarks
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return analysisInputs{}, err
	}
	return inputs, nil
}

func (e *Engine) needsBudget(t domain.AnalysisType) bool {
	return t == domain.AnalysisVariance || t == domain.AnalysisComprehensive || t == ""
}

func (e *Engine) trendConfig() trendConfig {
	return trendConfig{
		significance:         e.cfg.TrendSignificance,
		categorySignificance: e.cfg.CategorySignificance,
		minCategoryObs:       e.cfg.MinCategoryObservations,
	}
}

// attachBenchmarks populates the Benchmark field on metrics whose name
// appears in the industry table.
func attachBenchmarks(insights []domain.GeneratedInsight, benchmarks map[string]domain.Benchmark) {
	for i := range insights {
		for j := range insights[i].Metrics {
			if b, ok := benchmarks[insights[i].Metrics[j].Name]; ok && insights[i].Metrics[j].Benchmark == nil {
				benchmark := b
				insights[i].Metrics[j].Benchmark = &benchmark
			}
		}
	}
}

// recordLatency keeps an exponential moving average of run latency.
func (e *Engine) recordLatency(durationMs int64) {
	e.latencyMu.Lock()
	defer e.latencyMu.Unlock()

	e.analysisCount++
	e.avgLatencyMs = e.avgLatencyMs*0.9 + float64(durationMs)*0.1
}

// AverageLatency returns the average analysis latency in milliseconds.
func (e *Engine) AverageLatency() float64 {
	e.latencyMu.RLock()
	defer e.latencyMu.RUnlock()
	return e.avgLatencyMs
}

// AnalysisCount returns total insight-generation runs performed.
func (e *Engine) AnalysisCount() int64 {
	e.latencyMu.RLock()
	defer e.latencyMu.RUnlock()
	return e.analysisCount
}
