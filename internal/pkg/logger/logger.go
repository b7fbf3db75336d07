package logger

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger with analytics-specific functionality
type Logger struct {
	*zap.Logger
	serviceName string
}

// ContextKey for request context values
type ContextKey string

const (
	RequestIDKey      ContextKey = "request_id"
	OrganizationIDKey ContextKey = "organization_id"
	ClientIDKey       ContextKey = "client_id"
	TraceIDKey        ContextKey = "trace_id"
)

// New creates a new logger instance
func New(serviceName, environment string, debug bool) (*Logger, error) {
	var config zap.Config

	if environment == "production" {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if debug {
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	// Add service metadata
	config.InitialFields = map[string]interface{}{
		"service": serviceName,
		"env":     environment,
		"pid":     os.Getpid(),
	}

	zapLogger, err := config.Build(
		zap.AddCaller(),
		zap.AddStacktrace(zap.ErrorLevel),
	)
	if err != nil {
		return nil, err
	}

	return &Logger{
		Logger:      zapLogger,
		serviceName: serviceName,
	}, nil
}

// NewNop returns a logger that discards everything; used by tests.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// Named returns a named sub-logger
func (l *Logger) Named(name string) *Logger {
	return &Logger{
		Logger:      l.Logger.Named(name),
		serviceName: l.serviceName,
	}
}

// WithContext returns a logger with context values
func (l *Logger) WithContext(ctx context.Context) *Logger {
	fields := []zap.Field{}

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}
	if orgID, ok := ctx.Value(OrganizationIDKey).(string); ok && orgID != "" {
		fields = append(fields, zap.String("organization_id", orgID))
	}
	if clientID, ok := ctx.Value(ClientIDKey).(string); ok && clientID != "" {
		fields = append(fields, zap.String("client_id", clientID))
	}
	if traceID, ok := ctx.Value(TraceIDKey).(string); ok && traceID != "" {
		fields = append(fields, zap.String("trace_id", traceID))
	}

	return &Logger{
		Logger:      l.With(fields...),
		serviceName: l.serviceName,
	}
}

// WithAnalysis returns a logger with analysis run context
func (l *Logger) WithAnalysis(orgID, analysisType string) *Logger {
	return &Logger{
		Logger: l.With(
			zap.String("organization_id", orgID),
			zap.String("analysis_type", analysisType),
		),
		serviceName: l.serviceName,
	}
}

// AnalysisStarted logs the start of an insight-generation run
func (l *Logger) AnalysisStarted(orgID, analysisType string) {
	l.Info("analysis started",
		zap.String("organization_id", orgID),
		zap.String("analysis_type", analysisType),
	)
}

// AnalysisCompleted logs the completion of an insight-generation run
func (l *Logger) AnalysisCompleted(orgID, analysisType string, insightCount int, durationMs int64) {
	l.Info("analysis completed",
		zap.String("organization_id", orgID),
		zap.String("analysis_type", analysisType),
		zap.Int("insight_count", insightCount),
		zap.Int64("duration_ms", durationMs),
	)
}

// AnomalyDetected logs a detected anomaly
func (l *Logger) AnomalyDetected(algorithm, anomalyType, severity string, confidence float64) {
	l.Warn("anomaly detected",
		zap.String("algorithm", algorithm),
		zap.String("anomaly_type", anomalyType),
		zap.String("severity", severity),
		zap.Float64("confidence", confidence),
	)
}

// KPICalculated logs a KPI calculation
func (l *Logger) KPICalculated(kpiID string, value float64, status string) {
	l.Info("kpi calculated",
		zap.String("kpi_id", kpiID),
		zap.Float64("value", value),
		zap.String("status", status),
	)
}

// AlertCreated logs KPI alert creation
func (l *Logger) AlertCreated(kpiID, status string, value float64) {
	l.Warn("kpi alert created",
		zap.String("kpi_id", kpiID),
		zap.String("status", status),
		zap.Float64("value", value),
	)
}

// RiskScoreComputed logs a composite risk score calculation
func (l *Logger) RiskScoreComputed(clientID string, score int, trend string) {
	l.Info("risk score computed",
		zap.String("client_id", clientID),
		zap.Int("overall_score", score),
		zap.String("trend", trend),
	)
}

// LatencyWarning logs when an analysis stage exceeds expected latency
func (l *Logger) LatencyWarning(stage string, durationMs, thresholdMs int64) {
	l.Warn("latency threshold exceeded",
		zap.String("stage", stage),
		zap.Int64("duration_ms", durationMs),
		zap.Int64("threshold_ms", thresholdMs),
	)
}

// Helper field functions

// ErrorField creates an error field
func ErrorField(err error) zap.Field {
	return zap.Error(err)
}

// DurationField creates a duration field
func DurationField(name string, d time.Duration) zap.Field {
	return zap.Duration(name, d)
}

// StringField creates a string field
func StringField(key, value string) zap.Field {
	return zap.String(key, value)
}

// IntField creates an int field
func IntField(key string, value int) zap.Field {
	return zap.Int(key, value)
}

// Float64Field creates a float64 field
func Float64Field(key string, value float64) zap.Field {
	return zap.Float64(key, value)
}
