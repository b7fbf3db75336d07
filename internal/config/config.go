package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the analytics service
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Detection DetectionConfig `mapstructure:"detection"`
	KPI       KPIConfig       `mapstructure:"kpi"`
	Insights  InsightsConfig  `mapstructure:"insights"`
	Risk      RiskConfig      `mapstructure:"risk"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Security  SecurityConfig  `mapstructure:"security"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxRequestSize  int64         `mapstructure:"max_request_size"`
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	FetchTimeout    time.Duration `mapstructure:"fetch_timeout"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	Password          string        `mapstructure:"password"`
	DB                int           `mapstructure:"db"`
	PoolSize          int           `mapstructure:"pool_size"`
	DialTimeout       time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	BenchmarkCacheTTL time.Duration `mapstructure:"benchmark_cache_ttl"`
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Brokers        []string `mapstructure:"brokers"`
	AlertsTopic    string   `mapstructure:"alerts_topic"`
	AnomaliesTopic string   `mapstructure:"anomalies_topic"`
}

// DetectionConfig holds anomaly detection configuration
type DetectionConfig struct {
	Sensitivity         string        `mapstructure:"sensitivity"` // low, medium, high
	LookbackDays        int           `mapstructure:"lookback_days"`
	MinDataPoints       int           `mapstructure:"min_data_points"`
	ThresholdMultiplier float64       `mapstructure:"threshold_multiplier"`
	MaxAnalysisLatency  time.Duration `mapstructure:"max_analysis_latency"`
}

// KPIConfig holds KPI analyzer configuration
type KPIConfig struct {
	HistoryCap         int     `mapstructure:"history_cap"`
	StableSlopeEpsilon float64 `mapstructure:"stable_slope_epsilon"`
	FlatVariancePct    float64 `mapstructure:"flat_variance_pct"`
}

// InsightsConfig holds insight engine configuration
type InsightsConfig struct {
	VarianceThresholdPct    float64 `mapstructure:"variance_threshold_pct"`
	TrendSignificance       float64 `mapstructure:"trend_significance"`
	CategorySignificance    float64 `mapstructure:"category_significance"`
	MinCategoryObservations int     `mapstructure:"min_category_observations"`
	DefaultIndustry         string  `mapstructure:"default_industry"`
}

// RiskConfig holds composite risk scoring configuration
type RiskConfig struct {
	FinancialWeight  float64 `mapstructure:"financial_weight"`
	BehavioralWeight float64 `mapstructure:"behavioral_weight"`
	MarketWeight     float64 `mapstructure:"market_weight"`
	TrendEpsilon     int     `mapstructure:"trend_epsilon"`
}

// TelemetryConfig holds observability configuration
type TelemetryConfig struct {
	ServiceName   string  `mapstructure:"service_name"`
	Environment   string  `mapstructure:"environment"`
	OTLPEndpoint  string  `mapstructure:"otlp_endpoint"`
	SamplingRatio float64 `mapstructure:"sampling_ratio"`
}

// SecurityConfig holds security configuration
type SecurityConfig struct {
	AllowedOrigins     []string `mapstructure:"allowed_origins"`
	RateLimitPerMinute int      `mapstructure:"rate_limit_per_minute"`
}

// Load loads configuration from environment and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.SetEnvPrefix("ANALYTICS_SERVICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/etc/analytics-service")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// Config file not found, use defaults + env
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 8086)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.max_request_size", 1048576) // 1MB

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.database", "advisoros_analytics")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.fetch_timeout", "5s")

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 50)
	v.SetDefault("redis.dial_timeout", "5s")
	v.SetDefault("redis.read_timeout", "1s")
	v.SetDefault("redis.write_timeout", "1s")
	v.SetDefault("redis.benchmark_cache_ttl", "24h")

	// Kafka defaults
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.alerts_topic", "advisoros.analytics.alerts")
	v.SetDefault("kafka.anomalies_topic", "advisoros.analytics.anomalies")

	// Detection defaults
	v.SetDefault("detection.sensitivity", "medium")
	v.SetDefault("detection.lookback_days", 90)
	v.SetDefault("detection.min_data_points", 30)
	v.SetDefault("detection.threshold_multiplier", 2.5)
	v.SetDefault("detection.max_analysis_latency", "500ms")

	// KPI defaults
	v.SetDefault("kpi.history_cap", 24)
	v.SetDefault("kpi.stable_slope_epsilon", 0.1)
	v.SetDefault("kpi.flat_variance_pct", 2.0)

	// Insights defaults
	v.SetDefault("insights.variance_threshold_pct", 10.0)
	v.SetDefault("insights.trend_significance", 0.7)
	v.SetDefault("insights.category_significance", 0.8)
	v.SetDefault("insights.min_category_observations", 5)
	v.SetDefault("insights.default_industry", "professional_services")

	// Risk defaults
	v.SetDefault("risk.financial_weight", 0.5)
	v.SetDefault("risk.behavioral_weight", 0.3)
	v.SetDefault("risk.market_weight", 0.2)
	v.SetDefault("risk.trend_epsilon", 5)

	// Telemetry defaults
	v.SetDefault("telemetry.service_name", "analytics-service")
	v.SetDefault("telemetry.environment", "development")
	v.SetDefault("telemetry.otlp_endpoint", "localhost:4317")
	v.SetDefault("telemetry.sampling_ratio", 0.1)

	// Security defaults
	v.SetDefault("security.allowed_origins", []string{"*"})
	v.SetDefault("security.rate_limit_per_minute", 1000)
}
