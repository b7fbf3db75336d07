// Package detect implements the multi-algorithm anomaly detection engine:
// a statistical z-score detector, a distance-based isolation heuristic, a
// declarative rule set, and a facade that runs a chosen subset and
// deduplicates the combined findings.
package detect

import (
	"context"
	"fmt"
	"sort"

	"github.com/advisoros/analytics-service/internal/domain"
	"github.com/advisoros/analytics-service/internal/pkg/logger"
)

// Algorithm registry names.
const (
	AlgorithmStatistical = "statistical"
	AlgorithmML          = "ml"
	AlgorithmRuleBased   = "rule_based"
)

// AnomalyDetector is the capability interface every algorithm implements.
type AnomalyDetector interface {
	Name() string
	Detect(points []domain.TimeSeriesPoint, cfg Config) ([]domain.DetectedAnomaly, error)
}

// Detector is the facade over the algorithm registry. It runs the selected
// detectors in order, concatenates their findings, deduplicates by
// (UTC day, type) keeping the highest severity, and sorts the result by
// severity descending.
type Detector struct {
	registry map[string]AnomalyDetector
	cfg      Config
	log      *logger.Logger
}

// New creates a detector facade with all built-in algorithms registered.
func New(cfg Config, log *logger.Logger) *Detector {
	d := &Detector{
		registry: make(map[string]AnomalyDetector),
		cfg:      cfg,
		log:      log.Named("anomaly_detector"),
	}
	d.register(NewStatisticalDetector(log))
	d.register(NewDistanceDetector(log))
	d.register(NewRuleDetector(log))
	return d
}

func (d *Detector) register(impl AnomalyDetector) {
	d.registry[impl.Name()] = impl
}

// DefaultAlgorithms is the detector subset used when the caller does not
// choose one.
func DefaultAlgorithms() []string {
	return []string{AlgorithmStatistical, AlgorithmRuleBased}
}

// DetectAnomalies runs each selected detector in sequence and returns the
// deduplicated, severity-sorted findings. An empty algorithm list selects
// the defaults.
func (d *Detector) DetectAnomalies(ctx context.Context, data []domain.TimeSeriesPoint, algorithms []string) ([]domain.DetectedAnomaly, error) {
	if len(algorithms) == 0 {
		algorithms = DefaultAlgorithms()
	}

	var combined []domain.DetectedAnomaly
	for _, name := range algorithms {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		impl, ok := d.registry[name]
		if !ok {
			return nil, fmt.Errorf("unknown detection algorithm %q", name)
		}

		anomalies, err := impl.Detect(data, d.cfg)
		if err != nil {
			return nil, fmt.Errorf("detector %s: %w", name, err)
		}
		combined = append(combined, anomalies...)
	}

	return Deduplicate(combined), nil
}

// Config returns the facade's detector configuration.
func (d *Detector) Config() Config {
	return d.cfg
}

// Deduplicate keeps at most one anomaly per (UTC day, type) key: the first
// encountered among those with the highest severity rank. The survivors are
// sorted by severity rank descending, preserving encounter order within
// equal ranks.
func Deduplicate(anomalies []domain.DetectedAnomaly) []domain.DetectedAnomaly {
	best := make(map[string]int, len(anomalies))
	var order []string

	for i, a := range anomalies {
		key := a.DedupKey()
		keep, seen := best[key]
		if !seen {
			best[key] = i
			order = append(order, key)
			continue
		}
		if a.Severity.Rank() > anomalies[keep].Severity.Rank() {
			best[key] = i
		}
	}

	result := make([]domain.DetectedAnomaly, 0, len(order))
	for _, key := range order {
		result = append(result, anomalies[best[key]])
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Severity.Rank() > result[j].Severity.Rank()
	})
	return result
}
