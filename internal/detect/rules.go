package detect

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/advisoros/analytics-service/internal/domain"
	"github.com/advisoros/analytics-service/internal/pkg/logger"
)

// Rule is one declarative detection rule. Rules are independent: a point
// may trigger several rules and each produces its own anomaly.
// Deduplication happens later in the facade.
type Rule struct {
	ID        string
	Name      string
	Condition func(points []domain.TimeSeriesPoint, index int) bool
	Create    func(points []domain.TimeSeriesPoint, index int) domain.DetectedAnomaly
}

// RuleDetector evaluates an ordered set of declarative rules against every
// point in the series.
type RuleDetector struct {
	rules []Rule
	log   *logger.Logger
}

// NewRuleDetector creates a rule detector with the built-in rule set.
func NewRuleDetector(log *logger.Logger) *RuleDetector {
	return &RuleDetector{
		rules: builtinRules(),
		log:   log.Named("rule_detector"),
	}
}

// Name returns the registry name of this detector
func (d *RuleDetector) Name() string {
	return AlgorithmRuleBased
}

// Detect evaluates every rule against every point.
func (d *RuleDetector) Detect(points []domain.TimeSeriesPoint, _ Config) ([]domain.DetectedAnomaly, error) {
	var anomalies []domain.DetectedAnomaly
	for i := range points {
		for _, rule := range d.rules {
			if !rule.Condition(points, i) {
				continue
			}
			anomaly := rule.Create(points, i)
			anomalies = append(anomalies, anomaly)

			d.log.AnomalyDetected(AlgorithmRuleBased, string(anomaly.Type), string(anomaly.Severity), anomaly.Confidence)
		}
	}
	return anomalies, nil
}

// Rules returns the active rule set, primarily for introspection.
func (d *RuleDetector) Rules() []Rule {
	return d.rules
}

func builtinRules() []Rule {
	return []Rule{
		{
			ID:   "sudden_spike",
			Name: "Sudden spike",
			Condition: func(points []domain.TimeSeriesPoint, i int) bool {
				if i == 0 {
					return false
				}
				prev := points[i-1].Value
				if prev == 0 {
					return false
				}
				return points[i].Value/prev > 3
			},
			Create: func(points []domain.TimeSeriesPoint, i int) domain.DetectedAnomaly {
				prev := points[i-1].Value
				ratio := points[i].Value / prev
				return domain.DetectedAnomaly{
					ID:               uuid.New(),
					Type:             domain.AnomalyTypeRevenue,
					Severity:         domain.SeverityHigh,
					Value:            points[i].Value,
					ExpectedValue:    prev,
					Deviation:        points[i].Value - prev,
					DeviationPercent: (ratio - 1) * 100,
					Confidence:       0.9,
					Timestamp:        points[i].Timestamp,
					Description: fmt.Sprintf("Value jumped %.1fx over the previous observation (%.2f -> %.2f)",
						ratio, prev, points[i].Value),
					Context: domain.AnomalyContext{
						Algorithm: AlgorithmRuleBased,
						RuleID:    "sudden_spike",
					},
					Recommendations: []string{
						"Confirm the spike maps to a real event such as a large invoice",
						"Check for duplicate or misclassified entries",
					},
				}
			},
		},
		{
			ID:   "consecutive_zeros",
			Name: "Consecutive zeros",
			Condition: func(points []domain.TimeSeriesPoint, i int) bool {
				if i < 2 {
					return false
				}
				return points[i].Value == 0 && points[i-1].Value == 0 && points[i-2].Value == 0
			},
			Create: func(points []domain.TimeSeriesPoint, i int) domain.DetectedAnomaly {
				return domain.DetectedAnomaly{
					ID:               uuid.New(),
					Type:             domain.AnomalyTypeTransaction,
					Severity:         domain.SeverityMedium,
					Value:            0,
					ExpectedValue:    0,
					Deviation:        0,
					DeviationPercent: 0,
					Confidence:       0.85,
					Timestamp:        points[i].Timestamp,
					Description:      "Three consecutive zero-value observations",
					Context: domain.AnomalyContext{
						Algorithm: AlgorithmRuleBased,
						RuleID:    "consecutive_zeros",
					},
					Recommendations: []string{
						"Verify the data feed is still delivering records",
						"Check whether business activity genuinely stopped",
					},
				}
			},
		},
	}
}
