package insight

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/advisoros/analytics-service/internal/detect"
	"github.com/advisoros/analytics-service/internal/domain"
)

// neutralComponentScore is used for components whose flag is off.
const neutralComponentScore = 50

// GenerateRiskScore computes the composite 0-100 client risk score from up
// to three component scores, renormalizing the configured weights over the
// enabled components. Trend is classified against the most recent stored
// score for the client.
func (e *Engine) GenerateRiskScore(ctx context.Context, clientID uuid.UUID, opts domain.RiskScoreOptions, window domain.DateRange) (*domain.RiskScore, error) {
	records, err := e.data.FetchRecords(ctx, uuid.Nil, &clientID, window)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch records: %v", ErrInsightGeneration, err)
	}

	components := domain.RiskComponents{
		Financial:  neutralComponentScore,
		Behavioral: neutralComponentScore,
		Market:     neutralComponentScore,
	}
	if opts.IncludeFinancial {
		components.Financial = financialRiskScore(AggregateMetrics(records))
	}
	if opts.IncludeBehavioral {
		score, err := e.behavioralRiskScore(ctx, records)
		if err != nil {
			return nil, fmt.Errorf("%w: behavioral component: %v", ErrInsightGeneration, err)
		}
		components.Behavioral = score
	}
	if opts.IncludeMarket {
		components.Market = e.marketRiskScore(ctx, AggregateMetrics(records))
	}

	overall, factors := e.combineComponents(components, opts)

	score := &domain.RiskScore{
		ClientID:        clientID,
		OverallScore:    overall,
		Components:      components,
		Factors:         factors,
		Trend:           e.classifyRiskTrend(clientID, overall),
		Recommendations: riskRecommendations(overall),
		LastUpdated:     time.Now().UTC(),
	}

	e.riskMu.Lock()
	e.riskLatest[clientID] = *score
	e.riskMu.Unlock()

	e.log.RiskScoreComputed(clientID.String(), overall, string(score.Trend))
	return score, nil
}

// combineComponents applies the configured weights, renormalized to the
// enabled components, and returns the rounded composite plus the ranked
// factor breakdown.
func (e *Engine) combineComponents(c domain.RiskComponents, opts domain.RiskScoreOptions) (int, []domain.RiskFactor) {
	type part struct {
		name    string
		score   int
		weight  float64
		enabled bool
	}
	parts := []part{
		{"financial", c.Financial, e.riskCfg.FinancialWeight, opts.IncludeFinancial},
		{"behavioral", c.Behavioral, e.riskCfg.BehavioralWeight, opts.IncludeBehavioral},
		{"market", c.Market, e.riskCfg.MarketWeight, opts.IncludeMarket},
	}

	var totalWeight float64
	for _, p := range parts {
		if p.enabled {
			totalWeight += p.weight
		}
	}
	if totalWeight == 0 {
		// No component enabled: composite stays at the neutral default.
		return neutralComponentScore, nil
	}

	var weighted float64
	factors := make([]domain.RiskFactor, 0, len(parts))
	for _, p := range parts {
		if !p.enabled {
			continue
		}
		normalized := p.weight / totalWeight
		weighted += float64(p.score) * normalized
		factors = append(factors, domain.RiskFactor{
			Name:        p.name,
			Score:       p.score,
			Weight:      normalized,
			Description: fmt.Sprintf("%s component contributes %.0f%% of the composite", p.name, normalized*100),
		})
	}

	// Rank by contribution, largest first.
	sort.SliceStable(factors, func(i, j int) bool {
		return float64(factors[i].Score)*factors[i].Weight > float64(factors[j].Score)*factors[j].Weight
	})

	overall := int(math.Round(weighted))
	if overall > 100 {
		overall = 100
	}
	if overall < 0 {
		overall = 0
	}
	return overall, factors
}

// financialRiskScore grades the aggregate metrics onto 0-100. Bands are
// design constants, not learned.
func financialRiskScore(m FinancialMetrics) int {
	score := 30 // base for a client with clean financials

	if m.NetIncome < 0 {
		score += 30
	} else if m.TotalRevenue > 0 && m.GrossMargin < 0.05 {
		score += 15
	}
	if m.CurrentRatio > 0 && m.CurrentRatio < 1.0 {
		score += 20
	} else if m.CurrentRatio > 0 && m.CurrentRatio < 1.5 {
		score += 10
	}
	if m.DebtToEquity > 3.0 {
		score += 20
	} else if m.DebtToEquity > 2.0 {
		score += 10
	}

	return clampScore(score)
}

// behavioralRiskScore grades the client from anomalous activity in the
// window: each finding adds points scaled by severity.
func (e *Engine) behavioralRiskScore(ctx context.Context, records []domain.FinancialRecord) (int, error) {
	anomalies, err := e.detector.DetectAnomalies(ctx, recordSeries(records), detect.DefaultAlgorithms())
	if err != nil {
		return 0, err
	}

	score := 30
	for _, a := range anomalies {
		switch a.Severity {
		case domain.SeverityCritical:
			score += 15
		case domain.SeverityHigh:
			score += 10
		case domain.SeverityMedium:
			score += 5
		default:
			score += 2
		}
	}
	return clampScore(score), nil
}

// marketRiskScore grades how far the client sits from its industry
// benchmarks. Without a usable benchmark table the component stays
// neutral.
func (e *Engine) marketRiskScore(ctx context.Context, m FinancialMetrics) int {
	benchmarks, err := e.benchmarks.FetchBenchmarks(ctx, e.cfg.DefaultIndustry)
	if err != nil || len(benchmarks) == 0 {
		return neutralComponentScore
	}

	benchmark, ok := benchmarks["Gross Margin"]
	if !ok || benchmark.Value == 0 {
		return neutralComponentScore
	}

	deviationPct := (m.GrossMargin - benchmark.Value) / benchmark.Value * 100
	score := 40
	switch {
	case deviationPct < -50:
		score += 40
	case deviationPct < -25:
		score += 25
	case deviationPct < 0:
		score += 10
	}
	return clampScore(score)
}

// classifyRiskTrend compares against the client's most recent stored score.
// Only the latest score is retained per client.
func (e *Engine) classifyRiskTrend(clientID uuid.UUID, overall int) domain.RiskTrend {
	e.riskMu.Lock()
	defer e.riskMu.Unlock()

	last, ok := e.riskLatest[clientID]
	if !ok {
		return domain.RiskTrendStable
	}

	delta := overall - last.OverallScore
	switch {
	case delta >= e.riskCfg.TrendEpsilon:
		return domain.RiskTrendDeteriorating
	case delta <= -e.riskCfg.TrendEpsilon:
		return domain.RiskTrendImproving
	default:
		return domain.RiskTrendStable
	}
}

// riskRecommendations scales the language with the composite score.
func riskRecommendations(overall int) []string {
	switch {
	case overall > 70:
		return []string{
			"Schedule an urgent advisory session to address the highest-risk areas",
			"Put a mitigation plan in place before the next reporting cycle",
		}
	case overall > 50:
		return []string{
			"Increase monitoring frequency for this client",
			"Flag the top contributing factors for review at the next check-in",
		}
	default:
		return []string{
			"Continue routine quarterly reviews",
		}
	}
}

func clampScore(score int) int {
	if score > 100 {
		return 100
	}
	if score < 0 {
		return 0
	}
	return score
}
