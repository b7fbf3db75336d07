package domain

import (
	"time"

	"github.com/google/uuid"
)

// RiskTrend describes how a client's composite risk is moving against the
// previous assessment.
type RiskTrend string

const (
	RiskTrendImproving     RiskTrend = "improving"
	RiskTrendStable        RiskTrend = "stable"
	RiskTrendDeteriorating RiskTrend = "deteriorating"
)

// RiskComponents are the 0-100 sub-scores feeding the composite.
type RiskComponents struct {
	Financial  int `json:"financial"`
	Behavioral int `json:"behavioral"`
	Market     int `json:"market"`
}

// RiskFactor is one ranked contributor to the composite score.
type RiskFactor struct {
	Name        string  `json:"name"`
	Score       int     `json:"score"`
	Weight      float64 `json:"weight"`
	Description string  `json:"description,omitempty"`
}

// RiskScore is the 0-100 composite risk assessment for a client.
type RiskScore struct {
	ClientID        uuid.UUID      `json:"client_id"`
	OverallScore    int            `json:"overall_score"` // 0-100
	Components      RiskComponents `json:"components"`
	Factors         []RiskFactor   `json:"factors"`
	Trend           RiskTrend      `json:"trend"`
	Recommendations []string       `json:"recommendations,omitempty"`
	LastUpdated     time.Time      `json:"last_updated"`
}

// RiskScoreOptions selects which component scores are computed. Disabled
// components contribute a neutral default and their weight is redistributed
// across the enabled ones.
type RiskScoreOptions struct {
	IncludeFinancial  bool `json:"include_financial"`
	IncludeBehavioral bool `json:"include_behavioral"`
	IncludeMarket     bool `json:"include_market"`
}

// IsHighRisk reports whether the score warrants urgent mitigation.
func (s RiskScore) IsHighRisk() bool {
	return s.OverallScore > 70
}

// NeedsMonitoring reports whether the score warrants closer monitoring.
func (s RiskScore) NeedsMonitoring() bool {
	return s.OverallScore > 50
}
