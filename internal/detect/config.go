package detect

// Sensitivity controls how aggressively the detectors flag points.
type Sensitivity string

const (
	SensitivityLow    Sensitivity = "low"
	SensitivityMedium Sensitivity = "medium"
	SensitivityHigh   Sensitivity = "high"
)

// Config holds the shared detector configuration.
type Config struct {
	Sensitivity         Sensitivity `json:"sensitivity"`
	LookbackDays        int         `json:"lookback_days"`
	MinDataPoints       int         `json:"min_data_points"`
	ThresholdMultiplier float64     `json:"threshold_multiplier"`
}

// DefaultConfig returns the stock detector configuration.
func DefaultConfig() Config {
	return Config{
		Sensitivity:         SensitivityMedium,
		LookbackDays:        90,
		MinDataPoints:       30,
		ThresholdMultiplier: 2.5,
	}
}

// zScoreScale tightens or relaxes the z-score threshold per sensitivity.
// Higher sensitivity lowers the effective cutoff so borderline deviations
// still surface.
func (s Sensitivity) zScoreScale() float64 {
	switch s {
	case SensitivityLow:
		return 1.0
	case SensitivityHigh:
		return 0.7
	default:
		return 0.85
	}
}

// isolationThreshold is the normalized-score cutoff for the distance
// detector.
func (s Sensitivity) isolationThreshold() float64 {
	switch s {
	case SensitivityLow:
		return 0.7
	case SensitivityHigh:
		return 0.5
	default:
		return 0.6
	}
}

// normalized returns a valid sensitivity, defaulting to medium.
func (s Sensitivity) normalized() Sensitivity {
	switch s {
	case SensitivityLow, SensitivityMedium, SensitivityHigh:
		return s
	default:
		return SensitivityMedium
	}
}
