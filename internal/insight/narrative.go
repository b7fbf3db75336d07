package insight

import (
	"fmt"
	"strings"

	"github.com/advisoros/analytics-service/internal/domain"
)

// NarrativeEngine turns insights into client-facing sentences by
// substituting {placeholder} tokens in a type-keyed template registry.
// Templates are loaded once at construction and never mutated.
type NarrativeEngine struct {
	templates map[domain.InsightType]string
}

// NewNarrativeEngine builds the engine with the default template set.
func NewNarrativeEngine() *NarrativeEngine {
	return &NarrativeEngine{templates: defaultTemplates()}
}

func defaultTemplates() map[domain.InsightType]string {
	return map[domain.InsightType]string{
		domain.InsightTypeCashFlow:      "Cash flow review: {description}. This finding is rated {severity}.",
		domain.InsightTypeProfitability: "Profitability check: {description}. This finding is rated {severity}.",
		domain.InsightTypeLiquidity:     "Liquidity check: {description}. This finding is rated {severity}.",
		domain.InsightTypeDebt:          "Leverage review: {description}. This finding is rated {severity}.",
		domain.InsightTypeVariance:      "Budget comparison: {description}.",
		domain.InsightTypeTrend:         "Trend analysis: {description}.",
		domain.InsightTypeAnomaly:       "Unusual activity: {description}. Confidence in this finding is {confidence}.",
		domain.InsightTypeBenchmark:     "Industry comparison: {description}.",
	}
}

// Narrate produces the narrative string for one insight. A missing
// template falls back to a generic sentence built from the description.
func (n *NarrativeEngine) Narrate(insight domain.GeneratedInsight) string {
	template, ok := n.templates[insight.Type]
	if !ok {
		return fmt.Sprintf("Analysis finding: %s.", insight.Description)
	}

	replacer := strings.NewReplacer(
		"{title}", insight.Title,
		"{description}", insight.Description,
		"{severity}", string(insight.Severity),
		"{confidence}", fmt.Sprintf("%.0f%%", insight.Confidence*100),
	)
	return replacer.Replace(template)
}

// Apply fills the Narrative field on every insight in place.
func (n *NarrativeEngine) Apply(insights []domain.GeneratedInsight) {
	for i := range insights {
		insights[i].Narrative = n.Narrate(insights[i])
	}
}
