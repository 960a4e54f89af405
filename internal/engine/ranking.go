package engine

import (
	"sort"

	"github.com/yourusername/match-oracle/internal/models"
)

// ScoreStrategy orders predictions for the top-picks view. The weighting is
// pluggable; ConfidenceValueStrategy is the documented default.
type ScoreStrategy interface {
	Name() string
	Score(p *models.Prediction) float64
}

// Confidence label weights used by the default strategy.
var confidenceWeights = map[string]float64{
	models.ConfidenceHigh:   1.0,
	models.ConfidenceMedium: 0.6,
	models.ConfidenceLow:    0.3,
}

// ConfidenceValueStrategy scores a prediction by the best confidence reached
// across its three metric families (outcome, goals, BTTS), the strength of
// its most likely outcome, and any market value edge.
type ConfidenceValueStrategy struct{}

// Name returns the strategy name.
func (ConfidenceValueStrategy) Name() string { return "confidence_value" }

// Score computes the composite ordering key.
func (ConfidenceValueStrategy) Score(p *models.Prediction) float64 {
	outcomeLabel := p.HomeWinConfidence
	if confidenceWeights[p.AwayWinConfidence] > confidenceWeights[outcomeLabel] {
		outcomeLabel = p.AwayWinConfidence
	}
	if confidenceWeights[p.DrawConfidence] > confidenceWeights[outcomeLabel] {
		outcomeLabel = p.DrawConfidence
	}

	best := confidenceWeights[outcomeLabel]
	if w := confidenceWeights[p.Goals.Confidence]; w > best {
		best = w
	}
	if w := confidenceWeights[p.BTTSConfidence]; w > best {
		best = w
	}

	return best + p.PredictedOutcomeP + p.ValueScore
}

// Rank orders predictions by descending strategy score and truncates to
// limit. Ties break on ascending match ID so the ordering is stable across
// calls. The input slice is not mutated.
func Rank(predictions []*models.Prediction, limit int, strategy ScoreStrategy) []*models.Prediction {
	if strategy == nil {
		strategy = ConfidenceValueStrategy{}
	}

	ranked := make([]*models.Prediction, len(predictions))
	copy(ranked, predictions)

	sort.SliceStable(ranked, func(i, j int) bool {
		si, sj := strategy.Score(ranked[i]), strategy.Score(ranked[j])
		if si != sj {
			return si > sj
		}
		return ranked[i].MatchID < ranked[j].MatchID
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
