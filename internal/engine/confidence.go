package engine

import "github.com/yourusername/match-oracle/internal/models"

// Confidence bucket thresholds. Draws get looser bounds because a draw
// rarely clears 50% even in evenly matched fixtures.
const (
	outcomeHighThreshold   = 0.60
	outcomeMediumThreshold = 0.45
	drawHighThreshold      = 0.40
	drawMediumThreshold    = 0.30
	goalsHighThreshold     = 0.75
	goalsMediumThreshold   = 0.60
)

// OutcomeConfidence buckets a home or away win probability.
func OutcomeConfidence(probability float64) string {
	return bucket(probability, outcomeHighThreshold, outcomeMediumThreshold)
}

// DrawConfidence buckets a draw probability.
func DrawConfidence(probability float64) string {
	return bucket(probability, drawHighThreshold, drawMediumThreshold)
}

// GoalsConfidence buckets an Over/Under or BTTS probability.
func GoalsConfidence(probability float64) string {
	return bucket(probability, goalsHighThreshold, goalsMediumThreshold)
}

func bucket(probability, high, medium float64) string {
	switch {
	case probability >= high:
		return models.ConfidenceHigh
	case probability >= medium:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}
