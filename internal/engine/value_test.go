package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type mapOddsSource map[int]MarketOdds

func (m mapOddsSource) OddsFor(matchID int) (MarketOdds, bool) {
	odds, ok := m[matchID]
	return odds, ok
}

func TestNoOddsScorerAlwaysZero(t *testing.T) {
	assert.Zero(t, NoOddsScorer{}.Score(1, 0.9))
	assert.Zero(t, NoOddsScorer{}.Score(2, 0.1))
}

func TestMarketValueScorer(t *testing.T) {
	source := mapOddsSource{
		// Decimal odds 2.00 imply probability 0.5.
		1: {HomeDecimalOdds: decimal.NewFromFloat(2.00)},
		// Decimal odds 4.00 imply probability 0.25.
		2: {HomeDecimalOdds: decimal.NewFromFloat(4.00)},
	}
	scorer := NewMarketValueScorer(source)

	assert.InDelta(t, 0.1, scorer.Score(1, 0.6), 1e-6, "model 0.6 vs implied 0.5")
	assert.InDelta(t, -0.05, scorer.Score(2, 0.2), 1e-6, "model 0.2 vs implied 0.25")
	assert.Zero(t, scorer.Score(99, 0.7), "no market price means zero value")
}

func TestMarketValueScorerZeroOdds(t *testing.T) {
	scorer := NewMarketValueScorer(mapOddsSource{1: {HomeDecimalOdds: decimal.Zero}})
	assert.Zero(t, scorer.Score(1, 0.5))
}
