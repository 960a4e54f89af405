package engine

import (
	"github.com/shopspring/decimal"
)

// MarketOdds carries decimal market odds for one match when a bookmaker feed
// is configured.
type MarketOdds struct {
	HomeDecimalOdds decimal.Decimal
}

// OddsSource supplies market odds per match. Returns ok=false when no market
// data exists for the match.
type OddsSource interface {
	OddsFor(matchID int) (MarketOdds, bool)
}

// ValueScorer computes the value score attached to a prediction: the edge of
// the model's home-win probability over the market-implied probability.
type ValueScorer interface {
	Name() string
	Score(matchID int, homeWinProbability float64) float64
}

// NoOddsScorer is the default scorer when no market feed is wired. Every
// prediction gets a zero value score.
type NoOddsScorer struct{}

// Name returns the scorer name.
func (NoOddsScorer) Name() string { return "no_odds" }

// Score always returns zero.
func (NoOddsScorer) Score(int, float64) float64 { return 0 }

// MarketValueScorer derives value from decimal market odds. The implied
// probability is 1/odds computed in decimal arithmetic to avoid float drift
// on long-odds prices.
type MarketValueScorer struct {
	source OddsSource
}

// NewMarketValueScorer creates a scorer over the given odds source.
func NewMarketValueScorer(source OddsSource) *MarketValueScorer {
	return &MarketValueScorer{source: source}
}

// Name returns the scorer name.
func (s *MarketValueScorer) Name() string { return "market_odds" }

// Score returns model probability minus market-implied probability, or zero
// when the market has no price for the match.
func (s *MarketValueScorer) Score(matchID int, homeWinProbability float64) float64 {
	odds, ok := s.source.OddsFor(matchID)
	if !ok || odds.HomeDecimalOdds.IsZero() {
		return 0
	}
	implied := decimal.NewFromInt(1).DivRound(odds.HomeDecimalOdds, 6)
	return homeWinProbability - implied.InexactFloat64()
}
