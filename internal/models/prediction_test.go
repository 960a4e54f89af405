package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBestOutcome(t *testing.T) {
	cases := []struct {
		name             string
		home, draw, away float64
		expected         string
		expectedP        float64
	}{
		{"home strongest", 0.5, 0.3, 0.2, "Home Win", 0.5},
		{"draw strongest", 0.2, 0.5, 0.3, "Draw", 0.5},
		{"away strongest", 0.2, 0.3, 0.5, "Away Win", 0.5},
		{"three-way tie resolves home", 0.333, 0.333, 0.333, "Home Win", 0.333},
		{"home-draw tie resolves home", 0.4, 0.4, 0.2, "Home Win", 0.4},
		{"draw-away tie resolves draw", 0.2, 0.4, 0.4, "Draw", 0.4},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &Prediction{
				HomeWinProbability: tc.home,
				DrawProbability:    tc.draw,
				AwayWinProbability: tc.away,
			}
			outcome, prob := p.BestOutcome()
			assert.Equal(t, tc.expected, outcome)
			assert.InDelta(t, tc.expectedP, prob, 1e-9)
		})
	}
}
