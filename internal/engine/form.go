// Package engine derives match-outcome probabilities from cached team form
// and head-to-head snapshots.
package engine

import (
	"hash/fnv"
	"math"
	"math/rand"
	"sort"
	"strconv"
	"time"

	"github.com/yourusername/match-oracle/internal/models"
)

// Form computation bounds. At most MaxFormMatches finished matches inside the
// lookback window contribute to a team's rates.
const (
	MaxFormMatches   = 15
	FormLookbackDays = 90
)

// Fallback stat ranges. Values mirror the plausible spread observed in real
// league data: form in points-per-game, rates in goals-per-game.
const (
	fallbackFormMin  = 0.8
	fallbackFormMax  = 2.5
	fallbackGoalsMin = 0.6
	fallbackGoalsMax = 2.2
)

// FormEstimator computes TeamStats from recent results.
type FormEstimator struct {
	maxMatches   int
	lookbackDays int
	now          func() time.Time
}

// NewFormEstimator creates an estimator with the given bounds. Non-positive
// values fall back to the package defaults.
func NewFormEstimator(maxMatches, lookbackDays int) *FormEstimator {
	if maxMatches <= 0 {
		maxMatches = MaxFormMatches
	}
	if lookbackDays <= 0 {
		lookbackDays = FormLookbackDays
	}
	return &FormEstimator{
		maxMatches:   maxMatches,
		lookbackDays: lookbackDays,
		now:          time.Now,
	}
}

// NewFormEstimatorWithClock creates an estimator with an injected clock for tests.
func NewFormEstimatorWithClock(maxMatches, lookbackDays int, now func() time.Time) *FormEstimator {
	e := NewFormEstimator(maxMatches, lookbackDays)
	e.now = now
	return e
}

// ComputeForm derives a team's points-per-game and goal rates from the given
// matches. Matches outside the lookback window, not finished, or not
// involving the team are ignored; the most recent qualifying matches win.
// With zero qualifying matches a deterministic fallback is returned.
func (e *FormEstimator) ComputeForm(teamID int, matches []*models.Match) *models.TeamStats {
	cutoff := e.now().UTC().AddDate(0, 0, -e.lookbackDays)

	qualifying := make([]*models.Match, 0, len(matches))
	for _, m := range matches {
		if m.Status != models.StatusFinished || m.UTCDate.Before(cutoff) {
			continue
		}
		if m.HomeTeam.ID != teamID && m.AwayTeam.ID != teamID {
			continue
		}
		qualifying = append(qualifying, m)
	}

	sort.Slice(qualifying, func(i, j int) bool {
		return qualifying[i].UTCDate.After(qualifying[j].UTCDate)
	})
	if len(qualifying) > e.maxMatches {
		qualifying = qualifying[:e.maxMatches]
	}

	if len(qualifying) == 0 {
		return FallbackStats(teamID, e.now().UTC())
	}

	var points, goalsFor, goalsAgainst int
	games := 0
	for _, m := range qualifying {
		scored, conceded, ok := m.GoalsFor(teamID)
		if !ok {
			continue
		}
		games++
		goalsFor += scored
		goalsAgainst += conceded
		switch {
		case scored > conceded:
			points += 3
		case scored == conceded:
			points++
		}
	}

	if games == 0 {
		return FallbackStats(teamID, e.now().UTC())
	}

	return &models.TeamStats{
		TeamID:       teamID,
		Form:         round2(float64(points) / float64(games)),
		GoalsForRate: round2(float64(goalsFor) / float64(games)),
		GoalsAgainst: round2(float64(goalsAgainst) / float64(games)),
		GamesPlayed:  games,
		IsFallback:   false,
		ComputedAt:   e.now().UTC(),
	}
}

// FallbackStats generates synthetic stats for a team with no recent results.
// The values are a pure function of the team ID: an FNV-1a hash seeds a fixed
// PRNG, so repeated calls for the same team are byte-for-byte identical. The
// IsFallback flag is always set; consumers use it to pick the prediction
// method.
func FallbackStats(teamID int, computedAt time.Time) *models.TeamStats {
	h := fnv.New64a()
	h.Write([]byte(strconv.Itoa(teamID)))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	return &models.TeamStats{
		TeamID:       teamID,
		Form:         round2(fallbackFormMin + rng.Float64()*(fallbackFormMax-fallbackFormMin)),
		GoalsForRate: round2(fallbackGoalsMin + rng.Float64()*(fallbackGoalsMax-fallbackGoalsMin)),
		GoalsAgainst: round2(fallbackGoalsMin + rng.Float64()*(fallbackGoalsMax-fallbackGoalsMin)),
		GamesPlayed:  0,
		IsFallback:   true,
		ComputedAt:   computedAt,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
