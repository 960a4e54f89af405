package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/match-oracle/internal/models"
)

func intp(v int) *int { return &v }

func finishedMatch(id, homeID, awayID, homeGoals, awayGoals int, date time.Time) *models.Match {
	return &models.Match{
		ID:       id,
		UTCDate:  date,
		Status:   models.StatusFinished,
		HomeTeam: models.TeamRef{ID: homeID},
		AwayTeam: models.TeamRef{ID: awayID},
		Score: &models.Score{
			FullTime: models.FullTimeScore{Home: intp(homeGoals), Away: intp(awayGoals)},
		},
	}
}

func TestComputeFormPointsAndRates(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	estimator := NewFormEstimatorWithClock(15, 90, func() time.Time { return now })

	// Win 3-1 home, draw 0-0 away, loss 0-2 home.
	matches := []*models.Match{
		finishedMatch(1, 10, 20, 3, 1, now.AddDate(0, 0, -3)),
		finishedMatch(2, 30, 10, 0, 0, now.AddDate(0, 0, -10)),
		finishedMatch(3, 10, 40, 0, 2, now.AddDate(0, 0, -20)),
	}

	stats := estimator.ComputeForm(10, matches)

	assert.False(t, stats.IsFallback)
	assert.Equal(t, 3, stats.GamesPlayed)
	assert.InDelta(t, 1.33, stats.Form, 0.001, "4 points over 3 games")
	assert.InDelta(t, 1.0, stats.GoalsForRate, 0.001)
	assert.InDelta(t, 1.0, stats.GoalsAgainst, 0.001)
}

func TestComputeFormIgnoresOutOfScopeMatches(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	estimator := NewFormEstimatorWithClock(15, 90, func() time.Time { return now })

	outsideWindow := finishedMatch(1, 10, 20, 5, 0, now.AddDate(0, 0, -120))
	wrongTeam := finishedMatch(2, 30, 40, 2, 2, now.AddDate(0, 0, -5))
	notFinished := finishedMatch(3, 10, 20, 1, 0, now.AddDate(0, 0, -5))
	notFinished.Status = models.StatusScheduled

	stats := estimator.ComputeForm(10, []*models.Match{outsideWindow, wrongTeam, notFinished})

	assert.True(t, stats.IsFallback, "no qualifying matches means fallback stats")
	assert.Equal(t, 0, stats.GamesPlayed)
}

func TestComputeFormCapsAtMaxMatches(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	estimator := NewFormEstimatorWithClock(2, 90, func() time.Time { return now })

	// Two recent wins, one older loss. The cap keeps only the wins.
	matches := []*models.Match{
		finishedMatch(1, 10, 20, 1, 0, now.AddDate(0, 0, -1)),
		finishedMatch(2, 10, 30, 2, 0, now.AddDate(0, 0, -2)),
		finishedMatch(3, 40, 10, 3, 0, now.AddDate(0, 0, -30)),
	}

	stats := estimator.ComputeForm(10, matches)

	require.Equal(t, 2, stats.GamesPlayed)
	assert.InDelta(t, 3.0, stats.Form, 0.001, "both counted matches are wins")
	assert.InDelta(t, 0.0, stats.GoalsAgainst, 0.001)
}

func TestFallbackStatsDeterministic(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	first := FallbackStats(12345, now)
	second := FallbackStats(12345, now)
	other := FallbackStats(54321, now)

	assert.Equal(t, first, second, "same team ID must yield identical stats")
	assert.NotEqual(t, first.Form, other.Form, "different team IDs should diverge")
	assert.True(t, first.IsFallback)
}

func TestFallbackStatsWithinDocumentedRanges(t *testing.T) {
	now := time.Now().UTC()
	for _, teamID := range []int{1, 7, 42, 9999, 123456} {
		stats := FallbackStats(teamID, now)
		assert.GreaterOrEqual(t, stats.Form, 0.8)
		assert.LessOrEqual(t, stats.Form, 2.5)
		assert.GreaterOrEqual(t, stats.GoalsForRate, 0.6)
		assert.LessOrEqual(t, stats.GoalsForRate, 2.2)
		assert.GreaterOrEqual(t, stats.GoalsAgainst, 0.6)
		assert.LessOrEqual(t, stats.GoalsAgainst, 2.2)
	}
}
