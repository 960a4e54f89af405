package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/match-oracle/internal/config"
	"github.com/yourusername/match-oracle/internal/engine"
	"github.com/yourusername/match-oracle/internal/freshness"
	"github.com/yourusername/match-oracle/internal/models"
	"github.com/yourusername/match-oracle/internal/quota"
	"github.com/yourusername/match-oracle/internal/repository"
)

// mockMatchRepo returns a fixed match set from Find and records writes
type mockMatchRepo struct {
	repository.MatchRepository
	matches   []*models.Match
	byID      map[int]*models.Match
	upserted  []*models.Match
	h2hWrites map[int]*models.H2HSnapshot
}

func (m *mockMatchRepo) Find(ctx context.Context, filter repository.MatchFilter) ([]*models.Match, error) {
	return m.matches, nil
}

func (m *mockMatchRepo) GetByID(ctx context.Context, id int) (*models.Match, error) {
	if match, ok := m.byID[id]; ok {
		return match, nil
	}
	return nil, models.ErrNotFound
}

func (m *mockMatchRepo) Upsert(ctx context.Context, match *models.Match) error {
	m.upserted = append(m.upserted, match)
	return nil
}

func (m *mockMatchRepo) UpdateH2H(ctx context.Context, matchID int, snapshot *models.H2HSnapshot) error {
	if m.h2hWrites == nil {
		m.h2hWrites = make(map[int]*models.H2HSnapshot)
	}
	m.h2hWrites[matchID] = snapshot
	return nil
}

// mockTeamStatsRepo serves a fixed stats map
type mockTeamStatsRepo struct {
	repository.TeamStatsRepository
	stats map[int]*models.TeamStats
}

func (m *mockTeamStatsRepo) GetByTeamIDs(ctx context.Context, teamIDs []int) (map[int]*models.TeamStats, error) {
	out := make(map[int]*models.TeamStats)
	for _, id := range teamIDs {
		if s, ok := m.stats[id]; ok {
			out[id] = s
		}
	}
	return out, nil
}

// mockPredictionRepo stores upserts in memory keyed by date
type mockPredictionRepo struct {
	repository.PredictionRepository
	byDate map[string][]*models.Prediction
}

func (m *mockPredictionRepo) UpsertBatch(ctx context.Context, predictions []*models.Prediction) error {
	if m.byDate == nil {
		m.byDate = make(map[string][]*models.Prediction)
	}
	for _, p := range predictions {
		existing := m.byDate[p.CreatedAt]
		replaced := false
		for i, e := range existing {
			if e.MatchID == p.MatchID {
				existing[i] = p
				replaced = true
				break
			}
		}
		if !replaced {
			existing = append(existing, p)
		}
		m.byDate[p.CreatedAt] = existing
	}
	return nil
}

func (m *mockPredictionRepo) GetByDate(ctx context.Context, date string) ([]*models.Prediction, error) {
	// The real repository orders by match_id; the mock must match it so the
	// persisted read path sees the same shape.
	out := append([]*models.Prediction(nil), m.byDate[date]...)
	sort.Slice(out, func(i, j int) bool { return out[i].MatchID < out[j].MatchID })
	return out, nil
}

func scheduledMatch(id, homeID, awayID int, kickoff time.Time) *models.Match {
	return &models.Match{
		ID:              id,
		UTCDate:         kickoff,
		Status:          models.StatusScheduled,
		CompetitionCode: "PL",
		CompetitionName: "Premier League",
		HomeTeam:        models.TeamRef{ID: homeID, Name: "Home"},
		AwayTeam:        models.TeamRef{ID: awayID, Name: "Away"},
	}
}

func newTestPredictionService(matches []*models.Match, stats map[int]*models.TeamStats) (*PredictionService, *mockPredictionRepo) {
	clock := func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
	ledger := freshness.NewLedgerWithClock(quota.NewGuardWithClock(10, clock), clock)

	predRepo := &mockPredictionRepo{}
	repos := &repository.Repositories{
		Match:      &mockMatchRepo{matches: matches},
		TeamStats:  &mockTeamStatsRepo{stats: stats},
		Prediction: predRepo,
	}

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	cfg := &config.PredictionConfig{
		MaxFormMatches:   15,
		FormLookbackDays: 90,
		H2HWeight:        0.7,
		ResultLimit:      30,
		TopPicksLimit:    10,
	}

	svc := NewPredictionService(
		repos, nil, ledger,
		engine.NewBlender(cfg.H2HWeight, nil),
		engine.NewFormEstimator(cfg.MaxFormMatches, cfg.FormLookbackDays),
		cfg, []string{"PL"}, log,
	)
	return svc, predRepo
}

func TestPredictTodayGeneratesAndPersists(t *testing.T) {
	kickoff := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)
	matches := []*models.Match{
		scheduledMatch(1, 10, 20, kickoff),
		scheduledMatch(2, 30, 40, kickoff.Add(2*time.Hour)),
	}
	stats := map[int]*models.TeamStats{
		10: {TeamID: 10, Form: 2.0, GoalsForRate: 1.8, GoalsAgainst: 0.9, GamesPlayed: 10},
		20: {TeamID: 20, Form: 1.0, GoalsForRate: 0.9, GoalsAgainst: 1.5, GamesPlayed: 10},
	}

	svc, repo := newTestPredictionService(matches, stats)

	preds, err := svc.PredictToday(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, preds, 2)

	for _, p := range preds {
		sum := p.HomeWinProbability + p.DrawProbability + p.AwayWinProbability
		assert.InDelta(t, 1.0, sum, 1e-6)
		assert.Equal(t, "2026-03-01", p.CreatedAt)
		assert.Equal(t, models.MethodFormOnly, p.PredictionMethod)
	}

	assert.Len(t, repo.byDate["2026-03-01"], 2, "predictions persisted under today's date")
}

func TestPredictTodayUsesFallbackStatsForUnknownTeams(t *testing.T) {
	kickoff := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)
	svc, _ := newTestPredictionService(
		[]*models.Match{scheduledMatch(1, 10, 20, kickoff)},
		map[int]*models.TeamStats{}, // no stored stats at all
	)

	preds, err := svc.PredictToday(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, preds, 1, "fallback stats keep the match predictable")
}

func TestPredictTodayServesPersistedSet(t *testing.T) {
	kickoff := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)
	svc, repo := newTestPredictionService(
		[]*models.Match{scheduledMatch(1, 10, 20, kickoff)},
		map[int]*models.TeamStats{},
	)

	first, err := svc.PredictToday(context.Background(), false)
	require.NoError(t, err)

	// Mutating the backing store between calls would change the output; the
	// persisted read path must not regenerate.
	repoLenBefore := len(repo.byDate["2026-03-01"])
	second, err := svc.PredictToday(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, first, second, "same-day reads are stable")
	assert.Len(t, repo.byDate["2026-03-01"], repoLenBefore, "no duplicate rows")
}

func TestPredictTodaySameDayReadsIdentical(t *testing.T) {
	// Kickoff order deliberately diverges from ID order and the stored set
	// exceeds the result limit; the generating call and the same-day
	// persisted read must still agree in length and order.
	early := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	matches := []*models.Match{
		scheduledMatch(20, 10, 20, early),
		scheduledMatch(10, 30, 40, early.Add(3*time.Hour)),
	}

	svc, repo := newTestPredictionService(matches, map[int]*models.TeamStats{})
	svc.cfg.ResultLimit = 1

	first, err := svc.PredictToday(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 10, first[0].MatchID, "lowest match ID wins regardless of kickoff order")

	second, err := svc.PredictToday(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, first, second, "same-day reads must be identical")
	assert.Len(t, repo.byDate["2026-03-01"], 2, "the full generated set stays persisted")
}

func TestPredictTodayUsesStoredH2HSnapshot(t *testing.T) {
	kickoff := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)
	m := scheduledMatch(1, 10, 20, kickoff)
	m.H2H = &models.H2HSnapshot{
		LastUpdated:      "2026-02-27",
		MatchesAnalyzed:  6,
		HomeWinRatio:     0.5,
		AwayWinRatio:     0.33,
		DrawRatio:        0.17,
		AvgGoalsPerMatch: 2.6,
		HomeAvgGoals:     1.5,
		AwayAvgGoals:     1.1,
	}

	svc, _ := newTestPredictionService([]*models.Match{m}, map[int]*models.TeamStats{})

	preds, err := svc.PredictToday(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, preds, 1)

	assert.Equal(t, models.MethodH2HForm, preds[0].PredictionMethod)
	assert.True(t, preds[0].H2HAvailable, "a stale snapshot still informs the blend")
}

func TestTopPicksRanksAndTruncates(t *testing.T) {
	kickoff := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)
	matches := []*models.Match{
		scheduledMatch(1, 10, 20, kickoff),
		scheduledMatch(2, 30, 40, kickoff),
		scheduledMatch(3, 50, 60, kickoff),
	}

	svc, _ := newTestPredictionService(matches, map[int]*models.TeamStats{})

	picks, err := svc.TopPicks(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, picks, 2)
}
