package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/match-oracle/internal/config"
	"github.com/yourusername/match-oracle/internal/footballdata"
	"github.com/yourusername/match-oracle/internal/freshness"
	"github.com/yourusername/match-oracle/internal/models"
	"github.com/yourusername/match-oracle/internal/quota"
	"github.com/yourusername/match-oracle/internal/repository"
)

func intp(v int) *int { return &v }

// mockCompetitionRepo keeps competitions in memory keyed by code
type mockCompetitionRepo struct {
	repository.CompetitionRepository
	byCode map[string]*models.Competition
}

func (m *mockCompetitionRepo) Upsert(ctx context.Context, c *models.Competition) error {
	if m.byCode == nil {
		m.byCode = make(map[string]*models.Competition)
	}
	if existing, ok := m.byCode[c.Code]; ok {
		// The match ingest date is owned by TouchIngestedDate, as in the store.
		c.LastIngestedDate = existing.LastIngestedDate
	}
	m.byCode[c.Code] = c
	return nil
}

func (m *mockCompetitionRepo) GetByCode(ctx context.Context, code string) (*models.Competition, error) {
	if c, ok := m.byCode[code]; ok {
		return c, nil
	}
	return nil, models.ErrNotFound
}

func (m *mockCompetitionRepo) TouchIngestedDate(ctx context.Context, code, date string) error {
	c, ok := m.byCode[code]
	if !ok {
		return models.ErrNotFound
	}
	c.LastIngestedDate = date
	return nil
}

func (m *mockCompetitionRepo) LatestIngestedDate(ctx context.Context) (string, error) {
	latest := ""
	for _, c := range m.byCode {
		if c.IngestedAt > latest {
			latest = c.IngestedAt
		}
	}
	return latest, nil
}

type ingestionFixture struct {
	svc     *IngestionService
	comps   *mockCompetitionRepo
	matches *mockMatchRepo
	guard   *quota.Guard
	ledger  *freshness.Ledger
}

// newIngestionFixture wires the service against in-memory repositories and,
// when baseURL is set, a provider client pointed at a test server.
func newIngestionFixture(baseURL string) *ingestionFixture {
	clock := func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
	guard := quota.NewGuardWithClock(10, clock)
	ledger := freshness.NewLedgerWithClock(guard, clock)

	comps := &mockCompetitionRepo{}
	matches := &mockMatchRepo{}
	repos := &repository.Repositories{Competition: comps, Match: matches}

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	cfg := &config.FootballDataConfig{
		BaseURL:             baseURL,
		TimeoutSeconds:      5,
		RequestsPerMinute:   6000,
		TrackedCompetitions: []string{"PL"},
		MaxH2HPerDay:        10,
		H2HMatchLimit:       10,
		PrefetchDaysAhead:   7,
	}

	var client *footballdata.Client
	if baseURL != "" {
		client = footballdata.NewClient(cfg, log)
	}

	return &ingestionFixture{
		svc:     NewIngestionService(repos, client, ledger, cfg, log),
		comps:   comps,
		matches: matches,
		guard:   guard,
		ledger:  ledger,
	}
}

func TestIngestAfterCompetitionRefresh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/competitions":
			fmt.Fprint(w, `{"count":1,"competitions":[{"id":2021,"code":"PL","name":"Premier League"}]}`)
		case "/competitions/PL/matches":
			fmt.Fprint(w, `{"competition":{"id":2021,"code":"PL","name":"Premier League"},"matches":[{"id":1001,"utcDate":"2026-03-01T15:00:00Z","status":"TIMED","homeTeam":{"id":10},"awayTeam":{"id":20}}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := newIngestionFixture(srv.URL)

	require.NoError(t, f.svc.RefreshCompetitions(context.Background()))
	require.NoError(t, f.svc.IngestCompetitionMatches(context.Background(), "PL"))
	require.Len(t, f.matches.upserted, 1, "a list refresh must not mark the fixtures as ingested")
	assert.Equal(t, "2026-03-01", f.comps.byCode["PL"].LastIngestedDate)

	// A second ingest the same day is deduped by the stamped ingest date.
	require.NoError(t, f.svc.IngestCompetitionMatches(context.Background(), "PL"))
	assert.Len(t, f.matches.upserted, 1)
}

func TestEnsureH2HFreshSnapshotReused(t *testing.T) {
	f := newIngestionFixture("")

	m := &models.Match{
		ID:       1001,
		HomeTeam: models.TeamRef{ID: 10},
		AwayTeam: models.TeamRef{ID: 20},
		H2H:      &models.H2HSnapshot{LastUpdated: "2026-03-01", MatchesAnalyzed: 5},
	}

	snap, err := f.svc.EnsureH2H(context.Background(), m)
	require.NoError(t, err)
	assert.Same(t, m.H2H, snap)
	assert.Zero(t, f.guard.Used(), "a fresh snapshot never consults the quota")
}

func TestEnsureH2HClaimLoserDoesNotChargeQuota(t *testing.T) {
	f := newIngestionFixture("")

	stored := &models.Match{ID: 1001, H2H: &models.H2HSnapshot{LastUpdated: "2026-02-20", MatchesAnalyzed: 4}}
	f.matches.byID = map[int]*models.Match{1001: stored}

	// Another caller is mid-refresh for this match.
	release, won := f.ledger.Claim(freshness.KindH2H, "1001")
	require.True(t, won)
	defer release()

	m := &models.Match{ID: 1001, H2H: &models.H2HSnapshot{LastUpdated: "2026-02-18"}}
	snap, err := f.svc.EnsureH2H(context.Background(), m)
	require.NoError(t, err)
	assert.Same(t, stored.H2H, snap, "losers reread the store")
	assert.Zero(t, f.guard.Used(), "losing the claim must not burn a quota token")
}

func TestEnsureH2HWinnerChargesOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/matches/1001/head2head" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"aggregates":{"numberOfMatches":4,"totalGoals":10,"homeTeam":{"id":10,"wins":2,"draws":1,"losses":1},"awayTeam":{"id":20,"wins":1,"draws":1,"losses":2}},"matches":[]}`)
	}))
	defer srv.Close()

	f := newIngestionFixture(srv.URL)

	m := &models.Match{ID: 1001, HomeTeam: models.TeamRef{ID: 10}, AwayTeam: models.TeamRef{ID: 20}}

	snap, err := f.svc.EnsureH2H(context.Background(), m)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "2026-03-01", snap.LastUpdated)
	assert.Equal(t, 1, f.guard.Used())
	assert.Same(t, snap, f.matches.h2hWrites[1001], "the refreshed snapshot is persisted")

	// Refreshed today: the second call reuses the snapshot without charging.
	again, err := f.svc.EnsureH2H(context.Background(), m)
	require.NoError(t, err)
	assert.Same(t, snap, again)
	assert.Equal(t, 1, f.guard.Used())
}

func h2hMatchEntry(homeID, awayID, homeGoals, awayGoals int) footballdata.MatchEntry {
	return footballdata.MatchEntry{
		Status:   models.StatusFinished,
		HomeTeam: models.TeamRef{ID: homeID},
		AwayTeam: models.TeamRef{ID: awayID},
		Score: &models.Score{
			FullTime: models.FullTimeScore{Home: intp(homeGoals), Away: intp(awayGoals)},
		},
	}
}

func TestBuildH2HSnapshotRatios(t *testing.T) {
	resp := &footballdata.H2HResponse{
		Aggregates: footballdata.H2HAggregates{
			NumberOfMatches: 10,
			TotalGoals:      28,
			HomeTeam:        footballdata.H2HTotals{ID: 10, Wins: 5, Draws: 2, Losses: 3},
			AwayTeam:        footballdata.H2HTotals{ID: 20, Wins: 3, Draws: 2, Losses: 5},
		},
		Matches: []footballdata.MatchEntry{
			h2hMatchEntry(10, 20, 2, 1),
			h2hMatchEntry(20, 10, 0, 3),
		},
	}

	snap := buildH2HSnapshot(resp, 10, 20, "2026-03-01")

	assert.Equal(t, "2026-03-01", snap.LastUpdated)
	assert.Equal(t, 10, snap.MatchesAnalyzed)
	assert.InDelta(t, 0.5, snap.HomeWinRatio, 1e-9)
	assert.InDelta(t, 0.3, snap.AwayWinRatio, 1e-9)
	assert.InDelta(t, 0.2, snap.DrawRatio, 1e-9)
	assert.InDelta(t, 2.8, snap.AvgGoalsPerMatch, 1e-9)
	// Team 10 scored 2 then 3; team 20 scored 1 then 0.
	assert.InDelta(t, 2.5, snap.HomeAvgGoals, 1e-9)
	assert.InDelta(t, 0.5, snap.AwayAvgGoals, 1e-9)
}

func TestBuildH2HSnapshotSwapsReversedAggregates(t *testing.T) {
	// The provider labels aggregates by its own home/away, which can be the
	// reverse of today's fixture.
	resp := &footballdata.H2HResponse{
		Aggregates: footballdata.H2HAggregates{
			NumberOfMatches: 4,
			TotalGoals:      8,
			HomeTeam:        footballdata.H2HTotals{ID: 20, Wins: 3, Draws: 1, Losses: 0},
			AwayTeam:        footballdata.H2HTotals{ID: 10, Wins: 0, Draws: 1, Losses: 3},
		},
	}

	snap := buildH2HSnapshot(resp, 10, 20, "2026-03-01")

	assert.InDelta(t, 0.0, snap.HomeWinRatio, 1e-9)
	assert.InDelta(t, 0.75, snap.AwayWinRatio, 1e-9)
	assert.InDelta(t, 0.25, snap.DrawRatio, 1e-9)
}

func TestBuildH2HSnapshotEmptyHistory(t *testing.T) {
	resp := &footballdata.H2HResponse{}

	snap := buildH2HSnapshot(resp, 10, 20, "2026-03-01")

	assert.Equal(t, "2026-03-01", snap.LastUpdated)
	assert.Zero(t, snap.MatchesAnalyzed)
	assert.Zero(t, snap.HomeWinRatio)
}

func TestMatchFromEntry(t *testing.T) {
	entry := footballdata.MatchEntry{
		ID:       1001,
		UTCDate:  "2026-03-01T15:00:00Z",
		Status:   models.StatusScheduled,
		Matchday: 27,
		HomeTeam: models.TeamRef{ID: 10, Name: "Arsenal FC"},
		AwayTeam: models.TeamRef{ID: 20, Name: "Chelsea FC"},
	}
	comp := footballdata.CompetitionEntry{Code: "PL", Name: "Premier League"}

	m, err := matchFromEntry(entry, comp, "2026-03-01")
	require.NoError(t, err)

	assert.Equal(t, 1001, m.ID)
	assert.Equal(t, time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC), m.UTCDate)
	assert.Equal(t, "PL", m.CompetitionCode)
	assert.Equal(t, "Premier League", m.CompetitionName)
	assert.Equal(t, "2026-03-01", m.IngestedAt)
}

func TestMatchFromEntryRejectsBadDate(t *testing.T) {
	entry := footballdata.MatchEntry{ID: 1, UTCDate: "not-a-date"}
	_, err := matchFromEntry(entry, footballdata.CompetitionEntry{}, "2026-03-01")
	assert.Error(t, err)
}
