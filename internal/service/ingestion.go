// Package service implements the application workflows over the repositories,
// the provider client and the prediction engine.
package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/match-oracle/internal/config"
	"github.com/yourusername/match-oracle/internal/engine"
	"github.com/yourusername/match-oracle/internal/footballdata"
	"github.com/yourusername/match-oracle/internal/freshness"
	"github.com/yourusername/match-oracle/internal/models"
	"github.com/yourusername/match-oracle/internal/repository"
)

// IngestionService refreshes the cached collections from the provider.
// Competition and match refreshes are free and deduped to once per calendar
// day; head-to-head refreshes go through the freshness ledger's quota path.
type IngestionService struct {
	repos  *repository.Repositories
	client *footballdata.Client
	ledger *freshness.Ledger
	cfg    *config.FootballDataConfig
	logger *logrus.Logger
}

// NewIngestionService creates the ingestion service
func NewIngestionService(
	repos *repository.Repositories,
	client *footballdata.Client,
	ledger *freshness.Ledger,
	cfg *config.FootballDataConfig,
	logger *logrus.Logger,
) *IngestionService {
	return &IngestionService{
		repos:  repos,
		client: client,
		ledger: ledger,
		cfg:    cfg,
		logger: logger,
	}
}

// RefreshCompetitions fetches the competition list when the cached copy is
// stale. Within a day the cached list is authoritative and no upstream call
// is made.
func (s *IngestionService) RefreshCompetitions(ctx context.Context) error {
	last, err := s.repos.Competition.LatestIngestedDate(ctx)
	if err != nil {
		return fmt.Errorf("failed to read competition freshness: %w", err)
	}

	if s.ledger.Decide(freshness.KindCompetitions, "all", last) == freshness.Cached {
		s.logger.Debug("Competitions refreshed today, using cache")
		return nil
	}

	release, won := s.ledger.Claim(freshness.KindCompetitions, "all")
	if !won {
		s.logger.Debug("Competition refresh already in flight")
		return nil
	}
	defer release()

	entries, err := s.client.GetCompetitions(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch competitions: %w", err)
	}

	today := s.ledger.Today()
	stored := 0
	for _, e := range entries {
		if e.Code == "" {
			continue
		}
		c := &models.Competition{
			ID:               e.ID,
			Code:             e.Code,
			Name:             e.Name,
			Type:             e.Type,
			Emblem:           e.Emblem,
			Area:             e.Area,
			CurrentSeason:    e.CurrentSeason,
			AvailableSeasons: e.AvailableSeasons,
			IngestedAt:       today,
		}
		if err := s.repos.Competition.Upsert(ctx, c); err != nil {
			return fmt.Errorf("failed to store competition %s: %w", e.Code, err)
		}
		stored++
	}

	s.ledger.MarkRefreshed(freshness.KindCompetitions, "all")
	s.logger.WithField("count", stored).Info("Refreshed competitions")
	return nil
}

// IngestMatches refreshes scheduled fixtures for every tracked competition.
// Each competition is ingested at most once per calendar day.
func (s *IngestionService) IngestMatches(ctx context.Context) error {
	for _, code := range s.cfg.TrackedCompetitions {
		if err := s.IngestCompetitionMatches(ctx, code); err != nil {
			// One broken competition must not block the rest of the run.
			s.logger.WithError(err).WithField("competition", code).Warn("Match ingest failed")
		}
	}
	return nil
}

// IngestCompetitionMatches refreshes one competition's scheduled fixtures
func (s *IngestionService) IngestCompetitionMatches(ctx context.Context, code string) error {
	last := ""
	if comp, err := s.repos.Competition.GetByCode(ctx, code); err == nil {
		last = comp.LastIngestedDate
	}

	if s.ledger.Decide(freshness.KindMatches, code, last) == freshness.Cached {
		s.logger.WithField("competition", code).Debug("Matches ingested today, using cache")
		return nil
	}

	release, won := s.ledger.Claim(freshness.KindMatches, code)
	if !won {
		return nil
	}
	defer release()

	resp, err := s.client.GetScheduledMatches(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to fetch matches for %s: %w", code, err)
	}

	today := s.ledger.Today()
	for _, entry := range resp.Matches {
		m, err := matchFromEntry(entry, resp.Competition, today)
		if err != nil {
			s.logger.WithError(err).WithField("match_id", entry.ID).Warn("Skipping malformed match")
			continue
		}
		if err := s.repos.Match.Upsert(ctx, m); err != nil {
			return fmt.Errorf("failed to store match %d: %w", entry.ID, err)
		}
	}

	if err := s.repos.Competition.TouchIngestedDate(ctx, code, today); err != nil {
		s.logger.WithError(err).WithField("competition", code).Warn("Failed to stamp ingest date")
	}

	s.ledger.MarkRefreshed(freshness.KindMatches, code)
	s.logger.WithFields(logrus.Fields{
		"competition": code,
		"count":       len(resp.Matches),
	}).Info("Ingested scheduled matches")
	return nil
}

// EnsureH2H guarantees the match carries the freshest head-to-head snapshot
// the quota allows. A snapshot refreshed today is reused; a stale or missing
// one triggers a quota-charged fetch; quota exhaustion returns whatever
// snapshot exists, possibly nil. The claim is taken before the ledger is
// consulted, so only the caller that will actually fetch can spend a quota
// token; racing callers reread the store instead.
func (s *IngestionService) EnsureH2H(ctx context.Context, match *models.Match) (*models.H2HSnapshot, error) {
	key := strconv.Itoa(match.ID)

	if match.H2H.IsFresh(s.ledger.Today()) {
		return match.H2H, nil
	}

	release, won := s.ledger.Claim(freshness.KindH2H, key)
	if !won {
		// A racing caller is fetching; reread the store for its result.
		if fresh, err := s.repos.Match.GetByID(ctx, match.ID); err == nil {
			return fresh.H2H, nil
		}
		return match.H2H, nil
	}
	defer release()

	last := ""
	if match.H2H != nil {
		last = match.H2H.LastUpdated
	}

	switch s.ledger.Decide(freshness.KindH2H, key, last) {
	case freshness.Cached:
		return match.H2H, nil
	case freshness.SkipQuota:
		s.logger.WithField("match_id", match.ID).Info("H2H quota exhausted, using stale snapshot")
		return match.H2H, nil
	}

	resp, err := s.client.GetHeadToHead(ctx, match.ID, s.cfg.H2HMatchLimit)
	if err != nil {
		// The quota token is already spent. Degrade to the stored snapshot.
		s.logger.WithError(err).WithField("match_id", match.ID).Warn("H2H fetch failed")
		return match.H2H, nil
	}

	snapshot := buildH2HSnapshot(resp, match.HomeTeam.ID, match.AwayTeam.ID, s.ledger.Today())
	if err := s.repos.Match.UpdateH2H(ctx, match.ID, snapshot); err != nil {
		return snapshot, fmt.Errorf("failed to store h2h snapshot: %w", err)
	}

	s.ledger.MarkRefreshed(freshness.KindH2H, key)
	match.H2H = snapshot
	return snapshot, nil
}

// PrefetchH2H warms head-to-head snapshots for upcoming matches, soonest
// kickoff first, until the daily quota runs out.
func (s *IngestionService) PrefetchH2H(ctx context.Context) error {
	now := time.Now().UTC()
	matches, err := s.repos.Match.Find(ctx, repository.MatchFilter{
		CompetitionCodes: s.cfg.TrackedCompetitions,
		Statuses:         []string{models.StatusScheduled, models.StatusTimed},
		DateFrom:         now,
		DateTo:           now.AddDate(0, 0, s.cfg.PrefetchDaysAhead),
	})
	if err != nil {
		return fmt.Errorf("failed to load upcoming matches: %w", err)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].UTCDate.Before(matches[j].UTCDate)
	})

	warmed := 0
	for _, m := range matches {
		before := m.H2H
		snapshot, err := s.EnsureH2H(ctx, m)
		if err != nil {
			s.logger.WithError(err).WithField("match_id", m.ID).Warn("H2H prefetch failed")
			continue
		}
		if snapshot != nil && snapshot != before {
			warmed++
		}
	}

	s.logger.WithFields(logrus.Fields{
		"candidates": len(matches),
		"warmed":     warmed,
	}).Info("H2H prefetch complete")
	return nil
}

// RecomputeTeamStats rebuilds form stats for every team with a finished match
// inside the lookback window
func (s *IngestionService) RecomputeTeamStats(ctx context.Context, estimator *engine.FormEstimator, lookbackDays int) error {
	since := time.Now().UTC().AddDate(0, 0, -lookbackDays)

	teamIDs, err := s.repos.Match.TeamIDsWithFinishedMatches(ctx, since)
	if err != nil {
		return fmt.Errorf("failed to list teams: %w", err)
	}

	for _, teamID := range teamIDs {
		matches, err := s.repos.Match.FinishedInvolving(ctx, teamID, since, engine.MaxFormMatches)
		if err != nil {
			return fmt.Errorf("failed to load matches for team %d: %w", teamID, err)
		}
		stats := estimator.ComputeForm(teamID, matches)
		if err := s.repos.TeamStats.Upsert(ctx, stats); err != nil {
			return fmt.Errorf("failed to store stats for team %d: %w", teamID, err)
		}
	}

	s.logger.WithField("teams", len(teamIDs)).Info("Recomputed team stats")
	return nil
}

// matchFromEntry maps a provider fixture onto the stored match shape
func matchFromEntry(entry footballdata.MatchEntry, comp footballdata.CompetitionEntry, ingestedAt string) (*models.Match, error) {
	utcDate, err := time.Parse(time.RFC3339, entry.UTCDate)
	if err != nil {
		return nil, fmt.Errorf("bad utcDate %q: %w", entry.UTCDate, err)
	}

	return &models.Match{
		ID:              entry.ID,
		UTCDate:         utcDate.UTC(),
		Status:          entry.Status,
		Matchday:        entry.Matchday,
		Stage:           entry.Stage,
		CompetitionCode: comp.Code,
		CompetitionName: comp.Name,
		HomeTeam:        entry.HomeTeam,
		AwayTeam:        entry.AwayTeam,
		Score:           entry.Score,
		Raw:             entry.Raw,
		IngestedAt:      ingestedAt,
	}, nil
}

// buildH2HSnapshot aggregates the provider's head-to-head payload into the
// cached snapshot shape. Win/draw ratios come from the provider's aggregate
// tallies; per-side goal averages are recomputed from the match list because
// the aggregates only carry a combined goal total.
func buildH2HSnapshot(resp *footballdata.H2HResponse, homeID, awayID int, today string) *models.H2HSnapshot {
	snapshot := &models.H2HSnapshot{LastUpdated: today}

	n := resp.Aggregates.NumberOfMatches
	if n == 0 {
		return snapshot
	}
	snapshot.MatchesAnalyzed = n

	homeTotals, awayTotals := resp.Aggregates.HomeTeam, resp.Aggregates.AwayTeam
	if homeTotals.ID != homeID && awayTotals.ID == homeID {
		homeTotals, awayTotals = awayTotals, homeTotals
	}

	total := float64(n)
	snapshot.HomeWinRatio = float64(homeTotals.Wins) / total
	snapshot.AwayWinRatio = float64(awayTotals.Wins) / total
	snapshot.DrawRatio = float64(homeTotals.Draws) / total
	snapshot.AvgGoalsPerMatch = float64(resp.Aggregates.TotalGoals) / total

	var homeGoals, awayGoals, counted int
	for i := range resp.Matches {
		entry := resp.Matches[i]
		m := models.Match{
			Status:   entry.Status,
			HomeTeam: entry.HomeTeam,
			AwayTeam: entry.AwayTeam,
			Score:    entry.Score,
		}
		hg, _, hok := m.GoalsFor(homeID)
		ag, _, aok := m.GoalsFor(awayID)
		if !hok || !aok {
			continue
		}
		homeGoals += hg
		awayGoals += ag
		counted++
	}
	if counted > 0 {
		snapshot.HomeAvgGoals = float64(homeGoals) / float64(counted)
		snapshot.AwayAvgGoals = float64(awayGoals) / float64(counted)
	}

	return snapshot
}
