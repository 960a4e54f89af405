package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/match-oracle/internal/config"
	"github.com/yourusername/match-oracle/internal/engine"
	"github.com/yourusername/match-oracle/internal/freshness"
	"github.com/yourusername/match-oracle/internal/metrics"
	"github.com/yourusername/match-oracle/internal/models"
	"github.com/yourusername/match-oracle/internal/repository"
)

// PredictionService runs the prediction pipeline over today's match set.
// Generated predictions are persisted keyed on (match_id, created_at), so
// repeated same-day reads serve the stored rows unchanged.
type PredictionService struct {
	repos     *repository.Repositories
	ingestion *IngestionService
	ledger    *freshness.Ledger
	blender   *engine.Blender
	estimator *engine.FormEstimator
	cfg       *config.PredictionConfig
	tracked   []string
	logger    *logrus.Logger
}

// NewPredictionService creates the prediction service
func NewPredictionService(
	repos *repository.Repositories,
	ingestion *IngestionService,
	ledger *freshness.Ledger,
	blender *engine.Blender,
	estimator *engine.FormEstimator,
	cfg *config.PredictionConfig,
	tracked []string,
	logger *logrus.Logger,
) *PredictionService {
	return &PredictionService{
		repos:     repos,
		ingestion: ingestion,
		ledger:    ledger,
		blender:   blender,
		estimator: estimator,
		cfg:       cfg,
		tracked:   tracked,
		logger:    logger,
	}
}

// PredictToday returns predictions for today's tracked matches. Without
// fetchH2HOnDemand a persisted set from earlier in the day is served again;
// with it the pipeline reruns, refreshing head-to-head snapshots through the
// quota-gated ledger path and upserting the results. Both paths return the
// canonical set from serveSet.
func (s *PredictionService) PredictToday(ctx context.Context, fetchH2HOnDemand bool) ([]*models.Prediction, error) {
	today := s.ledger.Today()

	if !fetchH2HOnDemand {
		persisted, err := s.repos.Prediction.GetByDate(ctx, today)
		if err != nil {
			return nil, fmt.Errorf("failed to read persisted predictions: %w", err)
		}
		if len(persisted) > 0 {
			s.logger.WithField("count", len(persisted)).Debug("Serving persisted predictions")
			return s.serveSet(persisted), nil
		}
	}

	matches, err := s.todaysMatches(ctx)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}

	stats, err := s.statsFor(ctx, matches)
	if err != nil {
		return nil, err
	}

	predictions := make([]*models.Prediction, 0, len(matches))
	for _, m := range matches {
		snapshot := m.H2H
		if fetchH2HOnDemand {
			snapshot, err = s.ingestion.EnsureH2H(ctx, m)
			if err != nil {
				s.logger.WithError(err).WithField("match_id", m.ID).Warn("H2H refresh failed, predicting with stored snapshot")
				snapshot = m.H2H
			}
		}

		home, away := stats[m.HomeTeam.ID], stats[m.AwayTeam.ID]
		if home == nil || away == nil {
			// No identified teams means nothing to predict on.
			s.logger.WithField("match_id", m.ID).Warn("Missing team stats, skipping match")
			continue
		}

		start := time.Now()
		pred := s.blender.Predict(m, home, away, engine.ExtractH2HFeatures(snapshot))
		pred.CreatedAt = today
		metrics.RecordPredictionGenerated(pred.PredictionMethod)
		metrics.ObservePredictionDuration(time.Since(start).Seconds())

		predictions = append(predictions, pred)
	}

	if err := s.repos.Prediction.UpsertBatch(ctx, predictions); err != nil {
		return nil, fmt.Errorf("failed to persist predictions: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"date":  today,
		"count": len(predictions),
	}).Info("Generated predictions")

	return s.serveSet(predictions), nil
}

// serveSet puts predictions into the canonical client-facing shape: match ID
// ascending, truncated to the configured result limit. The generating call and
// the same-day persisted read both pass through here, so two reads on one day
// return the same slice even when the stored set exceeds the limit.
func (s *PredictionService) serveSet(predictions []*models.Prediction) []*models.Prediction {
	sort.Slice(predictions, func(i, j int) bool {
		return predictions[i].MatchID < predictions[j].MatchID
	})
	if s.cfg.ResultLimit > 0 && len(predictions) > s.cfg.ResultLimit {
		predictions = predictions[:s.cfg.ResultLimit]
	}
	return predictions
}

// TopPicks ranks today's predictions by the composite confidence-value score
// and truncates to limit. Zero or negative limit uses the configured default.
func (s *PredictionService) TopPicks(ctx context.Context, limit int) ([]*models.Prediction, error) {
	if limit <= 0 {
		limit = s.cfg.TopPicksLimit
	}

	predictions, err := s.PredictToday(ctx, false)
	if err != nil {
		return nil, err
	}

	return engine.Rank(predictions, limit, engine.ConfidenceValueStrategy{}), nil
}

// todaysMatches loads today's unplayed tracked fixtures
func (s *PredictionService) todaysMatches(ctx context.Context) ([]*models.Match, error) {
	dayStart, err := time.Parse("2006-01-02", s.ledger.Today())
	if err != nil {
		return nil, fmt.Errorf("failed to parse today: %w", err)
	}

	matches, err := s.repos.Match.Find(ctx, repository.MatchFilter{
		CompetitionCodes: s.tracked,
		Statuses:         []string{models.StatusScheduled, models.StatusTimed},
		DateFrom:         dayStart,
		DateTo:           dayStart.AddDate(0, 0, 1),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load today's matches: %w", err)
	}
	return matches, nil
}

// statsFor assembles the team stats map for the match set. Teams without a
// stored row get deterministic fallback stats so every match stays predictable.
func (s *PredictionService) statsFor(ctx context.Context, matches []*models.Match) (map[int]*models.TeamStats, error) {
	seen := make(map[int]struct{}, len(matches)*2)
	ids := make([]int, 0, len(matches)*2)
	for _, m := range matches {
		for _, id := range []int{m.HomeTeam.ID, m.AwayTeam.ID} {
			if id == 0 {
				continue
			}
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}

	stats, err := s.repos.TeamStats.GetByTeamIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load team stats: %w", err)
	}

	now := time.Now().UTC()
	for _, id := range ids {
		if _, ok := stats[id]; !ok {
			stats[id] = engine.FallbackStats(id, now)
		}
	}
	return stats, nil
}
