// Package scheduler runs the recurring maintenance jobs: daily ingest,
// team-stats recompute and the retention sweep.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/match-oracle/internal/config"
	"github.com/yourusername/match-oracle/internal/engine"
	"github.com/yourusername/match-oracle/internal/service"
)

// Job cron defaults, all UTC. Ingest runs before stats so recomputes see the
// freshest finished results.
const (
	defaultIngestCron    = "0 6 * * *"
	defaultTeamStatsCron = "30 6 * * *"
	defaultRetentionCron = "0 4 * * *"
)

// Scheduler manages the recurring maintenance jobs.
type Scheduler struct {
	cron      *cron.Cron
	ingestion *service.IngestionService
	retention *service.RetentionService
	estimator *engine.FormEstimator
	cfg       *config.Config
	logger    *logrus.Logger
	mu        sync.Mutex
	running   bool
}

// New creates a scheduler over the maintenance services
func New(
	ingestion *service.IngestionService,
	retention *service.RetentionService,
	estimator *engine.FormEstimator,
	cfg *config.Config,
	logger *logrus.Logger,
) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithLocation(time.UTC)),
		ingestion: ingestion,
		retention: retention,
		estimator: estimator,
		cfg:       cfg,
		logger:    logger,
	}
}

// Start registers the jobs and starts the cron loop
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}

	jobs := []struct {
		name string
		spec string
		run  func(ctx context.Context)
	}{
		{"daily_ingest", cronOr(s.cfg.Scheduler.DailyIngestCron, defaultIngestCron), s.runIngest},
		{"team_stats", cronOr(s.cfg.Scheduler.TeamStatsCron, defaultTeamStatsCron), s.runTeamStats},
		{"retention", cronOr(s.cfg.Scheduler.RetentionCron, defaultRetentionCron), s.runRetention},
	}

	for _, job := range jobs {
		job := job
		_, err := s.cron.AddFunc(job.spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
			defer cancel()
			job.run(ctx)
		})
		if err != nil {
			return fmt.Errorf("failed to schedule %s: %w", job.name, err)
		}
		s.logger.WithFields(logrus.Fields{
			"job":  job.name,
			"cron": job.spec,
		}).Info("Scheduled maintenance job")
	}

	s.cron.Start()
	s.running = true
	return nil
}

// Stop halts the cron loop and waits for running jobs to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(30 * time.Second):
		s.logger.Warn("Scheduler stop timed out waiting for jobs")
	}
	s.running = false
}

func (s *Scheduler) runIngest(ctx context.Context) {
	s.logger.Info("Scheduled ingest starting")
	if err := s.ingestion.RefreshCompetitions(ctx); err != nil {
		s.logger.WithError(err).Error("Scheduled competition refresh failed")
	}
	if err := s.ingestion.IngestMatches(ctx); err != nil {
		s.logger.WithError(err).Error("Scheduled match ingest failed")
	}
	if err := s.ingestion.PrefetchH2H(ctx); err != nil {
		s.logger.WithError(err).Error("Scheduled H2H prefetch failed")
	}
}

func (s *Scheduler) runTeamStats(ctx context.Context) {
	s.logger.Info("Scheduled team stats recompute starting")
	if err := s.ingestion.RecomputeTeamStats(ctx, s.estimator, s.cfg.Prediction.FormLookbackDays); err != nil {
		s.logger.WithError(err).Error("Scheduled team stats recompute failed")
	}
}

func (s *Scheduler) runRetention(ctx context.Context) {
	s.logger.Info("Scheduled retention sweep starting")
	if _, err := s.retention.Cleanup(ctx, s.cfg.Retention.DefaultDays); err != nil {
		s.logger.WithError(err).Error("Scheduled retention sweep failed")
	}
}

func cronOr(spec, fallback string) string {
	if spec == "" {
		return fallback
	}
	return spec
}
