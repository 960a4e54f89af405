// Package main provides the daily pipeline runner: ingest, team stats,
// head-to-head prefetch and prediction generation in one pass.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/match-oracle/internal/config"
	"github.com/yourusername/match-oracle/internal/database"
	"github.com/yourusername/match-oracle/internal/engine"
	"github.com/yourusername/match-oracle/internal/footballdata"
	"github.com/yourusername/match-oracle/internal/freshness"
	"github.com/yourusername/match-oracle/internal/logger"
	"github.com/yourusername/match-oracle/internal/metrics"
	"github.com/yourusername/match-oracle/internal/quota"
	"github.com/yourusername/match-oracle/internal/repository"
	"github.com/yourusername/match-oracle/internal/service"
)

var (
	configFile  string
	skipH2H     bool
	skipPredict bool
	timeout     time.Duration
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().BoolVar(&skipH2H, "skip-h2h", false, "Skip the quota-charged head-to-head prefetch")
	rootCmd.Flags().BoolVar(&skipPredict, "skip-predict", false, "Ingest only, do not generate predictions")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 30*time.Minute, "Overall run timeout")
}

var rootCmd = &cobra.Command{
	Use:   "daily-run",
	Short: "Run the daily ingest and prediction pipeline once",
	Long:  `Refreshes competitions and tracked fixtures, recomputes team form stats, prefetches head-to-head snapshots within the daily quota, and generates today's predictions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run() error {
	cfg, err := config.LoadWithDefaults(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		if err := config.LoadSecretsFromAWS(cfg, os.Getenv("AWS_REGION"), os.Getenv("AWS_SECRET_NAME")); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logg := logger.NewLogger(cfg.App.LogLevel)
	metrics.InitRegistry()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}

	guard := quota.NewGuard(cfg.FootballData.MaxH2HPerDay)
	ledger := freshness.NewLedger(guard)
	client := footballdata.NewClient(&cfg.FootballData, logg)
	estimator := engine.NewFormEstimator(cfg.Prediction.MaxFormMatches, cfg.Prediction.FormLookbackDays)
	blender := engine.NewBlender(cfg.Prediction.H2HWeight, nil)

	ingestion := service.NewIngestionService(repos, client, ledger, &cfg.FootballData, logg)

	logg.Info("Daily run: refreshing competitions")
	if err := ingestion.RefreshCompetitions(ctx); err != nil {
		return err
	}

	logg.Info("Daily run: ingesting tracked fixtures")
	if err := ingestion.IngestMatches(ctx); err != nil {
		return err
	}

	logg.Info("Daily run: recomputing team stats")
	if err := ingestion.RecomputeTeamStats(ctx, estimator, cfg.Prediction.FormLookbackDays); err != nil {
		return err
	}

	if !skipH2H {
		logg.Info("Daily run: prefetching head-to-head snapshots")
		if err := ingestion.PrefetchH2H(ctx); err != nil {
			return err
		}
		logg.WithFields(logrus.Fields{
			"used":      guard.Used(),
			"remaining": guard.Remaining(),
		}).Info("Daily run: H2H quota usage")
	}

	if !skipPredict {
		predictions := service.NewPredictionService(repos, ingestion, ledger, blender, estimator,
			&cfg.Prediction, cfg.FootballData.TrackedCompetitions, logg)

		logg.Info("Daily run: generating predictions")
		preds, err := predictions.PredictToday(ctx, !skipH2H)
		if err != nil {
			return err
		}
		logg.WithField("count", len(preds)).Info("Daily run: predictions generated")
	}

	logg.Info("Daily run complete")
	return nil
}
