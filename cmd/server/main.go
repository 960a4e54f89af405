// Package main provides the entry point for the API server.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/match-oracle/internal/config"
	"github.com/yourusername/match-oracle/internal/database"
	"github.com/yourusername/match-oracle/internal/engine"
	"github.com/yourusername/match-oracle/internal/footballdata"
	"github.com/yourusername/match-oracle/internal/freshness"
	"github.com/yourusername/match-oracle/internal/health"
	"github.com/yourusername/match-oracle/internal/logger"
	"github.com/yourusername/match-oracle/internal/metrics"
	"github.com/yourusername/match-oracle/internal/quota"
	"github.com/yourusername/match-oracle/internal/repository"
	"github.com/yourusername/match-oracle/internal/scheduler"
	"github.com/yourusername/match-oracle/internal/server"
	"github.com/yourusername/match-oracle/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var configFile string

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
}

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the match prediction API server",
	Long:  `Serves cached competitions, matches and daily match-outcome predictions over HTTP, with admin retention and stats endpoints.`,
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
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.NewLogger(cfg.App.LogLevel)
	if cfg.IsProduction() {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	audit := logger.NewAuditLogger(log)
	metrics.InitRegistry()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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
	client := footballdata.NewClient(&cfg.FootballData, log)
	estimator := engine.NewFormEstimator(cfg.Prediction.MaxFormMatches, cfg.Prediction.FormLookbackDays)
	blender := engine.NewBlender(cfg.Prediction.H2HWeight, nil)

	ingestion := service.NewIngestionService(repos, client, ledger, &cfg.FootballData, log)
	predictions := service.NewPredictionService(repos, ingestion, ledger, blender, estimator,
		&cfg.Prediction, cfg.FootballData.TrackedCompetitions, log)
	registry := repository.NewRetentionRegistry(repos)
	retention := service.NewRetentionService(registry, audit, log)
	stats := service.NewStatsService(registry)

	if cfg.Metrics.Enabled {
		probe := health.NewServer(health.Config{
			ServiceName: cfg.App.Name,
			Port:        cfg.Metrics.Port,
			MetricsPath: cfg.Metrics.Path,
			Logger:      log,
			DB:          db,
		})
		if err := probe.Start(ctx); err != nil {
			return fmt.Errorf("failed to start probe server: %w", err)
		}
		probe.SetReady(true)
	}

	if cfg.Scheduler.Enabled {
		sched := scheduler.New(ingestion, retention, estimator, cfg, log)
		if err := sched.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer sched.Stop()
	}

	api := server.New(server.Deps{
		Config:      cfg,
		DB:          db,
		Repos:       repos,
		Ingestion:   ingestion,
		Predictions: predictions,
		Retention:   retention,
		Stats:       stats,
		Logger:      log,
		Audit:       audit,
	})

	log.WithField("version", Version).WithField("commit", GitCommit).Info("Match Oracle API server starting")
	return api.Start(ctx, cfg.Server.Port)
}
