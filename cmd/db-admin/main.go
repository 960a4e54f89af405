// Package main provides database administration commands: schema init,
// retention cleanup and storage statistics.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/match-oracle/internal/config"
	"github.com/yourusername/match-oracle/internal/database"
	"github.com/yourusername/match-oracle/internal/logger"
	"github.com/yourusername/match-oracle/internal/metrics"
	"github.com/yourusername/match-oracle/internal/repository"
	"github.com/yourusername/match-oracle/internal/service"
)

var (
	configFile string
	days       int

	cfg   *config.Config
	db    *database.DB
	repos *repository.Repositories
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	cleanupCmd.Flags().IntVar(&days, "days", 0, "Retention horizon in days (default from config)")

	rootCmd.AddCommand(initCmd, cleanupCmd, statsCmd)
}

var rootCmd = &cobra.Command{
	Use:   "db-admin",
	Short: "Administer the match cache database",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			db.Close()
		}
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the schema if it does not exist",
	Run: func(cmd *cobra.Command, args []string) {
		// Initialize already ran the DDL during setup.
		fmt.Println("Schema initialized")
	},
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete records past the retention horizon",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		retain := days
		if retain == 0 {
			retain = cfg.Retention.DefaultDays
		}

		logg := logger.NewLogger(cfg.App.LogLevel)
		registry := repository.NewRetentionRegistry(repos)
		retention := service.NewRetentionService(registry, logger.NewAuditLogger(logg), logg)

		report, err := retention.Cleanup(ctx, retain)
		if err != nil {
			return err
		}

		fmt.Printf("Cutoff date:    %s\n", report.CutoffDate)
		fmt.Printf("Days retained:  %d\n", report.DaysRetained)
		fmt.Printf("Total deleted:  %d\n", report.TotalRecordsDeleted)
		for _, name := range sortedKeys(report.CollectionsCleaned) {
			fmt.Printf("  %-14s %v\n", name+":", report.CollectionsCleaned[name])
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show per-collection storage statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		stats, err := service.NewStatsService(repository.NewRetentionRegistry(repos)).Stats(ctx)
		if err != nil {
			return err
		}

		names := make([]string, 0, len(stats))
		for name := range stats {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			cs := stats[name]
			fmt.Printf("%s: %d records", name, cs.TotalCount)
			if cs.OldestDate != "" {
				fmt.Printf(" (%s .. %s)", cs.OldestDate, cs.NewestDate)
			}
			if cs.Protection != "" {
				fmt.Printf(" [%s]", cs.Protection)
			}
			fmt.Println()
		}
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func setup() error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
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

	metrics.InitRegistry()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err = database.Initialize(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	repos, err = repository.NewRepositories(db)
	if err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}

	return nil
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
