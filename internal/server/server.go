// Package server exposes the cached collections and the prediction pipeline
// over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/match-oracle/internal/config"
	"github.com/yourusername/match-oracle/internal/database"
	"github.com/yourusername/match-oracle/internal/logger"
	"github.com/yourusername/match-oracle/internal/repository"
	"github.com/yourusername/match-oracle/internal/service"
)

// Server is the API server over the caching and prediction core.
type Server struct {
	serviceName          string
	adminAPIKey          string
	defaultRetentionDays int

	db          *database.DB
	repos       *repository.Repositories
	ingestion   *service.IngestionService
	predictions *service.PredictionService
	retention   *service.RetentionService
	stats       *service.StatsService

	validate *validator.Validate
	logger   *logrus.Logger
	audit    *logger.AuditLogger

	httpServer *http.Server
}

// Deps bundles the collaborators the server needs.
type Deps struct {
	Config      *config.Config
	DB          *database.DB
	Repos       *repository.Repositories
	Ingestion   *service.IngestionService
	Predictions *service.PredictionService
	Retention   *service.RetentionService
	Stats       *service.StatsService
	Logger      *logrus.Logger
	Audit       *logger.AuditLogger
}

// New creates the API server
func New(deps Deps) *Server {
	return &Server{
		serviceName:          deps.Config.App.Name,
		adminAPIKey:          deps.Config.Server.AdminAPIKey,
		defaultRetentionDays: deps.Config.Retention.DefaultDays,
		db:                   deps.DB,
		repos:                deps.Repos,
		ingestion:            deps.Ingestion,
		predictions:          deps.Predictions,
		retention:            deps.Retention,
		stats:                deps.Stats,
		validate:             validator.New(),
		logger:               deps.Logger,
		audit:                deps.Audit,
	}
}

// Handler builds the routed handler with middleware applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/competitions", s.handleCompetitions)
	mux.HandleFunc("/matches", s.handleMatches)
	mux.HandleFunc("/predictions/today", s.handlePredictionsToday)
	mux.HandleFunc("/predictions/top-picks", s.handleTopPicks)
	mux.HandleFunc("/database/cleanup", s.withAdminAuth(s.handleCleanup))
	mux.HandleFunc("/database/stats", s.withAdminAuth(s.handleStats))

	return s.withRequestLogging(mux)
}

// Start runs the server until the context is cancelled
func (s *Server) Start(ctx context.Context, port int) error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("port", port).Info("API server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return s.Shutdown()
	}
}

// Shutdown drains in-flight requests and stops the server
func (s *Server) Shutdown() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("API server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}
