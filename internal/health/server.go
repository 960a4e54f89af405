// Package health provides a lightweight HTTP server for container probes and
// the Prometheus scrape endpoint.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/match-oracle/internal/metrics"
)

// DatabasePinger defines the interface for checking store connectivity.
type DatabasePinger interface {
	Ping(ctx context.Context) error
}

// ReadyResponse represents the JSON response for readiness check endpoints.
type ReadyResponse struct {
	Status   string            `json:"status"`
	Service  string            `json:"service"`
	Checks   map[string]string `json:"checks,omitempty"`
	Duration string            `json:"duration,omitempty"`
}

// Server serves /live, /ready and the metrics scrape path on its own port,
// separate from the API server.
type Server struct {
	serviceName string
	port        int
	metricsPath string
	server      *http.Server
	logger      *logrus.Logger
	db          DatabasePinger
	mu          sync.RWMutex
	ready       bool
}

// Config holds the configuration for the probe server.
type Config struct {
	ServiceName string
	Port        int
	MetricsPath string
	Logger      *logrus.Logger
	DB          DatabasePinger
}

// NewServer creates a new probe server.
func NewServer(cfg Config) *Server {
	path := cfg.MetricsPath
	if path == "" {
		path = "/metrics"
	}

	return &Server{
		serviceName: cfg.ServiceName,
		port:        cfg.Port,
		metricsPath: path,
		logger:      cfg.Logger,
		db:          cfg.DB,
	}
}

// SetReady marks the server as ready to accept traffic.
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// IsReady returns whether the server is ready.
func (s *Server) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Start starts the probe server in the background.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/live", s.handleLive)
	mux.HandleFunc("/ready", s.handleReady)
	mux.Handle(s.metricsPath, metrics.Handler())

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{
				"port":    s.port,
				"service": s.serviceName,
			}).Info("Probe server starting")
		}

		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.logger != nil {
				s.logger.WithError(err).Error("Probe server error")
			}
		}
	}()

	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()

	return nil
}

// Shutdown gracefully shuts down the probe server.
func (s *Server) Shutdown() error {
	if s.server == nil {
		return nil
	}

	if s.logger != nil {
		s.logger.Info("Probe server shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}

// handleLive handles the /live endpoint, the kubernetes liveness probe.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": s.serviceName,
	})
}

// handleReady handles the /ready endpoint, checking store connectivity.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	checks := make(map[string]string)
	allHealthy := true

	if !s.IsReady() {
		allHealthy = false
		checks["service"] = "not_ready"
	} else {
		checks["service"] = "ok"
	}

	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if err := s.db.Ping(ctx); err != nil {
			allHealthy = false
			checks["database"] = fmt.Sprintf("error: %v", err)
		} else {
			checks["database"] = "ok"
		}
	}

	response := ReadyResponse{
		Service:  s.serviceName,
		Checks:   checks,
		Duration: time.Since(start).String(),
	}

	w.Header().Set("Content-Type", "application/json")

	if allHealthy {
		response.Status = "ok"
		w.WriteHeader(http.StatusOK)
	} else {
		response.Status = "not_ready"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	json.NewEncoder(w).Encode(response)
}
