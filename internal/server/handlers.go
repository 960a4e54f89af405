package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/yourusername/match-oracle/internal/logger"
	"github.com/yourusername/match-oracle/internal/models"
	"github.com/yourusername/match-oracle/internal/repository"
	"github.com/yourusername/match-oracle/internal/service"
)

// handleCompetitions serves the cached competition list, refreshing it first
// when the daily freshness window has lapsed
func (s *Server) handleCompetitions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := s.ingestion.RefreshCompetitions(r.Context()); err != nil {
		// Refresh failure degrades to the cached list rather than failing the read.
		s.logger.WithError(err).Warn("Competition refresh failed, serving cache")
	}

	competitions, err := s.repos.Competition.GetAll(r.Context())
	if err != nil {
		s.serverError(w, r, err, "failed to load competitions")
		return
	}

	writeData(w, http.StatusOK, "", competitions)
}

// matchesRequest is the POST /matches body
type matchesRequest struct {
	CompetitionCode string `json:"competition_code" validate:"required"`
	StatusFilter    string `json:"status_filter"`
	DateFrom        string `json:"date_from"`
	DateTo          string `json:"date_to"`
	Limit           int    `json:"limit" validate:"gte=0"`
}

// handleMatches validates the competition, triggers an ingest when the cache
// holds nothing for it, and returns the filtered cached matches
func (s *Server) handleMatches(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req matchesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "competition_code is required")
		return
	}

	if _, err := s.repos.Competition.GetByCode(r.Context(), req.CompetitionCode); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			writeError(w, http.StatusNotFound, "unknown competition code: "+req.CompetitionCode)
			return
		}
		s.serverError(w, r, err, "failed to look up competition")
		return
	}

	filter, err := matchFilterFrom(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	matches, err := s.repos.Match.Find(r.Context(), filter)
	if err != nil {
		s.serverError(w, r, err, "failed to load matches")
		return
	}

	if len(matches) == 0 {
		if err := s.ingestion.IngestCompetitionMatches(r.Context(), req.CompetitionCode); err != nil {
			s.logger.WithError(err).Warn("Match ingest failed")
		}
		matches, err = s.repos.Match.Find(r.Context(), filter)
		if err != nil {
			s.serverError(w, r, err, "failed to load matches")
			return
		}
	}

	writeData(w, http.StatusOK, "", matches)
}

func matchFilterFrom(req matchesRequest) (repository.MatchFilter, error) {
	filter := repository.MatchFilter{
		CompetitionCode: req.CompetitionCode,
		Limit:           req.Limit,
	}
	if req.StatusFilter != "" {
		filter.Statuses = []string{req.StatusFilter}
	}
	if req.DateFrom != "" {
		from, err := time.Parse("2006-01-02", req.DateFrom)
		if err != nil {
			return filter, errors.New("date_from must be YYYY-MM-DD")
		}
		filter.DateFrom = from
	}
	if req.DateTo != "" {
		to, err := time.Parse("2006-01-02", req.DateTo)
		if err != nil {
			return filter, errors.New("date_to must be YYYY-MM-DD")
		}
		filter.DateTo = to
	}
	return filter, nil
}

// handlePredictionsToday serves today's predictions. fetch_h2h_on_demand=true
// reruns the pipeline with quota-gated head-to-head refreshes.
func (s *Server) handlePredictionsToday(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	fetchH2H := r.URL.Query().Get("fetch_h2h_on_demand") == "true"

	predictions, err := s.predictions.PredictToday(r.Context(), fetchH2H)
	if err != nil {
		s.serverError(w, r, err, "failed to generate predictions")
		return
	}

	writeData(w, http.StatusOK, "", predictions)
}

// handleTopPicks serves the ranked picks for today
func (s *Server) handleTopPicks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	picks, err := s.predictions.TopPicks(r.Context(), limit)
	if err != nil {
		s.serverError(w, r, err, "failed to rank predictions")
		return
	}

	writeData(w, http.StatusOK, "", picks)
}

// cleanupRequest is the POST /database/cleanup body
type cleanupRequest struct {
	Days int `json:"days" validate:"gte=1"`
}

// handleCleanup runs the retention sweep. The report fields are flattened
// into the response envelope alongside statusCode/status/message.
func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	req := cleanupRequest{Days: s.defaultRetentionDays}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if err := s.validate.Struct(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			writeError(w, http.StatusBadRequest, "days must be >= 1")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := s.retention.Cleanup(r.Context(), req.Days)
	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.serverError(w, r, err, "cleanup failed")
		return
	}

	s.audit.LogAdminAction("database_cleanup", clientIP(r), requestID(r), map[string]interface{}{
		"days_retained": report.DaysRetained,
		"total_deleted": report.TotalRecordsDeleted,
	})

	writeJSON(w, http.StatusOK, struct {
		StatusCode int    `json:"statusCode"`
		Status     string `json:"status"`
		Message    string `json:"message"`
		*service.CleanupReport
	}{
		StatusCode:    http.StatusOK,
		Status:        "success",
		Message:       "cleanup complete",
		CleanupReport: report,
	})
}

// handleStats serves per-collection storage statistics
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	stats, err := s.stats.Stats(r.Context())
	if err != nil {
		s.serverError(w, r, err, "failed to collect stats")
		return
	}

	s.audit.LogAdminAction("database_stats", clientIP(r), requestID(r), nil)
	writeData(w, http.StatusOK, "", stats)
}

// handleHealth reports liveness and store connectivity
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if err := s.db.HealthCheck(r.Context()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]interface{}{
		"status":    status,
		"service":   s.serviceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// serverError logs, audits and answers an unexpected failure
func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error, message string) {
	s.logger.WithError(err).WithField("request_id", requestID(r)).Error(message)
	s.audit.LogSecurityEvent(logger.EventServerError, message+": "+err.Error(), clientIP(r), requestID(r))
	writeError(w, http.StatusInternalServerError, message)
}
