package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/match-oracle/internal/logger"
	"github.com/yourusername/match-oracle/internal/metrics"
)

// adminKeyHeader carries the admin credential on protected endpoints.
const adminKeyHeader = "X-Admin-API-Key"

type contextKey string

const requestIDKey contextKey = "request_id"

// requestID returns the ID assigned to the request by the logging middleware
func requestID(r *http.Request) string {
	if id, ok := r.Context().Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// withRequestLogging assigns a request ID and logs method, path, status and
// latency for every request.
func (s *Server) withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.New().String()
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		w.Header().Set("X-Request-ID", id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r.WithContext(ctx))

		s.logger.WithFields(logrus.Fields{
			"request_id": id,
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     rec.status,
			"duration":   time.Since(start).String(),
			"client_ip":  clientIP(r),
		}).Info("Request handled")
	})
}

// withAdminAuth gates admin endpoints on the X-Admin-API-Key header.
// No configured server key fails closed with 503; a missing client key is
// 401; a wrong one is 403. Every failure is audited and counted.
func (s *Server) withAdminAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.adminAPIKey == "" {
			s.audit.LogSecurityEvent(logger.EventAuthNotConfigured,
				"admin endpoint hit with no admin key configured", clientIP(r), requestID(r))
			metrics.RecordAuthFailure("not_configured")
			writeError(w, http.StatusServiceUnavailable, "admin API not configured")
			return
		}

		provided := r.Header.Get(adminKeyHeader)
		if provided == "" {
			s.audit.LogSecurityEvent(logger.EventAuthMissing,
				"admin request without credential", clientIP(r), requestID(r))
			metrics.RecordAuthFailure("missing_key")
			writeError(w, http.StatusUnauthorized, "missing admin API key")
			return
		}

		if provided != s.adminAPIKey {
			s.audit.LogSecurityEvent(logger.EventAuthInvalid,
				"admin request with invalid credential", clientIP(r), requestID(r))
			metrics.RecordAuthFailure("invalid_key")
			writeError(w, http.StatusForbidden, "invalid admin API key")
			return
		}

		next(w, r)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
