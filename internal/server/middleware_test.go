package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/match-oracle/internal/logger"
)

func testServer(adminKey string) *Server {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return &Server{
		serviceName: "match-oracle",
		adminAPIKey: adminKey,
		logger:      log,
		audit:       logger.NewAuditLogger(log),
	}
}

func adminProbe(t *testing.T, s *Server, key string) *httptest.ResponseRecorder {
	t.Helper()

	called := false
	handler := s.withAdminAuth(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/database/stats", nil)
	if key != "" {
		req.Header.Set(adminKeyHeader, key)
	}
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		assert.False(t, called, "handler must not run on auth failure")
	}
	return rec
}

func TestAdminAuthNotConfigured(t *testing.T) {
	rec := adminProbe(t, testServer(""), "anything")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAdminAuthMissingKey(t *testing.T) {
	rec := adminProbe(t, testServer("secret"), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminAuthInvalidKey(t *testing.T) {
	rec := adminProbe(t, testServer("secret"), "wrong")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminAuthValidKey(t *testing.T) {
	rec := adminProbe(t, testServer("secret"), "secret")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminAuthFailureEnvelope(t *testing.T) {
	rec := adminProbe(t, testServer("secret"), "wrong")

	var body envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusForbidden, body.StatusCode)
	assert.Equal(t, "error", body.Status)
	assert.NotEmpty(t, body.Message)
}

func TestRequestLoggingAssignsRequestID(t *testing.T) {
	s := testServer("")

	var seen string
	handler := s.withRequestLogging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestID(r)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))
}
