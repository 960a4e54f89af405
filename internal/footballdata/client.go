// Package footballdata provides the client for the Football-Data.org v4 API.
package footballdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yourusername/match-oracle/internal/config"
	"github.com/yourusername/match-oracle/internal/metrics"
)

// Client talks to the football data provider with retry, rate limiting and
// bounded exponential backoff. At most three retries; after that callers are
// expected to degrade rather than fail the request.
type Client struct {
	client  *retryablehttp.Client
	limiter *rate.Limiter
	baseURL string
	apiKey  string
	logger  *logrus.Logger
}

// NewClient creates a new provider client from configuration
func NewClient(cfg *config.FootballDataConfig, logger *logrus.Logger) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	retryClient.RetryMax = cfg.RetryAttempts
	retryClient.RetryWaitMin = 500 * time.Millisecond
	retryClient.RetryWaitMax = 10 * time.Second
	retryClient.CheckRetry = retryPolicy()
	retryClient.Logger = nil

	// Free tier allows 10 requests per minute
	perSecond := cfg.RequestsPerMinute / 60.0

	return &Client{
		client:  retryClient,
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		logger:  logger,
	}
}

// retryPolicy retries network errors, 429 and 5xx responses
func retryPolicy() retryablehttp.CheckRetry {
	return func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if err != nil {
			return true, err
		}
		switch resp.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true, nil
		}
		return false, nil
	}
}

// get executes a GET request against the provider and decodes the JSON body
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	reqURL := c.baseURL + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("X-Auth-Token", c.apiKey)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.RecordUpstreamRequest(endpoint, "error", time.Since(start).Seconds())
		return &RateLimitError{Endpoint: endpoint, Cause: err}
	}
	defer resp.Body.Close()

	if remaining := resp.Header.Get("X-Requests-Available-Minute"); remaining != "" {
		c.logger.WithField("remaining", remaining).Debug("Provider rate limit headroom")
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		metrics.RecordUpstreamRequest(endpoint, "http_error", time.Since(start).Seconds())
		return NewAPIError(resp.StatusCode, endpoint, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.RecordUpstreamRequest(endpoint, "decode_error", time.Since(start).Seconds())
		return fmt.Errorf("failed to decode response from %s: %w", endpoint, err)
	}

	metrics.RecordUpstreamRequest(endpoint, "ok", time.Since(start).Seconds())
	return nil
}

// GetCompetitions fetches all competitions available to the current plan
func (c *Client) GetCompetitions(ctx context.Context) ([]CompetitionEntry, error) {
	c.logger.Info("Fetching competitions from provider")

	var out CompetitionsResponse
	if err := c.get(ctx, "/competitions", nil, &out); err != nil {
		return nil, err
	}

	c.logger.WithField("count", len(out.Competitions)).Info("Fetched competitions")
	return out.Competitions, nil
}

// GetScheduledMatches fetches upcoming fixtures for a competition
func (c *Client) GetScheduledMatches(ctx context.Context, competitionCode string) (*MatchesResponse, error) {
	c.logger.WithField("competition", competitionCode).Info("Fetching scheduled matches")

	params := url.Values{}
	params.Set("status", "SCHEDULED")

	var out MatchesResponse
	if err := c.get(ctx, "/competitions/"+competitionCode+"/matches", params, &out); err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"competition": competitionCode,
		"count":       len(out.Matches),
	}).Info("Fetched scheduled matches")
	return &out, nil
}

// GetFinishedMatches fetches a competition's recently finished fixtures,
// used by the team-stats recompute
func (c *Client) GetFinishedMatches(ctx context.Context, competitionCode string, dateFrom, dateTo string) (*MatchesResponse, error) {
	params := url.Values{}
	params.Set("status", "FINISHED")
	if dateFrom != "" {
		params.Set("dateFrom", dateFrom)
	}
	if dateTo != "" {
		params.Set("dateTo", dateTo)
	}

	var out MatchesResponse
	if err := c.get(ctx, "/competitions/"+competitionCode+"/matches", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetHeadToHead fetches head-to-head statistics for a match. This is the
// quota-limited call: callers must hold a quota token before invoking it.
func (c *Client) GetHeadToHead(ctx context.Context, matchID, limit int) (*H2HResponse, error) {
	c.logger.WithField("match_id", matchID).Info("Fetching head-to-head data")

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	var out H2HResponse
	if err := c.get(ctx, "/matches/"+strconv.Itoa(matchID)+"/head2head", params, &out); err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"match_id": matchID,
		"analyzed": out.Aggregates.NumberOfMatches,
	}).Info("Fetched head-to-head data")
	return &out, nil
}
