package footballdata

import "fmt"

// APIError represents a non-retryable error response from the provider
type APIError struct {
	StatusCode int
	Endpoint   string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("football-data API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// RateLimitError represents a 429 that survived every retry attempt
type RateLimitError struct {
	Endpoint string
	Cause    error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("football-data rate limit exhausted for %s: %v", e.Endpoint, e.Cause)
}

func (e *RateLimitError) Unwrap() error {
	return e.Cause
}

// NewAPIError creates a new API error
func NewAPIError(statusCode int, endpoint, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
	}
}
