package llmclient

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNoAPIKey indicates the API key is missing.
	ErrNoAPIKey = errors.New("API key is required")

	// ErrNoModel indicates no model was specified.
	ErrNoModel = errors.New("model must be specified")

	// ErrEmptyMessages indicates a chat or stream call with no messages.
	ErrEmptyMessages = errors.New("messages list cannot be empty")

	// ErrEmptyResponse indicates the API returned no choices.
	ErrEmptyResponse = errors.New("empty response from API")
)

// APIError represents an error response from the completions API.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
	Code       string
	RetryAfter string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("API error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
}

// IsRetryable reports whether the request may be retried: server errors and
// rate limits are transient, everything else is not.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// IsRateLimit reports whether this is a rate-limit error.
func (e *APIError) IsRateLimit() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// IsAuthError reports whether this is an authentication failure. Auth errors
// are never retried and propagate immediately.
func (e *APIError) IsAuthError() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}
