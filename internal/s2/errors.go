package s2

import (
	"errors"
	"fmt"
)

// Common errors returned by the Semantic Scholar client.
var (
	// ErrNotFound indicates the paper or search has no match.
	ErrNotFound = errors.New("not found in Semantic Scholar")

	// ErrRateLimited indicates the API answered 429 Too Many Requests.
	ErrRateLimited = errors.New("Semantic Scholar rate limit exceeded")

	// ErrForbidden indicates the API answered 403 Forbidden.
	ErrForbidden = errors.New("Semantic Scholar request forbidden")

	// ErrTimeout indicates a gateway or client timeout.
	ErrTimeout = errors.New("Semantic Scholar request timed out")

	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error communicating with Semantic Scholar")

	// ErrInvalidResponse indicates an unexpected API response.
	ErrInvalidResponse = errors.New("invalid response from Semantic Scholar")
)

// APIError represents a non-retryable HTTP error from the API.
type APIError struct {
	StatusCode int
	Message    string
	PaperID    string
}

func (e *APIError) Error() string {
	if e.PaperID != "" {
		return fmt.Sprintf("Semantic Scholar API error (status %d): %s (paper: %s)", e.StatusCode, e.Message, e.PaperID)
	}
	return fmt.Sprintf("Semantic Scholar API error (status %d): %s", e.StatusCode, e.Message)
}

// IsNotFound returns true if the error indicates a missing paper.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return false
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}

// IsRetryable reports whether err belongs to the default retryable set:
// rate limited, forbidden or timed out.
func IsRetryable(err error) bool {
	return IsRateLimited(err) || errors.Is(err, ErrForbidden) || errors.Is(err, ErrTimeout)
}
