package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Common errors returned by the catalog client.
var (
	// ErrNotFound indicates the work (or a rendering of it) was not found.
	ErrNotFound = errors.New("not found in catalog")

	// ErrRateLimited indicates the catalog's rate limit has been exceeded.
	ErrRateLimited = errors.New("catalog rate limit exceeded")

	// ErrNetworkError indicates a transport failure or timeout.
	ErrNetworkError = errors.New("network error communicating with catalog")

	// ErrInvalidResponse indicates an unexpected or empty catalog response.
	ErrInvalidResponse = errors.New("invalid response from catalog")

	// ErrNoAcceptableMatch indicates that no search candidate cleared the
	// acceptance rule of the active matcher.
	ErrNoAcceptableMatch = errors.New("no acceptable catalog match")

	// ErrUnsupportedFormat indicates a citation format outside the supported set.
	ErrUnsupportedFormat = errors.New("unsupported citation format")
)

// APIError represents a non-success HTTP status from the catalog.
type APIError struct {
	StatusCode int
	Code       string // not_found, rate_limited, api_error
	Message    string
	DOI        string // For context in DOI-related errors
}

func (e *APIError) Error() string {
	if e.DOI != "" {
		return fmt.Sprintf("catalog API error (status %d, code %s): %s (doi: %s)", e.StatusCode, e.Code, e.Message, e.DOI)
	}
	return fmt.Sprintf("catalog API error (status %d, code %s): %s", e.StatusCode, e.Code, e.Message)
}

// Unwrap maps well-known statuses onto the package sentinels.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return nil
	}
}

// IsNotFound returns true if the error indicates a resource was not found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsUnavailable returns true if the error means the catalog could not
// answer: transport failure, timeout, non-success status, or a malformed body.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrNetworkError) ||
		errors.Is(err, ErrInvalidResponse) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled)
}
