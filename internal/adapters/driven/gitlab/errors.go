package gitlab

import (
	"errors"
	"fmt"
	"net/http"
)

// Error types for GitLab REST API responses.
var (
	// ErrUnauthorised indicates the access token is invalid or expired.
	ErrUnauthorised = errors.New("gitlab: unauthorised")

	// ErrForbidden indicates the user lacks permission for the requested resource.
	ErrForbidden = errors.New("gitlab: forbidden")

	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("gitlab: not found")

	// ErrRateLimited indicates the request was throttled.
	ErrRateLimited = errors.New("gitlab: rate limited")

	// ErrBadRequest indicates the request was malformed.
	ErrBadRequest = errors.New("gitlab: bad request")

	// ErrServerError indicates a server-side error.
	ErrServerError = errors.New("gitlab: server error")

	// ErrUnsupportedMethod indicates an HTTP method the API caller does not issue.
	ErrUnsupportedMethod = errors.New("gitlab: unsupported HTTP method")
)

// APIError is a non-2xx response. The raw body is kept for diagnosis.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

// Unwrap returns the sentinel matching the status code, if any.
func (e *APIError) Unwrap() error {
	return WrapError(e.StatusCode)
}

// WrapError converts an HTTP status code to an appropriate error.
func WrapError(statusCode int) error {
	switch statusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorised
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusBadRequest:
		return ErrBadRequest
	default:
		if statusCode >= 500 {
			return ErrServerError
		}
		return nil
	}
}
