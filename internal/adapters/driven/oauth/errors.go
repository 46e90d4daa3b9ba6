package oauth

import (
	"errors"
	"fmt"
)

// Callback parse errors.
var (
	// ErrMalformedRequest indicates the callback request line could not be split
	// into method and path.
	ErrMalformedRequest = errors.New("invalid HTTP request in callback")

	// ErrNoQueryString indicates the callback path carried no query string.
	ErrNoQueryString = errors.New("no query string in callback")

	// ErrNoAuthorizationCode indicates the query string had neither a code nor an error.
	ErrNoAuthorizationCode = errors.New("no authorization code in callback")
)

// AuthorizationError is the error reported by the provider on the redirect,
// e.g. when the user denies access.
type AuthorizationError struct {
	// Code is the OAuth error code, e.g. access_denied.
	Code string
	// Description is the provider's human-readable explanation.
	Description string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("authorization failed: %s - %s", e.Code, e.Description)
}

// AuthenticationError represents a failure of the local login machinery.
type AuthenticationError struct {
	// Type identifies the failure, e.g. port_in_use.
	Type string
	// Message is a human-readable message describing the error.
	Message string
	// Cause is the underlying error.
	Cause error
}

func (e *AuthenticationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Cause
}

// Is matches on Type so callers can use errors.Is with the sentinels below.
func (e *AuthenticationError) Is(target error) bool {
	var other *AuthenticationError
	if !errors.As(target, &other) {
		return false
	}
	return e.Type == other.Type
}

// Local login failures.
var (
	// ErrPortInUse indicates the callback address could not be bound.
	ErrPortInUse = &AuthenticationError{
		Type:    "port_in_use",
		Message: "failed to bind the OAuth callback address; another instance may be running",
	}

	// ErrCallbackFailed indicates the callback connection could not be read or answered.
	ErrCallbackFailed = &AuthenticationError{
		Type:    "callback_failed",
		Message: "failed to receive the OAuth callback",
	}
)

// newAuthenticationError copies a base error and attaches a cause.
func newAuthenticationError(base *AuthenticationError, cause error) *AuthenticationError {
	return &AuthenticationError{
		Type:    base.Type,
		Message: base.Message,
		Cause:   cause,
	}
}
