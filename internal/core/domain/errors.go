package domain

import "errors"

// Configuration errors. These are user-facing and tell the user which
// command fixes them.
var (
	// ErrNoToken indicates neither an OAuth2 record nor a static token is configured.
	ErrNoToken = errors.New("no token configured. Run: gitlab auth login (or gitlab config --token <token>)")

	// ErrNoProject indicates no project was given and no default is configured.
	ErrNoProject = errors.New("no project specified. Use --project or run: gitlab config --project <project>")

	// ErrNoOAuth2Config indicates a refresh was requested without an OAuth2 record.
	ErrNoOAuth2Config = errors.New("no OAuth2 configuration found. Run: gitlab auth login")

	// ErrStateMismatch indicates the callback state differs from the one sent.
	ErrStateMismatch = errors.New("OAuth state mismatch in callback; restart the login")
)
