package driving

import "context"

// APIClient issues authenticated requests against the GitLab REST API.
type APIClient interface {
	// Raw sends a request to endpoint, with or without the /api/v4 prefix,
	// and returns the response body. body may be nil.
	Raw(ctx context.Context, method, endpoint string, body []byte) ([]byte, error)
}

// APIClientFactory builds an APIClient for a host and bearer token.
type APIClientFactory func(host, token string) APIClient
