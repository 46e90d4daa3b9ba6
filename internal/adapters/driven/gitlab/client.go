// Package gitlab implements the authenticated GitLab REST API caller.
package gitlab

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/gitlab-cli/internal/core/domain"
	"github.com/custodia-labs/gitlab-cli/internal/core/ports/driving"
	"github.com/custodia-labs/gitlab-cli/internal/logger"
)

const (
	apiPrefix = "api/v4/"

	defaultTimeout    = 60 * time.Second
	defaultMaxRetries = 2

	// RequestIDHeader carries a per-request correlation ID.
	RequestIDHeader = "X-Request-Id"
)

// Compile-time check.
var _ driving.APIClient = (*Client)(nil)

// Client issues bearer-authenticated requests against {host}/api/v4.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *RateLimiter
	userAgent  string
	maxRetries int
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	base       *http.Client
	limiter    *RateLimiter
	userAgent  string
	maxRetries int
}

// WithHTTPClient sets the underlying client wrapped by the bearer transport.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		o.base = client
	}
}

// WithRateLimiter replaces the default limiter.
func WithRateLimiter(limiter *RateLimiter) Option {
	return func(o *clientOptions) {
		o.limiter = limiter
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(o *clientOptions) {
		o.userAgent = ua
	}
}

// WithMaxRetries sets how many times a 429 response is retried.
func WithMaxRetries(n int) Option {
	return func(o *clientOptions) {
		o.maxRetries = n
	}
}

// NewClient creates a client for host that authenticates with token.
func NewClient(host, token string, opts ...Option) *Client {
	o := &clientOptions{
		base:       &http.Client{Timeout: defaultTimeout},
		userAgent:  "gitlab-cli",
		maxRetries: defaultMaxRetries,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.limiter == nil {
		o.limiter = NewRateLimiter()
	}

	// oauth2.NewClient picks the base client up from the context.
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, o.base)
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	httpClient := oauth2.NewClient(ctx, src)
	httpClient.Timeout = o.base.Timeout

	if host == "" {
		host = domain.DefaultHost
	}

	return &Client{
		baseURL:    strings.TrimRight(host, "/") + "/" + apiPrefix,
		httpClient: httpClient,
		limiter:    o.limiter,
		userAgent:  o.userAgent,
		maxRetries: o.maxRetries,
	}
}

// NewClientFactory returns a driving.APIClientFactory producing Clients
// configured with opts.
func NewClientFactory(opts ...Option) driving.APIClientFactory {
	return func(host, token string) driving.APIClient {
		return NewClient(host, token, opts...)
	}
}

// URL resolves endpoint against the API base. The endpoint may be given
// with or without a leading slash and with or without the /api/v4/ prefix.
func (c *Client) URL(endpoint string) string {
	endpoint = strings.TrimPrefix(endpoint, "/")
	endpoint = strings.TrimPrefix(endpoint, apiPrefix)
	return c.baseURL + endpoint
}

// Raw sends method to endpoint and returns the response body.
// body, when non-nil, is sent as application/json.
func (c *Client) Raw(ctx context.Context, method, endpoint string, body []byte) ([]byte, error) {
	method = strings.ToUpper(method)
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMethod, method)
	}

	target := c.URL(endpoint)
	for attempt := 0; ; attempt++ {
		respBody, retryAfter, err := c.do(ctx, method, target, body)
		if err == nil {
			return respBody, nil
		}
		if retryAfter == nil || attempt >= c.maxRetries {
			return nil, err
		}
		c.limiter.RecordRateLimitError(*retryAfter)
		logger.Warn("rate limited by %s, retrying (attempt %d of %d)", target, attempt+1, c.maxRetries)
	}
}

// do performs one request. On a 429 it also returns the server's
// Retry-After hint (negative when absent).
func (c *Client) do(ctx context.Context, method, target string, body []byte) ([]byte, *time.Duration, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, nil, fmt.Errorf("rate limit wait: %w", err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log := logger.WithField("request_id", requestID)
	log.Debugf("%s %s", method, target)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read response: %w", err)
	}

	log.WithField("status", resp.StatusCode).Debugf("completed in %s", time.Since(start).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
			return nil, &retryAfter, apiErr
		}
		return nil, nil, apiErr
	}

	return respBody, nil, nil
}

// parseRetryAfter reads a delay in seconds or an HTTP date.
// Returns -1 when the header is missing or unparseable.
func parseRetryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return -1
	}
	if secs, err := strconv.Atoi(value); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
		return 0
	}
	return -1
}
