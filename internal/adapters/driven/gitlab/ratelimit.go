package gitlab

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Rate limit configuration for the GitLab API.
// gitlab.com allows 2000 authenticated requests per minute; self-managed
// instances are often stricter, so stay well below that.
const (
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond = 10.0
	// BurstSize is the maximum burst size.
	BurstSize = 20
	// DefaultBackoff applies when a 429 carries no usable Retry-After.
	DefaultBackoff = 60 * time.Second
)

// RateLimiter provides client-side rate limiting for GitLab API requests.
// It uses a token bucket with a backoff window set by 429 responses.
type RateLimiter struct {
	mu             sync.Mutex
	limiter        *rate.Limiter
	retryAt        time.Time
	defaultBackoff time.Duration
}

// NewRateLimiter creates a rate limiter with the default limits.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		limiter:        rate.NewLimiter(rate.Limit(RequestsPerSecond), BurstSize),
		defaultBackoff: DefaultBackoff,
	}
}

// Wait blocks until a request can be made without exceeding the rate limit.
// It also respects any backoff period set by RecordRateLimitError.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if time.Now().Before(retryAt) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(retryAt)):
		}
	}

	return r.limiter.Wait(ctx)
}

// RecordRateLimitError sets a backoff period after a 429 response.
// A negative retryAfter means the server gave no hint.
func (r *RateLimiter) RecordRateLimitError(retryAfter time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if retryAfter < 0 {
		retryAfter = r.defaultBackoff
	}

	r.retryAt = time.Now().Add(retryAfter)
}
