package gitlab

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRateLimiter(t *testing.T) {
	rl := NewRateLimiter()
	require.NotNil(t, rl)
	assert.NotNil(t, rl.limiter)
	assert.Equal(t, DefaultBackoff, rl.defaultBackoff)
}

func TestRateLimiter_Wait(t *testing.T) {
	rl := NewRateLimiter()
	ctx := context.Background()

	// Burst requests should complete without blocking.
	for i := 0; i < BurstSize; i++ {
		require.NoError(t, rl.Wait(ctx))
	}
}

func TestRateLimiter_Wait_ContextCancelled(t *testing.T) {
	rl := NewRateLimiter()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rl.RecordRateLimitError(time.Minute)

	assert.ErrorIs(t, rl.Wait(ctx), context.Canceled)
}

func TestRateLimiter_RecordRateLimitError(t *testing.T) {
	rl := NewRateLimiter()

	rl.RecordRateLimitError(2 * time.Second)

	assert.WithinDuration(t, time.Now().Add(2*time.Second), rl.retryAt, 500*time.Millisecond)
}

func TestRateLimiter_Wait_BlocksUntilRetryAt(t *testing.T) {
	rl := NewRateLimiter()
	rl.RecordRateLimitError(50 * time.Millisecond)

	start := time.Now()
	require.NoError(t, rl.Wait(context.Background()))

	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestRateLimiter_RecordRateLimitError_DefaultBackoff(t *testing.T) {
	rl := NewRateLimiter()

	rl.RecordRateLimitError(-1)

	assert.WithinDuration(t, time.Now().Add(DefaultBackoff), rl.retryAt, time.Second)
}
