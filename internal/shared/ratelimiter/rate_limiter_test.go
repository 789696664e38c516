package ratelimiter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_AllowsUpToLimit(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(3, time.Hour)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, rl.Wait(ctx))
	}
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 3, rl.count)
}

func TestRateLimiter_ResetsAfterInterval(t *testing.T) {
	t.Parallel()

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, time.Minute)
	rl.now = func() time.Time { return clock }
	rl.lastReset = clock

	require.NoError(t, rl.Wait(context.Background()))
	clock = clock.Add(2 * time.Minute)
	require.NoError(t, rl.Wait(context.Background()))

	assert.Equal(t, 1, rl.count)
	assert.Equal(t, clock, rl.lastReset)
}

func TestRateLimiter_WaitHonoursCancellation(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(1, time.Hour)
	require.NoError(t, rl.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := rl.Wait(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	assert.Equal(t, 1, rl.count)
}

func TestRateLimiter_ZeroLimitNeverBlocks(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(0, time.Hour)
	for i := 0; i < 10; i++ {
		require.NoError(t, rl.Wait(context.Background()))
	}
}
