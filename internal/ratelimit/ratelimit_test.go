package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrawStaysWithinRange(t *testing.T) {
	min, max := 2*time.Millisecond, 10*time.Millisecond

	for i := 0; i < 100; i++ {
		d := draw(min, max)
		assert.GreaterOrEqual(t, d, min)
		assert.Less(t, d, max)
	}
}

func TestDrawDegenerateRange(t *testing.T) {
	assert.Equal(t, 5*time.Millisecond, draw(5*time.Millisecond, 5*time.Millisecond))
}

func TestWaitItemBlocksForDelay(t *testing.T) {
	throttle := New(20*time.Millisecond, 21*time.Millisecond, 0, 0)

	// First wait establishes the baseline, second one must pace.
	require.NoError(t, throttle.WaitItem(context.Background()))
	start := time.Now()
	require.NoError(t, throttle.WaitItem(context.Background()))

	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}

func TestWaitHonorsCancellation(t *testing.T) {
	throttle := New(time.Minute, 2*time.Minute, time.Minute, 2*time.Minute)
	require.NoError(t, throttle.WaitItem(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := throttle.WaitItem(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWaitPageUsesItsOwnRange(t *testing.T) {
	throttle := New(0, 0, 20*time.Millisecond, 21*time.Millisecond)

	require.NoError(t, throttle.WaitPage(context.Background()))
	start := time.Now()
	require.NoError(t, throttle.WaitPage(context.Background()))

	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}
