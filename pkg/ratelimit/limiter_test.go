package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedDelayWaits(t *testing.T) {
	fd := NewFixedDelay(20 * time.Millisecond)

	start := time.Now()
	require.NoError(t, fd.Wait(context.Background()))
	require.NoError(t, fd.Wait(context.Background()))

	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
	waits, waited := fd.Stats()
	assert.Equal(t, 2, waits)
	assert.GreaterOrEqual(t, waited, 40*time.Millisecond)
}

func TestFixedDelayZero(t *testing.T) {
	fd := NewFixedDelay(0)

	start := time.Now()
	for i := 0; i < 100; i++ {
		require.NoError(t, fd.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), time.Second)
}

func TestFixedDelayNegativeClamped(t *testing.T) {
	assert.Equal(t, time.Duration(0), NewFixedDelay(-time.Second).Delay())
}

func TestFixedDelayCancelled(t *testing.T) {
	fd := NewFixedDelay(time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := fd.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFixedDelayAlreadyCancelled(t *testing.T) {
	fd := NewFixedDelay(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, fd.Wait(ctx), context.Canceled)
	waits, _ := fd.Stats()
	assert.Equal(t, 0, waits)
}

func TestFixedDelayReset(t *testing.T) {
	fd := NewFixedDelay(0)
	_ = fd.Wait(context.Background())
	fd.Reset()

	waits, waited := fd.Stats()
	assert.Zero(t, waits)
	assert.Zero(t, waited)
}

func TestFixedDelayImplementsLimiter(t *testing.T) {
	var _ Limiter = NewFixedDelay(time.Millisecond)
}
