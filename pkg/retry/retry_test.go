package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "catalogscraper/pkg/errors"
	"catalogscraper/pkg/logger"
)

func fastConfig(maxAttempts int) *Config {
	return &Config{
		MaxAttempts: maxAttempts,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     func(err error) bool { return true },
	}
}

func TestExponentialBackoff(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   1 * time.Second,
		Multiplier: 2.0,
	}

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 0},
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{5, 1 * time.Second},
		{9, 1 * time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, backoff.NextDelay(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestExponentialBackoffJitterBounds(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:    100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.3,
	}

	for i := 0; i < 50; i++ {
		d := backoff.NextDelay(2)
		assert.GreaterOrEqual(t, d, 140*time.Millisecond)
		assert.LessOrEqual(t, d, 260*time.Millisecond)
	}
}

func TestLinearBackoff(t *testing.T) {
	backoff := &LinearBackoff{
		BaseDelay: time.Second,
		Step:      time.Second,
		MaxDelay:  3 * time.Second,
	}
	assert.Equal(t, time.Duration(0), backoff.NextDelay(0))
	assert.Equal(t, time.Second, backoff.NextDelay(1))
	assert.Equal(t, 2*time.Second, backoff.NextDelay(2))
	assert.Equal(t, 3*time.Second, backoff.NextDelay(10))
}

func TestNetworkErrorsBackOffLinearly(t *testing.T) {
	strategy, ok := DefaultTypeBackoff()[errs.ErrorTypeNetwork]
	require.True(t, ok)
	require.IsType(t, &LinearBackoff{}, strategy)

	for i := 0; i < 50; i++ {
		first := strategy.NextDelay(1)
		assert.GreaterOrEqual(t, first, 900*time.Millisecond)
		assert.LessOrEqual(t, first, 1100*time.Millisecond)

		third := strategy.NextDelay(3)
		assert.GreaterOrEqual(t, third, 4500*time.Millisecond)
		assert.LessOrEqual(t, third, 5500*time.Millisecond)

		capped := strategy.NextDelay(100)
		assert.LessOrEqual(t, capped, 16500*time.Millisecond)
	}
}

func TestDoSucceedsAfterRetries(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary error")
		}
		return nil
	}, fastConfig(5))

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDoMaxAttemptsExceeded(t *testing.T) {
	attempts := 0
	persistent := errors.New("persistent error")
	var retried []int

	cfg := fastConfig(3)
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		retried = append(retried, attempt)
	}

	err := Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return persistent
	}, cfg)

	require.Error(t, err)
	assert.ErrorIs(t, err, persistent)
	assert.Equal(t, 3, attempts)
	// no wait after the final attempt
	assert.Equal(t, []int{1, 2}, retried)
}

func TestDoNonRetryableError(t *testing.T) {
	attempts := 0
	notFound := errs.New(errs.ErrorTypeNotFound, 404, "page missing")

	cfg := fastConfig(5)
	cfg.RetryIf = DefaultRetryIf

	err := Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return notFound
	}, cfg)

	assert.Same(t, notFound, err)
	assert.Equal(t, 1, attempts)
}

func TestDoContextCancelledDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	cfg := &Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: time.Hour},
		OnRetry:     func(int, error, time.Duration) { cancel() },
	}

	err := Do(ctx, func(ctx context.Context) error {
		return errs.New(errs.ErrorTypeServerError, 503, "unavailable")
	}, cfg)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestDoUsesTypeBackoff(t *testing.T) {
	var delays []time.Duration
	cfg := fastConfig(3)
	cfg.TypeBackoff = map[errs.ErrorType]BackoffStrategy{
		errs.ErrorTypeRateLimit: &ConstantBackoff{Delay: 2 * time.Millisecond},
	}
	cfg.OnRetry = func(_ int, _ error, d time.Duration) { delays = append(delays, d) }

	calls := 0
	_ = Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return errs.New(errs.ErrorTypeRateLimit, 429, "slow down")
		}
		return errors.New("other")
	}, cfg)

	assert.Equal(t, []time.Duration{2 * time.Millisecond, time.Millisecond}, delays)
}

func TestDoWithResult(t *testing.T) {
	attempts := 0
	got, err := DoWithResult(context.Background(), func(ctx context.Context) (string, error) {
		attempts++
		if attempts == 1 {
			return "", errors.New("flaky")
		}
		return "page", nil
	}, fastConfig(2))

	require.NoError(t, err)
	assert.Equal(t, "page", got)
}

func TestPageConfig(t *testing.T) {
	cfg := PageConfig(0, logger.NewTestLogger())
	assert.Equal(t, 1, cfg.MaxAttempts)

	cfg = PageConfig(2, nil)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.NotNil(t, cfg.Logger)
}

func TestDefaultRetryIf(t *testing.T) {
	assert.False(t, DefaultRetryIf(nil))
	assert.False(t, DefaultRetryIf(context.Canceled))
	assert.True(t, DefaultRetryIf(errs.New(errs.ErrorTypeNetwork, 0, "reset")))
	assert.False(t, DefaultRetryIf(errs.New(errs.ErrorTypeParsing, 200, "bad html")))
	assert.True(t, DefaultRetryIf(errors.New("unknown")))
}

func TestWait(t *testing.T) {
	assert.NoError(t, Wait(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Wait(ctx, time.Minute), context.Canceled)
}
