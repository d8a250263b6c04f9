package common

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Veraticus/platewise/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(attempts int) service.RetryOptions {
	return service.RetryOptions{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
		Multiplier:   2,
	}
}

func TestWithRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("temporary")
		}
		return nil
	}, fastRetry(5))

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_PermanentStopsImmediately(t *testing.T) {
	calls := 0
	boom := errors.New("bad request")
	err := WithRetry(context.Background(), func() error {
		calls++
		return Permanent(boom)
	}, fastRetry(5))

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		return ErrRateLimit
	}, fastRetry(2))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMaxRetries)
	assert.ErrorIs(t, err, ErrRateLimit)
	assert.Equal(t, 2, calls)
}

func TestWithRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithRetry(ctx, func() error {
		return errors.New("temporary")
	}, service.RetryOptions{MaxAttempts: 3, InitialDelay: time.Second})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestBackoff_Delay(t *testing.T) {
	b := newBackoff(service.RetryOptions{InitialDelay: 10 * time.Millisecond, MaxDelay: 35 * time.Millisecond, Multiplier: 2})
	plain := errors.New("temporary")

	assert.Equal(t, 10*time.Millisecond, b.delay(plain))
	assert.Equal(t, 20*time.Millisecond, b.delay(plain))
	assert.Equal(t, 35*time.Millisecond, b.delay(plain))
	assert.Equal(t, 35*time.Millisecond, b.delay(plain))

	b = newBackoff(service.RetryOptions{InitialDelay: time.Millisecond, MaxDelay: time.Second})
	assert.Equal(t, time.Second, b.delay(ErrRateLimit))
	assert.Equal(t, 200*time.Millisecond, b.delay(RateLimited(200*time.Millisecond)))
	assert.Equal(t, time.Second, b.delay(RateLimited(time.Minute)))
	assert.Equal(t, time.Second, b.delay(fmt.Errorf("wrapped: %w", RateLimited(0))))
}

func TestRateLimitError(t *testing.T) {
	err := RateLimited(2 * time.Second)
	assert.ErrorIs(t, err, ErrRateLimit)
	assert.Contains(t, err.Error(), "retry after 2s")
	assert.Equal(t, ErrRateLimit.Error(), RateLimited(0).Error())
	assert.True(t, IsRetryable(err))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrRateLimit))
	assert.True(t, IsRetryable(context.DeadlineExceeded))
	assert.True(t, IsRetryable(&RetryableError{Err: errors.New("x"), Retryable: true}))
	assert.False(t, IsRetryable(Permanent(errors.New("x"))))
	assert.False(t, IsRetryable(errors.New("plain")))
}

func TestUserError(t *testing.T) {
	inner := errors.New("disk full")
	err := NewUserError("Could not save history", inner)

	assert.Equal(t, "Could not save history: disk full", err.Error())
	assert.ErrorIs(t, err, inner)

	var userErr *UserError
	require.True(t, errors.As(err, &userErr))
	assert.Equal(t, "Could not save history", userErr.UserMessage)
	assert.Equal(t, "bare", NewUserError("bare", nil).Error())
}

func TestDescribe(t *testing.T) {
	inner := errors.New("connection refused")

	assert.Empty(t, Describe(nil))
	assert.Equal(t, "connection refused", Describe(inner))
	assert.Equal(t, "Service down\n  connection refused",
		Describe(fmt.Errorf("analyze: %w", NewUserError("Service down", inner))))
	assert.Equal(t, "Just this", Describe(NewUserError("Just this", nil)))
}

func TestParseLevelAndLogger(t *testing.T) {
	_, err := ParseLevel("verbose")
	assert.ErrorIs(t, err, ErrInvalidConfig)

	level, err := ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, "WARN", level.String())

	_, err = NewLogger(nil, level, "xml")
	assert.ErrorIs(t, err, ErrInvalidConfig)

	logger, err := NewLogger(nil, level, "json")
	require.NoError(t, err)
	assert.NotNil(t, logger)
}
