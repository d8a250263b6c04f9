package common

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/platewise/internal/service"
)

var (
	// ErrRateLimit indicates that a remote API rejected the request for rate reasons.
	ErrRateLimit = errors.New("rate limit exceeded")
	// ErrMaxRetries indicates that all retry attempts have been exhausted.
	ErrMaxRetries = errors.New("max retries exceeded")
)

// RetryableError wraps an error with retry-specific metadata.
type RetryableError struct {
	Err       error
	Retryable bool
}

func (e *RetryableError) Error() string {
	return e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	return &RetryableError{Err: err, Retryable: false}
}

// IsRetryable reports whether err is worth another attempt: rate limits,
// deadlines and errors explicitly marked retryable.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimit) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}
	return false
}

// RateLimitError is a rate limit rejection that may say how long to wait.
// It matches ErrRateLimit with errors.Is.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s (retry after %s)", ErrRateLimit, e.RetryAfter)
	}
	return ErrRateLimit.Error()
}

// Is reports whether target is ErrRateLimit.
func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimit
}

// RateLimited returns a rate limit error asking to wait retryAfter. Zero
// means the server gave no hint.
func RateLimited(retryAfter time.Duration) error {
	return &RateLimitError{RetryAfter: retryAfter}
}

// backoff yields the wait before each retry: exponential from
// InitialDelay, capped at MaxDelay. Rate limits wait the server's hint, or
// MaxDelay without one.
type backoff struct {
	opts service.RetryOptions
	next time.Duration
}

func newBackoff(opts service.RetryOptions) *backoff {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = 100 * time.Millisecond
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = 30 * time.Second
	}
	if opts.Multiplier <= 0 {
		opts.Multiplier = 2.0
	}
	return &backoff{opts: opts, next: opts.InitialDelay}
}

func (b *backoff) delay(err error) time.Duration {
	d := b.next
	b.next = min(time.Duration(float64(b.next)*b.opts.Multiplier), b.opts.MaxDelay)

	var rateErr *RateLimitError
	switch {
	case errors.As(err, &rateErr) && rateErr.RetryAfter > 0:
		return min(rateErr.RetryAfter, b.opts.MaxDelay)
	case errors.Is(err, ErrRateLimit):
		return b.opts.MaxDelay
	}
	return d
}

// WithRetry runs operation until it succeeds, returns a Permanent error,
// runs out of attempts or ctx is done.
func WithRetry(ctx context.Context, operation func() error, opts service.RetryOptions) error {
	b := newBackoff(opts)
	attempts := b.opts.MaxAttempts

	for attempt := 1; ; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}

		var retryableErr *RetryableError
		if errors.As(err, &retryableErr) && !retryableErr.Retryable {
			return err
		}
		if attempt >= attempts {
			return fmt.Errorf("%w after %d attempts: %w", ErrMaxRetries, attempts, err)
		}

		wait := b.delay(err)
		slog.Warn("Operation failed, retrying",
			"attempt", attempt,
			"max_attempts", attempts,
			"delay", wait,
			"error", err)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
