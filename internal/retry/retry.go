package retry

import (
	"context"
	"fmt"
	"time"
)

type RetryConfig struct {
	MaxAttempts int
	MinDelay    time.Duration
	MaxDelay    time.Duration
	// AttemptTimeout bounds each call to fn. Zero means no per-attempt bound.
	AttemptTimeout time.Duration
	// Retryable decides whether an error is worth another attempt.
	// Nil retries every error.
	Retryable func(error) bool
}

// Delay is the wait after the given failed attempt (1-based): MinDelay
// doubled per attempt, capped at MaxDelay.
func (c RetryConfig) Delay(attempt int) time.Duration {
	d := c.MinDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if c.MaxDelay > 0 && d >= c.MaxDelay {
			return c.MaxDelay
		}
	}
	if c.MaxDelay > 0 && d > c.MaxDelay {
		return c.MaxDelay
	}
	return d
}

// WithRetry calls fn until it succeeds, returns a non-retryable error, the
// attempts run out or ctx is done.
func WithRetry(ctx context.Context, config RetryConfig, fn func(ctx context.Context) error) error {
	attempts := max(1, config.MaxAttempts)

	for attempt := 1; ; attempt++ {
		err := callOnce(ctx, config.AttemptTimeout, fn)
		if err == nil {
			return nil
		}

		if config.Retryable != nil && !config.Retryable(err) {
			return err
		}
		if attempt == attempts {
			return fmt.Errorf("failed after %d attempts: %w", attempts, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(config.Delay(attempt)):
		}
	}
}

func callOnce(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) error) error {
	if timeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(ctx)
}
