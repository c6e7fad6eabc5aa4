// Package retry provides a small composable retry policy for network calls.
package retry

import (
	"context"
	"time"
)

// DelayFunc computes the delay before the given retry attempt.
// attempt starts at 1 for the delay after the first failure.
type DelayFunc func(attempt int) time.Duration

// Linear returns a delay function growing linearly: attempt x base.
func Linear(base time.Duration) DelayFunc {
	return func(attempt int) time.Duration {
		return time.Duration(attempt) * base
	}
}

// Policy retries an operation up to MaxAttempts times, sleeping per Delay
// between attempts. The zero value performs a single attempt.
type Policy struct {
	MaxAttempts int
	Delay       DelayFunc
	// ShouldRetry filters errors: returning false stops retrying and
	// surfaces the error immediately. Nil retries every error.
	ShouldRetry func(error) bool
}

// Do runs fn until it succeeds, attempts are exhausted, or ctx is canceled.
// The last error is returned on exhaustion; context errors surface as-is.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = ctx.Err(); err != nil {
			return err
		}
		if err = fn(ctx); err == nil {
			return nil
		}
		if p.ShouldRetry != nil && !p.ShouldRetry(err) {
			return err
		}
		if attempt == attempts {
			break
		}
		if p.Delay != nil {
			select {
			case <-time.After(p.Delay(attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return err
}
