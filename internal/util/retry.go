package util

import (
	"context"
	"errors"
	"time"
)

// BackoffDelay returns the wait before retry number attempt (starting at 0):
// initial, 2*initial, 4*initial and so on.
func BackoffDelay(attempt int, initial time.Duration) time.Duration {
	if attempt <= 0 {
		return initial
	}
	if attempt > 16 {
		attempt = 16
	}
	return initial << attempt
}

// RetryWithBackoff calls fn once and then up to retries more times, sleeping
// BackoffDelay between attempts. Context errors abort immediately.
func RetryWithBackoff[T any](ctx context.Context, retries int, initial time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if retries < 0 {
		retries = 0
	}
	var zero T
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(BackoffDelay(attempt-1, initial))
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
		}
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return zero, err
		}
		lastErr = err
	}
	return zero, lastErr
}
