package worker

import (
	"context"
	"time"
)

// retryBase is the first backoff step; tests shorten it.
var retryBase = time.Second

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = base, 3 = 2×base.
// Returns nil if any attempt succeeds; last error otherwise. fn may return
// a permanent error through stop to end the loop early.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) (stop bool, err error)) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := retryBase << uint(i-1)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		stop, err := fn(i)
		if err == nil {
			return nil
		}
		lastErr = err
		if stop {
			break
		}
	}
	return lastErr
}
