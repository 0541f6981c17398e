package utils

import (
	"context"
	"fmt"
	"time"
)

// Retry runs fn up to attempts times, stopping at the first success.
// Between failures it waits base, 2*base, 4*base... and gives up early if
// ctx is cancelled. The returned error wraps the last failure.
//
//	err := utils.Retry(ctx, 3, 200*time.Millisecond, func() error {
//	    return writer.Insert(ctx, pet)
//	})
func Retry(ctx context.Context, attempts int, base time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if attempt < attempts {
			wait := base << uint(attempt-1)
			Warn("Attempt %d/%d failed: %v, retrying in %v", attempt, attempts, lastErr, wait)
			if err := Sleep(ctx, wait); err != nil {
				return fmt.Errorf("retry interrupted after %d attempts: %w", attempt, lastErr)
			}
		}
	}

	return fmt.Errorf("all %d attempts failed, last error: %w", attempts, lastErr)
}
