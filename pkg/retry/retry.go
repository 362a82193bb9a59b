package retry

import (
	"context"
	"time"
)

type fn func(ctx context.Context) error
type ShouldRetry func(err error, attempt int) bool

// Always retries every error.
func Always(error, int) bool {
	return true
}

// WrapWithRetry - wraps the given function, retries it if it fails and shouldRetry returns true. Exits if errors rate
// is above the threshold: more than rate errors within one second. Waits backoff between attempts.
func WrapWithRetry(f fn, shouldRetry ShouldRetry, rate float32, backoff time.Duration,
) func(ctx context.Context) error {
	size := int(rate + 1)
	var errorTimestamps []time.Time

	return func(ctx context.Context) error {
		attempt := 0

		for {
			err := f(ctx)
			if err == nil {
				return nil
			}
			if ctx.Err() != nil {
				return err
			}

			attempt++
			if !shouldRetry(err, attempt) {
				return err
			}

			now := time.Now()

			errorTimestamps = append(errorTimestamps, now)

			if len(errorTimestamps) > size {
				errorTimestamps = errorTimestamps[1:]
			}

			if len(errorTimestamps) == size && now.Sub(errorTimestamps[0]) <= time.Second {
				return err
			}

			if backoff > 0 {
				timer := time.NewTimer(backoff)
				select {
				case <-ctx.Done():
					timer.Stop()
					return err
				case <-timer.C:
				}
			}
		}
	}
}
