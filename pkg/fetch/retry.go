package fetch

import (
	"context"
	"time"
)

// RetryPolicy retries an operation a fixed number of total attempts with a
// fixed wait between them. Zero or negative Attempts means a single attempt.
type RetryPolicy struct {
	Attempts int
	Wait     time.Duration
}

// Do runs op until it succeeds or the attempts are exhausted, returning the
// last error. A cancelled context stops the loop between attempts.
func (p RetryPolicy) Do(ctx context.Context, op func() error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.Wait):
		}
	}
	return lastErr
}
