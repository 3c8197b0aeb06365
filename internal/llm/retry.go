package llm

import (
	"context"
	"errors"
	"time"
)

type retryProvider struct {
	inner    Provider
	attempts int
	wait     time.Duration
}

// WithRetry retries rate limits and provider outages with doubling waits.
// An invalid response is retried once.
func WithRetry(p Provider, attempts int, wait time.Duration) Provider {
	if attempts < 1 {
		attempts = 1
	}
	return &retryProvider{inner: p, attempts: attempts, wait: wait}
}

func (r *retryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	var lastErr error
	invalidSeen := false
	wait := r.wait

	for attempt := 0; attempt < r.attempts; attempt++ {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		var invalid *ErrInvalidResponse
		if errors.As(err, &invalid) {
			if invalidSeen {
				return nil, err
			}
			invalidSeen = true
		}

		if attempt == r.attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}

	return nil, lastErr
}

func (r *retryProvider) ModelID() string {
	return r.inner.ModelID()
}
