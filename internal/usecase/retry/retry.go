// Package retry runs external calls with a bounded number of attempts.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/kailas-cloud/circulars/internal/domain"
)

// Policy bounds how often and how fast an operation is retried.
type Policy struct {
	// MaxAttempts counts the first try; 1 disables retries.
	MaxAttempts int
	// Backoff is the initial wait before the second attempt. It doubles after each failure.
	Backoff time.Duration
}

// DefaultPolicy allows one retry after half a second.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 2, Backoff: 500 * time.Millisecond}
}

// Do runs op until it succeeds, returns a permanent error, or the attempts run out.
// Configuration errors and caller cancellation are never retried. On exhaustion the
// last error is returned unchanged.
func Do[T any](ctx context.Context, p Policy, op func(context.Context) (T, error)) (T, error) {
	attempts := max(p.MaxAttempts, 1)

	b := backoff.NewExponentialBackOff()
	if p.Backoff > 0 {
		b.InitialInterval = p.Backoff
	}

	return backoff.Retry(ctx, func() (T, error) {
		v, err := op(ctx)
		if err != nil && !Retryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(uint(attempts)), backoff.WithMaxElapsedTime(0))
}

// Retryable reports whether err is a transient provider failure.
func Retryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled):
		return false
	case errors.Is(err, domain.ErrConfiguration), errors.Is(err, domain.ErrInvalidRequest):
		return false
	default:
		return errors.Is(err, domain.ErrEmbeddingService) ||
			errors.Is(err, domain.ErrGenerationService) ||
			errors.Is(err, domain.ErrTimeout)
	}
}
