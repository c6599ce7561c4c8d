package s2

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultInterval is the minimum spacing between outbound requests.
	DefaultInterval = 10 * time.Second

	// DefaultBackoff is the fixed wait between retries of a transient failure.
	DefaultBackoff = 240 * time.Second

	// DefaultMaxAttempts bounds the number of tries per logical request.
	DefaultMaxAttempts = 10
)

// sharedLimiter serializes requests across every Client in the process, so
// several open projects never exceed the upstream budget together.
var sharedLimiter = rate.NewLimiter(rate.Every(DefaultInterval), 1)

// SharedLimiter returns the process-wide request limiter.
func SharedLimiter() *rate.Limiter {
	return sharedLimiter
}

// RetryPolicy decides how transient failures are retried.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
	Retryable   func(error) bool
}

// DefaultRetryPolicy retries rate-limit, forbidden and timeout failures with
// a fixed backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: DefaultMaxAttempts,
		Backoff:     DefaultBackoff,
		Retryable:   IsRetryable,
	}
}

// Do runs fn until it succeeds, fails with a non-retryable error, or the
// attempt budget is spent. onRetry is called before each backoff sleep.
func (p RetryPolicy) Do(ctx context.Context, fn func() error, onRetry func(attempt int, err error)) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	retryable := p.Retryable
	if retryable == nil {
		retryable = IsRetryable
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn()
		if err == nil || !retryable(err) || attempt == attempts {
			return err
		}
		if onRetry != nil {
			onRetry(attempt, err)
		}
		if p.Backoff > 0 {
			timer := time.NewTimer(p.Backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	return err
}
