package infra

import (
	"context"
	"time"
)

// MaxRetryLimit caps the number of additional attempts any policy may make.
const MaxRetryLimit = 2

// RetryPolicy parameterizes a single fallible call with a bounded number of
// additional attempts.
type RetryPolicy struct {
	// MaxRetries is the number of additional attempts after the first.
	MaxRetries int

	// Backoff returns the wait before retry n (1-based).
	Backoff func(attempt int) time.Duration

	// Retryable decides whether an error may be retried. A nil Retryable
	// retries nothing.
	Retryable func(error) bool

	// OnRetry, if set, is called before each wait.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// NewRetryPolicy builds a policy, clamping maxRetries to [0, MaxRetryLimit].
func NewRetryPolicy(maxRetries int, backoff func(int) time.Duration, retryable func(error) bool) RetryPolicy {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if maxRetries > MaxRetryLimit {
		maxRetries = MaxRetryLimit
	}
	return RetryPolicy{
		MaxRetries: maxRetries,
		Backoff:    backoff,
		Retryable:  retryable,
	}
}

// NoRetry is a policy that makes exactly one attempt.
func NoRetry() RetryPolicy {
	return RetryPolicy{}
}

// LinearBackoff waits step × attempt before each retry.
func LinearBackoff(step time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return step * time.Duration(attempt)
	}
}

// Do calls fn until it succeeds, returns a non-retryable error, or the retry
// budget is spent. attempt is 0 for the first call. The last error is
// returned unchanged.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context, attempt int) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn(ctx, attempt)
		if err == nil {
			return nil
		}
		if attempt >= p.MaxRetries || p.Retryable == nil || !p.Retryable(err) {
			return err
		}

		var wait time.Duration
		if p.Backoff != nil {
			wait = p.Backoff(attempt + 1)
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt+1, err, wait)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}
