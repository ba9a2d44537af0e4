package modelio

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// RetryPolicy configures retry behavior with exponential backoff.
type RetryPolicy struct {
	MaxRetries        int     // total retry attempts (not counting initial)
	BaseDelay         float64 // initial delay in seconds
	MaxDelay          float64 // maximum delay between retries
	BackoffMultiplier float64 // exponential backoff factor
	Jitter            bool    // add random jitter to prevent thundering herd
	OnRetry           func(err error, attempt int, delay time.Duration)
}

// DefaultRetryPolicy returns a conservative default policy.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:        2,
		BaseDelay:         1.0,
		MaxDelay:          60.0,
		BackoffMultiplier: 2.0,
		Jitter:            true,
	}
}

// Delay calculates the delay for attempt n (0-indexed).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	delay := math.Min(p.BaseDelay*math.Pow(p.BackoffMultiplier, float64(attempt)), p.MaxDelay)
	if p.Jitter {
		// +/- 50% jitter
		delay = delay * (0.5 + rand.Float64())
	}
	return time.Duration(delay * float64(time.Second))
}

// RetryClient wraps a Client with a RetryPolicy. The execution engine never
// retries on its own; callers that want retries at the model boundary
// compose this wrapper in.
type RetryClient struct {
	Inner  Client
	Policy RetryPolicy
}

// NewRetryClient wraps inner with the given policy.
func NewRetryClient(inner Client, policy RetryPolicy) *RetryClient {
	return &RetryClient{Inner: inner, Policy: policy}
}

// Complete calls the inner client, retrying retryable errors per the policy.
func (c *RetryClient) Complete(ctx context.Context, req Request) (*Completion, error) {
	result, err := c.Inner.Complete(ctx, req)
	if err == nil {
		return result, nil
	}

	for attempt := 0; attempt < c.Policy.MaxRetries; attempt++ {
		if !IsRetryable(err) {
			return nil, err
		}

		delay := c.Policy.Delay(attempt)
		if rl, ok := err.(*RateLimitError); ok && rl.RetryAfter != nil {
			retryDelay := time.Duration(*rl.RetryAfter * float64(time.Second))
			if retryDelay > time.Duration(c.Policy.MaxDelay*float64(time.Second)) {
				// Retry-After exceeds max delay; surface immediately.
				return nil, err
			}
			delay = retryDelay
		}

		if c.Policy.OnRetry != nil {
			c.Policy.OnRetry(err, attempt+1, delay)
		}

		select {
		case <-ctx.Done():
			return nil, &AbortError{ClientError: ClientError{Message: "request cancelled during retry", Cause: ctx.Err()}}
		case <-time.After(delay):
		}

		result, err = c.Inner.Complete(ctx, req)
		if err == nil {
			return result, nil
		}
	}

	return nil, err
}
