package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
)

// ErrExhausted is returned once every attempt allowed by a RetryPolicy has
// failed. It wraps the last failure.
var ErrExhausted = errors.New("ran out of retries")

// RetryPolicy is the backoff applied to each API request: up to MaxAttempts
// tries, sleeping BaseDelay after the first failure and multiplying the
// delay by BackoffFactor after each further one.
type RetryPolicy struct {
	MaxAttempts   int
	BaseDelay     time.Duration
	BackoffFactor float64
}

// DefaultRetryPolicy tries five times starting at one second, doubling.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 5, BaseDelay: time.Second, BackoffFactor: 2}
}

func (p RetryPolicy) attempts() int {
	return max(p.MaxAttempts, 1)
}

func (p RetryPolicy) backoff() retry.Backoff {
	delay := p.BaseDelay
	factor := max(p.BackoffFactor, 1)
	next := retry.BackoffFunc(func() (time.Duration, bool) {
		d := delay
		delay = time.Duration(float64(delay) * factor)
		return d, false
	})
	return retry.WithMaxRetries(uint64(p.attempts()-1), next) // #nosec G115 -- attempts() >= 1
}

// Do runs fn until it succeeds, fails permanently, or the policy runs out.
// fn marks failures worth another try with transient. onRetry, if set, is
// called before each sleep.
func (p RetryPolicy) Do(ctx context.Context, onRetry func(attempt int, err error), fn func(context.Context) error) error {
	attempt := 0
	var last *transientError
	err := retry.Do(ctx, p.backoff(), func(ctx context.Context) error {
		attempt++
		last = nil
		err := fn(ctx)
		if errors.As(err, &last) {
			if onRetry != nil && attempt < p.attempts() {
				onRetry(attempt, last.err)
			}
			return retry.RetryableError(last.err)
		}
		return err
	})
	if err != nil && last != nil && ctx.Err() == nil {
		return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, attempt, err)
	}
	return err
}

type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}
