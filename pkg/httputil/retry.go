package httputil

import (
	"context"
	"errors"
	"time"
)

// Defaults for [RetryWithBackoff].
const (
	DefaultAttempts = 3
	DefaultBackoff  = time.Second
)

// RetryableError marks a failure worth another attempt. [Fetch] wraps
// network errors, 5xx and 429 responses in it.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry calls fn until it succeeds, fails with an error that is not a
// [RetryableError], or has been called attempts times. The wait starts at
// backoff and doubles after every failure. Cancelling ctx during a wait
// returns ctx.Err().
func Retry(ctx context.Context, attempts int, backoff time.Duration, fn func() error) error {
	var err error
	for n := 1; ; n++ {
		if err = fn(); err == nil || !errors.As(err, new(*RetryableError)) || n >= attempts {
			return err
		}

		t := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		backoff *= 2
	}
}

// RetryWithBackoff is [Retry] with [DefaultAttempts] and [DefaultBackoff].
// The packager uses it for remote UI sources.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return Retry(ctx, DefaultAttempts, DefaultBackoff, fn)
}
