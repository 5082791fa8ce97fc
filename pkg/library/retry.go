package library

import (
	"context"
	"errors"
	"time"
)

// Connection checks against network backends are retried with doubling
// delays starting at connectDelay.
var (
	connectAttempts = 3
	connectDelay    = 250 * time.Millisecond
)

// transientError marks a failure worth retrying, such as a refused
// connection while a container is still starting.
type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// retry runs fn up to attempts times, doubling delay after each failure.
// Only errors wrapped in transientError are retried. It returns the last
// error, or ctx.Err() if ctx ends while waiting.
func retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !errors.As(err, new(*transientError)) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	var te *transientError
	if errors.As(lastErr, &te) {
		return te.err
	}
	return lastErr
}

// ping retries a backend health check as transient.
func ping(ctx context.Context, check func(context.Context) error) error {
	return retry(ctx, connectAttempts, connectDelay, func() error {
		if err := check(ctx); err != nil {
			return &transientError{err}
		}
		return nil
	})
}
