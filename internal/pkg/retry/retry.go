package retry

import (
	"context"
	"errors"
	"time"
)

type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Transient marks an error as retryable. Persistence collaborators wrap
// connection-level failures with it; validation and not-found errors must
// never be marked.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether the error (or any wrapped error) is retryable.
func IsTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

// Policy is a bounded retry policy with doubling backoff, applied uniformly
// inside the request processing queue.
type Policy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:    3,
		InitialBackoff: 200 * time.Millisecond,
		MaxBackoff:     2 * time.Second,
	}
}

// Do runs fn, retrying transient failures up to MaxAttempts. Terminal
// errors are returned immediately. The last error is returned on
// exhaustion.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	backoff := p.InitialBackoff
	var err error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		err = fn(ctx)
		if err == nil || !IsTransient(err) {
			return err
		}
		if attempt == p.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff *= 2
		if p.MaxBackoff > 0 && backoff > p.MaxBackoff {
			backoff = p.MaxBackoff
		}
	}
	return err
}
