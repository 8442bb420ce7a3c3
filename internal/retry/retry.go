package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Policy is a bounded retry with a fixed pause between attempts.
type Policy struct {
	MaxAttempts int
	Backoff     time.Duration
	// OnRetry, if set, is called before each pause.
	OnRetry func(attempt int, err error)
}

func Default() Policy { return Policy{MaxAttempts: 3, Backoff: 2 * time.Second} }

// Permanent marks an error that retrying cannot fix.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Do calls fn until it succeeds, returns a Permanent error, the context is
// done, or MaxAttempts is reached. Callers see only the final result.
func Do[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		var perm *permanentError
		if errors.As(err, &perm) {
			return zero, perm.err
		}
		lastErr = err
		if attempt == attempts {
			break
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt, err)
		}
		if p.Backoff > 0 {
			t := time.NewTimer(p.Backoff)
			select {
			case <-ctx.Done():
				t.Stop()
				return zero, ctx.Err()
			case <-t.C:
			}
		}
	}
	return zero, fmt.Errorf("all %d attempts failed: %w", attempts, lastErr)
}
