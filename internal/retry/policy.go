// Package retry runs an operation sequentially until a success predicate holds
// or the attempt budget is spent.
package retry

import (
	"context"
	"time"
)

// Policy describes how many times to run an operation and what counts as done.
type Policy[T any] struct {
	// MaxAttempts is the total number of runs, including the first. Values below 1 mean 1.
	MaxAttempts int
	// Succeeded decides whether the attempt's outcome ends the loop. Nil means err == nil.
	Succeeded func(value T, err error) bool
	// Backoff returns the pause before the given (1-based) retry. Nil means no pause.
	Backoff func(retry int) time.Duration
}

// Outcome is the result of running a policy
type Outcome[T any] struct {
	Value    T
	Err      error
	Attempts int
}

// Do runs op until Succeeded returns true, the attempts are exhausted or ctx is done.
// The last attempt's value and error are returned.
func (p Policy[T]) Do(ctx context.Context, op func(ctx context.Context, attempt int) (T, error)) Outcome[T] {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var out Outcome[T]
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			if err := p.wait(ctx, attempt); err != nil {
				out.Err = err
				return out
			}
		}

		out.Value, out.Err = op(ctx, attempt)
		out.Attempts = attempt + 1

		if p.succeeded(out.Value, out.Err) {
			return out
		}
	}
	return out
}

func (p Policy[T]) succeeded(value T, err error) bool {
	if p.Succeeded == nil {
		return err == nil
	}
	return p.Succeeded(value, err)
}

func (p Policy[T]) wait(ctx context.Context, retry int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.Backoff == nil {
		return nil
	}
	d := p.Backoff(retry)
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// LinearBackoff waits step, 2*step, 3*step... between retries
func LinearBackoff(step time.Duration) func(int) time.Duration {
	return func(retry int) time.Duration {
		return time.Duration(retry) * step
	}
}
