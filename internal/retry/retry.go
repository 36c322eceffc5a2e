// Package retry implements the bounded attempt loop shared by external URL
// probing and remote ref lookups.
package retry

import (
	"context"
	"errors"
	"time"
)

// Outcome classifies a single attempt.
type Outcome int

const (
	// Success ends the loop with a nil error.
	Success Outcome = iota
	// Retryable failures consume one attempt and are retried after Backoff.
	Retryable
	// Fatal failures end the loop immediately.
	Fatal
)

// String returns a human-readable representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Retryable:
		return "retryable"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// ErrNoAttempt is returned when an attempt reports a failure without an error.
var ErrNoAttempt = errors.New("attempt failed without an error")

// Policy is a fixed-backoff retry policy.
type Policy struct {
	// Attempts is the total number of tries, at least 1.
	Attempts int
	// Backoff is the fixed pause between two tries.
	Backoff time.Duration
}

// Func performs one attempt. attempt starts at 1.
type Func func(ctx context.Context, attempt int) (Outcome, error)

// Do runs fn until it succeeds, fails fatally or the attempts are exhausted,
// and returns the last observed error. Cancellation of ctx during a backoff
// returns ctx.Err().
func (p Policy) Do(ctx context.Context, fn Func) error {
	attempts := max(p.Attempts, 1)
	var last error

	for i := 1; i <= attempts; i++ {
		outcome, err := fn(ctx, i)
		switch outcome {
		case Success:
			return nil
		case Fatal:
			return orNoAttempt(err)
		}
		last = orNoAttempt(err)

		if i < attempts && p.Backoff > 0 {
			timer := time.NewTimer(p.Backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	return last
}

func orNoAttempt(err error) error {
	if err == nil {
		return ErrNoAttempt
	}
	return err
}
