package gateway

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/G-Research/qfactor/internal/circuit"
)

// Attempt is the outcome of a single submission of a circuit to the backend. Exactly one
// of Counts and Err is meaningful.
type Attempt struct {
	// Zero based attempt number
	Number int
	Counts circuit.Counts
	Err    error
}

func (a Attempt) Succeeded() bool {
	return a.Err == nil
}

// RetryPolicy decides how failed submissions are retried. Both methods are pure functions of the attempt
// number and the error it produced.
type RetryPolicy struct {
	// Total number of submissions per circuit, including the first
	MaxAttempts int
	// Wait after the first failure; the wait doubles after each subsequent failure
	BaseDelay time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
	}
}

// Backoff is the wait after failed attempt number attempt (zero based): BaseDelay * 2^attempt.
// Cancellation errors are not waited on.
func (p RetryPolicy) Backoff(attempt int, err error) time.Duration {
	if isCancellation(err) || attempt < 0 {
		return 0
	}
	return p.BaseDelay << uint(attempt)
}

// ShouldRetry reports whether failed attempt number attempt is followed by another submission.
func (p RetryPolicy) ShouldRetry(attempt int, err error) bool {
	if err == nil || isCancellation(err) {
		return false
	}
	return attempt+1 < p.MaxAttempts
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
