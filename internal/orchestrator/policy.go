package orchestrator

import (
	"time"

	"github.com/pkg/errors"
)

var ErrBudgetExhausted = errors.New("factoring budget exhausted")

// StopPolicy bounds how long Run keeps trying. Zero values mean no bound.
type StopPolicy struct {
	MaxRounds   int
	MaxDuration time.Duration
}

// Exhausted reports whether another round may not be started after completedRounds rounds and elapsed time.
func (p StopPolicy) Exhausted(completedRounds int, elapsed time.Duration) bool {
	if p.MaxRounds > 0 && completedRounds >= p.MaxRounds {
		return true
	}
	return p.MaxDuration > 0 && elapsed >= p.MaxDuration
}
