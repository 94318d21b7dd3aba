package engine

import (
	"errors"
	"fmt"
)

// DefaultMaxTraversers is the default limit on live traversers after any
// step. It stops a runaway expansion before it exhausts memory.
const DefaultMaxTraversers = 100_000

// QuotaEnforcer enforces the traverser limit of one execution.
type QuotaEnforcer struct {
	maxTraversers int
	peak          int
}

// NewQuotaEnforcer creates an enforcer with the given limit.
// A limit <= 0 disables the check.
func NewQuotaEnforcer(maxTraversers int) *QuotaEnforcer {
	return &QuotaEnforcer{maxTraversers: maxTraversers}
}

// Check records the traverser count after a step and validates it
// against the limit.
func (q *QuotaEnforcer) Check(step, traversers int) error {
	q.peak = max(q.peak, traversers)
	if q.maxTraversers > 0 && traversers > q.maxTraversers {
		return &TraversersExceededError{
			Step:       step,
			Traversers: traversers,
			Limit:      q.maxTraversers,
		}
	}
	return nil
}

// Peak returns the largest traverser count seen.
// Used for logging and diagnostics.
func (q *QuotaEnforcer) Peak() int {
	return q.peak
}

// MaxTraversers returns the limit.
func (q *QuotaEnforcer) MaxTraversers() int {
	return q.maxTraversers
}

// TraversersExceededError is returned when a step produces more traversers
// than the quota allows. It aborts the execution.
type TraversersExceededError struct {
	Step       int
	Traversers int
	Limit      int
}

// Error implements the error interface.
func (e *TraversersExceededError) Error() string {
	return fmt.Sprintf("step %d exceeded traverser quota: %d traversers > %d limit",
		e.Step, e.Traversers, e.Limit)
}

// IsTraversersExceededError returns true if the error is a
// TraversersExceededError. Uses errors.As to handle wrapped errors.
func IsTraversersExceededError(err error) bool {
	var te *TraversersExceededError
	return errors.As(err, &te)
}
