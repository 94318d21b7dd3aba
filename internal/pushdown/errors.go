package pushdown

import (
	"errors"
	"fmt"

	"github.com/roach88/pushdown/internal/traversal"
)

// ErrorCode categorizes pushdown errors.
type ErrorCode string

const (
	// ErrCodeUnsupportedPredicate indicates a predicate with no backend form.
	ErrCodeUnsupportedPredicate ErrorCode = "UNSUPPORTED_PREDICATE"

	// ErrCodeInvalidAnchor indicates Compile was pointed at a non-anchor step.
	ErrCodeInvalidAnchor ErrorCode = "INVALID_ANCHOR"
)

// UnsupportedPredicateError reports a predicate shape the backend condition
// model cannot represent. It is fatal to the compilation it occurs in.
type UnsupportedPredicateError struct {
	// Key is the property name the predicate was applied to.
	Key string

	// Predicate is the offending predicate (may be a child of the original).
	Predicate traversal.Predicate

	// Reason says which rule rejected it.
	Reason string
}

// Code returns ErrCodeUnsupportedPredicate.
func (e *UnsupportedPredicateError) Code() ErrorCode { return ErrCodeUnsupportedPredicate }

func (e *UnsupportedPredicateError) Error() string {
	p := "<nil>"
	if e.Predicate != nil {
		p = e.Predicate.String()
	}
	return fmt.Sprintf("%s: unsupported predicate '%s' on %q: %s", ErrCodeUnsupportedPredicate, p, e.Key, e.Reason)
}

// IsUnsupportedPredicate returns true if err is or wraps an
// UnsupportedPredicateError.
func IsUnsupportedPredicate(err error) bool {
	var upe *UnsupportedPredicateError
	return errors.As(err, &upe)
}

func unsupported(key string, p traversal.Predicate, reason string) *UnsupportedPredicateError {
	return &UnsupportedPredicateError{Key: key, Predicate: p, Reason: reason}
}

// InvalidAnchorError reports a Compile call whose anchor index does not
// point at an anchor step.
type InvalidAnchorError struct {
	Index int
	Step  traversal.Step
}

// Code returns ErrCodeInvalidAnchor.
func (e *InvalidAnchorError) Code() ErrorCode { return ErrCodeInvalidAnchor }

func (e *InvalidAnchorError) Error() string {
	if e.Step == nil {
		return fmt.Sprintf("%s: no step at index %d", ErrCodeInvalidAnchor, e.Index)
	}
	return fmt.Sprintf("%s: step %d (%s) is not a pushdown anchor", ErrCodeInvalidAnchor, e.Index, e.Step)
}
