package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/pushdown/internal/pushdown"
)

// ExecError represents an error detected while compiling or executing a
// pipeline.
type ExecError struct {
	// Code identifies the error category.
	Code ExecErrorCode

	// Message is a human-readable description.
	Message string

	// Step is the index of the offending step in the residual pipeline,
	// or -1 when the error is not tied to a step.
	Step int

	// Err is the underlying cause, if any.
	Err error
}

// ExecErrorCode categorizes execution errors.
type ExecErrorCode string

const (
	// ErrCodeMissingAnchor indicates a pipeline that does not start with a
	// lookup step.
	ErrCodeMissingAnchor ExecErrorCode = "MISSING_ANCHOR"

	// ErrCodeUnsupportedStep indicates a step the host cannot run in memory.
	ErrCodeUnsupportedStep ExecErrorCode = "UNSUPPORTED_STEP"

	// ErrCodeBackendFailed indicates the backend rejected or failed a query.
	ErrCodeBackendFailed ExecErrorCode = "BACKEND_FAILED"

	// ErrCodeTraversersExceeded is reported by ErrorCode for a
	// TraversersExceededError.
	ErrCodeTraversersExceeded ExecErrorCode = "TRAVERSERS_EXCEEDED"
)

// Error implements the error interface.
func (e *ExecError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Step >= 0 {
		msg = fmt.Sprintf("%s (step %d)", msg, e.Step)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ExecError) Unwrap() error { return e.Err }

// IsUnsupportedStep returns true if err is an unsupported step error.
// Uses errors.As to handle wrapped errors.
func IsUnsupportedStep(err error) bool {
	var ee *ExecError
	if errors.As(err, &ee) {
		return ee.Code == ErrCodeUnsupportedStep
	}
	return false
}

// IsBackendError returns true if err is a backend failure.
func IsBackendError(err error) bool {
	var ee *ExecError
	if errors.As(err, &ee) {
		return ee.Code == ErrCodeBackendFailed
	}
	return false
}

func backendError(step int, err error) *ExecError {
	return &ExecError{Code: ErrCodeBackendFailed, Message: "backend query failed", Step: step, Err: err}
}

// ErrorCode returns the code carried by err: an execution code, a quota
// failure or a pushdown code. It returns "" for errors without one.
func ErrorCode(err error) string {
	var ee *ExecError
	if errors.As(err, &ee) {
		return string(ee.Code)
	}
	var te *TraversersExceededError
	if errors.As(err, &te) {
		return string(ErrCodeTraversersExceeded)
	}
	var coded interface{ Code() pushdown.ErrorCode }
	if errors.As(err, &coded) {
		return string(coded.Code())
	}
	return ""
}
