package core

import (
	"context"
	"errors"
	"fmt"
)

// Error is a failure carrying its classified reason. Engine failures cross
// the listener boundary as failed CompletionEvents built from these, never
// as panics.
type Error struct {
	Reason  FailureReason
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (%s): %v", e.Op, e.Message, e.Reason, e.Cause)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Op, e.Message, e.Reason)
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError creates a classified error.
func NewError(reason FailureReason, op, message string) *Error {
	return &Error{Reason: reason, Op: op, Message: message}
}

// WrapError wraps an existing error with a classification.
func WrapError(err error, reason FailureReason, op, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Reason: reason, Op: op, Message: message, Cause: err}
}

// ReasonOf extracts the FailureReason from err, defaulting to
// ReasonInternal for unclassified errors and ReasonNone for nil.
func ReasonOf(err error) FailureReason {
	if err == nil {
		return ReasonNone
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Reason
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ReasonCancelled
	}
	return ReasonInternal
}
