package core

import (
	"errors"
	"fmt"
)

// Error classes. Match with errors.Is; extract details with errors.As.
var (
	ErrValidation  = errors.New("validation error")
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("store unavailable")
)

var (
	ErrInvalidAmount     = &ValidationError{Field: "amount", Reason: "must be a positive decimal amount"}
	ErrInvalidLimit      = &ValidationError{Field: "monthlyLimit", Reason: "must be a positive decimal amount"}
	ErrNoteTooLong       = &ValidationError{Field: "note", Reason: fmt.Sprintf("must be at most %d characters", MaxNoteLength)}
	ErrNoteControlChars  = &ValidationError{Field: "note", Reason: "must not contain control characters"}
	ErrMissingOwner      = &ValidationError{Field: "owner", Reason: "must not be empty"}
	ErrInvalidMonth      = &ValidationError{Field: "month", Reason: "must be between 1 and 12"}
	ErrInvalidYear       = &ValidationError{Field: "year", Reason: fmt.Sprintf("must be between %d and %d", MinYear, MaxYear)}
	ErrPartialPeriod     = &ValidationError{Field: "month", Reason: "month and year must be supplied together"}
	ErrInvalidOccurredAt = &ValidationError{Field: "occurredAt", Reason: "must be a valid timestamp"}
)

// ValidationError reports malformed or out-of-invariant input. It is terminal:
// retrying the same request yields the same error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NotFoundError reports a missing owner-scoped resource. Records owned by a
// different owner are reported the same way.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// UnavailableError wraps a transient store failure. It is the only class a
// caller may retry.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s: store unavailable: %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

func (e *UnavailableError) Is(target error) bool {
	return target == ErrUnavailable
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ExpenseNotFound builds the NotFoundError returned for a missing expense.
func ExpenseNotFound(id string) error {
	return &NotFoundError{Resource: "expense", ID: id}
}

// Unavailable wraps err as an UnavailableError unless it already carries a
// domain classification.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrUnavailable) {
		return err
	}
	return &UnavailableError{Op: op, Err: err}
}

// IsRetryable reports whether err may succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
