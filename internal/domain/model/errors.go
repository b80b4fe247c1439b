package model

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is the sentinel behind every InputError.
	ErrInvalidInput = errors.New("invalid input")

	// ErrScheduleInvariant signals that the schedule arithmetic did not
	// reconcile. It always indicates a defect and is never retried.
	ErrScheduleInvariant = errors.New("schedule arithmetic invariant violated")

	// ErrNotEligible is returned when a schedule is requested for an
	// applicant that failed validation.
	ErrNotEligible = errors.New("applicant is not eligible")

	// ErrPaymentNotFound is returned when settling a payment number that the
	// schedule does not contain.
	ErrPaymentNotFound = errors.New("payment not found in schedule")
)

// InputError rejects malformed or out-of-domain input before any
// computation runs.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *InputError) Unwrap() error { return ErrInvalidInput }

// NewInputError builds an InputError with a formatted reason.
func NewInputError(field, format string, args ...any) error {
	return &InputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func inputErr(field, format string, args ...any) error {
	return NewInputError(field, format, args...)
}

// NotEligibleError carries the failed validation result.
type NotEligibleError struct {
	Result ValidationResult
}

func (e *NotEligibleError) Error() string {
	codes := make([]string, 0, len(e.Result.Errors))
	for _, i := range e.Result.Errors {
		codes = append(codes, i.Code)
	}
	return fmt.Sprintf("%s: %v", ErrNotEligible, codes)
}

func (e *NotEligibleError) Unwrap() error { return ErrNotEligible }
