package apperrors

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrConflict indicates that the requested change conflicts with current state.
var ErrConflict = errors.New("conflicting state")

// ErrConcurrency indicates that another writer appended to the same stream
// after this aggregate instance was loaded. Callers recover by reloading and
// retrying the command; the repository layer never retries on its own.
var ErrConcurrency = errors.New("concurrency conflict")

// ErrCorruptEvent indicates that a committed event could not be decoded or
// applied. The store accepted invalid data; this must be surfaced, never skipped.
var ErrCorruptEvent = errors.New("corrupt event data")

// MalformedLineError is returned when a journal line has both sides set, or
// neither side set. Lines are rejected at construction, never later.
type MalformedLineError struct {
	Debit  decimal.Decimal
	Credit decimal.Decimal
}

func (e MalformedLineError) Error() string {
	return fmt.Sprintf("journal line must have exactly one of debit/credit positive, got debit=%s credit=%s",
		e.Debit.String(), e.Credit.String())
}

func (e MalformedLineError) Unwrap() error { return ErrValidation }

// EmptyJournalError is returned when a journal with fewer than two lines is
// validated or posted.
type EmptyJournalError struct {
	LineCount int
}

func (e EmptyJournalError) Error() string {
	return fmt.Sprintf("journal must have at least two lines, got %d", e.LineCount)
}

func (e EmptyJournalError) Unwrap() error { return ErrValidation }

// UnbalancedJournalError carries the computed totals so the caller can build
// a precise user-facing message.
type UnbalancedJournalError struct {
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
}

func (e UnbalancedJournalError) Error() string {
	return fmt.Sprintf("journal does not balance: total debit %s, total credit %s",
		e.TotalDebit.String(), e.TotalCredit.String())
}

func (e UnbalancedJournalError) Unwrap() error { return ErrValidation }

// InvalidStatusError is returned when an operation is attempted against a
// journal in the wrong lifecycle status.
type InvalidStatusError struct {
	Current  string
	Expected string
}

func (e InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid journal status %s, expected %s", e.Current, e.Expected)
}

func (e InvalidStatusError) Unwrap() error { return ErrConflict }

// PeriodClosedError is returned when a document date falls outside the open
// accounting period.
type PeriodClosedError struct {
	Date time.Time
}

func (e PeriodClosedError) Error() string {
	return fmt.Sprintf("accounting period is closed for date %s", e.Date.Format("2006-01-02"))
}

func (e PeriodClosedError) Unwrap() error { return ErrValidation }

// CannotReverseUnpostedError is returned when a reversal is requested on a
// journal that was never posted.
type CannotReverseUnpostedError struct {
	Current string
}

func (e CannotReverseUnpostedError) Error() string {
	return fmt.Sprintf("cannot reverse a journal in status %s, only POSTED journals can be reversed", e.Current)
}

func (e CannotReverseUnpostedError) Unwrap() error { return ErrConflict }

// AppError wraps an infrastructure failure with an HTTP-ish status code and a
// short operator-facing message.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// NewAppError creates an AppError wrapping err.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
