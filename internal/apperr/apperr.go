// Package apperr defines the error taxonomy shared by the service and
// handler layers. Every failure carries a Kind (how callers should react)
// and a machine-readable Code (what exactly went wrong).
package apperr

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies an error for transport mapping and retry decisions.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindBusinessRule
	KindConstraint
	KindStoreTimeout
)

// Machine-readable error codes surfaced in API responses.
const (
	CodeValidation           = "VALIDATION_ERROR"
	CodeNotFound             = "NOT_FOUND"
	CodeConstraintViolation  = "CONSTRAINT_VIOLATION"
	CodeStoreTimeout         = "STORE_TIMEOUT"
	CodeInternal             = "INTERNAL_ERROR"
	CodeCopyUnavailable      = "COPY_UNAVAILABLE"
	CodeLoanLimitExceeded    = "LOAN_LIMIT_EXCEEDED"
	CodeUserInactive         = "USER_INACTIVE"
	CodeLoanAlreadyClosed    = "LOAN_ALREADY_CLOSED"
	CodeBookAvailable        = "BOOK_AVAILABLE"
	CodeDuplicateReservation = "DUPLICATE_RESERVATION"
	CodeReservationClosed    = "RESERVATION_CLOSED"
	CodeFineAlreadyPaid      = "FINE_ALREADY_PAID"
)

// Error is the concrete error type propagated out of the service layer.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Fields  map[string]string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.err
}

// Is makes errors.Is match on Code so sentinel comparisons work across wrapping.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func Newf(kind Kind, code, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause while keeping kind and code intact.
func Wrap(err error, kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message, err: err}
}

func Validation(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Code: CodeValidation, Message: message, Fields: fields}
}

func NotFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Code: CodeNotFound, Message: entity + " not found"}
}

func BusinessRule(code, message string) *Error {
	return &Error{Kind: KindBusinessRule, Code: code, Message: message}
}

// FromStore converts a raw store error into the taxonomy. Context deadline
// errors become StoreTimeout so callers can retry with backoff; everything
// else stays internal with the cause preserved.
func FromStore(err error, operation string) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return Wrap(err, KindStoreTimeout, CodeStoreTimeout, "store timeout during "+operation)
	}
	return Wrap(err, KindInternal, CodeInternal, "failed to "+operation)
}

// KindOf extracts the Kind from any error chain, defaulting to internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindStoreTimeout
	}
	return KindInternal
}

// CodeOf extracts the machine-readable code from any error chain.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
