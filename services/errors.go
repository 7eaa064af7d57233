package services

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindAuthorization      ErrorKind = "AuthorizationError"
	KindInvalidState       ErrorKind = "InvalidStateError"
	KindIncomplete         ErrorKind = "IncompletePrecondition"
	KindConflict           ErrorKind = "ConflictError"
	KindReportNotAvailable ErrorKind = "ReportNotAvailableError"
	KindNotFound           ErrorKind = "NotFoundError"
	KindValidation         ErrorKind = "ValidationError"
)

// Error is the only error type the services return on purpose. Anything else is an
// infrastructure failure.
type Error struct {
	Kind    ErrorKind
	Message string
	// PendingCount is set for KindIncomplete.
	PendingCount int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of a service error, or "" for any other error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
