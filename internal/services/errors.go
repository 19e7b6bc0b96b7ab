package services

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies service failures. Handlers map each kind to an HTTP status.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindForbidden
	KindUnauthenticated
	KindTimeout
)

// Error is a classified service failure. Code is a stable machine-readable
// identifier, Message is meant for humans.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrConflict) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == "" && t.Kind == e.Kind
}

// Kind sentinels for errors.Is.
var (
	ErrInternal        = &Error{Kind: KindInternal}
	ErrValidation      = &Error{Kind: KindValidation}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrConflict        = &Error{Kind: KindConflict}
	ErrForbidden       = &Error{Kind: KindForbidden}
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated}
	ErrTimeout         = &Error{Kind: KindTimeout}
)

func validationError(code, msg string) error {
	return &Error{Kind: KindValidation, Code: code, Message: msg}
}

func notFoundError(code, msg string) error {
	return &Error{Kind: KindNotFound, Code: code, Message: msg}
}

func conflictError(code, msg string, err error) error {
	return &Error{Kind: KindConflict, Code: code, Message: msg, Err: err}
}

func forbiddenError(code, msg string) error {
	return &Error{Kind: KindForbidden, Code: code, Message: msg}
}

// internalError wraps an unexpected failure. Context expiry is reported as
// a timeout instead.
func internalError(msg string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Code: "timeout", Message: "request timed out", Err: err}
	}
	return &Error{Kind: KindInternal, Code: "internal_error", Message: msg, Err: err}
}

// KindOf returns the kind of err, KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindInternal
}
