package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error so handlers can map it to an HTTP status.
type Kind int

const (
	KindServer Kind = iota
	KindNotFound
	KindBadRequest
	KindUnauthenticated
	KindForbidden
)

// Error carries a human-readable message and a kind.
type Error struct {
	kind Kind
	msg  string
}

func (e *Error) Error() string { return e.msg }

// NotFound builds a not-found error.
func NotFound(format string, args ...interface{}) error {
	return &Error{kind: KindNotFound, msg: fmt.Sprintf(format, args...)}
}

// BadRequest builds a bad-request error.
func BadRequest(format string, args ...interface{}) error {
	return &Error{kind: KindBadRequest, msg: fmt.Sprintf(format, args...)}
}

// Unauthenticated builds an unauthenticated error.
func Unauthenticated(format string, args ...interface{}) error {
	return &Error{kind: KindUnauthenticated, msg: fmt.Sprintf(format, args...)}
}

// Forbidden builds a forbidden error.
func Forbidden(format string, args ...interface{}) error {
	return &Error{kind: KindForbidden, msg: fmt.Sprintf(format, args...)}
}

// KindOf reports the kind of err; anything unrecognized is a server error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.kind
	}
	return KindServer
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsBadRequest reports whether err is a bad-request error.
func IsBadRequest(err error) bool { return KindOf(err) == KindBadRequest }
