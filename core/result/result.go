// Package result carries business-rule failures as ordinary errors so
// callers can tell them apart from infrastructure failures.
package result

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	// KindInternal is anything that is not a business-rule failure.
	KindInternal Kind = iota
	KindBadRequest
	KindNotFound
	KindForbidden
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

// Error is a typed business-rule failure.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newError(kind Kind, message string) *Error {
	if message == "" {
		message = defaultMessage(kind)
	}
	return &Error{Kind: kind, Message: message}
}

func defaultMessage(kind Kind) string {
	switch kind {
	case KindNotFound:
		return "The requested resource was not found."
	case KindUnauthorized:
		return "You are not authorized access."
	case KindForbidden:
		return "You are authorized, but forbidden access."
	case KindBadRequest:
		return "Unable to process request."
	default:
		return "An unknown error has occurred."
	}
}

func BadRequest(message string) error {
	return newError(KindBadRequest, message)
}

func NotFound(message string) error {
	return newError(KindNotFound, message)
}

func Forbidden(message string) error {
	return newError(KindForbidden, message)
}

func Unauthorized(message string) error {
	return newError(KindUnauthorized, message)
}

// KindOf returns the kind of err, KindInternal for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err is a failure of the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the client-safe message for err. Internal errors never
// leak their text.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return defaultMessage(KindInternal)
}
