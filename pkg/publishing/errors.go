package publishing

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so the transport layer can map it to a response.
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindForbidden    Kind = "forbidden"
	KindBadRequest   Kind = "bad_request"
	KindUnauthorized Kind = "unauthorized"
)

// Error types
var (
	// ErrNotFound matches any error of kind KindNotFound
	ErrNotFound = &Error{Kind: KindNotFound}

	// ErrForbidden matches any error of kind KindForbidden
	ErrForbidden = &Error{Kind: KindForbidden}

	// ErrBadRequest matches any error of kind KindBadRequest
	ErrBadRequest = &Error{Kind: KindBadRequest}

	// ErrUnauthorized matches any error of kind KindUnauthorized
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
)

// Error is a classified failure returned by the service and by repository
// adapters. Op names the operation that failed.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, msg, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", msg, e.Err)
	default:
		return msg
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrNotFound) and friends match on kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or "" when err
// is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// MessageOf returns the caller-facing message of a classified error.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return ""
}

func notFound(op, message string) error {
	return &Error{Kind: KindNotFound, Op: op, Message: message}
}

func forbidden(op, message string) error {
	return &Error{Kind: KindForbidden, Op: op, Message: message}
}

func badRequest(op, message string) error {
	return &Error{Kind: KindBadRequest, Op: op, Message: message}
}

func unauthorized(op, message string, err error) error {
	return &Error{Kind: KindUnauthorized, Op: op, Message: message, Err: err}
}

// NewNotFound is used by repository adapters to signal a missing record.
func NewNotFound(op, message string) error {
	return notFound(op, message)
}

// NewBadRequest is used by repository adapters to signal a rejected write,
// such as a duplicate slug.
func NewBadRequest(op, message string) error {
	return badRequest(op, message)
}

// NewUnauthorized reports a request without valid credentials.
func NewUnauthorized(op, message string) error {
	return unauthorized(op, message, nil)
}
