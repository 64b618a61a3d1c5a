// Package apperr defines the error taxonomy shared by services and handlers.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUpstreamPayment
	KindUnauthorized
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUpstreamPayment:
		return "upstream_payment"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	default:
		return "internal"
	}
}

// HTTPStatus maps the kind onto the response code used by the API.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUpstreamPayment:
		return http.StatusPaymentRequired
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a kind, a human readable message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, msg string, cause []error) *Error {
	e := &Error{Kind: kind, Message: msg}
	if len(cause) > 0 {
		e.Err = cause[0]
	}
	return e
}

func Validation(msg string, cause ...error) *Error {
	return newError(KindValidation, msg, cause)
}

func NotFound(msg string, cause ...error) *Error {
	return newError(KindNotFound, msg, cause)
}

func Conflict(msg string, cause ...error) *Error {
	return newError(KindConflict, msg, cause)
}

func UpstreamPayment(msg string, cause ...error) *Error {
	return newError(KindUpstreamPayment, msg, cause)
}

func Unauthorized(msg string, cause ...error) *Error {
	return newError(KindUnauthorized, msg, cause)
}

func Forbidden(msg string, cause ...error) *Error {
	return newError(KindForbidden, msg, cause)
}

func Internal(msg string, cause ...error) *Error {
	return newError(KindInternal, msg, cause)
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the client-facing message. Internal errors never leak their cause.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Kind == KindInternal {
			return "internal server error"
		}
		if e.Message != "" {
			return e.Message
		}
		if e.Err != nil {
			return e.Err.Error()
		}
	}
	return "internal server error"
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
