package apperrors

import (
	"fmt"
	"net/http"
)

// Kind classifies an error for HTTP mapping and logging.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindInvalidCredential
	KindNotFound
	KindForbidden
	KindConflict
)

// Error is the failure type every handler maps to a response. Fields carries
// field-level validation messages; Err is the wrapped cause, logged
// server-side but never sent to clients for internal errors.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Status returns the HTTP status code for the error kind.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindUnauthenticated, KindInvalidCredential, KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func Validation(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: "validation failed", Fields: fields}
}

func Unauthenticated(message string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: message}
}

func InvalidCredential(message string, err error) *Error {
	return &Error{Kind: KindInvalidCredential, Message: message, Err: err}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// Conflict reports a state clash such as an already-liked post or a taken
// handle. Fields may carry the original field-keyed body.
func Conflict(message string, fields map[string]string) *Error {
	return &Error{Kind: KindConflict, Message: message, Fields: fields}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "something went wrong", Err: err}
}
