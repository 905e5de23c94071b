package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error and fixes its HTTP status.
type Kind int

const (
	ValidationFailed Kind = iota + 1
	Unauthenticated
	Forbidden
	NotFound
	Conflict
	PayloadTooLarge
	InvalidFileType
	InternalFailure
)

func (k Kind) String() string {
	switch k {
	case ValidationFailed:
		return "validation_failed"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case PayloadTooLarge:
		return "payload_too_large"
	case InvalidFileType:
		return "invalid_file_type"
	default:
		return "internal_failure"
	}
}

// StatusCode maps the kind to its HTTP status.
func (k Kind) StatusCode() int {
	switch k {
	case ValidationFailed:
		return http.StatusBadRequest
	case Unauthenticated:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case PayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case InvalidFileType:
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a kind, a client-safe message and an optional wrapped cause.
// The cause is never serialized to clients.
type Error struct {
	Kind    Kind
	Message string
	Details interface{}
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

func (e *Error) StatusCode() int {
	return e.Kind.StatusCode()
}

// Is lets errors.Is match on kind sentinels built with New.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind && (t.Message == "" || t.Message == e.Message)
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string, details interface{}) *Error {
	return &Error{Kind: ValidationFailed, Message: message, Details: details}
}

func NotFoundf(resource string) *Error {
	return &Error{Kind: NotFound, Message: fmt.Sprintf("%s not found", resource)}
}

func Conflictf(format string, args ...interface{}) *Error {
	return &Error{Kind: Conflict, Message: fmt.Sprintf(format, args...)}
}

// Internal hides the cause behind a generic message.
func Internal(err error) *Error {
	return &Error{Kind: InternalFailure, Message: "internal server error", Err: err}
}

// KindOf returns the kind of err, or InternalFailure for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return InternalFailure
}
