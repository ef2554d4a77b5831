package errors

import (
	stderr "errors"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeInvalidArgument    ErrorType = "INVALID_ARGUMENT"
	ErrorTypeNotFound           ErrorType = "NOT_FOUND"
	ErrorTypeConflict           ErrorType = "CONFLICT"
	ErrorTypePreconditionFailed ErrorType = "PRECONDITION_FAILED"
	ErrorTypeNoOp               ErrorType = "NO_OP"
	ErrorTypeUnimplemented      ErrorType = "UNIMPLEMENTED"
	ErrorTypeInternal           ErrorType = "INTERNAL"
)

// Sentinels for errors.Is. They match any *Error of the same type.
var (
	ErrInvalidArgument    = &Error{Type: ErrorTypeInvalidArgument}
	ErrNotFound           = &Error{Type: ErrorTypeNotFound}
	ErrConflict           = &Error{Type: ErrorTypeConflict}
	ErrPreconditionFailed = &Error{Type: ErrorTypePreconditionFailed}
	ErrNoOp               = &Error{Type: ErrorTypeNoOp}
	ErrUnimplemented      = &Error{Type: ErrorTypeUnimplemented}
)

type Error struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Code    int       `json:"code"`
	Details any       `json:"details,omitempty"`
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Type)
	}
	return e.Message
}

// Is matches on the error type only, so wrapped errors compare equal to the
// package sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

func newError(t ErrorType, code int, format string, args ...any) *Error {
	return &Error{
		Type:    t,
		Message: fmt.Sprintf(format, args...),
		Code:    code,
	}
}

func InvalidArgument(format string, args ...any) *Error {
	return newError(ErrorTypeInvalidArgument, http.StatusBadRequest, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return newError(ErrorTypeNotFound, http.StatusNotFound, format, args...)
}

func Conflict(format string, args ...any) *Error {
	return newError(ErrorTypeConflict, http.StatusConflict, format, args...)
}

func PreconditionFailed(format string, args ...any) *Error {
	return newError(ErrorTypePreconditionFailed, http.StatusPreconditionFailed, format, args...)
}

// NoOp is not a failure: the operation deliberately changed nothing.
func NoOp(format string, args ...any) *Error {
	return newError(ErrorTypeNoOp, http.StatusOK, format, args...)
}

func Unimplemented(format string, args ...any) *Error {
	return newError(ErrorTypeUnimplemented, http.StatusNotImplemented, format, args...)
}

func Internal(format string, args ...any) *Error {
	return newError(ErrorTypeInternal, http.StatusInternalServerError, format, args...)
}

// TypeOf returns the type of the first *Error in err's chain, or INTERNAL.
func TypeOf(err error) ErrorType {
	var e *Error
	if stderr.As(err, &e) {
		return e.Type
	}
	return ErrorTypeInternal
}

// StatusCode returns the HTTP status for err.
func StatusCode(err error) int {
	var e *Error
	if stderr.As(err, &e) && e.Code != 0 {
		return e.Code
	}
	return http.StatusInternalServerError
}

// Is reports whether any error in err's chain matches target
// (a shortcut to standard lib errors.Is)
func Is(err, target error) bool {
	return stderr.Is(err, target)
}

// As is a shortcut to standard lib errors.As.
func As(err error, target interface{}) bool {
	return stderr.As(err, target)
}
