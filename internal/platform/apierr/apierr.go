package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes surfaced in API responses. One code per failure class; no
// further detail crosses the boundary.
const (
	CodeUnauthorized    = "unauthorized"
	CodeValidationError = "validation_error"
	CodeNotFound        = "not_found"
	CodeUpstreamFailure = "upstream_failure"
	CodeInternalError   = "internal_error"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func Unauthorized(err error) *Error {
	return New(http.StatusUnauthorized, CodeUnauthorized, err)
}

func Validation(err error) *Error {
	return New(http.StatusBadRequest, CodeValidationError, err)
}

func Validationf(format string, args ...any) *Error {
	return Validation(fmt.Errorf(format, args...))
}

func NotFound(err error) *Error {
	return New(http.StatusNotFound, CodeNotFound, err)
}

func NotFoundf(format string, args ...any) *Error {
	return NotFound(fmt.Errorf(format, args...))
}

func Upstream(err error) *Error {
	return New(http.StatusInternalServerError, CodeUpstreamFailure, err)
}

func Internal(err error) *Error {
	return New(http.StatusInternalServerError, CodeInternalError, err)
}

// From normalizes any error into an *Error; unrecognized errors become
// internal_error so handlers never leak an unmapped status.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal(err)
}

func IsCode(err error, code string) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}
