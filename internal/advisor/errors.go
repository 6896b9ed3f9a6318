package advisor

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	ErrorInvalidInput ErrorCode = "INVALID_INPUT"
	ErrorTransport    ErrorCode = "TRANSPORT_ERROR"
	ErrorRateLimited  ErrorCode = "RATE_LIMITED"
	ErrorTimeout      ErrorCode = "TIMEOUT"
	ErrorParse        ErrorCode = "PARSE_ERROR"
	ErrorValidation   ErrorCode = "VALIDATION_ERROR"
	ErrorInternal     ErrorCode = "INTERNAL_ERROR"
)

// Error is the single error type returned by Service operations.
type Error struct {
	Code   ErrorCode
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("advisor: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("advisor: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}

// CodeOf returns the code carried by err, or ErrorInternal for foreign errors.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrorInternal
}

// IsTransport reports network, availability, rate-limit and timeout failures.
func IsTransport(err error) bool {
	switch CodeOf(err) {
	case ErrorTransport, ErrorRateLimited, ErrorTimeout:
		return true
	}
	return false
}

// IsParse reports a model response that could not be decoded.
func IsParse(err error) bool {
	return err != nil && CodeOf(err) == ErrorParse
}

// IsValidation reports a decoded response that violated domain constraints.
func IsValidation(err error) bool {
	return err != nil && CodeOf(err) == ErrorValidation
}
