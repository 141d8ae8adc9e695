package aerr

import (
	"errors"
	"fmt"
)

// Code represents a stable error category that callers can switch on.
type Code string

const (
	CodeUnknown      Code = "unknown"
	CodeUnauthorized Code = "unauthorized"

	// CodeAuthFailed covers negotiation and token-endpoint failures.
	CodeAuthFailed Code = "auth_failed"
	// CodeAuthTimeout means the user did not finish the browser sign-in
	// before the authorization-code waiter gave up.
	CodeAuthTimeout Code = "auth_timeout"
	// CodeNoFreePort means every configured callback port was occupied.
	CodeNoFreePort Code = "no_free_port"

	// CodeNotFound maps a 404 from the platform: the job or resource
	// does not exist.
	CodeNotFound Code = "not_found"
	// CodeValidation maps any other 4xx: the request was malformed.
	CodeValidation Code = "validation"
	// CodeNotRunning is inferred when a telemetry socket closes before
	// delivering a single frame.
	CodeNotRunning Code = "not_running"
)

// Error is a simple value type that carries a Code plus the underlying error.
type Error struct {
	Code Code
	err  error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.err == nil {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %v", e.Code, e.err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

// New wraps an error with the provided code. If err is nil a nil is returned.
func New(code Code, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, err: err}
}

// Errorf wraps a formatted message with the provided code.
func Errorf(code Code, format string, args ...any) error {
	return &Error{Code: code, err: fmt.Errorf(format, args...)}
}

// IsCode helps callers compare codes without type assertions.
func IsCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
