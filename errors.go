package hookhttp

import (
	"errors"
	"fmt"
)

// ErrorCode classifies client errors.
type ErrorCode int

const (
	// ErrCodeConfig indicates a malformed option or configuration value.
	ErrCodeConfig ErrorCode = iota
	// ErrCodeConnection indicates a transport-level connection failure.
	ErrCodeConnection
	// ErrCodeTimeout indicates the configured timeout elapsed.
	ErrCodeTimeout
	// ErrCodeRedirect indicates the redirect hop limit was exceeded.
	ErrCodeRedirect
	// ErrCodeProtocol indicates the transport adapter breached its result
	// contract. Never produced by well-behaved adapters.
	ErrCodeProtocol
)

// String returns the error code name.
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeConfig:
		return "config"
	case ErrCodeConnection:
		return "connection"
	case ErrCodeTimeout:
		return "timeout"
	case ErrCodeRedirect:
		return "redirect"
	case ErrCodeProtocol:
		return "protocol"
	default:
		return "unknown"
	}
}

// Error is a structured client error. Message carries the transport's
// human-readable reason verbatim (e.g. "conn_failed").
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("hookhttp: %s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewConfigError creates a configuration error.
func NewConfigError(msg string) *Error {
	return &Error{Code: ErrCodeConfig, Message: msg}
}

// NewConnectionError creates a connection error. err may be nil when the
// transport reported no detail.
func NewConnectionError(msg string, err error) *Error {
	return &Error{Code: ErrCodeConnection, Message: msg, Err: err}
}

// NewTimeoutError creates a timeout error.
func NewTimeoutError(err error) *Error {
	msg := "timeout"
	if err != nil {
		msg = err.Error()
	}
	return &Error{Code: ErrCodeTimeout, Message: msg, Err: err}
}

// NewRedirectError creates a redirect hop-limit error.
func NewRedirectError(msg string) *Error {
	return &Error{Code: ErrCodeRedirect, Message: msg}
}

// NewProtocolError creates a boundary contract violation error.
func NewProtocolError(msg string) *Error {
	return &Error{Code: ErrCodeProtocol, Message: msg}
}

// IsConfig checks if an error is a configuration error.
func IsConfig(err error) bool { return is(err, ErrCodeConfig) }

// IsConnection checks if an error is a connection error.
func IsConnection(err error) bool { return is(err, ErrCodeConnection) }

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool { return is(err, ErrCodeTimeout) }

// IsRedirectLimit checks if an error is a redirect hop-limit error.
func IsRedirectLimit(err error) bool { return is(err, ErrCodeRedirect) }

// IsProtocol checks if an error is a boundary contract violation.
func IsProtocol(err error) bool { return is(err, ErrCodeProtocol) }

func is(err error, code ErrorCode) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}
