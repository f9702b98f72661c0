// Package errors defines the typed error taxonomy for upstream gateway
// failures. Orchestration code branches on codes, never on error strings.
package errors

import (
	"fmt"
)

// ErrorCode represents a specific upstream failure type.
type ErrorCode string

const (
	// ErrCodeUnavailable indicates the upstream service is unreachable.
	ErrCodeUnavailable ErrorCode = "UNAVAILABLE"
	// ErrCodeTimeout indicates the upstream call exceeded its deadline.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeMalformedResponse indicates the upstream response did not match the expected schema.
	ErrCodeMalformedResponse ErrorCode = "MALFORMED_RESPONSE"
	// ErrCodeNotFound indicates retrieval returned nothing relevant.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
)

// UpstreamError is a structured error carrying a failure code.
type UpstreamError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// GetCode returns the error code.
func (e *UpstreamError) GetCode() ErrorCode {
	return e.Code
}

// Convenience constructors for common error types.

// Unavailable creates an unavailable error.
func Unavailable(msg string) *UpstreamError {
	return &UpstreamError{Code: ErrCodeUnavailable, Message: msg}
}

// Timeout creates a timeout error.
func Timeout(msg string) *UpstreamError {
	return &UpstreamError{Code: ErrCodeTimeout, Message: msg}
}

// MalformedResponse creates a malformed response error.
func MalformedResponse(msg string, cause error) *UpstreamError {
	return &UpstreamError{Code: ErrCodeMalformedResponse, Message: msg, Cause: cause}
}

// NotFound creates a not found error.
func NotFound(msg string) *UpstreamError {
	return &UpstreamError{Code: ErrCodeNotFound, Message: msg}
}

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *UpstreamError {
	return &UpstreamError{Code: ErrCodeInvalidArgument, Message: msg}
}

// Wrap wraps an existing error with a code and message.
func Wrap(cause error, code ErrorCode, msg string) *UpstreamError {
	return &UpstreamError{Code: code, Message: msg, Cause: cause}
}

// IsCode checks if an error is of a specific code.
func IsCode(err error, code ErrorCode) bool {
	if upErr, ok := err.(*UpstreamError); ok {
		return upErr.Code == code
	}
	return false
}

// GetCodeFromError extracts the error code from any error.
// Returns the provided default code if the error is not an UpstreamError.
func GetCodeFromError(err error, defaultCode ErrorCode) ErrorCode {
	if upErr, ok := err.(*UpstreamError); ok {
		return upErr.Code
	}
	return defaultCode
}
