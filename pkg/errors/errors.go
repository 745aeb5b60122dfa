package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown  ErrorCode = "UNKNOWN"
	ErrInternal ErrorCode = "INTERNAL"

	// Configuration errors
	ErrConfigLoad    ErrorCode = "CONFIG_LOAD"
	ErrConfigInvalid ErrorCode = "CONFIG_INVALID"

	// Resolver errors
	ErrProjectNotFound ErrorCode = "PROJECT_NOT_FOUND"
	ErrScanFailed      ErrorCode = "SCAN_FAILED"

	// Linker errors
	ErrDirCreate     ErrorCode = "DIR_CREATE"
	ErrSymlinkCreate ErrorCode = "SYMLINK_CREATE"

	// ErrUnsafeRemove is the safety-guard failure: a path slated for
	// removal exists but is not a symlink. It aborts the whole run.
	ErrUnsafeRemove ErrorCode = "UNSAFE_REMOVE"
)

// BamlinkError represents a structured error with code and details
type BamlinkError struct {
	Code    ErrorCode
	Message string
	Wrapped error
}

// Error implements the error interface
func (e *BamlinkError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *BamlinkError) Unwrap() error {
	return e.Wrapped
}

// Is implements the errors.Is interface; two BamlinkErrors match when
// their codes match.
func (e *BamlinkError) Is(target error) bool {
	var targetErr *BamlinkError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new BamlinkError with the given code and message
func New(code ErrorCode, message string) *BamlinkError {
	return &BamlinkError{Code: code, Message: message}
}

// Newf creates a new BamlinkError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *BamlinkError {
	return &BamlinkError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with a BamlinkError
func Wrap(err error, code ErrorCode, message string) *BamlinkError {
	if err == nil {
		return nil
	}
	return &BamlinkError{Code: code, Message: message, Wrapped: err}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *BamlinkError {
	if err == nil {
		return nil
	}
	return &BamlinkError{Code: code, Message: fmt.Sprintf(format, args...), Wrapped: err}
}

// IsCode checks if an error has a specific error code
func IsCode(err error, code ErrorCode) bool {
	var blErr *BamlinkError
	if errors.As(err, &blErr) {
		return blErr.Code == code
	}
	return false
}

// GetCode returns the error code from an error, or ErrUnknown if the
// error is not a BamlinkError
func GetCode(err error) ErrorCode {
	var blErr *BamlinkError
	if errors.As(err, &blErr) {
		return blErr.Code
	}
	return ErrUnknown
}
