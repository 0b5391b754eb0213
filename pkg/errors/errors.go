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

	// Usage and precondition errors
	ErrMissingDevice  ErrorCode = "USAGE_MISSING_DEVICE"
	ErrNotBlockDevice ErrorCode = "VALIDATION_NOT_BLOCK_DEVICE"
	ErrNotRoot        ErrorCode = "PERMISSION_NOT_ROOT"

	// Delegate errors
	ErrDelegateFailed ErrorCode = "DELEGATE_FAILED"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrMachineID   ErrorCode = "CONFIG_MACHINE_ID"

	// Rendering and persistence errors
	ErrTemplateParse  ErrorCode = "TEMPLATE_PARSE"
	ErrTemplateRender ErrorCode = "TEMPLATE_RENDER"
	ErrPromptRead     ErrorCode = "PROMPT_READ"
	ErrFileWrite      ErrorCode = "WRITE_FAILED"
)

// NixzfsError represents a structured error with code and details
type NixzfsError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *NixzfsError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *NixzfsError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *NixzfsError) Is(target error) bool {
	var targetErr *NixzfsError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new NixzfsError with the given code and message
func New(code ErrorCode, message string) *NixzfsError {
	return &NixzfsError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new NixzfsError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *NixzfsError {
	return &NixzfsError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a NixzfsError
func Wrap(err error, code ErrorCode, message string) *NixzfsError {
	if err == nil {
		return nil
	}
	return &NixzfsError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *NixzfsError {
	if err == nil {
		return nil
	}
	return &NixzfsError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *NixzfsError) WithDetail(key string, value interface{}) *NixzfsError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *NixzfsError) WithDetails(details map[string]interface{}) *NixzfsError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var nixErr *NixzfsError
	if errors.As(err, &nixErr) {
		return nixErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a NixzfsError
func GetErrorCode(err error) ErrorCode {
	var nixErr *NixzfsError
	if errors.As(err, &nixErr) {
		return nixErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a NixzfsError
func GetErrorDetails(err error) map[string]interface{} {
	var nixErr *NixzfsError
	if errors.As(err, &nixErr) {
		return nixErr.Details
	}
	return nil
}
