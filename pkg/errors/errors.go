// Package errors provides structured error types for the part renderer.
//
// Error codes separate the two failure classes the pipeline distinguishes:
// configuration and artifact problems are fatal, while geometry and
// document-structure anomalies are recovered locally with diagnostics.
//
// # Usage
//
//	err := errors.New(errors.ErrCodePartNotFound, "part %s not found", ref)
//	if errors.Is(err, errors.ErrCodePartNotFound) {
//	    // 404 in server mode, exit 1 in CLI mode
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the failure categories the pipeline reports.
const (
	// Input validation errors: fatal at startup.
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeInvalidPath  Code = "INVALID_PATH"

	// Resource lookup errors.
	ErrCodePartNotFound Code = "PART_NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// External renderer errors: fatal for the current render.
	ErrCodeRenderFailed    Code = "RENDER_FAILED"
	ErrCodeArtifactMissing Code = "ARTIFACT_MISSING"
	ErrCodeTimeout         Code = "TIMEOUT"

	// Internal errors.
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
