// Package errors provides structured error types for knitstack.
//
// Leaf packages such as pkg/knit and pkg/script return plain sentinel errors.
// The simulator, pipeline and HTTP layers attach a machine-readable [Code] so
// that:
//   - the CLI can print a short user message
//   - the viewer API can pick an HTTP status
//   - callers can branch on the failure category without string matching
//
// # Error Codes
//
// Codes follow a hierarchical naming convention:
//   - INVALID_*: malformed input (needles, scripts, snapshots, options)
//   - NOT_FOUND: missing step or cached artifact
//   - PRECONDITION_FAILED: an operation the machine state cannot honour
//   - UNSUPPORTED / INTERNAL_ERROR: everything else
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidNeedle, "bad needle %q", tok)
//	if errors.Is(err, errors.ErrCodeInvalidNeedle) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors and tie them to a script line
//	err := errors.Wrap(errors.ErrCodePrecondition, cause, "xfer f0 b0").AtLine(12)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidNeedle   Code = "INVALID_NEEDLE"
	ErrCodeInvalidScript   Code = "INVALID_SCRIPT"
	ErrCodeInvalidSnapshot Code = "INVALID_SNAPSHOT"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidOptions  Code = "INVALID_OPTIONS"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Machine state errors
	ErrCodePrecondition Code = "PRECONDITION_FAILED"

	// Internal errors
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Line    int    // Script line the error is tied to, zero if none
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	prefix := string(e.Code)
	if e.Line > 0 {
		prefix = fmt.Sprintf("%s: line %d", e.Code, e.Line)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// AtLine ties the error to a script line and returns it for chaining.
func (e *Error) AtLine(line int) *Error {
	e.Line = line
	return e
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

// GetLine returns the script line attached to the outermost *Error, or zero.
func GetLine(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Line
	}
	return 0
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		msg := e.Message
		if e.Line > 0 {
			msg = fmt.Sprintf("line %d: %s", e.Line, msg)
		}
		if e.Cause != nil {
			msg += ": " + e.Cause.Error()
		}
		return msg
	}
	return err.Error()
}

// IsInvalid reports whether the code belongs to the INVALID_* family.
func (c Code) IsInvalid() bool {
	switch c {
	case ErrCodeInvalidInput, ErrCodeInvalidNeedle, ErrCodeInvalidScript,
		ErrCodeInvalidSnapshot, ErrCodeInvalidFormat, ErrCodeInvalidOptions:
		return true
	}
	return false
}
