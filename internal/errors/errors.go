// Package errors provides a lightweight structured error type (WeaveError)
// for category-based classification of build-time failures in the CLI.
package errors

import (
	"fmt"
)

// ErrorCategory represents the category of a WeaveError for classification
type ErrorCategory string

const (
	// User-facing annotation and configuration errors
	CategoryAnnotation ErrorCategory = "annotation"
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Source scanning and code generation errors
	CategoryParse    ErrorCategory = "parse"
	CategoryGenerate ErrorCategory = "generate"

	// Infrastructure errors
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryCache      ErrorCategory = "cache"
	CategoryWatch      ErrorCategory = "watch"
	CategoryInternal   ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops the weave
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
)

// WeaveError is a structured error with category, severity, and context
type WeaveError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for WeaveError
type ContextFields map[string]any

// Error implements the error interface
func (e *WeaveError) Error() string {
	msg := e.Message
	if pos, ok := e.Context["position"]; ok {
		msg = fmt.Sprintf("%v: %s", pos, msg)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, msg, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, msg)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *WeaveError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *WeaveError) WithContext(key string, value any) *WeaveError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// WithPosition records the file:line position the diagnostic points at.
func (e *WeaveError) WithPosition(pos string) *WeaveError {
	return e.WithContext("position", pos)
}

// New creates a new WeaveError
func New(category ErrorCategory, severity ErrorSeverity, message string) *WeaveError {
	return &WeaveError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new WeaveError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *WeaveError {
	return &WeaveError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}
