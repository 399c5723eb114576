// Package errors provides a lightweight structured error type (TrackerError)
// for category-based classification in the bot, HTTP, and CLI adapters.
package errors

import (
	"fmt"
)

// ErrorCategory represents the category of a tracker error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// External system integration errors
	CategoryStorage  ErrorCategory = "storage"
	CategoryTelegram ErrorCategory = "telegram"

	// Runtime and infrastructure errors
	CategoryRuntime  ErrorCategory = "runtime"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
)

// TrackerError is a structured error with category, retryability, and context
type TrackerError struct {
	Category  ErrorCategory `json:"category"`
	Severity  ErrorSeverity `json:"severity"`
	Message   string        `json:"message"`
	Cause     error         `json:"cause,omitempty"`
	Retryable bool          `json:"retryable"`
	Context   ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for TrackerError
type ContextFields map[string]any

// Error implements the error interface
func (e *TrackerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *TrackerError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *TrackerError) WithContext(key string, value any) *TrackerError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new TrackerError
func New(category ErrorCategory, severity ErrorSeverity, message string) *TrackerError {
	return &TrackerError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Retryable: false,
	}
}

// Wrap creates a new TrackerError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *TrackerError {
	return &TrackerError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Cause:     err,
		Retryable: false,
	}
}

// WrapRetryable creates a new retryable TrackerError that wraps an existing error
func WrapRetryable(err error, category ErrorCategory, severity ErrorSeverity, message string) *TrackerError {
	return &TrackerError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Cause:     err,
		Retryable: true,
	}
}

// IsCategory reports whether err (or anything it wraps) is a TrackerError of
// the given category.
func IsCategory(err error, category ErrorCategory) bool {
	for err != nil {
		if te, ok := err.(*TrackerError); ok && te.Category == category {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
