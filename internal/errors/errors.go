// Package errors provides structured error types for the raidmeter system.
// All errors include a category, code, message, and retryable flag for
// consistent error handling across components.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors by system component.
type ErrorCategory string

const (
	ErrCategoryConnection    ErrorCategory = "CONNECTION"
	ErrCategoryMigration     ErrorCategory = "MIGRATION"
	ErrCategoryPersistence   ErrorCategory = "PERSISTENCE"
	ErrCategoryQuery         ErrorCategory = "QUERY"
	ErrCategorySerialization ErrorCategory = "SERIALIZATION"
	ErrCategoryUplink        ErrorCategory = "UPLINK"
	ErrCategoryInternal      ErrorCategory = "INTERNAL"
)

// Error codes for each category.
const (
	// Connection codes
	CodeAcquisitionFailed = "ACQUISITION_FAILED"

	// Migration codes
	CodeIntrospectionFailed = "INTROSPECTION_FAILED"
	CodeDDLFailed           = "DDL_FAILED"

	// Persistence codes
	CodeConstraintViolation = "CONSTRAINT_VIOLATION"
	CodeWriteFailed         = "WRITE_FAILED"

	// Query codes
	CodeInvalidSort = "INVALID_SORT"
	CodeBuildFailed = "BUILD_FAILED"
	CodeScanFailed  = "SCAN_FAILED"

	// Serialization codes
	CodeEncodeFailed = "ENCODE_FAILED"
	CodeDecodeFailed = "DECODE_FAILED"

	// Uplink codes
	CodePushFailed = "PUSH_FAILED"

	// Internal codes
	CodeUnexpected = "UNEXPECTED"
)

// Error is the structured error type used throughout the system.
type Error struct {
	Category  ErrorCategory
	Code      string
	Message   string
	Details   map[string]interface{}
	Cause     error
	Retryable bool
}

// Error returns a formatted error string.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// New creates a new Error.
func New(category ErrorCategory, code, message string) *Error {
	return &Error{
		Category:  category,
		Code:      code,
		Message:   message,
		Retryable: isRetryable(category, code),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(category ErrorCategory, code, message string, cause error) *Error {
	return &Error{
		Category:  category,
		Code:      code,
		Message:   message,
		Cause:     cause,
		Retryable: isRetryable(category, code),
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

// IsRetryable checks whether an error (or its chain) is retryable.
func IsRetryable(err error) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Retryable
	}
	return false
}

// GetCategory extracts the error category from an error chain.
// Returns empty string if the error is not a structured Error.
func GetCategory(err error) ErrorCategory {
	var re *Error
	if errors.As(err, &re) {
		return re.Category
	}
	return ""
}

// GetCode extracts the error code from an error chain.
// Returns empty string if the error is not a structured Error.
func GetCode(err error) string {
	var re *Error
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

// isRetryable determines if an error code is retryable. Pool checkout and
// upstream pushes can be retried by the caller; schema and write failures
// cannot.
func isRetryable(category ErrorCategory, code string) bool {
	switch {
	case category == ErrCategoryConnection && code == CodeAcquisitionFailed:
		return true
	case category == ErrCategoryUplink && code == CodePushFailed:
		return true
	default:
		return false
	}
}

// Convenience constructors for common errors.

func NewConnectionError(message string, cause error) *Error {
	return Wrap(ErrCategoryConnection, CodeAcquisitionFailed, message, cause)
}

func NewMigrationError(code, message string, cause error) *Error {
	return Wrap(ErrCategoryMigration, code, message, cause)
}

func NewPersistenceError(code, message string, cause error) *Error {
	return Wrap(ErrCategoryPersistence, code, message, cause)
}

func NewQueryError(code, message string) *Error {
	return New(ErrCategoryQuery, code, message)
}

func NewSerializationError(code, message string, cause error) *Error {
	return Wrap(ErrCategorySerialization, code, message, cause)
}

func NewUplinkError(message string, cause error) *Error {
	return Wrap(ErrCategoryUplink, CodePushFailed, message, cause)
}

func NewInternalError(message string, cause error) *Error {
	return Wrap(ErrCategoryInternal, CodeUnexpected, message, cause)
}
