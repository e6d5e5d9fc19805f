package search

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harrison/fsearch/internal/executor"
)

// ErrValidation is wrapped by every ValidationError so callers can use
// errors.Is(err, ErrValidation).
var ErrValidation = errors.New("invalid search request")

// ValidationError reports a bad SearchRequest. It is returned synchronously
// by Search before any work starts.
type ValidationError struct {
	Field  string // Request field at fault: root, pattern, max_results
	Reason string // Human-readable description
	Err    error  // Underlying error (optional)
}

func newValidationError(field, reason string, err error) *ValidationError {
	return &ValidationError{Field: field, Reason: reason, Err: err}
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Reason))
	if e.Err != nil {
		sb.WriteString(fmt.Sprintf(": %v", e.Err))
	}
	return sb.String()
}

// Unwrap returns ErrValidation and the underlying error, if any.
func (e *ValidationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrValidation}
	}
	return []error{ErrValidation, e.Err}
}

// TraversalError describes a directory (or file) that could not be read.
// Traversal errors are logged and counted, never surfaced as session failures.
type TraversalError struct {
	Path      string    // Directory or file involved
	Op        string    // "list" or "stat"
	Err       error     // Underlying error
	Timestamp time.Time // When the error occurred
}

func newTraversalError(op, path string, err error) *TraversalError {
	return &TraversalError{Path: path, Op: op, Err: err, Timestamp: time.Now()}
}

// Error implements the error interface for TraversalError.
func (e *TraversalError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error for error wrapping support.
func (e *TraversalError) Unwrap() error {
	return e.Err
}

// IsValidationError checks if the error is or wraps a ValidationError.
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsTraversalError checks if the error is or wraps a TraversalError.
func IsTraversalError(err error) bool {
	if err == nil {
		return false
	}
	var te *TraversalError
	return errors.As(err, &te)
}

// IsSchedulingError checks if the error is or wraps an executor.SchedulingError.
func IsSchedulingError(err error) bool {
	return executor.IsSchedulingError(err)
}
