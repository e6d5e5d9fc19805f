package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SchedulingError is a fatal worker pool failure: a shutdown that did not
// finish in time or an unrecoverable fault inside a pool task.
type SchedulingError struct {
	Reason    string    // Human-readable description
	Err       error     // Underlying error (optional)
	Timestamp time.Time // When the failure was detected
}

// NewSchedulingError creates a SchedulingError with the current timestamp.
func NewSchedulingError(reason string, err error) *SchedulingError {
	return &SchedulingError{
		Reason:    reason,
		Err:       err,
		Timestamp: time.Now(),
	}
}

// newShutdownTimeoutError reports workers that outlived the shutdown window.
func newShutdownTimeoutError(timeout time.Duration, running int64) *SchedulingError {
	return NewSchedulingError(
		fmt.Sprintf("shutdown timed out after %v with %d task(s) still running", timeout, running),
		context.DeadlineExceeded,
	)
}

// Error implements the error interface for SchedulingError.
func (e *SchedulingError) Error() string {
	var sb strings.Builder
	sb.WriteString("scheduling error: ")
	sb.WriteString(e.Reason)
	if e.Err != nil {
		sb.WriteString(fmt.Sprintf(": %v", e.Err))
	}
	return sb.String()
}

// Unwrap returns the underlying error for error wrapping support.
func (e *SchedulingError) Unwrap() error {
	return e.Err
}

// ErrPoolClosed is wrapped by the SchedulingError returned from Submit after Close.
var ErrPoolClosed = errors.New("pool closed for submission")

// IsSchedulingError checks if the error is or wraps a SchedulingError.
func IsSchedulingError(err error) bool {
	if err == nil {
		return false
	}
	var se *SchedulingError
	return errors.As(err, &se)
}

// IsShutdownTimeout checks if the error is a SchedulingError caused by an
// expired shutdown window.
func IsShutdownTimeout(err error) bool {
	return IsSchedulingError(err) && errors.Is(err, context.DeadlineExceeded)
}
