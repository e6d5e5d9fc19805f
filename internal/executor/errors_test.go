package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

// TestNewSchedulingError verifies SchedulingError creation and Error() formatting.
func TestNewSchedulingError(t *testing.T) {
	tests := []struct {
		name        string
		reason      string
		err         error
		wantContain []string
	}{
		{
			name:        "reason only",
			reason:      "worker task panicked",
			err:         nil,
			wantContain: []string{"scheduling error", "worker task panicked"},
		},
		{
			name:        "with wrapped error",
			reason:      "submit rejected",
			err:         ErrPoolClosed,
			wantContain: []string{"submit rejected", "pool closed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			se := NewSchedulingError(tt.reason, tt.err)

			if se.Reason != tt.reason {
				t.Errorf("Reason = %q, want %q", se.Reason, tt.reason)
			}
			if se.Timestamp.IsZero() {
				t.Error("expected non-zero Timestamp")
			}

			errString := se.Error()
			for _, want := range tt.wantContain {
				if !strings.Contains(errString, want) {
					t.Errorf("Error() = %q, want to contain %q", errString, want)
				}
			}
		})
	}
}

// TestSchedulingErrorWrapping verifies errors.Is and errors.As through wrapping.
func TestSchedulingErrorWrapping(t *testing.T) {
	se := NewSchedulingError("submit rejected", ErrPoolClosed)
	wrapped := fmt.Errorf("session: %w", se)

	if !errors.Is(wrapped, ErrPoolClosed) {
		t.Error("expected errors.Is to find ErrPoolClosed")
	}

	var target *SchedulingError
	if !errors.As(wrapped, &target) {
		t.Fatal("expected errors.As to find SchedulingError")
	}
	if target.Reason != "submit rejected" {
		t.Errorf("Reason = %q", target.Reason)
	}
}

func TestIsSchedulingError(t *testing.T) {
	if IsSchedulingError(nil) {
		t.Error("nil should not be a scheduling error")
	}
	if IsSchedulingError(errors.New("plain")) {
		t.Error("plain error should not be a scheduling error")
	}
	if !IsSchedulingError(fmt.Errorf("wrap: %w", NewSchedulingError("x", nil))) {
		t.Error("wrapped SchedulingError should be detected")
	}
}

func TestIsShutdownTimeout(t *testing.T) {
	timeoutErr := newShutdownTimeoutError(50*time.Millisecond, 2)

	if !IsShutdownTimeout(timeoutErr) {
		t.Error("expected shutdown timeout to be detected")
	}
	if !errors.Is(timeoutErr, context.DeadlineExceeded) {
		t.Error("expected shutdown timeout to wrap context.DeadlineExceeded")
	}
	if !strings.Contains(timeoutErr.Error(), "2 task(s) still running") {
		t.Errorf("unexpected message: %s", timeoutErr.Error())
	}
	if IsShutdownTimeout(NewSchedulingError("panic", errors.New("boom"))) {
		t.Error("panic error is not a shutdown timeout")
	}
	if IsShutdownTimeout(context.DeadlineExceeded) {
		t.Error("bare DeadlineExceeded is not a scheduling error")
	}
}
