package models

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOptionsNormalized(t *testing.T) {
	t.Run("fills defaults", func(t *testing.T) {
		opts := Options{}.Normalized()

		assert.Equal(t, runtime.NumCPU(), opts.MaxWorkers)
		assert.Equal(t, DefaultShutdownTimeout, opts.ShutdownTimeout)
		assert.Equal(t, DefaultPollInterval, opts.PollInterval)
		assert.Equal(t, 0, opts.MaxResults)
	})

	t.Run("keeps explicit values", func(t *testing.T) {
		opts := Options{
			MaxResults:      10,
			MaxWorkers:      3,
			ShutdownTimeout: time.Second,
			PollInterval:    10 * time.Millisecond,
		}.Normalized()

		assert.Equal(t, 10, opts.MaxResults)
		assert.Equal(t, 3, opts.MaxWorkers)
		assert.Equal(t, time.Second, opts.ShutdownTimeout)
		assert.Equal(t, 10*time.Millisecond, opts.PollInterval)
	})

	t.Run("negative workers resolve to cpu count", func(t *testing.T) {
		opts := Options{MaxWorkers: -4}.Normalized()
		assert.GreaterOrEqual(t, opts.MaxWorkers, 1)
	})
}

func TestSessionStateIsTerminal(t *testing.T) {
	tests := []struct {
		state    SessionState
		terminal bool
	}{
		{StateIdle, false},
		{StateRunning, false},
		{StateCompleted, true},
		{StateCancelled, true},
		{StateFailed, true},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			assert.Equal(t, tt.terminal, tt.state.IsTerminal())
		})
	}
}
