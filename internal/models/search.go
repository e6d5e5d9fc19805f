package models

import (
	"runtime"
	"time"
)

// Default tuning values applied by Options.Normalized.
const (
	DefaultShutdownTimeout = 5 * time.Second
	DefaultPollInterval    = 250 * time.Millisecond
)

// Options controls a single search session.
type Options struct {
	// MaxResults caps the number of delivered matches (0 = unlimited)
	MaxResults int

	// MaxWorkers bounds the number of concurrently walked top-level subtrees.
	// Values <= 0 resolve to runtime.NumCPU().
	MaxWorkers int

	// ShutdownTimeout is how long a cancelled session waits for its workers
	ShutdownTimeout time.Duration

	// PollInterval bounds how long the result stream blocks before re-checking
	// session state when no notification arrives.
	PollInterval time.Duration

	// MaxDirsPerSecond throttles directory listings (0 = unthrottled)
	MaxDirsPerSecond float64

	// IncludeDirectories also reports directories whose names match
	IncludeDirectories bool
}

// Normalized returns a copy of o with defaults filled in.
func (o Options) Normalized() Options {
	if o.MaxWorkers <= 0 {
		o.MaxWorkers = runtime.NumCPU()
	}
	if o.MaxWorkers < 1 {
		o.MaxWorkers = 1
	}
	if o.ShutdownTimeout <= 0 {
		o.ShutdownTimeout = DefaultShutdownTimeout
	}
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	return o
}

// SearchRequest describes one search. It is treated as immutable once a
// session has been started from it.
type SearchRequest struct {
	Root    string  // Directory to search
	Pattern string  // Glob pattern matched against file names
	Options Options // Limits and tuning
}

// MatchResult is one discovered match. Values are created once per unique
// path and never modified afterwards.
type MatchResult struct {
	Path        string    // Full path of the match
	Name        string    // Base name of the match
	IsDirectory bool      // True when the match is a directory
	Size        int64     // Size in bytes (0 for directories)
	ModifiedAt  time.Time // Last modification time
}

// SessionState is the lifecycle state of a search session.
type SessionState string

// Session lifecycle states
const (
	StateIdle      SessionState = "idle"
	StateRunning   SessionState = "running"
	StateCompleted SessionState = "completed"
	StateCancelled SessionState = "cancelled"
	StateFailed    SessionState = "failed"
)

// IsTerminal reports whether no further transitions can happen from s.
func (s SessionState) IsTerminal() bool {
	switch s {
	case StateCompleted, StateCancelled, StateFailed:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (s SessionState) String() string {
	return string(s)
}

// SessionSummary is the aggregate outcome of a finished session.
type SessionSummary struct {
	ID              string        // Session identifier
	Root            string        // Searched directory
	Pattern         string        // Pattern used
	Matched         int           // Matches accepted by the engine (capped)
	Delivered       int           // Matches handed to the caller
	State           SessionState  // Terminal (or current) state
	CapReached      bool          // MaxResults stopped the search
	TraversalErrors int           // Directories that could not be listed
	StartedAt       time.Time     // Session start
	Duration        time.Duration // Wall time until the terminal state
	Error           string        // Fatal error message, if any
}
