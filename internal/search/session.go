package search

import (
	"context"
	"fmt"
	"iter"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/harrison/fsearch/internal/executor"
	"github.com/harrison/fsearch/internal/fileutil"
	"github.com/harrison/fsearch/internal/models"
	"github.com/harrison/fsearch/internal/pattern"
)

// Session is one running search. It owns its token, sink and worker pool.
// Sessions are single-use: the result stream can be consumed once.
type Session struct {
	id        string
	req       models.SearchRequest
	token     *Token
	sink      *Sink
	pool      *executor.Pool
	traverser *Traverser
	logger    Logger
	startedAt time.Time

	// stopLister aborts throttled listings once the token is set
	stopLister context.CancelFunc

	mu         sync.Mutex
	state      models.SessionState
	err        error
	finishedAt time.Time
	finished   chan struct{}

	consumed  atomic.Bool
	delivered atomic.Int64
}

func newSession(ctx context.Context, req models.SearchRequest, lister fileutil.DirectoryLister, matcher *pattern.Matcher, logger Logger) *Session {
	token := NewToken()
	sink := NewSink(req.Options.MaxResults, token)

	listerCtx, stopLister := context.WithCancel(context.Background())
	lister = fileutil.NewThrottledLister(listerCtx, lister, req.Options.MaxDirsPerSecond)

	s := &Session{
		id:         uuid.New().String(),
		req:        req,
		token:      token,
		sink:       sink,
		pool:       executor.NewPool(req.Options.MaxWorkers, func() { token.Cancel() }),
		traverser:  NewTraverser(lister, matcher, sink, token, logger, req.Options.IncludeDirectories),
		logger:     logger,
		stopLister: stopLister,
		state:      models.StateIdle,
		finished:   make(chan struct{}),
	}

	// Bridge caller context and token into the lister context.
	go func() {
		select {
		case <-ctx.Done():
			s.Cancel()
		case <-s.finished:
		}
	}()
	go func() {
		select {
		case <-token.Done():
			stopLister()
		case <-s.finished:
		}
	}()

	return s
}

// start matches the files directly under root, then fans out one task per
// top-level subdirectory onto the pool.
func (s *Session) start() {
	s.mu.Lock()
	s.state = models.StateRunning
	s.startedAt = time.Now()
	s.mu.Unlock()

	s.logger.LogSessionStart(s.id, s.req)

	var subdirs []string
	for _, entry := range s.traverser.list(s.req.Root) {
		if s.token.IsCancelled() {
			break
		}
		if s.traverser.visit(s.req.Root, entry) {
			subdirs = append(subdirs, filepath.Join(s.req.Root, entry.Name))
		}
	}

	go s.dispatch(subdirs)
	go s.monitor()
}

func (s *Session) dispatch(subdirs []string) {
	defer s.pool.Close()
	for _, dir := range subdirs {
		if s.token.IsCancelled() {
			return
		}
		if err := s.pool.Submit(func() { s.traverser.Traverse(dir) }); err != nil {
			s.logger.LogDebug(fmt.Sprintf("session %s: %v", s.id, err))
			return
		}
	}
	s.logger.LogDebug(fmt.Sprintf("session %s: dispatched %d subtree(s)", s.id, len(subdirs)))
}

// monitor moves the session to its terminal state once the pool drains or,
// after cancellation, once the shutdown window has elapsed.
func (s *Session) monitor() {
	select {
	case <-s.pool.Done():
		s.finish(s.pool.Wait())
	case <-s.token.Done():
		s.finish(s.pool.Shutdown(s.req.Options.ShutdownTimeout))
	}
}

func (s *Session) finish(poolErr error) {
	s.mu.Lock()
	if s.state.IsTerminal() {
		s.mu.Unlock()
		return
	}
	switch {
	case poolErr != nil:
		s.state = models.StateFailed
		s.err = fmt.Errorf("session %s: %w", s.id, poolErr)
	case s.token.IsCancelled():
		s.state = models.StateCancelled
	default:
		s.state = models.StateCompleted
	}
	s.finishedAt = time.Now()
	s.mu.Unlock()

	s.stopLister()
	s.logger.LogSessionComplete(s.Summary())
	close(s.finished)
}

// Results returns the lazy stream of matches. Matches are yielded as workers
// find them; the stream ends after the final flush once the session reaches
// a terminal state. At most MaxResults matches are yielded.
//
// Breaking out of the range loop cancels the session and waits for its
// workers. The stream is not restartable: only the first iteration yields.
func (s *Session) Results() iter.Seq[models.MatchResult] {
	return func(yield func(models.MatchResult) bool) {
		if !s.consumed.CompareAndSwap(false, true) {
			return
		}

		limit := int64(s.req.Options.MaxResults)

		// emit reports false when the stream must stop.
		emit := func(batch []models.MatchResult) bool {
			for _, m := range batch {
				if limit > 0 && s.delivered.Load() >= limit {
					return false
				}
				s.delivered.Add(1)
				if !yield(m) {
					return false
				}
			}
			return true
		}

		timer := time.NewTimer(s.req.Options.PollInterval)
		defer timer.Stop()

		for {
			select {
			case <-s.sink.Notify():
			case <-s.finished:
				emit(s.sink.Drain())
				return
			case <-timer.C:
			}

			if !emit(s.sink.Drain()) {
				s.Cancel()
				<-s.finished
				return
			}
			timer.Reset(s.req.Options.PollInterval)
		}
	}
}

// Collect drains the stream into a slice.
func (s *Session) Collect() []models.MatchResult {
	var out []models.MatchResult
	for m := range s.Results() {
		out = append(out, m)
	}
	return out
}

// Cancel requests a cooperative stop. It is idempotent, safe from any
// goroutine and a no-op once the session is terminal.
func (s *Session) Cancel() {
	if s.State().IsTerminal() {
		return
	}
	if s.token.Cancel() {
		s.logger.LogDebug(fmt.Sprintf("session %s: cancel requested", s.id))
	}
}

// Wait blocks until the session is terminal and returns its fatal error.
func (s *Session) Wait() error {
	<-s.finished
	return s.Err()
}

// Done is closed when the session reaches a terminal state.
func (s *Session) Done() <-chan struct{} {
	return s.finished
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Request returns the normalized request the session runs.
func (s *Session) Request() models.SearchRequest {
	return s.req
}

// State returns the current lifecycle state.
func (s *Session) State() models.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the fatal error of a failed session, nil otherwise.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Summary reports the session outcome so far.
func (s *Session) Summary() models.SessionSummary {
	s.mu.Lock()
	state := s.state
	err := s.err
	end := s.finishedAt
	started := s.startedAt
	s.mu.Unlock()

	if end.IsZero() {
		end = time.Now()
	}
	matched := s.sink.Count()
	if limit := s.req.Options.MaxResults; limit > 0 && matched > limit {
		matched = limit
	}

	summary := models.SessionSummary{
		ID:              s.id,
		Root:            s.req.Root,
		Pattern:         s.req.Pattern,
		Matched:         matched,
		Delivered:       int(s.delivered.Load()),
		State:           state,
		CapReached:      s.sink.CapReached(),
		TraversalErrors: s.traverser.ErrorCount(),
		StartedAt:       started,
		Duration:        end.Sub(started),
	}
	if err != nil {
		summary.Error = strings.TrimSpace(err.Error())
	}
	return summary
}
