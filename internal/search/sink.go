package search

import (
	"sync"
	"sync/atomic"

	"github.com/harrison/fsearch/internal/models"
)

// Sink collects matches from all workers of one session.
//
// It de-duplicates by path, buffers accepted matches until Drain and enforces
// the result cap: once maxResults matches were accepted, further offers are
// rejected and the session token is set.
type Sink struct {
	maxResults int
	token      *Token

	mu       sync.Mutex
	seen     map[string]struct{}
	pending  []models.MatchResult
	accepted int

	capReached atomic.Bool
	notify     chan struct{}
}

// NewSink creates a sink with the given cap (0 = unlimited).
func NewSink(maxResults int, token *Token) *Sink {
	return &Sink{
		maxResults: maxResults,
		token:      token,
		seen:       make(map[string]struct{}),
		notify:     make(chan struct{}, 1),
	}
}

// Offer adds m unless its path was already seen or the cap is reached.
// It reports whether m was accepted.
func (s *Sink) Offer(m models.MatchResult) bool {
	s.mu.Lock()
	if s.maxResults > 0 && s.accepted >= s.maxResults {
		s.mu.Unlock()
		s.reachCap()
		return false
	}
	if _, dup := s.seen[m.Path]; dup {
		s.mu.Unlock()
		return false
	}
	s.seen[m.Path] = struct{}{}
	s.pending = append(s.pending, m)
	s.accepted++
	full := s.maxResults > 0 && s.accepted >= s.maxResults
	s.mu.Unlock()

	// Non-blocking: one pending signal is enough to wake the consumer.
	select {
	case s.notify <- struct{}{}:
	default:
	}

	if full {
		s.reachCap()
	}
	return true
}

func (s *Sink) reachCap() {
	s.capReached.Store(true)
	if s.token != nil {
		s.token.Cancel()
	}
}

// Drain returns and clears the buffered matches. It never blocks.
func (s *Sink) Drain() []models.MatchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.pending
	s.pending = nil
	return out
}

// Count returns the number of accepted matches.
func (s *Sink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accepted
}

// CapReached reports whether the cap stopped the search.
func (s *Sink) CapReached() bool {
	return s.capReached.Load()
}

// Notify receives a value after at least one match was accepted since the
// last receive.
func (s *Sink) Notify() <-chan struct{} {
	return s.notify
}
