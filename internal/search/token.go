package search

import (
	"sync"
	"sync/atomic"
)

// Token is a cooperative cancellation flag shared by pointer between a
// session, its sink and its workers. It only ever moves from unset to set.
type Token struct {
	flag atomic.Bool
	once sync.Once
	done chan struct{}
}

// NewToken returns an unset token.
func NewToken() *Token {
	return &Token{done: make(chan struct{})}
}

// Cancel sets the token. It reports whether this call was the one that set
// it; later calls are no-ops.
func (t *Token) Cancel() bool {
	set := false
	t.once.Do(func() {
		t.flag.Store(true)
		close(t.done)
		set = true
	})
	return set
}

// IsCancelled reports whether the token has been set. Lock-free.
func (t *Token) IsCancelled() bool {
	return t.flag.Load()
}

// Done is closed when the token is set.
func (t *Token) Done() <-chan struct{} {
	return t.done
}
