package search

import (
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/harrison/fsearch/internal/fileutil"
	"github.com/harrison/fsearch/internal/models"
	"github.com/harrison/fsearch/internal/pattern"
)

// Traverser walks directory subtrees for one session. A single Traverser is
// shared by all workers of the session; it holds no per-walk state.
type Traverser struct {
	lister      fileutil.DirectoryLister
	matcher     *pattern.Matcher
	sink        *Sink
	token       *Token
	logger      Logger
	includeDirs bool

	errCount atomic.Int64
}

// NewTraverser wires a traverser to its collaborators.
func NewTraverser(lister fileutil.DirectoryLister, matcher *pattern.Matcher, sink *Sink, token *Token, logger Logger, includeDirs bool) *Traverser {
	return &Traverser{
		lister:      lister,
		matcher:     matcher,
		sink:        sink,
		token:       token,
		logger:      logger,
		includeDirs: includeDirs,
	}
}

// Traverse walks dir depth-first on the calling goroutine. The token is
// checked before every entry and before every descent. Symlinked
// directories are never entered.
func (t *Traverser) Traverse(dir string) {
	if t.token.IsCancelled() {
		return
	}
	for _, entry := range t.list(dir) {
		if t.token.IsCancelled() {
			return
		}
		if !t.visit(dir, entry) {
			continue
		}
		if t.token.IsCancelled() {
			return
		}
		t.Traverse(filepath.Join(dir, entry.Name))
	}
}

// visit offers entry to the sink if it matches and reports whether it is a
// directory the walk should descend into.
func (t *Traverser) visit(dir string, entry fileutil.Entry) bool {
	switch {
	case entry.IsDir && entry.IsSymlink:
		return false
	case entry.IsDir:
		if t.includeDirs && t.matcher.Matches(entry.Name) {
			t.offer(dir, entry)
		}
		return true
	case entry.IsFile:
		if t.matcher.Matches(entry.Name) {
			t.offer(dir, entry)
		}
	}
	return false
}

func (t *Traverser) offer(dir string, entry fileutil.Entry) {
	path := filepath.Join(dir, entry.Name)
	st, err := t.lister.Stat(path)
	if err != nil {
		t.record(newTraversalError("stat", path, err))
		return
	}
	t.sink.Offer(models.MatchResult{
		Path:        path,
		Name:        entry.Name,
		IsDirectory: entry.IsDir,
		Size:        st.Size,
		ModifiedAt:  st.ModifiedAt,
	})
}

// list returns the entries of dir. Any failure, including a panic in the
// lister, is logged and yields no entries so siblings keep being walked.
func (t *Traverser) list(dir string) (entries []fileutil.Entry) {
	defer func() {
		if r := recover(); r != nil {
			t.record(newTraversalError("list", dir, fmt.Errorf("lister panic: %v", r)))
			entries = nil
		}
	}()

	entries, err := t.lister.ListEntries(dir)
	if err != nil {
		if !t.token.IsCancelled() {
			t.record(newTraversalError("list", dir, err))
		}
		return nil
	}
	return entries
}

func (t *Traverser) record(err *TraversalError) {
	t.errCount.Add(1)
	t.logger.LogTraversalError(err)
}

// ErrorCount returns how many traversal errors were recorded.
func (t *Traverser) ErrorCount() int {
	return int(t.errCount.Load())
}
