package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/harrison/fsearch/internal/fileutil"
	"github.com/harrison/fsearch/internal/models"
	"github.com/harrison/fsearch/internal/pattern"
)

// Engine starts search sessions against a DirectoryLister.
// An Engine is stateless between sessions and safe for concurrent use.
type Engine struct {
	lister fileutil.DirectoryLister
	logger Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLister replaces the filesystem lister (default: fileutil.OSLister).
func WithLister(l fileutil.DirectoryLister) Option {
	return func(e *Engine) {
		if l != nil {
			e.lister = l
		}
	}
}

// WithLogger sets the logger sessions report to (default: discard).
func WithLogger(l Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates an engine with the given options applied.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		lister: fileutil.NewOSLister(),
		logger: nopLogger{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search validates req and starts a session. Validation failures are
// returned synchronously as *ValidationError and no session is created.
// Cancelling ctx cancels the session.
func (e *Engine) Search(ctx context.Context, req models.SearchRequest) (*Session, error) {
	matcher, err := e.validate(req)
	if err != nil {
		return nil, err
	}

	req.Options = req.Options.Normalized()
	s := newSession(ctx, req, e.lister, matcher, e.logger)
	s.start()
	return s, nil
}

// Search starts a session on the local filesystem with default settings.
func Search(ctx context.Context, req models.SearchRequest, opts ...Option) (*Session, error) {
	return NewEngine(opts...).Search(ctx, req)
}

func (e *Engine) validate(req models.SearchRequest) (*pattern.Matcher, error) {
	if strings.TrimSpace(req.Root) == "" {
		return nil, newValidationError("root", "is required", nil)
	}
	if req.Options.MaxResults < 0 {
		return nil, newValidationError("max_results", fmt.Sprintf("must be >= 0, got %d", req.Options.MaxResults), nil)
	}

	matcher, err := pattern.Compile(req.Pattern)
	if err != nil {
		if errors.Is(err, pattern.ErrEmptyPattern) {
			return nil, newValidationError("pattern", "is empty", nil)
		}
		return nil, newValidationError("pattern", "is invalid", err)
	}

	st, err := e.lister.Stat(req.Root)
	if err != nil {
		return nil, newValidationError("root", fmt.Sprintf("%q is not accessible", req.Root), err)
	}
	if !st.IsDir {
		return nil, newValidationError("root", fmt.Sprintf("%q is not a directory", req.Root), nil)
	}
	return matcher, nil
}
