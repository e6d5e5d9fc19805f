package fileutil

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"
)

// Entry is one immediate child of a listed directory.
type Entry struct {
	Name      string // Base name
	IsFile    bool   // Regular file (or symlink resolving to one)
	IsDir     bool   // Directory (or symlink resolving to one)
	IsSymlink bool   // The entry itself is a symbolic link
}

// FileStat carries the metadata needed to build a match result.
type FileStat struct {
	Size       int64
	ModifiedAt time.Time
	IsDir      bool
}

// DirectoryLister is the filesystem boundary used by the search engine.
// Implementations must be safe for concurrent use.
type DirectoryLister interface {
	// ListEntries returns the immediate entries of dir.
	ListEntries(dir string) ([]Entry, error)
	// Stat returns size and modification time for path.
	Stat(path string) (FileStat, error)
}

// OSLister lists directories on the local filesystem.
type OSLister struct{}

// NewOSLister returns a lister backed by the os package.
func NewOSLister() *OSLister {
	return &OSLister{}
}

// ListEntries reads dir and classifies each entry. Symlinks are resolved
// with os.Stat so a link to a directory reports IsDir and IsSymlink; a
// dangling link reports neither IsFile nor IsDir.
func (l *OSLister) ListEntries(dir string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	out := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		name := de.Name()
		if name == "." || name == ".." {
			continue
		}

		mode := de.Type()
		if mode&fs.ModeSymlink != 0 {
			entry := Entry{Name: name, IsSymlink: true}
			if target, err := os.Stat(filepath.Join(dir, name)); err == nil {
				entry.IsDir = target.IsDir()
				entry.IsFile = target.Mode().IsRegular()
			}
			out = append(out, entry)
			continue
		}

		out = append(out, Entry{
			Name:   name,
			IsDir:  de.IsDir(),
			IsFile: mode.IsRegular(),
		})
	}
	return out, nil
}

// Stat returns size and modification time, following symlinks.
func (l *OSLister) Stat(path string) (FileStat, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileStat{}, err
	}
	size := info.Size()
	if info.IsDir() {
		size = 0
	}
	return FileStat{Size: size, ModifiedAt: info.ModTime(), IsDir: info.IsDir()}, nil
}

// ThrottledLister limits how many directories per second the wrapped lister
// reads. Waiting stops as soon as ctx is done.
type ThrottledLister struct {
	ctx     context.Context
	inner   DirectoryLister
	limiter *rate.Limiter
}

// NewThrottledLister wraps inner with a limit of dirsPerSecond listings.
// A non-positive rate returns inner unchanged.
func NewThrottledLister(ctx context.Context, inner DirectoryLister, dirsPerSecond float64) DirectoryLister {
	if dirsPerSecond <= 0 {
		return inner
	}
	burst := int(dirsPerSecond)
	if burst < 1 {
		burst = 1
	}
	return &ThrottledLister{
		ctx:     ctx,
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(dirsPerSecond), burst),
	}
}

// ListEntries waits for a token from the limiter, then lists dir.
func (t *ThrottledLister) ListEntries(dir string) ([]Entry, error) {
	if err := t.limiter.Wait(t.ctx); err != nil {
		return nil, fmt.Errorf("throttle wait for %s: %w", dir, err)
	}
	return t.inner.ListEntries(dir)
}

// Stat is not throttled.
func (t *ThrottledLister) Stat(path string) (FileStat, error) {
	return t.inner.Stat(path)
}
