// Package filelock serializes writers of export files and replaces file
// contents atomically, so concurrent fsearch runs writing the same report
// never interleave and readers never observe a half-written file.
package filelock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// DefaultRetryDelay is how often Acquire retries a held lock.
const DefaultRetryDelay = 50 * time.Millisecond

// ErrLockTimeout is returned when a lock could not be taken before the
// context ended.
var ErrLockTimeout = errors.New("timed out waiting for file lock")

// FileLock is an advisory, cross-process exclusive lock on a lock file.
type FileLock struct {
	flock *flock.Flock
	path  string
}

// NewFileLock returns a lock backed by the file at path. The file is
// created on first acquisition.
func NewFileLock(path string) *FileLock {
	return &FileLock{
		flock: flock.New(path),
		path:  path,
	}
}

// Path returns the lock file path.
func (fl *FileLock) Path() string {
	return fl.path
}

// Acquire blocks until the lock is held or ctx is done, retrying every
// retryDelay (DefaultRetryDelay when <= 0).
func (fl *FileLock) Acquire(ctx context.Context, retryDelay time.Duration) error {
	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}
	locked, err := fl.flock.TryLockContext(ctx, retryDelay)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %s: %w", ErrLockTimeout, fl.path, ctx.Err())
		}
		return fmt.Errorf("failed to acquire lock on %s: %w", fl.path, err)
	}
	if !locked {
		return fmt.Errorf("%w: %s", ErrLockTimeout, fl.path)
	}
	return nil
}

// TryAcquire takes the lock if it is free and reports whether it did.
func (fl *FileLock) TryAcquire() (bool, error) {
	acquired, err := fl.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to try lock on %s: %w", fl.path, err)
	}
	return acquired, nil
}

// Release drops the lock. Releasing an unheld lock is a no-op.
func (fl *FileLock) Release() error {
	if err := fl.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", fl.path, err)
	}
	return nil
}

// AtomicWrite replaces path with data. The content goes to a temporary file
// in the same directory first and is renamed over path, so path always holds
// either the old or the new content. Parent directories are created.
func AtomicWrite(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to move export into place at %s: %w", path, err)
	}
	committed = true
	return nil
}

// WriteLocked holds "<path>.lock" for the duration of an AtomicWrite of
// path. It gives up when ctx ends before the lock is free.
func WriteLocked(ctx context.Context, path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	lock := NewFileLock(path + ".lock")
	if err := lock.Acquire(ctx, DefaultRetryDelay); err != nil {
		return err
	}
	defer lock.Release()

	return AtomicWrite(path, data, 0644)
}
