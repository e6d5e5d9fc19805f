package filelock

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestAcquireRelease(t *testing.T) {
	lock := NewFileLock(filepath.Join(t.TempDir(), "report.json.lock"))

	if err := lock.Acquire(context.Background(), 0); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if _, err := os.Stat(lock.Path()); err != nil {
		t.Errorf("lock file not created: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
}

func TestTryAcquireHeldLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "held.lock")

	owner := NewFileLock(path)
	if err := owner.Acquire(context.Background(), 0); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer owner.Release()

	other := NewFileLock(path)
	ok, err := other.TryAcquire()
	if err != nil {
		t.Fatalf("TryAcquire() error = %v", err)
	}
	if ok {
		other.Release()
		t.Fatal("TryAcquire succeeded on a held lock")
	}
}

func TestAcquireTimesOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "busy.lock")

	owner := NewFileLock(path)
	if err := owner.Acquire(context.Background(), 0); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer owner.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := NewFileLock(path).Acquire(ctx, 10*time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !errors.Is(err, ErrLockTimeout) {
		t.Errorf("expected ErrLockTimeout, got %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Errorf("Acquire did not honor the context deadline")
	}
}

func TestAtomicWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "results.md")

	if err := AtomicWrite(path, []byte("first"), 0644); err != nil {
		t.Fatalf("AtomicWrite() error = %v", err)
	}
	if err := AtomicWrite(path, []byte("second"), 0600); err != nil {
		t.Fatalf("AtomicWrite() overwrite error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "second" {
		t.Errorf("content = %q, want %q", data, "second")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("perm = %v, want 0600", info.Mode().Perm())
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestAtomicWriteFailureCleansUp(t *testing.T) {
	dir := t.TempDir()
	// A directory occupying the target path makes the final rename fail.
	target := filepath.Join(dir, "report.json")
	if err := os.MkdirAll(filepath.Join(target, "child"), 0755); err != nil {
		t.Fatal(err)
	}

	if err := AtomicWrite(target, []byte("data"), 0644); err == nil {
		t.Fatal("expected rename onto a non-empty directory to fail")
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Errorf("temp file left behind after failure: %s", e.Name())
		}
	}
}

func TestWriteLockedConcurrentWriters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.txt")

	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			payload := strings.Repeat(strconv.Itoa(i), 4096)
			if err := WriteLocked(context.Background(), path, []byte(payload)); err != nil {
				t.Errorf("writer %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(data) != 4096 {
		t.Fatalf("len = %d, want 4096", len(data))
	}
	// Whole content must come from a single writer.
	if strings.Count(string(data), string(data[0])) != len(data) {
		t.Error("content interleaved between writers")
	}
}

func TestWriteLockedHonorsContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")

	owner := NewFileLock(path + ".lock")
	if err := owner.Acquire(context.Background(), 0); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer owner.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := WriteLocked(ctx, path, []byte("{}"))
	if !errors.Is(err, ErrLockTimeout) {
		t.Fatalf("expected ErrLockTimeout, got %v", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Errorf("target written despite lock timeout: %v", statErr)
	}
}
