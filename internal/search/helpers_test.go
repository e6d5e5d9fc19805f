package search

import (
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/harrison/fsearch/internal/fileutil"
	"github.com/harrison/fsearch/internal/models"
)

// memLister is an in-memory DirectoryLister. Paths ending in "/" passed to
// newMemLister are directories, everything else is a file.
type memLister struct {
	mu        sync.Mutex
	children  map[string]map[string]fileutil.Entry
	errs      map[string]error
	panics    map[string]bool
	blocks    map[string]chan struct{}
	delay     time.Duration
	duplicate bool // report every entry twice
	listed    []string
}

func newMemLister(paths ...string) *memLister {
	m := &memLister{
		children: map[string]map[string]fileutil.Entry{"/": {}},
		errs:     map[string]error{},
		panics:   map[string]bool{},
		blocks:   map[string]chan struct{}{},
	}
	for _, p := range paths {
		m.add(p)
	}
	return m
}

func (m *memLister) add(p string) {
	isDir := strings.HasSuffix(p, "/")
	p = path.Clean(p)
	m.ensureDir(path.Dir(p))
	if isDir {
		m.ensureDir(p)
		return
	}
	m.children[path.Dir(p)][path.Base(p)] = fileutil.Entry{Name: path.Base(p), IsFile: true}
}

func (m *memLister) ensureDir(dir string) {
	if _, ok := m.children[dir]; ok {
		return
	}
	m.children[dir] = map[string]fileutil.Entry{}
	if dir == "/" {
		return
	}
	parent := path.Dir(dir)
	m.ensureDir(parent)
	m.children[parent][path.Base(dir)] = fileutil.Entry{Name: path.Base(dir), IsDir: true}
}

// symlinkDir adds a directory entry that is a symbolic link.
func (m *memLister) symlinkDir(p string) {
	m.ensureDir(path.Dir(p))
	m.children[path.Dir(p)][path.Base(p)] = fileutil.Entry{Name: path.Base(p), IsDir: true, IsSymlink: true}
}

func (m *memLister) failOn(dir string, err error) { m.errs[dir] = err }
func (m *memLister) panicOn(dir string)           { m.panics[dir] = true }

// blockOn makes listing dir wait until the returned channel is closed.
func (m *memLister) blockOn(dir string) chan struct{} {
	ch := make(chan struct{})
	m.blocks[dir] = ch
	return ch
}

func (m *memLister) ListEntries(dir string) ([]fileutil.Entry, error) {
	m.mu.Lock()
	m.listed = append(m.listed, dir)
	block := m.blocks[dir]
	m.mu.Unlock()

	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if block != nil {
		<-block
	}
	if m.panics[dir] {
		panic("lister exploded on " + dir)
	}
	if err := m.errs[dir]; err != nil {
		return nil, err
	}
	kids, ok := m.children[dir]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", dir, os.ErrNotExist)
	}
	names := make([]string, 0, len(kids))
	for name := range kids {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]fileutil.Entry, 0, len(names))
	for _, name := range names {
		out = append(out, kids[name])
	}
	if m.duplicate {
		out = append(out, out...)
	}
	return out, nil
}

func (m *memLister) Stat(p string) (fileutil.FileStat, error) {
	if _, ok := m.children[p]; ok {
		return fileutil.FileStat{IsDir: true}, nil
	}
	parent, ok := m.children[path.Dir(p)]
	if !ok {
		return fileutil.FileStat{}, fmt.Errorf("stat %s: %w", p, os.ErrNotExist)
	}
	if _, ok := parent[path.Base(p)]; !ok {
		return fileutil.FileStat{}, fmt.Errorf("stat %s: %w", p, os.ErrNotExist)
	}
	return fileutil.FileStat{Size: int64(len(p))}, nil
}

func (m *memLister) listedDirs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]string(nil), m.listed...)
	sort.Strings(out)
	return out
}

// recordingLogger captures engine events.
type recordingLogger struct {
	mu         sync.Mutex
	started    []string
	completed  []models.SessionSummary
	traversals []error
}

func (l *recordingLogger) LogSessionStart(id string, _ models.SearchRequest) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.started = append(l.started, id)
}

func (l *recordingLogger) LogSessionComplete(s models.SessionSummary) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.completed = append(l.completed, s)
}

func (l *recordingLogger) LogTraversalError(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.traversals = append(l.traversals, err)
}

func (l *recordingLogger) LogDebug(string) {}

func (l *recordingLogger) traversalErrors() []error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]error(nil), l.traversals...)
}

func resultPaths(results []models.MatchResult) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Path)
	}
	sort.Strings(out)
	return out
}
