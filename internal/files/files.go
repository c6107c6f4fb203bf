// Package files provides the process-wide registry mapping tree names to
// shared file handles. Every component that touches a tree's payload file or
// the transaction log goes through the same *Handle, whose read/write lock
// serializes access to the underlying descriptor.
//
// Opening is idempotent: concurrent callers racing to open the same tree see
// the same handle. The registry itself is guarded by a read/write lock so the
// common case (the handle already exists) takes only a read lock.
package files

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/baekhyunee7/fxkv/pkg/errors"
	"github.com/baekhyunee7/fxkv/pkg/filesys"
)

const (
	// TreeFileExt is the suffix of every tree payload file: tree "t1" lives
	// in "t1.tree" inside the database working directory.
	TreeFileExt = ".tree"

	// LogFileName is the transaction log's fixed file name.
	LogFileName = "db.transaction"
)

// TreeFileName returns the payload file name for the named tree.
func TreeFileName(tree string) string {
	return tree + TreeFileExt
}

// Handle wraps a shared *os.File behind a read/write lock. The paging codec
// acquires the write half for appends and the read half for value reads, so a
// handle can serve concurrent readers while a single writer appends.
type Handle struct {
	name string
	path string
	mu   sync.RWMutex
	file *os.File
}

// Name returns the file name this handle was registered under.
func (h *Handle) Name() string {
	return h.name
}

// Path returns the full path of the underlying file.
func (h *Handle) Path() string {
	return h.path
}

// Write runs fn with exclusive access to the underlying file.
func (h *Handle) Write(fn func(f *os.File) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return fn(h.file)
}

// Read runs fn with shared access to the underlying file.
func (h *Handle) Read(fn func(f *os.File) error) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return fn(h.file)
}

// close releases the underlying descriptor. Only the owning Manager calls it.
func (h *Handle) close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.file.Close()
}

// Manager is the process-wide file registry. One instance lives in the
// database engine; trees and the sequencer fetch their handles from it.
type Manager struct {
	dir     string
	log     *zap.SugaredLogger
	mu      sync.RWMutex
	handles map[string]*Handle
}

// Config holds the parameters needed to build a Manager.
type Config struct {
	Dir    string
	Logger *zap.SugaredLogger
}

// New builds an empty registry rooted at the configured directory.
func New(config *Config) *Manager {
	return &Manager{
		dir:     config.Dir,
		log:     config.Logger,
		handles: make(map[string]*Handle),
	}
}

// GetOrOpen returns the shared handle for the given file name, opening the
// file on first use. Concurrent callers for the same name all receive the
// same handle.
func (m *Manager) GetOrOpen(name string) (*Handle, error) {
	m.mu.RLock()
	if h, ok := m.handles[name]; ok {
		m.mu.RUnlock()
		return h, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Re-check under the write lock: another caller may have won the race.
	if h, ok := m.handles[name]; ok {
		return h, nil
	}

	path := filepath.Join(m.dir, name)
	file, err := filesys.OpenShared(path)
	if err != nil {
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to open shared file").
			WithFileName(name).
			WithPath(path)
	}

	m.log.Infow("Opened shared file", "name", name, "path", path)

	h := &Handle{name: name, path: path, file: file}
	m.handles[name] = h
	return h, nil
}

// CloseAll closes every registered handle, aggregating errors. The registry
// is unusable afterwards.
func (m *Manager) CloseAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs error
	for name, h := range m.handles {
		if err := h.close(); err != nil {
			errs = multierr.Append(errs, errors.NewStorageError(
				err, errors.ErrorCodeIO, "Failed to close shared file",
			).WithFileName(name).WithPath(h.path))
		}
	}
	m.handles = make(map[string]*Handle)
	return errs
}
