// Package tree implements a named sorted keyspace over an append-only paged
// payload file. The on-disk file holds value bytes and periodic index
// snapshots; two in-memory index versions (a committed reader snapshot and
// an exclusive writer working copy) give each tree its isolation model.
//
// Mutating operations are exposed only through a transaction that holds the
// tree's queue lock; concurrent readers observe the reader snapshot, which
// only changes at the atomic publish on commit.
package tree

import (
	"sync"

	"go.uber.org/zap"

	"github.com/baekhyunee7/fxkv/internal/cache"
	"github.com/baekhyunee7/fxkv/internal/files"
	"github.com/baekhyunee7/fxkv/internal/lock"
	"github.com/baekhyunee7/fxkv/internal/paging"
	"github.com/baekhyunee7/fxkv/pkg/errors"
)

// Tree is one named keyspace: its shared payload-file handle, its dual
// index snapshots, its value cache and its cooperative lock.
type Tree struct {
	name   string
	handle *files.Handle
	lock   *lock.QueueLock
	cache  *cache.Cache
	log    *zap.SugaredLogger

	// mu guards the reader slot so the writer-to-reader swap on commit is
	// atomic with respect to concurrent Snapshot calls.
	mu     sync.RWMutex
	reader *VersionedState
	writer *VersionedState
}

// Config holds the parameters needed to open a Tree.
type Config struct {
	Name          string
	Handle        *files.Handle
	CacheCapacity int
	Logger        *zap.SugaredLogger
}

// Open reconstructs the tree's index from the latest snapshot in its payload
// file and primes both the reader and writer versions from it. An empty file
// yields an empty tree. Decode failures are fatal.
func Open(config *Config) (*Tree, error) {
	if config == nil || config.Name == "" || config.Handle == nil || config.Logger == nil {
		return nil, errors.NewRequiredFieldError("config")
	}

	values, err := cache.New(config.CacheCapacity)
	if err != nil {
		return nil, err
	}

	body, found, err := paging.RecoverSnapshot(config.Handle)
	if err != nil {
		return nil, err
	}

	reader := newState()
	if found {
		index, err := decodeIndex(body)
		if err != nil {
			return nil, errors.NewStorageError(
				err, errors.ErrorCodeRecoveryFailed, "Failed to recover tree index",
			).WithFileName(config.Handle.Name()).WithPath(config.Handle.Path())
		}
		reader.index = index
	}

	config.Logger.Infow("Opened tree",
		"tree", config.Name,
		"file", config.Handle.Name(),
		"recoveredKeys", reader.Len(),
		"hadSnapshot", found,
	)

	return &Tree{
		name:   config.Name,
		handle: config.Handle,
		lock:   lock.New(),
		cache:  values,
		log:    config.Logger,
		reader: reader,
		writer: reader.clone(),
	}, nil
}

// Name returns the tree's name.
func (t *Tree) Name() string {
	return t.name
}

// Lock returns the tree's queue lock. Transactions acquire it before calling
// any mutating operation and release it on commit, rollback or drop.
func (t *Tree) Lock() *lock.QueueLock {
	return t.lock
}

// Dirty reports whether the writer version has diverged from the reader.
func (t *Tree) Dirty() bool {
	return t.writer.dirty
}

// Snapshot returns a point-in-time clone of the committed reader state for
// concurrent readers. The clone is copy-on-write and cheap.
func (t *Tree) Snapshot() *VersionedState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.reader.clone()
}

// Publish makes the writer version the committed one. The caller must hold
// the tree lock. A clean writer is left as it is and nothing is written.
//
// The index snapshot is appended to the payload file first; any error there
// surfaces before the reader slot changes, leaving concurrent readers on the
// previous committed state. Only then is the writer swapped into the reader
// slot and replaced by a fresh clone for the next transaction.
func (t *Tree) Publish() error {
	if !t.writer.dirty {
		return nil
	}

	body, err := encodeIndex(t.writer)
	if err != nil {
		return err
	}
	if err := paging.WriteSnapshot(t.handle, body); err != nil {
		return err
	}

	t.writer.dirty = false
	t.mu.Lock()
	t.reader = t.writer
	t.mu.Unlock()
	t.writer = t.reader.clone()

	t.log.Debugw("Published tree snapshot", "tree", t.name, "keys", t.reader.Len())
	return nil
}

// ResetWriter discards uncommitted writer mutations by re-cloning the reader
// into the writer slot. Called when a transaction releases the tree without
// publishing, so the next lock holder starts from the committed state.
func (t *Tree) ResetWriter() {
	t.mu.RLock()
	reader := t.reader
	t.mu.RUnlock()
	t.writer = reader.clone()
	t.writer.dirty = false
}
