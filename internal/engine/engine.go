// Package engine provides the core database engine for fxkv.
//
// The engine is the central coordinator: it owns the file-handle registry,
// the cache of open trees, and the transaction batch that serializes commit
// durability. Trees are opened on first use and cached for the process
// lifetime; transactions are born in Begin and die in Commit, Rollback or
// Close.
package engine

import (
	"context"
	stdErrors "errors"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/baekhyunee7/fxkv/internal/files"
	"github.com/baekhyunee7/fxkv/internal/metrics"
	"github.com/baekhyunee7/fxkv/internal/sequencer"
	"github.com/baekhyunee7/fxkv/internal/tree"
	"github.com/baekhyunee7/fxkv/pkg/errors"
	"github.com/baekhyunee7/fxkv/pkg/filesys"
	"github.com/baekhyunee7/fxkv/pkg/options"
)

var (
	// ErrEngineClosed is returned when attempting to perform operations on a closed engine.
	ErrEngineClosed = stdErrors.New("operation failed: cannot access closed engine")
)

// Engine represents the database engine that coordinates all subsystems.
type Engine struct {
	options *options.Options   // options contains all configuration parameters for the engine and its subsystems.
	log     *zap.SugaredLogger // log provides structured logging capabilities throughout the engine.
	closed  atomic.Bool        // closed is an atomic boolean that tracks the engine's lifecycle state.
	files   *files.Manager     // files is the process-wide shared file-handle registry.
	batch   *sequencer.Batch   // batch serializes commit durability and assigns transaction ids.

	mu    sync.RWMutex          // mu guards the tree registry.
	trees map[string]*tree.Tree // trees caches open trees for the process lifetime.
}

// Config holds all the parameters needed to initialize a new Engine instance.
type Config struct {
	Options *options.Options
	Logger  *zap.SugaredLogger
}

// New creates and initializes a new Engine instance: it prepares the working
// directory, opens the transaction log and recovers the batch from it.
// Recovery errors are fatal to open.
func New(ctx context.Context, config *Config) (*Engine, error) {
	if config == nil || config.Options == nil || config.Logger == nil {
		return nil, errors.NewRequiredFieldError("config")
	}

	metrics.Register()

	if err := filesys.CreateDir(config.Options.DataDir, 0755, true); err != nil {
		return nil, errors.NewStorageError(
			err, errors.ErrorCodeIO, "Failed to create database directory",
		).WithPath(config.Options.DataDir)
	}

	// Whether a transaction log is already present decides between recovering
	// an existing store and initializing a fresh one; opening the handle below
	// creates the file either way.
	existing, err := filesys.Exists(filepath.Join(config.Options.DataDir, files.LogFileName))
	if err != nil {
		return nil, errors.NewStorageError(
			err, errors.ErrorCodeIO, "Failed to probe the transaction log",
		).WithFileName(files.LogFileName).WithPath(config.Options.DataDir)
	}

	manager := files.New(&files.Config{Dir: config.Options.DataDir, Logger: config.Logger})

	logHandle, err := manager.GetOrOpen(files.LogFileName)
	if err != nil {
		return nil, err
	}

	batch, err := sequencer.New(&sequencer.Config{
		Handle:  logHandle,
		Backlog: config.Options.SequencerBacklog,
		Logger:  config.Logger,
	})
	if err != nil {
		return nil, err
	}

	config.Logger.Infow("Engine initialized",
		"dataDir", config.Options.DataDir,
		"existingStore", existing,
		"lastDurableID", batch.LastIssuedID(),
	)

	return &Engine{
		options: config.Options,
		log:     config.Logger,
		files:   manager,
		batch:   batch,
		trees:   make(map[string]*tree.Tree),
	}, nil
}

// OpenTree returns the named tree, opening and recovering it on first use.
// Concurrent callers for the same name receive the same tree.
func (e *Engine) OpenTree(name string) (*tree.Tree, error) {
	if e.closed.Load() {
		return nil, ErrEngineClosed
	}
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "Tree names must be non-empty and path-free",
		).WithField("name").WithRule("treeName").WithProvided(name)
	}

	e.mu.RLock()
	if t, ok := e.trees[name]; ok {
		e.mu.RUnlock()
		return t, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	if t, ok := e.trees[name]; ok {
		return t, nil
	}

	handle, err := e.files.GetOrOpen(files.TreeFileName(name))
	if err != nil {
		return nil, err
	}
	t, err := tree.Open(&tree.Config{
		Name:          name,
		Handle:        handle,
		CacheCapacity: e.options.CacheCapacity,
		Logger:        e.log,
	})
	if err != nil {
		return nil, err
	}
	e.trees[name] = t
	return t, nil
}

// Begin starts a transaction over the named trees.
//
// Every tree is opened (or fetched) first, then the tree locks are acquired
// in name-sorted order. Because all transactions sort their lock set the same
// way, two transactions can never hold locks that each other needs, whatever
// order the caller listed the trees in. The caller-specified order is kept on
// the handle for positional access.
func (e *Engine) Begin(ctx context.Context, names ...string) (*Transaction, error) {
	if e.closed.Load() {
		return nil, ErrEngineClosed
	}
	if len(names) == 0 {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "A transaction needs at least one tree",
		).WithField("names").WithRule("required")
	}

	seen := make(map[string]struct{}, len(names))
	trees := make([]*tree.Tree, 0, len(names))
	byName := make(map[string]*tree.Tree, len(names))
	for _, name := range names {
		if _, dup := seen[name]; dup {
			// One holder cannot queue for the same lock twice.
			return nil, errors.NewValidationError(
				nil, errors.ErrorCodeInvalidInput, "A transaction cannot name the same tree twice",
			).WithField("names").WithRule("unique").WithProvided(name)
		}
		seen[name] = struct{}{}

		t, err := e.OpenTree(name)
		if err != nil {
			return nil, err
		}
		trees = append(trees, t)
		byName[name] = t
	}

	sorted := make([]*tree.Tree, len(trees))
	copy(sorted, trees)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name() < sorted[j].Name() })

	for i, t := range sorted {
		if err := t.Lock().Lock(); err != nil {
			for j := i - 1; j >= 0; j-- {
				sorted[j].Lock().Unlock()
			}
			return nil, errors.NewTransactionError(
				err, errors.ErrorCodeWaiterLost, "Failed to acquire tree lock",
			).WithTree(t.Name()).WithOperation("lock")
		}
	}

	id := e.batch.NextID()
	e.log.Debugw("Transaction started", "transactionID", id, "trees", names)

	return &Transaction{
		id:     id,
		engine: e,
		trees:  trees,
		byName: byName,
		sorted: sorted,
	}, nil
}

// Close gracefully shuts down the engine: the sequencer loop is stopped and
// every shared file handle is closed. In-flight commits fail with a
// sequencer-stopped error.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return ErrEngineClosed
	}

	e.batch.Close()
	err := e.files.CloseAll()

	if err != nil {
		e.log.Errorw("Engine closed with file errors", "error", err)
	} else {
		e.log.Infow("Engine closed")
	}
	return err
}
