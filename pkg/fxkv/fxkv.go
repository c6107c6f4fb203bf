// Package fxkv provides an embedded, file-backed key-value store with
// multiple named trees (independent sorted keyspaces) and multi-tree
// transactions with strict isolation.
//
// Each tree persists its keys and values in an append-only paged file; a
// separate transaction log coordinates commit ordering across trees so that,
// after crash recovery, the set of durable transactions is a contiguous
// prefix of the ones the database issued.
//
// DB is the primary entry point. A typical interaction:
//
//	db, err := fxkv.Open(ctx, "my-service", options.WithDataDir(dir))
//	tx, err := db.Begin(ctx, "tree1", "tree2")
//	t1, _ := tx.Tree("tree1")
//	t1.Set([]byte("key1"), []byte("value"))
//	tx.Commit()
package fxkv

import (
	"context"

	"github.com/baekhyunee7/fxkv/internal/engine"
	"github.com/baekhyunee7/fxkv/pkg/keyrange"
	"github.com/baekhyunee7/fxkv/pkg/logger"
	"github.com/baekhyunee7/fxkv/pkg/options"
	"github.com/baekhyunee7/fxkv/pkg/pool"
)

// DB represents an instance of the fxkv store. It encapsulates the core
// engine responsible for trees and transactions, plus a worker pool sized by
// the configured options for embedders that parallelize bulk work.
type DB struct {
	engine  *engine.Engine   // The underlying database engine handling trees and transactions.
	pool    *pool.Pool       // Worker pool for embedder bulk work; not on the transaction hot path.
	options *options.Options // Configuration options applied to this DB instance.
}

// Open creates or recovers a database in the configured working directory.
// Open recovers the transaction log's durable watermark, and a log recovery
// error is fatal to open. Each tree's latest index snapshot is read when a
// transaction first names that tree; its recovery errors surface from Begin.
func Open(ctx context.Context, service string, opts ...options.OptionFunc) (*DB, error) {
	log := logger.New(service)

	defaultOpts := options.NewDefaultOptions()
	for _, opt := range opts {
		opt(&defaultOpts)
	}

	eng, err := engine.New(ctx, &engine.Config{Logger: log, Options: &defaultOpts})
	if err != nil {
		return nil, err
	}

	return &DB{
		engine:  eng,
		pool:    pool.New(defaultOpts.PoolSize),
		options: &defaultOpts,
	}, nil
}

// Begin starts a transaction over the named trees, blocking until every
// involved tree's lock is held. Locks are acquired in name-sorted order, so
// transactions over overlapping tree sets cannot deadlock whatever order
// their callers name the trees in.
func (db *DB) Begin(ctx context.Context, trees ...string) (*Txn, error) {
	tx, err := db.engine.Begin(ctx, trees...)
	if err != nil {
		return nil, err
	}
	return &Txn{inner: tx}, nil
}

// Pool returns the database's worker pool.
func (db *DB) Pool() *pool.Pool {
	return db.pool
}

// Close shuts the database down: the worker pool is joined, the commit
// sequencer stopped and every shared file handle closed. In-flight commits
// fail; committed data is durable and will be recovered on the next Open.
func (db *DB) Close(ctx context.Context) error {
	db.pool.Close()
	return db.engine.Close()
}

// Txn is a transaction over one or more trees. It is single-goroutine: the
// goroutine that began it drives it to Commit, Rollback or Close.
type Txn struct {
	inner *engine.Transaction
}

// ID returns the sequencer-assigned transaction id.
func (tx *Txn) ID() uint64 {
	return tx.inner.ID()
}

// Tree returns this transaction's view over the named tree.
func (tx *Txn) Tree(name string) (*Tree, error) {
	view, err := tx.inner.Tree(name)
	if err != nil {
		return nil, err
	}
	return &Tree{inner: view}, nil
}

// TreeAt returns this transaction's view over the i-th tree, in the order
// the trees were named at Begin.
func (tx *Txn) TreeAt(i int) (*Tree, error) {
	view, err := tx.inner.TreeAt(i)
	if err != nil {
		return nil, err
	}
	return &Tree{inner: view}, nil
}

// Commit makes every involved tree's mutations durable and visible to later
// transactions. It returns only after the commit record has reached the
// transaction log; a failed commit leaves concurrent readers and durable
// state untouched.
func (tx *Txn) Commit() error {
	return tx.inner.Commit()
}

// Rollback abandons the transaction's mutations and releases its locks.
func (tx *Txn) Rollback() error {
	return tx.inner.Rollback()
}

// Close rolls the transaction back if it was never committed. Deferring it
// next to an explicit Commit is safe: closing a finished transaction does
// nothing.
func (tx *Txn) Close() error {
	return tx.inner.Close()
}

// Pair is one key/value result of a Scan, in key order.
type Pair struct {
	Key   []byte
	Value []byte
}

// Tree is a transaction's view over one tree. Reads observe the
// transaction's own uncommitted writes; concurrent transactions observe the
// last committed state.
type Tree struct {
	inner *engine.TreeTxn
}

// Name returns the tree's name.
func (t *Tree) Name() string {
	return t.inner.Name()
}

// Set stores a key-value pair in the tree. The value bytes are appended to
// the tree's payload file immediately; visibility and durability wait for
// Commit.
func (t *Tree) Set(key, value []byte) error {
	return t.inner.Set(key, value)
}

// Get retrieves the value associated with key, or ok=false when absent.
func (t *Tree) Get(key []byte) ([]byte, bool, error) {
	return t.inner.Get(key)
}

// Remove deletes key from the tree, returning the prior value (ok=false when
// the key was absent).
func (t *Tree) Remove(key []byte) ([]byte, bool, error) {
	return t.inner.Remove(key)
}

// Scan returns the key/value pairs inside the range, in key order.
func (t *Tree) Scan(r keyrange.Range) ([]Pair, error) {
	pairs, err := t.inner.Scan(r)
	if err != nil {
		return nil, err
	}
	out := make([]Pair, len(pairs))
	for i, p := range pairs {
		out[i] = Pair{Key: p.Key, Value: p.Value}
	}
	return out, nil
}
