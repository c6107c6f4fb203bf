package engine

import (
	"github.com/baekhyunee7/fxkv/internal/metrics"
	"github.com/baekhyunee7/fxkv/internal/tree"
	"github.com/baekhyunee7/fxkv/pkg/errors"
	"github.com/baekhyunee7/fxkv/pkg/keyrange"
)

// Transaction is a handle over one or more trees whose locks it holds. It is
// not safe for concurrent use; a transaction belongs to the goroutine that
// began it, and its per-tree operations run under the locks acquired at
// Begin.
type Transaction struct {
	id       uint64
	engine   *Engine
	trees    []*tree.Tree          // caller-specified order, for positional access
	byName   map[string]*tree.Tree // name lookup
	sorted   []*tree.Tree          // lock-acquisition order, walked backwards on release
	finished bool
}

// ID returns the sequencer-assigned transaction id.
func (tx *Transaction) ID() uint64 {
	return tx.id
}

// TreeAt returns the view over the i-th tree in the order the caller named
// them at Begin.
func (tx *Transaction) TreeAt(i int) (*TreeTxn, error) {
	if i < 0 || i >= len(tx.trees) {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "Tree index out of range",
		).WithField("i").WithRule("range").WithProvided(i)
	}
	return &TreeTxn{tx: tx, tree: tx.trees[i]}, nil
}

// Tree returns the view over the named tree. The tree must have been named
// at Begin; a transaction cannot adopt trees it holds no lock for.
func (tx *Transaction) Tree(name string) (*TreeTxn, error) {
	t, ok := tx.byName[name]
	if !ok {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "Tree is not part of this transaction",
		).WithField("name").WithRule("member").WithProvided(name)
	}
	return &TreeTxn{tx: tx, tree: t}, nil
}

// Commit publishes every dirty tree's writer snapshot, submits the commit
// record to the sequencer and blocks until the record is durable, then
// releases the tree locks.
//
// A publish failure aborts before anything reaches the sequencer: writers
// are reset, locks released, the id resolved as a drop. Readers stay on the
// previously committed snapshots, and no recovery will ever surface this id.
func (tx *Transaction) Commit() error {
	if tx.finished {
		return finishedError(tx.id, "commit")
	}

	for _, t := range tx.trees {
		if err := t.Publish(); err != nil {
			tx.abort()
			return errors.NewTransactionError(
				err, errors.GetErrorCode(err), "Failed to publish tree snapshot",
			).WithTransactionID(tx.id).WithTree(t.Name()).WithOperation("commit")
		}
	}

	err := tx.engine.batch.Commit(tx.id, nil)
	tx.release()
	tx.finished = true
	if err != nil {
		return err
	}

	tx.engine.log.Debugw("Transaction committed", "transactionID", tx.id)
	return nil
}

// Rollback abandons the transaction: writer snapshots are reset to the
// committed state, locks released, and the id resolved in the sequencer as a
// drop so later commits can still flush. Durable state is untouched.
func (tx *Transaction) Rollback() error {
	if tx.finished {
		return finishedError(tx.id, "rollback")
	}
	tx.abort()
	tx.engine.log.Debugw("Transaction rolled back", "transactionID", tx.id)
	return nil
}

// Close releases the transaction if the caller never committed or rolled it
// back, mirroring a drop without commit. Safe to defer alongside an explicit
// Commit: closing a finished transaction is a no-op.
func (tx *Transaction) Close() error {
	if tx.finished {
		return nil
	}
	tx.abort()
	return nil
}

// abort resolves the transaction without durability: reset, release, drop.
func (tx *Transaction) abort() {
	tx.release()
	tx.finished = true
	tx.engine.batch.Drop(tx.id)
	metrics.TransactionsAbortedTotal.Inc()
}

// release resets every writer to its committed state and unlocks in reverse
// acquisition order. Publish already reset the writers of published trees;
// resetting them again is a cheap clone of an identical state.
func (tx *Transaction) release() {
	for i := len(tx.sorted) - 1; i >= 0; i-- {
		t := tx.sorted[i]
		t.ResetWriter()
		t.Lock().Unlock()
	}
}

func finishedError(id uint64, op string) error {
	return errors.NewTransactionError(
		nil, errors.ErrorCodeInvalidInput, "Transaction already finished",
	).WithTransactionID(id).WithOperation(op)
}

// TreeTxn is a transaction's view over one of its trees. All operations read
// and mutate the tree's writer snapshot, giving the transaction
// read-your-writes while concurrent readers stay on the committed reader
// snapshot.
type TreeTxn struct {
	tx   *Transaction
	tree *tree.Tree
}

// Name returns the underlying tree's name.
func (tt *TreeTxn) Name() string {
	return tt.tree.Name()
}

// Set stores value under key.
func (tt *TreeTxn) Set(key, value []byte) error {
	if tt.tx.finished {
		return finishedError(tt.tx.id, "set")
	}
	return tt.tree.Set(key, value)
}

// Get returns the value under key, or ok=false when absent.
func (tt *TreeTxn) Get(key []byte) ([]byte, bool, error) {
	if tt.tx.finished {
		return nil, false, finishedError(tt.tx.id, "get")
	}
	return tt.tree.Get(key)
}

// Remove deletes key and returns the prior value, or ok=false when absent.
func (tt *TreeTxn) Remove(key []byte) ([]byte, bool, error) {
	if tt.tx.finished {
		return nil, false, finishedError(tt.tx.id, "remove")
	}
	return tt.tree.Remove(key)
}

// Scan returns the key/value pairs inside the range, in key order.
func (tt *TreeTxn) Scan(r keyrange.Range) ([]tree.Pair, error) {
	if tt.tx.finished {
		return nil, finishedError(tt.tx.id, "scan")
	}
	return tt.tree.Scan(r)
}
