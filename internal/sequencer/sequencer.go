// Package sequencer implements the transaction batch: a background goroutine
// that owns the transaction log and serializes commit durability.
//
// Transactions obtain their ids here at start and submit either a commit
// (blocking until the record is durable) or a drop (fire-and-forget) at the
// end of their lives. The loop folds every resolution into a contiguous
// window; commit records are flushed to the log only when the resolved ids
// form a contiguous prefix, so a record for id k can never be durable while
// some id below k is still in flight. After a crash, the set of durable
// transactions is therefore a contiguous prefix of the ids the database
// issued, and the next id is recovered as the last durable id plus one.
package sequencer

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/baekhyunee7/fxkv/internal/files"
	"github.com/baekhyunee7/fxkv/internal/metrics"
	"github.com/baekhyunee7/fxkv/internal/paging"
	"github.com/baekhyunee7/fxkv/internal/window"
	"github.com/baekhyunee7/fxkv/pkg/errors"
)

// action is one submission to the batch loop. A commit carries a done
// channel; a drop leaves it nil.
type action struct {
	id   uint64
	data []byte
	done chan error
}

// Batch owns the transaction-log handle and the background commit loop.
type Batch struct {
	handle *files.Handle
	log    *zap.SugaredLogger

	nextID  atomic.Uint64
	actions chan action
	quit    chan struct{}
	stopped chan struct{}
	closing sync.Once
}

// Config holds the parameters needed to build a Batch.
type Config struct {
	Handle  *files.Handle
	Backlog int
	Logger  *zap.SugaredLogger
}

// New recovers the last durable transaction id from the log, seeds the id
// counter and the contiguous window from it, and starts the background loop.
func New(config *Config) (*Batch, error) {
	if config == nil || config.Handle == nil || config.Logger == nil {
		return nil, errors.NewRequiredFieldError("config")
	}

	lastID, _, found, err := paging.RecoverRecord(config.Handle)
	if err != nil {
		return nil, errors.NewStorageError(
			err, errors.ErrorCodeRecoveryFailed, "Failed to recover transaction log",
		).WithFileName(config.Handle.Name())
	}
	if !found {
		lastID = 0
	}

	b := &Batch{
		handle:  config.Handle,
		log:     config.Logger,
		actions: make(chan action, config.Backlog),
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	b.nextID.Store(lastID)

	config.Logger.Infow("Transaction batch recovered", "lastDurableID", lastID, "hadRecords", found)

	go b.run(window.New(lastID + 1))
	return b, nil
}

// NextID assigns a fresh transaction id. Ids are monotonic and unique within
// a process lifetime and across recoveries.
func (b *Batch) NextID() uint64 {
	return b.nextID.Add(1)
}

// LastIssuedID reports the most recently assigned transaction id. Right
// after recovery, before any NextID call, it equals the last durable id.
func (b *Batch) LastIssuedID() uint64 {
	return b.nextID.Load()
}

// Commit submits the transaction's commit record and blocks until the
// sequencer has made it durable. It fails when the batch has stopped, or
// stops before the record reaches the log.
func (b *Batch) Commit(id uint64, data []byte) error {
	done := make(chan error, 1)
	select {
	case b.actions <- action{id: id, data: data, done: done}:
	case <-b.stopped:
		return stoppedError(id)
	}

	select {
	case err := <-done:
		return err
	case <-b.stopped:
		// The loop may have flushed this commit on its way down.
		select {
		case err := <-done:
			return err
		default:
		}
		return stoppedError(id)
	}
}

// Drop resolves an aborted or dropped transaction's id without writing
// anything. Fire-and-forget: a drop after the batch stopped is a no-op.
func (b *Batch) Drop(id uint64) {
	select {
	case b.actions <- action{id: id}:
	case <-b.stopped:
	}
}

// Close stops the background loop and waits for it to exit. Commits still in
// flight fail with a sequencer-stopped error.
func (b *Batch) Close() {
	b.closing.Do(func() {
		close(b.quit)
	})
	<-b.stopped
}

// run is the batch loop. It owns the window and the pending-commit buffer;
// nothing else touches the log while it lives.
func (b *Batch) run(w *window.Window) {
	defer close(b.stopped)

	var pending []action
	for {
		select {
		case <-b.quit:
			b.failPending(pending, stoppedError(0))
			return

		case act := <-b.actions:
			w.Put(act.id)
			if act.done != nil {
				pending = append(pending, act)
			}
			if !w.Completed() {
				continue
			}

			// The resolved ids form a contiguous prefix, so every buffered
			// commit is flushable. Records go out in ascending id order.
			sort.Slice(pending, func(i, j int) bool { return pending[i].id < pending[j].id })
			start := time.Now()
			for i, tran := range pending {
				if err := paging.WriteRecord(b.handle, tran.id, tran.data); err != nil {
					b.log.Errorw("Transaction log write failed; poisoning batch",
						"transactionID", tran.id, "error", err)
					b.failPending(pending[i:], errors.NewTransactionError(
						err, errors.ErrorCodeSequencerStopped, "Transaction log write failed",
					).WithTransactionID(tran.id).WithOperation("commit"))
					return
				}
				tran.done <- nil
				metrics.TransactionsCommittedTotal.Inc()
			}
			metrics.CommitFlushDuration.Observe(time.Since(start).Seconds())
			pending = pending[:0]
		}
	}
}

// failPending signals every buffered commit handle with err before the loop
// exits, so no committer stays blocked on a dead batch.
func (b *Batch) failPending(pending []action, err error) {
	for _, tran := range pending {
		tran.done <- err
	}
}

func stoppedError(id uint64) error {
	return errors.NewTransactionError(
		nil, errors.ErrorCodeSequencerStopped, "Commit submitted after the sequencer stopped",
	).WithTransactionID(id).WithOperation("commit")
}
