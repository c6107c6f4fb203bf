// Package lock provides the fair, one-holder tree lock. Unlike a plain
// sync.Mutex, contended waiters park on one-shot channels in a FIFO queue and
// are all signaled on release, so a transaction holding several tree locks
// cannot starve a queue of waiters and no wakeup is ever lost.
package lock

import (
	"sync"
	"sync/atomic"

	"github.com/baekhyunee7/fxkv/pkg/errors"
)

// QueueLock is a cooperative mutex: an atomic holder flag plus a FIFO queue
// of one-shot waiter channels guarded by an internal mutex.
type QueueLock struct {
	locked   atomic.Bool
	mu       sync.Mutex
	pendings []chan struct{}
}

// New builds an unlocked QueueLock.
func New() *QueueLock {
	return &QueueLock{}
}

// Lock blocks until this caller holds the lock.
//
// The fast path is a single compare-and-swap. On contention the caller
// re-attempts the swap under the queue mutex (the holder may have released in
// between), and otherwise parks on a freshly enqueued one-shot channel. A
// signal means "the lock was released"; the waiter then competes again, which
// preserves FIFO wakeup order without handing the lock to a goroutine that
// may no longer want it.
func (l *QueueLock) Lock() error {
	for {
		if l.locked.CompareAndSwap(false, true) {
			return nil
		}

		l.mu.Lock()
		if l.locked.CompareAndSwap(false, true) {
			l.mu.Unlock()
			return nil
		}
		waiter := make(chan struct{}, 1)
		l.pendings = append(l.pendings, waiter)
		l.mu.Unlock()

		if _, ok := <-waiter; !ok {
			return errors.NewTransactionError(
				nil, errors.ErrorCodeWaiterLost, "Lock waiter abandoned without a signal",
			).WithOperation("lock")
		}
	}
}

// TryLock acquires the lock only when it is free, reporting whether it did.
func (l *QueueLock) TryLock() bool {
	return l.locked.CompareAndSwap(false, true)
}

// Unlock releases the lock and signals every queued waiter. Waiters treat the
// signal as "released; re-acquire", so draining the whole queue cannot lose a
// wakeup even when a signaled waiter loses the race to a fresh caller.
func (l *QueueLock) Unlock() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.locked.CompareAndSwap(true, false) {
		for _, pending := range l.pendings {
			pending <- struct{}{}
		}
		l.pendings = l.pendings[:0]
	}
}
