// Package pool provides a fixed-size worker pool for embedders that want to
// parallelize bulk work against the database. It is deliberately not part of
// the transaction hot path: the engine never schedules through it.
//
// Three usage shapes are supported: fire-and-forget Submit, Recv for a
// one-shot result computed on a worker, and Scoped, which joins every task
// spawned inside the scope before returning. Panics inside tasks are
// recovered and surfaced as errors rather than killing a worker.
package pool

import (
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/baekhyunee7/fxkv/pkg/errors"
)

// Task is a unit of work submitted to the pool.
type Task func()

// Pool runs tasks on a fixed set of worker goroutines draining a shared
// channel.
type Pool struct {
	tasks   chan Task
	workers sync.WaitGroup
	closing sync.Once
}

// New starts a pool of size workers. Sizes below one are raised to one.
func New(size int) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{tasks: make(chan Task)}
	for i := 0; i < size; i++ {
		p.workers.Add(1)
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.workers.Done()
	for task := range p.tasks {
		// A panicking task must not take the worker down with it.
		_ = protect(func() error {
			task()
			return nil
		})
	}
}

// Submit queues a task for execution on some worker. It blocks while every
// worker is busy and no one is ready to take the task.
func (p *Pool) Submit(task Task) {
	if task != nil {
		p.tasks <- task
	}
}

// Close stops accepting tasks and joins the workers after the queued tasks
// finish.
func (p *Pool) Close() {
	p.closing.Do(func() {
		close(p.tasks)
	})
	p.workers.Wait()
}

// Recv runs f on a pool worker and blocks until its result is available.
// A panic inside f surfaces as the returned error.
func Recv[T any](p *Pool, f func() T) (T, error) {
	var zero T
	out := make(chan T, 1)
	failed := make(chan error, 1)
	p.Submit(func() {
		if err := protect(func() error {
			out <- f()
			return nil
		}); err != nil {
			failed <- err
		}
	})
	select {
	case value := <-out:
		return value, nil
	case err := <-failed:
		return zero, err
	}
}

// Scope tracks the tasks spawned inside one Scoped call.
type Scope struct {
	pool  *Pool
	group *errgroup.Group
}

// Spawn schedules f on the pool and ties its completion (and error) to the
// enclosing scope.
func (s *Scope) Spawn(f func() error) {
	s.group.Go(func() error {
		done := make(chan error, 1)
		s.pool.Submit(func() {
			done <- protect(f)
		})
		return <-done
	})
}

// Scoped runs fn with a fresh scope and joins every spawned task before
// returning. The first task error (or recovered panic) is returned.
func (p *Pool) Scoped(fn func(s *Scope)) error {
	s := &Scope{pool: p, group: new(errgroup.Group)}
	fn(s)
	return s.group.Wait()
}

// protect runs f, converting a panic into an internal error.
func protect(f func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.NewInternalError(fmt.Sprintf("worker task panicked: %v", r))
		}
	}()
	return f()
}
