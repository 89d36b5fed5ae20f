// Package pool implements a fixed-size worker pool fed from a FIFO task
// queue guarded by one mutex and one condition variable, in the style of
// a classic thread pool rather than a lock-free work-stealing executor.
package pool

import (
	"errors"
	"sync"
	"time"

	"github.com/eapache/queue"
	"go.uber.org/zap"
)

// Task is a unit of work submitted to the pool.
type Task func()

// ErrPoolStopped is returned by Submit once the pool has been closed.
var ErrPoolStopped = errors.New("pool: stopped")

// Pool executes submitted tasks on a fixed number of worker goroutines.
type Pool struct {
	mu      sync.Mutex
	cond    *sync.Cond
	tasks   *queue.Queue
	stopped bool

	wg sync.WaitGroup

	logger *zap.Logger
}

// New starts a pool of size workers. size <= 0 is clamped to 1. A nil
// logger disables logging.
func New(size int, logger *zap.Logger) *Pool {
	if size <= 0 {
		size = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Pool{tasks: queue.New(), logger: logger}
	p.cond = sync.NewCond(&p.mu)

	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.workerLoop()
	}
	return p
}

// Submit enqueues task for execution. Tasks run in FIFO order relative to
// other queued tasks; cross-worker completion order is unspecified.
func (p *Pool) Submit(task Task) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return ErrPoolStopped
	}
	p.tasks.Add(task)
	p.mu.Unlock()
	p.cond.Signal()
	return nil
}

// SubmitWait enqueues task and returns a channel closed once it has run.
func (p *Pool) SubmitWait(task Task) (<-chan struct{}, error) {
	done := make(chan struct{})
	err := p.Submit(func() {
		defer close(done)
		task()
	})
	if err != nil {
		close(done)
		return done, err
	}
	return done, nil
}

// Pending returns the current queue depth, for diagnostics.
func (p *Pool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tasks.Length()
}

// Close stops accepting new tasks, discards anything still queued, and
// blocks until every worker goroutine has exited. Tasks already dequeued
// run to completion.
func (p *Pool) Close() {
	p.CloseTimeout(0)
}

// CloseTimeout behaves like Close but gives up waiting for workers to drain
// after timeout elapses, logging a warning instead of blocking forever. A
// timeout <= 0 waits indefinitely. It returns true if every worker exited
// before the deadline.
func (p *Pool) CloseTimeout(timeout time.Duration) bool {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return true
	}
	p.stopped = true
	for p.tasks.Length() > 0 {
		p.tasks.Remove()
	}
	p.mu.Unlock()
	p.cond.Broadcast()

	if timeout <= 0 {
		p.wg.Wait()
		return true
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		p.logger.Warn("pool: shutdown timed out waiting for workers to drain", zap.Duration("timeout", timeout))
		return false
	}
}

func (p *Pool) workerLoop() {
	defer p.wg.Done()
	for {
		p.mu.Lock()
		for p.tasks.Length() == 0 && !p.stopped {
			p.cond.Wait()
		}
		if p.stopped && p.tasks.Length() == 0 {
			p.mu.Unlock()
			return
		}
		task := p.tasks.Remove().(Task)
		p.mu.Unlock()

		p.runTask(task)
	}
}

// runTask executes one task with panic recovery so a bad handler never
// takes down a worker goroutine.
func (p *Pool) runTask(task Task) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("pool: task panic", zap.Any("recovered", r))
		}
	}()
	task()
}
