package executor

import (
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Pool runs submitted tasks on at most maxWorkers goroutines.
//
// Tasks stop cooperatively: the pool never kills a goroutine. Instead it
// calls the cancel function it was built with (typically setting a shared
// cancellation token) and waits for tasks to return.
//
// Usage: Submit any number of tasks, then Close to mark submission finished.
// Wait and Done observe completion of everything submitted before Close.
type Pool struct {
	group  *errgroup.Group
	cancel func()

	mu     sync.Mutex
	closed bool

	running   atomic.Int64
	completed atomic.Int64

	done      chan struct{}
	closeOnce sync.Once
	err       error
}

// NewPool creates a pool bounded to maxWorkers concurrent tasks (minimum 1).
// cancel is invoked on Shutdown and when a task panics; it may be nil.
func NewPool(maxWorkers int, cancel func()) *Pool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if cancel == nil {
		cancel = func() {}
	}
	g := &errgroup.Group{}
	g.SetLimit(maxWorkers)
	return &Pool{
		group:  g,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Submit schedules task, blocking while all workers are busy.
// A panic inside task is recovered and reported as a SchedulingError by Wait.
func (p *Pool) Submit(task func()) error {
	// Held across Go so Close cannot start the group's Wait mid-submit.
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return NewSchedulingError("submit rejected", ErrPoolClosed)
	}

	p.group.Go(func() (err error) {
		p.running.Add(1)
		defer func() {
			p.running.Add(-1)
			p.completed.Add(1)
			if r := recover(); r != nil {
				err = NewSchedulingError(
					"worker task panicked",
					fmt.Errorf("%v\n%s", r, debug.Stack()),
				)
				p.cancel()
			}
		}()
		task()
		return nil
	})
	return nil
}

// Close marks submission finished. Completion is signalled on Done once
// every submitted task has returned. Close is idempotent.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()

		go func() {
			p.err = p.group.Wait()
			close(p.done)
		}()
	})
}

// Done is closed when all tasks have returned after Close.
func (p *Pool) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the pool is closed and drained. It returns the first
// SchedulingError raised by a task, if any.
func (p *Pool) Wait() error {
	<-p.done
	return p.err
}

// Shutdown requests a cooperative stop and waits up to timeout for running
// tasks to return. A non-positive timeout waits indefinitely.
func (p *Pool) Shutdown(timeout time.Duration) error {
	p.cancel()

	if timeout <= 0 {
		return p.Wait()
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-p.done:
		return p.err
	case <-timer.C:
		return newShutdownTimeoutError(timeout, p.running.Load())
	}
}

// Running returns the number of tasks currently executing.
func (p *Pool) Running() int64 {
	return p.running.Load()
}

// Completed returns the number of tasks that have returned.
func (p *Pool) Completed() int64 {
	return p.completed.Load()
}
