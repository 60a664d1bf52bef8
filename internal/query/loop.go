package query

import (
	"context"
	"errors"
	"sync"
)

// ErrLoopClosed is returned by RunUntil when the loop is closed before its
// condition is met.
var ErrLoopClosed = errors.New("loop closed")

// Loop is a caller's execution context: a FIFO of tasks that run only on the
// goroutine draining it. Posting never blocks. Once closed, the loop drops
// queued and future tasks, which is how a torn-down caller ignores late
// results.
type Loop struct {
	mu     sync.Mutex
	tasks  []func()
	closed bool
	wake   chan struct{}
}

func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post queues task and reports whether it was accepted.
func (l *Loop) Post(task func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.tasks = append(l.tasks, task)
	l.mu.Unlock()

	l.signal()
	return true
}

// Close tears the loop down. Queued tasks are discarded.
func (l *Loop) Close() {
	l.mu.Lock()
	l.closed = true
	l.tasks = nil
	l.mu.Unlock()

	l.signal()
}

func (l *Loop) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

// Pending returns the number of queued tasks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tasks)
}

// Drain runs every queued task on the calling goroutine, including tasks
// queued while draining, and returns how many ran.
func (l *Loop) Drain() int {
	n := 0
	for {
		task := l.next()
		if task == nil {
			return n
		}
		task()
		n++
	}
}

// Run drains tasks as they arrive until ctx is done or the loop is closed.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.Drain()
		if l.Closed() {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// RunUntil drains tasks as they arrive until done reports true. done is
// checked on the calling goroutine after every drain.
func (l *Loop) RunUntil(ctx context.Context, done func() bool) error {
	for {
		l.Drain()
		if done() {
			return nil
		}
		if l.Closed() {
			return ErrLoopClosed
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

func (l *Loop) next() func() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed || len(l.tasks) == 0 {
		return nil
	}
	task := l.tasks[0]
	l.tasks[0] = nil
	l.tasks = l.tasks[1:]
	return task
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}
