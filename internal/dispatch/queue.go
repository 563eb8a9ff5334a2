// Package dispatch provides the serialized execution context on which every
// application callback fires.
package dispatch

import "sync"

// Queue runs submitted functions one at a time, in submission order, on a
// queue-owned goroutine. Submit never blocks and is safe to call from any
// goroutine, including from inside a running callback, so callback code can
// re-register handlers without deadlocking.
type Queue struct {
	mu      sync.Mutex
	pending []func()
	running bool
	closed  bool
}

// NewQueue returns an empty, open queue. The worker goroutine starts on first
// submission and exits whenever the queue drains.
func NewQueue() *Queue {
	return &Queue{}
}

// Submit schedules fn to run after everything submitted before it. It reports
// false, and drops fn, once the queue is closed.
func (q *Queue) Submit(fn func()) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.pending = append(q.pending, fn)
	if !q.running {
		q.running = true
		go q.run()
	}
	q.mu.Unlock()
	return true
}

func (q *Queue) run() {
	for {
		q.mu.Lock()
		if q.closed || len(q.pending) == 0 {
			q.running = false
			q.mu.Unlock()
			return
		}
		fn := q.pending[0]
		q.pending = q.pending[1:]
		q.mu.Unlock()

		fn()
	}
}

// Drain blocks until every callback submitted before the call has run. It
// returns immediately on a closed queue.
func (q *Queue) Drain() {
	done := make(chan struct{})
	if !q.Submit(func() { close(done) }) {
		return
	}
	<-done
}

// Close stops the queue. The currently running callback, if any, completes;
// callbacks still pending are discarded and later submissions are dropped.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.pending = nil
	q.mu.Unlock()
}
