package dispatch

import (
	"sync"

	"github.com/pkg/errors"
)

var ErrQueueClosed = errors.New("dispatch: queue is closed")

// Task is a unit of work run by a worker.
type Task interface {
	Execute()
}

// Queue is an unbounded FIFO of tasks. Push never blocks; Pop blocks until a
// task is available or the queue is closed and empty.
type Queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []Task
	head   int
	closed bool
}

func NewQueue() *Queue {
	q := &Queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends t and returns the queue length after the push.
func (q *Queue) Push(t Task) (int, error) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return 0, ErrQueueClosed
	}
	q.items = append(q.items, t)
	n := len(q.items) - q.head
	q.mu.Unlock()

	q.cond.Signal()
	return n, nil
}

// Pop removes the oldest task. ok is false once the queue is closed and drained.
func (q *Queue) Pop() (t Task, remaining int, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.head == len(q.items) && !q.closed {
		q.cond.Wait()
	}
	if q.head == len(q.items) {
		return nil, 0, false
	}

	t = q.items[q.head]
	q.items[q.head] = nil
	q.head++
	switch {
	case q.head == len(q.items):
		q.items = q.items[:0]
		q.head = 0
	case q.head > len(q.items)/2:
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
	return t, len(q.items) - q.head, true
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}

// Close stops new pushes and wakes every waiting Pop. Tasks already queued
// are still handed out.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
}
