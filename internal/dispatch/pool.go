package dispatch

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/tuannm99/novatable/internal/metrics"
)

// DefaultWorkers is the pool size used when none is configured.
const DefaultWorkers = 8

// Pool is a fixed set of workers draining one shared Queue.
type Pool struct {
	queue   *Queue
	workers int
	metrics *metrics.Metrics

	startOnce sync.Once
	stopOnce  sync.Once
	group     errgroup.Group
	stopErr   error
}

func NewPool(workers int, m *metrics.Metrics) *Pool {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Pool{
		queue:   NewQueue(),
		workers: workers,
		metrics: m,
	}
}

func (p *Pool) Workers() int { return p.workers }

// Start launches the workers. Calling it again has no effect.
func (p *Pool) Start() {
	p.startOnce.Do(func() {
		for i := 0; i < p.workers; i++ {
			id := i
			p.group.Go(func() error {
				p.work(id)
				return nil
			})
		}
		slog.Debug("dispatch: pool started", "workers", p.workers)
	})
}

// Submit queues t for a worker. It never blocks.
func (p *Pool) Submit(t Task) error {
	n, err := p.queue.Push(t)
	if err != nil {
		return err
	}
	p.metrics.TaskQueued(n)
	return nil
}

// Pending is the number of queued tasks not yet picked up.
func (p *Pool) Pending() int { return p.queue.Len() }

// Shutdown closes the queue, lets the workers drain it and waits for them.
func (p *Pool) Shutdown() error {
	p.stopOnce.Do(func() {
		p.queue.Close()
		p.stopErr = p.group.Wait()
		slog.Debug("dispatch: pool stopped")
	})
	return p.stopErr
}

func (p *Pool) work(id int) {
	for {
		t, remaining, ok := p.queue.Pop()
		if !ok {
			return
		}
		p.metrics.TaskRun(remaining)
		p.runTask(id, t)
	}
}

func (p *Pool) runTask(id int, t Task) {
	defer func() {
		if r := recover(); r != nil {
			p.metrics.TaskPanic()
			slog.Error("dispatch: task panicked",
				"worker", id,
				"task", fmt.Sprintf("%T", t),
				"panic", r,
				"stack", string(debug.Stack()),
			)
		}
	}()
	t.Execute()
}
