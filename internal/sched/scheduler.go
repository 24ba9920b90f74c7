package sched

import (
	"log/slog"
	"sync"

	locking "github.com/tuannm99/novatable/internal/lock"
	"github.com/tuannm99/novatable/internal/metrics"
)

// Op is anything the scheduler can admit.
type Op interface {
	IsWriter() bool
}

// RunFunc starts an admitted op. It is always called without the scheduler
// lock held, on the goroutine that admitted or released.
type RunFunc func(op Op)

// Scheduler is the per-table admission control: concurrent readers, a single
// exclusive writer, and a FIFO of operations waiting for their turn.
//
// Every op that is started must be followed by exactly one Release once the
// op's work is done.
type Scheduler struct {
	name    string
	run     RunFunc
	metrics *metrics.Metrics

	mu      sync.Mutex
	state   locking.State
	pending []Op
}

func New(name string, run RunFunc, m *metrics.Metrics) *Scheduler {
	return &Scheduler{name: name, run: run, metrics: m}
}

// Admit either starts op right away or queues it.
func (s *Scheduler) Admit(op Op) {
	writer := op.IsWriter()

	s.mu.Lock()
	next, act := s.state.Admit(writer)
	s.state = next
	if act == locking.Enqueue {
		s.pending = append(s.pending, op)
	}
	queued := len(s.pending)
	s.mu.Unlock()

	s.metrics.Admission(writer, act.String())
	slog.Debug("sched: admit",
		"table", s.name,
		"writer", writer,
		"action", act.String(),
		"state", next.String(),
		"queued", queued,
	)

	if act == locking.Run {
		s.run(op)
	}
}

// Release ends one admitted op and starts whatever the queue head allows.
func (s *Scheduler) Release() {
	s.mu.Lock()
	next, n := s.state.Release(headKinds(s.pending))
	s.state = next

	var start []Op
	if n > 0 {
		start = make([]Op, n)
		copy(start, s.pending[:n])
		clear(s.pending[:n])
		s.pending = s.pending[n:]
	}
	queued := len(s.pending)
	s.mu.Unlock()

	slog.Debug("sched: release",
		"table", s.name,
		"state", next.String(),
		"started", n,
		"queued", queued,
	)

	for _, op := range start {
		s.metrics.Admission(op.IsWriter(), locking.Run.String())
		s.run(op)
	}
}

// headKinds returns the writer flags of the leading readers in ops and of
// the first writer after them. Release never looks further than that.
func headKinds(ops []Op) []bool {
	var kinds []bool
	for _, op := range ops {
		w := op.IsWriter()
		kinds = append(kinds, w)
		if w {
			break
		}
	}
	return kinds
}

// Snapshot returns the admission counter (readers, 0 idle, -1 writer) and
// the number of queued ops.
func (s *Scheduler) Snapshot() (counter, queued int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Counter(), len(s.pending)
}

// State returns the current admission state.
func (s *Scheduler) State() locking.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
