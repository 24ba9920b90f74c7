package query

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	locking "github.com/tuannm99/novatable/internal/lock"
	"github.com/tuannm99/novatable/internal/metrics"
	"github.com/tuannm99/novatable/internal/table"
)

// Query is an operation bound to one table.
//
// Execute runs once the table's scheduler admits the query; it may spawn
// tasks and return a pending result. Combine then reports ErrNotCompleted
// until every spawned task is done, and the final result afterwards.
//
// Concrete queries embed Base, which carries the completion tracking.
type Query interface {
	Kind() string
	Target() string
	IsWriter() bool
	Execute(env Env) Result
	Combine() Result
	Done() <-chan struct{}

	tracking() *lifecycle
}

// Task is one asynchronous piece of a query's work.
type Task interface {
	Execute()
}

// Env is what an admitted query gets to work with.
type Env struct {
	Table *table.Table

	// Submit hands a task to the dispatcher.
	Submit func(Task) error

	// Release ends the query's admission on its table. Run calls it exactly
	// once, after Execute returned and every spawned task finished.
	Release func()

	// Chunk is the number of rows per task; 0 means one task for the whole table.
	Chunk int

	Metrics *metrics.Metrics
}

// lifecycle tracks the references that keep a query admitted: one for the
// Execute call and one per spawned task.
type lifecycle struct {
	refs     *locking.RefCount
	started  atomic.Bool
	spawned  atomic.Int32
	finished atomic.Int32
	done     chan struct{}
	release  func()

	mu      sync.Mutex
	failure *Result
}

func (l *lifecycle) drop() {
	if !l.refs.Release() {
		return
	}
	if l.release != nil {
		l.release()
	}
	close(l.done)
}

func (l *lifecycle) taskDone() {
	l.finished.Add(1)
	l.drop()
}

// Base implements the bookkeeping part of Query.
type Base struct {
	kind   string
	target string
	writer bool
	life   *lifecycle
}

func NewBase(kind, target string, writer bool) Base {
	return Base{
		kind:   kind,
		target: target,
		writer: writer,
		life: &lifecycle{
			refs: locking.NewRefCount(),
			done: make(chan struct{}),
		},
	}
}

func (b Base) Kind() string   { return b.kind }
func (b Base) Target() string { return b.target }
func (b Base) IsWriter() bool { return b.writer }

// Done is closed once the query and all of its tasks have finished.
func (b Base) Done() <-chan struct{} { return b.life.done }

func (b Base) Completed() bool {
	select {
	case <-b.life.done:
		return true
	default:
		return false
	}
}

// Spawned and Finished count the query's tasks.
func (b Base) Spawned() int  { return int(b.life.spawned.Load()) }
func (b Base) Finished() int { return int(b.life.finished.Load()) }

func (b Base) tracking() *lifecycle { return b.life }

// Fail builds an error result for this query.
func (b Base) Fail(err error) Result {
	return Result{Kind: b.kind, Table: b.target, Status: StatusError, Err: err}
}

func (b Base) Pending() Result {
	return Result{Kind: b.kind, Table: b.target, Status: StatusPending}
}

// Failure returns the error result Execute produced, if any.
func (b Base) Failure() (Result, bool) {
	b.life.mu.Lock()
	defer b.life.mu.Unlock()
	if b.life.failure == nil {
		return Result{}, false
	}
	return *b.life.failure, true
}

// Spawn submits t on behalf of the query. t must call Finish on its
// TaskBase exactly once when it is done.
func (b Base) Spawn(env Env, t Task) error {
	b.life.refs.Acquire()
	b.life.spawned.Add(1)
	if err := env.Submit(t); err != nil {
		b.life.taskDone()
		return errors.Wrap(err, "submit task")
	}
	return nil
}

// NewTask returns the task-side handle bound to this query.
func (b Base) NewTask(env Env, lo, hi int) TaskBase {
	return TaskBase{Table: env.Table, Lo: lo, Hi: hi, life: b.life, metrics: env.Metrics}
}

// TaskBase is embedded by concrete tasks. Lo and Hi bound the row range.
type TaskBase struct {
	Table  *table.Table
	Lo, Hi int

	// Counter and Err are private to the task until Finish.
	Counter int
	Err     error

	life    *lifecycle
	metrics *metrics.Metrics
}

// Finish marks the task complete on its query. Call it exactly once.
func (t *TaskBase) Finish() {
	if t.Err != nil {
		t.metrics.RowError()
	}
	t.life.taskDone()
}

// Run drives an admitted query: it runs Execute and arranges for
// env.Release to fire once Execute and every task it spawned are done.
func Run(q Query, env Env) Result {
	life := q.tracking()
	if !life.started.CompareAndSwap(false, true) {
		if env.Release != nil {
			env.Release()
		}
		return Result{Kind: q.Kind(), Table: q.Target(), Status: StatusError, Err: ErrAlreadyRun}
	}
	life.release = env.Release

	res := q.Execute(env)
	if res.Status == StatusError {
		life.mu.Lock()
		life.failure = &res
		life.mu.Unlock()
	}
	life.drop()
	return res
}

// Wait blocks until q is done or ctx ends, then returns q.Combine().
func Wait(ctx context.Context, q Query) (Result, error) {
	select {
	case <-q.Done():
		return q.Combine(), nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// chunks splits [0, n) into ranges of size chunk. There is always at least
// one range, so an empty table still gets a task.
func chunks(n, chunk int) [][2]int {
	if chunk <= 0 || n <= chunk {
		return [][2]int{{0, n}}
	}
	out := make([][2]int, 0, (n+chunk-1)/chunk)
	for lo := 0; lo < n; lo += chunk {
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		out = append(out, [2]int{lo, hi})
	}
	return out
}

// partialOf returns the first task error, if any.
func partialOf(tasks []*TaskBase) (bool, string) {
	for _, t := range tasks {
		if t.Err != nil {
			return true, t.Err.Error()
		}
	}
	return false, ""
}
