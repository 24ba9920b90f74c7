package engine

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/tuannm99/novatable/internal/dispatch"
	"github.com/tuannm99/novatable/internal/metrics"
	"github.com/tuannm99/novatable/internal/query"
	"github.com/tuannm99/novatable/internal/sched"
	"github.com/tuannm99/novatable/internal/table"
)

// Options configures a Catalog.
type Options struct {
	// Workers is the dispatcher pool size (default 8).
	Workers int
	// Chunk is the number of rows per task; 0 runs one task per query.
	Chunk int
}

// entry is a table together with its scheduler.
type entry struct {
	table *table.Table
	sched *sched.Scheduler
}

// Catalog owns every table and the task dispatcher.
//
// Lock order: c.mu is never held while taking a scheduler lock or the
// dispatcher queue lock.
type Catalog struct {
	opts    Options
	pool    *dispatch.Pool
	metrics *metrics.Metrics

	mu     sync.RWMutex
	tables map[string]*entry
	closed bool
}

// New builds a catalog and starts its worker pool. Call Close to stop it.
func New(opts Options) *Catalog {
	m := metrics.New()
	c := &Catalog{
		opts:    opts,
		pool:    dispatch.NewPool(opts.Workers, m),
		metrics: m,
		tables:  make(map[string]*entry),
	}
	c.pool.Start()
	slog.Info("engine: catalog started", "workers", c.pool.Workers(), "chunk", opts.Chunk)
	return c
}

// Close refuses new work, waits for queued tasks to finish and stops the workers.
func (c *Catalog) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	err := c.pool.Shutdown()
	slog.Info("engine: catalog closed")
	return err
}

func (c *Catalog) Metrics() *metrics.Metrics { return c.metrics }

func (c *Catalog) newEntry(t *table.Table) *entry {
	e := &entry{table: t}
	e.sched = sched.New(t.Name(), func(op sched.Op) {
		switch op := op.(type) {
		case query.Query:
			c.run(e, op)
		case dropOp:
			e.table.Truncate()
			e.sched.Release()
		default:
			slog.Error("engine: unknown scheduler op", "op", fmt.Sprintf("%T", op))
			e.sched.Release()
		}
	}, c.metrics)
	return e
}

// run executes an admitted query against its table.
func (c *Catalog) run(e *entry, q query.Query) {
	res := query.Run(q, query.Env{
		Table:   e.table,
		Submit:  c.SubmitTask,
		Release: e.sched.Release,
		Chunk:   c.opts.Chunk,
		Metrics: c.metrics,
	})
	if !res.OK() {
		slog.Debug("engine: query failed on execute",
			"kind", q.Kind(),
			"table", q.Target(),
			"err", res.Err,
		)
	}
}

// Register adds t to the catalog.
func (c *Catalog) Register(t *table.Table) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.tables[t.Name()]; exists {
		return errors.Wrapf(ErrDuplicateTableName, "register %q", t.Name())
	}
	c.tables[t.Name()] = c.newEntry(t)
	slog.Debug("engine: table registered", "table", t.Name(), "rows", t.Len())
	return nil
}

// Drop removes a table and discards its rows.
//
// Queries already queued on the table keep running against the detached
// table.
func (c *Catalog) Drop(name string) error {
	c.mu.Lock()
	e, ok := c.tables[name]
	if ok {
		delete(c.tables, name)
	}
	c.mu.Unlock()

	if !ok {
		return errors.Wrapf(ErrTableNotFound, "drop %q", name)
	}
	e.sched.Admit(dropOp{})
	slog.Debug("engine: table dropped", "table", name)
	return nil
}

// dropOp truncates the table once it has exclusive access, so rows are not
// pulled out from under running tasks.
type dropOp struct{}

func (dropOp) IsWriter() bool { return true }

func (c *Catalog) lookup(name string) (*entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.tables[name]
	if !ok {
		return nil, errors.Wrapf(ErrTableNotFound, "%q", name)
	}
	return e, nil
}

// Lookup returns the named table for direct mutation. It never creates tables.
func (c *Catalog) Lookup(name string) (*table.Table, error) {
	e, err := c.lookup(name)
	if err != nil {
		return nil, err
	}
	return e.table, nil
}

// View returns a read-only handle on the named table.
func (c *Catalog) View(name string) (table.View, error) {
	return c.Lookup(name)
}

// Scheduler exposes a table's scheduler, mostly for inspection.
func (c *Catalog) Scheduler(name string) (*sched.Scheduler, error) {
	e, err := c.lookup(name)
	if err != nil {
		return nil, err
	}
	return e.sched, nil
}

// Submit routes q to its table's scheduler, creating an empty table if the
// name is unknown. A query with no target is dropped silently.
func (c *Catalog) Submit(q query.Query) error {
	name := q.Target()
	if name == "" {
		return nil
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	e, ok := c.tables[name]
	if !ok {
		e = c.newEntry(table.Empty(name))
		c.tables[name] = e
		slog.Debug("engine: table created on demand", "table", name)
	}
	c.mu.Unlock()

	e.sched.Admit(q)
	return nil
}

// SubmitTask queues a task for the worker pool. It never blocks.
func (c *Catalog) SubmitTask(t query.Task) error {
	if err := c.pool.Submit(t); err != nil {
		return errors.Wrap(ErrClosed, err.Error())
	}
	return nil
}

// TableInfo summarizes one table.
type TableInfo struct {
	Name    string
	Fields  int // including KEY
	Entries int
	Counter int // admission counter: readers, 0 idle, -1 writer
	Queued  int
}

// Tables lists every table sorted by name.
func (c *Catalog) Tables() []TableInfo {
	c.mu.RLock()
	entries := make([]*entry, 0, len(c.tables))
	for _, e := range c.tables {
		entries = append(entries, e)
	}
	c.mu.RUnlock()

	out := make([]TableInfo, 0, len(entries))
	for _, e := range entries {
		counter, queued := e.sched.Snapshot()
		out = append(out, TableInfo{
			Name:    e.table.Name(),
			Fields:  e.table.NumFields() + 1,
			Entries: e.table.Len(),
			Counter: counter,
			Queued:  queued,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
