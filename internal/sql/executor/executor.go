package executor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/tuannm99/novatable/internal/metrics"
	"github.com/tuannm99/novatable/internal/query"
	"github.com/tuannm99/novatable/internal/sql/parser"
	"github.com/tuannm99/novatable/internal/table"
)

// Catalog kinds reported for statements that are not queries.
const (
	KindLoad = "LOAD"
	KindDrop = "DROP"
	KindList = "LIST"
)

// ErrQuit is returned by Exec once a QUIT statement has been executed.
var ErrQuit = errors.New("executor: quit")

// catalog is a small seam for unit-testing Executor without a real engine.
type catalog interface {
	Register(t *table.Table) error
	Drop(name string) error
	Submit(q query.Query) error
	Overview(w io.Writer)
	Metrics() *metrics.Metrics
}

// Builder turns a parsed query statement into a query.
type Builder func(target string, operands []string, where query.Predicate) query.Query

// Builders maps the query keywords the parser accepts to their builders.
var Builders = map[string]Builder{
	query.KindUpdate: func(target string, operands []string, where query.Predicate) query.Query {
		return query.NewUpdate(target, operands, where)
	},
	query.KindCount: func(target string, operands []string, where query.Predicate) query.Query {
		return query.NewCount(target, operands, where)
	},
}

// pending is a numbered result not written yet. Either q is still running
// or res already holds the outcome of a statement that never became a query.
type pending struct {
	seq int
	q   query.Query
	res *query.Result
}

// Executor runs statements against a catalog. Queries are submitted as soon
// as they are executed; their results are written to the output in
// submission order by Flush. Catalog statements flush first.
//
// An Executor is not safe for concurrent use.
type Executor struct {
	cat catalog
	out io.Writer

	seq     int
	pending []pending
}

func NewExecutor(cat catalog, out io.Writer) *Executor {
	return &Executor{cat: cat, out: out}
}

// Outstanding is the number of submitted queries not reported yet.
func (e *Executor) Outstanding() int { return len(e.pending) }

// Exec parses and runs one ';'-terminated statement.
func (e *Executor) Exec(ctx context.Context, src string) error {
	stmt, err := parser.Parse(src)
	if err != nil {
		return err
	}
	return e.ExecStmt(ctx, stmt)
}

// ExecScript runs every statement in r, then flushes. A statement that
// fails is reported in sequence and does not stop the script. QUIT stops it
// and is returned as ErrQuit once everything before it has been reported.
func (e *Executor) ExecScript(ctx context.Context, r io.Reader) error {
	src, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrap(err, "read script")
	}

	stmts, rest := parser.Split(string(src))
	if rest != "" {
		stmts = append(stmts, rest)
	}
	for _, s := range stmts {
		err := e.Exec(ctx, s)
		switch {
		case errors.Is(err, ErrQuit):
			return err
		case err != nil && ctx.Err() != nil:
			return err
		case err != nil:
			e.queueFailure(query.Result{Kind: statementKind(s), Status: query.StatusError, Err: err})
		}
	}
	return e.Flush(ctx)
}

// ExecStmt runs one parsed statement.
func (e *Executor) ExecStmt(ctx context.Context, stmt parser.Statement) error {
	switch s := stmt.(type) {
	case *parser.QueryStmt:
		build, ok := Builders[s.Kind]
		if !ok {
			return fmt.Errorf("executor: unsupported query kind %q", s.Kind)
		}
		return e.submit(build(s.TableName, s.Operands, conditions(s.Where)))
	case *parser.DumpStmt:
		return e.submit(query.NewDump(s.TableName, []string{s.Path}))

	case *parser.LoadStmt:
		if err := e.Flush(ctx); err != nil {
			return err
		}
		e.report(e.load(s.Path))
		return nil
	case *parser.DropStmt:
		if err := e.Flush(ctx); err != nil {
			return err
		}
		res := query.Result{Kind: KindDrop, Table: s.TableName, Status: query.StatusSuccess}
		if err := e.cat.Drop(s.TableName); err != nil {
			res.Status, res.Err = query.StatusError, err
		}
		e.report(res)
		return nil
	case *parser.ListStmt:
		if err := e.Flush(ctx); err != nil {
			return err
		}
		e.seq++
		fmt.Fprintln(e.out, e.seq)
		e.cat.Overview(e.out)
		return nil
	case *parser.QuitStmt:
		if err := e.Flush(ctx); err != nil {
			return err
		}
		return ErrQuit
	default:
		return fmt.Errorf("executor: unsupported statement %T", stmt)
	}
}

func (e *Executor) submit(q query.Query) error {
	if err := e.cat.Submit(q); err != nil {
		return errors.Wrapf(err, "submit %s", q.Kind())
	}
	e.seq++
	e.pending = append(e.pending, pending{seq: e.seq, q: q})
	slog.Debug("executor: query submitted", "seq", e.seq, "kind", q.Kind(), "table", q.Target())
	return nil
}

func (e *Executor) load(path string) query.Result {
	res := query.Result{Kind: KindLoad, Table: path, Status: query.StatusSuccess}

	f, err := os.Open(path)
	if err != nil {
		res.Status, res.Err = query.StatusError, errors.Wrap(err, "open")
		return res
	}
	defer func() { _ = f.Close() }()

	t, err := table.Load(f, path)
	if err != nil {
		res.Status, res.Err = query.StatusError, err
		return res
	}
	res.Table = t.Name()
	if err := e.cat.Register(t); err != nil {
		res.Status, res.Err = query.StatusError, err
	}
	return res
}

// Flush waits for every outstanding query in submission order and writes
// its result. On ctx cancellation the unreported queries stay outstanding.
func (e *Executor) Flush(ctx context.Context) error {
	for len(e.pending) > 0 {
		p := e.pending[0]
		if p.res != nil {
			e.pending = e.pending[1:]
			e.write(p.seq, *p.res)
			continue
		}
		res, err := query.Wait(ctx, p.q)
		if err != nil {
			return errors.Wrapf(err, "wait for query %d", p.seq)
		}
		e.pending = e.pending[1:]
		e.write(p.seq, res)
	}
	return nil
}

// queueFailure numbers a failed statement and queues its result behind the queries
// submitted before it.
func (e *Executor) queueFailure(res query.Result) {
	e.seq++
	e.pending = append(e.pending, pending{seq: e.seq, res: &res})
}

// report writes a result that did not go through a query. Callers flush first.
func (e *Executor) report(res query.Result) {
	e.seq++
	e.write(e.seq, res)
}

func (e *Executor) write(seq int, res query.Result) {
	e.cat.Metrics().QueryResult(res.Kind, outcome(res))
	fmt.Fprintf(e.out, "%d\n%s\n", seq, res)
}

func outcome(res query.Result) string {
	switch {
	case !res.OK():
		return "error"
	case res.Partial:
		return "partial"
	default:
		return "ok"
	}
}

func conditions(where []parser.Cond) query.Predicate {
	if len(where) == 0 {
		return nil
	}
	cs := make(query.Conditions, len(where))
	for i, c := range where {
		cs[i] = query.Comparison{Field: c.Field, Op: c.Op, Value: c.Value}
	}
	return cs
}

// statementKind guesses the keyword of a statement that failed to parse.
func statementKind(src string) string {
	fields := strings.Fields(src)
	if len(fields) == 0 {
		return "?"
	}
	return strings.ToUpper(strings.TrimSuffix(fields[0], ";"))
}

// Kinds lists every statement keyword the executor handles, sorted.
func Kinds() []string {
	kinds := []string{KindLoad, KindDrop, KindList, query.KindDump, "QUIT"}
	for k := range Builders {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
