// Package novatable is the top-level facade for the novatable engine.
package novatable

import (
	"context"
	"io"

	"github.com/tuannm99/novatable/internal/engine"
	"github.com/tuannm99/novatable/internal/query"
	"github.com/tuannm99/novatable/internal/table"
)

type (
	Catalog   = engine.Catalog
	Options   = engine.Options
	TableInfo = engine.TableInfo

	Table = table.Table
	Row   = table.Row
	View  = table.View

	Query      = query.Query
	Result     = query.Result
	Predicate  = query.Predicate
	Conditions = query.Conditions
	Comparison = query.Comparison
)

var (
	ErrDuplicateTableName = engine.ErrDuplicateTableName
	ErrTableNotFound      = engine.ErrTableNotFound
	ErrClosed             = engine.ErrClosed
)

// New builds a catalog with its worker pool running. Close it when done.
func New(opts Options) *Catalog { return engine.New(opts) }

func NewTable(name string, fields []string) (*Table, error) { return table.New(name, fields) }

func NewUpdate(target string, operands []string, where Predicate) Query {
	return query.NewUpdate(target, operands, where)
}

func NewCount(target string, where Predicate) Query {
	return query.NewCount(target, nil, where)
}

func NewDump(target, path string) Query {
	return query.NewDump(target, []string{path})
}

// Wait blocks until q and all of its tasks are done, then returns its result.
func Wait(ctx context.Context, q Query) (Result, error) { return query.Wait(ctx, q) }

// LoadTable reads a table in the bulk-load format; source only decorates errors.
func LoadTable(r io.Reader, source string) (*Table, error) { return table.Load(r, source) }

func DumpTable(w io.Writer, t View) error { return table.Dump(w, t) }
