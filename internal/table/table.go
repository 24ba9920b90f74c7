package table

import (
	"strings"
	"sync/atomic"
	"unicode"

	"github.com/pkg/errors"
)

// KeyField is the name of the implicit key column. It is never part of Fields().
const KeyField = "KEY"

// Row is a keyed tuple. len(Values) always equals the owning table's field count.
type Row struct {
	Key    string
	Values []int
}

func (r *Row) SetKey(key string) { r.Key = key }

func (r *Row) Set(i, v int) { r.Values[i] = v }

// View is the read-only face of a Table.
type View interface {
	Name() string
	Fields() []string
	FieldIndex(name string) (int, error)
	Len() int
	Scan(fn func(i int, row Row) error) error
}

// Table is an in-memory ordered collection of rows with a fixed field list.
//
// Table itself does no locking: rows may only be touched by work admitted
// through the table's scheduler.
type Table struct {
	name   string
	fields []string
	index  map[string]int
	rows   []*Row

	// size mirrors len(rows) so Len can be read outside the scheduler.
	size atomic.Int64
}

var _ View = (*Table)(nil)

func New(name string, fields []string) (*Table, error) {
	index := make(map[string]int, len(fields))
	for i, f := range fields {
		if f == "" || f == KeyField || strings.IndexFunc(f, unicode.IsSpace) >= 0 {
			return nil, errors.Wrapf(ErrInvalidSchema, "field %d: %q", i, f)
		}
		if _, dup := index[f]; dup {
			return nil, errors.Wrapf(ErrInvalidSchema, "duplicate field %q", f)
		}
		index[f] = i
	}
	return &Table{
		name:   name,
		fields: append([]string(nil), fields...),
		index:  index,
	}, nil
}

// Empty returns a table with no fields, used when a query names a table nobody created.
func Empty(name string) *Table {
	return &Table{name: name, index: map[string]int{}}
}

func (t *Table) Name() string { return t.name }

func (t *Table) Fields() []string { return append([]string(nil), t.fields...) }

func (t *Table) NumFields() int { return len(t.fields) }

func (t *Table) FieldIndex(name string) (int, error) {
	i, ok := t.index[name]
	if !ok {
		return -1, errors.Wrapf(ErrFieldNotFound, "%q in table %q", name, t.name)
	}
	return i, nil
}

// Len is safe to call at any time, including while a writer holds the table.
func (t *Table) Len() int { return int(t.size.Load()) }

// ValidateKey rejects keys the dump format cannot carry: empty ones and
// ones containing whitespace.
func ValidateKey(key string) error {
	if key == "" || strings.IndexFunc(key, unicode.IsSpace) >= 0 {
		return errors.Wrapf(ErrInvalidKey, "%q", key)
	}
	return nil
}

// Insert appends a row. values is copied.
func (t *Table) Insert(key string, values []int) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if len(values) != len(t.fields) {
		return errors.Wrapf(ErrArity, "table %q: got %d values, want %d", t.name, len(values), len(t.fields))
	}
	t.rows = append(t.rows, &Row{Key: key, Values: append([]int(nil), values...)})
	t.size.Store(int64(len(t.rows)))
	return nil
}

// Row returns the i-th row for in-place mutation.
func (t *Table) Row(i int) *Row { return t.rows[i] }

// Scan calls fn with a copy of every row in order. It stops at the first error.
func (t *Table) Scan(fn func(i int, row Row) error) error {
	for i, r := range t.rows {
		cp := Row{Key: r.Key, Values: append([]int(nil), r.Values...)}
		if err := fn(i, cp); err != nil {
			return err
		}
	}
	return nil
}

// Range calls fn with the live rows in [lo, hi), clamped to the table size.
func (t *Table) Range(lo, hi int, fn func(i int, row *Row) error) error {
	if lo < 0 {
		lo = 0
	}
	if hi > len(t.rows) {
		hi = len(t.rows)
	}
	for i := lo; i < hi; i++ {
		if err := fn(i, t.rows[i]); err != nil {
			return err
		}
	}
	return nil
}

// Truncate drops every row.
func (t *Table) Truncate() {
	t.rows = nil
	t.size.Store(0)
}
