package query

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/tuannm99/novatable/internal/table"
)

// Predicate decides per row whether a query applies to it. An error aborts
// the task that is evaluating it.
type Predicate interface {
	Match(t *table.Table, row *table.Row) (bool, error)
}

// PredicateFunc adapts a function to Predicate.
type PredicateFunc func(t *table.Table, row *table.Row) (bool, error)

func (f PredicateFunc) Match(t *table.Table, row *table.Row) (bool, error) { return f(t, row) }

// Comparison is a single "( field op value )" condition.
type Comparison struct {
	Field string
	Op    string
	Value string
}

func (c Comparison) Match(t *table.Table, row *table.Row) (bool, error) {
	if c.Field == table.KeyField {
		switch c.Op {
		case "=":
			return row.Key == c.Value, nil
		case "!=":
			return row.Key != c.Value, nil
		default:
			return false, errors.Wrapf(ErrIllFormedCondition, "operator %q not supported on KEY", c.Op)
		}
	}

	idx, err := t.FieldIndex(c.Field)
	if err != nil {
		return false, errors.Wrapf(ErrIllFormedCondition, "%v", err)
	}
	want, err := strconv.Atoi(c.Value)
	if err != nil {
		return false, errors.Wrapf(ErrIllFormedCondition, "value %q of field %q is not an integer", c.Value, c.Field)
	}
	got := row.Values[idx]

	switch c.Op {
	case "=":
		return got == want, nil
	case "!=":
		return got != want, nil
	case "<":
		return got < want, nil
	case ">":
		return got > want, nil
	case "<=":
		return got <= want, nil
	case ">=":
		return got >= want, nil
	default:
		return false, errors.Wrapf(ErrIllFormedCondition, "unknown operator %q", c.Op)
	}
}

// Conditions is the AND of its comparisons. An empty list matches every row.
type Conditions []Comparison

func (cs Conditions) Match(t *table.Table, row *table.Row) (bool, error) {
	for _, c := range cs {
		ok, err := c.Match(t, row)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func matchAll(where Predicate, t *table.Table, row *table.Row) (bool, error) {
	if where == nil {
		return true, nil
	}
	return where.Match(t, row)
}
