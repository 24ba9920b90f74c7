package query

import (
	"github.com/pkg/errors"

	"github.com/tuannm99/novatable/internal/table"
)

const KindCount = "COUNT"

// Count counts the rows matching Where. It takes no operands.
type Count struct {
	Base
	Operands []string
	Where    Predicate

	tasks []*CountTask
}

var _ Query = (*Count)(nil)

func NewCount(target string, operands []string, where Predicate) *Count {
	return &Count{
		Base:     NewBase(KindCount, target, false),
		Operands: operands,
		Where:    where,
	}
}

func (q *Count) Execute(env Env) Result {
	if len(q.Operands) != 0 {
		return q.Fail(errors.Wrapf(ErrInvalidOperandCount, "%d operands", len(q.Operands)))
	}
	for _, r := range chunks(env.Table.Len(), env.Chunk) {
		task := &CountTask{TaskBase: q.NewTask(env, r[0], r[1]), where: q.Where}
		q.tasks = append(q.tasks, task)
		if err := q.Spawn(env, task); err != nil {
			return q.Fail(errors.Wrap(ErrUnknown, err.Error()))
		}
	}
	return q.Pending()
}

func (q *Count) Combine() Result {
	if !q.Completed() {
		return q.Fail(ErrNotCompleted)
	}
	if res, failed := q.Failure(); failed {
		return res
	}

	bases := make([]*TaskBase, len(q.tasks))
	total := 0
	for i, t := range q.tasks {
		total += t.Counter
		bases[i] = &t.TaskBase
	}
	partial, warning := partialOf(bases)
	return Result{
		Kind:    q.Kind(),
		Table:   q.Target(),
		Status:  StatusAnswer,
		Count:   total,
		Partial: partial,
		Warning: warning,
	}
}

type CountTask struct {
	TaskBase
	where Predicate
}

func (t *CountTask) Execute() {
	defer t.Finish()
	t.Err = t.Table.Range(t.Lo, t.Hi, func(_ int, row *table.Row) error {
		ok, err := matchAll(t.where, t.Table, row)
		if err != nil {
			return err
		}
		if ok {
			t.Counter++
		}
		return nil
	})
}
