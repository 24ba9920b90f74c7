package query

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/tuannm99/novatable/internal/table"
)

const KindUpdate = "UPDATE"

// Update rewrites one field (or the key) of every row matching Where.
// Operands are [field, value].
type Update struct {
	Base
	Operands []string
	Where    Predicate

	tasks []*UpdateTask
}

var _ Query = (*Update)(nil)

func NewUpdate(target string, operands []string, where Predicate) *Update {
	return &Update{
		Base:     NewBase(KindUpdate, target, true),
		Operands: operands,
		Where:    where,
	}
}

func (q *Update) Execute(env Env) Result {
	if len(q.Operands) != 2 {
		return q.Fail(errors.Wrapf(ErrInvalidOperandCount, "%d operands", len(q.Operands)))
	}
	field, raw := q.Operands[0], q.Operands[1]

	set := updateSet{field: field, key: raw, index: -1}
	if field == table.KeyField {
		if err := table.ValidateKey(raw); err != nil {
			return q.Fail(err)
		}
	} else {
		idx, err := env.Table.FieldIndex(field)
		if err != nil {
			return q.Fail(err)
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return q.Fail(errors.Wrapf(ErrUnknown, "'%v'", err))
		}
		set.index, set.value = idx, v
	}

	for _, r := range chunks(env.Table.Len(), env.Chunk) {
		task := &UpdateTask{TaskBase: q.NewTask(env, r[0], r[1]), set: set, where: q.Where}
		q.tasks = append(q.tasks, task)
		if err := q.Spawn(env, task); err != nil {
			return q.Fail(errors.Wrap(ErrUnknown, err.Error()))
		}
	}
	return q.Pending()
}

func (q *Update) Combine() Result {
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
		Status:  StatusRecordCount,
		Count:   total,
		Partial: partial,
		Warning: warning,
	}
}

type updateSet struct {
	field string
	key   string
	index int
	value int
}

func (s updateSet) apply(row *table.Row) {
	if s.index < 0 {
		row.SetKey(s.key)
		return
	}
	row.Set(s.index, s.value)
}

// UpdateTask applies an update to its row range.
type UpdateTask struct {
	TaskBase
	set   updateSet
	where Predicate
}

// Execute stops at the first row whose condition fails to evaluate; rows
// updated before that stay updated and counted.
func (t *UpdateTask) Execute() {
	defer t.Finish()
	t.Err = t.Table.Range(t.Lo, t.Hi, func(_ int, row *table.Row) error {
		ok, err := matchAll(t.where, t.Table, row)
		if err != nil {
			return err
		}
		if ok {
			t.set.apply(row)
			t.Counter++
		}
		return nil
	})
}
