package query

import (
	"os"

	"github.com/pkg/errors"

	"github.com/tuannm99/novatable/internal/table"
)

const KindDump = "DUMP"

// Dump writes its table to the file named by its single operand.
type Dump struct {
	Base
	Operands []string

	task *DumpTask
}

var _ Query = (*Dump)(nil)

func NewDump(target string, operands []string) *Dump {
	return &Dump{
		Base:     NewBase(KindDump, target, false),
		Operands: operands,
	}
}

func (q *Dump) Execute(env Env) Result {
	if len(q.Operands) != 1 {
		return q.Fail(errors.Wrapf(ErrInvalidOperandCount, "%d operands", len(q.Operands)))
	}
	q.task = &DumpTask{TaskBase: q.NewTask(env, 0, env.Table.Len()), path: q.Operands[0]}
	if err := q.Spawn(env, q.task); err != nil {
		return q.Fail(errors.Wrap(ErrUnknown, err.Error()))
	}
	return q.Pending()
}

func (q *Dump) Combine() Result {
	if !q.Completed() {
		return q.Fail(ErrNotCompleted)
	}
	if res, failed := q.Failure(); failed {
		return res
	}
	if q.task.Err != nil {
		return q.Fail(q.task.Err)
	}
	return Result{Kind: q.Kind(), Table: q.Target(), Status: StatusSuccess}
}

type DumpTask struct {
	TaskBase
	path string
}

func (t *DumpTask) Execute() {
	defer t.Finish()

	f, err := os.Create(t.path)
	if err != nil {
		t.Err = errors.Wrap(err, "create dump file")
		return
	}
	if err := table.Dump(f, t.Table); err != nil {
		_ = f.Close()
		t.Err = errors.Wrap(err, "write dump")
		return
	}
	if err := f.Close(); err != nil {
		t.Err = errors.Wrap(err, "close dump file")
	}
}
