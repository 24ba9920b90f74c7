package query

import "fmt"

// Status tells which payload a Result carries.
type Status uint8

const (
	StatusError Status = iota
	StatusPending
	StatusSuccess
	StatusRecordCount
	StatusAnswer
)

func (s Status) String() string {
	switch s {
	case StatusError:
		return "error"
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusRecordCount:
		return "record-count"
	case StatusAnswer:
		return "answer"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// Result is the outcome of a query. It is a plain value and never changes
// once returned.
type Result struct {
	Kind   string
	Table  string
	Status Status

	// Count is the record count or the answer, depending on Status.
	Count int
	Err   error

	// Partial is set when a task stopped early on a row error; Count then
	// only covers the rows processed before the error.
	Partial bool
	Warning string
}

func (r Result) OK() bool { return r.Status != StatusError }

func (r Result) String() string {
	switch r.Status {
	case StatusError:
		return fmt.Sprintf("QUERY FAILED: %s on table %q: %v", r.Kind, r.Table, r.Err)
	case StatusPending:
		return "Pending."
	case StatusSuccess:
		return "Success."
	case StatusRecordCount:
		if r.Partial {
			return fmt.Sprintf("Affected %d rows (partial: %s).", r.Count, r.Warning)
		}
		return fmt.Sprintf("Affected %d rows.", r.Count)
	case StatusAnswer:
		if r.Partial {
			return fmt.Sprintf("ANSWER = %d (partial: %s)", r.Count, r.Warning)
		}
		return fmt.Sprintf("ANSWER = %d", r.Count)
	default:
		return r.Status.String()
	}
}
