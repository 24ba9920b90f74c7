package locking

import "fmt"

// Mode is the admission mode of a table.
type Mode uint8

const (
	Idle Mode = iota
	Reading
	Writing
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Reading:
		return "reading"
	case Writing:
		return "writing"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// Action tells the scheduler what to do with an incoming operation.
type Action uint8

const (
	Run Action = iota
	Enqueue
)

func (a Action) String() string {
	if a == Run {
		return "run"
	}
	return "enqueue"
}

// State is the reader/writer admission state of one table.
// Readers is only meaningful in Reading mode and is always > 0 there.
//
// The transitions are pure so they can be tested without any locking.
type State struct {
	Mode    Mode
	Readers int
}

// Counter folds the state into a single integer: n admitted readers, 0 when
// idle, -1 while a writer is admitted.
func (s State) Counter() int {
	switch s.Mode {
	case Reading:
		return s.Readers
	case Writing:
		return -1
	default:
		return 0
	}
}

func (s State) String() string {
	if s.Mode == Reading {
		return fmt.Sprintf("reading(%d)", s.Readers)
	}
	return s.Mode.String()
}

// Admit decides whether an incoming operation starts now.
//
// An active writer queues everything. A writer otherwise starts only on an
// idle table. A reader starts whenever no writer is active, even with writers
// queued, so a steady stream of readers can starve a queued writer.
func (s State) Admit(writer bool) (State, Action) {
	if s.Mode == Writing {
		return s, Enqueue
	}
	if writer {
		if s.Mode == Idle {
			return State{Mode: Writing}, Run
		}
		return s, Enqueue
	}
	return State{Mode: Reading, Readers: s.Readers + 1}, Run
}

// Release ends one admitted operation and picks what to start from the head
// of the pending queue. pending[i] is true when the i-th queued operation is
// a writer. It returns the next state and how many operations to pop and
// start from the head of the queue.
//
// Readers started from the queue are counted as admitted readers, so each of
// them must release in turn before a writer can get in.
func (s State) Release(pending []bool) (State, int) {
	switch s.Mode {
	case Reading:
		s.Readers--
		if s.Readers <= 0 {
			s = State{}
		}
	default:
		s = State{}
	}

	if s.Mode == Idle && len(pending) > 0 && pending[0] {
		return State{Mode: Writing}, 1
	}

	n := 0
	for n < len(pending) && !pending[n] {
		n++
	}
	if n > 0 {
		s = State{Mode: Reading, Readers: s.Readers + n}
	}
	return s, n
}
