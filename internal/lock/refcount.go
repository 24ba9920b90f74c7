package locking

import (
	"fmt"
	"sync/atomic"
)

// RefCount counts the holders of one admission slot: the query's Execute
// call plus every task it spawned. The slot is handed back by whichever
// holder releases last.
type RefCount struct {
	held atomic.Int32
}

// NewRefCount returns a count with a single holder, the caller.
func NewRefCount() *RefCount {
	r := &RefCount{}
	r.held.Store(1)
	return r
}

// Acquire adds a holder. It must be called by an existing holder, so the
// count can never climb back from zero.
func (r *RefCount) Acquire() {
	if r.held.Add(1) <= 1 {
		panic("locking: acquire on a released slot")
	}
}

// Release drops one holder and reports whether it was the last.
func (r *RefCount) Release() (last bool) {
	switch n := r.held.Add(-1); {
	case n < 0:
		panic("locking: slot released more times than acquired")
	case n == 0:
		return true
	default:
		return false
	}
}

func (r *RefCount) Held() int32 { return r.held.Load() }

func (r *RefCount) String() string {
	return fmt.Sprintf("holders=%d", r.Held())
}
