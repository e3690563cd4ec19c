package matrix

import "sync/atomic"

// PhaseOrder assigns each phase invocation of one compilation a sequence
// number. It is explicit per-compilation state owned by the event scope,
// never ambient thread-local storage: compilation work must not be bound
// to whichever thread happens to run it.
//
// Thread-safety: safe for concurrent use (atomic operations). Sequence
// numbers are unique within one compilation only; concurrently running
// compilations each own their own PhaseOrder.
type PhaseOrder struct {
	next atomic.Int64
}

// NextSequence allocates the next sequence number, starting at 0 after
// construction or Reset. Every value returned is strictly greater than
// any value returned since the last Reset.
func (o *PhaseOrder) NextSequence() int {
	return int(o.next.Add(1) - 1)
}

// Current returns the most recently allocated sequence number, or 0 if
// none has been allocated yet.
func (o *PhaseOrder) Current() int {
	n := o.next.Load()
	if n == 0 {
		return 0
	}
	return int(n - 1)
}

// Reset restarts the sequence at 0. Called once per compilation start.
// Idempotent when no phase has run since the previous Reset.
func (o *PhaseOrder) Reset() {
	o.next.Store(0)
}
