package matrix

import (
	"sync"

	"github.com/phaseflow/phaseflow/internal/ir"
)

// phaseSet is an insertion-ordered, deduplicated set of phase kinds: the
// row/column index of a matrix. The order is first-seen order and is used
// only for stable, human-readable report ordering - callers must not
// assume it reflects execution order.
//
// The sentinels NoPhase and DeletedPhase are seeded at construction so
// they always appear first, even for trivial or empty compilations.
type phaseSet struct {
	mu    sync.Mutex
	seen  map[ir.PhaseKind]struct{}
	order []ir.PhaseKind
}

func newPhaseSet() *phaseSet {
	s := &phaseSet{
		seen: make(map[ir.PhaseKind]struct{}, 64),
	}
	s.Add(ir.NoPhase)
	s.Add(ir.DeletedPhase)
	return s
}

// Add inserts k if absent. Safe for concurrent use.
func (s *phaseSet) Add(k ir.PhaseKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[k]; ok {
		return
	}
	s.seen[k] = struct{}{}
	s.order = append(s.order, k)
}

// Kinds returns the kinds in insertion order. The returned slice is a
// copy and safe to retain.
func (s *phaseSet) Kinds() []ir.PhaseKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ir.PhaseKind, len(s.order))
	copy(out, s.order)
	return out
}
