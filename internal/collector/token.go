package collector

import (
	"sync"

	"github.com/google/uuid"
)

// TokenGenerator generates event tokens for hosts that do not carry a
// stable compilation identifier of their own.
// Implemented by UUIDv7Generator (production) and FixedTokens (tests and
// replay).
type TokenGenerator interface {
	Generate() EventToken
}

// UUIDv7Generator generates time-sortable UUIDv7 event tokens.
//
// UUIDv7 embeds a timestamp in the most significant bits, so report
// artifacts named by token sort roughly by compilation start time.
//
// Thread-safety: stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 token as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() EventToken {
	return EventToken(uuid.Must(uuid.NewV7()).String())
}

// FixedTokens returns predetermined event tokens in order, for
// deterministic tests and scripted replays.
//
// Thread-safety: safe for concurrent use via internal mutex.
type FixedTokens struct {
	mu     sync.Mutex
	tokens []EventToken
	idx    int
}

// NewFixedTokens creates a generator that returns tokens in order.
// Generate panics once all tokens are consumed; fail-fast for callers
// that start more compilations than they declared.
func NewFixedTokens(tokens ...string) *FixedTokens {
	g := &FixedTokens{tokens: make([]EventToken, len(tokens))}
	for i, t := range tokens {
		g.tokens[i] = EventToken(t)
	}
	return g
}

// Generate implements TokenGenerator.
func (g *FixedTokens) Generate() EventToken {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idx >= len(g.tokens) {
		panic("FixedTokens: all tokens exhausted")
	}
	t := g.tokens[g.idx]
	g.idx++
	return t
}
