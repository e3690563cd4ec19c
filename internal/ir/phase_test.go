package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhaseIdentity_Equality(t *testing.T) {
	a := PhaseIdentity{Kind: "Inliner", Sequence: 3}
	b := PhaseIdentity{Kind: "Inliner", Sequence: 3}
	assert.Equal(t, a, b, "identities with equal fields must be equal")

	assert.NotEqual(t, a, PhaseIdentity{Kind: "Inliner", Sequence: 4},
		"same kind, different sequence is a different identity")
	assert.NotEqual(t, a, PhaseIdentity{Kind: "Canonicalizer", Sequence: 3},
		"same sequence, different kind is a different identity")
}

func TestPhaseIdentity_String(t *testing.T) {
	id := PhaseIdentity{Kind: "Inliner", Sequence: 7}
	assert.Equal(t, "Inliner#7", id.String())
}

func TestPhaseKind_IsSentinel(t *testing.T) {
	assert.True(t, NoPhase.IsSentinel())
	assert.True(t, DeletedPhase.IsSentinel())
	assert.False(t, PhaseKind("Inliner").IsSentinel())
}

func TestInfoKey_PointerIdentity(t *testing.T) {
	a := NewInfoKey("creator")
	b := NewInfoKey("creator")
	assert.NotSame(t, a, b, "keys with the same name are distinct keys")
	assert.Equal(t, "creator", a.String())
}
