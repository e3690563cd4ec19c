package ir

// InfoKey is an opaque tag for per-node metadata. Keys are compared by
// pointer identity, like context keys: two keys with the same name are
// still distinct keys.
type InfoKey struct {
	name string
}

// NewInfoKey creates a metadata key. The name is used in logs only.
func NewInfoKey(name string) *InfoKey {
	return &InfoKey{name: name}
}

// String returns the key's diagnostic name.
func (k *InfoKey) String() string {
	return k.name
}

// InfoNode is a Node whose host representation supports attaching
// arbitrary key-value metadata.
//
// Cost contract: both operations are O(k) in the number of distinct
// metadata keys attached to the node. phaseflow attaches at most one key
// per node; the embedded-property tracker strategy must not be selected
// when many independent instrumentation systems compete for the same
// per-node slot.
type InfoNode interface {
	Node

	// SetInfo associates value with key, replacing any prior value.
	SetInfo(key *InfoKey, value any)

	// Info returns the value associated with key, or false if absent.
	Info(key *InfoKey) (any, bool)
}
