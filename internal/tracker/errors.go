package tracker

import (
	"errors"
	"fmt"
)

// ErrUnrecorded reports that a node was never stamped with a creator.
// Not an error condition for callers: map it to the NoPhase sentinel.
var ErrUnrecorded = errors.New("node has no recorded creator")

// ErrStale reports that a recorded attribution cannot be trusted.
// Callers map it to the DeletedPhase sentinel and log it.
var ErrStale = errors.New("stale origin attribution")

// StaleError carries diagnostics for an untrustworthy attribution.
// Wraps ErrStale so callers can match with errors.Is.
type StaleError struct {
	// NodeID identifies the node whose attribution failed.
	NodeID uint64

	// Reason describes the inconsistency (deleted node, wrong metadata
	// type, node without metadata capability, ...).
	Reason string
}

// Error implements the error interface.
func (e *StaleError) Error() string {
	return fmt.Sprintf("%v: node %d: %s", ErrStale, e.NodeID, e.Reason)
}

// Unwrap links StaleError to the ErrStale sentinel.
func (e *StaleError) Unwrap() error {
	return ErrStale
}
