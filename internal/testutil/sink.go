package testutil

import (
	"fmt"
	"sync"
)

// CaptureSink records artifacts in memory, implementing report.Sink.
//
// Thread-safety: safe for concurrent use via internal mutex.
type CaptureSink struct {
	mu        sync.Mutex
	artifacts map[string][]byte
	fail      error
}

// NewCaptureSink creates an empty capturing sink.
func NewCaptureSink() *CaptureSink {
	return &CaptureSink{artifacts: make(map[string][]byte)}
}

// Write implements report.Sink. Enforces exactly-once per event: a second
// write for the same event fails, matching FileSink's O_EXCL behavior.
func (s *CaptureSink) Write(event string, artifact []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	if _, ok := s.artifacts[event]; ok {
		return fmt.Errorf("artifact for event %q already written", event)
	}
	cp := make([]byte, len(artifact))
	copy(cp, artifact)
	s.artifacts[event] = cp
	return nil
}

// Artifact returns the artifact captured for event, or false.
func (s *CaptureSink) Artifact(event string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.artifacts[event]
	return a, ok
}

// Len returns the number of captured artifacts.
func (s *CaptureSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.artifacts)
}

// FailWith makes all subsequent writes return err. Used to verify the
// collector's log-and-continue policy for sink failures.
func (s *CaptureSink) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}
