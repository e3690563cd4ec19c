package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileSink writes one artifact file per compilation event into a
// directory, named depmat-<event>.txt.
//
// Exactly-once is enforced at the filesystem level: files are created
// with O_EXCL, so a second write for the same event fails instead of
// silently overwriting a finished report.
type FileSink struct {
	// Dir is the report directory. Created on first write if absent.
	Dir string
}

// Write implements Sink.
func (s *FileSink) Write(event string, artifact []byte) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	path := filepath.Join(s.Dir, ArtifactFileName(event))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create report artifact: %w", err)
	}

	if _, err := f.Write(artifact); err != nil {
		f.Close()
		return fmt.Errorf("write report artifact %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close report artifact %s: %w", path, err)
	}
	return nil
}

// ArtifactFileName maps an event token to its artifact file name.
func ArtifactFileName(event string) string {
	return "depmat-" + sanitizeEvent(event) + ".txt"
}

// EventFromFileName recovers the sanitized event token from an artifact
// file name, or false if the name does not follow the naming scheme.
func EventFromFileName(name string) (string, bool) {
	rest, ok := strings.CutPrefix(name, "depmat-")
	if !ok {
		return "", false
	}
	event, ok := strings.CutSuffix(rest, ".txt")
	if !ok || event == "" {
		return "", false
	}
	return event, true
}

// sanitizeEvent makes an event token safe to embed in a file name.
// Tokens are host-provided and may contain method signatures.
func sanitizeEvent(event string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, event)
}
