package report

import "errors"

// MultiSink fans one artifact out to several sinks.
//
// Write attempts every sink even after a failure and returns the joined
// errors, so a full database never suppresses the file artifact or vice
// versa.
type MultiSink []Sink

// Write implements Sink.
func (m MultiSink) Write(event string, artifact []byte) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(event, artifact); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
