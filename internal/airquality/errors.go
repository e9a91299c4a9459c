package airquality

import (
	"errors"
	"fmt"
)

// ErrorKind partitions adapter and conversion failures by how they
// propagate. Transport, protocol and schema failures are contained within a
// single source call; conversion failures degrade a single field; config
// failures abort the cycle.
type ErrorKind string

const (
	ErrKindTransport  ErrorKind = "transport"
	ErrKindProtocol   ErrorKind = "protocol"
	ErrKindSchema     ErrorKind = "schema"
	ErrKindConversion ErrorKind = "conversion"
	ErrKindConfig     ErrorKind = "config"
)

// SourceError wraps a failure with its kind and originating source.
type SourceError struct {
	Kind   ErrorKind
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Source, e.Kind, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// IsFatal reports whether the error should abort the collection cycle
// instead of degrading to zero measurements from one source.
func (e *SourceError) IsFatal() bool { return e.Kind == ErrKindConfig }

// ErrorKindOf extracts the kind from an error chain, defaulting to
// transport for plain errors (timeouts, connection failures).
func ErrorKindOf(err error) ErrorKind {
	var se *SourceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ErrKindTransport
}
