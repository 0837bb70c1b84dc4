package model

import (
	"errors"
	"fmt"
)

var (
	// ErrBackendUnavailable means the input backend could not be acquired or
	// refused a synthetic input operation.
	ErrBackendUnavailable = errors.New("input backend unavailable")

	// ErrTraceNotFound means playback was requested without a recorded trace.
	ErrTraceNotFound = errors.New("trace not found")

	// ErrMalformedTrace means the trace header or a row failed to parse.
	ErrMalformedTrace = errors.New("malformed trace")

	// ErrIO means the trace could not be created or written.
	ErrIO = errors.New("trace i/o failure")

	// ErrSessionAlreadyActive rejects a start while another session runs.
	ErrSessionAlreadyActive = errors.New("session already active")
)

// TraceError describes where a trace failed to parse.
type TraceError struct {
	Path   string
	Line   int
	Reason string
}

func (e *TraceError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed trace %s line %d: %s", e.Path, e.Line, e.Reason)
	}
	return fmt.Sprintf("malformed trace %s: %s", e.Path, e.Reason)
}

func (e *TraceError) Unwrap() error {
	return ErrMalformedTrace
}
