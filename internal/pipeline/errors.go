package pipeline

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a conversion failure or warning.
type ErrorKind string

const (
	KindSourceNotFound ErrorKind = "source_not_found"
	KindSourceRead     ErrorKind = "source_read"
	KindOutputWrite    ErrorKind = "output_write"
	KindTemplateLoad   ErrorKind = "template_load"
	KindRowParse       ErrorKind = "row_parse"
	KindTrackerIO      ErrorKind = "tracker_io"
)

// ConversionError is a structured pipeline error: the kind that failed,
// the state it failed in, and the underlying cause. Fatal kinds
// terminate the run; recoverable kinds become warnings instead.
type ConversionError struct {
	Kind    ErrorKind
	State   State
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ConversionError) Error() string {
	if e.State != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Kind, e.State, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error.
func (e *ConversionError) Unwrap() error {
	return e.Cause
}

// NewSourceNotFoundError reports a missing or unopenable source file.
func NewSourceNotFoundError(path string, cause error) *ConversionError {
	return &ConversionError{
		Kind:    KindSourceNotFound,
		State:   StateIdle,
		Message: fmt.Sprintf("source file not found: %s", path),
		Cause:   cause,
	}
}

// NewSourceReadError reports a source file that exists but could not
// be read, such as a broken header row.
func NewSourceReadError(path string, cause error) *ConversionError {
	return &ConversionError{
		Kind:    KindSourceRead,
		State:   StateReading,
		Message: fmt.Sprintf("failed to read source file: %s", path),
		Cause:   cause,
	}
}

// NewOutputWriteError reports a failure to produce the output file.
func NewOutputWriteError(path string, cause error) *ConversionError {
	return &ConversionError{
		Kind:    KindOutputWrite,
		State:   StateBuilding,
		Message: fmt.Sprintf("failed to write output: %s", path),
		Cause:   cause,
	}
}

// KindOf returns the error's kind, or the empty kind for non-pipeline
// errors.
func KindOf(err error) ErrorKind {
	var cerr *ConversionError
	if errors.As(err, &cerr) {
		return cerr.Kind
	}
	return ""
}

// Warning is a recoverable issue accumulated alongside a successful
// run: the row, template, or tracker problems that did not stop the
// conversion.
type Warning struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("[%s] %s", w.Kind, w.Message)
}
