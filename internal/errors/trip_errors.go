package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// IngestError is fatal: the input directory had no trip files or a file
// could not be read against the trip schema.
type IngestError struct {
	Path    string
	Line    int
	Message string
	Missing []string
	Cause   error
}

// Error implements the error interface
func (e *IngestError) Error() string {
	var b strings.Builder
	b.WriteString("ingest: ")
	b.WriteString(e.Message)
	if e.Path != "" {
		fmt.Fprintf(&b, " (file %s", e.Path)
		if e.Line > 0 {
			fmt.Fprintf(&b, ", line %d", e.Line)
		}
		b.WriteString(")")
	}
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, ": missing columns [%s]", strings.Join(e.Missing, ", "))
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap returns the underlying error
func (e *IngestError) Unwrap() error {
	return e.Cause
}

// NewIngestError creates an ingest error for the given file. path may be
// empty when the failure concerns the whole input directory.
func NewIngestError(path, message string, cause error) *IngestError {
	return &IngestError{Path: path, Message: message, Cause: cause}
}

// NewSchemaMismatchError reports a header lacking required columns.
func NewSchemaMismatchError(path string, missing []string) *IngestError {
	return &IngestError{
		Path:    path,
		Line:    1,
		Message: "header does not match trip schema",
		Missing: missing,
	}
}

// MalformedTimestampError marks one record whose timestamp could not be
// parsed. It is recoverable: the record is dropped and the run continues.
type MalformedTimestampError struct {
	RideID string
	Field  string
	Value  string
	Cause  error
}

// Error implements the error interface
func (e *MalformedTimestampError) Error() string {
	return fmt.Sprintf("malformed timestamp in %s for ride %q: %q", e.Field, e.RideID, e.Value)
}

// Unwrap returns the underlying error
func (e *MalformedTimestampError) Unwrap() error {
	return e.Cause
}

// IsIngestError reports whether err wraps an IngestError.
func IsIngestError(err error) bool {
	var target *IngestError
	return stderrors.As(err, &target)
}

// IsMalformedTimestamp reports whether err wraps a MalformedTimestampError.
func IsMalformedTimestamp(err error) bool {
	var target *MalformedTimestampError
	return stderrors.As(err, &target)
}
