package domain

import (
	"fmt"
)

// DiagnosticKind identifies the kind of a Diagnostic event.
type DiagnosticKind string

const (
	// DiagnosticStorageError is emitted when the content store fails to place a file.
	DiagnosticStorageError DiagnosticKind = "storage_error"
	// DiagnosticRetry is emitted before a failed attempt is retried.
	DiagnosticRetry DiagnosticKind = "retry"
	// DiagnosticSessionInvalidated is emitted when a job cancels its in-flight fetches.
	DiagnosticSessionInvalidated DiagnosticKind = "session_invalidated"
)

// Diagnostic is a non-fatal event raised while a job runs.
type Diagnostic struct {
	JobID   string
	URL     string
	Kind    DiagnosticKind
	Attempt int
	Err     error
}

// String returns a single-line description of the event.
func (d Diagnostic) String() string {
	s := fmt.Sprintf("job=%s kind=%s", d.JobID, d.Kind)
	if d.URL != "" {
		s += " url=" + d.URL
	}
	if d.Attempt > 0 {
		s += fmt.Sprintf(" attempt=%d", d.Attempt)
	}
	if d.Err != nil {
		s += " error=" + d.Err.Error()
	}
	return s
}
