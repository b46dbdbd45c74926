package domain

// JobStatus represents the lifecycle state of a download job.
type JobStatus string

const (
	// JobStatusPending indicates the job waits for a slot on the dispatcher.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job's downloads are being scheduled.
	JobStatusRunning JobStatus = "running"
	// JobStatusPaused indicates the job stopped starting new work.
	JobStatusPaused JobStatus = "paused"
	// JobStatusCompleted indicates every download finished and the callback fired.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusCancelled indicates the job was cancelled and the callback fired.
	JobStatusCancelled JobStatus = "cancelled"
)

// IsTerminal checks if a status is a terminal state (Completed, Cancelled).
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusCancelled:
		return true
	default:
		return false
	}
}
