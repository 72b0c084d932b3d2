package model

// BatchStatus is the lifecycle state of an asynchronous bulk job as seen
// by this system. Provider-specific intermediate states are mapped onto
// pending/running at the adapter boundary.
type BatchStatus string

const (
	BatchStatusPending   BatchStatus = "pending"
	BatchStatusRunning   BatchStatus = "running"
	BatchStatusCompleted BatchStatus = "completed"
	BatchStatusFailed    BatchStatus = "failed"
	BatchStatusExpired   BatchStatus = "expired"
	BatchStatusCancelled BatchStatus = "cancelled"
)

// Terminal reports whether the status ends the poll loop.
func (s BatchStatus) Terminal() bool {
	switch s {
	case BatchStatusCompleted, BatchStatusFailed, BatchStatusExpired, BatchStatusCancelled:
		return true
	}
	return false
}

// BatchRequestCounts is the provider's per-category progress report.
type BatchRequestCounts struct {
	Completed int
	Failed    int
	Total     int
}

// BatchJob represents one bulk submission to the provider. Jobs are
// created when contact volume crosses the batch threshold, abandoned once
// results are retrieved and reconciled, and never reused across runs.
type BatchJob struct {
	ID           string
	Status       BatchStatus
	InputFileID  string
	OutputFileID string
	ErrorFileID  string
	Counts       BatchRequestCounts

	// Error holds provider detail for a non-completed terminal status.
	Error string
}
