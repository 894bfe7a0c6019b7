package models

import "time"

// RunStatus is the final state of one source run.
type RunStatus string

// Run statuses.
const (
	StatusSuccess        RunStatus = "success"
	StatusEmptyDiscovery RunStatus = "empty_discovery"
	StatusDownloadFailed RunStatus = "download_failed"
	StatusEmptyBatch     RunStatus = "empty_batch"
	StatusAborted        RunStatus = "aborted"
)

// RunReport summarizes one pipeline run for one source.
type RunReport struct {
	RunID       string    `json:"run_id"`
	Source      string    `json:"source"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Discovered  int       `json:"discovered"`
	Downloaded  int       `json:"downloaded"`
	Extracted   int       `json:"extracted"`
	Quarantined int       `json:"quarantined"`
	BatchPath   string    `json:"batch_path,omitempty"`
	BatchHash   string    `json:"batch_sha256,omitempty"`
	Status      RunStatus `json:"status"`
	Error       string    `json:"error,omitempty"`
}

// Duration returns how long the run took.
func (r RunReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Succeeded reports whether a batch was written.
func (r RunReport) Succeeded() bool {
	return r.Status == StatusSuccess
}
