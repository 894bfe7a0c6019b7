// Package models defines data structures shared by the pipeline stages.
package models

// CandidateDocument is a discovered, not yet downloaded, source document.
type CandidateDocument struct {
	Title   string `json:"title"`
	Locator string `json:"locator"`
}

// StagedFile is a downloaded raw document awaiting extraction.
type StagedFile struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Locator string `json:"locator"`
}
