package models

import "time"

// ImportReport summarizes one import run.
type ImportReport struct {
	RunID             string    `json:"runId"`
	StartedAt         time.Time `json:"startedAt"`
	Imported          int       `json:"imported"`
	SkippedDuplicates int       `json:"skippedDuplicates"`
	SkippedWithinFile int       `json:"skippedWithinFile"`
	SkippedZeroAmount int       `json:"skippedZeroAmount"`
	APIDuplicates     int       `json:"apiDuplicates"`
	ExistingLoaded    int       `json:"existingLoaded"`
	Message           string    `json:"message,omitempty"`
}

// CategoryCount is one line of a category breakdown.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Import run statuses.
const (
	RunSucceeded = "succeeded"
	RunFailed    = "failed"
)

// ImportRun is the stored record of one import, successful or not.
type ImportRun struct {
	ImportReport
	Source      string    `json:"source"`
	ContentHash string    `json:"contentHash,omitempty"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	FinishedAt  time.Time `json:"finishedAt"`
}

// ImportJob is the queue message asking for an uploaded file to be imported.
type ImportJob struct {
	BlobName      string `json:"blob_name"`
	Filename      string `json:"filename,omitempty"`
	SignedRefunds bool   `json:"signed_refunds,omitempty"`
}
