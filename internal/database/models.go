package database

import (
	"time"
)

// Upload is one attempt to send a sample to the tracking service
type Upload struct {
	ID              string        `json:"id"`
	SampleID        string        `json:"sample_id"`
	SequencingRunID string        `json:"sequencing_run_id"`
	RunDirectory    string        `json:"run_directory"`
	Action          string        `json:"action"` // created, updated or empty when the lookup failed
	StatusCode      int           `json:"status_code"`
	OK              bool          `json:"ok"`
	Retryable       bool          `json:"retryable"`
	QC              string        `json:"qc"`
	Spike           string        `json:"spike"`
	Contaminants    int           `json:"contaminants"`
	Error           string        `json:"error"`
	DryRun          bool          `json:"dry_run"`
	Duration        time.Duration `json:"duration"`
	UploadedAt      time.Time     `json:"uploaded_at"`
}

// DatabaseInfo summarises the ledger
type DatabaseInfo struct {
	Path      string `json:"path"`
	Size      int64  `json:"size"`
	Uploads   int64  `json:"uploads"`
	Samples   int64  `json:"samples"`
	Succeeded int64  `json:"succeeded"`
}
