// Package jobs wraps reconciliation runs in polled, persisted jobs backed
// by SQLite. A job moves queued → processing → done or error; transitions
// are one-directional, progress never decreases, and terminal states are
// never overwritten.
package jobs

import (
	"encoding/json"
	"fmt"
	"time"
)

// Status represents the lifecycle of a job.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusDone       Status = "done"
	StatusError      Status = "error"
)

var allStatuses = []Status{StatusQueued, StatusProcessing, StatusDone, StatusError}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// Valid reports whether the status is a known lifecycle state.
func (s Status) Valid() bool {
	_, ok := statusSet[s]
	return ok
}

// Terminal reports whether the status ends the job's lifecycle.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusError
}

// Request describes the work a job performs: which roster file to verify
// against which institution. Stored as the job's metadata.
type Request struct {
	DatasetPath string `json:"dataset_path"`
	Institution string `json:"institution"`
}

// Job is one persisted reconciliation job.
type Job struct {
	ID           string
	Status       Status
	Progress     float64
	Message      string
	MetadataJSON string
	OutputRef    string
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Metadata decodes the job's request metadata.
func (j *Job) Metadata() (Request, error) {
	var req Request
	if j.MetadataJSON == "" {
		return req, nil
	}
	if err := json.Unmarshal([]byte(j.MetadataJSON), &req); err != nil {
		return req, fmt.Errorf("decode job metadata: %w", err)
	}
	return req, nil
}
