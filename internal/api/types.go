// Package api exposes the job polling surface: DTO shapes, a thin service
// over the job store, and the HTTP server the daemon mounts.
package api

import (
	"time"

	"meikan/internal/jobs"
)

// JobView is the API representation of a job snapshot.
type JobView struct {
	ID          string    `json:"job_id"`
	Status      string    `json:"status"`
	Progress    float64   `json:"progress"`
	Message     string    `json:"message,omitempty"`
	Dataset     string    `json:"dataset,omitempty"`
	Institution string    `json:"institution,omitempty"`
	OutputRef   string    `json:"output_ref,omitempty"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FromJob converts a stored job into its API view. Metadata that fails to
// decode is surfaced by the service layer before this point.
func FromJob(job *jobs.Job) JobView {
	view := JobView{
		ID:        job.ID,
		Status:    string(job.Status),
		Progress:  job.Progress,
		Message:   job.Message,
		OutputRef: job.OutputRef,
		Error:     job.ErrorMessage,
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.UpdatedAt,
	}
	if req, err := job.Metadata(); err == nil {
		view.Dataset = req.DatasetPath
		view.Institution = req.Institution
	}
	return view
}

// FromJobs converts a job list.
func FromJobs(list []*jobs.Job) []JobView {
	views := make([]JobView, len(list))
	for i, job := range list {
		views[i] = FromJob(job)
	}
	return views
}
