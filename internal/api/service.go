package api

import (
	"context"
	"errors"
	"fmt"

	"meikan/internal/jobs"
)

// ErrNotFound marks a lookup for a job that does not exist.
var ErrNotFound = errors.New("job not found")

// ErrBadFilter marks an unrecognized status filter value.
var ErrBadFilter = errors.New("unknown status filter")

// ErrBadRequest marks an invalid submission payload.
var ErrBadRequest = errors.New("invalid job request")

// Store is the slice of the job store the API needs.
type Store interface {
	Create(ctx context.Context, req jobs.Request) (*jobs.Job, error)
	Get(ctx context.Context, id string) (*jobs.Job, error)
	List(ctx context.Context, statuses ...jobs.Status) ([]*jobs.Job, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// JobService answers polling queries against the job store.
type JobService struct {
	store Store
}

// NewJobService wraps a store.
func NewJobService(store Store) *JobService {
	return &JobService{store: store}
}

// Submit enqueues a reconciliation job.
func (s *JobService) Submit(ctx context.Context, req jobs.Request) (JobView, error) {
	if req.DatasetPath == "" {
		return JobView{}, fmt.Errorf("%w: dataset_path is required", ErrBadRequest)
	}
	if req.Institution == "" {
		return JobView{}, fmt.Errorf("%w: institution is required", ErrBadRequest)
	}
	job, err := s.store.Create(ctx, req)
	if err != nil {
		return JobView{}, fmt.Errorf("create job: %w", err)
	}
	return FromJob(job), nil
}

// Job returns a single job view. Returns ErrNotFound when the id is unknown.
func (s *JobService) Job(ctx context.Context, id string) (JobView, error) {
	job, err := s.store.Get(ctx, id)
	if err != nil {
		return JobView{}, fmt.Errorf("load job %s: %w", id, err)
	}
	if job == nil {
		return JobView{}, ErrNotFound
	}
	return FromJob(job), nil
}

// Jobs lists jobs, optionally filtered by status. An empty status lists all.
func (s *JobService) Jobs(ctx context.Context, status string) ([]JobView, error) {
	var filters []jobs.Status
	if status != "" {
		filter := jobs.Status(status)
		if !filter.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrBadFilter, status)
		}
		filters = append(filters, filter)
	}
	list, err := s.store.List(ctx, filters...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return FromJobs(list), nil
}

// Remove deletes a job record. Returns ErrNotFound when the id is unknown.
func (s *JobService) Remove(ctx context.Context, id string) error {
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete job %s: %w", id, err)
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}
