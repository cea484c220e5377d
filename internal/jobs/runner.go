package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"meikan/internal/logging"
)

// Executor performs the work of one claimed job. Implementations report
// progress through the callback and return a reference to the produced
// output artifact.
type Executor interface {
	Execute(ctx context.Context, job *Job, progress func(done, total int)) (outputRef, message string, err error)
}

// Runner polls the store for queued jobs and executes them one at a time.
// Every failure path lands the job in a terminal state: a job is never
// left in processing.
type Runner struct {
	store    *Store
	executor Executor
	interval time.Duration
	logger   *slog.Logger
}

// NewRunner creates a job runner.
func NewRunner(store *Store, executor Executor, interval time.Duration, logger *slog.Logger) *Runner {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Runner{
		store:    store,
		executor: executor,
		interval: interval,
		logger:   logging.NewComponentLogger(logger, "jobs"),
	}
}

// Run polls until the context is cancelled. Jobs abandoned in processing
// by a previous process are failed before polling starts.
func (r *Runner) Run(ctx context.Context) error {
	if stale, err := r.store.FailStaleProcessing(ctx); err != nil {
		return fmt.Errorf("fail stale jobs: %w", err)
	} else if stale > 0 {
		r.logger.Warn("failed stale processing jobs",
			logging.String(logging.FieldEventType, "jobs_stale_failed"),
			logging.Int64("count", stale),
			logging.String(logging.FieldImpact, "interrupted jobs must be resubmitted"))
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		if err := r.RunOnce(ctx); err != nil {
			r.logger.Error("job poll failed", logging.Error(err))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce claims and executes at most one queued job.
func (r *Runner) RunOnce(ctx context.Context) error {
	job, err := r.store.ClaimNext(ctx)
	if err != nil {
		return err
	}
	if job == nil {
		return nil
	}
	r.execute(ctx, job)
	return nil
}

func (r *Runner) execute(ctx context.Context, job *Job) {
	logger := r.logger.With(logging.String(logging.FieldJobID, job.ID))
	logger.Info("job started")
	started := time.Now()

	// A panicking executor must still land the job in a terminal state.
	defer func() {
		if recovered := recover(); recovered != nil {
			logger.Error("job panicked", logging.Any("panic", recovered))
			_ = r.store.MarkError(context.WithoutCancel(ctx), job.ID, fmt.Sprintf("internal error: %v", recovered))
		}
	}()

	// Progress writes are throttled to roughly one per 5% of rows so write
	// volume stays bounded regardless of dataset size.
	lastReported := 0
	progress := func(done, total int) {
		if total <= 0 {
			return
		}
		step := total / 20
		if step < 1 {
			step = 1
		}
		if done != total && done-lastReported < step {
			return
		}
		lastReported = done
		message := fmt.Sprintf("verified %d of %d rows", done, total)
		if err := r.store.UpdateProgress(ctx, job.ID, float64(done)/float64(total), message); err != nil {
			logger.Warn("progress update failed", logging.Error(err))
		}
	}

	outputRef, message, err := r.executor.Execute(ctx, job, progress)
	if err != nil {
		logger.Error("job failed", logging.Error(err), logging.Duration("elapsed", time.Since(started)))
		_ = r.store.MarkError(context.WithoutCancel(ctx), job.ID, err.Error())
		return
	}

	if err := r.store.MarkDone(ctx, job.ID, outputRef, message); err != nil {
		logger.Error("job completion not recorded", logging.Error(err))
		return
	}
	logger.Info("job completed",
		logging.String("output", outputRef),
		logging.Duration("elapsed", time.Since(started)))
}
