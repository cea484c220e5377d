package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ClaimNext atomically moves the oldest queued job to processing and
// returns it. Returns nil when no job is queued.
func (s *Store) ClaimNext(ctx context.Context) (*Job, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin claim tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var id string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM jobs WHERE status = ? ORDER BY created_at LIMIT 1`,
		StatusQueued,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find queued job: %w", err)
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := tx.ExecContext(ctx,
		`UPDATE jobs SET status = ?, message = ?, updated_at = ? WHERE id = ? AND status = ?`,
		StatusProcessing, "processing", timestamp, id, StatusQueued,
	); err != nil {
		return nil, fmt.Errorf("claim job: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit claim: %w", err)
	}
	return s.Get(ctx, id)
}

// UpdateProgress records progress for a processing job. Progress never
// decreases: a lower value than the persisted one is ignored. Terminal
// jobs are never touched.
func (s *Store) UpdateProgress(ctx context.Context, id string, progress float64, message string) error {
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE jobs
         SET progress = CASE WHEN ? > progress THEN ? ELSE progress END,
             message = ?, updated_at = ?
         WHERE id = ? AND status = ?`,
		progress, progress,
		message,
		time.Now().UTC().Format(time.RFC3339Nano),
		id, StatusProcessing,
	)
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	return nil
}

// MarkDone completes a processing job: progress 1.0 and a reference to the
// output artifact.
func (s *Store) MarkDone(ctx context.Context, id, outputRef, message string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, progress = 1, output_ref = ?, message = ?, updated_at = ?
         WHERE id = ? AND status = ?`,
		StatusDone, outputRef, message,
		time.Now().UTC().Format(time.RFC3339Nano),
		id, StatusProcessing,
	)
	if err != nil {
		return fmt.Errorf("mark job done: %w", err)
	}
	return nil
}

// MarkError fails a job with the triggering error detail. Progress keeps
// its last value so partial completion stays visible. Works from queued or
// processing; terminal states are never overwritten.
func (s *Store) MarkError(ctx context.Context, id, errorMessage string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, error_message = ?, message = ?, updated_at = ?
         WHERE id = ? AND status IN (?, ?)`,
		StatusError, errorMessage, "failed",
		time.Now().UTC().Format(time.RFC3339Nano),
		id, StatusQueued, StatusProcessing,
	)
	if err != nil {
		return fmt.Errorf("mark job error: %w", err)
	}
	return nil
}

// FailStaleProcessing fails jobs left in processing by a previous run, so
// no job is ever stuck in processing indefinitely. Called at daemon start.
func (s *Store) FailStaleProcessing(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, error_message = ?, updated_at = ? WHERE status = ?`,
		StatusError,
		"abandoned: daemon restarted while job was processing",
		time.Now().UTC().Format(time.RFC3339Nano),
		StatusProcessing,
	)
	if err != nil {
		return 0, fmt.Errorf("fail stale jobs: %w", err)
	}
	return res.RowsAffected()
}
