package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"meikan/internal/reconcile"
	"meikan/internal/registry"
	"meikan/internal/roster"
	"meikan/internal/similarity"
	"meikan/internal/verifycache"
)

// ClientFactory builds a registry client for one run. Sessions are not
// shared between jobs.
type ClientFactory func() (registry.Client, error)

// ReconcileExecutor executes jobs by running the reconciliation scheduler
// over the job's dataset. One scheduler (and so one set of per-run team
// and roster caches) is created per job; the persistent verification
// cache is shared across jobs.
type ReconcileExecutor struct {
	newClient ClientFactory
	verify    *verifycache.Cache
	policy    similarity.Policy
	workers   int
	hardCap   int
	outputDir string
	logger    *slog.Logger
}

// NewReconcileExecutor creates the production executor.
func NewReconcileExecutor(newClient ClientFactory, verify *verifycache.Cache, policy similarity.Policy, workers, hardCap int, outputDir string, logger *slog.Logger) *ReconcileExecutor {
	return &ReconcileExecutor{
		newClient: newClient,
		verify:    verify,
		policy:    policy,
		workers:   workers,
		hardCap:   hardCap,
		outputDir: outputDir,
		logger:    logger,
	}
}

// Execute runs one reconciliation job and writes its artifacts: a results
// JSON file and a corrected copy of the dataset.
func (e *ReconcileExecutor) Execute(ctx context.Context, job *Job, progress func(done, total int)) (string, string, error) {
	req, err := job.Metadata()
	if err != nil {
		return "", "", err
	}

	dataset, err := roster.Load(req.DatasetPath)
	if err != nil {
		return "", "", err
	}
	institution := roster.NewInstitution(req.Institution)

	client, err := e.newClient()
	if err != nil {
		return "", "", fmt.Errorf("create registry client: %w", err)
	}

	scheduler := reconcile.New(client, e.verify, reconcile.Options{
		MaxWorkers:    e.workers,
		WorkerHardCap: e.hardCap,
		Policy:        e.policy,
		Progress:      progress,
	}, e.logger)

	run, err := scheduler.Run(ctx, dataset, institution)
	if err != nil {
		return "", "", err
	}

	outputRef, err := e.writeArtifacts(job.ID, run)
	if err != nil {
		return "", "", err
	}

	message := fmt.Sprintf("%d rows: %d match, %d partial, %d not found, %d missing, %d error",
		len(run.Results),
		run.Summary[reconcile.StatusMatch],
		run.Summary[reconcile.StatusPartialMatch],
		run.Summary[reconcile.StatusNotFound],
		run.Summary[reconcile.StatusMissingData],
		run.Summary[reconcile.StatusError])
	return outputRef, message, nil
}

func (e *ReconcileExecutor) writeArtifacts(jobID string, run *reconcile.RunResult) (string, error) {
	dir := filepath.Join(e.outputDir, jobID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	resultsPath := filepath.Join(dir, "results.json")
	data, err := json.MarshalIndent(run.Results, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal results: %w", err)
	}
	if err := os.WriteFile(resultsPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write results: %w", err)
	}

	correctedPath := filepath.Join(dir, "corrected.csv")
	if err := run.Corrected.WriteCSV(correctedPath); err != nil {
		return "", err
	}
	return dir, nil
}
