package main

import (
	"log/slog"
	"path/filepath"
	"time"

	"meikan/internal/config"
	"meikan/internal/jobs"
	"meikan/internal/logging"
	"meikan/internal/registry"
	"meikan/internal/registry/webreg"
	"meikan/internal/similarity"
	"meikan/internal/verifycache"
)

func loggerOptions(cfg *config.Config) logging.Options {
	return logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stderr", filepath.Join(cfg.Paths.LogDir, "meikand.log")},
	}
}

func buildRunner(cfg *config.Config, store *jobs.Store, logger *slog.Logger) *jobs.Runner {
	newClient := func() (registry.Client, error) {
		return webreg.New(
			cfg.Registry.BaseURL,
			cfg.Registry.Username,
			cfg.Registry.Password,
			time.Duration(cfg.Registry.RequestTimeout)*time.Second,
			cfg.Registry.RequestsPerMinute,
			logger,
		)
	}

	var verify *verifycache.Cache
	if cfg.VerifyCache.Enabled {
		verify = verifycache.NewCache(cfg.VerifyCache.Path, cfg.VerifyCache.StoreNotFound, logger)
	}

	executor := jobs.NewReconcileExecutor(
		newClient,
		verify,
		similarity.Policy{
			ExactThreshold:     cfg.Matching.ExactThreshold,
			CandidateThreshold: cfg.Matching.CandidateThreshold,
		},
		cfg.Reconcile.MaxWorkers,
		cfg.Reconcile.WorkerHardCap,
		filepath.Join(cfg.Paths.DataDir, "results"),
		logger,
	)

	interval := time.Duration(cfg.Workflow.JobPollInterval) * time.Second
	return jobs.NewRunner(store, executor, interval, logger)
}
