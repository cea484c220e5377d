package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateReconcile(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateMatching() error {
	if c.Matching.CandidateThreshold <= 0 || c.Matching.CandidateThreshold > 1 {
		return errors.New("matching.candidate_threshold must be in (0, 1]")
	}
	if c.Matching.ExactThreshold <= 0 || c.Matching.ExactThreshold > 1 {
		return errors.New("matching.exact_threshold must be in (0, 1]")
	}
	if c.Matching.CandidateThreshold > c.Matching.ExactThreshold {
		return errors.New("matching.candidate_threshold must not exceed matching.exact_threshold")
	}
	return nil
}

func (c *Config) validateReconcile() error {
	if c.Reconcile.MaxWorkers > c.Reconcile.WorkerHardCap {
		return fmt.Errorf("reconcile.max_workers (%d) must not exceed reconcile.worker_hard_cap (%d)",
			c.Reconcile.MaxWorkers, c.Reconcile.WorkerHardCap)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
