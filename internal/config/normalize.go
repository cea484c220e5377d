package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeRegistry(); err != nil {
		return err
	}
	if err := c.normalizeVerifyCache(); err != nil {
		return err
	}
	c.normalizeWorkers()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeRegistry() error {
	c.Registry.BaseURL = strings.TrimRight(strings.TrimSpace(c.Registry.BaseURL), "/")
	if c.Registry.Username == "" {
		if value, ok := os.LookupEnv("MEIKAN_REGISTRY_USERNAME"); ok {
			c.Registry.Username = strings.TrimSpace(value)
		}
	}
	if c.Registry.Password == "" {
		if value, ok := os.LookupEnv("MEIKAN_REGISTRY_PASSWORD"); ok {
			c.Registry.Password = value
		}
	}
	if c.Registry.RequestTimeout <= 0 {
		c.Registry.RequestTimeout = defaultRegistryTimeout
	}
	if c.Registry.RequestsPerMinute <= 0 {
		c.Registry.RequestsPerMinute = defaultRequestsPerMinute
	}
	return nil
}

func (c *Config) normalizeVerifyCache() error {
	if strings.TrimSpace(c.VerifyCache.Path) == "" {
		c.VerifyCache.Path = defaultVerifyCachePath
	}
	var err error
	if c.VerifyCache.Path, err = expandPath(c.VerifyCache.Path); err != nil {
		return fmt.Errorf("verify_cache.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeWorkers() {
	if c.Reconcile.MaxWorkers <= 0 {
		c.Reconcile.MaxWorkers = defaultMaxWorkers
	}
	if c.Reconcile.WorkerHardCap <= 0 {
		c.Reconcile.WorkerHardCap = defaultWorkerHardCap
	}
	if c.Workflow.JobPollInterval <= 0 {
		c.Workflow.JobPollInterval = defaultJobPollInterval
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
