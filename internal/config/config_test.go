package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"meikan/internal/config"
)

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Matching.ExactThreshold != 1.0 || cfg.Matching.CandidateThreshold != 0.6 {
		t.Errorf("default thresholds = %v/%v", cfg.Matching.ExactThreshold, cfg.Matching.CandidateThreshold)
	}
	if !cfg.VerifyCache.StoreNotFound {
		t.Error("store_not_found should default to true")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Error("exists = true for a missing file")
	}
	if resolved != path {
		t.Errorf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.Reconcile.MaxWorkers != 10 {
		t.Errorf("max workers = %d, want default 10", cfg.Reconcile.MaxWorkers)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := `
[paths]
data_dir = "` + filepath.Join(dir, "data") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"
cache_dir = "` + filepath.Join(dir, "cache") + `"

[registry]
base_url = "https://reg.example/"
username = "club-admin"
password = "seaside"
requests_per_minute = 30

[matching]
exact_threshold = 0.95
candidate_threshold = 0.7

[reconcile]
max_workers = 4
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("exists = false for an existing file")
	}
	if cfg.Registry.BaseURL != "https://reg.example" {
		t.Errorf("base url = %q, want trailing slash trimmed", cfg.Registry.BaseURL)
	}
	if cfg.Registry.RequestsPerMinute != 30 {
		t.Errorf("requests per minute = %d", cfg.Registry.RequestsPerMinute)
	}
	if cfg.Matching.ExactThreshold != 0.95 || cfg.Matching.CandidateThreshold != 0.7 {
		t.Errorf("thresholds = %v/%v", cfg.Matching.ExactThreshold, cfg.Matching.CandidateThreshold)
	}
	if cfg.Reconcile.MaxWorkers != 4 {
		t.Errorf("max workers = %d", cfg.Reconcile.MaxWorkers)
	}
	if cfg.Reconcile.WorkerHardCap != 16 {
		t.Errorf("hard cap = %d, want default retained", cfg.Reconcile.WorkerHardCap)
	}
}

func TestCredentialsFromEnvironment(t *testing.T) {
	t.Setenv("MEIKAN_REGISTRY_USERNAME", "env-user")
	t.Setenv("MEIKAN_REGISTRY_PASSWORD", "env-pass")

	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Registry.Username != "env-user" || cfg.Registry.Password != "env-pass" {
		t.Errorf("credentials = %q/%q, want environment fallback", cfg.Registry.Username, cfg.Registry.Password)
	}
}

func TestValidateRejectsBadThresholds(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{
			"candidate above exact",
			func(c *config.Config) { c.Matching.CandidateThreshold = 0.9; c.Matching.ExactThreshold = 0.8 },
			"candidate_threshold",
		},
		{
			"zero candidate",
			func(c *config.Config) { c.Matching.CandidateThreshold = 0 },
			"candidate_threshold",
		},
		{
			"exact above one",
			func(c *config.Config) { c.Matching.ExactThreshold = 1.5 },
			"exact_threshold",
		},
		{
			"workers above hard cap",
			func(c *config.Config) { c.Reconcile.MaxWorkers = 100 },
			"max_workers",
		},
		{
			"unknown log format",
			func(c *config.Config) { c.Logging.Format = "xml" },
			"logging.format",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of %s", err, tt.want)
			}
		})
	}
}

func TestCreateSampleParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("sample config did not load: exists=%v err=%v", exists, err)
	}
}
