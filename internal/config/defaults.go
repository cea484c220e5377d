package config

const (
	defaultDataDir            = "~/.local/share/meikan"
	defaultLogDir             = "~/.local/share/meikan/logs"
	defaultCacheDir           = "~/.cache/meikan"
	defaultAPIBind            = "127.0.0.1:7690"
	defaultRegistryTimeout    = 30
	defaultRequestsPerMinute  = 60
	defaultExactThreshold     = 1.0
	defaultCandidateThreshold = 0.6
	defaultMaxWorkers         = 10
	defaultWorkerHardCap      = 16
	defaultVerifyCachePath    = "~/.cache/meikan/verify_cache.json"
	defaultJobPollInterval    = 2
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:  defaultDataDir,
			LogDir:   defaultLogDir,
			CacheDir: defaultCacheDir,
			APIBind:  defaultAPIBind,
		},
		Registry: Registry{
			RequestTimeout:    defaultRegistryTimeout,
			RequestsPerMinute: defaultRequestsPerMinute,
		},
		Matching: Matching{
			ExactThreshold:     defaultExactThreshold,
			CandidateThreshold: defaultCandidateThreshold,
		},
		Reconcile: Reconcile{
			MaxWorkers:    defaultMaxWorkers,
			WorkerHardCap: defaultWorkerHardCap,
		},
		VerifyCache: VerifyCache{
			Enabled:       true,
			Path:          defaultVerifyCachePath,
			StoreNotFound: true,
		},
		Workflow: Workflow{
			JobPollInterval: defaultJobPollInterval,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
