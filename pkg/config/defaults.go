package config

import (
	"strings"
	"time"

	"github.com/harborml/longshore/internal/bytesize"
	"github.com/harborml/longshore/pkg/api"
	"github.com/harborml/longshore/pkg/catalog"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// This function is called after loading configuration from file and environment
// variables to fill in any missing values with sensible defaults.
//
// Default Strategy:
//   - Zero values (0, "", false, nil) are replaced with defaults
//   - Explicit values are preserved
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyShutdownTimeoutDefaults(cfg)
	applyServerDefaults(&cfg.Server)
	applyStorageDefaults(&cfg.Storage)
	applyUploadDefaults(&cfg.Upload)
	applyCatalogDefaults(&cfg.Catalog)
	applySinksDefaults(&cfg.Sinks)
	applySweeperDefaults(&cfg.Sweeper)
	applyMetricsDefaults(&cfg.Metrics)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	// Normalize log level to uppercase for consistent internal representation
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyTelemetryDefaults sets OpenTelemetry defaults.
func applyTelemetryDefaults(cfg *TelemetryConfig) {
	// Enabled defaults to false (opt-in for telemetry)
	// No need to set, zero value is false

	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}

	applyProfilingDefaults(&cfg.Profiling)
}

// applyProfilingDefaults sets Pyroscope profiling defaults.
func applyProfilingDefaults(cfg *ProfilingConfig) {
	// Enabled defaults to false (opt-in for profiling)
	// No need to set, zero value is false

	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://localhost:4040"
	}
	if len(cfg.ProfileTypes) == 0 {
		cfg.ProfileTypes = []string{
			"cpu",
			"alloc_objects",
			"alloc_space",
			"inuse_objects",
			"inuse_space",
			"goroutines",
		}
	}
}

// applyShutdownTimeoutDefaults sets shutdown timeout defaults.
func applyShutdownTimeoutDefaults(cfg *Config) {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
}

// applyServerDefaults sets upload API server defaults.
// The API is always enabled (it is the only way in for uploads).
func applyServerDefaults(cfg *api.Config) {
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 60 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 120 * time.Second
	}
	if cfg.MaxMultipartMemory == 0 {
		cfg.MaxMultipartMemory = 32 * bytesize.MiB
	}
}

// applyStorageDefaults sets storage layout defaults.
func applyStorageDefaults(cfg *StorageConfig) {
	if cfg.UploadsDir == "" {
		cfg.UploadsDir = "./uploads"
	}
	if cfg.CompletedDir == "" {
		cfg.CompletedDir = "./completed"
	}
}

// applyUploadDefaults sets upload engine defaults.
func applyUploadDefaults(cfg *UploadConfig) {
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = bytesize.MiB // 1 MiB
	}
	// Sessions.Path has no default - persistence is opt-in and the path
	// must be configured by the user
}

// applyCatalogDefaults sets catalog backend defaults.
func applyCatalogDefaults(cfg *catalog.Config) {
	cfg.ApplyDefaults()
}

// applySinksDefaults sets sink pipeline defaults.
func applySinksDefaults(cfg *SinksConfig) {
	// Archive is opt-in; the S3 uploader applies its own retry defaults
	// when it is constructed.
	if cfg.Archive.Enabled {
		cfg.Archive.S3.ApplyDefaults()
	}
}

// applySweeperDefaults sets sweeper defaults.
func applySweeperDefaults(cfg *SweeperConfig) {
	// Enabled defaults to true via IsEnabled (nil pointer means unset)
	if cfg.Interval == 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.TTL == 0 {
		cfg.TTL = 24 * time.Hour
	}
}

// applyMetricsDefaults sets metrics defaults.
func applyMetricsDefaults(cfg *MetricsConfig) {
	// Enabled defaults to false (opt-in for metrics)
	// Port defaults to 9090 if metrics are enabled
	if cfg.Enabled && cfg.Port == 0 {
		cfg.Port = 9090
	}
}

// GetDefaultConfig returns a Config struct with all default values applied.
//
// This is useful for:
//   - Generating sample configuration files
//   - Testing
//   - Documentation
func GetDefaultConfig() *Config {
	cfg := &Config{
		Catalog: catalog.Config{
			Type: catalog.BackendJSONFile, // Default to the JSON file catalog for single-node
		},
	}

	ApplyDefaults(cfg)
	return cfg
}
