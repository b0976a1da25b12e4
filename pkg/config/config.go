package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/harborml/longshore/internal/bytesize"
	"github.com/harborml/longshore/pkg/api"
	"github.com/harborml/longshore/pkg/archive"
	"github.com/harborml/longshore/pkg/catalog"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the Longshore configuration.
//
// This structure captures all static configuration of the upload server:
//   - Logging configuration
//   - Telemetry/tracing configuration
//   - HTTP server settings (ports, timeouts)
//   - Storage layout (staging and completed directories)
//   - Upload engine settings (chunk size, session persistence)
//   - Catalog backend (JSON file, SQLite or PostgreSQL)
//   - Sink pipeline options (S3 archival)
//   - Sweeper settings (stale session expiry)
//
// Configuration sources (in order of precedence):
//  1. CLI flags (highest priority)
//  2. Environment variables (LONGSHORE_*)
//  3. Configuration file (YAML or TOML)
//  4. Default values (lowest priority)
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Telemetry controls OpenTelemetry distributed tracing
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`

	// Server contains the upload API HTTP server configuration
	Server api.Config `mapstructure:"server" yaml:"server"`

	// Storage describes where chunks are staged and completed files land
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`

	// Upload contains upload engine settings
	Upload UploadConfig `mapstructure:"upload" yaml:"upload"`

	// Sessions controls session header persistence across restarts
	Sessions SessionsConfig `mapstructure:"sessions" yaml:"sessions"`

	// Catalog configures the dataset catalog backend
	Catalog catalog.Config `mapstructure:"catalog" yaml:"catalog"`

	// Sinks configures optional post-completion pipeline stages
	Sinks SinksConfig `mapstructure:"sinks" yaml:"sinks"`

	// Sweeper controls expiry of stale sessions and orphaned chunk
	// directories
	Sweeper SweeperConfig `mapstructure:"sweeper" yaml:"sweeper"`

	// Metrics contains Prometheus metrics server configuration
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig contains OpenTelemetry tracing configuration.
type TelemetryConfig struct {
	// Enabled controls whether distributed tracing is enabled
	// Default: false (opt-in for telemetry)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the OTLP collector endpoint (host:port)
	// Default: "localhost:4317" (standard OTLP gRPC port)
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// Insecure controls whether to use insecure (non-TLS) connection
	// Default: true (for local development)
	// Set to false in production with a TLS-enabled collector
	Insecure bool `mapstructure:"insecure" yaml:"insecure"`

	// SampleRate controls the trace sampling rate (0.0 to 1.0)
	// 1.0 = sample all traces, 0.5 = sample 50%, 0.0 = no sampling
	// Default: 1.0 (sample all)
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`

	// Profiling contains Pyroscope continuous profiling configuration
	Profiling ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig contains Pyroscope continuous profiling configuration.
type ProfilingConfig struct {
	// Enabled controls whether continuous profiling is enabled
	// Default: false (opt-in for profiling)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the Pyroscope server endpoint (URL)
	// Default: "http://localhost:4040" (standard Pyroscope port)
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// ProfileTypes specifies which profile types to collect
	// Valid values: cpu, alloc_objects, alloc_space, inuse_objects, inuse_space,
	//               goroutines, mutex_count, mutex_duration, block_count, block_duration
	// Default: ["cpu", "alloc_objects", "alloc_space", "inuse_objects", "inuse_space", "goroutines"]
	ProfileTypes []string `mapstructure:"profile_types" yaml:"profile_types"`
}

// StorageConfig describes the on-disk layout of the upload engine.
type StorageConfig struct {
	// UploadsDir is the chunk staging directory. Each in-flight session
	// owns one subdirectory named by its upload id.
	// Default: ./uploads
	// Environment: LONGSHORE_STORAGE_UPLOADS_DIR or UPLOADS_DIR
	UploadsDir string `mapstructure:"uploads_dir" validate:"required" yaml:"uploads_dir"`

	// CompletedDir receives reassembled files, one subdirectory per upload.
	// Default: ./completed
	// Environment: LONGSHORE_STORAGE_COMPLETED_DIR or COMPLETED_DIR
	CompletedDir string `mapstructure:"completed_dir" validate:"required" yaml:"completed_dir"`
}

// UploadConfig contains upload engine settings.
type UploadConfig struct {
	// ChunkSize is the chunk size handed to clients at session init.
	// Accepts human-readable sizes ("1Mi", "512KiB") or plain byte counts.
	// Default: 1Mi (1048576 bytes)
	// Environment: LONGSHORE_UPLOAD_CHUNK_SIZE or CHUNK_SIZE
	ChunkSize bytesize.ByteSize `mapstructure:"chunk_size" validate:"required,gt=0" yaml:"chunk_size"`
}

// SessionsConfig controls persistence of session headers.
//
// Without persistence a restart forgets all in-flight sessions, and their
// staged chunks are only reclaimed by the sweeper. With persistence enabled
// session headers are stored in a Badger database and recovered on startup,
// so clients can resume interrupted uploads across restarts.
type SessionsConfig struct {
	// Persist enables session header persistence.
	// Default: false
	Persist bool `mapstructure:"persist" yaml:"persist"`

	// Path is the Badger database directory. Required when Persist is true.
	Path string `mapstructure:"path" yaml:"path"`
}

// SinksConfig configures optional post-completion pipeline stages.
type SinksConfig struct {
	// Archive configures S3 archival of completed uploads
	Archive ArchiveSinkConfig `mapstructure:"archive" yaml:"archive"`
}

// ArchiveSinkConfig configures the S3 archive sink.
type ArchiveSinkConfig struct {
	// Enabled controls whether completed uploads are archived to S3.
	// Default: false
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// S3 holds the bucket, region and credential settings
	S3 archive.Config `mapstructure:"s3" yaml:"s3"`
}

// SweeperConfig controls the background sweeper that expires stale sessions
// and removes orphaned chunk directories.
type SweeperConfig struct {
	// Enabled controls whether the sweeper runs.
	// Default: true
	// Use a pointer to distinguish "not set" from "explicitly false"
	Enabled *bool `mapstructure:"enabled" yaml:"enabled"`

	// Interval is the time between sweeps.
	// Default: 5m
	Interval time.Duration `mapstructure:"interval" validate:"omitempty,gt=0" yaml:"interval"`

	// TTL is how long a session may stay idle before it is expired.
	// Default: 24h
	TTL time.Duration `mapstructure:"ttl" validate:"omitempty,gt=0" yaml:"ttl"`
}

// IsEnabled returns whether the sweeper is enabled.
// Defaults to true if not explicitly set.
func (c *SweeperConfig) IsEnabled() bool {
	if c.Enabled == nil {
		return true
	}
	return *c.Enabled
}

// MetricsConfig contains Prometheus metrics server configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection and HTTP server are enabled
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port is the HTTP port for the metrics endpoint
	// Default: 9090
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// Load loads configuration from the given path, environment variables and
// defaults.
//
// Parameters:
//   - configPath: Path to config file (empty string uses default location)
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If reading, parsing or validation fails
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Configure viper
	setupViper(v, configPath)

	// Read configuration file if it exists. A missing file is fine: the
	// server can run entirely from environment variables and defaults.
	if _, err := readConfigFile(v); err != nil {
		return nil, err
	}

	// Unmarshal into config struct with custom decode hooks
	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Apply defaults for any missing values
	ApplyDefaults(&cfg)

	// Validate configuration
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration with helpful error messages.
// It checks if the config file exists and provides user-friendly instructions if not.
//
// Parameters:
//   - configPath: Path to config file (empty string uses default location)
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: User-friendly error with instructions if config not found
func MustLoad(configPath string) (*Config, error) {
	// Determine config path
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
				"Please initialize a configuration file first:\n"+
				"  longshore config init\n\n"+
				"Or specify a custom config file:\n"+
				"  longshore <command> --config /path/to/config.yaml",
				GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s\n\n"+
				"Please create the configuration file:\n"+
				"  longshore config init --config %s",
				configPath, configPath)
		}
	}

	// Load configuration
	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to the specified file path.
// The configuration is saved in YAML format using proper yaml tags.
func SaveConfig(cfg *Config, path string) error {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Use yaml.Marshal directly to respect yaml tags
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write to file with restricted permissions (0600 = owner read/write only).
	// This is important because config files may contain sensitive data like S3 credentials.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Set up environment variable support
	// Environment variables use LONGSHORE_ prefix and underscores
	// Example: LONGSHORE_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("LONGSHORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvAliases(v)

	// Configure config file search
	if configPath != "" {
		// Use explicitly specified config file
		v.SetConfigFile(configPath)
	} else {
		// Use default location: $XDG_CONFIG_HOME/longshore/config.{yaml,toml}
		configDir := getConfigDir()
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml") // Primary format
	}
}

// bindEnvAliases binds configuration keys to their environment variables.
//
// Viper's Unmarshal only sees environment values for keys that are
// explicitly bound; AutomaticEnv alone covers direct Get calls but not
// struct decoding. Binding also gives the storage keys their short
// unprefixed aliases (UPLOADS_DIR, COMPLETED_DIR, CHUNK_SIZE).
func bindEnvAliases(v *viper.Viper) {
	aliases := [][]string{
		{"storage.uploads_dir", "LONGSHORE_STORAGE_UPLOADS_DIR", "UPLOADS_DIR"},
		{"storage.completed_dir", "LONGSHORE_STORAGE_COMPLETED_DIR", "COMPLETED_DIR"},
		{"upload.chunk_size", "LONGSHORE_UPLOAD_CHUNK_SIZE", "CHUNK_SIZE"},
		{"server.port", "LONGSHORE_SERVER_PORT"},
		{"logging.level", "LONGSHORE_LOGGING_LEVEL"},
		{"logging.format", "LONGSHORE_LOGGING_FORMAT"},
		{"sessions.persist", "LONGSHORE_SESSIONS_PERSIST"},
		{"sessions.path", "LONGSHORE_SESSIONS_PATH"},
		{"catalog.type", "LONGSHORE_CATALOG_TYPE"},
		{"catalog.postgres.host", "LONGSHORE_CATALOG_POSTGRES_HOST"},
		{"catalog.postgres.database", "LONGSHORE_CATALOG_POSTGRES_DATABASE"},
		{"catalog.postgres.user", "LONGSHORE_CATALOG_POSTGRES_USER"},
		{"catalog.postgres.password", "LONGSHORE_CATALOG_POSTGRES_PASSWORD"},
		{"sinks.archive.enabled", "LONGSHORE_SINKS_ARCHIVE_ENABLED"},
		{"sinks.archive.s3.bucket", "LONGSHORE_SINKS_ARCHIVE_S3_BUCKET"},
		{"sinks.archive.s3.region", "LONGSHORE_SINKS_ARCHIVE_S3_REGION"},
		{"sinks.archive.s3.endpoint", "LONGSHORE_SINKS_ARCHIVE_S3_ENDPOINT"},
		{"sweeper.enabled", "LONGSHORE_SWEEPER_ENABLED"},
		{"sweeper.interval", "LONGSHORE_SWEEPER_INTERVAL"},
		{"sweeper.ttl", "LONGSHORE_SWEEPER_TTL"},
		{"metrics.enabled", "LONGSHORE_METRICS_ENABLED"},
		{"metrics.port", "LONGSHORE_METRICS_PORT"},
	}
	for _, alias := range aliases {
		// BindEnv only errors on an empty key
		_ = v.BindEnv(alias...)
	}
}

// readConfigFile reads the configuration file if it exists.
// Returns (fileFound, error) where fileFound indicates if a config file was found.
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		// Check if error is "config file not found"
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found is acceptable - use defaults
			return false, nil
		}
		// Also check for os.PathError when explicit config file doesn't exist
		if os.IsNotExist(err) {
			// Config file not found is acceptable - use defaults
			return false, nil
		}
		// Other errors are problems
		return false, fmt.Errorf("failed to read config file: %w", err)
	}

	return true, nil
}

// configDecodeHooks returns a combined decode hook for all custom types.
// This includes ByteSize and time.Duration parsing.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		durationDecodeHook(),
	)
}

// byteSizeDecodeHook returns a mapstructure decode hook that converts strings
// and integers to bytesize.ByteSize. This enables config files to use human-readable
// sizes like "1Gi", "500Mi", "100MB", or plain numbers.
func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		// Only handle conversion to ByteSize
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			// Parse human-readable string like "1Gi", "500Mi", "100MB"
			return bytesize.Parse(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			// YAML often deserializes numbers as float64
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

// durationDecodeHook returns a mapstructure decode hook that converts strings
// to time.Duration. This enables config files to use human-readable durations
// like "30s", "5m", "1h".
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		// Only handle conversion to time.Duration
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			// Parse duration string like "30s", "5m", "1h"
			return time.ParseDuration(v)
		case int:
			// Assume nanoseconds for raw integers
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			// YAML often deserializes numbers as float64
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to current
// directory (.) if home directory cannot be determined.
func getConfigDir() string {
	// Check XDG_CONFIG_HOME
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "longshore")
	}

	// Fall back to ~/.config
	home, err := os.UserHomeDir()
	if err != nil {
		// If we can't get home dir, use current directory as last resort
		return "."
	}

	return filepath.Join(home, ".config", "longshore")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists checks if a config file exists at the default location.
func DefaultConfigExists() bool {
	path := GetDefaultConfigPath()
	_, err := os.Stat(path)
	return err == nil
}

// GetConfigDir returns the configuration directory path (exposed for init command).
func GetConfigDir() string {
	return getConfigDir()
}
