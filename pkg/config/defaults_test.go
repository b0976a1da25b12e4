package config

import (
	"testing"
	"time"

	"github.com/harborml/longshore/internal/bytesize"
	"github.com/harborml/longshore/pkg/catalog"
)

func TestApplyDefaults_Logging(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default log level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default log format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default log output 'stdout', got %q", cfg.Logging.Output)
	}
}

func TestApplyDefaults_NormalizesLogLevel(t *testing.T) {
	cfg := &Config{}
	cfg.Logging.Level = "info"
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected log level normalized to 'INFO', got %q", cfg.Logging.Level)
	}
}

func TestApplyDefaults_ShutdownTimeout(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown timeout 30s, got %v", cfg.ShutdownTimeout)
	}
}

func TestApplyDefaults_Server(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default server port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("Expected default read timeout 30s, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Server.WriteTimeout != 60*time.Second {
		t.Errorf("Expected default write timeout 60s, got %v", cfg.Server.WriteTimeout)
	}
	if cfg.Server.IdleTimeout != 120*time.Second {
		t.Errorf("Expected default idle timeout 120s, got %v", cfg.Server.IdleTimeout)
	}
	if cfg.Server.MaxMultipartMemory != 32*bytesize.MiB {
		t.Errorf("Expected default multipart memory 32Mi, got %d", cfg.Server.MaxMultipartMemory)
	}
}

func TestApplyDefaults_Storage(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Storage.UploadsDir != "./uploads" {
		t.Errorf("Expected default uploads dir './uploads', got %q", cfg.Storage.UploadsDir)
	}
	if cfg.Storage.CompletedDir != "./completed" {
		t.Errorf("Expected default completed dir './completed', got %q", cfg.Storage.CompletedDir)
	}
}

func TestApplyDefaults_Upload(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Upload.ChunkSize != bytesize.MiB {
		t.Errorf("Expected default chunk size 1Mi, got %d", cfg.Upload.ChunkSize)
	}
}

func TestApplyDefaults_Catalog(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Catalog.Type != catalog.BackendJSONFile {
		t.Errorf("Expected default catalog backend 'jsonfile', got %q", cfg.Catalog.Type)
	}
	if cfg.Catalog.JSONFile.Path != "catalog.json" {
		t.Errorf("Expected default catalog path 'catalog.json', got %q", cfg.Catalog.JSONFile.Path)
	}
}

func TestApplyDefaults_Sweeper(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if !cfg.Sweeper.IsEnabled() {
		t.Error("Expected sweeper enabled by default")
	}
	if cfg.Sweeper.Interval != 5*time.Minute {
		t.Errorf("Expected default sweep interval 5m, got %v", cfg.Sweeper.Interval)
	}
	if cfg.Sweeper.TTL != 24*time.Hour {
		t.Errorf("Expected default session TTL 24h, got %v", cfg.Sweeper.TTL)
	}
}

func TestApplyDefaults_MetricsPortOnlyWhenEnabled(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Metrics.Port != 0 {
		t.Errorf("Expected no metrics port while disabled, got %d", cfg.Metrics.Port)
	}

	cfg = &Config{}
	cfg.Metrics.Enabled = true
	ApplyDefaults(cfg)
	if cfg.Metrics.Port != 9090 {
		t.Errorf("Expected default metrics port 9090, got %d", cfg.Metrics.Port)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	disabled := false
	cfg := &Config{
		Logging: LoggingConfig{
			Level:  "DEBUG",
			Format: "json",
			Output: "/var/log/longshore.log",
		},
		ShutdownTimeout: 60 * time.Second,
		Storage: StorageConfig{
			UploadsDir:   "/srv/longshore/staging",
			CompletedDir: "/srv/longshore/done",
		},
		Upload: UploadConfig{
			ChunkSize: 8 * bytesize.MiB,
		},
		Sweeper: SweeperConfig{
			Enabled: &disabled,
			TTL:     time.Hour,
		},
	}

	ApplyDefaults(cfg)

	// Verify explicit values were preserved
	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected explicit level 'DEBUG' to be preserved, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Expected explicit format 'json' to be preserved, got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "/var/log/longshore.log" {
		t.Errorf("Expected explicit output to be preserved, got %q", cfg.Logging.Output)
	}
	if cfg.ShutdownTimeout != 60*time.Second {
		t.Errorf("Expected explicit timeout 60s to be preserved, got %v", cfg.ShutdownTimeout)
	}
	if cfg.Storage.UploadsDir != "/srv/longshore/staging" {
		t.Errorf("Expected explicit uploads dir to be preserved, got %q", cfg.Storage.UploadsDir)
	}
	if cfg.Upload.ChunkSize != 8*bytesize.MiB {
		t.Errorf("Expected explicit chunk size to be preserved, got %d", cfg.Upload.ChunkSize)
	}
	if cfg.Sweeper.IsEnabled() {
		t.Error("Expected explicitly disabled sweeper to stay disabled")
	}
	if cfg.Sweeper.TTL != time.Hour {
		t.Errorf("Expected explicit TTL 1h to be preserved, got %v", cfg.Sweeper.TTL)
	}
}

func TestGetDefaultConfig_IsValid(t *testing.T) {
	cfg := GetDefaultConfig()

	// The default config should pass validation
	err := Validate(cfg)
	if err != nil {
		t.Errorf("Default config should be valid, got error: %v", err)
	}
}

func TestGetDefaultConfig_HasRequiredFields(t *testing.T) {
	cfg := GetDefaultConfig()

	// Check all required sections are present
	if cfg.Logging.Level == "" {
		t.Error("Default config missing logging level")
	}
	if cfg.Server.Port == 0 {
		t.Error("Default config missing server port")
	}
	if cfg.Storage.UploadsDir == "" {
		t.Error("Default config missing uploads dir")
	}
	if cfg.Storage.CompletedDir == "" {
		t.Error("Default config missing completed dir")
	}
	if cfg.Upload.ChunkSize == 0 {
		t.Error("Default config missing chunk size")
	}
}
