package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harborml/longshore/internal/bytesize"
	"github.com/harborml/longshore/pkg/catalog"
)

// yamlSafePath converts a filesystem path to a YAML-safe representation.
// On Windows, backslashes in double-quoted YAML strings are interpreted as
// escape sequences (e.g. \U -> Unicode escape), causing parse errors.
func yamlSafePath(p string) string {
	return filepath.ToSlash(p)
}

func TestLoad_DefaultConfig(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	// Write minimal config
	configContent := `
logging:
  level: "INFO"

storage:
  uploads_dir: "` + yamlSafePath(tmpDir) + `/uploads"
  completed_dir: "` + yamlSafePath(tmpDir) + `/completed"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	// Load config
	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Verify defaults were applied
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default output 'stdout', got %q", cfg.Logging.Output)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown_timeout 30s, got %v", cfg.ShutdownTimeout)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected server port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Upload.ChunkSize != bytesize.MiB {
		t.Errorf("Expected default chunk size 1Mi, got %d", cfg.Upload.ChunkSize)
	}
	// Explicit values are preserved
	if cfg.Storage.UploadsDir != yamlSafePath(tmpDir)+"/uploads" {
		t.Errorf("Expected uploads dir from file, got %q", cfg.Storage.UploadsDir)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	// Loading with no config file returns a valid default config.
	// This allows users to run the server without a config file for quick testing.
	tmpDir := t.TempDir()
	nonExistentPath := filepath.Join(tmpDir, "nonexistent.yaml")

	cfg, err := Load(nonExistentPath)
	if err != nil {
		t.Fatalf("Expected no error when loading default config, got: %v", err)
	}

	// Verify default config is returned
	if cfg == nil {
		t.Fatal("Expected default config to be returned")
	}

	// Verify default server port
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default server port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Storage.UploadsDir != "./uploads" {
		t.Errorf("Expected default uploads dir './uploads', got %q", cfg.Storage.UploadsDir)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	// Write invalid YAML
	configContent := `
logging:
  level: INFO
  invalid yaml here [[[
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	// Should return error
	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Expected error with invalid YAML, got nil")
	}
}

func TestLoad_TOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	configContent := `
[logging]
level = "WARN"
format = "json"

[storage]
uploads_dir = "` + yamlSafePath(tmpDir) + `/uploads"
completed_dir = "` + yamlSafePath(tmpDir) + `/completed"

[upload]
chunk_size = "4Mi"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load TOML config: %v", err)
	}

	if cfg.Logging.Level != "WARN" {
		t.Errorf("Expected level 'WARN', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Expected format 'json', got %q", cfg.Logging.Format)
	}
	if cfg.Upload.ChunkSize != 4*bytesize.MiB {
		t.Errorf("Expected chunk size 4Mi, got %d", cfg.Upload.ChunkSize)
	}
}

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	// Verify all defaults are set
	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default log level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default log format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default log output 'stdout', got %q", cfg.Logging.Output)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown timeout 30s, got %v", cfg.ShutdownTimeout)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default server port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Upload.ChunkSize != bytesize.ByteSize(1048576) {
		t.Errorf("Expected default chunk size 1048576, got %d", cfg.Upload.ChunkSize)
	}
	if cfg.Catalog.Type != catalog.BackendJSONFile {
		t.Errorf("Expected default catalog backend 'jsonfile', got %q", cfg.Catalog.Type)
	}
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

func TestGetDefaultConfigPath(t *testing.T) {
	path := GetDefaultConfigPath()

	if !filepath.IsAbs(path) {
		t.Errorf("Expected absolute path, got %q", path)
	}
	if filepath.Base(path) != "config.yaml" {
		t.Errorf("Expected filename 'config.yaml', got %q", filepath.Base(path))
	}
}

func TestGetConfigDir(t *testing.T) {
	dir := GetConfigDir()

	if filepath.Base(dir) != "longshore" {
		t.Errorf("Expected directory name 'longshore', got %q", filepath.Base(dir))
	}
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	// Set environment variables
	_ = os.Setenv("LONGSHORE_LOGGING_LEVEL", "ERROR")
	_ = os.Setenv("LONGSHORE_SERVER_PORT", "9090")
	defer func() {
		_ = os.Unsetenv("LONGSHORE_LOGGING_LEVEL")
		_ = os.Unsetenv("LONGSHORE_SERVER_PORT")
	}()

	// Create minimal config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
logging:
  level: "INFO"

server:
  port: 8080
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Verify environment variables override config file
	if cfg.Logging.Level != "ERROR" {
		t.Errorf("Expected level 'ERROR' from env var, got %q", cfg.Logging.Level)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Expected port 9090 from env var, got %d", cfg.Server.Port)
	}
}

func TestLoad_EnvironmentOnly(t *testing.T) {
	// The server must be configurable with no config file at all, using
	// the short unprefixed aliases for the storage keys.
	tmpDir := t.TempDir()

	_ = os.Setenv("UPLOADS_DIR", yamlSafePath(tmpDir)+"/staging")
	_ = os.Setenv("COMPLETED_DIR", yamlSafePath(tmpDir)+"/done")
	_ = os.Setenv("CHUNK_SIZE", "2097152")
	defer func() {
		_ = os.Unsetenv("UPLOADS_DIR")
		_ = os.Unsetenv("COMPLETED_DIR")
		_ = os.Unsetenv("CHUNK_SIZE")
	}()

	cfg, err := Load(filepath.Join(tmpDir, "nonexistent.yaml"))
	if err != nil {
		t.Fatalf("Failed to load config from environment: %v", err)
	}

	if cfg.Storage.UploadsDir != yamlSafePath(tmpDir)+"/staging" {
		t.Errorf("Expected uploads dir from UPLOADS_DIR, got %q", cfg.Storage.UploadsDir)
	}
	if cfg.Storage.CompletedDir != yamlSafePath(tmpDir)+"/done" {
		t.Errorf("Expected completed dir from COMPLETED_DIR, got %q", cfg.Storage.CompletedDir)
	}
	if cfg.Upload.ChunkSize != bytesize.ByteSize(2097152) {
		t.Errorf("Expected chunk size 2097152 from CHUNK_SIZE, got %d", cfg.Upload.ChunkSize)
	}
}
