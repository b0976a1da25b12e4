package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// configTemplate is the commented sample configuration written by
// InitConfig. Loading the generated file without edits yields the default
// configuration.
const configTemplate = `# Longshore Configuration File
#
# This file configures the Longshore upload server. The values shown are
# the defaults. Every key can also be set through the environment with the
# LONGSHORE_ prefix, for example LONGSHORE_LOGGING_LEVEL=DEBUG.

logging:
  # Minimum log level: DEBUG, INFO, WARN, ERROR
  level: INFO
  # Output format: text or json
  format: text
  # Where logs are written: stdout, stderr, or a file path
  output: stdout

server:
  # HTTP port for the upload API
  port: 8080

storage:
  # Chunk staging directory (env: UPLOADS_DIR)
  uploads_dir: ./uploads
  # Completed file directory (env: COMPLETED_DIR)
  completed_dir: ./completed

upload:
  # Chunk size handed to clients at session init (env: CHUNK_SIZE)
  chunk_size: 1Mi

sessions:
  # Persist session headers across restarts so interrupted uploads can be
  # resumed. Requires a path for the session database.
  persist: false
  # path: ./sessions

catalog:
  # Catalog backend: jsonfile, sqlite or postgres
  type: jsonfile
  jsonfile:
    path: catalog.json
  # sqlite:
  #   path: catalog.db
  # postgres:
  #   host: localhost
  #   port: 5432
  #   database: longshore
  #   user: longshore
  #   password: longshore

sinks:
  archive:
    # Archive completed uploads to S3
    enabled: false
    # s3:
    #   bucket: my-bucket
    #   region: us-east-1

sweeper:
  # Expire idle sessions and remove orphaned chunk directories
  enabled: true
  interval: 5m
  ttl: 24h

metrics:
  # Prometheus metrics server
  enabled: false
  port: 9090
`

// InitConfig writes a commented sample configuration file to the default
// location and returns the path it wrote.
//
// Returns an error if the file already exists, unless force is true.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	if err := InitConfigToPath(path, force); err != nil {
		return "", err
	}
	return path, nil
}

// InitConfigToPath writes a commented sample configuration file to the
// given path, creating parent directories as needed.
//
// Returns an error if the file already exists, unless force is true.
func InitConfigToPath(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
		}
	}

	// Create parent directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Same restricted permissions as SaveConfig; an edited config may
	// hold S3 credentials.
	if err := os.WriteFile(path, []byte(configTemplate), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
