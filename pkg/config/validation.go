package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validate checks the configuration for errors that would prevent the
// server from starting.
//
// Struct tags cover value-level rules (oneof sets, port ranges, positive
// durations). Rules that span fields or live in sub-package configs are
// checked explicitly afterwards.
//
// Validate does not modify the configuration. In particular the log level
// keeps whatever case it was written in; ApplyDefaults is what normalizes
// it to uppercase.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return err
	}

	// Telemetry needs a collector endpoint once enabled.
	if cfg.Telemetry.Enabled && cfg.Telemetry.Endpoint == "" {
		return fmt.Errorf("telemetry is enabled but no endpoint is configured")
	}

	// Session persistence needs a database path.
	if cfg.Sessions.Persist && cfg.Sessions.Path == "" {
		return fmt.Errorf("sessions: persist is enabled but no path is configured")
	}

	if err := cfg.Catalog.Validate(); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}

	// The S3 settings only matter when archiving is turned on.
	if cfg.Sinks.Archive.Enabled {
		if err := cfg.Sinks.Archive.S3.Validate(); err != nil {
			return fmt.Errorf("sinks.archive: %w", err)
		}
	}

	return nil
}
