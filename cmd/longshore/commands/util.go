package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/harborml/longshore/internal/logger"
	"github.com/harborml/longshore/pkg/config"
)

// InitLogger configures the process logger from the loaded configuration.
func InitLogger(cfg *config.Config) error {
	err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// GetDefaultStateDir resolves the daemon state directory: XDG_STATE_HOME
// when set, ~/.local/state otherwise, with a tmpdir fallback when the home
// directory cannot be determined.
func GetDefaultStateDir() string {
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "longshore")
		}
		stateDir = filepath.Join(homeDir, ".local", "state")
	}
	return filepath.Join(stateDir, "longshore")
}

// GetDefaultPidFile is where the daemon writes its PID.
func GetDefaultPidFile() string {
	return filepath.Join(GetDefaultStateDir(), "longshore.pid")
}

// GetDefaultLogFile is where daemon-mode output goes.
func GetDefaultLogFile() string {
	return filepath.Join(GetDefaultStateDir(), "longshore.log")
}
