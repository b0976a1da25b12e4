//go:build windows

package commands

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// isProcessRunning reads a PID from the given file and checks whether
// that process is still alive. Windows has no signal 0 probe, so finding
// the process is treated as running.
func isProcessRunning(pidPath string) (int, bool) {
	pidData, err := os.ReadFile(pidPath)
	if err != nil {
		return 0, false
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(pidData)))
	if err != nil {
		return 0, false
	}

	if _, err := os.FindProcess(pid); err != nil {
		return 0, false
	}

	return pid, true
}

// startDaemon is not supported on Windows.
// Use --foreground flag to run the server in the foreground.
func startDaemon() error {
	return fmt.Errorf("daemon mode is not supported on Windows, use --foreground")
}
