//go:build !windows

package commands

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
)

// isProcessRunning reports whether the process named by the PID file is
// still alive, using the signal-0 probe. A missing or garbled PID file
// counts as not running.
func isProcessRunning(pidPath string) (int, bool) {
	data, err := os.ReadFile(pidPath)
	if err != nil {
		return 0, false
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, false
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return 0, false
	}
	if process.Signal(syscall.Signal(0)) != nil {
		return 0, false
	}
	return pid, true
}

// startDaemon re-executes the binary with --foreground in a new session,
// redirecting both output streams to the daemon log file. The child owns
// the PID file; a stale one left by a crashed instance is cleared first.
func startDaemon() error {
	if err := os.MkdirAll(GetDefaultStateDir(), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	pidPath := pidFile
	if pidPath == "" {
		pidPath = GetDefaultPidFile()
	}
	if pid, running := isProcessRunning(pidPath); running {
		return fmt.Errorf("Longshore is already running (PID %d)\nUse 'longshore stop' to stop the running instance", pid)
	}
	_ = os.Remove(pidPath)

	logPath := logFile
	if logPath == "" {
		logPath = GetDefaultLogFile()
	}
	logHandle, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = logHandle.Close() }()

	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	args := []string{"start", "--foreground", "--pid-file", pidPath}
	if GetConfigFile() != "" {
		args = append(args, "--config", GetConfigFile())
	}

	child := exec.Command(executable, args...)
	child.Stdout = logHandle
	child.Stderr = logHandle
	child.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := child.Start(); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}

	fmt.Printf("Longshore started in background (PID %d)\n", child.Process.Pid)
	fmt.Printf("  PID file: %s\n", pidPath)
	fmt.Printf("  Log file: %s\n", logPath)
	fmt.Println("\nUse 'longshore stop' to stop the server")
	fmt.Println("Use 'longshore status' to check server status")

	return nil
}
