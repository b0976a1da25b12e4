//go:build !windows

package commands

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

// stopProcess signals the server process: SIGTERM for graceful shutdown,
// SIGKILL when --force is given.
func stopProcess(process *os.Process, pid int, force bool) error {
	if force {
		fmt.Printf("Sending SIGKILL to process %d...\n", pid)
		return deliverSignal(process, syscall.SIGKILL)
	}
	fmt.Printf("Sending SIGTERM to process %d...\n", pid)
	return deliverSignal(process, syscall.SIGTERM)
}

func deliverSignal(process *os.Process, sig syscall.Signal) error {
	switch err := process.Signal(sig); {
	case errors.Is(err, os.ErrProcessDone):
		return errProcessDone
	case err != nil:
		return fmt.Errorf("failed to send signal: %w", err)
	}
	return nil
}
