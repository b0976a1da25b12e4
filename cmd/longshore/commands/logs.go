package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/harborml/longshore/pkg/config"
	"github.com/spf13/cobra"
)

var (
	logsFollow bool
	logsLines  int
	logsSince  string
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Tail server logs",
	Long: `Display and optionally follow the Longshore server logs.

Reads the log file named by 'logging.output' in the configuration. When
the server logs to stdout or stderr there is no file to read and the
command says so.

Examples:
  # Show last 100 lines (default)
  longshore logs

  # Follow logs in real-time, starting from the last 20 lines
  longshore logs -f -n 20

  # Show logs since a specific time
  longshore logs --since "2026-08-01T10:00:00Z"`,
	RunE: runLogs,
}

func init() {
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Follow log output")
	logsCmd.Flags().IntVarP(&logsLines, "lines", "n", 100, "Number of lines to show")
	logsCmd.Flags().StringVar(&logsSince, "since", "", "Show logs since timestamp (RFC3339 format)")
}

func runLogs(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logFile := cfg.Logging.Output
	switch logFile {
	case "stdout", "stderr":
		return fmt.Errorf("server is configured to log to %s, not a file\nSet 'logging.output' to a file path to use this command", logFile)
	}
	if _, err := os.Stat(logFile); os.IsNotExist(err) {
		return fmt.Errorf("log file not found: %s\nThe server may not have started yet or is logging elsewhere", logFile)
	}

	var since time.Time
	if logsSince != "" {
		since, err = time.Parse(time.RFC3339, logsSince)
		if err != nil {
			return fmt.Errorf("invalid --since format (use RFC3339): %w", err)
		}
	}

	if err := printTail(logFile, logsLines, since); err != nil {
		return err
	}
	if !logsFollow {
		return nil
	}
	return followLog(logFile)
}

// printTail prints the last n lines of the log file, dropping lines
// timestamped before since. The whole file is scanned; log files here are
// rotated by the operator, not by us, so this is fine in practice.
func printTail(logFile string, n int, since time.Time) error {
	file, err := os.Open(logFile)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var kept []string
	for scanner.Scan() {
		line := scanner.Text()
		if !since.IsZero() {
			if ts := lineTimestamp(line); !ts.IsZero() && ts.Before(since) {
				continue
			}
		}
		kept = append(kept, line)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading log file: %w", err)
	}

	if len(kept) > n {
		kept = kept[len(kept)-n:]
	}
	for _, line := range kept {
		fmt.Println(line)
	}
	return nil
}

// followLog watches the log file with fsnotify and prints lines appended
// after the initial tail. Ctrl+C exits cleanly.
func followLog(logFile string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(logFile); err != nil {
		return fmt.Errorf("failed to watch log file: %w", err)
	}

	file, err := os.Open(logFile)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek to end of log file: %w", err)
	}
	reader := bufio.NewReader(file)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	fmt.Fprintf(os.Stderr, "Following %s (Ctrl+C to stop)...\n", logFile)

	for {
		select {
		case <-sigCh:
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) {
				continue
			}
			for {
				line, err := reader.ReadString('\n')
				if err != nil {
					break
				}
				fmt.Print(line)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

// lineTimestamp extracts the timestamp from a log line in either of the
// server's own formats: the text handler's "[2006-01-02 15:04:05]" prefix
// or the JSON handler's "time" field. Unrecognized lines return zero and
// are kept by the since filter.
func lineTimestamp(line string) time.Time {
	if strings.HasPrefix(line, "[") {
		if end := strings.IndexByte(line, ']'); end > 0 {
			if t, err := time.ParseInLocation("2006-01-02 15:04:05", line[1:end], time.Local); err == nil {
				return t
			}
		}
	}

	const timeKey = `"time":"`
	if idx := strings.Index(line, timeKey); idx >= 0 {
		start := idx + len(timeKey)
		if end := strings.IndexByte(line[start:], '"'); end > 0 {
			if t, err := time.Parse(time.RFC3339Nano, line[start:start+end]); err == nil {
				return t
			}
		}
	}

	return time.Time{}
}
