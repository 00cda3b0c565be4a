package loadcheck

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/mergington/pkg/logger"
)

const logFilePermission = 0o600

// SetupLogging initializes the logger on stdout and, when logFile is set,
// on that file as well.
func SetupLogging(logFile string, verbose bool) error {
	var w io.Writer = os.Stdout
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return fmt.Errorf("failed to create log file: %w", err)
		}
		w = io.MultiWriter(os.Stdout, file)
	}
	if err := logger.InitWith(w, "text"); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		return logger.SetLevelString("debug")
	}
	return nil
}

// ShowHelp prints usage information for the load check tool.
func ShowHelp() {
	os.Stdout.WriteString(`Mergington Load Check
=====================

Signs many students up for one activity concurrently, then checks the
roster has no duplicates, stays within capacity and holds every accepted
signup. Everything added is removed again at the end.

Usage:
  go run ./cmd/loadcheck [options]

Options:
  -url string          Base URL of the service (default "http://localhost:8000")
  -activity string     Activity to target (default "Gym Class")
  -signups int         Distinct students to sign up (default 40)
  -duplicates int      Extra attempts for one email (default 10)
  -workers int         Concurrent workers (default CPU cores * 2)
  -timeout duration    HTTP request timeout (default 10s)
  -allow-over-capacity Accept rosters past max_participants
  -log string          Also write logs to this file
  -verbose             Debug logging
  -help                Show this help message
`)
}
