package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/mergington/internal/loadcheck"
)

// Default configuration constants.
const (
	defaultSignups    = 40
	defaultDuplicates = 10
	defaultWorkers    = 2 // multiplier for runtime.NumCPU()
	defaultTimeout    = 10 * time.Second
	defaultRunTimeout = 5 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:8000", "Base URL of the service")
		activity   = flag.String("activity", "Gym Class", "Activity to sign students up for")
		signups    = flag.Int("signups", defaultSignups, "Number of distinct students to sign up")
		duplicates = flag.Int("duplicates", defaultDuplicates, "Extra signup attempts for one email")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		overCap    = flag.Bool("allow-over-capacity", false, "Accept rosters past max_participants")
		logFile    = flag.String("log", "", "Also write logs to this file")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		loadcheck.ShowHelp()
		return
	}

	if err := loadcheck.SetupLogging(*logFile, *verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := &loadcheck.Config{
		BaseURL:           *baseURL,
		Activity:          *activity,
		Signups:           *signups,
		Duplicates:        *duplicates,
		Workers:           *workers,
		Timeout:           *timeout,
		AllowOverCapacity: *overCap,
		Verbose:           *verbose,
	}

	if _, err := loadcheck.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("Load check failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1) //nolint:gocritic // cancel already called
	}
}
