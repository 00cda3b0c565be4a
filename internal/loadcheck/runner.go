package loadcheck

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/mergington/pkg/logger"
)

const workerChannelMultiplier = 2

// Run executes the complete load check.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{
		StartTime: time.Now(),
		Rejected:  make(map[string]int),
	}
	log := logger.Get().Named("loadcheck")
	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)

	log.Info(ctx, "starting load check",
		logger.String("baseURL", cfg.BaseURL),
		logger.String("activity", cfg.Activity),
		logger.Int("signups", cfg.Signups),
		logger.Int("duplicates", cfg.Duplicates),
		logger.Int("workers", cfg.Workers))

	// Step 1: the service answers and knows the activity
	before, err := checkService(ctx, client, cfg.Activity)
	if err != nil {
		return stats, fmt.Errorf("service check failed: %w", err)
	}
	stats.RosterBefore = len(before.Participants)
	stats.Capacity = before.MaxParticipants

	// Step 2: concurrent signups
	emails := generateEmails(uuid.NewString(), cfg.Signups, cfg.Duplicates)
	stats.Attempts = len(emails)
	outcomes := submit(ctx, cfg.Workers, emails, func(ctx context.Context, email string) (Outcome, error) {
		return client.SignUp(ctx, cfg.Activity, email)
	})
	tally(outcomes, stats)
	log.Info(ctx, "signups submitted",
		logger.Int("attempts", stats.Attempts),
		logger.Int("accepted", stats.Accepted),
		logger.Int("failed", stats.Failed),
		logger.Any("rejected", stats.Rejected))

	// Step 3: verify the roster
	after, err := client.Activity(ctx, cfg.Activity)
	if err != nil {
		return stats, fmt.Errorf("roster fetch failed: %w", err)
	}
	stats.RosterAfter = len(after.Participants)
	verifyErr := verifyRoster(before, after, stats.AcceptedEmail, cfg.AllowOverCapacity)

	// Step 4: remove what was added and check the roster is restored
	if err := cleanup(ctx, client, cfg, stats); err != nil {
		return stats, err
	}
	restored, err := client.Activity(ctx, cfg.Activity)
	if err != nil {
		return stats, fmt.Errorf("roster fetch failed: %w", err)
	}
	if err := verifyRestored(before, restored); err != nil {
		return stats, fmt.Errorf("cleanup verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)

	if verifyErr != nil {
		return stats, fmt.Errorf("roster verification failed: %w", verifyErr)
	}
	log.Info(ctx, "load check passed")
	return stats, nil
}

// checkService verifies the service lists activities and returns the
// target activity's current state.
func checkService(ctx context.Context, client *HTTPClient, name string) (Activity, error) {
	all, err := client.ListActivities(ctx)
	if err != nil {
		return Activity{}, err
	}
	a, ok := all[name]
	if !ok {
		return Activity{}, fmt.Errorf("activity %q not listed", name)
	}
	return a, nil
}

// generateEmails returns n distinct addresses scoped to runID followed by
// dups extra copies of the first one.
func generateEmails(runID string, n, dups int) []string {
	prefix := runID
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	out := make([]string, 0, n+dups)
	for i := 0; i < n; i++ {
		out = append(out, fmt.Sprintf("lc-%s-%d@example.com", prefix, i))
	}
	if n > 0 {
		for i := 0; i < dups; i++ {
			out = append(out, out[0])
		}
	}
	return out
}

type callFunc func(ctx context.Context, email string) (Outcome, error)

// submit runs call for every email on a pool of workers.
func submit(ctx context.Context, workers int, emails []string, call callFunc) []Outcome {
	if workers < 1 {
		workers = 1
	}
	jobs := make(chan int, workers*workerChannelMultiplier)
	outcomes := make([]Outcome, len(emails))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out, err := call(ctx, emails[i])
				if err != nil {
					out.Status = 0
				}
				outcomes[i] = out
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range emails {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()

	wg.Wait()
	return outcomes
}

func tally(outcomes []Outcome, stats *Stats) {
	for _, o := range outcomes {
		switch {
		case o.Status == http.StatusOK:
			stats.Accepted++
			stats.AcceptedEmail = append(stats.AcceptedEmail, o.Email)
		case o.Status == 0:
			stats.Failed++
		default:
			code := o.Code
			if code == "" {
				code = fmt.Sprintf("http_%d", o.Status)
			}
			stats.Rejected[code]++
		}
	}
}

// cleanup unregisters every accepted email.
func cleanup(ctx context.Context, client *HTTPClient, cfg *Config, stats *Stats) error {
	outcomes := submit(ctx, cfg.Workers, stats.AcceptedEmail, func(ctx context.Context, email string) (Outcome, error) {
		return client.Unregister(ctx, cfg.Activity, email)
	})
	var failed int
	for _, o := range outcomes {
		if o.Status == http.StatusOK {
			stats.Unregistered++
			continue
		}
		failed++
	}
	if failed > 0 {
		return fmt.Errorf("cleanup failed for %d of %d participants", failed, len(outcomes))
	}
	return nil
}

// displayFinalStats logs the run summary.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var perSecond float64
	if stats.Duration > 0 {
		perSecond = float64(stats.Attempts) / stats.Duration.Seconds()
	}
	log.Info(ctx, "final statistics",
		logger.Int("attempts", stats.Attempts),
		logger.Int("accepted", stats.Accepted),
		logger.Int("failed", stats.Failed),
		logger.Any("rejected", stats.Rejected),
		logger.Int("rosterBefore", stats.RosterBefore),
		logger.Int("rosterAfter", stats.RosterAfter),
		logger.Int("capacity", stats.Capacity),
		logger.Int("unregistered", stats.Unregistered),
		logger.Duration("duration", stats.Duration),
		logger.Any("attemptsPerSecond", perSecond))
}
