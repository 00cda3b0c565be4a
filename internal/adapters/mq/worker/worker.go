// Package worker drains the roster change queue into the change journal.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/okian/mergington/internal/adapters/mq/queue"
	"github.com/okian/mergington/internal/domain/model"
	"github.com/okian/mergington/pkg/logger"
	"github.com/okian/mergington/pkg/metrics"
)

const (
	defaultWorkerCount  = 1
	poolShutdownTimeout = 10 * time.Second
)

// Journal stores processed changes.
type Journal interface {
	Append(ctx context.Context, ch model.Change) error
}

// Queue defines how workers receive changes.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Change
}

// Worker consumes changes until its queue channel closes or ctx is done.
type Worker struct {
	queue   Queue
	journal Journal
	name    string
	now     func() time.Time

	done chan struct{}

	logger logger.Logger
}

// NewWorker creates a worker reading from q and writing to j.
func NewWorker(q Queue, j Journal, opts ...Option) *Worker {
	w := &Worker{
		queue:   q,
		journal: j,
		name:    "worker",
		now:     time.Now,
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run processes changes until the queue channel is closed and drained or
// ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	changes := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case ch, ok := <-changes:
			if !ok {
				return
			}
			metrics.RecordQueueDequeue()
			if err := w.process(ctx, ch); err != nil {
				w.logger.Error(ctx, "error processing change", logger.String("change_id", ch.ID), logger.Error(err))
			}
		}
	}
}

// Done is closed when Run returns.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

func (w *Worker) process(ctx context.Context, ch model.Change) error { //nolint:gocritic // hugeParam: passed by value for channel semantics
	if err := w.journal.Append(ctx, ch); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "journal_error")
		return fmt.Errorf("append change %s: %w", ch.ID, err)
	}

	metrics.RecordWorkerProcessed()
	if !ch.At.IsZero() {
		metrics.RecordWorkerProcessingLatency(float64(w.now().Sub(ch.At).Microseconds()) / 1000)
	}
	w.logger.Debug(ctx, "change recorded",
		logger.String("change_id", ch.ID),
		logger.String("kind", string(ch.Kind)),
		logger.String("activity", ch.Activity),
		logger.Int("roster_size", ch.RosterSize))
	return nil
}

// Pool runs a fixed number of workers over one queue.
type Pool struct {
	workers []*Worker
	queue   Queue
	cancel  context.CancelFunc

	logger logger.Logger
}

// NewPool creates a pool of workerCount workers.
func NewPool(workerCount int, q Queue, j Journal) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}
	p := &Pool{
		workers: make([]*Worker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		p.workers[i] = NewWorker(q, j, WithName("worker-"+strconv.Itoa(i)))
	}
	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Start launches every worker. Workers outlive ctx cancellation only
// through Shutdown, which drains the queue first.
func (p *Pool) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	p.cancel = cancel
	for _, w := range p.workers {
		go w.Run(runCtx)
	}
}

// Shutdown closes the queue, lets the workers drain it and waits for them.
// Workers still running when ctx expires are cancelled.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
		if timedOut {
			break
		}
	}
	if p.cancel != nil {
		p.cancel()
	}
	if timedOut {
		return fmt.Errorf("worker pool shutdown: %w", shutdownCtx.Err())
	}
	return nil
}
