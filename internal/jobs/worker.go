package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/telemetry"
)

// JobProcessor defines the interface for processing jobs
type JobProcessor interface {
	ProcessJobs(ctx context.Context) error
}

// Worker runs a JobProcessor on a fixed interval.
type Worker struct {
	name         string
	processor    JobProcessor
	pollInterval time.Duration
	runOnStart   bool
	logger       *slog.Logger

	stopOnce sync.Once
	stopChan chan struct{}
	doneChan chan struct{}
}

type WorkerOption func(*Worker)

// WithRunOnStart processes once immediately instead of waiting a full interval.
func WithRunOnStart() WorkerOption {
	return func(w *Worker) { w.runOnStart = true }
}

func WithWorkerLogger(l *slog.Logger) WorkerOption {
	return func(w *Worker) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWorker creates a new Worker instance
func NewWorker(name string, processor JobProcessor, pollInterval time.Duration, opts ...WorkerOption) *Worker {
	w := &Worker{
		name:         name,
		processor:    processor,
		pollInterval: pollInterval,
		logger:       slog.Default(),
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With("component", "worker", "worker", name)
	return w
}

// Start runs the polling loop until ctx is cancelled or Stop is called.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	defer close(w.doneChan)

	w.logger.Info("worker started", "interval", w.pollInterval.String())

	if w.runOnStart {
		w.run(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker stopped", "reason", "context cancelled")
			return
		case <-w.stopChan:
			w.logger.Info("worker stopped", "reason", "stop requested")
			return
		case <-ticker.C:
			w.run(ctx)
		}
	}
}

// run processes one tick inside its own Sentry transaction.
func (w *Worker) run(ctx context.Context) {
	ctx, span := telemetry.StartTransaction(ctx, "worker "+w.name, "job.run")
	defer span.End()

	if err := w.processor.ProcessJobs(ctx); err != nil {
		w.logger.Error("job run failed", "error", err)
		span.SetError(err)
		return
	}
	span.SetStatus(sentry.SpanStatusOK)
}

// Stop signals the loop to exit and waits for the current run to finish.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stopChan) })
	<-w.doneChan
}
