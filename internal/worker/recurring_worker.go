// Package worker runs the background loops behind the fintrack binaries.
package worker

import (
	"context"
	"errors"
	"time"

	"fintrack/internal/log"
)

// Processor generates due recurring occurrences.
type Processor interface {
	Process(ctx context.Context, now time.Time) (int, error)
}

// RecurringWorker triggers the processor on startup and then on every tick.
type RecurringWorker struct {
	processor Processor
	interval  time.Duration
	logger    *log.Logger
	now       func() time.Time
}

// NewRecurringWorker builds a worker that ticks every interval. now supplies
// the processing time in the user's time zone; nil means time.Now.
func NewRecurringWorker(p Processor, interval time.Duration, logger *log.Logger, now func() time.Time) *RecurringWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	if now == nil {
		now = time.Now
	}
	return &RecurringWorker{
		processor: p,
		interval:  interval,
		logger:    logger.WithComponent(log.ComponentWorker),
		now:       now,
	}
}

// Run blocks until ctx is cancelled. A failed run is logged and retried on the
// next tick.
func (w *RecurringWorker) Run(ctx context.Context) error {
	w.logger.Info("Recurring worker started", "interval", w.interval)
	w.runOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Recurring worker stopped")
			return nil
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *RecurringWorker) runOnce(ctx context.Context) {
	start := time.Now()
	n, err := w.processor.Process(ctx, w.now())
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		w.logger.ErrorContext(ctx, "Recurring run failed",
			log.FieldError, err,
			log.FieldOperation, log.OpProcess)
		return
	}
	w.logger.InfoContext(ctx, "Recurring run complete",
		log.FieldGenerated, n,
		log.FieldDuration, time.Since(start).Milliseconds(),
		"next_check", w.now().Add(w.interval).Format("15:04:05"))
}
