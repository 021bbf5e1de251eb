package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"fintrack/internal/log"
	"fintrack/internal/recurring"
)

// RecurringProcessor materializes due occurrences of recurring rules into
// stored transactions.
type RecurringProcessor struct {
	store       RecurringStore
	engine      *recurring.Engine
	publisher   Publisher
	invalidator Invalidator
	group       singleflight.Group
}

// NewRecurringProcessor wires the processor. publisher and invalidator may be nil.
func NewRecurringProcessor(store RecurringStore, engine *recurring.Engine, publisher Publisher, invalidator Invalidator) *RecurringProcessor {
	if engine == nil {
		engine = recurring.NewEngine(recurring.DefaultMaxOccurrences)
	}
	return &RecurringProcessor{
		store:       store,
		engine:      engine,
		publisher:   publisher,
		invalidator: invalidator,
	}
}

// Process generates and stores every occurrence due on or before now and
// returns how many transactions were written. Concurrent callers share one run,
// so overlapping triggers never double-generate.
func (p *RecurringProcessor) Process(ctx context.Context, now time.Time) (int, error) {
	if p.store == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}
	v, err, shared := p.group.Do("process", func() (any, error) {
		return p.process(ctx, now)
	})
	if shared {
		recurringLog().DebugContext(ctx, "Joined in-flight recurring run")
	}
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

func (p *RecurringProcessor) process(ctx context.Context, now time.Time) (int, error) {
	snap, err := p.store.Snapshot(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load recurring rules: %w", err)
	}

	recurringLog().InfoContext(ctx, "Processing recurring transactions",
		"rules", len(snap.Recurring),
		"processing_date", now.Format(time.DateOnly))

	res, engineErr := p.engine.Process(snap.Recurring, now)
	var capErr *recurring.CapError
	switch {
	case errors.As(engineErr, &capErr):
		recurringLog().WarnContext(ctx, "Occurrence cap reached, remaining occurrences deferred to next run",
			log.FieldRuleID, capErr.RuleIDs, "max", capErr.Max)
	case engineErr != nil:
		recurringLog().ErrorContext(ctx, "Some recurring rules could not be processed", "error", engineErr)
	}

	written, err := p.store.ApplyRecurringResult(ctx, res)
	if err != nil {
		return 0, fmt.Errorf("failed to store generated transactions: %w", err)
	}

	for _, t := range written {
		publish(ctx, p.publisher, t)
	}
	if len(written) > 0 && p.invalidator != nil {
		p.invalidator.Invalidate()
	}

	recurringLog().InfoContext(ctx, "Recurring processing complete",
		"generated", len(written),
		"rules_advanced", len(res.UpdatedRules))
	return len(written), nil
}

func recurringLog() *slog.Logger {
	return slog.Default().With(log.FieldComponent, log.ComponentRecurring)
}
