package worker

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

func quietLogger() *log.Logger {
	return log.New(log.Config{Output: io.Discard})
}

type countingProcessor struct {
	mu    sync.Mutex
	calls int
	err   error
	seen  chan time.Time
}

func (p *countingProcessor) Process(ctx context.Context, now time.Time) (int, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	select {
	case p.seen <- now:
	default:
	}
	return 1, p.err
}

func TestRecurringWorker_RunsOnStartupAndOnTick(t *testing.T) {
	p := &countingProcessor{seen: make(chan time.Time, 8)}
	fixed := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	w := NewRecurringWorker(p, 10*time.Millisecond, quietLogger(), func() time.Time { return fixed })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	for i := 0; i < 2; i++ {
		select {
		case got := <-p.seen:
			if !got.Equal(fixed) {
				t.Errorf("processor saw now = %v, want %v", got, fixed)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("processor called %d times, want at least 2", i)
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() error = %v", err)
	}
}

func TestRecurringWorker_SurvivesFailures(t *testing.T) {
	p := &countingProcessor{seen: make(chan time.Time, 8), err: errors.New("database is locked")}
	w := NewRecurringWorker(p, 5*time.Millisecond, quietLogger(), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	<-p.seen
	<-p.seen
	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() error = %v", err)
	}
}

type fakeConsumer struct {
	events []*amqp.TransactionEvent
	err    error
	failed int
}

func (c *fakeConsumer) ConsumeTransactions(ctx context.Context, handler amqp.Handler) error {
	for _, e := range c.events {
		if err := handler(ctx, e); err != nil {
			c.failed++
		}
	}
	if c.err != nil {
		return c.err
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestBudgetWorker(t *testing.T) {
	events := []*amqp.TransactionEvent{
		{ID: "t1", Type: core.Expense},
		{ID: "t2", Type: core.Expense},
		{ID: "t3", Type: core.Income},
	}

	t.Run("handles events until cancelled", func(t *testing.T) {
		c := &fakeConsumer{events: events}
		var seen []string
		handler := func(ctx context.Context, e *amqp.TransactionEvent) error {
			seen = append(seen, e.ID)
			if e.ID == "t2" {
				return errors.New("snapshot failed")
			}
			return nil
		}
		w := NewBudgetWorker(c, handler, quietLogger())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := w.Run(ctx); err != nil {
			t.Errorf("Run() error = %v", err)
		}
		if len(seen) != 3 {
			t.Errorf("handled %v, want 3 events", seen)
		}
		if c.failed != 1 {
			t.Errorf("failed = %d, want 1 (handler errors must reach the consumer)", c.failed)
		}
	})

	t.Run("reports consumer failure", func(t *testing.T) {
		c := &fakeConsumer{err: amqp.ErrCircuitOpen}
		w := NewBudgetWorker(c, func(context.Context, *amqp.TransactionEvent) error { return nil }, quietLogger())
		if err := w.Run(context.Background()); !errors.Is(err, amqp.ErrCircuitOpen) {
			t.Errorf("Run() error = %v, want ErrCircuitOpen", err)
		}
	})
}
