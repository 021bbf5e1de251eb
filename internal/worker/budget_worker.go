package worker

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/log"
)

// Consumer delivers transaction events from the broker.
type Consumer interface {
	ConsumeTransactions(ctx context.Context, handler amqp.Handler) error
}

// BudgetWorker feeds every transaction event to a handler, typically
// BudgetAlerter.HandleEvent.
type BudgetWorker struct {
	consumer Consumer
	handler  amqp.Handler
	logger   *log.Logger
}

func NewBudgetWorker(c Consumer, handler amqp.Handler, logger *log.Logger) *BudgetWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &BudgetWorker{
		consumer: c,
		handler:  handler,
		logger:   logger.WithComponent(log.ComponentBudget),
	}
}

// Run consumes until ctx is cancelled. Cancellation is a clean stop.
func (w *BudgetWorker) Run(ctx context.Context) error {
	w.logger.Info("Budget worker consuming transaction events")
	err := w.consumer.ConsumeTransactions(ctx, w.handle)
	if err == nil || errors.Is(err, context.Canceled) {
		w.logger.Info("Budget worker stopped")
		return nil
	}
	return fmt.Errorf("consume transactions: %w", err)
}

func (w *BudgetWorker) handle(ctx context.Context, e *amqp.TransactionEvent) error {
	if err := w.handler(ctx, e); err != nil {
		w.logger.ErrorContext(ctx, "Failed to evaluate budget",
			log.FieldError, err,
			log.FieldTransactionID, e.ID)
		return err
	}
	return nil
}
