package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/finance"
)

type AlertLevel string

const (
	AlertNearLimit  AlertLevel = "near_limit"
	AlertOverBudget AlertLevel = "over_budget"
)

// Alert reports a budget that crossed a threshold.
type Alert struct {
	Level  AlertLevel           `json:"level"`
	Status finance.BudgetStatus `json:"status"`
}

// BudgetAlerter watches created expenses and flags budgets that are close to
// or past their ceiling.
type BudgetAlerter struct {
	store SnapshotStore
	now   func() time.Time
}

func NewBudgetAlerter(store SnapshotStore, loc *time.Location) *BudgetAlerter {
	if loc == nil {
		loc = time.Local
	}
	return &BudgetAlerter{store: store, now: func() time.Time { return time.Now().In(loc) }}
}

// Handle evaluates the budget of the event's category. It returns nil when the
// event is not an expense, the category has no budget, the expense falls
// outside the current budget period, or the budget is still comfortable.
func (a *BudgetAlerter) Handle(ctx context.Context, e *amqp.TransactionEvent) (*Alert, error) {
	if e.Type != core.Expense || e.CategoryID == "" {
		return nil, nil
	}

	snap, err := a.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	var budget *core.Budget
	for i := range snap.Budgets {
		if snap.Budgets[i].CategoryID == e.CategoryID {
			budget = &snap.Budgets[i]
			break
		}
	}
	if budget == nil {
		return nil, nil
	}

	now := a.now()
	if !core.BudgetRange(budget.Period, now).Contains(e.Date) {
		return nil, nil
	}

	category := core.Category{ID: e.CategoryID}
	for _, c := range snap.Categories {
		if c.ID == e.CategoryID {
			category = c
			break
		}
	}

	status := finance.BudgetProgress(*budget, category, snap.Transactions, now)
	var level AlertLevel
	switch {
	case status.IsOverBudget:
		level = AlertOverBudget
	case status.IsNearLimit:
		level = AlertNearLimit
	default:
		return nil, nil
	}

	slog.WarnContext(ctx, "Budget alert",
		"level", level,
		"category", category.Name,
		"spent", status.Spent.String(),
		"budget", budget.Amount.String(),
		"percentage", fmt.Sprintf("%.1f", status.Percentage),
		"transaction_id", e.ID)

	return &Alert{Level: level, Status: status}, nil
}

// HandleEvent adapts Handle to the AMQP consumer callback.
func (a *BudgetAlerter) HandleEvent(ctx context.Context, e *amqp.TransactionEvent) error {
	_, err := a.Handle(ctx, e)
	return err
}
