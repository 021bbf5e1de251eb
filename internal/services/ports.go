package services

import (
	"context"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/recurring"
	"fintrack/internal/storage"
)

// Publisher emits an event for every stored transaction. A nil Publisher
// disables messaging.
type Publisher interface {
	PublishTransactionCreated(ctx context.Context, t core.Transaction) error
}

// Invalidator drops derived data after a write.
type Invalidator interface {
	Invalidate()
}

type TransactionStore interface {
	GetAccount(ctx context.Context, id string) (core.Account, error)
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
}

type AccountStore interface {
	CreateAccount(ctx context.Context, a core.Account, initialBalance decimal.Decimal) (core.Account, error)
	UpdateAccount(ctx context.Context, a core.Account) (core.Account, error)
	DeleteAccount(ctx context.Context, id string) error
}

type BudgetStore interface {
	ListCategories(ctx context.Context) ([]core.Category, error)
	UpsertBudget(ctx context.Context, b core.Budget) (core.Budget, error)
}

// SnapshotStore serves every read-side report.
type SnapshotStore interface {
	Snapshot(ctx context.Context) (storage.Snapshot, error)
	GetSettings(ctx context.Context) (core.AppSettings, error)
}

type RecurringRuleStore interface {
	GetAccount(ctx context.Context, id string) (core.Account, error)
	GetRecurringRule(ctx context.Context, id string) (core.RecurringTransaction, error)
	CreateRecurringRule(ctx context.Context, rule core.RecurringTransaction) (core.RecurringTransaction, error)
	UpdateRecurringRule(ctx context.Context, rule core.RecurringTransaction) (core.RecurringTransaction, error)
	SetRecurringEnabled(ctx context.Context, id string, enabled bool) error
	DeleteRecurringRule(ctx context.Context, id string) error
}

type RecurringStore interface {
	Snapshot(ctx context.Context) (storage.Snapshot, error)
	ApplyRecurringResult(ctx context.Context, res recurring.Result) ([]core.Transaction, error)
}

// Compile-time checks that the SQLite store satisfies every port.
var (
	_ TransactionStore   = (*storage.SQLiteRepository)(nil)
	_ AccountStore       = (*storage.SQLiteRepository)(nil)
	_ BudgetStore        = (*storage.SQLiteRepository)(nil)
	_ SnapshotStore      = (*storage.SQLiteRepository)(nil)
	_ RecurringStore     = (*storage.SQLiteRepository)(nil)
	_ RecurringRuleStore = (*storage.SQLiteRepository)(nil)
)
