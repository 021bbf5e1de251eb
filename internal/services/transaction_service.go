package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/finance"
	"fintrack/internal/storage"
)

var (
	ErrUnknownAccount     = errors.New("unknown account")
	ErrUnknownCategory    = errors.New("unknown category")
	ErrNotExpenseCategory = errors.New("budgets apply to expense categories only")
)

// TransactionService orchestrates transaction writes across SQLite and AMQP.
type TransactionService struct {
	store     TransactionStore
	publisher Publisher
}

func NewTransactionService(store TransactionStore, publisher Publisher) *TransactionService {
	return &TransactionService{store: store, publisher: publisher}
}

// Create validates t, checks the accounts it references, stores it under a
// new id and announces it. Publish failures are logged and never fail the call.
func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.requireAccount(ctx, t.AccountID); err != nil {
		return core.Transaction{}, err
	}
	if t.Type == core.Transfer {
		if err := s.requireAccount(ctx, t.ToAccountID); err != nil {
			return core.Transaction{}, err
		}
	}

	t.ID = uuid.NewString()
	saved, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	publish(ctx, s.publisher, saved)
	return saved, nil
}

// Update replaces an existing transaction after the same checks as Create. A
// zero Date keeps the stored date. Edits are not announced: consumers react to
// new spending only.
func (s *TransactionService) Update(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	cur, err := s.store.GetTransaction(ctx, t.ID)
	if err != nil {
		return core.Transaction{}, err
	}
	if t.Date.IsZero() {
		t.Date = cur.Date
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.requireAccount(ctx, t.AccountID); err != nil {
		return core.Transaction{}, err
	}
	if t.Type == core.Transfer {
		if err := s.requireAccount(ctx, t.ToAccountID); err != nil {
			return core.Transaction{}, err
		}
	}
	saved, err := s.store.UpdateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	return saved, nil
}

func (s *TransactionService) requireAccount(ctx context.Context, id string) error {
	if _, err := s.store.GetAccount(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrUnknownAccount, id)
		}
		return fmt.Errorf("check account: %w", err)
	}
	return nil
}

func (s *TransactionService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteTransaction(ctx, id)
}

// List returns the transactions matching f, newest first.
func (s *TransactionService) List(ctx context.Context, f finance.TransactionFilter) ([]core.Transaction, error) {
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}
	return finance.Filter(txs, f), nil
}

func publish(ctx context.Context, p Publisher, t core.Transaction) {
	if p == nil {
		slog.DebugContext(ctx, "AMQP publisher not available, skipping event", "id", t.ID)
		return
	}
	if err := p.PublishTransactionCreated(ctx, t); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event", "id", t.ID, "error", err)
	}
}

// AccountService creates, edits and removes accounts.
type AccountService struct {
	store AccountStore
}

func NewAccountService(store AccountStore) *AccountService {
	return &AccountService{store: store}
}

// Create stores a, recording initialBalance as an opening transaction when non-zero.
func (s *AccountService) Create(ctx context.Context, a core.Account, initialBalance decimal.Decimal) (core.Account, error) {
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	return s.store.CreateAccount(ctx, a, initialBalance)
}

func (s *AccountService) Update(ctx context.Context, a core.Account) (core.Account, error) {
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	return s.store.UpdateAccount(ctx, a)
}

func (s *AccountService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteAccount(ctx, id)
}

// BudgetService manages the one-budget-per-category ceilings.
type BudgetService struct {
	store BudgetStore
}

func NewBudgetService(store BudgetStore) *BudgetService {
	return &BudgetService{store: store}
}

// Upsert sets the budget of an expense category, replacing any existing one.
func (s *BudgetService) Upsert(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return core.Budget{}, fmt.Errorf("load categories: %w", err)
	}
	var found *core.Category
	for i := range cats {
		if cats[i].ID == b.CategoryID {
			found = &cats[i]
			break
		}
	}
	if found == nil {
		return core.Budget{}, fmt.Errorf("%w: %s", ErrUnknownCategory, b.CategoryID)
	}
	if found.Type != core.Expense {
		return core.Budget{}, fmt.Errorf("%w: %s is %s", ErrNotExpenseCategory, found.Name, found.Type)
	}
	return s.store.UpsertBudget(ctx, b)
}
