package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/recurring"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "fintrack.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func mustAccount(t *testing.T, repo *SQLiteRepository, name string) core.Account {
	t.Helper()
	a, err := repo.CreateAccount(context.Background(), core.Account{Name: name, Type: core.Bank}, decimal.Zero)
	if err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	return a
}

func categoryByName(t *testing.T, repo *SQLiteRepository, name string) core.Category {
	t.Helper()
	cats, err := repo.ListCategories(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range cats {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("category %q not found", name)
	return core.Category{}
}

func TestSeedDefaultCategories(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	n, err := repo.SeedDefaultCategories(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(core.DefaultCategories) {
		t.Errorf("seeded %d, want %d", n, len(core.DefaultCategories))
	}

	again, err := repo.SeedDefaultCategories(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if again != 0 {
		t.Errorf("second seed inserted %d, want 0", again)
	}
}

func TestCreateAccount_InitialBalance(t *testing.T) {
	tests := []struct {
		name         string
		balance      decimal.Decimal
		wantType     core.TransactionType
		wantCategory string
		wantCount    int
	}{
		{"zero records nothing", decimal.Zero, "", "", 0},
		{"positive records income", decimal.NewFromInt(500), core.Income, "Other Income", 1},
		{"negative records expense", decimal.NewFromInt(-200), core.Expense, "Other", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newTestRepo(t)
			ctx := context.Background()
			if _, err := repo.SeedDefaultCategories(ctx); err != nil {
				t.Fatal(err)
			}

			a, err := repo.CreateAccount(ctx, core.Account{Name: "Wallet", Type: core.Cash}, tt.balance)
			if err != nil {
				t.Fatalf("CreateAccount() error = %v", err)
			}
			txs, err := repo.ListTransactions(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if len(txs) != tt.wantCount {
				t.Fatalf("transactions = %d, want %d", len(txs), tt.wantCount)
			}
			if tt.wantCount == 0 {
				return
			}
			tx := txs[0]
			if tx.Type != tt.wantType || tx.AccountID != a.ID || !tx.Amount.Equal(tt.balance.Abs()) {
				t.Errorf("initial balance transaction = %+v", tx)
			}
			if tx.CategoryID != categoryByName(t, repo, tt.wantCategory).ID {
				t.Errorf("category = %s, want %s", tx.CategoryID, tt.wantCategory)
			}
		})
	}
}

func TestCreateAccount_AdjustmentCategoryRecreated(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.CreateAccount(ctx, core.Account{Name: "Card", Type: core.CreditCard, IsLiability: true}, decimal.NewFromInt(-50)); err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	c := categoryByName(t, repo, "Other")
	if c.Type != core.Expense {
		t.Errorf("adjustment category type = %s", c.Type)
	}
}

func TestDeleteAccount_Cascades(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	if _, err := repo.SeedDefaultCategories(ctx); err != nil {
		t.Fatal(err)
	}
	food := categoryByName(t, repo, "Food & Dining")
	checking := mustAccount(t, repo, "Checking")
	savings := mustAccount(t, repo, "Savings")
	cash := mustAccount(t, repo, "Cash")
	day := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	for _, tx := range []core.Transaction{
		{Type: core.Expense, Amount: decimal.NewFromInt(10), AccountID: checking.ID, CategoryID: food.ID, Date: day},
		{Type: core.Transfer, Amount: decimal.NewFromInt(20), AccountID: savings.ID, ToAccountID: checking.ID, Date: day},
		{Type: core.Expense, Amount: decimal.NewFromInt(30), AccountID: cash.ID, CategoryID: food.ID, Date: day},
	} {
		if _, err := repo.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("CreateTransaction() error = %v", err)
		}
	}

	if err := repo.DeleteAccount(ctx, checking.ID); err != nil {
		t.Fatalf("DeleteAccount() error = %v", err)
	}
	txs, err := repo.ListTransactions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 1 || txs[0].AccountID != cash.ID {
		t.Errorf("remaining transactions = %+v, want only the cash expense", txs)
	}

	if err := repo.DeleteAccount(ctx, checking.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteAccount() error = %v, want ErrNotFound", err)
	}
}

func TestTransactions_RoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	a := mustAccount(t, repo, "Checking")
	jakarta := time.FixedZone("WIB", 7*3600)
	date := time.Date(2024, 5, 1, 0, 30, 0, 0, jakarta)

	created, err := repo.CreateTransaction(ctx, core.Transaction{
		Type: core.Income, Amount: decimal.RequireFromString("1234.56"), AccountID: a.ID,
		CategoryID: "cat-salary", Date: date, Note: "May salary",
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := repo.GetTransaction(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Amount.Equal(created.Amount) || got.Note != "May salary" || got.ToAccountID != "" {
		t.Errorf("GetTransaction() = %+v", got)
	}
	if !got.Date.Equal(date) || got.Date.Day() != 1 {
		t.Errorf("Date = %v, want %v in its original offset", got.Date, date)
	}

	if _, err := repo.CreateTransaction(ctx, core.Transaction{Type: core.Expense, Amount: decimal.NewFromInt(1), AccountID: a.ID, Date: date}); !errors.Is(err, core.ErrMissingCategory) {
		t.Errorf("invalid CreateTransaction() error = %v, want ErrMissingCategory", err)
	}

	if err := repo.DeleteTransaction(ctx, created.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.GetTransaction(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetTransaction() after delete error = %v, want ErrNotFound", err)
	}
	if err := repo.DeleteTransaction(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteTransaction() error = %v, want ErrNotFound", err)
	}
}

func TestUpsertBudget(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first, err := repo.UpsertBudget(ctx, core.Budget{CategoryID: "food", Amount: decimal.NewFromInt(100), Period: core.MonthlyBudget})
	if err != nil {
		t.Fatal(err)
	}
	second, err := repo.UpsertBudget(ctx, core.Budget{CategoryID: "food", Amount: decimal.NewFromInt(250), Period: core.WeeklyBudget})
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID {
		t.Errorf("replacement changed id: %s -> %s", first.ID, second.ID)
	}

	budgets, err := repo.ListBudgets(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(budgets) != 1 {
		t.Fatalf("budgets = %d, want 1", len(budgets))
	}
	if !budgets[0].Amount.Equal(decimal.NewFromInt(250)) || budgets[0].Period != core.WeeklyBudget {
		t.Errorf("budget = %+v, want replaced amount and period", budgets[0])
	}

	if _, err := repo.UpsertBudget(ctx, core.Budget{CategoryID: "rent", Amount: decimal.NewFromInt(900), Period: core.MonthlyBudget}); err != nil {
		t.Fatal(err)
	}
	if budgets, _ = repo.ListBudgets(ctx); len(budgets) != 2 {
		t.Errorf("budgets = %d, want 2", len(budgets))
	}

	if err := repo.DeleteBudget(ctx, first.ID); err != nil {
		t.Fatal(err)
	}
	if err := repo.DeleteBudget(ctx, first.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteBudget() error = %v, want ErrNotFound", err)
	}
}

func TestApplyRecurringResult(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	a := mustAccount(t, repo, "Checking")

	rule, err := repo.CreateRecurringRule(ctx, core.RecurringTransaction{
		Type: core.Expense, Amount: decimal.NewFromInt(1200), AccountID: a.ID, CategoryID: "rent",
		Frequency: core.Monthly, StartDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), IsEnabled: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	today := time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC)
	res, err := recurring.NewEngine(0).Process([]core.RecurringTransaction{rule}, today)
	if err != nil {
		t.Fatal(err)
	}

	written, err := repo.ApplyRecurringResult(ctx, res)
	if err != nil {
		t.Fatalf("ApplyRecurringResult() error = %v", err)
	}
	if len(written) != 4 {
		t.Errorf("written = %d, want 4", len(written))
	}

	// Replaying the same result writes nothing new.
	again, err := repo.ApplyRecurringResult(ctx, res)
	if err != nil {
		t.Fatal(err)
	}
	if len(again) != 0 {
		t.Errorf("replay wrote %d, want 0", len(again))
	}

	snap, err := repo.Snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Transactions) != 4 {
		t.Errorf("snapshot transactions = %d, want 4", len(snap.Transactions))
	}
	if len(snap.Recurring) != 1 || snap.Recurring[0].LastProcessed == nil {
		t.Fatalf("snapshot rules = %+v", snap.Recurring)
	}
	if got := snap.Recurring[0].LastProcessed.Format(time.DateOnly); got != "2024-04-15" {
		t.Errorf("watermark = %s, want 2024-04-15", got)
	}

	// With the stored watermark the engine has nothing left to do.
	res, err = recurring.NewEngine(0).Process(snap.Recurring, today)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.NewTransactions) != 0 {
		t.Errorf("second run generated %d", len(res.NewTransactions))
	}
}

func TestRecurringRule_ToggleAndDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	rule, err := repo.CreateRecurringRule(ctx, core.RecurringTransaction{
		Type: core.Transfer, Amount: decimal.NewFromInt(50), AccountID: "a", ToAccountID: "b",
		Frequency: core.Weekly, StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), EndDate: &end, IsEnabled: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := repo.SetRecurringEnabled(ctx, rule.ID, false); err != nil {
		t.Fatal(err)
	}
	got, err := repo.GetRecurringRule(ctx, rule.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.IsEnabled || got.EndDate == nil || !got.EndDate.Equal(end) || got.CategoryID != "" {
		t.Errorf("GetRecurringRule() = %+v", got)
	}

	if err := repo.DeleteRecurringRule(ctx, rule.ID); err != nil {
		t.Fatal(err)
	}
	if err := repo.SetRecurringEnabled(ctx, rule.ID, true); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetRecurringEnabled() error = %v, want ErrNotFound", err)
	}
}

func TestSettings(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	s, err := repo.GetSettings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if s != core.DefaultSettings() {
		t.Errorf("GetSettings() = %+v, want defaults", s)
	}

	opened := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	if _, err := repo.SaveSettings(ctx, core.AppSettings{Theme: core.ThemeDark, Currency: "USD", Language: core.English, LastOpenedAt: &opened}); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.SaveSettings(ctx, core.AppSettings{Theme: core.ThemeDark, Currency: "EUR", Language: core.English, OnboardingCompleted: true}); err != nil {
		t.Fatal(err)
	}
	s, err = repo.GetSettings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if s.Currency != "EUR" || s.Theme != core.ThemeDark || !s.OnboardingCompleted || s.LastOpenedAt != nil {
		t.Errorf("GetSettings() = %+v", s)
	}
}

func TestClearAllAndResetSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fintrack.db")
	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if _, err := repo.SeedDefaultCategories(ctx); err != nil {
		t.Fatal(err)
	}
	if err := repo.ClearAll(ctx); err != nil {
		t.Fatal(err)
	}
	cats, err := repo.ListCategories(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(cats) != 0 {
		t.Errorf("categories after ClearAll = %d", len(cats))
	}
	repo.Close()

	if err := ResetSchema(path); err != nil {
		t.Fatalf("ResetSchema() error = %v", err)
	}
	if err := RunMigrations(path); err != nil {
		t.Fatalf("RunMigrations() after reset error = %v", err)
	}
}

func TestUpdateAccount(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	a := mustAccount(t, repo, "Checking")

	a.Name, a.Type, a.IsLiability, a.Color = "Visa", core.CreditCard, true, "#ff0000"
	updated, err := repo.UpdateAccount(ctx, a)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Name != "Visa" || updated.Type != core.CreditCard || !updated.IsLiability || updated.Color != "#ff0000" {
		t.Errorf("UpdateAccount() = %+v", updated)
	}
	if !updated.CreatedAt.Equal(a.CreatedAt) {
		t.Errorf("CreatedAt changed: %v -> %v", a.CreatedAt, updated.CreatedAt)
	}

	if _, err := repo.UpdateAccount(ctx, core.Account{ID: "missing", Name: "x", Type: core.Cash}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateAccount(missing) error = %v, want ErrNotFound", err)
	}
	if _, err := repo.UpdateAccount(ctx, core.Account{ID: a.ID, Type: core.Cash}); !errors.Is(err, core.ErrEmptyName) {
		t.Errorf("UpdateAccount(no name) error = %v, want ErrEmptyName", err)
	}
}

func TestUpdateTransaction(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	a := mustAccount(t, repo, "Checking")
	b := mustAccount(t, repo, "Savings")
	date := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	created, err := repo.CreateTransaction(ctx, core.Transaction{
		Type: core.Expense, Amount: decimal.NewFromInt(20), AccountID: a.ID, CategoryID: "food",
		Date: date, RecurringID: "rule-1", IsRecurringGenerated: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	edit := created
	edit.Type, edit.CategoryID, edit.ToAccountID = core.Transfer, "", b.ID
	edit.Amount = decimal.RequireFromString("75.25")
	updated, err := repo.UpdateTransaction(ctx, edit)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Type != core.Transfer || updated.ToAccountID != b.ID || updated.CategoryID != "" || !updated.Amount.Equal(edit.Amount) {
		t.Errorf("UpdateTransaction() = %+v", updated)
	}
	if updated.RecurringID != "rule-1" || !updated.IsRecurringGenerated {
		t.Errorf("recurring link lost: %+v", updated)
	}

	self := updated
	self.ToAccountID = a.ID
	if _, err := repo.UpdateTransaction(ctx, self); !errors.Is(err, core.ErrSelfTransfer) {
		t.Errorf("self transfer error = %v, want ErrSelfTransfer", err)
	}
	missing := updated
	missing.ID = "missing"
	if _, err := repo.UpdateTransaction(ctx, missing); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateTransaction(missing) error = %v, want ErrNotFound", err)
	}
}

func TestUpdateAndDeleteCategory(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	if _, err := repo.SeedDefaultCategories(ctx); err != nil {
		t.Fatal(err)
	}

	pets, err := repo.CreateCategory(ctx, core.Category{Name: "Pets", Type: core.Expense})
	if err != nil {
		t.Fatal(err)
	}
	pets.Name, pets.Icon = "Pet care", "paw"
	updated, err := repo.UpdateCategory(ctx, pets)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Name != "Pet care" || updated.Icon != "paw" || updated.IsDefault {
		t.Errorf("UpdateCategory() = %+v", updated)
	}

	if _, err := repo.UpsertBudget(ctx, core.Budget{CategoryID: pets.ID, Amount: decimal.NewFromInt(50), Period: core.MonthlyBudget}); err != nil {
		t.Fatal(err)
	}
	if err := repo.DeleteCategory(ctx, pets.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.GetCategory(ctx, pets.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetCategory() after delete error = %v, want ErrNotFound", err)
	}
	if budgets, _ := repo.ListBudgets(ctx); len(budgets) != 0 {
		t.Errorf("budgets after category delete = %d, want 0", len(budgets))
	}

	food := categoryByName(t, repo, "Food & Dining")
	if err := repo.DeleteCategory(ctx, food.ID); !errors.Is(err, ErrDefaultCategory) {
		t.Errorf("DeleteCategory(default) error = %v, want ErrDefaultCategory", err)
	}
	if err := repo.DeleteCategory(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteCategory(missing) error = %v, want ErrNotFound", err)
	}
}

func TestUpdateRecurringRule_KeepsWatermark(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	a := mustAccount(t, repo, "Checking")

	rule, err := repo.CreateRecurringRule(ctx, core.RecurringTransaction{
		Type: core.Expense, Amount: decimal.NewFromInt(10), AccountID: a.ID, CategoryID: "coffee",
		Frequency: core.Daily, StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), IsEnabled: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	res, err := recurring.NewEngine(0).Process([]core.RecurringTransaction{rule}, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := repo.ApplyRecurringResult(ctx, res); err != nil {
		t.Fatal(err)
	}

	rule.Amount = decimal.NewFromInt(12)
	rule.Frequency = core.Weekly
	rule.LastProcessed = nil
	updated, err := repo.UpdateRecurringRule(ctx, rule)
	if err != nil {
		t.Fatal(err)
	}
	if !updated.Amount.Equal(decimal.NewFromInt(12)) || updated.Frequency != core.Weekly {
		t.Errorf("UpdateRecurringRule() = %+v", updated)
	}
	if updated.LastProcessed == nil || updated.LastProcessed.Format(time.DateOnly) != "2024-01-03" {
		t.Errorf("watermark = %v, want 2024-01-03 kept", updated.LastProcessed)
	}

	rule.ID = "missing"
	if _, err := repo.UpdateRecurringRule(ctx, rule); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateRecurringRule(missing) error = %v, want ErrNotFound", err)
	}
}
