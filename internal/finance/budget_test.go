package finance

import (
	"testing"
	"time"

	"fintrack/internal/core"
)

func TestBudgetProgressThresholds(t *testing.T) {
	now := time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)
	budget := core.Budget{ID: "b", CategoryID: "food", Amount: amt(100), Period: core.MonthlyBudget}
	cat := testCategories[0]

	tests := []struct {
		name        string
		spent       int64
		wantPct     float64
		wantDisplay float64
		wantOver    bool
		wantNear    bool
		wantRemain  int64
	}{
		{"well under", 50, 50, 50, false, false, 50},
		{"near limit at 80", 80, 80, 80, false, true, 20},
		{"near limit at 99", 99, 99, 99, false, true, 1},
		{"exactly at limit", 100, 100, 100, true, false, 0},
		{"over", 150, 150, 100, true, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs := []core.Transaction{expense("a", "food", tt.spent, day(2024, 3, 2))}
			got := BudgetProgress(budget, cat, txs, now)
			if !got.Spent.Equal(amt(tt.spent)) {
				t.Errorf("spent = %s", got.Spent)
			}
			if got.Percentage != tt.wantPct || got.DisplayPercentage != tt.wantDisplay {
				t.Errorf("percentage = %f display = %f", got.Percentage, got.DisplayPercentage)
			}
			if got.IsOverBudget != tt.wantOver || got.IsNearLimit != tt.wantNear {
				t.Errorf("over = %v near = %v", got.IsOverBudget, got.IsNearLimit)
			}
			if got.IsOverBudget && got.IsNearLimit {
				t.Error("over budget and near limit are exclusive")
			}
			if !got.Remaining.Equal(amt(tt.wantRemain)) {
				t.Errorf("remaining = %s", got.Remaining)
			}
		})
	}
}

func TestBudgetProgressOnlyCountsCurrentPeriodExpenses(t *testing.T) {
	now := time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC) // Thursday
	txs := []core.Transaction{
		expense("a", "food", 10, day(2024, 3, 11)),  // Monday this week
		expense("a", "food", 20, day(2024, 3, 17)),  // Sunday this week
		expense("a", "food", 40, day(2024, 3, 10)),  // last week, same month
		expense("a", "rent", 80, day(2024, 3, 12)),  // other category
		income("a", "food", 160, day(2024, 3, 12)),  // not an expense
		expense("a", "food", 320, day(2024, 2, 28)), // last month
	}
	weekly := core.Budget{CategoryID: "food", Amount: amt(100), Period: core.WeeklyBudget,
		StartDate: day(2020, 1, 1)}
	if got := BudgetProgress(weekly, testCategories[0], txs, now); !got.Spent.Equal(amt(30)) {
		t.Errorf("weekly spent = %s, want 30", got.Spent)
	}
	monthly := weekly
	monthly.Period = core.MonthlyBudget
	if got := BudgetProgress(monthly, testCategories[0], txs, now); !got.Spent.Equal(amt(70)) {
		t.Errorf("monthly spent = %s, want 70", got.Spent)
	}
}

func TestBudgetProgressZeroAmount(t *testing.T) {
	now := time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)
	b := core.Budget{CategoryID: "food", Period: core.MonthlyBudget}
	got := BudgetProgress(b, testCategories[0], nil, now)
	if got.Percentage != 0 || got.IsOverBudget || got.IsNearLimit {
		t.Fatalf("unexpected status for empty zero budget: %+v", got)
	}
	spent := BudgetProgress(b, testCategories[0], []core.Transaction{expense("a", "food", 1, day(2024, 3, 1))}, now)
	if spent.Percentage != 0 || !spent.IsOverBudget {
		t.Fatalf("spending on a zero budget should be over without NaN: %+v", spent)
	}
}

func TestAllBudgetProgressSkipsUnknownCategories(t *testing.T) {
	now := time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)
	budgets := []core.Budget{
		{ID: "1", CategoryID: "food", Amount: amt(100), Period: core.MonthlyBudget},
		{ID: "2", CategoryID: "deleted", Amount: amt(100), Period: core.MonthlyBudget},
	}
	got := AllBudgetProgress(budgets, testCategories, nil, now)
	if len(got) != 1 || got[0].Budget.ID != "1" {
		t.Fatalf("unexpected progress list %+v", got)
	}
}
