package finance

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// NearLimitPercent is where a budget starts warning.
const NearLimitPercent = 80.0

// BudgetStatus is the progress of one budget within its current period.
type BudgetStatus struct {
	Budget            core.Budget     `json:"budget"`
	Category          core.Category   `json:"category"`
	Period            core.Range      `json:"period"`
	Spent             decimal.Decimal `json:"spent"`
	Remaining         decimal.Decimal `json:"remaining"`
	Percentage        float64         `json:"percentage"`
	DisplayPercentage float64         `json:"displayPercentage"` // clamped to 100 for progress bars
	IsOverBudget      bool            `json:"isOverBudget"`
	IsNearLimit       bool            `json:"isNearLimit"`
}

// BudgetProgress measures expense spending on the budget's category during the
// period containing now. The budget's own start date does not move the window.
func BudgetProgress(b core.Budget, c core.Category, txs []core.Transaction, now time.Time) BudgetStatus {
	period := core.BudgetRange(b.Period, now)
	spent := decimal.Zero
	for _, tx := range InRange(txs, period.Start, period.End) {
		if tx.Type == core.Expense && tx.CategoryID == b.CategoryID {
			spent = spent.Add(tx.Amount)
		}
	}

	var pct float64
	if b.Amount.IsPositive() {
		pct = spent.Div(b.Amount).Mul(hundred).InexactFloat64()
	}

	// Reaching the ceiling exactly already counts as over budget.
	over := spent.GreaterThan(b.Amount) || (b.Amount.IsPositive() && spent.Equal(b.Amount))

	return BudgetStatus{
		Budget:            b,
		Category:          c,
		Period:            period,
		Spent:             spent,
		Remaining:         decimal.Max(decimal.Zero, b.Amount.Sub(spent)),
		Percentage:        pct,
		DisplayPercentage: math.Min(pct, 100),
		IsOverBudget:      over,
		IsNearLimit:       !over && pct >= NearLimitPercent && pct < 100,
	}
}

// AllBudgetProgress evaluates every budget whose category still exists.
func AllBudgetProgress(budgets []core.Budget, categories []core.Category, txs []core.Transaction, now time.Time) []BudgetStatus {
	byID := make(map[string]core.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}
	out := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		c, ok := byID[b.CategoryID]
		if !ok {
			continue
		}
		out = append(out, BudgetProgress(b, c, txs, now))
	}
	return out
}
