package finance

import (
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

func amt(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func income(acct, cat string, v int64, at time.Time) core.Transaction {
	return core.Transaction{Type: core.Income, Amount: amt(v), AccountID: acct, CategoryID: cat, Date: at}
}

func expense(acct, cat string, v int64, at time.Time) core.Transaction {
	return core.Transaction{Type: core.Expense, Amount: amt(v), AccountID: acct, CategoryID: cat, Date: at}
}

func transfer(from, to string, v int64, at time.Time) core.Transaction {
	return core.Transaction{Type: core.Transfer, Amount: amt(v), AccountID: from, ToAccountID: to, Date: at}
}

var testCategories = []core.Category{
	{ID: "food", Name: "Food", Type: core.Expense},
	{ID: "rent", Name: "Rent", Type: core.Expense},
	{ID: "fun", Name: "Fun", Type: core.Expense},
	{ID: "salary", Name: "Salary", Type: core.Income},
}
