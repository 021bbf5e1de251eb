package finance

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

var hundred = decimal.NewFromInt(100)

type (
	// PeriodSummary totals income and expense; transfers never count.
	PeriodSummary struct {
		Income  decimal.Decimal `json:"income"`
		Expense decimal.Decimal `json:"expense"`
		Net     decimal.Decimal `json:"net"`
	}

	CategoryAmount struct {
		Category         core.Category   `json:"category"`
		Amount           decimal.Decimal `json:"amount"`
		Percentage       float64         `json:"percentage"`
		TransactionCount int             `json:"transactionCount"`
	}

	// FinancialSummary backs the dashboard.
	FinancialSummary struct {
		NetWorthSummary
		TodayIncome  decimal.Decimal `json:"todayIncome"`
		TodayExpense decimal.Decimal `json:"todayExpense"`
		MonthIncome  decimal.Decimal `json:"monthIncome"`
		MonthExpense decimal.Decimal `json:"monthExpense"`
	}

	DayGroup struct {
		Date         string             `json:"date"`
		Transactions []core.Transaction `json:"transactions"`
		TotalIncome  decimal.Decimal    `json:"totalIncome"`
		TotalExpense decimal.Decimal    `json:"totalExpense"`
	}

	// TransactionFilter narrows a transaction list. Zero fields do not filter.
	TransactionFilter struct {
		Start      time.Time
		End        time.Time
		AccountID  string
		CategoryID string
		Type       core.TransactionType
		Search     string
	}
)

// InRange keeps the transactions dated within [StartOfDay(start), EndOfDay(end)].
// It is the only date filter; every period report goes through it.
func InRange(txs []core.Transaction, start, end time.Time) []core.Transaction {
	r := core.DayRange(start, end)
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if r.Contains(tx.Date) {
			out = append(out, tx)
		}
	}
	return out
}

// Totals sums an already filtered list.
func Totals(txs []core.Transaction) PeriodSummary {
	income, expense := decimal.Zero, decimal.Zero
	for _, tx := range txs {
		switch tx.Type {
		case core.Income:
			income = income.Add(tx.Amount)
		case core.Expense:
			expense = expense.Add(tx.Amount)
		}
	}
	return PeriodSummary{Income: income, Expense: expense, Net: income.Sub(expense)}
}

// Summarize totals the transactions that fall within [start, end].
func Summarize(txs []core.Transaction, start, end time.Time) PeriodSummary {
	return Totals(InRange(txs, start, end))
}

// SummarizeRange is Summarize over a precomputed range.
func SummarizeRange(txs []core.Transaction, r core.Range) PeriodSummary {
	return Summarize(txs, r.Start, r.End)
}

// CategoryBreakdown groups non-transfer transactions by category, sorted by
// amount descending. Transactions whose category is unknown, or whose
// category polarity does not match the transaction type, are left out.
// Percentages are shares of the resolved total.
func CategoryBreakdown(txs []core.Transaction, categories []core.Category) []CategoryAmount {
	byID := make(map[string]core.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	grouped := make(map[string]*CategoryAmount)
	total := decimal.Zero
	for _, tx := range txs {
		if tx.Type == core.Transfer || tx.CategoryID == "" {
			continue
		}
		cat, ok := byID[tx.CategoryID]
		if !ok || cat.Type != tx.Type {
			continue
		}
		entry, ok := grouped[cat.ID]
		if !ok {
			entry = &CategoryAmount{Category: cat, Amount: decimal.Zero}
			grouped[cat.ID] = entry
		}
		entry.Amount = entry.Amount.Add(tx.Amount)
		entry.TransactionCount++
		total = total.Add(tx.Amount)
	}

	out := make([]CategoryAmount, 0, len(grouped))
	for _, entry := range grouped {
		if total.IsPositive() {
			entry.Percentage = entry.Amount.Div(total).Mul(hundred).InexactFloat64()
		}
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Category.Name < out[j].Category.Name
	})
	return out
}

func ofType(txs []core.Transaction, typ core.TransactionType) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Type == typ {
			out = append(out, tx)
		}
	}
	return out
}

func ExpenseBreakdown(txs []core.Transaction, categories []core.Category) []CategoryAmount {
	return CategoryBreakdown(ofType(txs, core.Expense), categories)
}

func IncomeBreakdown(txs []core.Transaction, categories []core.Category) []CategoryAmount {
	return CategoryBreakdown(ofType(txs, core.Income), categories)
}

// TopCategories returns the largest expense categories, at most limit of them.
func TopCategories(txs []core.Transaction, categories []core.Category, limit int) []CategoryAmount {
	b := ExpenseBreakdown(txs, categories)
	if limit >= 0 && len(b) > limit {
		b = b[:limit]
	}
	return b
}

// Dashboard assembles net worth with today's and this month's totals.
func Dashboard(accounts []core.Account, txs []core.Transaction, now time.Time) FinancialSummary {
	today := SummarizeRange(txs, core.Today(now))
	month := SummarizeRange(txs, core.ThisMonth(now))
	return FinancialSummary{
		NetWorthSummary: NetWorth(accounts, txs),
		TodayIncome:     today.Income,
		TodayExpense:    today.Expense,
		MonthIncome:     month.Income,
		MonthExpense:    month.Expense,
	}
}

// Filter applies f and returns the matches newest first.
func Filter(txs []core.Transaction, f TransactionFilter) []core.Transaction {
	if !f.Start.IsZero() && !f.End.IsZero() {
		txs = InRange(txs, f.Start, f.End)
	}
	query := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if f.AccountID != "" && tx.AccountID != f.AccountID && tx.ToAccountID != f.AccountID {
			continue
		}
		if f.CategoryID != "" && tx.CategoryID != f.CategoryID {
			continue
		}
		if f.Type != "" && tx.Type != f.Type {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(tx.Note), query) {
			continue
		}
		out = append(out, tx)
	}
	sortNewestFirst(out)
	return out
}

// GroupByDate buckets transactions per calendar day, newest day first.
func GroupByDate(txs []core.Transaction) []DayGroup {
	index := make(map[string]int)
	var groups []DayGroup
	for _, tx := range txs {
		key := tx.Date.Format(time.DateOnly)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, DayGroup{Date: key, TotalIncome: decimal.Zero, TotalExpense: decimal.Zero})
		}
		g := &groups[i]
		g.Transactions = append(g.Transactions, tx)
		switch tx.Type {
		case core.Income:
			g.TotalIncome = g.TotalIncome.Add(tx.Amount)
		case core.Expense:
			g.TotalExpense = g.TotalExpense.Add(tx.Amount)
		}
	}
	for i := range groups {
		sortNewestFirst(groups[i].Transactions)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Date > groups[j].Date })
	return groups
}

func sortNewestFirst(txs []core.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].Date.After(txs[j].Date) })
}
