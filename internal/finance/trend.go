package finance

import (
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// TrendPoint is one bucket of a trend series. Balance is the running net flow
// since the start of the window, not an account balance.
type TrendPoint struct {
	Date    string          `json:"date"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

// DailyTrend returns one point per day from start to end inclusive. An
// inverted window yields an empty, non-nil series.
func DailyTrend(txs []core.Transaction, start, end time.Time) []TrendPoint {
	points := make([]TrendPoint, 0)
	running := decimal.Zero
	for day := core.StartOfDay(start); !day.After(end); day = day.AddDate(0, 0, 1) {
		s := Summarize(txs, day, day)
		running = running.Add(s.Net)
		points = append(points, TrendPoint{
			Date:    day.Format(time.DateOnly),
			Income:  s.Income,
			Expense: s.Expense,
			Balance: running,
		})
	}
	return points
}

// MonthlyTrend returns one point per calendar month for the last months
// months, the month containing now being the last one.
func MonthlyTrend(txs []core.Transaction, months int, now time.Time) []TrendPoint {
	if months <= 0 {
		return []TrendPoint{}
	}
	points := make([]TrendPoint, 0, months)
	running := decimal.Zero
	first := core.StartOfMonth(now).AddDate(0, -(months - 1), 0)
	for i := 0; i < months; i++ {
		month := first.AddDate(0, i, 0)
		s := SummarizeRange(txs, core.ThisMonth(month))
		running = running.Add(s.Net)
		points = append(points, TrendPoint{
			Date:    month.Format("2006-01"),
			Income:  s.Income,
			Expense: s.Expense,
			Balance: running,
		})
	}
	return points
}
