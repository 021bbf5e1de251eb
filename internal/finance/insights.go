package finance

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"fintrack/internal/core"
)

// InsightInput carries everything the insight generator reads.
// Previous is nil when there is no prior period to compare with.
type InsightInput struct {
	Current   PeriodSummary
	Previous  *PeriodSummary
	Breakdown []CategoryAmount // expense breakdown of the current period
	Now       time.Time
	Currency  string
	Language  core.Language
}

// Insights returns short sentences about the current month. Each one is
// computed independently and skipped when its data is missing.
func Insights(in InsightInput) []string {
	var out []string

	if len(in.Breakdown) > 0 {
		top := in.Breakdown[0]
		out = append(out, fmt.Sprintf("Your biggest expense this month is %s (%.0f%% of expenses)",
			top.Category.Name, top.Percentage))
	}

	if in.Previous != nil {
		diff := in.Current.Net.Sub(in.Previous.Net)
		switch diff.Sign() {
		case 1:
			out = append(out, fmt.Sprintf("You've saved %s more than last month!",
				FormatAmount(diff, in.Currency, in.Language)))
		case -1:
			out = append(out, fmt.Sprintf("Your savings decreased by %s compared to last month",
				FormatAmount(diff.Abs(), in.Currency, in.Language)))
		}
	}

	if !in.Now.IsZero() && in.Current.Income.IsPositive() {
		elapsed := decimal.NewFromInt(int64(in.Now.Day()))
		days := decimal.NewFromInt(int64(core.DaysInMonth(in.Now)))
		projected := in.Current.Expense.Div(elapsed).Mul(days)
		if projected.GreaterThan(in.Current.Income) {
			out = append(out, "At this rate, expenses may exceed income this month")
		}
	}

	if in.Current.Net.IsPositive() && in.Current.Income.IsPositive() {
		rate := in.Current.Net.Div(in.Current.Income).Mul(hundred).InexactFloat64()
		out = append(out, fmt.Sprintf("You're saving %.0f%% of your income this month", rate))
	}

	return out
}

// MonthInsights derives the input for Insights from raw transactions.
func MonthInsights(txs []core.Transaction, categories []core.Category, now time.Time, settings core.AppSettings) []string {
	month := core.ThisMonth(now)
	current := InRange(txs, month.Start, month.End)
	in := InsightInput{
		Current:   Totals(current),
		Breakdown: ExpenseBreakdown(current, categories),
		Now:       now,
		Currency:  settings.Currency,
		Language:  settings.Language,
	}
	last := core.LastMonth(now)
	if prev := InRange(txs, last.Start, last.End); len(prev) > 0 {
		s := Totals(prev)
		in.Previous = &s
	}
	return Insights(in)
}

// FormatAmount renders a whole-unit amount with locale digit grouping,
// prefixed by the currency label.
func FormatAmount(amount decimal.Decimal, currency string, lang core.Language) string {
	tag := language.Indonesian
	if lang == core.English {
		tag = language.English
	}
	p := message.NewPrinter(tag)
	s := p.Sprintf("%d", amount.Round(0).IntPart())
	if currency == "" {
		return s
	}
	return currency + " " + s
}
