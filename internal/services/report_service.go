package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/finance"
	"fintrack/internal/recurring"
	"fintrack/internal/storage"
)

// AccountView is an account with its derived balance.
type AccountView struct {
	core.Account
	Balance decimal.Decimal `json:"balance"`
}

// AccountsReport lists accounts with balances and the resulting net worth.
type AccountsReport struct {
	Accounts []AccountView           `json:"accounts"`
	NetWorth finance.NetWorthSummary `json:"netWorth"`
}

// RecurringView is a rule with its next few occurrences.
type RecurringView struct {
	core.RecurringTransaction
	Next []time.Time `json:"next,omitempty"`
}

// ReportService derives every read-side view from one store snapshot.
// Results are memoized until Invalidate is called or the cache TTL passes.
type ReportService struct {
	store SnapshotStore
	cache cache.Cache[any]
	now   func() time.Time

	// mu orders cache fills against Invalidate; gen counts invalidations.
	mu  sync.Mutex
	gen uint64
}

// NewReportService builds the service. A nil cache disables memoization; loc
// sets the calendar used for "today" and "this month".
func NewReportService(store SnapshotStore, c cache.Cache[any], loc *time.Location) *ReportService {
	if loc == nil {
		loc = time.Local
	}
	return &ReportService{
		store: store,
		cache: c,
		now:   func() time.Time { return time.Now().In(loc) },
	}
}

// Invalidate drops every memoized report.
func (s *ReportService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if s.cache != nil {
		s.cache.Clear()
	}
}

func (s *ReportService) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Now returns the current time in the report calendar.
func (s *ReportService) Now() time.Time { return s.now() }

func cached[T any](s *ReportService, key string, fn func() (T, error)) (T, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			if t, ok := v.(T); ok {
				return t, nil
			}
		}
	}
	gen := s.generation()
	v, err := fn()
	if err != nil {
		return v, err
	}
	if s.cache != nil {
		// A write that invalidated while fn ran makes v stale; return it but don't keep it.
		s.mu.Lock()
		if s.gen == gen {
			s.cache.Set(key, v)
		}
		s.mu.Unlock()
	}
	return v, nil
}

func dayKey(t time.Time) string { return t.Format(time.DateOnly) }

func (s *ReportService) snapshot(ctx context.Context) (storage.Snapshot, error) {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return storage.Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	return snap, nil
}

func (s *ReportService) Accounts(ctx context.Context) (AccountsReport, error) {
	return cached(s, "accounts", func() (AccountsReport, error) {
		snap, err := s.snapshot(ctx)
		if err != nil {
			return AccountsReport{}, err
		}
		balances := finance.AllBalances(snap.Accounts, snap.Transactions)
		views := make([]AccountView, 0, len(snap.Accounts))
		for _, a := range snap.Accounts {
			views = append(views, AccountView{Account: a, Balance: balances[a.ID]})
		}
		return AccountsReport{Accounts: views, NetWorth: finance.NetWorth(snap.Accounts, snap.Transactions)}, nil
	})
}

func (s *ReportService) Categories(ctx context.Context) ([]core.Category, error) {
	return cached(s, "categories", func() ([]core.Category, error) {
		snap, err := s.snapshot(ctx)
		return snap.Categories, err
	})
}

// Dashboard returns net worth plus today's and this month's totals.
func (s *ReportService) Dashboard(ctx context.Context) (finance.FinancialSummary, error) {
	now := s.now()
	return cached(s, "dashboard:"+dayKey(now), func() (finance.FinancialSummary, error) {
		snap, err := s.snapshot(ctx)
		if err != nil {
			return finance.FinancialSummary{}, err
		}
		return finance.Dashboard(snap.Accounts, snap.Transactions, now), nil
	})
}

func (s *ReportService) Summary(ctx context.Context, from, to time.Time) (finance.PeriodSummary, error) {
	return cached(s, "summary:"+dayKey(from)+":"+dayKey(to), func() (finance.PeriodSummary, error) {
		snap, err := s.snapshot(ctx)
		if err != nil {
			return finance.PeriodSummary{}, err
		}
		return finance.Summarize(snap.Transactions, from, to), nil
	})
}

// Breakdown groups income or expense within [from, to] by category.
func (s *ReportService) Breakdown(ctx context.Context, typ core.TransactionType, from, to time.Time) ([]finance.CategoryAmount, error) {
	if typ != core.Income && typ != core.Expense {
		return nil, fmt.Errorf("%w: breakdown needs income or expense", core.ErrInvalidType)
	}
	key := fmt.Sprintf("breakdown:%s:%s:%s", typ, dayKey(from), dayKey(to))
	return cached(s, key, func() ([]finance.CategoryAmount, error) {
		snap, err := s.snapshot(ctx)
		if err != nil {
			return nil, err
		}
		txs := finance.InRange(snap.Transactions, from, to)
		if typ == core.Income {
			return finance.IncomeBreakdown(txs, snap.Categories), nil
		}
		return finance.ExpenseBreakdown(txs, snap.Categories), nil
	})
}

func (s *ReportService) BudgetProgress(ctx context.Context) ([]finance.BudgetStatus, error) {
	now := s.now()
	return cached(s, "budgets:"+dayKey(now), func() ([]finance.BudgetStatus, error) {
		snap, err := s.snapshot(ctx)
		if err != nil {
			return nil, err
		}
		return finance.AllBudgetProgress(snap.Budgets, snap.Categories, snap.Transactions, now), nil
	})
}

func (s *ReportService) DailyTrend(ctx context.Context, from, to time.Time) ([]finance.TrendPoint, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: end before start", core.ErrInvalidDate)
	}
	return cached(s, "trend:daily:"+dayKey(from)+":"+dayKey(to), func() ([]finance.TrendPoint, error) {
		snap, err := s.snapshot(ctx)
		if err != nil {
			return nil, err
		}
		return finance.DailyTrend(snap.Transactions, from, to), nil
	})
}

func (s *ReportService) MonthlyTrend(ctx context.Context, months int) ([]finance.TrendPoint, error) {
	now := s.now()
	return cached(s, fmt.Sprintf("trend:monthly:%d:%s", months, dayKey(now)), func() ([]finance.TrendPoint, error) {
		snap, err := s.snapshot(ctx)
		if err != nil {
			return nil, err
		}
		return finance.MonthlyTrend(snap.Transactions, months, now), nil
	})
}

func (s *ReportService) Insights(ctx context.Context) ([]string, error) {
	now := s.now()
	return cached(s, "insights:"+dayKey(now), func() ([]string, error) {
		snap, err := s.snapshot(ctx)
		if err != nil {
			return nil, err
		}
		settings, err := s.store.GetSettings(ctx)
		if err != nil {
			return nil, fmt.Errorf("load settings: %w", err)
		}
		return finance.MonthInsights(snap.Transactions, snap.Categories, now, settings), nil
	})
}

// Recurring lists every rule with up to preview upcoming occurrences.
func (s *ReportService) Recurring(ctx context.Context, preview int) ([]RecurringView, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]RecurringView, 0, len(snap.Recurring))
	for _, r := range snap.Recurring {
		next, err := recurring.Upcoming(r, preview)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", r.ID, err)
		}
		out = append(out, RecurringView{RecurringTransaction: r, Next: next})
	}
	return out, nil
}

// Upcoming previews the next count occurrences of one rule.
func (s *ReportService) Upcoming(ctx context.Context, ruleID string, count int) ([]time.Time, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range snap.Recurring {
		if r.ID == ruleID {
			return recurring.Upcoming(r, count)
		}
	}
	return nil, fmt.Errorf("recurring rule %s: %w", ruleID, storage.ErrNotFound)
}

// EstimateRecurring forecasts recurring amounts within [from, to]; an empty typ includes all types.
func (s *ReportService) EstimateRecurring(ctx context.Context, from, to time.Time, typ core.TransactionType) (decimal.Decimal, error) {
	if typ != "" && !typ.Valid() {
		return decimal.Zero, fmt.Errorf("%w: %q", core.ErrInvalidType, typ)
	}
	key := fmt.Sprintf("estimate:%s:%s:%s", typ, dayKey(from), dayKey(to))
	return cached(s, key, func() (decimal.Decimal, error) {
		snap, err := s.snapshot(ctx)
		if err != nil {
			return decimal.Zero, err
		}
		return recurring.EstimateTotal(snap.Recurring, from, to, typ)
	})
}
