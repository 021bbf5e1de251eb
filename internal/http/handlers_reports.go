package http

import (
	"net/http"

	"fintrack/internal/core"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := s.deps.Reports.Dashboard(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(summary).Write(w)
}

// handleSummary totals income and expense within from..to, this month by default.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseRange(r.URL.Query(), s.deps.Reports.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	summary, err := s.deps.Reports.Summary(r.Context(), from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(summary).Write(w)
}

// handleBreakdown groups one side of the ledger by category. type defaults to expense.
func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to, err := parseRange(q, s.deps.Reports.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	typ := core.TransactionType(q.Get("type"))
	if typ == "" {
		typ = core.Expense
	}
	rows, err := s.deps.Reports.Breakdown(r.Context(), typ, from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(rows).Write(w)
}

func (s *Server) handleDailyTrend(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseRange(r.URL.Query(), s.deps.Reports.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	points, err := s.deps.Reports.DailyTrend(r.Context(), from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(points).Write(w)
}

func (s *Server) handleMonthlyTrend(w http.ResponseWriter, r *http.Request) {
	months, err := parseCount(r.URL.Query(), "months", 6, 120)
	if err != nil {
		writeError(w, r, err)
		return
	}
	points, err := s.deps.Reports.MonthlyTrend(r.Context(), months)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(points).Write(w)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	insights, err := s.deps.Reports.Insights(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if insights == nil {
		insights = []string{}
	}
	NewJSONResponse().Body(map[string][]string{"insights": insights}).Write(w)
}
