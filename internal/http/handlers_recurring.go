package http

import (
	"net/http"
	"time"

	"fintrack/internal/core"
)

type recurringRequest struct {
	Type        core.TransactionType `json:"type"`
	Amount      amountInput          `json:"amount"`
	AccountID   string               `json:"accountId"`
	ToAccountID string               `json:"toAccountId"`
	CategoryID  string               `json:"categoryId"`
	Frequency   core.Frequency       `json:"frequency"`
	StartDate   string               `json:"startDate"`
	EndDate     string               `json:"endDate"`
	IsEnabled   *bool                `json:"isEnabled"`
	Note        string               `json:"note"`
}

func (req recurringRequest) rule(loc *time.Location) (core.RecurringTransaction, error) {
	amount, err := req.Amount.Positive()
	if err != nil {
		return core.RecurringTransaction{}, err
	}
	start, err := parseDate(req.StartDate, loc)
	if err != nil {
		return core.RecurringTransaction{}, err
	}
	end, err := parseOptionalDate(req.EndDate, loc)
	if err != nil {
		return core.RecurringTransaction{}, err
	}
	enabled := true
	if req.IsEnabled != nil {
		enabled = *req.IsEnabled
	}
	return core.RecurringTransaction{
		Type:        req.Type,
		Amount:      amount,
		AccountID:   req.AccountID,
		ToAccountID: req.ToAccountID,
		CategoryID:  req.CategoryID,
		Frequency:   req.Frequency,
		StartDate:   start,
		EndDate:     end,
		IsEnabled:   enabled,
		Note:        sanitizeInput(req.Note),
	}, nil
}

// handleListRecurring lists every rule with its next few occurrences (preview, default 3).
func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	preview, err := parseCount(r.URL.Query(), "preview", 3, 50)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rules, err := s.deps.Reports.Recurring(r.Context(), preview)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(rules).Write(w)
}

func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	var req recurringRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	rule, err := req.rule(s.deps.Reports.Now().Location())
	if err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.deps.Recurring.Create(r.Context(), rule)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate()
	NewJSONResponse().Status(http.StatusCreated).Body(created).Write(w)
}

// handleUpdateRecurring edits a rule in place. The watermark is kept.
func (s *Server) handleUpdateRecurring(w http.ResponseWriter, r *http.Request) {
	var req recurringRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	rule, err := req.rule(s.deps.Reports.Now().Location())
	if err != nil {
		writeError(w, r, err)
		return
	}
	rule.ID = r.PathValue("id")
	updated, err := s.deps.Recurring.Update(r.Context(), rule)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate()
	NewJSONResponse().Body(updated).Write(w)
}

func (s *Server) handleDeleteRecurring(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Recurring.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate()
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleToggleRecurring(w http.ResponseWriter, r *http.Request) {
	rule, err := s.deps.Recurring.Toggle(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate()
	NewJSONResponse().Body(rule).Write(w)
}

// handleUpcoming previews the next count occurrences of a rule (default 5).
func (s *Server) handleUpcoming(w http.ResponseWriter, r *http.Request) {
	count, err := parseCount(r.URL.Query(), "count", 5, 100)
	if err != nil {
		writeError(w, r, err)
		return
	}
	dates, err := s.deps.Reports.Upcoming(r.Context(), r.PathValue("id"), count)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.Format(time.DateOnly))
	}
	NewJSONResponse().Body(map[string][]string{"dates": out}).Write(w)
}

type estimateResponse struct {
	From   string               `json:"from"`
	To     string               `json:"to"`
	Type   core.TransactionType `json:"type,omitempty"`
	Amount string               `json:"amount"`
}

// handleEstimateRecurring forecasts what enabled rules will generate within from..to.
func (s *Server) handleEstimateRecurring(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to, err := parseRange(q, s.deps.Reports.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	typ := core.TransactionType(q.Get("type"))
	total, err := s.deps.Reports.EstimateRecurring(r.Context(), from, to, typ)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(estimateResponse{
		From:   from.Format(time.DateOnly),
		To:     to.Format(time.DateOnly),
		Type:   typ,
		Amount: total.StringFixed(2),
	}).Write(w)
}

// handleProcessRecurring materializes every due occurrence up to today.
func (s *Server) handleProcessRecurring(w http.ResponseWriter, r *http.Request) {
	n, err := s.deps.Processor.Process(r.Context(), s.deps.Reports.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(map[string]int{"generated": n}).Write(w)
}
