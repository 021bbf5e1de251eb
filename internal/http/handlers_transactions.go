package http

import (
	"net/http"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/finance"
)

type transactionRequest struct {
	Type        core.TransactionType `json:"type"`
	Amount      amountInput          `json:"amount"`
	AccountID   string               `json:"accountId"`
	ToAccountID string               `json:"toAccountId"`
	CategoryID  string               `json:"categoryId"`
	Date        string               `json:"date"`
	Note        string               `json:"note"`
}

// handleListTransactions returns transactions newest first. Supported filters:
// from, to (YYYY-MM-DD), accountId, categoryId, type and q (note search).
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	loc := s.deps.Reports.Now().Location()

	f := finance.TransactionFilter{
		AccountID:  q.Get("accountId"),
		CategoryID: q.Get("categoryId"),
		Type:       core.TransactionType(q.Get("type")),
		Search:     sanitizeInput(q.Get("q")),
	}
	if f.Type != "" && !f.Type.Valid() {
		BadRequestError("invalid transaction type: " + string(f.Type)).Write(w)
		return
	}
	var err error
	if v := q.Get("from"); v != "" {
		if f.Start, err = parseDate(v, loc); err != nil {
			writeError(w, r, err)
			return
		}
	}
	if v := q.Get("to"); v != "" {
		if f.End, err = parseDate(v, loc); err != nil {
			writeError(w, r, err)
			return
		}
	}

	// A one-sided range leaves the other side open.
	if !f.Start.IsZero() && f.End.IsZero() {
		f.End = time.Date(9999, 12, 31, 0, 0, 0, 0, loc)
	}
	if f.Start.IsZero() && !f.End.IsZero() {
		f.Start = time.Date(1970, 1, 1, 0, 0, 0, 0, loc)
	}

	txs, err := s.deps.Transactions.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if q.Get("group") == "day" {
		NewJSONResponse().Body(finance.GroupByDate(txs)).Write(w)
		return
	}
	NewJSONResponse().Body(txs).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	amount, err := req.Amount.Positive()
	if err != nil {
		writeError(w, r, err)
		return
	}

	now := s.deps.Reports.Now()
	date := now
	if req.Date != "" {
		if date, err = parseDate(req.Date, now.Location()); err != nil {
			writeError(w, r, err)
			return
		}
	}

	created, err := s.deps.Transactions.Create(r.Context(), core.Transaction{
		Type:        req.Type,
		Amount:      amount,
		AccountID:   req.AccountID,
		ToAccountID: req.ToAccountID,
		CategoryID:  req.CategoryID,
		Date:        date,
		Note:        sanitizeInput(req.Note),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate()
	s.events.LogTransactionCreated(r.Context(), created.ID, string(created.Type), created.Amount.String(), created.AccountID, created.CategoryID)
	NewJSONResponse().Status(http.StatusCreated).Body(created).Write(w)
}

// handleUpdateTransaction replaces a transaction. An omitted date keeps the stored one.
func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	amount, err := req.Amount.Positive()
	if err != nil {
		writeError(w, r, err)
		return
	}
	var date time.Time
	if req.Date != "" {
		if date, err = parseDate(req.Date, s.deps.Reports.Now().Location()); err != nil {
			writeError(w, r, err)
			return
		}
	}

	updated, err := s.deps.Transactions.Update(r.Context(), core.Transaction{
		ID:          r.PathValue("id"),
		Type:        req.Type,
		Amount:      amount,
		AccountID:   req.AccountID,
		ToAccountID: req.ToAccountID,
		CategoryID:  req.CategoryID,
		Date:        date,
		Note:        sanitizeInput(req.Note),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate()
	NewJSONResponse().Body(updated).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Transactions.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate()
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
