package http

import (
	"fmt"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

type accountRequest struct {
	Name           string           `json:"name"`
	Type           core.AccountType `json:"type"`
	IsLiability    *bool            `json:"isLiability"`
	Currency       string           `json:"currency"`
	Icon           string           `json:"icon"`
	Color          string           `json:"color"`
	InitialBalance amountInput      `json:"initialBalance"`
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	report, err := s.deps.Reports.Accounts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(report).Write(w)
}

// handleCreateAccount stores an account. A non-zero initialBalance becomes an
// opening income (positive) or expense (negative) transaction.
func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	balance, err := req.InitialBalance.Signed()
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.deps.Accounts.Create(r.Context(), s.accountFrom(req), balance)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate()
	NewJSONResponse().Status(http.StatusCreated).Body(created).Write(w)
}

// handleUpdateAccount replaces an account's fields. Balances are derived, so
// initialBalance is refused here.
func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.InitialBalance != "" {
		writeError(w, r, fmt.Errorf("%w: initialBalance can only be set on create", ErrMalformed))
		return
	}
	a := s.accountFrom(req)
	a.ID = r.PathValue("id")
	updated, err := s.deps.Accounts.Update(r.Context(), a)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate()
	NewJSONResponse().Body(updated).Write(w)
}

func (s *Server) accountFrom(req accountRequest) core.Account {
	a := core.Account{
		Name:     sanitizeInput(req.Name),
		Type:     req.Type,
		Currency: sanitizeInput(req.Currency),
		Icon:     sanitizeInput(req.Icon),
		Color:    sanitizeInput(req.Color),
	}
	if req.IsLiability != nil {
		a.IsLiability = *req.IsLiability
	} else {
		a.IsLiability = core.DefaultIsLiability(req.Type)
	}
	if a.Currency == "" {
		a.Currency = s.deps.DefaultCurrency
	}
	return a
}

// handleDeleteAccount removes the account and every transaction touching it.
func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Accounts.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate()
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

type categoryRequest struct {
	Name  string               `json:"name"`
	Type  core.TransactionType `json:"type"`
	Icon  string               `json:"icon"`
	Color string               `json:"color"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.deps.Reports.Categories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(cats).Write(w)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.deps.Store.CreateCategory(r.Context(), req.category())
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate()
	NewJSONResponse().Status(http.StatusCreated).Body(c).Write(w)
}

func (req categoryRequest) category() core.Category {
	return core.Category{
		Name:  sanitizeInput(req.Name),
		Type:  req.Type,
		Icon:  sanitizeInput(req.Icon),
		Color: sanitizeInput(req.Color),
	}
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c := req.category()
	c.ID = r.PathValue("id")
	updated, err := s.deps.Store.UpdateCategory(r.Context(), c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate()
	NewJSONResponse().Body(updated).Write(w)
}

// handleDeleteCategory removes a user category and its budget. Default
// categories answer 400.
func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Store.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate()
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

type budgetRequest struct {
	CategoryID string            `json:"categoryId"`
	Amount     amountInput       `json:"amount"`
	Period     core.BudgetPeriod `json:"period"`
}

// handleUpsertBudget sets the single budget of an expense category.
func (s *Server) handleUpsertBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	amount, err := req.Amount.Positive()
	if err != nil {
		writeError(w, r, err)
		return
	}
	if req.Period == "" {
		req.Period = core.MonthlyBudget
	}

	b, err := s.deps.Budgets.Upsert(r.Context(), core.Budget{CategoryID: req.CategoryID, Amount: amount, Period: req.Period})
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate()
	NewJSONResponse().Body(b).Write(w)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Store.DeleteBudget(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate()
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleBudgetProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := s.deps.Reports.BudgetProgress(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(progress).Write(w)
}

// settingsRequest is a partial update; omitted fields keep their value.
type settingsRequest struct {
	Theme               *core.Theme    `json:"theme"`
	Currency            *string        `json:"currency"`
	Language            *core.Language `json:"language"`
	PinEnabled          *bool          `json:"pinEnabled"`
	BiometricEnabled    *bool          `json:"biometricEnabled"`
	OnboardingCompleted *bool          `json:"onboardingCompleted"`
}

func (req settingsRequest) apply(cur core.AppSettings) (core.AppSettings, error) {
	if req.Theme != nil {
		switch *req.Theme {
		case core.ThemeLight, core.ThemeDark, core.ThemeSystem:
			cur.Theme = *req.Theme
		default:
			return cur, fmt.Errorf("%w: unknown theme %q", ErrMalformed, *req.Theme)
		}
	}
	if req.Language != nil {
		if *req.Language != core.English && *req.Language != core.Indonesian {
			return cur, fmt.Errorf("%w: unknown language %q", ErrMalformed, *req.Language)
		}
		cur.Language = *req.Language
	}
	if req.Currency != nil {
		c := sanitizeInput(*req.Currency)
		if c == "" {
			return cur, fmt.Errorf("%w: currency cannot be empty", ErrMalformed)
		}
		cur.Currency = c
	}
	if req.PinEnabled != nil {
		cur.PinEnabled = *req.PinEnabled
	}
	if req.BiometricEnabled != nil {
		cur.BiometricEnabled = *req.BiometricEnabled
	}
	if req.OnboardingCompleted != nil {
		cur.OnboardingCompleted = *req.OnboardingCompleted
	}
	return cur, nil
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.deps.Store.GetSettings(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	settings.PinHash = ""
	NewJSONResponse().Body(settings).Write(w)
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	cur, err := s.deps.Store.GetSettings(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	next, err := req.apply(cur)
	if err != nil {
		writeError(w, r, err)
		return
	}
	saved, err := s.deps.Store.SaveSettings(r.Context(), next)
	if err != nil {
		writeError(w, r, err)
		return
	}
	// Currency and language feed the insight text.
	s.invalidate()
	saved.PinHash = ""
	NewJSONResponse().Body(saved).Write(w)
}

// handleClearData wipes every account, transaction, budget, rule and setting,
// then restores the default categories as on first launch.
func (s *Server) handleClearData(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Store.ClearAll(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := s.deps.Store.SeedDefaultCategories(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate()
	log.FromContext(r.Context()).InfoContext(r.Context(), "All data cleared")
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
