package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income   TransactionType = "income"
	Expense  TransactionType = "expense"
	Transfer TransactionType = "transfer"
)

const (
	Daily    Frequency = "daily"
	Weekly   Frequency = "weekly"
	Biweekly Frequency = "biweekly"
	Monthly  Frequency = "monthly"
	Yearly   Frequency = "yearly"
)

const (
	MonthlyBudget BudgetPeriod = "monthly"
	WeeklyBudget  BudgetPeriod = "weekly"
)

const (
	Bank       AccountType = "bank"
	Cash       AccountType = "cash"
	EWallet    AccountType = "ewallet"
	Crypto     AccountType = "crypto"
	Investment AccountType = "investment"
	CreditCard AccountType = "credit_card"
	Loan       AccountType = "loan"
	OtherType  AccountType = "other"
)

type (
	TransactionType string
	Frequency       string
	BudgetPeriod    string
	AccountType     string

	Account struct {
		ID          string      `json:"id"`
		Name        string      `json:"name"`
		Type        AccountType `json:"type"`
		IsLiability bool        `json:"isLiability"`
		Currency    string      `json:"currency,omitempty"`
		Icon        string      `json:"icon,omitempty"`
		Color       string      `json:"color,omitempty"`
		CreatedAt   time.Time   `json:"createdAt"`
		UpdatedAt   time.Time   `json:"updatedAt"`
	}

	Transaction struct {
		ID                   string          `json:"id"`
		Type                 TransactionType `json:"type"`
		Amount               decimal.Decimal `json:"amount"`
		AccountID            string          `json:"accountId"`
		ToAccountID          string          `json:"toAccountId,omitempty"`
		CategoryID           string          `json:"categoryId,omitempty"`
		Date                 time.Time       `json:"date"`
		Note                 string          `json:"note,omitempty"`
		RecurringID          string          `json:"recurringId,omitempty"`
		IsRecurringGenerated bool            `json:"isRecurringGenerated,omitempty"`
		CreatedAt            time.Time       `json:"createdAt"`
		UpdatedAt            time.Time       `json:"updatedAt"`
	}

	Category struct {
		ID        string          `json:"id"`
		Name      string          `json:"name"`
		Type      TransactionType `json:"type"` // income or expense only
		Icon      string          `json:"icon,omitempty"`
		Color     string          `json:"color,omitempty"`
		IsDefault bool            `json:"isDefault,omitempty"`
	}

	Budget struct {
		ID         string          `json:"id"`
		CategoryID string          `json:"categoryId"`
		Amount     decimal.Decimal `json:"amount"`
		Period     BudgetPeriod    `json:"period"`
		StartDate  time.Time       `json:"startDate"`
	}

	RecurringTransaction struct {
		ID            string          `json:"id"`
		Type          TransactionType `json:"type"`
		Amount        decimal.Decimal `json:"amount"`
		AccountID     string          `json:"accountId"`
		ToAccountID   string          `json:"toAccountId,omitempty"`
		CategoryID    string          `json:"categoryId,omitempty"`
		Frequency     Frequency       `json:"frequency"`
		StartDate     time.Time       `json:"startDate"`
		EndDate       *time.Time      `json:"endDate,omitempty"`
		LastProcessed *time.Time      `json:"lastProcessed,omitempty"` // watermark, nil until first run
		IsEnabled     bool            `json:"isEnabled"`
		Note          string          `json:"note,omitempty"`
		CreatedAt     time.Time       `json:"createdAt"`
		UpdatedAt     time.Time       `json:"updatedAt"`
	}
)

var (
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrMissingAccount   = errors.New("missing account")
	ErrMissingCategory  = errors.New("missing category")
	ErrMissingTarget    = errors.New("transfer requires a destination account")
	ErrSelfTransfer     = errors.New("transfer source and destination must differ")
	ErrUnexpectedField  = errors.New("field not allowed for transaction type")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrInvalidPeriod    = errors.New("invalid budget period")
	ErrEmptyName        = errors.New("empty name")
	ErrInvalidAccount   = errors.New("invalid account type")
	ErrNoteTooLong      = errors.New("note too long (max 500 characters)")
)

func (t TransactionType) Valid() bool {
	switch t {
	case Income, Expense, Transfer:
		return true
	}
	return false
}

func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Biweekly, Monthly, Yearly:
		return true
	}
	return false
}

func (p BudgetPeriod) Valid() bool {
	return p == MonthlyBudget || p == WeeklyBudget
}

func (a AccountType) Valid() bool {
	switch a {
	case Bank, Cash, EWallet, Crypto, Investment, CreditCard, Loan, OtherType:
		return true
	}
	return false
}

// DefaultIsLiability reports whether accounts of this type are liabilities unless told otherwise.
func DefaultIsLiability(a AccountType) bool {
	return a == CreditCard || a == Loan
}

// validatePolarity checks the fields shared by transactions and recurring rules.
func validatePolarity(typ TransactionType, amount decimal.Decimal, accountID, toAccountID, categoryID string) error {
	if !typ.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, typ)
	}
	if amount.IsNegative() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(accountID) == "" {
		return ErrMissingAccount
	}
	if typ == Transfer {
		if strings.TrimSpace(toAccountID) == "" {
			return ErrMissingTarget
		}
		if accountID == toAccountID {
			return ErrSelfTransfer
		}
		if categoryID != "" {
			return fmt.Errorf("%w: category on transfer", ErrUnexpectedField)
		}
		return nil
	}
	if strings.TrimSpace(categoryID) == "" {
		return ErrMissingCategory
	}
	if toAccountID != "" {
		return fmt.Errorf("%w: destination account on %s", ErrUnexpectedField, typ)
	}
	return nil
}

// Validate rejects malformed transactions before they reach storage.
func (t Transaction) Validate() error {
	if err := validatePolarity(t.Type, t.Amount, t.AccountID, t.ToAccountID, t.CategoryID); err != nil {
		return err
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if len(t.Note) > 500 {
		return ErrNoteTooLong
	}
	return nil
}

func (r RecurringTransaction) Validate() error {
	if err := validatePolarity(r.Type, r.Amount, r.AccountID, r.ToAccountID, r.CategoryID); err != nil {
		return err
	}
	if !r.Frequency.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidFrequency, r.Frequency)
	}
	if r.StartDate.IsZero() {
		return fmt.Errorf("%w: start date is required", ErrInvalidDate)
	}
	if r.EndDate != nil && StartOfDay(*r.EndDate).Before(StartOfDay(r.StartDate)) {
		return fmt.Errorf("%w: end date before start date", ErrInvalidDate)
	}
	return nil
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if !a.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidAccount, a.Type)
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if c.Type != Income && c.Type != Expense {
		return fmt.Errorf("%w: category must be income or expense", ErrInvalidType)
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.CategoryID) == "" {
		return ErrMissingCategory
	}
	if b.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if !b.Period.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPeriod, b.Period)
	}
	return nil
}

// IsPending reports whether the rule has never produced an occurrence.
func (r RecurringTransaction) IsPending() bool {
	return r.LastProcessed == nil
}
