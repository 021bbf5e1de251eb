package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

const accountColumns = `id, name, type, is_liability, currency, icon, color, created_at, updated_at`

func scanAccount(row interface{ Scan(...any) error }) (core.Account, error) {
	var (
		a                core.Account
		created, updated string
	)
	if err := row.Scan(&a.ID, &a.Name, &a.Type, &a.IsLiability, &a.Currency, &a.Icon, &a.Color, &created, &updated); err != nil {
		return core.Account{}, err
	}
	var err error
	if a.CreatedAt, err = parseTime(created); err != nil {
		return core.Account{}, err
	}
	if a.UpdatedAt, err = parseTime(updated); err != nil {
		return core.Account{}, err
	}
	return a, nil
}

func listAccounts(ctx context.Context, q querier) ([]core.Account, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) ListAccounts(ctx context.Context) ([]core.Account, error) {
	return listAccounts(ctx, r.db)
}

func (r *SQLiteRepository) GetAccount(ctx context.Context, id string) (core.Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, notFound("account", id)
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

// CreateAccount stores a new account. A non-zero initialBalance is recorded in
// the same SQL transaction as an "Initial balance" income (positive) or expense
// (negative) against the adjustment category.
func (r *SQLiteRepository) CreateAccount(ctx context.Context, a core.Account, initialBalance decimal.Decimal) (core.Account, error) {
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	now := r.now()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt, a.UpdatedAt = now, now

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO accounts (`+accountColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID, a.Name, string(a.Type), boolInt(a.IsLiability), a.Currency, a.Icon, a.Color, formatTime(now), formatTime(now))
		if err != nil {
			return fmt.Errorf("insert account: %w", err)
		}
		if initialBalance.IsZero() {
			return nil
		}

		typ := core.Income
		if initialBalance.IsNegative() {
			typ = core.Expense
		}
		categoryID, err := adjustmentCategory(ctx, tx, typ)
		if err != nil {
			return err
		}
		return insertTransaction(ctx, tx, core.Transaction{
			ID:         uuid.NewString(),
			Type:       typ,
			Amount:     initialBalance.Abs(),
			AccountID:  a.ID,
			CategoryID: categoryID,
			Date:       now,
			Note:       "Initial balance",
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	})
	if err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}

	logger().InfoContext(ctx, "Account created", "id", a.ID, "type", a.Type, "initial_balance", initialBalance.String())
	return a, nil
}

// adjustmentCategory finds the category used for balance adjustments, creating
// it from the defaults when the user removed it.
func adjustmentCategory(ctx context.Context, q querier, typ core.TransactionType) (string, error) {
	name := core.AdjustmentCategoryName(typ)
	var id string
	err := q.QueryRowContext(ctx, `SELECT id FROM categories WHERE name = ? AND type = ? ORDER BY is_default DESC LIMIT 1`, name, string(typ)).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("find adjustment category: %w", err)
	}

	c := core.Category{ID: uuid.NewString(), Name: name, Type: typ, IsDefault: true}
	for _, d := range core.DefaultCategories {
		if d.Name == name && d.Type == typ {
			c.Icon, c.Color = d.Icon, d.Color
		}
	}
	if err := insertCategory(ctx, q, c); err != nil {
		return "", err
	}
	return c.ID, nil
}

// DeleteAccount removes the account together with every transaction that
// references it as source or destination, and the recurring rules that would
// otherwise keep generating entries for it.
func (r *SQLiteRepository) DeleteAccount(ctx context.Context, id string) error {
	var removed int64
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE account_id = ? OR to_account_id = ?`, id, id)
		if err != nil {
			return fmt.Errorf("delete account transactions: %w", err)
		}
		removed, _ = res.RowsAffected()

		if _, err := tx.ExecContext(ctx, `DELETE FROM recurring_transactions WHERE account_id = ? OR to_account_id = ?`, id, id); err != nil {
			return fmt.Errorf("delete account recurring rules: %w", err)
		}

		res, err = tx.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete account: %w", err)
		}
		return requireAffected(res, "account", id)
	})
	if err != nil {
		return err
	}

	logger().InfoContext(ctx, "Account deleted", "id", id, "transactions_removed", removed)
	return nil
}

// UpdateAccount replaces the editable fields of an existing account. The
// creation time is kept and balances stay derived from transactions.
func (r *SQLiteRepository) UpdateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	res, err := r.db.ExecContext(ctx, `UPDATE accounts SET name = ?, type = ?, is_liability = ?, currency = ?, icon = ?, color = ?, updated_at = ?
		WHERE id = ?`,
		a.Name, string(a.Type), boolInt(a.IsLiability), a.Currency, a.Icon, a.Color, formatTime(r.now()), a.ID)
	if err != nil {
		return core.Account{}, fmt.Errorf("update account: %w", err)
	}
	if err := requireAffected(res, "account", a.ID); err != nil {
		return core.Account{}, err
	}
	return r.GetAccount(ctx, a.ID)
}
