package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

const transactionColumns = `id, type, amount, account_id, to_account_id, category_id, date, note,
	recurring_id, is_recurring_generated, created_at, updated_at`

func scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var (
		t                                core.Transaction
		amount, date, created, updated   string
		toAccount, category, recurringID sql.NullString
	)
	err := row.Scan(&t.ID, &t.Type, &amount, &t.AccountID, &toAccount, &category, &date, &t.Note,
		&recurringID, &t.IsRecurringGenerated, &created, &updated)
	if err != nil {
		return core.Transaction{}, err
	}
	t.ToAccountID, t.CategoryID, t.RecurringID = toAccount.String, category.String, recurringID.String

	if t.Amount, err = parseAmount(amount); err != nil {
		return core.Transaction{}, err
	}
	if t.Date, err = parseTime(date); err != nil {
		return core.Transaction{}, err
	}
	if t.CreatedAt, err = parseTime(created); err != nil {
		return core.Transaction{}, err
	}
	if t.UpdatedAt, err = parseTime(updated); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

func listTransactions(ctx context.Context, q querier) ([]core.Transaction, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+transactionColumns+` FROM transactions ORDER BY date DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// insertTransactionIfAbsent writes t. Rows whose id already exists are left untouched,
// which makes replaying generated occurrences harmless. It reports whether a row was written.
func insertTransactionIfAbsent(ctx context.Context, q querier, t core.Transaction) (bool, error) {
	res, err := q.ExecContext(ctx, `INSERT INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		t.ID, string(t.Type), t.Amount.String(), t.AccountID, nullString(t.ToAccountID), nullString(t.CategoryID),
		formatTime(t.Date), t.Note, nullString(t.RecurringID), boolInt(t.IsRecurringGenerated),
		formatTime(t.CreatedAt), formatTime(t.UpdatedAt))
	if err != nil {
		return false, fmt.Errorf("insert transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func insertTransaction(ctx context.Context, q querier, t core.Transaction) error {
	written, err := insertTransactionIfAbsent(ctx, q, t)
	if err != nil {
		return err
	}
	if !written {
		return fmt.Errorf("insert transaction: duplicate id %s", t.ID)
	}
	return nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return listTransactions(ctx, r.db)
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	t, err := scanTransaction(r.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, notFound("transaction", id)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// CreateTransaction validates and stores t, assigning an id and timestamps when missing.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	now := r.now()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now

	if err := insertTransaction(ctx, r.db, t); err != nil {
		return core.Transaction{}, err
	}

	logger().DebugContext(ctx, "Transaction saved", log.FieldTransactionID, t.ID, log.FieldType, t.Type, "amount", t.Amount.String())
	return t, nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireAffected(res, "transaction", id)
}

// UpdateTransaction replaces the editable fields of t. The recurring link and
// creation time stay as stored.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	res, err := r.db.ExecContext(ctx, `UPDATE transactions
		SET type = ?, amount = ?, account_id = ?, to_account_id = ?, category_id = ?, date = ?, note = ?, updated_at = ?
		WHERE id = ?`,
		string(t.Type), t.Amount.String(), t.AccountID, nullString(t.ToAccountID), nullString(t.CategoryID),
		formatTime(t.Date), t.Note, formatTime(r.now()), t.ID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	if err := requireAffected(res, "transaction", t.ID); err != nil {
		return core.Transaction{}, err
	}
	return r.GetTransaction(ctx, t.ID)
}
