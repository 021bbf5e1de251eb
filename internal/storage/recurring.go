package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/recurring"
)

const recurringColumns = `id, type, amount, account_id, to_account_id, category_id, frequency, start_date,
	end_date, last_processed, is_enabled, note, created_at, updated_at`

func scanRecurring(row interface{ Scan(...any) error }) (core.RecurringTransaction, error) {
	var (
		r                               core.RecurringTransaction
		amount, start, created, updated string
		toAccount, category, end, last  sql.NullString
	)
	err := row.Scan(&r.ID, &r.Type, &amount, &r.AccountID, &toAccount, &category, &r.Frequency, &start,
		&end, &last, &r.IsEnabled, &r.Note, &created, &updated)
	if err != nil {
		return core.RecurringTransaction{}, err
	}
	r.ToAccountID, r.CategoryID = toAccount.String, category.String

	if r.Amount, err = parseAmount(amount); err != nil {
		return core.RecurringTransaction{}, err
	}
	if r.StartDate, err = parseTime(start); err != nil {
		return core.RecurringTransaction{}, err
	}
	if r.EndDate, err = parseNullTime(end); err != nil {
		return core.RecurringTransaction{}, err
	}
	if r.LastProcessed, err = parseNullTime(last); err != nil {
		return core.RecurringTransaction{}, err
	}
	if r.CreatedAt, err = parseTime(created); err != nil {
		return core.RecurringTransaction{}, err
	}
	if r.UpdatedAt, err = parseTime(updated); err != nil {
		return core.RecurringTransaction{}, err
	}
	return r, nil
}

func listRecurring(ctx context.Context, q querier) ([]core.RecurringTransaction, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+recurringColumns+` FROM recurring_transactions ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list recurring rules: %w", err)
	}
	defer rows.Close()

	var out []core.RecurringTransaction
	for rows.Next() {
		r, err := scanRecurring(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recurring rule: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) ListRecurringRules(ctx context.Context) ([]core.RecurringTransaction, error) {
	return listRecurring(ctx, r.db)
}

func (r *SQLiteRepository) GetRecurringRule(ctx context.Context, id string) (core.RecurringTransaction, error) {
	rule, err := scanRecurring(r.db.QueryRowContext(ctx, `SELECT `+recurringColumns+` FROM recurring_transactions WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.RecurringTransaction{}, notFound("recurring rule", id)
	}
	if err != nil {
		return core.RecurringTransaction{}, fmt.Errorf("get recurring rule: %w", err)
	}
	return rule, nil
}

// CreateRecurringRule stores a new rule. Its watermark starts empty so the
// first processing run begins at the start date.
func (r *SQLiteRepository) CreateRecurringRule(ctx context.Context, rule core.RecurringTransaction) (core.RecurringTransaction, error) {
	if err := rule.Validate(); err != nil {
		return core.RecurringTransaction{}, err
	}
	now := r.now()
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	rule.LastProcessed = nil
	rule.CreatedAt, rule.UpdatedAt = now, now

	_, err := r.db.ExecContext(ctx, `INSERT INTO recurring_transactions (`+recurringColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rule.ID, string(rule.Type), rule.Amount.String(), rule.AccountID, nullString(rule.ToAccountID),
		nullString(rule.CategoryID), string(rule.Frequency), formatTime(rule.StartDate), nullTime(rule.EndDate),
		nullTime(nil), boolInt(rule.IsEnabled), rule.Note, formatTime(now), formatTime(now))
	if err != nil {
		return core.RecurringTransaction{}, fmt.Errorf("insert recurring rule: %w", err)
	}

	logger().InfoContext(ctx, "Recurring rule created", "id", rule.ID, "frequency", rule.Frequency, "start", rule.StartDate.Format(time.DateOnly))
	return rule, nil
}

func (r *SQLiteRepository) SetRecurringEnabled(ctx context.Context, id string, enabled bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE recurring_transactions SET is_enabled = ?, updated_at = ? WHERE id = ?`,
		boolInt(enabled), formatTime(r.now()), id)
	if err != nil {
		return fmt.Errorf("set recurring enabled: %w", err)
	}
	return requireAffected(res, "recurring rule", id)
}

// DeleteRecurringRule removes the rule. Transactions it already generated are kept.
func (r *SQLiteRepository) DeleteRecurringRule(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recurring_transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete recurring rule: %w", err)
	}
	return requireAffected(res, "recurring rule", id)
}

func updateWatermark(ctx context.Context, q querier, id string, last time.Time, now time.Time) error {
	res, err := q.ExecContext(ctx, `UPDATE recurring_transactions SET last_processed = ?, updated_at = ? WHERE id = ?`,
		formatTime(last), formatTime(now), id)
	if err != nil {
		return fmt.Errorf("update watermark: %w", err)
	}
	return requireAffected(res, "recurring rule", id)
}

// UpdateRecurringRule replaces the editable fields of a rule. The watermark is
// kept, so an edit never regenerates occurrences already materialized.
func (r *SQLiteRepository) UpdateRecurringRule(ctx context.Context, rule core.RecurringTransaction) (core.RecurringTransaction, error) {
	if err := rule.Validate(); err != nil {
		return core.RecurringTransaction{}, err
	}
	res, err := r.db.ExecContext(ctx, `UPDATE recurring_transactions
		SET type = ?, amount = ?, account_id = ?, to_account_id = ?, category_id = ?, frequency = ?,
			start_date = ?, end_date = ?, is_enabled = ?, note = ?, updated_at = ?
		WHERE id = ?`,
		string(rule.Type), rule.Amount.String(), rule.AccountID, nullString(rule.ToAccountID), nullString(rule.CategoryID),
		string(rule.Frequency), formatTime(rule.StartDate), nullTime(rule.EndDate), boolInt(rule.IsEnabled), rule.Note,
		formatTime(r.now()), rule.ID)
	if err != nil {
		return core.RecurringTransaction{}, fmt.Errorf("update recurring rule: %w", err)
	}
	if err := requireAffected(res, "recurring rule", rule.ID); err != nil {
		return core.RecurringTransaction{}, err
	}
	return r.GetRecurringRule(ctx, rule.ID)
}

// ApplyRecurringResult persists a processing run atomically: every generated
// transaction is inserted (existing ids are skipped) and every watermark is
// advanced, or nothing is. It returns the transactions actually written.
func (r *SQLiteRepository) ApplyRecurringResult(ctx context.Context, res recurring.Result) ([]core.Transaction, error) {
	var written []core.Transaction
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		written = written[:0]
		for _, t := range res.NewTransactions {
			ok, err := insertTransactionIfAbsent(ctx, tx, t)
			if err != nil {
				return err
			}
			if ok {
				written = append(written, t)
			}
		}
		now := r.now()
		for _, rule := range res.UpdatedRules {
			if rule.LastProcessed == nil {
				continue
			}
			if err := updateWatermark(ctx, tx, rule.ID, *rule.LastProcessed, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("apply recurring result: %w", err)
	}

	if skipped := len(res.NewTransactions) - len(written); skipped > 0 {
		logger().WarnContext(ctx, "Skipped already materialized occurrences", "count", skipped)
	}
	return written, nil
}
