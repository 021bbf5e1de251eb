package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

func listBudgets(ctx context.Context, q querier) ([]core.Budget, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, category_id, amount, period, start_date FROM budgets ORDER BY start_date, id`)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var (
			b             core.Budget
			amount, start string
		)
		if err := rows.Scan(&b.ID, &b.CategoryID, &amount, &b.Period, &start); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		if b.Amount, err = parseAmount(amount); err != nil {
			return nil, err
		}
		if b.StartDate, err = parseTime(start); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	return listBudgets(ctx, r.db)
}

// UpsertBudget keeps at most one budget per category. When the category already
// has a budget its amount and period are replaced and its id and start date
// kept; otherwise b is inserted. The stored budget is returned.
func (r *SQLiteRepository) UpsertBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var existingID, start string
		err := tx.QueryRowContext(ctx, `SELECT id, start_date FROM budgets WHERE category_id = ?`, b.CategoryID).Scan(&existingID, &start)
		switch {
		case err == nil:
			if _, err := tx.ExecContext(ctx, `UPDATE budgets SET amount = ?, period = ? WHERE id = ?`,
				b.Amount.String(), string(b.Period), existingID); err != nil {
				return fmt.Errorf("update budget: %w", err)
			}
			b.ID = existingID
			b.StartDate, err = parseTime(start)
			return err

		case errors.Is(err, sql.ErrNoRows):
			if b.ID == "" {
				b.ID = uuid.NewString()
			}
			if b.StartDate.IsZero() {
				b.StartDate = r.now()
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO budgets (id, category_id, amount, period, start_date) VALUES (?, ?, ?, ?, ?)`,
				b.ID, b.CategoryID, b.Amount.String(), string(b.Period), formatTime(b.StartDate)); err != nil {
				return fmt.Errorf("insert budget: %w", err)
			}
			return nil

		default:
			return fmt.Errorf("find budget for category: %w", err)
		}
	})
	if err != nil {
		return core.Budget{}, fmt.Errorf("upsert budget: %w", err)
	}
	return b, nil
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return requireAffected(res, "budget", id)
}
