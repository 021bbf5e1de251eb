package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

func listCategories(ctx context.Context, q querier) ([]core.Category, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, name, type, icon, color, is_default FROM categories ORDER BY type, name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.Icon, &c.Color, &c.IsDefault); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func insertCategory(ctx context.Context, q querier, c core.Category) error {
	_, err := q.ExecContext(ctx, `INSERT INTO categories (id, name, type, icon, color, is_default) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, string(c.Type), c.Icon, c.Color, boolInt(c.IsDefault))
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	return listCategories(ctx, r.db)
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if err := insertCategory(ctx, r.db, c); err != nil {
		return core.Category{}, err
	}
	return c, nil
}

// SeedDefaultCategories inserts the default category set when the store has no
// categories yet. It returns how many were inserted.
func (r *SQLiteRepository) SeedDefaultCategories(ctx context.Context) (int, error) {
	inserted := 0
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&count); err != nil {
			return fmt.Errorf("count categories: %w", err)
		}
		if count > 0 {
			return nil
		}
		for _, c := range core.DefaultCategories {
			c.ID = uuid.NewString()
			if err := insertCategory(ctx, tx, c); err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("seed default categories: %w", err)
	}
	if inserted > 0 {
		logger().InfoContext(ctx, "Default categories seeded", "count", inserted)
	}
	return inserted, nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id string) (core.Category, error) {
	var c core.Category
	err := r.db.QueryRowContext(ctx, `SELECT id, name, type, icon, color, is_default FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Type, &c.Icon, &c.Color, &c.IsDefault)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, notFound("category", id)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// UpdateCategory renames or restyles a category. IsDefault is kept as stored.
func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	res, err := r.db.ExecContext(ctx, `UPDATE categories SET name = ?, type = ?, icon = ?, color = ? WHERE id = ?`,
		c.Name, string(c.Type), c.Icon, c.Color, c.ID)
	if err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	if err := requireAffected(res, "category", c.ID); err != nil {
		return core.Category{}, err
	}
	return r.GetCategory(ctx, c.ID)
}

// DeleteCategory removes a user category together with its budget. Default
// categories are refused. Transactions keep their category id and reports
// treat it as unknown.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id string) error {
	c, err := r.GetCategory(ctx, id)
	if err != nil {
		return err
	}
	if c.IsDefault {
		return fmt.Errorf("%w: %s", ErrDefaultCategory, c.Name)
	}
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM budgets WHERE category_id = ?`, id); err != nil {
			return fmt.Errorf("delete category budget: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		return requireAffected(res, "category", id)
	})
}
