package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fintrack/internal/core"
)

// GetSettings returns the stored settings, or the defaults when none were saved.
func (r *SQLiteRepository) GetSettings(ctx context.Context) (core.AppSettings, error) {
	var (
		s          core.AppSettings
		lastOpened sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `SELECT theme, currency, language, pin_enabled, pin_hash,
		biometric_enabled, onboarding_completed, last_opened_at FROM settings WHERE id = 1`).
		Scan(&s.Theme, &s.Currency, &s.Language, &s.PinEnabled, &s.PinHash,
			&s.BiometricEnabled, &s.OnboardingCompleted, &lastOpened)
	if errors.Is(err, sql.ErrNoRows) {
		return core.DefaultSettings(), nil
	}
	if err != nil {
		return core.AppSettings{}, fmt.Errorf("get settings: %w", err)
	}
	if s.LastOpenedAt, err = parseNullTime(lastOpened); err != nil {
		return core.AppSettings{}, err
	}
	return s.Normalize(), nil
}

// SaveSettings replaces the settings singleton.
func (r *SQLiteRepository) SaveSettings(ctx context.Context, s core.AppSettings) (core.AppSettings, error) {
	s = s.Normalize()
	_, err := r.db.ExecContext(ctx, `INSERT INTO settings (id, theme, currency, language, pin_enabled, pin_hash,
			biometric_enabled, onboarding_completed, last_opened_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			theme = excluded.theme,
			currency = excluded.currency,
			language = excluded.language,
			pin_enabled = excluded.pin_enabled,
			pin_hash = excluded.pin_hash,
			biometric_enabled = excluded.biometric_enabled,
			onboarding_completed = excluded.onboarding_completed,
			last_opened_at = excluded.last_opened_at`,
		string(s.Theme), s.Currency, string(s.Language), boolInt(s.PinEnabled), s.PinHash,
		boolInt(s.BiometricEnabled), boolInt(s.OnboardingCompleted), nullTime(s.LastOpenedAt))
	if err != nil {
		return core.AppSettings{}, fmt.Errorf("save settings: %w", err)
	}
	return s, nil
}
