package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dan9191/hallbridge/internal/models"
)

// GetSetting returns the raw value of key and whether it exists
func (r *Repository) GetSetting(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM hall.settings WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return value, true, nil
}

// ListSettings returns all settings ordered by category and key
func (r *Repository) ListSettings(ctx context.Context) ([]models.Setting, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value, category FROM hall.settings ORDER BY category, key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer rows.Close()

	var settings []models.Setting
	for rows.Next() {
		var s models.Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.Category); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// UpsertSettings writes every setting; existing keys keep their category
func (r *Repository) UpsertSettings(ctx context.Context, settings []models.Setting) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO hall.settings (key, value, category, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = CURRENT_TIMESTAMP`
	for _, s := range settings {
		category := s.Category
		if category == "" {
			category = models.DefaultSettingCategory
		}
		if _, err := tx.ExecContext(ctx, query, s.Key, s.Value, category); err != nil {
			return fmt.Errorf("failed to upsert setting %s: %w", s.Key, err)
		}
	}
	return tx.Commit()
}
