package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/bakery_api/internal/models"
)

// SettingsRepository persists the single store settings document.
type SettingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository creates a new SettingsRepository.
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the saved settings, or nil when an admin has never saved any.
func (r *SettingsRepository) Get(ctx context.Context) (*models.StoreSettings, error) {
	var s models.StoreSettings
	err := r.db.QueryRowxContext(ctx, `SELECT data FROM store_settings WHERE id = 1`).Scan(&s)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Save replaces the settings document.
func (r *SettingsRepository) Save(ctx context.Context, s *models.StoreSettings) error {
	const q = `
		INSERT INTO store_settings (id, data) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`
	_, err := r.db.ExecContext(ctx, q, s)
	return err
}
