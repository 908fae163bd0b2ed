package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"healthdash/internal/repository"
)

// SettingsPostgres is a PostgreSQL implementation of repository.SettingsRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type SettingsPostgres struct {
	db *sql.DB
}

// NewSettingsPostgres creates a new SettingsPostgres repository.
func NewSettingsPostgres(db *sql.DB) *SettingsPostgres {
	return &SettingsPostgres{db: db}
}

var _ repository.SettingsRepository = (*SettingsPostgres)(nil)

// Get fetches a single value by key.
func (r *SettingsPostgres) Get(ctx context.Context, key string) (json.RawMessage, error) {
	const q = `SELECT value FROM user_settings WHERE key = $1`
	var raw []byte
	if err := r.db.QueryRowContext(ctx, q, key).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrSettingNotFound
		}
		return nil, err
	}
	return json.RawMessage(raw), nil
}

// Put upserts the value and bumps updated_at.
func (r *SettingsPostgres) Put(ctx context.Context, key string, value json.RawMessage) error {
	const q = `
		INSERT INTO user_settings (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`
	_, err := r.db.ExecContext(ctx, q, key, []byte(value))
	return err
}

// Delete removes a key. It does not return an error if the row does not exist.
func (r *SettingsPostgres) Delete(ctx context.Context, key string) error {
	const q = `DELETE FROM user_settings WHERE key = $1`
	_, err := r.db.ExecContext(ctx, q, key)
	return err
}
