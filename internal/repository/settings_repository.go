package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/scribely/content-api/internal/models"
)

type SettingsRepository interface {
	Get(ctx context.Context, category, key string) (string, bool, error)
	Upsert(ctx context.Context, setting *models.Setting) error
	ListByCategory(ctx context.Context, category string) ([]*models.Setting, error)
}

type settingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(ctx context.Context, category, key string) (string, bool, error) {
	query := `SELECT value FROM settings WHERE category = $1 AND key = $2`

	var value string
	err := r.db.QueryRowContext(ctx, query, category, key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		slog.Info(err.Error())
		return "", false, err
	}
	return value, true, nil
}

func (r *settingsRepository) Upsert(ctx context.Context, setting *models.Setting) error {
	query := `
		INSERT INTO settings (category, key, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (category, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = CURRENT_TIMESTAMP
	`
	_, err := r.db.ExecContext(ctx, query, setting.Category, setting.Key, setting.Value)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *settingsRepository) ListByCategory(ctx context.Context, category string) ([]*models.Setting, error) {
	query := `SELECT id, category, key, value, updated_at FROM settings WHERE category = $1 ORDER BY key`
	rows, err := r.db.QueryContext(ctx, query, category)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var settings []*models.Setting
	for rows.Next() {
		var s models.Setting
		err := rows.Scan(&s.ID, &s.Category, &s.Key, &s.Value, &s.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		settings = append(settings, &s)
	}
	return settings, rows.Err()
}
