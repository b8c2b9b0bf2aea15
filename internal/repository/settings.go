package repository

import (
	"context"

	"github.com/biblio-app/biblio/internal/models"
)

func (q *Queries) GetSetting(ctx context.Context, key string) (models.Setting, error) {
	var s models.Setting
	err := q.db.QueryRow(ctx, `
		SELECT key, value, description, created_at, updated_at
		FROM settings WHERE key = $1`, key).
		Scan(&s.Key, &s.Value, &s.Description, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (q *Queries) ListSettings(ctx context.Context) ([]models.Setting, error) {
	rows, err := q.db.Query(ctx, `
		SELECT key, value, description, created_at, updated_at
		FROM settings ORDER BY key ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settings []models.Setting
	for rows.Next() {
		var s models.Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.Description, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

func (q *Queries) UpsertSetting(ctx context.Context, key, value string) (models.Setting, error) {
	var s models.Setting
	err := q.db.QueryRow(ctx, `
		INSERT INTO settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
		RETURNING key, value, description, created_at, updated_at`, key, value).
		Scan(&s.Key, &s.Value, &s.Description, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}
