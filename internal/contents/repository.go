package contents

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/musda-event/backend/internal/models"
)

// Repository handles editable site content persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a contents repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get returns the content stored under key, or nil when unset.
func (r *Repository) Get(ctx context.Context, key string) (*models.Content, error) {
	const q = `SELECT key, value, updated_at FROM contents WHERE key = $1`
	var content models.Content
	err := r.pool.QueryRow(ctx, q, key).Scan(&content.Key, &content.Value, &content.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &content, nil
}

// List returns all content entries ordered by key.
func (r *Repository) List(ctx context.Context) ([]models.Content, error) {
	rows, err := r.pool.Query(ctx, `SELECT key, value, updated_at FROM contents ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Content
	for rows.Next() {
		var content models.Content
		if err := rows.Scan(&content.Key, &content.Value, &content.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, content)
	}
	return list, rows.Err()
}

// Set upserts the content stored under key.
func (r *Repository) Set(ctx context.Context, key, value string) (*models.Content, error) {
	const q = `INSERT INTO contents (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
		RETURNING key, value, updated_at`
	var content models.Content
	if err := r.pool.QueryRow(ctx, q, key, value).Scan(&content.Key, &content.Value, &content.UpdatedAt); err != nil {
		return nil, err
	}
	return &content, nil
}

// Delete removes the content stored under key. Reports whether a row was
// removed.
func (r *Repository) Delete(ctx context.Context, key string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM contents WHERE key = $1`, key)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
