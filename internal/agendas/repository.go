package agendas

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/musda-event/backend/internal/models"
)

const agendaColumns = `id, title, description, starts_at, ends_at, location, speaker, is_active, created_at, updated_at`

// Repository handles agenda persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an agendas repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanAgenda(row pgx.Row, a *models.Agenda) error {
	return row.Scan(&a.ID, &a.Title, &a.Description, &a.StartsAt, &a.EndsAt,
		&a.Location, &a.Speaker, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
}

// Create inserts a new agenda item.
func (r *Repository) Create(ctx context.Context, a *models.Agenda) error {
	const q = `INSERT INTO agendas (title, description, starts_at, ends_at, location, speaker, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + agendaColumns
	return scanAgenda(r.pool.QueryRow(ctx, q, a.Title, a.Description, a.StartsAt, a.EndsAt, a.Location, a.Speaker, a.IsActive), a)
}

// GetByID returns an agenda item, or nil when unknown.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.Agenda, error) {
	const q = `SELECT ` + agendaColumns + ` FROM agendas WHERE id = $1`
	var a models.Agenda
	err := scanAgenda(r.pool.QueryRow(ctx, q, id), &a)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// List returns agenda items in programme order. activeOnly hides inactive
// items for the public site.
func (r *Repository) List(ctx context.Context, activeOnly bool) ([]models.Agenda, error) {
	base := `SELECT ` + agendaColumns + ` FROM agendas`
	if activeOnly {
		base += ` WHERE is_active`
	}
	rows, err := r.pool.Query(ctx, base+` ORDER BY starts_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Agenda
	for rows.Next() {
		var a models.Agenda
		if err := scanAgenda(rows, &a); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// Update persists edits to an agenda item.
func (r *Repository) Update(ctx context.Context, a *models.Agenda) error {
	const q = `UPDATE agendas SET title = $2, description = $3, starts_at = $4, ends_at = $5,
		location = $6, speaker = $7, is_active = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	return r.pool.QueryRow(ctx, q, a.ID, a.Title, a.Description, a.StartsAt, a.EndsAt, a.Location, a.Speaker, a.IsActive).
		Scan(&a.UpdatedAt)
}

// Delete removes an agenda item. Reports whether a row was removed.
func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM agendas WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
