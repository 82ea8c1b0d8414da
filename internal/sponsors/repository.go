package sponsors

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/musda-event/backend/internal/models"
)

const sponsorColumns = `id, name, category, logo_url, website, is_active, created_at, updated_at`

// Repository handles sponsor persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a sponsors repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanSponsor(row pgx.Row, s *models.Sponsor) error {
	return row.Scan(&s.ID, &s.Name, &s.Category, &s.LogoURL, &s.Website,
		&s.IsActive, &s.CreatedAt, &s.UpdatedAt)
}

// Create inserts a new sponsor.
func (r *Repository) Create(ctx context.Context, s *models.Sponsor) error {
	const q = `INSERT INTO sponsors (name, category, logo_url, website, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + sponsorColumns
	return scanSponsor(r.pool.QueryRow(ctx, q, s.Name, s.Category, s.LogoURL, s.Website, s.IsActive), s)
}

// GetByID returns a sponsor, or nil when unknown.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.Sponsor, error) {
	const q = `SELECT ` + sponsorColumns + ` FROM sponsors WHERE id = $1`
	var s models.Sponsor
	err := scanSponsor(r.pool.QueryRow(ctx, q, id), &s)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns sponsors grouped by category. activeOnly hides inactive
// sponsors for the public site.
func (r *Repository) List(ctx context.Context, activeOnly bool) ([]models.Sponsor, error) {
	base := `SELECT ` + sponsorColumns + ` FROM sponsors`
	if activeOnly {
		base += ` WHERE is_active`
	}
	rows, err := r.pool.Query(ctx, base+` ORDER BY category, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Sponsor
	for rows.Next() {
		var s models.Sponsor
		if err := scanSponsor(rows, &s); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// Update persists edits to a sponsor.
func (r *Repository) Update(ctx context.Context, s *models.Sponsor) error {
	const q = `UPDATE sponsors SET name = $2, category = $3, logo_url = $4, website = $5,
		is_active = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	return r.pool.QueryRow(ctx, q, s.ID, s.Name, s.Category, s.LogoURL, s.Website, s.IsActive).
		Scan(&s.UpdatedAt)
}

// Delete removes a sponsor. Reports whether a row was removed.
func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sponsors WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
