package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/musda-event/backend/internal/models"
	"github.com/musda-event/backend/pkg/utils"
)

// Repository handles admin persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an auth repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByID returns an admin by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Admin, error) {
	const q = `SELECT id, email, password_hash, full_name, role, created_at, updated_at
		FROM admins WHERE id = $1`
	var a models.Admin
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&a.ID, &a.Email, &a.Password, &a.FullName, &a.Role, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByEmail returns an admin by email, or nil when no such admin exists.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	const q = `SELECT id, email, password_hash, full_name, role, created_at, updated_at
		FROM admins WHERE email = $1`
	var a models.Admin
	err := r.pool.QueryRow(ctx, q, email).
		Scan(&a.ID, &a.Email, &a.Password, &a.FullName, &a.Role, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// List returns all admins without password hashes.
func (r *Repository) List(ctx context.Context) ([]models.AdminPublic, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, email, full_name, role, created_at
		FROM admins ORDER BY full_name, email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.AdminPublic
	for rows.Next() {
		var a models.AdminPublic
		if err := rows.Scan(&a.ID, &a.Email, &a.FullName, &a.Role, &a.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// Create inserts a new admin.
func (r *Repository) Create(ctx context.Context, email, passwordHash, fullName string, role models.Role) (*models.Admin, error) {
	const q = `INSERT INTO admins (email, password_hash, full_name, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, email, password_hash, full_name, role, created_at, updated_at`
	var a models.Admin
	err := r.pool.QueryRow(ctx, q, email, passwordHash, fullName, string(role)).
		Scan(&a.ID, &a.Email, &a.Password, &a.FullName, &a.Role, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// EnsureBootstrapAdmin creates the seed admin from configuration when the
// admins table is empty. No-op when admins exist or when email/password are
// not configured.
func (r *Repository) EnsureBootstrapAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM admins`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = r.Create(ctx, email, hash, "Administrator", models.RoleAdmin)
	return err
}
