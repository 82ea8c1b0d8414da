package guests

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/musda-event/backend/internal/models"
)

// ErrDuplicate is returned when an insert or update hits one of the unique
// indexes on email, phone or token. The index is the authoritative duplicate
// guard; FindDuplicate exists only to produce a friendlier error first.
var ErrDuplicate = errors.New("guest already registered")

const uniqueViolation = "23505"

const guestColumns = `id, full_name, email, phone, institution, status, token, qr_payload, attended_at, created_at, updated_at`

// Repository handles guest persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a guests repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanGuest(row pgx.Row, g *models.Guest) error {
	return row.Scan(&g.ID, &g.FullName, &g.Email, &g.Phone, &g.Institution, &g.Status,
		&g.Token, &g.QRPayload, &g.AttendedAt, &g.CreatedAt, &g.UpdatedAt)
}

// Create inserts a new guest and fills in its assigned id and timestamps.
// Returns ErrDuplicate when a unique constraint is violated.
func (r *Repository) Create(ctx context.Context, g *models.Guest) error {
	const q = `INSERT INTO guests (full_name, email, phone, institution, token, qr_payload)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + guestColumns
	err := scanGuest(r.pool.QueryRow(ctx, q, g.FullName, g.Email, g.Phone, g.Institution, g.Token, g.QRPayload), g)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// GetByID returns a guest by id, or nil when no such guest exists.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.Guest, error) {
	const q = `SELECT ` + guestColumns + ` FROM guests WHERE id = $1`
	var g models.Guest
	err := scanGuest(r.pool.QueryRow(ctx, q, id), &g)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// GetByToken returns a guest by verification token, or nil when unknown.
func (r *Repository) GetByToken(ctx context.Context, token string) (*models.Guest, error) {
	const q = `SELECT ` + guestColumns + ` FROM guests WHERE token = $1`
	var g models.Guest
	err := scanGuest(r.pool.QueryRow(ctx, q, token), &g)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// FindDuplicate returns an existing guest matching the email or the
// normalized phone, or nil when neither is taken. excludeID skips one record
// so updates do not collide with themselves; pass 0 on registration.
// Evaluated against the current snapshot without locking; the unique indexes
// catch the raced case on insert.
func (r *Repository) FindDuplicate(ctx context.Context, email, phone string, excludeID int64) (*models.Guest, error) {
	const q = `SELECT ` + guestColumns + ` FROM guests
		WHERE (email = $1 OR phone = $2) AND id <> $3
		LIMIT 1`
	var g models.Guest
	err := scanGuest(r.pool.QueryRow(ctx, q, email, phone, excludeID), &g)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// List returns guests newest first, optionally filtered by attendance status.
func (r *Repository) List(ctx context.Context, status models.GuestStatus) ([]models.Guest, error) {
	base := `SELECT ` + guestColumns + ` FROM guests`
	var args []interface{}
	if status != "" {
		base += ` WHERE status = $1`
		args = append(args, string(status))
	}
	rows, err := r.pool.Query(ctx, base+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Guest
	for rows.Next() {
		var g models.Guest
		if err := scanGuest(rows, &g); err != nil {
			return nil, err
		}
		list = append(list, g)
	}
	return list, rows.Err()
}

// MarkAttended transitions a pending guest to attended. Reports whether a
// transition actually occurred; marking an already-attended guest is a no-op.
func (r *Repository) MarkAttended(ctx context.Context, id int64) (bool, error) {
	const q = `UPDATE guests SET status = 'attended', attended_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'pending'`
	tag, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Update persists edits to a guest's identity fields.
// Returns ErrDuplicate when the new email/phone collides with another guest.
func (r *Repository) Update(ctx context.Context, g *models.Guest) error {
	const q = `UPDATE guests SET full_name = $2, email = $3, phone = $4, institution = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	err := r.pool.QueryRow(ctx, q, g.ID, g.FullName, g.Email, g.Phone, g.Institution).Scan(&g.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// Delete hard-removes a guest record (administrative action only).
// Reports whether a record was actually removed.
func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM guests WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
