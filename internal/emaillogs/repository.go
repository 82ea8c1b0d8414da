package emaillogs

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/musda-event/backend/internal/models"
)

// Repository handles email_logs persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an email logs repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts one delivery record.
func (r *Repository) Create(ctx context.Context, l *models.EmailLog) error {
	const q = `INSERT INTO email_logs (guest_id, email_type, recipient_email, subject, status, sent_at, error_message)
		VALUES ($1, $2, $3, NULLIF($4,''), $5, $6, NULLIF($7,''))
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, l.GuestID, l.EmailType, l.RecipientEmail, l.Subject, l.Status, l.SentAt, l.ErrorMessage).
		Scan(&l.ID, &l.CreatedAt)
}

// List returns email logs newest first, optionally narrowed to one guest.
func (r *Repository) List(ctx context.Context, guestID *int64) ([]*models.EmailLog, error) {
	base := `SELECT id, guest_id, email_type, recipient_email, COALESCE(subject,''), status, sent_at, COALESCE(error_message,''), created_at
		FROM email_logs`
	var args []interface{}
	if guestID != nil {
		base += ` WHERE guest_id = $1`
		args = append(args, *guestID)
	}
	rows, err := r.pool.Query(ctx, base+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.EmailLog
	for rows.Next() {
		var l models.EmailLog
		if err := rows.Scan(&l.ID, &l.GuestID, &l.EmailType, &l.RecipientEmail, &l.Subject, &l.Status, &l.SentAt, &l.ErrorMessage, &l.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}
