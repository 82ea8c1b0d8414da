package payments

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/musda-event/backend/internal/models"
)

const settingColumns = `id, bank_name, account_number, account_holder, amount, notes, is_active, created_at, updated_at`

// Repository handles payment setting persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a payments repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanSetting(row pgx.Row, p *models.PaymentSetting) error {
	return row.Scan(&p.ID, &p.BankName, &p.AccountNumber, &p.AccountHolder,
		&p.Amount, &p.Notes, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
}

// GetActive returns the active payment setting, or nil when none is
// configured.
func (r *Repository) GetActive(ctx context.Context) (*models.PaymentSetting, error) {
	const q = `SELECT ` + settingColumns + ` FROM payment_settings
		WHERE is_active ORDER BY updated_at DESC LIMIT 1`
	var p models.PaymentSetting
	err := scanSetting(r.pool.QueryRow(ctx, q), &p)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Upsert replaces the active payment setting. Earlier settings are retired in
// the same transaction so at most one row stays active.
func (r *Repository) Upsert(ctx context.Context, p *models.PaymentSetting) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE payment_settings SET is_active = FALSE, updated_at = NOW() WHERE is_active`); err != nil {
		return err
	}
	const q = `INSERT INTO payment_settings (bank_name, account_number, account_holder, amount, notes, is_active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		RETURNING ` + settingColumns
	if err := scanSetting(tx.QueryRow(ctx, q, p.BankName, p.AccountNumber, p.AccountHolder, p.Amount, p.Notes), p); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
