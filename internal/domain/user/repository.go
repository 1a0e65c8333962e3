package user

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// GetByID returns a user by id
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, `
		SELECT id, full_name, city, role, skillcoin_balance, total_hours_taught,
		       transactions_count, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Exists reports whether a user row is present
func (r *Repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id)
	return exists, err
}

// AddActivityTx bumps the aggregate counters after a settled offer: one more
// transaction and the offer's duration in taught hours. Runs inside the
// caller's settlement transaction; the caller must already hold the row lock.
func (r *Repository) AddActivityTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, hours int64) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE users
		SET transactions_count = transactions_count + 1,
		    total_hours_taught = total_hours_taught + $2,
		    updated_at = now()
		WHERE id = $1
	`, id, hours)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}
