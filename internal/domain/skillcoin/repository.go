package skillcoin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository mutates account balances and appends ledger rows. Every balance
// change goes through lockBalance + applyTx so the update and its ledger row
// always land in the same transaction.
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// GetBalance returns the current balance for an account
func (r *Repository) GetBalance(ctx context.Context, accountID uuid.UUID) (int64, error) {
	var balance int64
	err := r.db.GetContext(ctx, &balance, `SELECT skillcoin_balance FROM users WHERE id = $1`, accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrAccountNotFound
	}
	return balance, err
}

// lockBalance takes the row lock on the account and returns the balance as
// of the lock.
func (r *Repository) lockBalance(ctx context.Context, tx *sqlx.Tx, accountID uuid.UUID) (int64, error) {
	var balance int64
	err := tx.GetContext(ctx, &balance, `SELECT skillcoin_balance FROM users WHERE id = $1 FOR UPDATE`, accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrAccountNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("%w: lock account row", ErrInternal)
	}
	return balance, nil
}

// applyTx writes the new balance and the ledger row recording the change.
// The caller must already hold the account row lock.
func (r *Repository) applyTx(ctx context.Context, tx *sqlx.Tx, accountID uuid.UUID, delta, before int64, category Category, offerID *int64, memo string) error {
	after := before + delta

	if _, err := tx.ExecContext(ctx, `
		UPDATE users SET skillcoin_balance = $2, updated_at = now() WHERE id = $1
	`, accountID, after); err != nil {
		return fmt.Errorf("%w: update account balance", ErrInternal)
	}

	var ref interface{}
	if offerID != nil {
		ref = *offerID
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO skillcoin_transactions (account_id, amount, category, balance_before, balance_after, offer_id, memo)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, accountID, delta, string(category), before, after, ref, memo); err != nil {
		return fmt.Errorf("%w: insert ledger entry", ErrInternal)
	}

	return nil
}

// CreditTx credits an account inside a caller-owned transaction. The caller
// is responsible for commit/rollback.
func (r *Repository) CreditTx(ctx context.Context, tx *sqlx.Tx, accountID uuid.UUID, amount int64, category Category, offerID *int64, memo string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	before, err := r.lockBalance(ctx, tx, accountID)
	if err != nil {
		return err
	}

	return r.applyTx(ctx, tx, accountID, amount, before, category, offerID, memo)
}

// DebitTx debits an account inside a caller-owned transaction. Fails with
// ErrInsufficientBalance before any write when the balance doesn't cover the
// amount.
func (r *Repository) DebitTx(ctx context.Context, tx *sqlx.Tx, accountID uuid.UUID, amount int64, category Category, offerID *int64, memo string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	before, err := r.lockBalance(ctx, tx, accountID)
	if err != nil {
		return err
	}

	if before < amount {
		return ErrInsufficientBalance
	}

	return r.applyTx(ctx, tx, accountID, -amount, before, category, offerID, memo)
}

// Credit applies a credit in its own transaction
func (r *Repository) Credit(ctx context.Context, accountID uuid.UUID, amount int64, category Category, offerID *int64, memo string) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		return r.CreditTx(ctx, tx, accountID, amount, category, offerID, memo)
	})
}

// Debit applies a debit in its own transaction
func (r *Repository) Debit(ctx context.Context, accountID uuid.UUID, amount int64, category Category, offerID *int64, memo string) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		return r.DebitTx(ctx, tx, accountID, amount, category, offerID, memo)
	})
}

func (r *Repository) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("%w: begin tx", ErrInternal)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit tx", ErrInternal)
	}
	return nil
}

// ListEntries returns an account's ledger history, newest first
func (r *Repository) ListEntries(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]LedgerEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	entries := []LedgerEntry{}
	err := r.db.SelectContext(ctx, &entries, `
		SELECT id, account_id, amount, category, balance_before, balance_after, offer_id, memo, created_at
		FROM skillcoin_transactions
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, accountID, limit, offset)
	return entries, err
}

// Statistics aggregates earned/spent totals for an account
func (r *Repository) Statistics(ctx context.Context, accountID uuid.UUID) (*Statistics, error) {
	var stats Statistics
	err := r.db.GetContext(ctx, &stats, `
		SELECT
			COUNT(*) AS total_transactions,
			COALESCE(SUM(amount) FILTER (WHERE amount > 0), 0) AS total_earned,
			COALESCE(SUM(-amount) FILTER (WHERE amount < 0), 0) AS total_spent,
			COALESCE((SELECT skillcoin_balance FROM users WHERE id = $1), 0) AS current_balance
		FROM skillcoin_transactions
		WHERE account_id = $1
	`, accountID)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
