package settlement

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// settleRow is the slice of the offers table the engine needs. The engine
// re-reads it under the row lock on every attempt rather than trusting a
// previously loaded offer.
type settleRow struct {
	ID               int64         `db:"id"`
	Code             string        `db:"code"`
	InitiatorID      uuid.UUID     `db:"initiator_id"`
	CounterpartyID   uuid.UUID     `db:"counterparty_id"`
	Mode             string        `db:"mode"`
	OfferedSkillID   sql.NullInt64 `db:"offered_skill_id"`
	RequestedSkillID int64         `db:"requested_skill_id"`
	Hours            int64         `db:"hours"`
	Status           string        `db:"status"`
	Settled          bool          `db:"settled"`
}

func getOfferForUpdate(ctx context.Context, tx *sqlx.Tx, offerID int64) (*settleRow, error) {
	var row settleRow
	err := tx.GetContext(ctx, &row, `
		SELECT id, code, initiator_id, counterparty_id, mode, offered_skill_id,
		       requested_skill_id, hours, status, settled
		FROM offers
		WHERE id = $1
		FOR UPDATE
	`, offerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOfferNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// lockAccounts takes both account row locks in ascending id order so two
// settlements touching the same accounts cannot deadlock.
func lockAccounts(ctx context.Context, tx *sqlx.Tx, a, b uuid.UUID) error {
	first, second := a, b
	if bytes.Compare(b[:], a[:]) < 0 {
		first, second = b, a
	}
	for _, id := range []uuid.UUID{first, second} {
		res, err := tx.ExecContext(ctx, `SELECT 1 FROM users WHERE id = $1 FOR UPDATE`, id)
		if err != nil {
			return fmt.Errorf("lock account %s: %w", id, err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return fmt.Errorf("lock account %s: %w", id, ErrAccountMissing)
		}
	}
	return nil
}

func markSettled(ctx context.Context, tx *sqlx.Tx, offerID int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE offers
		SET status = 'settled', settled = TRUE, updated_at = now()
		WHERE id = $1
	`, offerID)
	return err
}

func insertLog(ctx context.Context, tx *sqlx.Tx, offerID int64, userID uuid.UUID, detail string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO offer_logs (offer_id, user_id, action, detail)
		VALUES ($1, $2, 'settle', $3)
	`, offerID, userID, detail)
	return err
}
