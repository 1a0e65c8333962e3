package confirmation

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository tracks per-participant completion acknowledgements. The pair is
// created when the offer is accepted; confirming mutates a row at most once
// in the forward direction.
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// CreatePairTx inserts the two unconfirmed records in one statement, inside
// the caller's transaction (the accept transaction). Re-running the accept
// is an idempotent no-op; a conflicting pair for different participants
// surfaces as ErrDuplicatePair.
func (r *Repository) CreatePairTx(ctx context.Context, tx *sqlx.Tx, offerID int64, partyA, partyB uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO offer_confirmations (offer_id, participant_id)
		VALUES ($1, $2), ($1, $3)
		ON CONFLICT (offer_id, participant_id) DO NOTHING
	`, offerID, partyA, partyB)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicatePair
		}
		return err
	}
	return nil
}

// ConfirmTx marks the participant's own record confirmed. Confirming twice
// is a harmless idempotent update; a missing row means the caller is not a
// participant of the offer.
func (r *Repository) ConfirmTx(ctx context.Context, tx *sqlx.Tx, offerID int64, participantID uuid.UUID, note string) error {
	var noteArg interface{}
	if note != "" {
		noteArg = note
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE offer_confirmations
		SET confirmed = TRUE,
		    confirmed_at = now(),
		    note = COALESCE($3, note)
		WHERE offer_id = $1 AND participant_id = $2
	`, offerID, participantID, noteArg)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotAParticipant
	}
	return nil
}

// BothConfirmedTx reports whether exactly two records exist and both are
// confirmed. This is the sole settlement trigger condition and must be
// evaluated in the same transaction as the confirm it follows.
func (r *Repository) BothConfirmedTx(ctx context.Context, tx *sqlx.Tx, offerID int64) (bool, error) {
	var counts struct {
		Total     int `db:"total"`
		Confirmed int `db:"confirmed"`
	}
	err := tx.GetContext(ctx, &counts, `
		SELECT COUNT(*) AS total, COUNT(*) FILTER (WHERE confirmed) AS confirmed
		FROM offer_confirmations
		WHERE offer_id = $1
	`, offerID)
	if err != nil {
		return false, err
	}
	return counts.Total == 2 && counts.Confirmed == 2, nil
}

// ListByOffer returns both records for an offer
func (r *Repository) ListByOffer(ctx context.Context, offerID int64) ([]Record, error) {
	records := []Record{}
	err := r.db.SelectContext(ctx, &records, `
		SELECT id, offer_id, participant_id, confirmed, confirmed_at, note, created_at
		FROM offer_confirmations
		WHERE offer_id = $1
		ORDER BY participant_id
	`, offerID)
	return records, err
}

// HasConfirmed reports whether a participant has already confirmed
func (r *Repository) HasConfirmed(ctx context.Context, offerID int64, participantID uuid.UUID) (bool, error) {
	var confirmed bool
	err := r.db.GetContext(ctx, &confirmed, `
		SELECT confirmed FROM offer_confirmations
		WHERE offer_id = $1 AND participant_id = $2
	`, offerID, participantID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrNotAParticipant
	}
	return confirmed, err
}
