package offer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// offerColumns excludes proof_data; proof bytes are only fetched by GetProof.
const offerColumns = `
	id, code, initiator_id, counterparty_id, mode, offered_skill_id,
	requested_skill_id, hours, scheduled_at, location_kind, location_detail,
	note, status, settled, proof_kind, created_at, updated_at`

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) DB() *sqlx.DB {
	return r.db
}

// Create inserts a new offer in pending status and assigns its display code
// from the generated id.
func (r *Repository) Create(ctx context.Context, o *Offer) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.GetContext(ctx, &o.ID, `
		INSERT INTO offers (
			initiator_id, counterparty_id, mode, offered_skill_id,
			requested_skill_id, hours, scheduled_at, location_kind,
			location_detail, note, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 'pending')
		RETURNING id
	`, o.InitiatorID, o.CounterpartyID, o.Mode, o.OfferedSkillID,
		o.RequestedSkillID, o.Hours, o.ScheduledAt, o.LocationKind,
		o.LocationDetail, o.Note)
	if err != nil {
		return err
	}

	o.Code = fmt.Sprintf("TRX-%06d", o.ID)
	if _, err := tx.ExecContext(ctx, `UPDATE offers SET code = $2 WHERE id = $1`, o.ID, o.Code); err != nil {
		return err
	}

	if err := r.LogActionTx(ctx, tx, o.ID, o.InitiatorID, ActionPropose, "Offer proposed"); err != nil {
		return err
	}

	return tx.Commit()
}

// GetByID returns an offer without its proof payload
func (r *Repository) GetByID(ctx context.Context, id int64) (*Offer, error) {
	var o Offer
	err := r.db.GetContext(ctx, &o, `SELECT `+offerColumns+` FROM offers WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOfferNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// GetByIDTx loads the offer under its row lock. Every mutating transition
// starts here so concurrent requests serialize on the offer row.
func (r *Repository) GetByIDTx(ctx context.Context, tx *sqlx.Tx, id int64) (*Offer, error) {
	var o Offer
	err := tx.GetContext(ctx, &o, `SELECT `+offerColumns+` FROM offers WHERE id = $1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOfferNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateStatusTx writes the new status inside the caller's transaction
func (r *Repository) UpdateStatusTx(ctx context.Context, tx *sqlx.Tx, id int64, status Status) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE offers SET status = $2, updated_at = now() WHERE id = $1
	`, id, status)
	return err
}

// ListByUser returns a user's offers, optionally filtered by role
// (sent/received) and status, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, role string, status Status, limit, offset int) ([]Offer, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + offerColumns + ` FROM offers WHERE `
	args := []interface{}{userID}

	switch role {
	case "sent":
		query += `initiator_id = $1`
	case "received":
		query += `counterparty_id = $1`
	default:
		query += `(initiator_id = $1 OR counterparty_id = $1)`
	}

	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}

	args = append(args, limit, offset)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	offers := []Offer{}
	err := r.db.SelectContext(ctx, &offers, query, args...)
	return offers, err
}

// History returns a user's terminal offers, most recently updated first
func (r *Repository) History(ctx context.Context, userID uuid.UUID, limit int) ([]Offer, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	offers := []Offer{}
	err := r.db.SelectContext(ctx, &offers, `
		SELECT `+offerColumns+`
		FROM offers
		WHERE (initiator_id = $1 OR counterparty_id = $1)
		  AND status IN ('settled', 'rejected', 'cancelled')
		ORDER BY updated_at DESC
		LIMIT $2
	`, userID, limit)
	return offers, err
}

// PendingConfirmation returns offers awaiting the user's acknowledgement
func (r *Repository) PendingConfirmation(ctx context.Context, userID uuid.UUID) ([]Offer, error) {
	offers := []Offer{}
	err := r.db.SelectContext(ctx, &offers, `
		SELECT `+offerColumns+`
		FROM offers o
		WHERE (o.initiator_id = $1 OR o.counterparty_id = $1)
		  AND o.status IN ('ongoing', 'marked_complete')
		  AND EXISTS (
			SELECT 1 FROM offer_confirmations c
			WHERE c.offer_id = o.id AND c.participant_id = $1 AND NOT c.confirmed
		  )
		ORDER BY o.updated_at DESC
	`, userID)
	return offers, err
}

// Delete removes an offer row. The service guards that only rejected or
// cancelled offers reach here; settled offers are retained permanently.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM offers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrOfferNotFound
	}
	return nil
}

// SetProof attaches completion proof bytes to the offer
func (r *Repository) SetProof(ctx context.Context, id int64, data []byte, kind string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE offers SET proof_data = $2, proof_kind = $3, updated_at = now() WHERE id = $1
	`, id, data, kind)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrOfferNotFound
	}
	return nil
}

// GetProof fetches the proof payload
func (r *Repository) GetProof(ctx context.Context, id int64) ([]byte, string, error) {
	var row struct {
		Data []byte         `db:"proof_data"`
		Kind sql.NullString `db:"proof_kind"`
	}
	err := r.db.GetContext(ctx, &row, `SELECT proof_data, proof_kind FROM offers WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", ErrOfferNotFound
	}
	if err != nil {
		return nil, "", err
	}
	if len(row.Data) == 0 || !row.Kind.Valid {
		return nil, "", ErrProofNotFound
	}
	return row.Data, row.Kind.String, nil
}

// LogActionTx appends one transition audit row inside the caller's transaction
func (r *Repository) LogActionTx(ctx context.Context, tx *sqlx.Tx, offerID int64, userID uuid.UUID, action, detail string) error {
	var detailArg interface{}
	if detail != "" {
		detailArg = detail
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO offer_logs (offer_id, user_id, action, detail)
		VALUES ($1, $2, $3, $4)
	`, offerID, userID, action, detailArg)
	return err
}

// ListLogs returns the transition audit trail for an offer, newest first
func (r *Repository) ListLogs(ctx context.Context, offerID int64) ([]Log, error) {
	logs := []Log{}
	err := r.db.SelectContext(ctx, &logs, `
		SELECT id, offer_id, user_id, action, detail, created_at
		FROM offer_logs
		WHERE offer_id = $1
		ORDER BY created_at DESC, id DESC
	`, offerID)
	return logs, err
}
