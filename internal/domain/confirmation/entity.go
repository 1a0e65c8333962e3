package confirmation

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Record is one participant's completion acknowledgement for an offer
// (matches offer_confirmations table, unique on offer_id + participant_id).
// A record never un-confirms.
type Record struct {
	ID            int64          `db:"id" json:"id"`
	OfferID       int64          `db:"offer_id" json:"offer_id"`
	ParticipantID uuid.UUID      `db:"participant_id" json:"participant_id"`
	Confirmed     bool           `db:"confirmed" json:"confirmed"`
	ConfirmedAt   sql.NullTime   `db:"confirmed_at" json:"confirmed_at,omitempty"`
	Note          sql.NullString `db:"note" json:"note,omitempty"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
}
