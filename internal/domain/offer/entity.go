package offer

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Status represents offer status (matches offer_status enum)
type Status string

const (
	StatusPending        Status = "pending"
	StatusAccepted       Status = "accepted"
	StatusOngoing        Status = "ongoing"
	StatusMarkedComplete Status = "marked_complete"
	StatusSettled        Status = "settled"
	StatusRejected       Status = "rejected"
	StatusCancelled      Status = "cancelled"
)

// Mode represents the exchange mode (matches offer_mode enum)
type Mode string

const (
	// ModeBarter: each side teaches a skill; settlement credits both
	// independently.
	ModeBarter Mode = "barter"
	// ModeAssistance: the initiator pays the counterparty; no skill is
	// offered in return.
	ModeAssistance Mode = "assistance"
)

// LocationKind represents where the session happens
type LocationKind string

const (
	LocationOnline LocationKind = "online"
	LocationOnsite LocationKind = "onsite"
)

// Offer is a proposed exchange between an initiator and a counterparty
// (matches offers table).
type Offer struct {
	ID   int64  `db:"id"`
	Code string `db:"code"`

	InitiatorID    uuid.UUID `db:"initiator_id"`
	CounterpartyID uuid.UUID `db:"counterparty_id"`

	Mode             Mode           `db:"mode"`
	OfferedSkillID   sql.NullInt64  `db:"offered_skill_id"` // NULL in assistance mode
	RequestedSkillID int64          `db:"requested_skill_id"`
	Hours            int64          `db:"hours"`
	ScheduledAt      time.Time      `db:"scheduled_at"`
	LocationKind     LocationKind   `db:"location_kind"`
	LocationDetail   sql.NullString `db:"location_detail"`
	Note             sql.NullString `db:"note"`

	Status Status `db:"status"`

	// Settled flips false -> true exactly once and never reverses. It is
	// the idempotency guard against a second currency movement.
	Settled bool `db:"settled"`

	ProofData []byte         `db:"proof_data"`
	ProofKind sql.NullString `db:"proof_kind"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// transitions is the authoritative table of legal status moves. Confirm is
// not listed: it records an acknowledgement without changing status.
var transitions = map[Status][]Status{
	StatusPending:        {StatusAccepted, StatusRejected, StatusCancelled},
	StatusAccepted:       {StatusOngoing, StatusCancelled},
	StatusOngoing:        {StatusMarkedComplete},
	StatusMarkedComplete: {StatusSettled},
	StatusSettled:        {},
	StatusRejected:       {},
	StatusCancelled:      {},
}

// CanTransitionTo checks the transition table
func (o *Offer) CanTransitionTo(next Status) bool {
	for _, s := range transitions[o.Status] {
		if s == next {
			return true
		}
	}
	return false
}

// IsParticipant reports whether the user is one of the two parties
func (o *Offer) IsParticipant(userID uuid.UUID) bool {
	return o.InitiatorID == userID || o.CounterpartyID == userID
}

// IsTerminal reports whether the offer can no longer move
func (o *Offer) IsTerminal() bool {
	return o.Status == StatusSettled || o.Status == StatusRejected || o.Status == StatusCancelled
}

// CanConfirm reports whether completion acknowledgements are being collected
func (o *Offer) CanConfirm() bool {
	return o.Status == StatusOngoing || o.Status == StatusMarkedComplete
}

// Deletable: settled offers are the permanent audit trail; only the two
// non-settled terminal states may be removed on explicit request.
func (o *Offer) Deletable() bool {
	return o.Status == StatusRejected || o.Status == StatusCancelled
}

// Action log verbs written to offer_logs on each transition.
const (
	ActionPropose      = "propose"
	ActionAccept       = "accept"
	ActionReject       = "reject"
	ActionCancel       = "cancel"
	ActionBegin        = "begin"
	ActionMarkComplete = "mark_complete"
	ActionConfirm      = "confirm"
	ActionSettle       = "settle"
)

// Log is one transition audit row (matches offer_logs table)
type Log struct {
	ID        int64          `db:"id" json:"id"`
	OfferID   int64          `db:"offer_id" json:"offer_id"`
	UserID    uuid.UUID      `db:"user_id" json:"user_id"`
	Action    string         `db:"action" json:"action"`
	Detail    sql.NullString `db:"detail" json:"detail,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}
