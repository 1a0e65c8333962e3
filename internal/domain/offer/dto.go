package offer

import (
	"time"

	"github.com/google/uuid"
)

// CreateOfferRequest is the propose payload
type CreateOfferRequest struct {
	CounterpartyID   string    `json:"counterparty_id" validate:"required,uuid"`
	Mode             string    `json:"mode" validate:"required,offer_mode"`
	OfferedSkillID   *int64    `json:"offered_skill_id" validate:"omitempty,gt=0"`
	RequestedSkillID int64     `json:"requested_skill_id" validate:"required,gt=0"`
	Hours            int64     `json:"hours" validate:"required,gte=1"`
	ScheduledAt      time.Time `json:"scheduled_at" validate:"required"`
	LocationKind     string    `json:"location_kind" validate:"required,location_kind"`
	LocationDetail   string    `json:"location_detail" validate:"omitempty,max=500"`
	Note             string    `json:"note" validate:"omitempty,max=1000"`
}

// ReasonRequest carries an optional reason for reject/cancel
type ReasonRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

// ConfirmRequest carries an optional confirmation note
type ConfirmRequest struct {
	Note string `json:"note" validate:"omitempty,max=500"`
}

// ProofRequest uploads completion proof as base64
type ProofRequest struct {
	Data string `json:"data" validate:"required"`
	Kind string `json:"kind" validate:"required,oneof=image/jpeg image/png image/webp application/pdf"`
}

// OfferResponse is the API shape of an offer
type OfferResponse struct {
	ID             int64     `json:"id"`
	Code           string    `json:"code"`
	InitiatorID    uuid.UUID `json:"initiator_id"`
	CounterpartyID uuid.UUID `json:"counterparty_id"`

	Mode             Mode   `json:"mode"`
	OfferedSkillID   *int64 `json:"offered_skill_id,omitempty"`
	RequestedSkillID int64  `json:"requested_skill_id"`
	Hours            int64  `json:"hours"`

	ScheduledAt    time.Time `json:"scheduled_at"`
	LocationKind   string    `json:"location_kind"`
	LocationDetail string    `json:"location_detail,omitempty"`
	Note           string    `json:"note,omitempty"`

	Status   Status `json:"status"`
	Settled  bool   `json:"settled"`
	HasProof bool   `json:"has_proof"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToResponse converts an offer entity to its API shape
func ToResponse(o *Offer) *OfferResponse {
	resp := &OfferResponse{
		ID:               o.ID,
		Code:             o.Code,
		InitiatorID:      o.InitiatorID,
		CounterpartyID:   o.CounterpartyID,
		Mode:             o.Mode,
		RequestedSkillID: o.RequestedSkillID,
		Hours:            o.Hours,
		ScheduledAt:      o.ScheduledAt,
		LocationKind:     string(o.LocationKind),
		Status:           o.Status,
		Settled:          o.Settled,
		HasProof:         o.ProofKind.Valid,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}

	if o.OfferedSkillID.Valid {
		v := o.OfferedSkillID.Int64
		resp.OfferedSkillID = &v
	}
	if o.LocationDetail.Valid {
		resp.LocationDetail = o.LocationDetail.String
	}
	if o.Note.Valid {
		resp.Note = o.Note.String
	}

	return resp
}

// ToResponseList converts a slice of offers
func ToResponseList(offers []Offer) []*OfferResponse {
	out := make([]*OfferResponse, len(offers))
	for i := range offers {
		out[i] = ToResponse(&offers[i])
	}
	return out
}
