package notification

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Type represents notification type
type Type string

const (
	TypeOfferReceived    Type = "offer_received"    // Counterparty: someone proposed an exchange
	TypeOfferAccepted    Type = "offer_accepted"    // Initiator: offer accepted
	TypeOfferRejected    Type = "offer_rejected"    // Initiator: offer rejected
	TypeOfferCancelled   Type = "offer_cancelled"   // Other party: offer called off
	TypePartnerConfirmed Type = "partner_confirmed" // Other party: partner confirmed completion
	TypePaymentSent      Type = "payment_sent"      // Payer: skillcoins deducted
	TypePaymentReceived  Type = "payment_received"  // Teacher: skillcoins received
	TypeBarterReward     Type = "barter_reward"     // Both: barter reward credited
)

// Notification represents a user notification
type Notification struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	UserID    uuid.UUID       `db:"user_id" json:"user_id"`
	Type      Type            `db:"type" json:"type"`
	Title     string          `db:"title" json:"title"`
	Body      sql.NullString  `db:"body" json:"body,omitempty"`
	Data      json.RawMessage `db:"data" json:"data,omitempty"`
	IsRead    bool            `db:"is_read" json:"is_read"`
	ReadAt    sql.NullTime    `db:"read_at" json:"read_at,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// NotificationData links a notification to the offer it is about
type NotificationData struct {
	OfferID   *int64 `json:"offer_id,omitempty"`
	OfferCode string `json:"offer_code,omitempty"`
	Amount    *int64 `json:"amount,omitempty"`
}

// SetData encodes data to JSON
func (n *Notification) SetData(data *NotificationData) {
	if data != nil {
		n.Data, _ = json.Marshal(data)
	}
}

// GetData decodes data from JSON
func (n *Notification) GetData() *NotificationData {
	if n.Data == nil {
		return &NotificationData{}
	}
	var data NotificationData
	_ = json.Unmarshal(n.Data, &data)
	return &data
}
