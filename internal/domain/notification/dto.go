package notification

import (
	"time"

	"github.com/google/uuid"
)

// NotificationResponse is the API shape of a notification
type NotificationResponse struct {
	ID        uuid.UUID         `json:"id"`
	Type      Type              `json:"type"`
	Title     string            `json:"title"`
	Body      string            `json:"body,omitempty"`
	Data      *NotificationData `json:"data,omitempty"`
	IsRead    bool              `json:"is_read"`
	CreatedAt time.Time         `json:"created_at"`
}

// UnreadCountResponse carries the unread badge counter
type UnreadCountResponse struct {
	UnreadCount int `json:"unread_count"`
}

// NotificationResponseFromEntity converts entity to response
func NotificationResponseFromEntity(n *Notification) *NotificationResponse {
	resp := &NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Data:      n.GetData(),
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
	if n.Body.Valid {
		resp.Body = n.Body.String
	}
	return resp
}
