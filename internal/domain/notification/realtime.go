package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RealtimePublisher pushes in-app notification events to connected clients.
type RealtimePublisher interface {
	NotifyNew(ctx context.Context, userID uuid.UUID, notification *NotificationResponse, unreadCount int) error
}

// RedisPublisher publishes notification events on a per-user Redis channel.
// Frontend gateways subscribe to notifications:<user_id>.
type RedisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher creates a Redis-backed publisher. Returns nil when the
// client is nil so the service degrades to store-only delivery.
func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	if client == nil {
		return nil
	}
	return &RedisPublisher{client: client}
}

type realtimeEvent struct {
	Event        string                `json:"event"`
	Notification *NotificationResponse `json:"notification"`
	UnreadCount  int                   `json:"unread_count"`
}

func (p *RedisPublisher) NotifyNew(ctx context.Context, userID uuid.UUID, notification *NotificationResponse, unreadCount int) error {
	payload, err := json.Marshal(realtimeEvent{
		Event:        "notification.new",
		Notification: notification,
		UnreadCount:  unreadCount,
	})
	if err != nil {
		return err
	}
	channel := fmt.Sprintf("notifications:%s", userID)
	return p.client.Publish(ctx, channel, payload).Err()
}
