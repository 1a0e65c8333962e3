package notification

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Service handles notification logic. Delivery is best effort: callers fire
// and forget, failures are logged and never propagate into the operation
// that triggered the event.
type Service struct {
	repo     Repository
	realtime RealtimePublisher
}

// NewService creates notification service
func NewService(repo Repository, realtime RealtimePublisher) *Service {
	return &Service{repo: repo, realtime: realtime}
}

// Create stores a notification and publishes it to the realtime channel
func (s *Service) Create(ctx context.Context, userID uuid.UUID, notifType Type, title, body string, data *NotificationData) (*Notification, error) {
	n := &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      notifType,
		Title:     title,
		IsRead:    false,
		CreatedAt: time.Now(),
	}

	if body != "" {
		n.Body = sql.NullString{String: body, Valid: true}
	}
	n.SetData(data)

	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}

	if s.realtime != nil {
		unread, _ := s.repo.CountUnreadByUser(ctx, userID)
		if err := s.realtime.NotifyNew(ctx, userID, NotificationResponseFromEntity(n), unread); err != nil {
			log.Warn().Err(err).Str("user_id", userID.String()).Msg("realtime notification publish failed")
		}
	}

	return n, nil
}

// List returns notifications for user
func (s *Service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// GetUnreadCount returns unread count
func (s *Service) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountUnreadByUser(ctx, userID)
}

// MarkAsRead marks single notification as read
func (s *Service) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, id, userID)
}

// MarkAllAsRead marks all notifications as read
func (s *Service) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *Service) fire(ctx context.Context, userID uuid.UUID, notifType Type, title, body string, data *NotificationData) {
	if _, err := s.Create(ctx, userID, notifType, title, body, data); err != nil {
		log.Warn().Err(err).Str("type", string(notifType)).Msg("failed to create notification")
	}
}

// --- Offer lifecycle events ---

// NotifyOfferReceived notifies the counterparty about a new offer
func (s *Service) NotifyOfferReceived(ctx context.Context, userID uuid.UUID, offerID int64, code string) {
	s.fire(ctx, userID, TypeOfferReceived,
		"New exchange offer",
		fmt.Sprintf("You received exchange offer %s", code),
		&NotificationData{OfferID: &offerID, OfferCode: code},
	)
}

// NotifyOfferAccepted notifies the initiator their offer was accepted
func (s *Service) NotifyOfferAccepted(ctx context.Context, userID uuid.UUID, offerID int64, code string) {
	s.fire(ctx, userID, TypeOfferAccepted,
		"Offer accepted",
		fmt.Sprintf("Your offer %s was accepted", code),
		&NotificationData{OfferID: &offerID, OfferCode: code},
	)
}

// NotifyOfferRejected notifies the initiator their offer was rejected
func (s *Service) NotifyOfferRejected(ctx context.Context, userID uuid.UUID, offerID int64, code string, reason string) {
	body := fmt.Sprintf("Your offer %s was rejected", code)
	if reason != "" {
		body = fmt.Sprintf("Your offer %s was rejected: %s", code, reason)
	}
	s.fire(ctx, userID, TypeOfferRejected, "Offer rejected", body,
		&NotificationData{OfferID: &offerID, OfferCode: code},
	)
}

// NotifyOfferCancelled notifies the other party the offer was called off
func (s *Service) NotifyOfferCancelled(ctx context.Context, userID uuid.UUID, offerID int64, code string) {
	s.fire(ctx, userID, TypeOfferCancelled,
		"Offer cancelled",
		fmt.Sprintf("Offer %s was cancelled", code),
		&NotificationData{OfferID: &offerID, OfferCode: code},
	)
}

// NotifyPartnerConfirmed notifies the other party their confirmation is
// still outstanding
func (s *Service) NotifyPartnerConfirmed(ctx context.Context, userID uuid.UUID, offerID int64, code string) {
	s.fire(ctx, userID, TypePartnerConfirmed,
		"Partner confirmed completion",
		fmt.Sprintf("Your partner confirmed offer %s, waiting for your confirmation", code),
		&NotificationData{OfferID: &offerID, OfferCode: code},
	)
}

// --- Settlement events ---

// NotifyPaymentSent notifies the payer their skillcoins were deducted
func (s *Service) NotifyPaymentSent(ctx context.Context, userID uuid.UUID, amount int64, offerID int64, code string) {
	s.fire(ctx, userID, TypePaymentSent,
		"Payment sent",
		fmt.Sprintf("%d skillcoins were paid for offer %s", amount, code),
		&NotificationData{OfferID: &offerID, OfferCode: code, Amount: &amount},
	)
}

// NotifyPaymentReceived notifies the teacher skillcoins arrived
func (s *Service) NotifyPaymentReceived(ctx context.Context, userID uuid.UUID, amount int64, offerID int64, code string) {
	s.fire(ctx, userID, TypePaymentReceived,
		"Payment received",
		fmt.Sprintf("You received %d skillcoins for offer %s", amount, code),
		&NotificationData{OfferID: &offerID, OfferCode: code, Amount: &amount},
	)
}

// NotifyBarterReward notifies a barter participant their reward was credited
func (s *Service) NotifyBarterReward(ctx context.Context, userID uuid.UUID, amount int64, offerID int64, code string) {
	s.fire(ctx, userID, TypeBarterReward,
		"Barter reward credited",
		fmt.Sprintf("You earned %d skillcoins from barter offer %s", amount, code),
		&NotificationData{OfferID: &offerID, OfferCode: code, Amount: &amount},
	)
}
