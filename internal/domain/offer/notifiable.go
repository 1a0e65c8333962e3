package offer

import (
	"context"

	"github.com/google/uuid"
)

// Notifier delivers offer lifecycle events. Implementations are best effort;
// the service never fails an operation because a notification did.
type Notifier interface {
	NotifyOfferReceived(ctx context.Context, userID uuid.UUID, offerID int64, code string)
	NotifyOfferAccepted(ctx context.Context, userID uuid.UUID, offerID int64, code string)
	NotifyOfferRejected(ctx context.Context, userID uuid.UUID, offerID int64, code string, reason string)
	NotifyOfferCancelled(ctx context.Context, userID uuid.UUID, offerID int64, code string)
	NotifyPartnerConfirmed(ctx context.Context, userID uuid.UUID, offerID int64, code string)
}
