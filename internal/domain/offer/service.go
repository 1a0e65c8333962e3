package offer

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/skillswap/skillswap-api/internal/domain/confirmation"
	"github.com/skillswap/skillswap-api/internal/domain/pricing"
	"github.com/skillswap/skillswap-api/internal/domain/settlement"
	"github.com/skillswap/skillswap-api/internal/domain/skillcoin"
	"github.com/skillswap/skillswap-api/internal/pkg/metrics"
)

const maxProofSize = 5 * 1024 * 1024

// UserChecker verifies counterparty accounts exist. Implemented by
// user.Repository.
type UserChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Service owns the offer state machine. Every transition runs as one
// transaction holding the offer row lock, so concurrent requests for the
// same offer serialize here.
type Service struct {
	repo          *Repository
	confirmations *confirmation.Repository
	users         UserChecker
	prices        pricing.PriceLookup
	engine        *settlement.Engine
	notifier      Notifier
}

func NewService(repo *Repository, confirmations *confirmation.Repository, users UserChecker, prices pricing.PriceLookup, engine *settlement.Engine, notifier Notifier) *Service {
	return &Service{
		repo:          repo,
		confirmations: confirmations,
		users:         users,
		prices:        prices,
		engine:        engine,
		notifier:      notifier,
	}
}

// Outcome reports what a confirm or mark-complete did beyond the transition
// itself.
type Outcome struct {
	Offer           *Offer             `json:"offer"`
	BothConfirmed   bool               `json:"both_confirmed"`
	Settlement      *settlement.Result `json:"settlement,omitempty"`
	// InsufficientBalance is set when both parties confirmed but the
	// assistance payer cannot cover the cost. The acknowledgement is kept;
	// settlement stays retryable.
	InsufficientBalance bool `json:"insufficient_balance,omitempty"`
}

// Propose creates a pending offer
func (s *Service) Propose(ctx context.Context, initiatorID uuid.UUID, req *CreateOfferRequest) (*Offer, error) {
	counterpartyID, err := uuid.Parse(req.CounterpartyID)
	if err != nil {
		return nil, ErrOfferNotFound
	}
	if counterpartyID == initiatorID {
		return nil, ErrSameParties
	}

	exists, err := s.users.Exists(ctx, counterpartyID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrCounterpartyNotFound
	}

	mode := Mode(req.Mode)
	if mode == ModeBarter && req.OfferedSkillID == nil {
		return nil, ErrMissingOfferedSkill
	}

	// Unknown skills fail here, not at settlement time.
	if _, err := s.prices.HourlyPrice(ctx, req.RequestedSkillID); err != nil {
		return nil, err
	}
	if req.OfferedSkillID != nil {
		if _, err := s.prices.HourlyPrice(ctx, *req.OfferedSkillID); err != nil {
			return nil, err
		}
	}

	o := &Offer{
		InitiatorID:      initiatorID,
		CounterpartyID:   counterpartyID,
		Mode:             mode,
		RequestedSkillID: req.RequestedSkillID,
		Hours:            req.Hours,
		ScheduledAt:      req.ScheduledAt,
		LocationKind:     LocationKind(req.LocationKind),
		Status:           StatusPending,
	}
	if mode == ModeBarter {
		o.OfferedSkillID = sql.NullInt64{Int64: *req.OfferedSkillID, Valid: true}
	}
	if req.LocationDetail != "" {
		o.LocationDetail = sql.NullString{String: req.LocationDetail, Valid: true}
	}
	if req.Note != "" {
		o.Note = sql.NullString{String: req.Note, Valid: true}
	}
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt

	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}

	metrics.OfferTransitionsTotal.WithLabelValues(ActionPropose).Inc()
	log.Info().Int64("offer_id", o.ID).Str("code", o.Code).Str("mode", string(mode)).Msg("offer proposed")

	if s.notifier != nil {
		s.notifier.NotifyOfferReceived(ctx, counterpartyID, o.ID, o.Code)
	}
	return o, nil
}

// Accept moves a pending offer to accepted and creates the confirmation
// pair atomically. If the pair insert fails the accept fails with it and the
// offer stays pending.
func (s *Service) Accept(ctx context.Context, offerID int64, userID uuid.UUID) (*Offer, error) {
	var o *Offer
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		o, err = s.repo.GetByIDTx(ctx, tx, offerID)
		if err != nil {
			return err
		}
		if !o.IsParticipant(userID) {
			return ErrNotAParticipant
		}
		if userID != o.CounterpartyID {
			return ErrNotCounterparty
		}
		if !o.CanTransitionTo(StatusAccepted) {
			return invalidTransition(o.Status, StatusAccepted)
		}

		if err := s.repo.UpdateStatusTx(ctx, tx, offerID, StatusAccepted); err != nil {
			return err
		}
		if err := s.confirmations.CreatePairTx(ctx, tx, offerID, o.InitiatorID, o.CounterpartyID); err != nil {
			return err
		}
		return s.repo.LogActionTx(ctx, tx, offerID, userID, ActionAccept, "Offer accepted")
	})
	if err != nil {
		return nil, err
	}

	o.Status = StatusAccepted
	metrics.OfferTransitionsTotal.WithLabelValues(ActionAccept).Inc()

	if s.notifier != nil {
		s.notifier.NotifyOfferAccepted(ctx, o.InitiatorID, o.ID, o.Code)
	}
	return o, nil
}

// Reject moves a pending offer to rejected
func (s *Service) Reject(ctx context.Context, offerID int64, userID uuid.UUID, reason string) (*Offer, error) {
	var o *Offer
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		o, err = s.repo.GetByIDTx(ctx, tx, offerID)
		if err != nil {
			return err
		}
		if !o.IsParticipant(userID) {
			return ErrNotAParticipant
		}
		if userID != o.CounterpartyID {
			return ErrNotCounterparty
		}
		if !o.CanTransitionTo(StatusRejected) {
			return invalidTransition(o.Status, StatusRejected)
		}

		if err := s.repo.UpdateStatusTx(ctx, tx, offerID, StatusRejected); err != nil {
			return err
		}
		detail := "Offer rejected"
		if reason != "" {
			detail = reason
		}
		return s.repo.LogActionTx(ctx, tx, offerID, userID, ActionReject, detail)
	})
	if err != nil {
		return nil, err
	}

	o.Status = StatusRejected
	metrics.OfferTransitionsTotal.WithLabelValues(ActionReject).Inc()

	if s.notifier != nil {
		s.notifier.NotifyOfferRejected(ctx, o.InitiatorID, o.ID, o.Code, reason)
	}
	return o, nil
}

// Cancel withdraws a pending offer (initiator only) or calls off an
// accepted one (either party).
func (s *Service) Cancel(ctx context.Context, offerID int64, userID uuid.UUID, reason string) (*Offer, error) {
	var o *Offer
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		o, err = s.repo.GetByIDTx(ctx, tx, offerID)
		if err != nil {
			return err
		}
		if !o.IsParticipant(userID) {
			return ErrNotAParticipant
		}
		if o.Status == StatusPending && userID != o.InitiatorID {
			return ErrNotInitiator
		}
		if !o.CanTransitionTo(StatusCancelled) {
			return invalidTransition(o.Status, StatusCancelled)
		}

		if err := s.repo.UpdateStatusTx(ctx, tx, offerID, StatusCancelled); err != nil {
			return err
		}
		detail := "Offer cancelled"
		if reason != "" {
			detail = reason
		}
		return s.repo.LogActionTx(ctx, tx, offerID, userID, ActionCancel, detail)
	})
	if err != nil {
		return nil, err
	}

	o.Status = StatusCancelled
	metrics.OfferTransitionsTotal.WithLabelValues(ActionCancel).Inc()

	if s.notifier != nil {
		other := o.InitiatorID
		if userID == o.InitiatorID {
			other = o.CounterpartyID
		}
		s.notifier.NotifyOfferCancelled(ctx, other, o.ID, o.Code)
	}
	return o, nil
}

// Begin moves an accepted offer to ongoing
func (s *Service) Begin(ctx context.Context, offerID int64, userID uuid.UUID) (*Offer, error) {
	var o *Offer
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		o, err = s.repo.GetByIDTx(ctx, tx, offerID)
		if err != nil {
			return err
		}
		if !o.IsParticipant(userID) {
			return ErrNotAParticipant
		}
		if !o.CanTransitionTo(StatusOngoing) {
			return invalidTransition(o.Status, StatusOngoing)
		}

		if err := s.repo.UpdateStatusTx(ctx, tx, offerID, StatusOngoing); err != nil {
			return err
		}
		return s.repo.LogActionTx(ctx, tx, offerID, userID, ActionBegin, "Session started")
	})
	if err != nil {
		return nil, err
	}

	o.Status = StatusOngoing
	metrics.OfferTransitionsTotal.WithLabelValues(ActionBegin).Inc()
	return o, nil
}

// MarkComplete moves an ongoing offer to marked_complete. If both parties
// already confirmed while the session was ongoing, settlement runs in the
// same transaction.
func (s *Service) MarkComplete(ctx context.Context, offerID int64, userID uuid.UUID) (*Outcome, error) {
	outcome := &Outcome{}
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		o, err := s.repo.GetByIDTx(ctx, tx, offerID)
		if err != nil {
			return err
		}
		if !o.IsParticipant(userID) {
			return ErrNotAParticipant
		}
		if !o.CanTransitionTo(StatusMarkedComplete) {
			return invalidTransition(o.Status, StatusMarkedComplete)
		}

		if err := s.repo.UpdateStatusTx(ctx, tx, offerID, StatusMarkedComplete); err != nil {
			return err
		}
		if err := s.repo.LogActionTx(ctx, tx, offerID, userID, ActionMarkComplete, "Marked as complete"); err != nil {
			return err
		}

		o.Status = StatusMarkedComplete
		outcome.Offer = o

		outcome.BothConfirmed, err = s.confirmations.BothConfirmedTx(ctx, tx, offerID)
		if err != nil {
			return err
		}
		if outcome.BothConfirmed && !o.Settled {
			return s.trySettle(ctx, tx, offerID, outcome)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.OfferTransitionsTotal.WithLabelValues(ActionMarkComplete).Inc()
	s.afterSettle(ctx, outcome)
	return outcome, nil
}

// Confirm records the participant's completion acknowledgement and, when it
// is the second one on a marked_complete offer, settles in the same
// transaction. Two participants confirming at once serialize on the offer
// row lock; only the later one observes both acknowledgements and settles.
func (s *Service) Confirm(ctx context.Context, offerID int64, userID uuid.UUID, note string) (*Outcome, error) {
	outcome := &Outcome{}
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		o, err := s.repo.GetByIDTx(ctx, tx, offerID)
		if err != nil {
			return err
		}
		if !o.IsParticipant(userID) {
			return ErrNotAParticipant
		}
		if !o.CanConfirm() {
			return cannotConfirm(o.Status)
		}

		if err := s.confirmations.ConfirmTx(ctx, tx, offerID, userID, note); err != nil {
			return err
		}
		if err := s.repo.LogActionTx(ctx, tx, offerID, userID, ActionConfirm, "Completion confirmed"); err != nil {
			return err
		}

		outcome.Offer = o

		outcome.BothConfirmed, err = s.confirmations.BothConfirmedTx(ctx, tx, offerID)
		if err != nil {
			return err
		}
		if outcome.BothConfirmed && !o.Settled && o.Status == StatusMarkedComplete {
			return s.trySettle(ctx, tx, offerID, outcome)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.OfferTransitionsTotal.WithLabelValues(ActionConfirm).Inc()
	s.afterSettle(ctx, outcome)

	if outcome.Settlement == nil && !outcome.BothConfirmed && s.notifier != nil {
		other := outcome.Offer.InitiatorID
		if userID == outcome.Offer.InitiatorID {
			other = outcome.Offer.CounterpartyID
		}
		s.notifier.NotifyPartnerConfirmed(ctx, other, outcome.Offer.ID, outcome.Offer.Code)
	}
	return outcome, nil
}

// trySettle runs the engine under a savepoint so an insufficient-balance
// failure rolls back the currency movement only: the acknowledgement that
// triggered it still commits and the offer stays retryable from
// marked_complete.
func (s *Service) trySettle(ctx context.Context, tx *sqlx.Tx, offerID int64, outcome *Outcome) error {
	if _, err := tx.ExecContext(ctx, "SAVEPOINT settle"); err != nil {
		return err
	}

	res, err := s.engine.SettleTx(ctx, tx, offerID)
	if err == nil {
		outcome.Settlement = res
		outcome.Offer.Status = StatusSettled
		outcome.Offer.Settled = true
		return nil
	}

	if errors.Is(err, skillcoin.ErrInsufficientBalance) {
		if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT settle"); rbErr != nil {
			return rbErr
		}
		outcome.InsufficientBalance = true
		log.Warn().Int64("offer_id", offerID).Msg("settlement deferred: payer balance insufficient")
		return nil
	}
	if errors.Is(err, settlement.ErrAlreadySettled) {
		if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT settle"); rbErr != nil {
			return rbErr
		}
		return nil
	}
	return err
}

func (s *Service) afterSettle(ctx context.Context, outcome *Outcome) {
	if outcome.Settlement != nil {
		log.Info().
			Int64("offer_id", outcome.Settlement.OfferID).
			Str("mode", outcome.Settlement.Mode).
			Msg("offer settled")
		s.engine.NotifyOutcome(ctx, outcome.Settlement)
	}
}

// RetrySettlement re-attempts settlement of a marked_complete offer whose
// earlier attempt failed on insufficient balance.
func (s *Service) RetrySettlement(ctx context.Context, offerID int64, userID uuid.UUID) (*settlement.Result, error) {
	o, err := s.repo.GetByID(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if !o.IsParticipant(userID) {
		return nil, ErrNotAParticipant
	}
	return s.engine.Settle(ctx, offerID)
}

// Get returns an offer visible to the given participant
func (s *Service) Get(ctx context.Context, offerID int64, userID uuid.UUID) (*Offer, error) {
	o, err := s.repo.GetByID(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if !o.IsParticipant(userID) {
		return nil, ErrNotAParticipant
	}
	return o, nil
}

// List returns the user's offers filtered by role and status
func (s *Service) List(ctx context.Context, userID uuid.UUID, role string, status Status, limit, offset int) ([]Offer, error) {
	return s.repo.ListByUser(ctx, userID, role, status, limit, offset)
}

// History returns the user's terminal offers
func (s *Service) History(ctx context.Context, userID uuid.UUID, limit int) ([]Offer, error) {
	return s.repo.History(ctx, userID, limit)
}

// PendingConfirmation returns offers still waiting on this user's
// acknowledgement
func (s *Service) PendingConfirmation(ctx context.Context, userID uuid.UUID) ([]Offer, error) {
	return s.repo.PendingConfirmation(ctx, userID)
}

// Confirmations returns both acknowledgement records for an offer
func (s *Service) Confirmations(ctx context.Context, offerID int64, userID uuid.UUID) ([]confirmation.Record, error) {
	o, err := s.repo.GetByID(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if !o.IsParticipant(userID) {
		return nil, ErrNotAParticipant
	}
	return s.confirmations.ListByOffer(ctx, offerID)
}

// Logs returns the transition audit trail
func (s *Service) Logs(ctx context.Context, offerID int64, userID uuid.UUID) ([]Log, error) {
	o, err := s.repo.GetByID(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if !o.IsParticipant(userID) {
		return nil, ErrNotAParticipant
	}
	return s.repo.ListLogs(ctx, offerID)
}

// UploadProof attaches base64-encoded completion proof to an active offer
func (s *Service) UploadProof(ctx context.Context, offerID int64, userID uuid.UUID, data, kind string) error {
	o, err := s.repo.GetByID(ctx, offerID)
	if err != nil {
		return err
	}
	if !o.IsParticipant(userID) {
		return ErrNotAParticipant
	}
	if !o.CanConfirm() {
		return cannotConfirm(o.Status)
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return ErrInvalidProof
	}
	if len(raw) > maxProofSize {
		return ErrProofTooLarge
	}

	return s.repo.SetProof(ctx, offerID, raw, kind)
}

// GetProof returns the proof payload base64-encoded
func (s *Service) GetProof(ctx context.Context, offerID int64, userID uuid.UUID) (string, string, error) {
	o, err := s.repo.GetByID(ctx, offerID)
	if err != nil {
		return "", "", err
	}
	if !o.IsParticipant(userID) {
		return "", "", ErrNotAParticipant
	}

	raw, kind, err := s.repo.GetProof(ctx, offerID)
	if err != nil {
		return "", "", err
	}
	return base64.StdEncoding.EncodeToString(raw), kind, nil
}

// Delete removes a rejected or cancelled offer on explicit request. Settled
// offers are the permanent audit trail and are never deleted.
func (s *Service) Delete(ctx context.Context, offerID int64, userID uuid.UUID) error {
	o, err := s.repo.GetByID(ctx, offerID)
	if err != nil {
		return err
	}
	if !o.IsParticipant(userID) {
		return ErrNotAParticipant
	}
	if !o.Deletable() {
		return ErrNotDeletable
	}
	return s.repo.Delete(ctx, offerID)
}

func (s *Service) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.repo.DB().BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
