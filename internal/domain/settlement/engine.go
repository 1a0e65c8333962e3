package settlement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/skillswap/skillswap-api/internal/domain/pricing"
	"github.com/skillswap/skillswap-api/internal/domain/skillcoin"
	"github.com/skillswap/skillswap-api/internal/pkg/metrics"
)

var (
	ErrOfferNotFound = errors.New("offer not found")

	// ErrAlreadySettled means the settlement flag is already set. Callers
	// treat it as an idempotent no-op, not a failure.
	ErrAlreadySettled = errors.New("offer already settled")

	// ErrNotConfirmed means one or both completion acknowledgements are
	// missing.
	ErrNotConfirmed = errors.New("both confirmations required before settlement")

	// ErrNotSettleable means the offer is not in marked_complete.
	ErrNotSettleable = errors.New("offer is not marked complete")

	ErrAccountMissing = errors.New("participant account not found")
)

// Ledger applies balance changes within the settlement transaction.
// Implemented by skillcoin.Repository.
type Ledger interface {
	CreditTx(ctx context.Context, tx *sqlx.Tx, accountID uuid.UUID, amount int64, category skillcoin.Category, offerID *int64, memo string) error
	DebitTx(ctx context.Context, tx *sqlx.Tx, accountID uuid.UUID, amount int64, category skillcoin.Category, offerID *int64, memo string) error
}

// Accounts bumps aggregate user counters. Implemented by user.Repository.
type Accounts interface {
	AddActivityTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, hours int64) error
}

// Confirmations gates settlement on the double acknowledgement. Implemented
// by confirmation.Repository.
type Confirmations interface {
	BothConfirmedTx(ctx context.Context, tx *sqlx.Tx, offerID int64) (bool, error)
}

// Notifier delivers settlement outcomes. Best effort: failures are logged
// and never roll anything back.
type Notifier interface {
	NotifyPaymentSent(ctx context.Context, userID uuid.UUID, amount int64, offerID int64, code string)
	NotifyPaymentReceived(ctx context.Context, userID uuid.UUID, amount int64, offerID int64, code string)
	NotifyBarterReward(ctx context.Context, userID uuid.UUID, amount int64, offerID int64, code string)
}

// Result describes what a settlement did, for post-commit notifications and
// API responses. Deltas are signed from each participant's point of view.
type Result struct {
	OfferID           int64     `json:"offer_id"`
	Code              string    `json:"code"`
	Mode              string    `json:"mode"`
	InitiatorID       uuid.UUID `json:"initiator_id"`
	CounterpartyID    uuid.UUID `json:"counterparty_id"`
	InitiatorDelta    int64     `json:"initiator_delta"`
	CounterpartyDelta int64     `json:"counterparty_delta"`
	Hours             int64     `json:"hours"`
}

// Engine executes the atomic settlement of a completed offer: currency
// movement, counter updates, status finalization and audit rows, all in one
// transaction with locks taken in a fixed order.
type Engine struct {
	db            *sqlx.DB
	ledger        Ledger
	accounts      Accounts
	confirmations Confirmations
	calc          *pricing.Calculator
	notifier      Notifier
}

func NewEngine(db *sqlx.DB, ledger Ledger, accounts Accounts, confirmations Confirmations, calc *pricing.Calculator, notifier Notifier) *Engine {
	return &Engine{
		db:            db,
		ledger:        ledger,
		accounts:      accounts,
		confirmations: confirmations,
		calc:          calc,
		notifier:      notifier,
	}
}

// SettleTx runs the settlement inside a caller-owned transaction. The caller
// commits (and then calls NotifyOutcome) or rolls back. A re-entrant call
// observes the settled flag under the offer row lock and returns
// ErrAlreadySettled with zero side effects.
func (e *Engine) SettleTx(ctx context.Context, tx *sqlx.Tx, offerID int64) (*Result, error) {
	o, err := getOfferForUpdate(ctx, tx, offerID)
	if err != nil {
		return nil, err
	}

	if o.Settled {
		metrics.SettlementsTotal.WithLabelValues(o.Mode, "already_settled").Inc()
		return nil, ErrAlreadySettled
	}
	if o.Status != "marked_complete" {
		return nil, fmt.Errorf("%w: status %q", ErrNotSettleable, o.Status)
	}

	both, err := e.confirmations.BothConfirmedTx(ctx, tx, offerID)
	if err != nil {
		return nil, err
	}
	if !both {
		return nil, ErrNotConfirmed
	}

	if err := lockAccounts(ctx, tx, o.InitiatorID, o.CounterpartyID); err != nil {
		return nil, err
	}

	res := &Result{
		OfferID:        o.ID,
		Code:           o.Code,
		Mode:           o.Mode,
		InitiatorID:    o.InitiatorID,
		CounterpartyID: o.CounterpartyID,
		Hours:          o.Hours,
	}

	switch o.Mode {
	case "assistance":
		cost, err := e.calc.AssistanceCost(ctx, o.RequestedSkillID, o.Hours)
		if err != nil {
			return nil, err
		}
		if cost > 0 {
			if err := e.ledger.DebitTx(ctx, tx, o.InitiatorID, cost, skillcoin.CategoryPayment, &o.ID,
				fmt.Sprintf("Service payment for %s", o.Code)); err != nil {
				if errors.Is(err, skillcoin.ErrInsufficientBalance) {
					metrics.SettlementsTotal.WithLabelValues(o.Mode, "insufficient_balance").Inc()
				}
				return nil, err
			}
			if err := e.ledger.CreditTx(ctx, tx, o.CounterpartyID, cost, skillcoin.CategoryTransferIn, &o.ID,
				fmt.Sprintf("Service payment received for %s", o.Code)); err != nil {
				return nil, err
			}
			metrics.CoinsMovedTotal.WithLabelValues(string(skillcoin.CategoryPayment)).Add(float64(cost))
		}
		res.InitiatorDelta = -cost
		res.CounterpartyDelta = cost

	case "barter":
		quote, err := e.calc.BarterAmounts(ctx, o.OfferedSkillID.Int64, o.RequestedSkillID, o.Hours)
		if err != nil {
			return nil, err
		}
		if quote.InitiatorEarns > 0 {
			if err := e.ledger.CreditTx(ctx, tx, o.InitiatorID, quote.InitiatorEarns, skillcoin.CategoryReward, &o.ID,
				fmt.Sprintf("Barter teaching reward for %s (%d hours)", o.Code, o.Hours)); err != nil {
				return nil, err
			}
			metrics.CoinsMovedTotal.WithLabelValues(string(skillcoin.CategoryReward)).Add(float64(quote.InitiatorEarns))
		}
		if quote.CounterpartyEarns > 0 {
			if err := e.ledger.CreditTx(ctx, tx, o.CounterpartyID, quote.CounterpartyEarns, skillcoin.CategoryReward, &o.ID,
				fmt.Sprintf("Barter teaching reward for %s (%d hours)", o.Code, o.Hours)); err != nil {
				return nil, err
			}
			metrics.CoinsMovedTotal.WithLabelValues(string(skillcoin.CategoryReward)).Add(float64(quote.CounterpartyEarns))
		}
		res.InitiatorDelta = quote.InitiatorEarns
		res.CounterpartyDelta = quote.CounterpartyEarns

	default:
		return nil, fmt.Errorf("unknown offer mode %q", o.Mode)
	}

	if err := e.accounts.AddActivityTx(ctx, tx, o.InitiatorID, o.Hours); err != nil {
		return nil, err
	}
	if err := e.accounts.AddActivityTx(ctx, tx, o.CounterpartyID, o.Hours); err != nil {
		return nil, err
	}

	if err := markSettled(ctx, tx, o.ID); err != nil {
		return nil, err
	}

	for _, participant := range []uuid.UUID{o.InitiatorID, o.CounterpartyID} {
		if err := insertLog(ctx, tx, o.ID, participant, "Offer settled"); err != nil {
			return nil, err
		}
	}

	metrics.SettlementsTotal.WithLabelValues(o.Mode, "settled").Inc()
	return res, nil
}

// Settle runs a standalone settlement in its own transaction. Used for the
// retry after an assistance payer tops up; the confirm path invokes SettleTx
// within its own transaction instead.
func (e *Engine) Settle(ctx context.Context, offerID int64) (*Result, error) {
	tx, err := e.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := e.SettleTx(ctx, tx, offerID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	log.Info().
		Int64("offer_id", res.OfferID).
		Str("code", res.Code).
		Str("mode", res.Mode).
		Int64("initiator_delta", res.InitiatorDelta).
		Int64("counterparty_delta", res.CounterpartyDelta).
		Msg("offer settled")

	e.NotifyOutcome(ctx, res)
	return res, nil
}

// NotifyOutcome emits one event per participant after the settlement has
// committed. Fire and forget.
func (e *Engine) NotifyOutcome(ctx context.Context, res *Result) {
	if e.notifier == nil || res == nil {
		return
	}

	switch res.Mode {
	case "assistance":
		if res.CounterpartyDelta > 0 {
			e.notifier.NotifyPaymentSent(ctx, res.InitiatorID, res.CounterpartyDelta, res.OfferID, res.Code)
			e.notifier.NotifyPaymentReceived(ctx, res.CounterpartyID, res.CounterpartyDelta, res.OfferID, res.Code)
		}
	case "barter":
		if res.InitiatorDelta > 0 {
			e.notifier.NotifyBarterReward(ctx, res.InitiatorID, res.InitiatorDelta, res.OfferID, res.Code)
		}
		if res.CounterpartyDelta > 0 {
			e.notifier.NotifyBarterReward(ctx, res.CounterpartyID, res.CounterpartyDelta, res.OfferID, res.Code)
		}
	}
}
