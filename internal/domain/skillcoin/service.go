package skillcoin

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Service exposes the account ledger operations. Settlement uses the
// repository's Tx variants directly; everything else goes through here.
type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetBalance(ctx context.Context, accountID uuid.UUID) (int64, error) {
	return s.repo.GetBalance(ctx, accountID)
}

func (s *Service) History(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]LedgerEntry, error) {
	return s.repo.ListEntries(ctx, accountID, limit, offset)
}

func (s *Service) Statistics(ctx context.Context, accountID uuid.UUID) (*Statistics, error) {
	return s.repo.Statistics(ctx, accountID)
}

// Credit adds coins to an account
func (s *Service) Credit(ctx context.Context, accountID uuid.UUID, amount int64, category Category, offerID *int64, memo string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if err := s.repo.Credit(ctx, accountID, amount, category, offerID, memo); err != nil {
		return err
	}
	log.Info().Str("account_id", accountID.String()).Int64("amount", amount).Str("category", string(category)).Msg("skillcoin credit applied")
	return nil
}

// Debit removes coins from an account, failing on insufficient balance
func (s *Service) Debit(ctx context.Context, accountID uuid.UUID, amount int64, category Category, offerID *int64, memo string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if err := s.repo.Debit(ctx, accountID, amount, category, offerID, memo); err != nil {
		return err
	}
	log.Info().Str("account_id", accountID.String()).Int64("amount", amount).Str("category", string(category)).Msg("skillcoin debit applied")
	return nil
}

// AdminAdjust applies a signed manual correction. This is the only
// retroactive correction the ledger supports; the delta may be negative but
// may not drive the balance below zero.
func (s *Service) AdminAdjust(ctx context.Context, accountID uuid.UUID, delta int64, memo string) error {
	if delta == 0 {
		return ErrInvalidAmount
	}

	var err error
	if delta > 0 {
		err = s.repo.Credit(ctx, accountID, delta, CategoryAdjustment, nil, memo)
	} else {
		err = s.repo.Debit(ctx, accountID, -delta, CategoryAdjustment, nil, memo)
	}
	if err != nil {
		return err
	}

	log.Info().Str("account_id", accountID.String()).Int64("delta", delta).Msg("manual ledger adjustment applied")
	return nil
}
