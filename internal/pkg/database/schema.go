package database

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// EnsureSchema creates the tables this service owns if they do not exist
// yet. Statements are idempotent so restarts and parallel test packages are
// safe.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			full_name TEXT NOT NULL,
			city TEXT,
			role TEXT NOT NULL DEFAULT 'member',
			skillcoin_balance BIGINT NOT NULL DEFAULT 0,
			total_hours_taught BIGINT NOT NULL DEFAULT 0,
			transactions_count BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			CONSTRAINT users_balance_non_negative CHECK (skillcoin_balance >= 0)
		)`,

		`CREATE TABLE IF NOT EXISTS skills (
			id BIGSERIAL PRIMARY KEY,
			owner_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			description TEXT,
			level TEXT NOT NULL DEFAULT 'beginner',
			hourly_price BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			CONSTRAINT skills_price_non_negative CHECK (hourly_price >= 0)
		)`,

		`CREATE TABLE IF NOT EXISTS offers (
			id BIGSERIAL PRIMARY KEY,
			code TEXT NOT NULL DEFAULT '',
			initiator_id UUID NOT NULL REFERENCES users(id),
			counterparty_id UUID NOT NULL REFERENCES users(id),
			mode TEXT NOT NULL,
			offered_skill_id BIGINT REFERENCES skills(id),
			requested_skill_id BIGINT NOT NULL REFERENCES skills(id),
			hours BIGINT NOT NULL,
			scheduled_at TIMESTAMPTZ NOT NULL,
			location_kind TEXT NOT NULL,
			location_detail TEXT,
			note TEXT,
			status TEXT NOT NULL DEFAULT 'pending',
			settled BOOLEAN NOT NULL DEFAULT FALSE,
			proof_data BYTEA,
			proof_kind TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			CONSTRAINT offers_distinct_parties CHECK (initiator_id <> counterparty_id),
			CONSTRAINT offers_positive_hours CHECK (hours >= 1)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_offers_initiator ON offers(initiator_id)`,
		`CREATE INDEX IF NOT EXISTS idx_offers_counterparty ON offers(counterparty_id)`,
		`CREATE INDEX IF NOT EXISTS idx_offers_status ON offers(status)`,

		`CREATE TABLE IF NOT EXISTS offer_confirmations (
			id BIGSERIAL PRIMARY KEY,
			offer_id BIGINT NOT NULL REFERENCES offers(id) ON DELETE CASCADE,
			participant_id UUID NOT NULL REFERENCES users(id),
			confirmed BOOLEAN NOT NULL DEFAULT FALSE,
			confirmed_at TIMESTAMPTZ,
			note TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			CONSTRAINT offer_confirmations_one_per_participant UNIQUE (offer_id, participant_id)
		)`,

		`CREATE TABLE IF NOT EXISTS offer_logs (
			id BIGSERIAL PRIMARY KEY,
			offer_id BIGINT NOT NULL REFERENCES offers(id) ON DELETE CASCADE,
			user_id UUID NOT NULL,
			action TEXT NOT NULL,
			detail TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_offer_logs_offer ON offer_logs(offer_id)`,

		`CREATE TABLE IF NOT EXISTS skillcoin_transactions (
			id BIGSERIAL PRIMARY KEY,
			account_id UUID NOT NULL REFERENCES users(id),
			amount BIGINT NOT NULL,
			category TEXT NOT NULL,
			balance_before BIGINT NOT NULL,
			balance_after BIGINT NOT NULL,
			offer_id BIGINT REFERENCES offers(id) ON DELETE SET NULL,
			memo TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_skillcoin_transactions_account ON skillcoin_transactions(account_id, created_at DESC)`,

		`CREATE TABLE IF NOT EXISTS notifications (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			type TEXT NOT NULL,
			title TEXT NOT NULL,
			body TEXT,
			data JSONB,
			is_read BOOLEAN NOT NULL DEFAULT FALSE,
			read_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, created_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	log.Info().Msg("Database schema ensured")
	return nil
}
