package skillcoin

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Category classifies a balance-affecting event (matches ledger_category enum)
type Category string

const (
	// CategoryReward is a barter-mode mint: coins created for teaching.
	CategoryReward Category = "reward"
	// CategoryPayment is the payer side of an assistance settlement.
	CategoryPayment Category = "payment"
	// CategoryTransferIn is the receiving side of an assistance settlement.
	CategoryTransferIn Category = "transfer_in"
	// CategoryTransferOut is reserved for future party-to-party transfers.
	CategoryTransferOut Category = "transfer_out"
	// CategoryAdjustment is a manual administrative correction.
	CategoryAdjustment Category = "adjustment"
)

// LedgerEntry is one append-only row of the skillcoin ledger. Entries are
// never edited or deleted; for an account, entries in order reconcile
// exactly to the current balance.
type LedgerEntry struct {
	ID            int64         `db:"id" json:"id"`
	AccountID     uuid.UUID     `db:"account_id" json:"account_id"`
	Amount        int64         `db:"amount" json:"amount"` // signed delta
	Category      Category      `db:"category" json:"category"`
	BalanceBefore int64         `db:"balance_before" json:"balance_before"`
	BalanceAfter  int64         `db:"balance_after" json:"balance_after"`
	OfferID       sql.NullInt64 `db:"offer_id" json:"offer_id,omitempty"` // nil for manual adjustments
	Memo          string        `db:"memo" json:"memo"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
}

// Statistics aggregates an account's ledger activity.
type Statistics struct {
	TotalTransactions int64 `db:"total_transactions" json:"total_transactions"`
	TotalEarned       int64 `db:"total_earned" json:"total_earned"`
	TotalSpent        int64 `db:"total_spent" json:"total_spent"`
	CurrentBalance    int64 `db:"current_balance" json:"current_balance"`
}
