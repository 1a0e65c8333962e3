package user

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Role represents user role in the system (matches user_role enum)
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// User represents an account row. Account creation and profile editing are
// owned by the external auth/profile services; this backend reads accounts
// and mutates balances and activity counters only through the skillcoin
// ledger and settlement paths.
type User struct {
	ID       uuid.UUID      `db:"id"`
	FullName string         `db:"full_name"`
	City     sql.NullString `db:"city"`
	Role     Role           `db:"role"`

	SkillcoinBalance  int64 `db:"skillcoin_balance"`
	TotalHoursTaught  int64 `db:"total_hours_taught"`
	TransactionsCount int64 `db:"transactions_count"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
