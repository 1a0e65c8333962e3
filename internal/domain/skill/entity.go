package skill

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Level represents skill proficiency (matches skill_level enum)
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Skill represents a teachable skill listed by a user (matches skills table)
type Skill struct {
	ID          int64          `db:"id"`
	OwnerID     uuid.UUID      `db:"owner_id"`
	Name        string         `db:"name"`
	Description sql.NullString `db:"description"`
	Level       Level          `db:"level"`

	// HourlyPrice is the skillcoin rate per taught hour. Zero is a valid
	// price: settlement simply skips the credit.
	HourlyPrice int64 `db:"hourly_price"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
