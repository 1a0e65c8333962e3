package skill

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// Repository provides read access to the skills table. Skill CRUD itself is
// owned by the profile service; this backend only needs lookups.
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// GetByID returns a skill by id
func (r *Repository) GetByID(ctx context.Context, id int64) (*Skill, error) {
	var s Skill
	err := r.db.GetContext(ctx, &s, `
		SELECT id, owner_id, name, description, level, hourly_price, created_at, updated_at
		FROM skills
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSkillNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// HourlyPrice returns the skillcoin rate for a skill. Implements
// pricing.PriceLookup.
func (r *Repository) HourlyPrice(ctx context.Context, skillID int64) (int64, error) {
	var price int64
	err := r.db.GetContext(ctx, &price, `SELECT hourly_price FROM skills WHERE id = $1`, skillID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrSkillNotFound
	}
	if err != nil {
		return 0, err
	}
	return price, nil
}
