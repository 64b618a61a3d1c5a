package plan

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var ErrPlanNotFound = errors.New("plan not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context) ([]Plan, error) {
	query := `
		SELECT tier, name, description, price_cents, session_cap, course_access, created_at
		FROM plans
		ORDER BY price_cents ASC
	`

	var plans []Plan
	if err := r.db.SelectContext(ctx, &plans, query); err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return plans, nil
}

func (r *repository) GetByTier(ctx context.Context, tier Tier) (*Plan, error) {
	query := `
		SELECT tier, name, description, price_cents, session_cap, course_access, created_at
		FROM plans
		WHERE tier = $1
	`

	var p Plan
	err := r.db.GetContext(ctx, &p, query, tier)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get plan %s: %w", tier, err)
	}
	return &p, nil
}
