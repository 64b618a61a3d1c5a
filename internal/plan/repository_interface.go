package plan

import "context"

type Repository interface {
	List(ctx context.Context) ([]Plan, error)
	GetByTier(ctx context.Context, tier Tier) (*Plan, error)
}
