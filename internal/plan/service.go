package plan

import (
	"context"
	"errors"

	"techdeputies/internal/apperr"
)

type Service interface {
	ListPlans(ctx context.Context) ([]Plan, error)
	GetPlanByTier(ctx context.Context, tier string) (*Plan, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) ListPlans(ctx context.Context) ([]Plan, error) {
	plans, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to list plans", err)
	}
	if plans == nil {
		plans = []Plan{}
	}
	return plans, nil
}

func (s *service) GetPlanByTier(ctx context.Context, tier string) (*Plan, error) {
	t, ok := ParseTier(tier)
	if !ok {
		return nil, apperr.NotFound("plan not found", ErrPlanNotFound)
	}

	p, err := s.repo.GetByTier(ctx, t)
	if errors.Is(err, ErrPlanNotFound) {
		return nil, apperr.NotFound("plan not found", err)
	}
	if err != nil {
		return nil, apperr.Internal("failed to load plan", err)
	}
	return p, nil
}
