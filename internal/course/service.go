package course

import (
	"context"
	"errors"

	"techdeputies/internal/apperr"
)

type Service interface {
	CreateCourse(ctx context.Context, req CreateCourseRequest) (*Course, error)
	GetCourse(ctx context.Context, id int) (*Course, error)
	ListCourses(ctx context.Context) ([]Course, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateCourse(ctx context.Context, req CreateCourseRequest) (*Course, error) {
	if req.PriceCents < 0 {
		return nil, apperr.Validation("price must not be negative")
	}

	c, err := s.repo.Create(ctx, req)
	if errors.Is(err, ErrDuplicateSlug) {
		return nil, apperr.Conflict("a course with this slug already exists", err)
	}
	if err != nil {
		return nil, apperr.Internal("failed to create course", err)
	}
	return c, nil
}

func (s *service) GetCourse(ctx context.Context, id int) (*Course, error) {
	c, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrCourseNotFound) {
		return nil, apperr.NotFound("course not found", err)
	}
	if err != nil {
		return nil, apperr.Internal("failed to load course", err)
	}
	return c, nil
}

func (s *service) ListCourses(ctx context.Context) ([]Course, error) {
	courses, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to list courses", err)
	}
	return courses, nil
}
