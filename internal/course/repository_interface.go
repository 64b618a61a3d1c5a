package course

import "context"

type Repository interface {
	Create(ctx context.Context, req CreateCourseRequest) (*Course, error)
	GetByID(ctx context.Context, id int) (*Course, error)
	ListActive(ctx context.Context) ([]Course, error)
}
