package course

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"techdeputies/internal/db"

	"github.com/jmoiron/sqlx"
)

var (
	ErrCourseNotFound = errors.New("course not found")
	ErrDuplicateSlug  = errors.New("course slug already exists")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, req CreateCourseRequest) (*Course, error) {
	query := `
		INSERT INTO courses (slug, title, description, price_cents, included_in_partial)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, slug, title, description, price_cents, included_in_partial, active, created_at
	`

	var c Course
	err := r.db.GetContext(ctx, &c, query, req.Slug, req.Title, req.Description, req.PriceCents, req.IncludedInPartial)
	if db.IsUniqueViolation(err) {
		return nil, ErrDuplicateSlug
	}
	if err != nil {
		return nil, fmt.Errorf("insert course: %w", err)
	}
	return &c, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Course, error) {
	query := `
		SELECT id, slug, title, description, price_cents, included_in_partial, active, created_at
		FROM courses
		WHERE id = $1
	`

	var c Course
	err := r.db.GetContext(ctx, &c, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCourseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get course %d: %w", id, err)
	}
	return &c, nil
}

func (r *repository) ListActive(ctx context.Context) ([]Course, error) {
	query := `
		SELECT id, slug, title, description, price_cents, included_in_partial, active, created_at
		FROM courses
		WHERE active = TRUE
		ORDER BY title ASC
	`

	courses := []Course{}
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}
