package course

import (
	"time"

	"techdeputies/internal/plan"
)

type Course struct {
	ID                int       `db:"id" json:"id"`
	Slug              string    `db:"slug" json:"slug"`
	Title             string    `db:"title" json:"title"`
	Description       string    `db:"description" json:"description"`
	PriceCents        int64     `db:"price_cents" json:"price_cents"`
	IncludedInPartial bool      `db:"included_in_partial" json:"included_in_partial"`
	Active            bool      `db:"active" json:"active"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

// IncludedIn reports whether a subscriber on tier gets the course at no charge.
func (c *Course) IncludedIn(tier plan.Tier) bool {
	if plan.IncludesAllCourses(tier) {
		return true
	}
	return plan.IncludesPartialCourses(tier) && c.IncludedInPartial
}

type CreateCourseRequest struct {
	Slug              string `json:"slug" validate:"required,max=100"`
	Title             string `json:"title" validate:"required,max=200"`
	Description       string `json:"description"`
	PriceCents        int64  `json:"price_cents" validate:"gte=0"`
	IncludedInPartial bool   `json:"included_in_partial"`
}
