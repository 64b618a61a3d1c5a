package plan

import (
	"strings"
	"time"
)

type Tier string

const (
	TierBasic    Tier = "BASIC"
	TierStandard Tier = "STANDARD"
	TierPremium  Tier = "PREMIUM"
)

// ParseTier accepts any casing and reports false for unknown tiers.
func ParseTier(s string) (Tier, bool) {
	switch Tier(strings.ToUpper(strings.TrimSpace(s))) {
	case TierBasic:
		return TierBasic, true
	case TierStandard:
		return TierStandard, true
	case TierPremium:
		return TierPremium, true
	default:
		return "", false
	}
}

func (t Tier) Valid() bool {
	_, ok := ParseTier(string(t))
	return ok
}

type CourseAccess string

const (
	CourseAccessNone    CourseAccess = "none"
	CourseAccessPartial CourseAccess = "partial"
	CourseAccessAll     CourseAccess = "all"
)

type Plan struct {
	Tier         Tier         `db:"tier" json:"tier"`
	Name         string       `db:"name" json:"name"`
	Description  string       `db:"description" json:"description"`
	PriceCents   int64        `db:"price_cents" json:"price_cents"`
	SessionCap   int          `db:"session_cap" json:"session_cap"`
	CourseAccess CourseAccess `db:"course_access" json:"course_access"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
}

// Unlimited reports whether the plan places no cap on booked sessions.
func (p Plan) Unlimited() bool {
	return p.SessionCap == Unlimited
}

// Defaults returns the built-in catalog, ordered by ascending price.
// The plans table is seeded with the same rows.
func Defaults() []Plan {
	return []Plan{
		{
			Tier:         TierBasic,
			Name:         "Basic",
			Description:  "Two remote support sessions per month",
			PriceCents:   2900,
			SessionCap:   2,
			CourseAccess: CourseAccessNone,
		},
		{
			Tier:         TierStandard,
			Name:         "Standard",
			Description:  "Five support sessions per month and selected courses",
			PriceCents:   4900,
			SessionCap:   5,
			CourseAccess: CourseAccessPartial,
		},
		{
			Tier:         TierPremium,
			Name:         "Premium",
			Description:  "Unlimited support sessions and every course",
			PriceCents:   9900,
			SessionCap:   Unlimited,
			CourseAccess: CourseAccessAll,
		},
	}
}
