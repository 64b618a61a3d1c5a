package plan

// Unlimited is the session cap of tiers without a per-period limit.
const Unlimited = 0

// SessionCap returns the number of sessions a tier may book per billing
// period. Unlimited tiers return Unlimited, unknown tiers return -1.
func SessionCap(t Tier) int {
	switch t {
	case TierBasic:
		return 2
	case TierStandard:
		return 5
	case TierPremium:
		return Unlimited
	default:
		return -1
	}
}

func IncludesAllCourses(t Tier) bool {
	switch t {
	case TierPremium:
		return true
	case TierBasic, TierStandard:
		return false
	default:
		return false
	}
}

func IncludesPartialCourses(t Tier) bool {
	switch t {
	case TierStandard:
		return true
	case TierBasic, TierPremium:
		return false
	default:
		return false
	}
}

// Access returns the course access level for a tier.
func Access(t Tier) CourseAccess {
	switch {
	case IncludesAllCourses(t):
		return CourseAccessAll
	case IncludesPartialCourses(t):
		return CourseAccessPartial
	default:
		return CourseAccessNone
	}
}
