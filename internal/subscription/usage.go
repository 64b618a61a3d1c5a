package subscription

import "techdeputies/internal/plan"

// HasExceededLimit reports whether a subscriber of tier who already booked
// booked sessions this period is out of sessions. The cap is an exclusive
// upper bound: with a cap of N the (N+1)th booking is the first rejected.
// Tiers without a known cap have no entitlement.
func HasExceededLimit(tier plan.Tier, booked int) bool {
	return ExceedsCap(plan.SessionCap(tier), booked)
}

// ExceedsCap applies the HasExceededLimit rule to a cap read from the plan
// catalog. A negative cap means no entitlement.
func ExceedsCap(limit, booked int) bool {
	switch {
	case limit == plan.Unlimited:
		return false
	case limit < 0:
		return true
	default:
		return booked >= limit
	}
}
