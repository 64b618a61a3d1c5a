package subscription

import (
	"time"

	"techdeputies/internal/plan"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
	StatusPastDue   Status = "past_due"
	StatusExpired   Status = "expired"
)

func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusActive:
		return StatusActive, true
	case StatusCancelled:
		return StatusCancelled, true
	case StatusPastDue:
		return StatusPastDue, true
	case StatusExpired:
		return StatusExpired, true
	default:
		return "", false
	}
}

// CanTransition reports whether the billing provider may move a subscription
// from s to next. Cancelled and expired are terminal.
func (s Status) CanTransition(next Status) bool {
	if s == next {
		return true
	}
	switch s {
	case StatusActive:
		return next == StatusPastDue || next == StatusCancelled || next == StatusExpired
	case StatusPastDue:
		return next == StatusActive || next == StatusCancelled || next == StatusExpired
	case StatusCancelled, StatusExpired:
		return false
	default:
		return false
	}
}

type Subscription struct {
	ID                       int       `db:"id" json:"id"`
	UserID                   int       `db:"user_id" json:"user_id"`
	Tier                     plan.Tier `db:"tier" json:"tier"`
	Status                   Status    `db:"status" json:"status"`
	ProviderSubscriptionID   string    `db:"provider_subscription_id" json:"provider_subscription_id"`
	CurrentPeriodStart       time.Time `db:"current_period_start" json:"current_period_start"`
	CurrentPeriodEnd         time.Time `db:"current_period_end" json:"current_period_end"`
	SessionsBookedThisPeriod int       `db:"sessions_booked_this_period" json:"sessions_booked_this_period"`
	CreatedAt                time.Time `db:"created_at" json:"created_at"`
	UpdatedAt                time.Time `db:"updated_at" json:"updated_at"`
}

// InCurrentPeriod reports whether t falls in [start, end).
func (s *Subscription) InCurrentPeriod(t time.Time) bool {
	return !t.Before(s.CurrentPeriodStart) && t.Before(s.CurrentPeriodEnd)
}

// Usage is the subscriber facing view of the session counter.
type Usage struct {
	Subscription
	SessionCap        int  `json:"session_cap"`
	Unlimited         bool `json:"unlimited"`
	SessionsRemaining *int `json:"sessions_remaining,omitempty"`
}

func NewUsage(sub Subscription) Usage {
	return NewUsageWithCap(sub, plan.SessionCap(sub.Tier))
}

func NewUsageWithCap(sub Subscription, limit int) Usage {
	u := Usage{Subscription: sub, SessionCap: limit}
	if u.SessionCap == plan.Unlimited {
		u.Unlimited = true
		return u
	}
	remaining := max(u.SessionCap-sub.SessionsBookedThisPeriod, 0)
	u.SessionsRemaining = &remaining
	return u
}

// Exhausted reports whether another booking would exceed the cap.
func (u Usage) Exhausted() bool {
	return ExceedsCap(u.SessionCap, u.SessionsBookedThisPeriod)
}

// ActivateRequest describes a subscription the billing provider just created.
type ActivateRequest struct {
	ProviderSubscriptionID string
	UserID                 int
	Tier                   plan.Tier
	PeriodStart            time.Time
	PeriodEnd              time.Time
}

// SyncRequest carries the provider's current view of a subscription.
type SyncRequest struct {
	ProviderSubscriptionID string
	Tier                   plan.Tier
	Status                 Status
	PeriodStart            time.Time
	PeriodEnd              time.Time
}
