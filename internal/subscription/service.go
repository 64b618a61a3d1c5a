package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"techdeputies/internal/apperr"
	"techdeputies/internal/db"
	"techdeputies/internal/logger"
	"techdeputies/internal/metrics"
	"techdeputies/internal/plan"

	"github.com/jmoiron/sqlx"
)

type Service interface {
	GetActiveForUser(ctx context.Context, userID int) (*Subscription, error)
	ListForUser(ctx context.Context, userID int) ([]Subscription, error)
	Usage(ctx context.Context, userID int) (*Usage, error)

	// IncrementOnBooking consumes one session inside the caller's transaction.
	IncrementOnBooking(ctx context.Context, tx *sqlx.Tx, subscriptionID int, tier plan.Tier) error
	// ReleaseSession gives back a session booked at bookedAt if it still
	// belongs to the current period.
	ReleaseSession(ctx context.Context, tx *sqlx.Tx, subscriptionID int, bookedAt time.Time) error
	ResetOnPeriodRollover(ctx context.Context, subscriptionID int, start, end time.Time) error

	Activate(ctx context.Context, req ActivateRequest) (*Subscription, error)
	Sync(ctx context.Context, req SyncRequest) (*Subscription, error)
	RollOver(ctx context.Context, providerID string, start, end time.Time) error
	MarkPastDue(ctx context.Context, providerID string) error
	Cancel(ctx context.Context, providerID string) error
}

// PlanSource supplies the catalog row whose session cap is enforced.
// plan.Repository satisfies it.
type PlanSource interface {
	GetByTier(ctx context.Context, tier plan.Tier) (*plan.Plan, error)
}

type service struct {
	repo  Repository
	tx    db.Transactor
	plans PlanSource
}

// NewService builds the subscription service. A nil plans falls back to the
// built-in catalog caps.
func NewService(repo Repository, tx db.Transactor, plans PlanSource) Service {
	return &service{repo: repo, tx: tx, plans: plans}
}

func (s *service) GetActiveForUser(ctx context.Context, userID int) (*Subscription, error) {
	sub, err := s.repo.GetActiveForUser(ctx, userID)
	if errors.Is(err, ErrSubscriptionNotFound) {
		return nil, apperr.NotFound("no active subscription", err)
	}
	if err != nil {
		return nil, apperr.Internal("failed to load subscription", err)
	}
	return sub, nil
}

func (s *service) ListForUser(ctx context.Context, userID int) ([]Subscription, error) {
	subs, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("failed to list subscriptions", err)
	}
	return subs, nil
}

func (s *service) Usage(ctx context.Context, userID int) (*Usage, error) {
	sub, err := s.GetActiveForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	limit, err := s.sessionCap(ctx, sub.Tier)
	if err != nil {
		return nil, err
	}
	u := NewUsageWithCap(*sub, limit)
	return &u, nil
}

func (s *service) sessionCap(ctx context.Context, tier plan.Tier) (int, error) {
	if s.plans == nil {
		return plan.SessionCap(tier), nil
	}
	p, err := s.plans.GetByTier(ctx, tier)
	if errors.Is(err, plan.ErrPlanNotFound) {
		return -1, nil
	}
	if err != nil {
		return 0, apperr.Internal("failed to load plan", err)
	}
	return p.SessionCap, nil
}

func (s *service) IncrementOnBooking(ctx context.Context, tx *sqlx.Tx, subscriptionID int, tier plan.Tier) error {
	limit, err := s.sessionCap(ctx, tier)
	if err != nil {
		return err
	}
	if limit < 0 {
		return apperr.Conflict(fmt.Sprintf("plan %q does not include sessions", tier), ErrSessionLimitExceeded)
	}

	err = s.repo.WithTx(tx).IncrementSessions(ctx, subscriptionID, limit)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrSessionLimitExceeded):
		metrics.RecordSessionLimitRejection(string(tier))
		return apperr.Conflict("session limit reached for this billing period", err)
	case errors.Is(err, ErrSubscriptionInactive):
		return apperr.Conflict("subscription is no longer active", err)
	case errors.Is(err, ErrSubscriptionNotFound):
		return apperr.NotFound("subscription not found", err)
	default:
		return apperr.Internal("failed to update session counter", err)
	}
}

func (s *service) ReleaseSession(ctx context.Context, tx *sqlx.Tx, subscriptionID int, bookedAt time.Time) error {
	released, err := s.repo.WithTx(tx).ReleaseSession(ctx, subscriptionID, bookedAt)
	if err != nil {
		return apperr.Internal("failed to release session", err)
	}
	if !released {
		logger.Debug("session not returned to counter", "subscription_id", subscriptionID, "booked_at", bookedAt)
	}
	return nil
}

func (s *service) ResetOnPeriodRollover(ctx context.Context, subscriptionID int, start, end time.Time) error {
	if !end.After(start) {
		return apperr.Validation("billing period end must be after its start")
	}
	err := s.repo.ResetPeriod(ctx, subscriptionID, start, end)
	if errors.Is(err, ErrSubscriptionNotFound) {
		return apperr.NotFound("subscription not found", err)
	}
	if err != nil {
		return apperr.Internal("failed to roll over subscription period", err)
	}
	logger.Info("subscription period rolled over", "subscription_id", subscriptionID, "period_start", start, "period_end", end)
	return nil
}

// Activate records a new active subscription, cancelling any other active
// subscription of the same user. Replays for a known provider id are synced
// instead of inserted.
func (s *service) Activate(ctx context.Context, req ActivateRequest) (*Subscription, error) {
	if !req.Tier.Valid() {
		return nil, apperr.Validation(fmt.Sprintf("unknown plan tier %q", req.Tier))
	}
	if req.ProviderSubscriptionID == "" || req.UserID <= 0 {
		return nil, apperr.Validation("subscription event is missing its provider id or user")
	}
	if !req.PeriodEnd.After(req.PeriodStart) {
		return nil, apperr.Validation("billing period end must be after its start")
	}

	var out *Subscription
	err := s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.LockByProviderID(ctx, req.ProviderSubscriptionID)
		if err == nil {
			out, err = s.sync(ctx, repo, existing, SyncRequest{
				ProviderSubscriptionID: req.ProviderSubscriptionID,
				Tier:                   req.Tier,
				Status:                 StatusActive,
				PeriodStart:            req.PeriodStart,
				PeriodEnd:              req.PeriodEnd,
			})
			return err
		}
		if !errors.Is(err, ErrSubscriptionNotFound) {
			return apperr.Internal("failed to load subscription", err)
		}

		cancelled, err := repo.CancelActiveForUser(ctx, req.UserID)
		if err != nil {
			return apperr.Internal("failed to cancel previous subscription", err)
		}
		if cancelled > 0 {
			logger.Info("previous subscription cancelled", "user_id", req.UserID, "count", cancelled)
		}

		sub := &Subscription{
			UserID:                 req.UserID,
			Tier:                   req.Tier,
			Status:                 StatusActive,
			ProviderSubscriptionID: req.ProviderSubscriptionID,
			CurrentPeriodStart:     req.PeriodStart,
			CurrentPeriodEnd:       req.PeriodEnd,
		}
		if err := repo.Create(ctx, sub); err != nil {
			if errors.Is(err, ErrAlreadyActive) {
				return apperr.Conflict("user already has an active subscription", err)
			}
			return apperr.Internal("failed to create subscription", err)
		}
		out = sub
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("subscription activated", "subscription_id", out.ID, "user_id", out.UserID, "tier", out.Tier)
	return out, nil
}

func (s *service) Sync(ctx context.Context, req SyncRequest) (*Subscription, error) {
	if !req.Tier.Valid() {
		return nil, apperr.Validation(fmt.Sprintf("unknown plan tier %q", req.Tier))
	}

	var out *Subscription
	err := s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		repo := s.repo.WithTx(tx)
		sub, err := s.lockByProvider(ctx, repo, req.ProviderSubscriptionID)
		if err != nil {
			return err
		}
		out, err = s.sync(ctx, repo, sub, req)
		return err
	})
	return out, err
}

// sync applies tier and status changes and resets the counter when the
// provider reports a later billing period.
func (s *service) sync(ctx context.Context, repo Repository, sub *Subscription, req SyncRequest) (*Subscription, error) {
	if !sub.Status.CanTransition(req.Status) {
		return nil, apperr.Conflict(fmt.Sprintf("subscription cannot move from %s to %s", sub.Status, req.Status))
	}

	if sub.Tier != req.Tier || sub.Status != req.Status {
		if err := repo.Update(ctx, sub.ID, req.Tier, req.Status); err != nil {
			if errors.Is(err, ErrAlreadyActive) {
				return nil, apperr.Conflict("user already has an active subscription", err)
			}
			return nil, apperr.Internal("failed to update subscription", err)
		}
		sub.Tier, sub.Status = req.Tier, req.Status
	}

	if req.PeriodStart.After(sub.CurrentPeriodStart) && req.PeriodEnd.After(req.PeriodStart) {
		if err := repo.ResetPeriod(ctx, sub.ID, req.PeriodStart, req.PeriodEnd); err != nil {
			return nil, apperr.Internal("failed to roll over subscription period", err)
		}
		sub.CurrentPeriodStart, sub.CurrentPeriodEnd = req.PeriodStart, req.PeriodEnd
		sub.SessionsBookedThisPeriod = 0
	}
	return sub, nil
}

// RollOver starts a new billing period after a paid invoice. Periods that do
// not move forward are ignored so replayed invoices are harmless.
func (s *service) RollOver(ctx context.Context, providerID string, start, end time.Time) error {
	if !end.After(start) {
		return apperr.Validation("billing period end must be after its start")
	}

	return s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		repo := s.repo.WithTx(tx)
		sub, err := s.lockByProvider(ctx, repo, providerID)
		if err != nil {
			return err
		}

		if sub.Status == StatusPastDue {
			if err := repo.Update(ctx, sub.ID, sub.Tier, StatusActive); err != nil {
				return apperr.Internal("failed to reactivate subscription", err)
			}
		} else if sub.Status != StatusActive {
			return apperr.Conflict(fmt.Sprintf("subscription is %s", sub.Status))
		}

		if !start.After(sub.CurrentPeriodStart) {
			logger.Debug("invoice does not advance the billing period", "subscription_id", sub.ID)
			return nil
		}
		if err := repo.ResetPeriod(ctx, sub.ID, start, end); err != nil {
			return apperr.Internal("failed to roll over subscription period", err)
		}
		logger.Info("subscription period rolled over", "subscription_id", sub.ID, "period_start", start, "period_end", end)
		return nil
	})
}

func (s *service) MarkPastDue(ctx context.Context, providerID string) error {
	return s.setStatus(ctx, providerID, StatusPastDue)
}

func (s *service) Cancel(ctx context.Context, providerID string) error {
	return s.setStatus(ctx, providerID, StatusCancelled)
}

func (s *service) setStatus(ctx context.Context, providerID string, status Status) error {
	return s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		repo := s.repo.WithTx(tx)
		sub, err := s.lockByProvider(ctx, repo, providerID)
		if err != nil {
			return err
		}
		if sub.Status == status {
			return nil
		}
		if !sub.Status.CanTransition(status) {
			return apperr.Conflict(fmt.Sprintf("subscription cannot move from %s to %s", sub.Status, status))
		}
		if err := repo.Update(ctx, sub.ID, sub.Tier, status); err != nil {
			return apperr.Internal("failed to update subscription", err)
		}
		logger.Info("subscription status changed", "subscription_id", sub.ID, "from", sub.Status, "to", status)
		return nil
	})
}

func (s *service) lockByProvider(ctx context.Context, repo Repository, providerID string) (*Subscription, error) {
	sub, err := repo.LockByProviderID(ctx, providerID)
	if errors.Is(err, ErrSubscriptionNotFound) {
		return nil, apperr.NotFound("subscription not found", err)
	}
	if err != nil {
		return nil, apperr.Internal("failed to load subscription", err)
	}
	return sub, nil
}
