package billing

import (
	"context"
	"errors"
	"fmt"

	"techdeputies/internal/apperr"
	"techdeputies/internal/logger"
	"techdeputies/internal/plan"
	"techdeputies/internal/subscription"
)

// ErrIgnoredEvent marks event types this service does not act on.
var ErrIgnoredEvent = errors.New("billing event type ignored")

type Service interface {
	Handle(ctx context.Context, event Event) error
}

type service struct {
	subscriptions subscription.Service
}

func NewService(subscriptions subscription.Service) Service {
	return &service{subscriptions: subscriptions}
}

func (s *service) Handle(ctx context.Context, event Event) error {
	sub := event.Subscription
	if sub.ProviderSubscriptionID == "" {
		return apperr.Validation("event is missing provider_subscription_id")
	}

	logger.Info("billing event received",
		"event_id", event.ID,
		"type", event.Type,
		"provider_subscription_id", sub.ProviderSubscriptionID,
	)

	switch event.Type {
	case EventSubscriptionCreated:
		tier, err := parseTier(sub.Tier)
		if err != nil {
			return err
		}
		_, err = s.subscriptions.Activate(ctx, subscription.ActivateRequest{
			ProviderSubscriptionID: sub.ProviderSubscriptionID,
			UserID:                 sub.UserID,
			Tier:                   tier,
			PeriodStart:            sub.PeriodStart,
			PeriodEnd:              sub.PeriodEnd,
		})
		return err

	case EventSubscriptionUpdated:
		tier, err := parseTier(sub.Tier)
		if err != nil {
			return err
		}
		status, ok := subscription.ParseStatus(sub.Status)
		if !ok {
			return apperr.Validation(fmt.Sprintf("unknown subscription status %q", sub.Status))
		}
		_, err = s.subscriptions.Sync(ctx, subscription.SyncRequest{
			ProviderSubscriptionID: sub.ProviderSubscriptionID,
			Tier:                   tier,
			Status:                 status,
			PeriodStart:            sub.PeriodStart,
			PeriodEnd:              sub.PeriodEnd,
		})
		return err

	case EventInvoicePaid:
		return s.subscriptions.RollOver(ctx, sub.ProviderSubscriptionID, sub.PeriodStart, sub.PeriodEnd)

	case EventInvoicePaymentFail:
		return s.subscriptions.MarkPastDue(ctx, sub.ProviderSubscriptionID)

	case EventSubscriptionDeleted:
		return s.subscriptions.Cancel(ctx, sub.ProviderSubscriptionID)

	default:
		return ErrIgnoredEvent
	}
}

func parseTier(s string) (plan.Tier, error) {
	tier, ok := plan.ParseTier(s)
	if !ok {
		return "", apperr.Validation(fmt.Sprintf("unknown plan tier %q", s))
	}
	return tier, nil
}
