package billing

import "time"

type EventType string

const (
	EventSubscriptionCreated EventType = "subscription.created"
	EventSubscriptionUpdated EventType = "subscription.updated"
	EventSubscriptionDeleted EventType = "subscription.deleted"
	EventInvoicePaid         EventType = "invoice.paid"
	EventInvoicePaymentFail  EventType = "invoice.payment_failed"
)

// Event is the normalized webhook payload sent by the billing provider.
type Event struct {
	ID           string            `json:"id" validate:"required"`
	Type         EventType         `json:"type" validate:"required"`
	Subscription EventSubscription `json:"subscription"`
}

type EventSubscription struct {
	ProviderSubscriptionID string    `json:"provider_subscription_id"`
	UserID                 int       `json:"user_id"`
	Tier                   string    `json:"tier"`
	Status                 string    `json:"status"`
	PeriodStart            time.Time `json:"period_start"`
	PeriodEnd              time.Time `json:"period_end"`
}

type WebhookResponse struct {
	Status string `json:"status" example:"processed"`
}
