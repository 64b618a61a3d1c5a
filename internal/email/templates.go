package email

import (
	"context"
	"fmt"
	"time"
)

func (s *Service) money(cents int64) string {
	return fmt.Sprintf("%d.%02d %s", cents/100, cents%100, s.currency)
}

func greeting(name string) string {
	if name == "" {
		return "Hi,"
	}
	return "Hi " + name + ","
}

// SendGiftCard delivers a new gift card code to its recipient.
func (s *Service) SendGiftCard(ctx context.Context, to, code string, amountCents int64, message *string) error {
	subject := "Your Tech Deputies gift card"
	note := ""
	if message != nil && *message != "" {
		note = fmt.Sprintf("\nA note from the sender:\n\n    %s\n", *message)
	}
	body := fmt.Sprintf(`Hi,

You have received a Tech Deputies gift card worth %s.
%s
Your code: %s

Use it at checkout for courses and support sessions.

- Tech Deputies`, s.money(amountCents), note, code)

	return s.Send(ctx, "gift_card", to, "", subject, body)
}

func (s *Service) SendPurchaseReceipt(ctx context.Context, to, name, item string, priceCents, chargedCents, drawnCents int64) error {
	subject := "Receipt - " + item
	body := fmt.Sprintf(`%s

Thanks for your purchase.

Item: %s
Price: %s
Paid from gift card: %s
Charged: %s

- Tech Deputies`, greeting(name), item, s.money(priceCents), s.money(drawnCents), s.money(chargedCents))

	return s.Send(ctx, "receipt", to, name, subject, body)
}

func (s *Service) SendBookingConfirmation(ctx context.Context, to, name, technician string, when time.Time) error {
	subject := "Support session confirmed"
	body := fmt.Sprintf(`%s

Your support session is booked.

Technician: %s
Time: %s

- Tech Deputies`, greeting(name), technician, when.Format(timeLayout))

	return s.Send(ctx, "booking_confirmation", to, name, subject, body)
}

func (s *Service) SendCancellation(ctx context.Context, to, name string, when time.Time) error {
	subject := "Support session cancelled"
	body := fmt.Sprintf(`%s

Your support session on %s has been cancelled.

- Tech Deputies`, greeting(name), when.Format(timeLayout))

	return s.Send(ctx, "booking_cancellation", to, name, subject, body)
}
