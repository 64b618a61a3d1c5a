package settlement

import (
	"fmt"
	"time"
)

type ItemType string

const (
	ItemCourse  ItemType = "course"
	ItemSession ItemType = "session"
)

type BookingStatus string

const (
	BookingBooked    BookingStatus = "booked"
	BookingCancelled BookingStatus = "cancelled"
)

// Purchase records how a price was settled. ListPriceCents is the catalog
// price at settlement time. PriceCents is the amount due, which equals the
// list price unless a subscription covered the item and it is 0.
type Purchase struct {
	ID                 int       `db:"id" json:"id"`
	UserID             int       `db:"user_id" json:"user_id"`
	ItemType           ItemType  `db:"item_type" json:"item_type"`
	ItemID             int       `db:"item_id" json:"item_id"`
	SubscriptionID     *int      `db:"subscription_id" json:"subscription_id,omitempty"`
	ListPriceCents     int64     `db:"list_price_cents" json:"list_price_cents"`
	PriceCents         int64     `db:"price_cents" json:"price_cents"`
	AmountChargedCents int64     `db:"amount_charged_cents" json:"amount_charged_cents"`
	GiftCardCode       *string   `db:"gift_card_code" json:"gift_card_code,omitempty"`
	GiftCardDrawnCents int64     `db:"gift_card_drawn_cents" json:"gift_card_drawn_cents"`
	PaymentReference   *string   `db:"payment_reference" json:"payment_reference,omitempty"`
	Cancelled          bool      `db:"cancelled" json:"cancelled"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

// CheckBalanced verifies that the charge and the gift card draw add up to the price.
func (p *Purchase) CheckBalanced() error {
	if p.ListPriceCents < 0 || p.PriceCents < 0 || p.AmountChargedCents < 0 || p.GiftCardDrawnCents < 0 {
		return fmt.Errorf("purchase amounts must not be negative")
	}
	if p.PriceCents != p.ListPriceCents && (p.SubscriptionID == nil || p.PriceCents != 0) {
		return fmt.Errorf("amount due %d differs from list price %d", p.PriceCents, p.ListPriceCents)
	}
	if p.GiftCardDrawnCents > p.PriceCents {
		return fmt.Errorf("gift card draw %d exceeds price %d", p.GiftCardDrawnCents, p.PriceCents)
	}
	if p.AmountChargedCents+p.GiftCardDrawnCents != p.PriceCents {
		return fmt.Errorf("charged %d + drawn %d != price %d", p.AmountChargedCents, p.GiftCardDrawnCents, p.PriceCents)
	}
	return nil
}

type Booking struct {
	ID             int           `db:"id" json:"id"`
	UserID         int           `db:"user_id" json:"user_id"`
	TimeSlotID     int           `db:"time_slot_id" json:"time_slot_id"`
	PurchaseID     int           `db:"purchase_id" json:"purchase_id"`
	SubscriptionID *int          `db:"subscription_id" json:"subscription_id,omitempty"`
	Status         BookingStatus `db:"status" json:"status"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
}

type BookingDetails struct {
	Booking
	Technician string    `db:"technician" json:"technician"`
	StartTime  time.Time `db:"start_time" json:"start_time"`
	EndTime    time.Time `db:"end_time" json:"end_time"`
}

type Receipt struct {
	PurchaseID            int     `json:"purchase_id"`
	BookingID             *int    `json:"booking_id,omitempty"`
	ListPriceCents        int64   `json:"list_price_cents"`
	PriceCents            int64   `json:"price_cents"`
	AmountCharged         int64   `json:"amount_charged"`
	AmountFromGiftCard    int64   `json:"amount_from_gift_card"`
	CoveredBySubscription bool    `json:"covered_by_subscription"`
	PaymentReference      *string `json:"payment_reference,omitempty"`
}

func newReceipt(p *Purchase) *Receipt {
	return &Receipt{
		PurchaseID:            p.ID,
		ListPriceCents:        p.ListPriceCents,
		PriceCents:            p.PriceCents,
		AmountCharged:         p.AmountChargedCents,
		AmountFromGiftCard:    p.GiftCardDrawnCents,
		CoveredBySubscription: p.SubscriptionID != nil,
		PaymentReference:      p.PaymentReference,
	}
}

type PurchaseRequest struct {
	ItemID       int     `json:"item_id" validate:"required,gt=0"`
	GiftCardCode *string `json:"gift_card_code" validate:"omitempty,max=32"`
}

type BookRequest struct {
	GiftCardCode *string `json:"gift_card_code" validate:"omitempty,max=32"`
}
