package giftcard

import (
	"strings"
	"time"
	"unicode"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusRedeemed  Status = "redeemed"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

// CanTransition reports whether a card may move from s to next. Every
// transition leaves active and none returns to it.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusActive:
		switch next {
		case StatusRedeemed, StatusExpired, StatusCancelled:
			return true
		default:
			return false
		}
	case StatusRedeemed, StatusExpired, StatusCancelled:
		return false
	default:
		return false
	}
}

type GiftCard struct {
	ID             int        `db:"id" json:"id"`
	Code           string     `db:"code" json:"code"`
	OriginalCents  int64      `db:"original_cents" json:"original_cents"`
	RemainingCents int64      `db:"remaining_cents" json:"remaining_cents"`
	Status         Status     `db:"status" json:"status"`
	ExpiresAt      *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	PurchaserID    *int       `db:"purchaser_id" json:"purchaser_id,omitempty"`
	PurchaserEmail string     `db:"purchaser_email" json:"purchaser_email"`
	RecipientEmail *string    `db:"recipient_email" json:"recipient_email,omitempty"`
	Message        *string    `db:"message" json:"message,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// EffectiveStatus applies lazy expiry: an active card past its expiry is
// reported as expired without the row being rewritten.
func (g *GiftCard) EffectiveStatus(now time.Time) Status {
	if g.Status == StatusActive && g.ExpiresAt != nil && !now.Before(*g.ExpiresAt) {
		return StatusExpired
	}
	return g.Status
}

// DeliveryEmail is the address the code is sent to.
func (g *GiftCard) DeliveryEmail() string {
	if g.RecipientEmail != nil && *g.RecipientEmail != "" {
		return *g.RecipientEmail
	}
	return g.PurchaserEmail
}

// Transaction is a ledger row. Draws are negative, issuance is positive.
type Transaction struct {
	ID           int       `db:"id" json:"id"`
	GiftCardID   int       `db:"gift_card_id" json:"gift_card_id"`
	AmountCents  int64     `db:"amount_cents" json:"amount_cents"`
	Description  string    `db:"description" json:"description"`
	BalanceAfter int64     `db:"balance_after" json:"balance_after"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type Balance struct {
	Status         Status `json:"status"`
	RemainingCents int64  `json:"balance"`
}

type Redemption struct {
	RedeemedCents  int64  `json:"redeemed_cents"`
	RemainingCents int64  `json:"remaining_balance"`
	Status         Status `json:"status"`
}

type CreateRequest struct {
	AmountCents    int64
	PurchaserID    *int
	PurchaserEmail string
	RecipientEmail *string
	Message        *string
}

// NormalizeCode uppercases code and drops every rune that is not a letter or digit.
func NormalizeCode(code string) string {
	var b strings.Builder
	b.Grow(len(code))
	for _, r := range strings.ToUpper(code) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatCode renders a stored code in dash separated groups of four.
func FormatCode(code string) string {
	code = NormalizeCode(code)
	var b strings.Builder
	n := 0
	for _, r := range code {
		if n > 0 && n%codeGroup == 0 {
			b.WriteByte('-')
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}
