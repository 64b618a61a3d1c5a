// Package payment charges residual balances through an external payment authority.
package payment

import (
	"context"
	"errors"
	"time"
)

var ErrChargeFailed = errors.New("charge failed")

type ChargeRequest struct {
	UserID      int
	AmountCents int64
	Currency    string
	Reference   string
	Description string
}

type Charge struct {
	ID          string    `json:"id"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// Authority charges a customer for an amount in minor currency units.
// Failures wrap ErrChargeFailed.
type Authority interface {
	Charge(ctx context.Context, req ChargeRequest) (*Charge, error)
}

func validate(req ChargeRequest) error {
	if req.AmountCents <= 0 {
		return errors.New("amount must be positive")
	}
	if req.Currency == "" {
		return errors.New("currency is required")
	}
	return nil
}
