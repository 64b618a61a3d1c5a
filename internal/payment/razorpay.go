package payment

import (
	"context"
	"fmt"
	"time"

	"techdeputies/internal/logger"

	"github.com/razorpay/razorpay-go"
)

// orderCreator is the subset of the razorpay order resource used here.
type orderCreator interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// RazorpayAuthority treats a created Razorpay order as an authorised charge.
// No money moves at this point: the customer completes the order through
// Razorpay checkout and the resulting payment is not tracked here. Charge.ID
// is the order id.
type RazorpayAuthority struct {
	orders orderCreator
}

func NewRazorpayAuthority(keyID, keySecret string) *RazorpayAuthority {
	client := razorpay.NewClient(keyID, keySecret)
	return &RazorpayAuthority{orders: client.Order}
}

func (a *RazorpayAuthority) Charge(ctx context.Context, req ChargeRequest) (*Charge, error) {
	if err := validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrChargeFailed, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrChargeFailed, err)
	}

	data := map[string]interface{}{
		"amount":   req.AmountCents,
		"currency": req.Currency,
		"receipt":  req.Reference,
		"notes": map[string]interface{}{
			"user_id":     req.UserID,
			"description": req.Description,
		},
	}

	order, err := a.orders.Create(data, nil)
	if err != nil {
		logger.Error("razorpay order failed", "reference", req.Reference, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrChargeFailed, err)
	}

	id, _ := order["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("%w: order response has no id", ErrChargeFailed)
	}
	status, _ := order["status"].(string)

	logger.Info("razorpay order created", "order_id", id, "reference", req.Reference, "amount_cents", req.AmountCents)
	return &Charge{
		ID:          id,
		AmountCents: req.AmountCents,
		Currency:    req.Currency,
		Status:      status,
		CreatedAt:   time.Now(),
	}, nil
}
