package payment

import (
	"context"
	"fmt"
	"time"

	"techdeputies/internal/logger"

	"github.com/google/uuid"
)

// LogAuthority approves every valid charge and only logs it. It is used when
// no payment provider credentials are configured.
type LogAuthority struct{}

func NewLogAuthority() *LogAuthority {
	return &LogAuthority{}
}

func (LogAuthority) Charge(ctx context.Context, req ChargeRequest) (*Charge, error) {
	if err := validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrChargeFailed, err)
	}

	id := "log_" + uuid.NewString()
	logger.Warn("charge approved without a payment provider",
		"charge_id", id,
		"user_id", req.UserID,
		"amount_cents", req.AmountCents,
		"currency", req.Currency,
		"reference", req.Reference,
	)
	return &Charge{
		ID:          id,
		AmountCents: req.AmountCents,
		Currency:    req.Currency,
		Status:      "approved",
		CreatedAt:   time.Now(),
	}, nil
}
