package subscription

import (
	"context"
	"time"

	"techdeputies/internal/plan"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	WithTx(tx *sqlx.Tx) Repository

	Create(ctx context.Context, sub *Subscription) error
	GetByID(ctx context.Context, id int) (*Subscription, error)
	LockByProviderID(ctx context.Context, providerID string) (*Subscription, error)
	GetActiveForUser(ctx context.Context, userID int) (*Subscription, error)
	ListForUser(ctx context.Context, userID int) ([]Subscription, error)
	CancelActiveForUser(ctx context.Context, userID int) (int64, error)

	// IncrementSessions adds one booked session unless the cap is reached.
	// A cap of plan.Unlimited never blocks.
	IncrementSessions(ctx context.Context, id int, limit int) error
	ReleaseSession(ctx context.Context, id int, bookedAt time.Time) (bool, error)
	ResetPeriod(ctx context.Context, id int, start, end time.Time) error
	Update(ctx context.Context, id int, tier plan.Tier, status Status) error
}
