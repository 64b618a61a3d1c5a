package slot

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	WithTx(tx *sqlx.Tx) Repository
	Create(ctx context.Context, slot *TimeSlot) error
	GetByID(ctx context.Context, id int) (*TimeSlot, error)
	// LockByID reads the slot with a row lock so concurrent bookings of the
	// same slot serialize on capacity.
	LockByID(ctx context.Context, id int) (*TimeSlot, error)
	CountBooked(ctx context.Context, slotID int) (int, error)
	ListWithAvailability(ctx context.Context, onlyFuture bool) ([]TimeSlotWithAvailability, error)
}
