package settlement

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	WithTx(tx *sqlx.Tx) Repository

	CreatePurchase(ctx context.Context, p *Purchase) error
	HasActivePurchase(ctx context.Context, userID int, itemType ItemType, itemID int) (bool, error)
	CancelPurchase(ctx context.Context, id int) error
	ListPurchases(ctx context.Context, userID int) ([]Purchase, error)

	CreateBooking(ctx context.Context, b *Booking) error
	UserHasBookingForSlot(ctx context.Context, userID, slotID int) (bool, error)
	LockBooking(ctx context.Context, id int) (*Booking, error)
	CancelBooking(ctx context.Context, id int) error
	ListBookings(ctx context.Context, userID int) ([]BookingDetails, error)
}
