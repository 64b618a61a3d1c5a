package settlement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"techdeputies/internal/db"

	"github.com/jmoiron/sqlx"
)

var (
	ErrBookingNotFound   = errors.New("booking not found")
	ErrDuplicateBooking  = errors.New("user already has a booking for this slot")
	ErrDuplicatePurchase = errors.New("item already purchased")
	// ErrNotActive means a cancel matched no live row.
	ErrNotActive = errors.New("record is not active")
)

const purchaseColumns = `id, user_id, item_type, item_id, subscription_id, list_price_cents, price_cents, amount_charged_cents,
	gift_card_code, gift_card_drawn_cents, payment_reference, cancelled, created_at`

const bookingColumns = `id, user_id, time_slot_id, purchase_id, subscription_id, status, created_at`

type repository struct {
	q db.Querier
}

func NewRepository(q db.Querier) Repository {
	return &repository{q: q}
}

func (r *repository) WithTx(tx *sqlx.Tx) Repository {
	return &repository{q: tx}
}

func (r *repository) CreatePurchase(ctx context.Context, p *Purchase) error {
	query := `
		INSERT INTO purchases (user_id, item_type, item_id, subscription_id, list_price_cents, price_cents,
			amount_charged_cents, gift_card_code, gift_card_drawn_cents, payment_reference)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + purchaseColumns

	err := r.q.QueryRowxContext(ctx, query,
		p.UserID, p.ItemType, p.ItemID, p.SubscriptionID, p.ListPriceCents, p.PriceCents,
		p.AmountChargedCents, p.GiftCardCode, p.GiftCardDrawnCents, p.PaymentReference,
	).StructScan(p)
	if db.IsUniqueViolation(err) {
		return ErrDuplicatePurchase
	}
	if err != nil {
		return fmt.Errorf("insert purchase: %w", err)
	}
	return nil
}

func (r *repository) HasActivePurchase(ctx context.Context, userID int, itemType ItemType, itemID int) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM purchases
			WHERE user_id = $1 AND item_type = $2 AND item_id = $3 AND cancelled = FALSE
		)
	`
	exists, err := db.Exists(ctx, r.q, query, userID, itemType, itemID)
	if err != nil {
		return false, fmt.Errorf("check purchase: %w", err)
	}
	return exists, nil
}

func (r *repository) CancelPurchase(ctx context.Context, id int) error {
	res, err := r.q.ExecContext(ctx, `UPDATE purchases SET cancelled = TRUE WHERE id = $1 AND cancelled = FALSE`, id)
	if err != nil {
		return fmt.Errorf("cancel purchase %d: %w", id, err)
	}
	return requireRow(res)
}

func (r *repository) ListPurchases(ctx context.Context, userID int) ([]Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE user_id = $1 ORDER BY created_at DESC, id DESC`

	purchases := []Purchase{}
	if err := r.q.SelectContext(ctx, &purchases, query, userID); err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	return purchases, nil
}

func (r *repository) CreateBooking(ctx context.Context, b *Booking) error {
	query := `
		INSERT INTO bookings (user_id, time_slot_id, purchase_id, subscription_id, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + bookingColumns

	err := r.q.QueryRowxContext(ctx, query,
		b.UserID, b.TimeSlotID, b.PurchaseID, b.SubscriptionID, b.Status,
	).StructScan(b)
	if db.IsUniqueViolation(err) {
		return ErrDuplicateBooking
	}
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (r *repository) UserHasBookingForSlot(ctx context.Context, userID, slotID int) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM bookings
			WHERE user_id = $1 AND time_slot_id = $2 AND status = 'booked'
		)
	`
	exists, err := db.Exists(ctx, r.q, query, userID, slotID)
	if err != nil {
		return false, fmt.Errorf("check booking: %w", err)
	}
	return exists, nil
}

func (r *repository) LockBooking(ctx context.Context, id int) (*Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`

	var b Booking
	err := r.q.GetContext(ctx, &b, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get booking %d: %w", id, err)
	}
	return &b, nil
}

func (r *repository) CancelBooking(ctx context.Context, id int) error {
	res, err := r.q.ExecContext(ctx, `UPDATE bookings SET status = 'cancelled' WHERE id = $1 AND status = 'booked'`, id)
	if err != nil {
		return fmt.Errorf("cancel booking %d: %w", id, err)
	}
	return requireRow(res)
}

func (r *repository) ListBookings(ctx context.Context, userID int) ([]BookingDetails, error) {
	query := `
		SELECT b.id, b.user_id, b.time_slot_id, b.purchase_id, b.subscription_id, b.status, b.created_at,
			t.technician, t.start_time, t.end_time
		FROM bookings b
		JOIN time_slots t ON t.id = b.time_slot_id
		WHERE b.user_id = $1
		ORDER BY t.start_time DESC
	`

	bookings := []BookingDetails{}
	if err := r.q.SelectContext(ctx, &bookings, query, userID); err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotActive
	}
	return nil
}
