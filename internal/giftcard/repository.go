package giftcard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"techdeputies/internal/db"

	"github.com/jmoiron/sqlx"
)

var (
	ErrGiftCardNotFound = errors.New("gift card not found")
	ErrDuplicateCode    = errors.New("gift card code already exists")
	// ErrUpdateRejected means a guarded update matched no row.
	ErrUpdateRejected = errors.New("gift card update rejected")
)

const cardColumns = `id, code, original_cents, remaining_cents, status, expires_at,
	purchaser_id, purchaser_email, recipient_email, message, created_at, updated_at`

type repository struct {
	q db.Querier
}

func NewRepository(q db.Querier) Repository {
	return &repository{q: q}
}

func (r *repository) WithTx(tx *sqlx.Tx) Repository {
	return &repository{q: tx}
}

func (r *repository) Create(ctx context.Context, card *GiftCard) error {
	query := `
		INSERT INTO gift_cards (code, original_cents, remaining_cents, status, expires_at,
			purchaser_id, purchaser_email, recipient_email, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + cardColumns

	err := r.q.QueryRowxContext(ctx, query,
		card.Code, card.OriginalCents, card.RemainingCents, card.Status, card.ExpiresAt,
		card.PurchaserID, card.PurchaserEmail, card.RecipientEmail, card.Message,
	).StructScan(card)
	if db.IsUniqueViolation(err) {
		return ErrDuplicateCode
	}
	if err != nil {
		return fmt.Errorf("insert gift card: %w", err)
	}
	return nil
}

func (r *repository) GetByCode(ctx context.Context, code string) (*GiftCard, error) {
	return r.getByCode(ctx, `SELECT `+cardColumns+` FROM gift_cards WHERE code = $1`, code)
}

func (r *repository) LockByCode(ctx context.Context, code string) (*GiftCard, error) {
	return r.getByCode(ctx, `SELECT `+cardColumns+` FROM gift_cards WHERE code = $1 FOR UPDATE`, code)
}

func (r *repository) getByCode(ctx context.Context, query, code string) (*GiftCard, error) {
	var card GiftCard
	err := r.q.GetContext(ctx, &card, query, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGiftCardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get gift card: %w", err)
	}
	return &card, nil
}

// Debit subtracts amountCents only while the card is active, unexpired at
// now and holds at least that much. The status flips to redeemed when the balance
// reaches zero.
func (r *repository) Debit(ctx context.Context, id int, amountCents int64, now time.Time) (*GiftCard, error) {
	query := `
		UPDATE gift_cards
		SET remaining_cents = remaining_cents - $2,
			status = CASE WHEN remaining_cents - $2 = 0 THEN 'redeemed' ELSE status END,
			updated_at = NOW()
		WHERE id = $1
			AND status = 'active'
			AND remaining_cents >= $2
			AND (expires_at IS NULL OR expires_at > $3)
		RETURNING ` + cardColumns

	var card GiftCard
	err := r.q.QueryRowxContext(ctx, query, id, amountCents, now).StructScan(&card)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUpdateRejected
	}
	if err != nil {
		return nil, fmt.Errorf("debit gift card %d: %w", id, err)
	}
	return &card, nil
}

func (r *repository) Cancel(ctx context.Context, id int) (*GiftCard, error) {
	query := `
		UPDATE gift_cards
		SET status = 'cancelled', updated_at = NOW()
		WHERE id = $1
			AND status = 'active'
			AND (expires_at IS NULL OR expires_at > NOW())
		RETURNING ` + cardColumns

	var card GiftCard
	err := r.q.QueryRowxContext(ctx, query, id).StructScan(&card)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUpdateRejected
	}
	if err != nil {
		return nil, fmt.Errorf("cancel gift card %d: %w", id, err)
	}
	return &card, nil
}

func (r *repository) AddTransaction(ctx context.Context, t *Transaction) error {
	query := `
		INSERT INTO gift_card_transactions (gift_card_id, amount_cents, description, balance_after)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.q.QueryRowxContext(ctx, query, t.GiftCardID, t.AmountCents, t.Description, t.BalanceAfter).
		Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert gift card transaction: %w", err)
	}
	return nil
}

func (r *repository) ListTransactions(ctx context.Context, giftCardID int) ([]Transaction, error) {
	query := `
		SELECT id, gift_card_id, amount_cents, description, balance_after, created_at
		FROM gift_card_transactions
		WHERE gift_card_id = $1
		ORDER BY created_at DESC, id DESC
	`

	txs := []Transaction{}
	if err := r.q.SelectContext(ctx, &txs, query, giftCardID); err != nil {
		return nil, fmt.Errorf("list gift card transactions: %w", err)
	}
	return txs, nil
}
