package giftcard

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	// WithTx returns a repository bound to tx.
	WithTx(tx *sqlx.Tx) Repository

	Create(ctx context.Context, card *GiftCard) error
	GetByCode(ctx context.Context, code string) (*GiftCard, error)
	LockByCode(ctx context.Context, code string) (*GiftCard, error)
	// Debit judges expiry against now so it agrees with the caller's clock.
	Debit(ctx context.Context, id int, amountCents int64, now time.Time) (*GiftCard, error)
	Cancel(ctx context.Context, id int) (*GiftCard, error)
	AddTransaction(ctx context.Context, t *Transaction) error
	ListTransactions(ctx context.Context, giftCardID int) ([]Transaction, error)
}
