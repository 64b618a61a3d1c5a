package giftcard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"techdeputies/internal/apperr"
	"techdeputies/internal/db"
	"techdeputies/internal/logger"
	"techdeputies/internal/metrics"
	"techdeputies/internal/payment"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
)

var (
	ErrInsufficientBalance = errors.New("gift card has no remaining balance")
	ErrCardNotRedeemable   = errors.New("gift card is not redeemable")
	ErrInvalidAmount       = errors.New("invalid gift card amount")
)

const maxCodeAttempts = 5

var validate = validator.New()

type Config struct {
	MinAmountCents int64
	MaxAmountCents int64
	// ValidityDays of 0 issues cards that never expire.
	ValidityDays int
	Currency     string
}

// Notifier delivers a freshly issued code.
type Notifier interface {
	SendGiftCard(ctx context.Context, to, code string, amountCents int64, message *string) error
}

type Service interface {
	CheckBalance(ctx context.Context, code string) (*Balance, error)
	Redeem(ctx context.Context, code string, amountCents int64, description string) (*Redemption, error)
	// RedeemWith redeems inside a transaction owned by the caller.
	RedeemWith(ctx context.Context, tx *sqlx.Tx, code string, amountCents int64, description string) (*Redemption, error)
	Create(ctx context.Context, req CreateRequest) (*GiftCard, error)
	Cancel(ctx context.Context, code string) (*GiftCard, error)
	History(ctx context.Context, code string) ([]Transaction, error)
}

type service struct {
	repo     Repository
	tx       db.Transactor
	payments payment.Authority
	notifier Notifier
	cfg      Config
	now      func() time.Time
}

// NewService builds the ledger. payments and notifier may be nil; cards are
// then issued without a charge or a delivery e-mail.
func NewService(repo Repository, tx db.Transactor, payments payment.Authority, notifier Notifier, cfg Config) Service {
	return &service{
		repo:     repo,
		tx:       tx,
		payments: payments,
		notifier: notifier,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (s *service) CheckBalance(ctx context.Context, code string) (*Balance, error) {
	card, err := s.lookup(ctx, s.repo, code)
	if err != nil {
		return nil, err
	}
	return &Balance{Status: card.EffectiveStatus(s.now()), RemainingCents: card.RemainingCents}, nil
}

func (s *service) Redeem(ctx context.Context, code string, amountCents int64, description string) (*Redemption, error) {
	if amountCents < 0 {
		return nil, apperr.Validation("amount must not be negative", ErrInvalidAmount)
	}
	if amountCents == 0 {
		return s.peek(ctx, s.repo, code)
	}

	var out *Redemption
	err := s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		r, err := s.redeem(ctx, s.repo.WithTx(tx), code, amountCents, description)
		out = r
		return err
	})
	return out, err
}

func (s *service) RedeemWith(ctx context.Context, tx *sqlx.Tx, code string, amountCents int64, description string) (*Redemption, error) {
	if amountCents < 0 {
		return nil, apperr.Validation("amount must not be negative", ErrInvalidAmount)
	}
	repo := s.repo.WithTx(tx)
	if amountCents == 0 {
		return s.peek(ctx, repo, code)
	}
	return s.redeem(ctx, repo, code, amountCents, description)
}

// peek answers a zero amount redemption without writing anything.
func (s *service) peek(ctx context.Context, repo Repository, code string) (*Redemption, error) {
	card, err := s.lookup(ctx, repo, code)
	if err != nil {
		return nil, err
	}
	return &Redemption{RemainingCents: card.RemainingCents, Status: card.EffectiveStatus(s.now())}, nil
}

// refusal reports why card cannot be drawn from at time at, or nil when it can.
func refusal(card *GiftCard, at time.Time) (*Redemption, error) {
	status := card.EffectiveStatus(at)
	r := &Redemption{RemainingCents: card.RemainingCents, Status: status}
	switch {
	case status != StatusActive:
		return r, apperr.Conflict(fmt.Sprintf("gift card is %s", status), ErrCardNotRedeemable)
	case card.RemainingCents == 0:
		return r, apperr.Conflict("gift card has no remaining balance", ErrInsufficientBalance)
	}
	return nil, nil
}

// explainRejectedDebit re-reads a card whose guarded debit matched no row
// and reports its current state.
func (s *service) explainRejectedDebit(ctx context.Context, repo Repository, code string, at time.Time) (*Redemption, error) {
	card, err := repo.GetByCode(ctx, code)
	if err != nil {
		return nil, apperr.Internal("failed to reload gift card", err)
	}
	if r, err := refusal(card, at); err != nil {
		return r, err
	}
	return &Redemption{RemainingCents: card.RemainingCents, Status: card.Status},
		apperr.Conflict("gift card balance changed during redemption", ErrInsufficientBalance)
}

func (s *service) redeem(ctx context.Context, repo Repository, code string, amountCents int64, description string) (*Redemption, error) {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return nil, apperr.Validation("gift card code is required")
	}
	card, err := repo.LockByCode(ctx, normalized)
	if errors.Is(err, ErrGiftCardNotFound) {
		metrics.RecordRedemption("not_found", 0)
		return nil, apperr.NotFound("gift card not found", err)
	}
	if err != nil {
		return nil, apperr.Internal("failed to load gift card", err)
	}

	at := s.now()
	if r, err := refusal(card, at); err != nil {
		metrics.RecordRedemption("rejected", 0)
		return r, err
	}

	draw := min(amountCents, card.RemainingCents)
	updated, err := repo.Debit(ctx, card.ID, draw, at)
	if errors.Is(err, ErrUpdateRejected) {
		metrics.RecordRedemption("rejected", 0)
		return s.explainRejectedDebit(ctx, repo, normalized, at)
	}
	if err != nil {
		return nil, apperr.Internal("failed to redeem gift card", err)
	}

	if description == "" {
		description = "redemption"
	}
	entry := &Transaction{
		GiftCardID:   card.ID,
		AmountCents:  -draw,
		Description:  description,
		BalanceAfter: updated.RemainingCents,
	}
	if err := repo.AddTransaction(ctx, entry); err != nil {
		return nil, apperr.Internal("failed to record gift card transaction", err)
	}

	outcome := "redeemed"
	if draw < amountCents {
		outcome = "partial"
	}
	metrics.RecordRedemption(outcome, draw)

	logger.Info("gift card redeemed",
		"gift_card_id", card.ID,
		"requested_cents", amountCents,
		"redeemed_cents", draw,
		"remaining_cents", updated.RemainingCents,
	)
	return &Redemption{
		RedeemedCents:  draw,
		RemainingCents: updated.RemainingCents,
		Status:         updated.Status,
	}, nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*GiftCard, error) {
	if err := s.validateCreate(req); err != nil {
		return nil, err
	}

	var expiresAt *time.Time
	if s.cfg.ValidityDays > 0 {
		t := s.now().AddDate(0, 0, s.cfg.ValidityDays)
		expiresAt = &t
	}

	var card *GiftCard
	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		code, err := generateCode()
		if err != nil {
			return nil, apperr.Internal("failed to generate gift card code", err)
		}

		candidate := &GiftCard{
			Code:           code,
			OriginalCents:  req.AmountCents,
			RemainingCents: req.AmountCents,
			Status:         StatusActive,
			ExpiresAt:      expiresAt,
			PurchaserID:    req.PurchaserID,
			PurchaserEmail: req.PurchaserEmail,
			RecipientEmail: req.RecipientEmail,
			Message:        req.Message,
		}

		err = s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
			return s.issue(ctx, s.repo.WithTx(tx), candidate)
		})
		if errors.Is(err, ErrDuplicateCode) {
			logger.Warn("gift card code collision, retrying", "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, err
		}
		card = candidate
		break
	}
	if card == nil {
		return nil, apperr.Internal("failed to allocate a unique gift card code", ErrDuplicateCode)
	}

	metrics.RecordGiftCardIssued()
	logger.Info("gift card issued", "gift_card_id", card.ID, "amount_cents", card.OriginalCents)

	if s.notifier != nil {
		if err := s.notifier.SendGiftCard(ctx, card.DeliveryEmail(), FormatCode(card.Code), card.OriginalCents, card.Message); err != nil {
			logger.Error("failed to queue gift card email", "gift_card_id", card.ID, "error", err)
		}
	}
	return card, nil
}

// issue persists the card with its opening ledger row and charges the
// purchaser. A failed charge rolls the insert back with the transaction.
func (s *service) issue(ctx context.Context, repo Repository, card *GiftCard) error {
	if err := repo.Create(ctx, card); err != nil {
		if errors.Is(err, ErrDuplicateCode) {
			return err
		}
		return apperr.Internal("failed to create gift card", err)
	}

	opening := &Transaction{
		GiftCardID:   card.ID,
		AmountCents:  card.OriginalCents,
		Description:  "issued",
		BalanceAfter: card.RemainingCents,
	}
	if err := repo.AddTransaction(ctx, opening); err != nil {
		return apperr.Internal("failed to record gift card transaction", err)
	}

	if s.payments == nil || card.PurchaserID == nil {
		return nil
	}
	_, err := s.payments.Charge(ctx, payment.ChargeRequest{
		UserID:      *card.PurchaserID,
		AmountCents: card.OriginalCents,
		Currency:    s.cfg.Currency,
		Reference:   fmt.Sprintf("giftcard-%d", card.ID),
		Description: "Gift card purchase",
	})
	if err != nil {
		return apperr.UpstreamPayment("payment for gift card failed", err)
	}
	return nil
}

func (s *service) validateCreate(req CreateRequest) error {
	if req.AmountCents < s.cfg.MinAmountCents || req.AmountCents > s.cfg.MaxAmountCents {
		return apperr.Validation(
			fmt.Sprintf("amount must be between %d and %d", s.cfg.MinAmountCents, s.cfg.MaxAmountCents),
			ErrInvalidAmount,
		)
	}
	if err := validate.Var(req.PurchaserEmail, "required,email"); err != nil {
		return apperr.Validation("purchaser email is invalid", err)
	}
	if req.RecipientEmail != nil && *req.RecipientEmail != "" {
		if err := validate.Var(*req.RecipientEmail, "email"); err != nil {
			return apperr.Validation("recipient email is invalid", err)
		}
	}
	return nil
}

func (s *service) Cancel(ctx context.Context, code string) (*GiftCard, error) {
	card, err := s.lookup(ctx, s.repo, code)
	if err != nil {
		return nil, err
	}

	if status := card.EffectiveStatus(s.now()); !status.CanTransition(StatusCancelled) {
		return nil, apperr.Conflict(fmt.Sprintf("gift card is %s", status), ErrCardNotRedeemable)
	}

	cancelled, err := s.repo.Cancel(ctx, card.ID)
	if errors.Is(err, ErrUpdateRejected) {
		return nil, apperr.Conflict("gift card is no longer active", ErrCardNotRedeemable)
	}
	if err != nil {
		return nil, apperr.Internal("failed to cancel gift card", err)
	}

	logger.Info("gift card cancelled", "gift_card_id", card.ID, "remaining_cents", cancelled.RemainingCents)
	return cancelled, nil
}

func (s *service) History(ctx context.Context, code string) ([]Transaction, error) {
	card, err := s.lookup(ctx, s.repo, code)
	if err != nil {
		return nil, err
	}
	txs, err := s.repo.ListTransactions(ctx, card.ID)
	if err != nil {
		return nil, apperr.Internal("failed to load gift card history", err)
	}
	return txs, nil
}

func (s *service) lookup(ctx context.Context, repo Repository, code string) (*GiftCard, error) {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return nil, apperr.Validation("gift card code is required")
	}
	card, err := repo.GetByCode(ctx, normalized)
	if errors.Is(err, ErrGiftCardNotFound) {
		return nil, apperr.NotFound("gift card not found", err)
	}
	if err != nil {
		return nil, apperr.Internal("failed to load gift card", err)
	}
	return card, nil
}
