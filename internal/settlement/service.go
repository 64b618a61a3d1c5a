package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"techdeputies/internal/apperr"
	"techdeputies/internal/course"
	"techdeputies/internal/db"
	"techdeputies/internal/giftcard"
	"techdeputies/internal/logger"
	"techdeputies/internal/metrics"
	"techdeputies/internal/payment"
	"techdeputies/internal/slot"
	"techdeputies/internal/subscription"
	"techdeputies/internal/user"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrSlotFull     = errors.New("time slot is full")
	ErrSlotInPast   = errors.New("time slot has already started")
	ErrNotYourOwn   = errors.New("booking belongs to another user")
	ErrAlreadyOwned = errors.New("course already purchased")
)

type Config struct {
	// SessionPriceCents is charged for bookings made without an active subscription.
	SessionPriceCents int64
	Currency          string
}

// Notifier sends post-settlement e-mails. Delivery failures never fail a settlement.
type Notifier interface {
	SendPurchaseReceipt(ctx context.Context, to, name, item string, priceCents, chargedCents, drawnCents int64) error
	SendBookingConfirmation(ctx context.Context, to, name, technician string, when time.Time) error
	SendCancellation(ctx context.Context, to, name string, when time.Time) error
}

type UserDirectory interface {
	GetByID(ctx context.Context, userID int) (*user.User, error)
}

type Service interface {
	PurchaseCourse(ctx context.Context, userID, courseID int, giftCode *string) (*Receipt, error)
	BookSession(ctx context.Context, userID, slotID int, giftCode *string) (*Receipt, error)
	CancelBooking(ctx context.Context, userID, bookingID int) error
	ListPurchases(ctx context.Context, userID int) ([]Purchase, error)
	ListBookings(ctx context.Context, userID int) ([]BookingDetails, error)
}

type Deps struct {
	Repo          Repository
	Tx            db.Transactor
	Courses       course.Service
	Slots         slot.Repository
	Subscriptions subscription.Service
	GiftCards     giftcard.Service
	Payments      payment.Authority
	Notifier      Notifier
	Users         UserDirectory
}

type service struct {
	Deps
	cfg Config
	now func() time.Time
}

func NewService(deps Deps, cfg Config) Service {
	return &service{Deps: deps, cfg: cfg, now: time.Now}
}

func (s *service) PurchaseCourse(ctx context.Context, userID, courseID int, giftCode *string) (*Receipt, error) {
	c, err := s.Courses.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !c.Active {
		return nil, apperr.NotFound("course not found", course.ErrCourseNotFound)
	}

	sub, err := s.activeSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}

	p := &Purchase{UserID: userID, ItemType: ItemCourse, ItemID: c.ID, ListPriceCents: c.PriceCents, PriceCents: c.PriceCents}
	if sub != nil && c.IncludedIn(sub.Tier) {
		p.PriceCents = 0
		p.SubscriptionID = &sub.ID
	}

	var charge *payment.Charge
	err = s.Tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		repo := s.Repo.WithTx(tx)

		owned, err := repo.HasActivePurchase(ctx, userID, ItemCourse, c.ID)
		if err != nil {
			return apperr.Internal("failed to check purchases", err)
		}
		if owned {
			return apperr.Conflict("course already purchased", ErrAlreadyOwned)
		}

		charge, err = s.settle(ctx, tx, p, giftCode, "course: "+c.Title)
		if err != nil {
			return err
		}
		return s.insertPurchase(ctx, repo, p)
	})
	if err != nil {
		s.reportFailure(ItemCourse, p, charge, err)
		return nil, err
	}

	metrics.RecordSettlement(string(ItemCourse), outcome(p))
	logger.Info("course purchased",
		"purchase_id", p.ID,
		"user_id", userID,
		"course_id", c.ID,
		"price_cents", p.PriceCents,
		"charged_cents", p.AmountChargedCents,
		"gift_card_cents", p.GiftCardDrawnCents,
	)
	s.sendReceipt(ctx, userID, c.Title, p)
	return newReceipt(p), nil
}

func (s *service) BookSession(ctx context.Context, userID, slotID int, giftCode *string) (*Receipt, error) {
	sub, err := s.activeSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sub != nil && sub.Exhausted() {
		metrics.RecordSessionLimitRejection(string(sub.Tier))
		metrics.RecordSettlement(string(ItemSession), "rejected")
		return nil, apperr.Conflict("session limit reached for this billing period", subscription.ErrSessionLimitExceeded)
	}

	p := &Purchase{UserID: userID, ItemType: ItemSession, ItemID: slotID, ListPriceCents: s.cfg.SessionPriceCents}
	var (
		booking *Booking
		ts      *slot.TimeSlot
		charge  *payment.Charge
	)
	err = s.Tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		repo := s.Repo.WithTx(tx)
		slots := s.Slots.WithTx(tx)

		var err error
		ts, err = slots.LockByID(ctx, slotID)
		if errors.Is(err, slot.ErrSlotNotFound) {
			return apperr.NotFound("time slot not found", err)
		}
		if err != nil {
			return apperr.Internal("failed to load time slot", err)
		}
		if !ts.StartTime.After(s.now()) {
			return apperr.Validation("cannot book a slot in the past", ErrSlotInPast)
		}

		has, err := repo.UserHasBookingForSlot(ctx, userID, slotID)
		if err != nil {
			return apperr.Internal("failed to check bookings", err)
		}
		if has {
			return apperr.Conflict("you already booked this slot", ErrDuplicateBooking)
		}

		booked, err := slots.CountBooked(ctx, slotID)
		if err != nil {
			return apperr.Internal("failed to count bookings", err)
		}
		if booked >= ts.Capacity {
			return apperr.Conflict("time slot is full", ErrSlotFull)
		}

		if sub != nil {
			if err := s.Subscriptions.IncrementOnBooking(ctx, tx, sub.ID, sub.Tier); err != nil {
				return err
			}
			p.SubscriptionID = &sub.ID
		} else {
			p.PriceCents = s.cfg.SessionPriceCents
			charge, err = s.settle(ctx, tx, p, giftCode, fmt.Sprintf("support session #%d", slotID))
			if err != nil {
				return err
			}
		}

		if err := s.insertPurchase(ctx, repo, p); err != nil {
			return err
		}

		booking = &Booking{
			UserID:         userID,
			TimeSlotID:     slotID,
			PurchaseID:     p.ID,
			SubscriptionID: p.SubscriptionID,
			Status:         BookingBooked,
		}
		if err := repo.CreateBooking(ctx, booking); err != nil {
			if errors.Is(err, ErrDuplicateBooking) {
				return apperr.Conflict("you already booked this slot", err)
			}
			return apperr.Internal("failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		if apperr.Is(err, apperr.KindConflict) && errors.Is(err, subscription.ErrSessionLimitExceeded) {
			metrics.RecordSettlement(string(ItemSession), "rejected")
		}
		s.reportFailure(ItemSession, p, charge, err)
		return nil, err
	}

	metrics.RecordSettlement(string(ItemSession), outcome(p))
	logger.Info("session booked",
		"booking_id", booking.ID,
		"purchase_id", p.ID,
		"user_id", userID,
		"slot_id", slotID,
		"subscription_id", p.SubscriptionID,
		"charged_cents", p.AmountChargedCents,
	)
	s.sendBookingConfirmation(ctx, userID, ts, p)

	receipt := newReceipt(p)
	receipt.BookingID = &booking.ID
	return receipt, nil
}

// settle draws from the gift card first and charges the remainder. It runs
// inside the caller's transaction so a failed charge rolls the draw back.
func (s *service) settle(ctx context.Context, tx *sqlx.Tx, p *Purchase, giftCode *string, description string) (*payment.Charge, error) {
	due := p.PriceCents

	if due > 0 && giftCode != nil && *giftCode != "" {
		r, err := s.GiftCards.RedeemWith(ctx, tx, *giftCode, due, description)
		if err != nil {
			return nil, err
		}
		code := giftcard.NormalizeCode(*giftCode)
		p.GiftCardCode = &code
		p.GiftCardDrawnCents = r.RedeemedCents
		due -= r.RedeemedCents
	}

	if due == 0 {
		return nil, nil
	}
	if s.Payments == nil {
		return nil, apperr.UpstreamPayment("payments are not available", payment.ErrChargeFailed)
	}

	charge, err := s.Payments.Charge(ctx, payment.ChargeRequest{
		UserID:      p.UserID,
		AmountCents: due,
		Currency:    s.cfg.Currency,
		Reference:   string(p.ItemType) + "_" + uuid.NewString(),
		Description: description,
	})
	if err != nil {
		return nil, apperr.UpstreamPayment("payment failed", err)
	}

	p.AmountChargedCents = due
	p.PaymentReference = &charge.ID
	return charge, nil
}

func (s *service) insertPurchase(ctx context.Context, repo Repository, p *Purchase) error {
	if err := p.CheckBalanced(); err != nil {
		return apperr.Internal("unbalanced settlement", err)
	}
	err := repo.CreatePurchase(ctx, p)
	if errors.Is(err, ErrDuplicatePurchase) {
		return apperr.Conflict("item already purchased", err)
	}
	if err != nil {
		return apperr.Internal("failed to record purchase", err)
	}
	return nil
}

func (s *service) CancelBooking(ctx context.Context, userID, bookingID int) error {
	var (
		booking *Booking
		ts      *slot.TimeSlot
	)
	err := s.Tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		repo := s.Repo.WithTx(tx)

		var err error
		booking, err = repo.LockBooking(ctx, bookingID)
		if errors.Is(err, ErrBookingNotFound) {
			return apperr.NotFound("booking not found", err)
		}
		if err != nil {
			return apperr.Internal("failed to load booking", err)
		}
		if booking.UserID != userID {
			return apperr.Forbidden("you can only cancel your own bookings", ErrNotYourOwn)
		}
		if booking.Status != BookingBooked {
			return apperr.Conflict("booking is already cancelled", ErrNotActive)
		}

		ts, err = s.Slots.WithTx(tx).GetByID(ctx, booking.TimeSlotID)
		if err != nil {
			return apperr.Internal("failed to load time slot", err)
		}
		if !ts.StartTime.After(s.now()) {
			return apperr.Conflict("session has already started", ErrSlotInPast)
		}

		if err := repo.CancelBooking(ctx, booking.ID); err != nil {
			return apperr.Internal("failed to cancel booking", err)
		}
		if err := repo.CancelPurchase(ctx, booking.PurchaseID); err != nil && !errors.Is(err, ErrNotActive) {
			return apperr.Internal("failed to cancel purchase", err)
		}
		if booking.SubscriptionID != nil {
			if err := s.Subscriptions.ReleaseSession(ctx, tx, *booking.SubscriptionID, booking.CreatedAt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	metrics.RecordBookingCancellation()
	logger.Info("booking cancelled", "booking_id", bookingID, "user_id", userID)
	if s.Notifier != nil {
		if u := s.lookupUser(ctx, userID); u != nil {
			if err := s.Notifier.SendCancellation(ctx, u.Email, u.Name, ts.StartTime); err != nil {
				logger.Warn("failed to queue cancellation email", "booking_id", bookingID, "error", err)
			}
		}
	}
	return nil
}

func (s *service) ListPurchases(ctx context.Context, userID int) ([]Purchase, error) {
	purchases, err := s.Repo.ListPurchases(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("failed to list purchases", err)
	}
	return purchases, nil
}

func (s *service) ListBookings(ctx context.Context, userID int) ([]BookingDetails, error) {
	bookings, err := s.Repo.ListBookings(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("failed to list bookings", err)
	}
	return bookings, nil
}

// activeSubscription returns nil when the user has no active subscription.
// The usage carries the cap from the plan catalog.
func (s *service) activeSubscription(ctx context.Context, userID int) (*subscription.Usage, error) {
	if s.Subscriptions == nil {
		return nil, nil
	}
	sub, err := s.Subscriptions.Usage(ctx, userID)
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *service) reportFailure(itemType ItemType, p *Purchase, charge *payment.Charge, err error) {
	if apperr.Is(err, apperr.KindUpstreamPayment) {
		metrics.RecordSettlement(string(itemType), "charge_failed")
	}
	if charge != nil {
		logger.Error("charge captured but settlement was not recorded",
			"charge_id", charge.ID,
			"user_id", p.UserID,
			"item_type", itemType,
			"item_id", p.ItemID,
			"amount_cents", charge.AmountCents,
			"error", err,
		)
	}
}

func outcome(p *Purchase) string {
	switch {
	case p.SubscriptionID != nil:
		return "subscription"
	case p.AmountChargedCents > 0:
		return "charged"
	case p.GiftCardDrawnCents > 0:
		return "gift_card"
	default:
		return "free"
	}
}

func (s *service) lookupUser(ctx context.Context, userID int) *user.User {
	if s.Users == nil {
		return nil
	}
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		logger.Warn("failed to load user for notification", "user_id", userID, "error", err)
		return nil
	}
	return u
}

func (s *service) sendReceipt(ctx context.Context, userID int, item string, p *Purchase) {
	if s.Notifier == nil {
		return
	}
	u := s.lookupUser(ctx, userID)
	if u == nil {
		return
	}
	if err := s.Notifier.SendPurchaseReceipt(ctx, u.Email, u.Name, item, p.PriceCents, p.AmountChargedCents, p.GiftCardDrawnCents); err != nil {
		logger.Warn("failed to queue receipt email", "purchase_id", p.ID, "error", err)
	}
}

func (s *service) sendBookingConfirmation(ctx context.Context, userID int, ts *slot.TimeSlot, p *Purchase) {
	if s.Notifier == nil {
		return
	}
	u := s.lookupUser(ctx, userID)
	if u == nil {
		return
	}
	if err := s.Notifier.SendBookingConfirmation(ctx, u.Email, u.Name, ts.Technician, ts.StartTime); err != nil {
		logger.Warn("failed to queue booking confirmation", "purchase_id", p.ID, "error", err)
	}
}
