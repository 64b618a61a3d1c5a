package settlement

import (
	"context"
	"errors"
	"testing"
	"time"

	"techdeputies/internal/apperr"
	"techdeputies/internal/course"
	"techdeputies/internal/giftcard"
	"techdeputies/internal/payment"
	"techdeputies/internal/plan"
	"techdeputies/internal/slot"
	"techdeputies/internal/subscription"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func noSubscription(f *fixture) {
	f.subs.On("Usage", mock.Anything, 1).
		Return(nil, apperr.NotFound("no active subscription", subscription.ErrSubscriptionNotFound))
}

func withSubscription(f *fixture, tier plan.Tier, booked int) *subscription.Subscription {
	sub := &subscription.Subscription{
		ID:                       9,
		UserID:                   1,
		Tier:                     tier,
		Status:                   subscription.StatusActive,
		SessionsBookedThisPeriod: booked,
	}
	u := subscription.NewUsage(*sub)
	f.subs.On("Usage", mock.Anything, 1).Return(&u, nil)
	return sub
}

func withRaisedCap(f *fixture, tier plan.Tier, booked, limit int) {
	u := subscription.NewUsageWithCap(subscription.Subscription{
		ID:                       9,
		UserID:                   1,
		Tier:                     tier,
		Status:                   subscription.StatusActive,
		SessionsBookedThisPeriod: booked,
	}, limit)
	f.subs.On("Usage", mock.Anything, 1).Return(&u, nil)
}

func homeNetworking() *course.Course {
	return &course.Course{ID: 3, Slug: "home-networking", Title: "Home Networking", PriceCents: 4900, Active: true}
}

func TestPurchaseCourse_GiftCardThenCharge(t *testing.T) {
	f := newFixture(now)
	noSubscription(f)
	f.courses.On("GetCourse", mock.Anything, 3).Return(homeNetworking(), nil)
	f.repo.On("HasActivePurchase", mock.Anything, 1, ItemCourse, 3).Return(false, nil)
	f.cards.On("RedeemWith", mock.Anything, mock.Anything, "abcd-efgh-jkmn-pqrs", int64(4900), "course: Home Networking").
		Return(&giftcard.Redemption{RedeemedCents: 3000, RemainingCents: 0, Status: giftcard.StatusRedeemed}, nil)
	f.payments.On("Charge", mock.Anything, mock.MatchedBy(func(req payment.ChargeRequest) bool {
		return req.AmountCents == 1900 && req.Currency == "USD" && req.UserID == 1
	})).Return(&payment.Charge{ID: "order_1", AmountCents: 1900}, nil)
	f.repo.On("CreatePurchase", mock.Anything, mock.MatchedBy(func(p *Purchase) bool {
		return p.PriceCents == 4900 && p.GiftCardDrawnCents == 3000 && p.AmountChargedCents == 1900 &&
			*p.GiftCardCode == "ABCDEFGHJKMNPQRS" && *p.PaymentReference == "order_1"
	})).Return(nil)
	f.notifier.On("SendPurchaseReceipt", mock.Anything, "robin@example.com", "Robin", "Home Networking",
		int64(4900), int64(1900), int64(3000)).Return(nil)

	receipt, err := f.svc.PurchaseCourse(context.Background(), 1, 3, strPtr("abcd-efgh-jkmn-pqrs"))
	require.NoError(t, err)

	assert.Equal(t, 100, receipt.PurchaseID)
	assert.Equal(t, int64(3000), receipt.AmountFromGiftCard)
	assert.Equal(t, int64(1900), receipt.AmountCharged)
	assert.False(t, receipt.CoveredBySubscription)
	assert.Equal(t, 1, f.tx.committed)
	f.assertAll(t)
}

func TestPurchaseCourse_GiftCardCoversAll(t *testing.T) {
	f := newFixture(now)
	noSubscription(f)
	f.courses.On("GetCourse", mock.Anything, 3).Return(homeNetworking(), nil)
	f.repo.On("HasActivePurchase", mock.Anything, 1, ItemCourse, 3).Return(false, nil)
	f.cards.On("RedeemWith", mock.Anything, mock.Anything, "BIGCARD", int64(4900), mock.Anything).
		Return(&giftcard.Redemption{RedeemedCents: 4900, RemainingCents: 100, Status: giftcard.StatusActive}, nil)
	f.repo.On("CreatePurchase", mock.Anything, mock.Anything).Return(nil)
	f.notifier.On("SendPurchaseReceipt", mock.Anything, mock.Anything, mock.Anything, mock.Anything,
		int64(4900), int64(0), int64(4900)).Return(nil)

	receipt, err := f.svc.PurchaseCourse(context.Background(), 1, 3, strPtr("BIGCARD"))
	require.NoError(t, err)
	assert.Zero(t, receipt.AmountCharged)
	f.payments.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything)
	f.assertAll(t)
}

func TestPurchaseCourse_CoveredBySubscription(t *testing.T) {
	tests := []struct {
		name     string
		tier     plan.Tier
		partial  bool
		covered  bool
		wantPaid int64
	}{
		{"premium includes every course", plan.TierPremium, false, true, 0},
		{"standard includes partial courses", plan.TierStandard, true, true, 0},
		{"standard pays for other courses", plan.TierStandard, false, false, 4900},
		{"basic pays", plan.TierBasic, true, false, 4900},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(now)
			withSubscription(f, tt.tier, 0)
			c := homeNetworking()
			c.IncludedInPartial = tt.partial
			f.courses.On("GetCourse", mock.Anything, 3).Return(c, nil)
			f.repo.On("HasActivePurchase", mock.Anything, 1, ItemCourse, 3).Return(false, nil)
			if !tt.covered {
				f.payments.On("Charge", mock.Anything, mock.Anything).Return(&payment.Charge{ID: "order_2"}, nil)
			}
			f.repo.On("CreatePurchase", mock.Anything, mock.Anything).Return(nil)
			f.notifier.On("SendPurchaseReceipt", mock.Anything, mock.Anything, mock.Anything, mock.Anything,
				mock.Anything, mock.Anything, mock.Anything).Return(nil)

			receipt, err := f.svc.PurchaseCourse(context.Background(), 1, 3, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.covered, receipt.CoveredBySubscription)
			assert.Equal(t, tt.wantPaid, receipt.AmountCharged)
			f.cards.AssertNotCalled(t, "RedeemWith", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			f.assertAll(t)
		})
	}
}

func TestPurchaseCourse_CoveredIgnoresGiftCard(t *testing.T) {
	f := newFixture(now)
	withSubscription(f, plan.TierPremium, 0)
	f.courses.On("GetCourse", mock.Anything, 3).Return(homeNetworking(), nil)
	f.repo.On("HasActivePurchase", mock.Anything, 1, ItemCourse, 3).Return(false, nil)
	f.repo.On("CreatePurchase", mock.Anything, mock.MatchedBy(func(p *Purchase) bool {
		return p.ListPriceCents == 4900 && p.PriceCents == 0 && p.GiftCardCode == nil && *p.SubscriptionID == 9
	})).Return(nil)
	f.notifier.On("SendPurchaseReceipt", mock.Anything, mock.Anything, mock.Anything, mock.Anything,
		int64(0), int64(0), int64(0)).Return(nil)

	_, err := f.svc.PurchaseCourse(context.Background(), 1, 3, strPtr("ABCD"))
	require.NoError(t, err)
	f.assertAll(t)
}

func TestPurchaseCourse_ChargeFailureRollsBack(t *testing.T) {
	f := newFixture(now)
	noSubscription(f)
	f.courses.On("GetCourse", mock.Anything, 3).Return(homeNetworking(), nil)
	f.repo.On("HasActivePurchase", mock.Anything, 1, ItemCourse, 3).Return(false, nil)
	f.cards.On("RedeemWith", mock.Anything, mock.Anything, "CARD", int64(4900), mock.Anything).
		Return(&giftcard.Redemption{RedeemedCents: 3000, Status: giftcard.StatusRedeemed}, nil)
	f.payments.On("Charge", mock.Anything, mock.Anything).
		Return(nil, errors.Join(payment.ErrChargeFailed, errors.New("card declined")))

	receipt, err := f.svc.PurchaseCourse(context.Background(), 1, 3, strPtr("CARD"))

	require.Error(t, err)
	assert.Nil(t, receipt)
	assert.Equal(t, apperr.KindUpstreamPayment, apperr.KindOf(err))
	assert.ErrorIs(t, err, payment.ErrChargeFailed)
	assert.Equal(t, 1, f.tx.calls)
	assert.Zero(t, f.tx.committed, "draw must be rolled back with the failed charge")
	f.repo.AssertNotCalled(t, "CreatePurchase", mock.Anything, mock.Anything)
	f.notifier.AssertNumberOfCalls(t, "SendPurchaseReceipt", 0)
}

func TestPurchaseCourse_GiftCardConflictStopsSettlement(t *testing.T) {
	f := newFixture(now)
	noSubscription(f)
	f.courses.On("GetCourse", mock.Anything, 3).Return(homeNetworking(), nil)
	f.repo.On("HasActivePurchase", mock.Anything, 1, ItemCourse, 3).Return(false, nil)
	f.cards.On("RedeemWith", mock.Anything, mock.Anything, "EMPTY", int64(4900), mock.Anything).
		Return(&giftcard.Redemption{}, apperr.Conflict("gift card has no remaining balance", giftcard.ErrInsufficientBalance))

	_, err := f.svc.PurchaseCourse(context.Background(), 1, 3, strPtr("EMPTY"))

	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.ErrorIs(t, err, giftcard.ErrInsufficientBalance)
	f.payments.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything)
	f.repo.AssertNotCalled(t, "CreatePurchase", mock.Anything, mock.Anything)
}

func TestPurchaseCourse_Rejections(t *testing.T) {
	t.Run("unknown course", func(t *testing.T) {
		f := newFixture(now)
		f.courses.On("GetCourse", mock.Anything, 3).Return(nil, apperr.NotFound("course not found", course.ErrCourseNotFound))

		_, err := f.svc.PurchaseCourse(context.Background(), 1, 3, nil)
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
		assert.Zero(t, f.tx.calls)
	})

	t.Run("retired course", func(t *testing.T) {
		f := newFixture(now)
		c := homeNetworking()
		c.Active = false
		f.courses.On("GetCourse", mock.Anything, 3).Return(c, nil)

		_, err := f.svc.PurchaseCourse(context.Background(), 1, 3, nil)
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})

	t.Run("already owned", func(t *testing.T) {
		f := newFixture(now)
		noSubscription(f)
		f.courses.On("GetCourse", mock.Anything, 3).Return(homeNetworking(), nil)
		f.repo.On("HasActivePurchase", mock.Anything, 1, ItemCourse, 3).Return(true, nil)

		_, err := f.svc.PurchaseCourse(context.Background(), 1, 3, strPtr("CARD"))
		assert.ErrorIs(t, err, ErrAlreadyOwned)
		assert.True(t, apperr.Is(err, apperr.KindConflict))
		f.cards.AssertNotCalled(t, "RedeemWith", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestPurchaseCourse_CommitFailureAfterCharge(t *testing.T) {
	f := newFixture(now)
	f.tx.commitErr = errors.New("connection reset")
	noSubscription(f)
	f.courses.On("GetCourse", mock.Anything, 3).Return(homeNetworking(), nil)
	f.repo.On("HasActivePurchase", mock.Anything, 1, ItemCourse, 3).Return(false, nil)
	f.payments.On("Charge", mock.Anything, mock.Anything).Return(&payment.Charge{ID: "order_9", AmountCents: 4900}, nil)
	f.repo.On("CreatePurchase", mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.PurchaseCourse(context.Background(), 1, 3, nil)
	assert.Error(t, err)
	f.notifier.AssertNumberOfCalls(t, "SendPurchaseReceipt", 0)
}

func futureSlot(capacity int) *slot.TimeSlot {
	return &slot.TimeSlot{
		ID:         5,
		Technician: "Sam",
		StartTime:  now.Add(48 * time.Hour),
		EndTime:    now.Add(49 * time.Hour),
		Capacity:   capacity,
	}
}

func TestBookSession_StandardAtCapIsRejected(t *testing.T) {
	f := newFixture(now)
	withSubscription(f, plan.TierStandard, 5)

	receipt, err := f.svc.BookSession(context.Background(), 1, 5, nil)

	require.Error(t, err)
	assert.Nil(t, receipt)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.ErrorIs(t, err, subscription.ErrSessionLimitExceeded)
	assert.Zero(t, f.tx.calls)
	f.subs.AssertNotCalled(t, "IncrementOnBooking", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.repo.AssertNotCalled(t, "CreatePurchase", mock.Anything, mock.Anything)
	f.repo.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
	f.payments.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything)
}

func TestBookSession_CatalogCapAllowsMore(t *testing.T) {
	f := newFixture(now)
	withRaisedCap(f, plan.TierStandard, 5, 8)
	f.slots.On("LockByID", mock.Anything, 5).Return(futureSlot(2), nil)
	f.repo.On("UserHasBookingForSlot", mock.Anything, 1, 5).Return(false, nil)
	f.slots.On("CountBooked", mock.Anything, 5).Return(0, nil)
	f.subs.On("IncrementOnBooking", mock.Anything, mock.Anything, 9, plan.TierStandard).Return(nil)
	f.repo.On("CreatePurchase", mock.Anything, mock.Anything).Return(nil)
	f.repo.On("CreateBooking", mock.Anything, mock.Anything).Return(nil)
	f.notifier.On("SendBookingConfirmation", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	receipt, err := f.svc.BookSession(context.Background(), 1, 5, nil)
	require.NoError(t, err)

	assert.True(t, receipt.CoveredBySubscription)
	f.assertAll(t)
}

func TestBookSession_SubscriptionCancelledMidBooking(t *testing.T) {
	f := newFixture(now)
	withSubscription(f, plan.TierBasic, 0)
	f.slots.On("LockByID", mock.Anything, 5).Return(futureSlot(2), nil)
	f.repo.On("UserHasBookingForSlot", mock.Anything, 1, 5).Return(false, nil)
	f.slots.On("CountBooked", mock.Anything, 5).Return(0, nil)
	f.subs.On("IncrementOnBooking", mock.Anything, mock.Anything, 9, plan.TierBasic).
		Return(apperr.Conflict("subscription is no longer active", subscription.ErrSubscriptionInactive))

	receipt, err := f.svc.BookSession(context.Background(), 1, 5, nil)

	require.Error(t, err)
	assert.Nil(t, receipt)
	assert.Equal(t, "subscription is no longer active", apperr.Message(err))
	assert.NotErrorIs(t, err, subscription.ErrSessionLimitExceeded)
	assert.Zero(t, f.tx.committed)
	f.repo.AssertNotCalled(t, "CreatePurchase", mock.Anything, mock.Anything)
}

func TestBookSession_UsesSubscriptionAllowance(t *testing.T) {
	f := newFixture(now)
	withSubscription(f, plan.TierBasic, 1)
	f.slots.On("LockByID", mock.Anything, 5).Return(futureSlot(2), nil)
	f.repo.On("UserHasBookingForSlot", mock.Anything, 1, 5).Return(false, nil)
	f.slots.On("CountBooked", mock.Anything, 5).Return(1, nil)
	f.subs.On("IncrementOnBooking", mock.Anything, mock.Anything, 9, plan.TierBasic).Return(nil)
	f.repo.On("CreatePurchase", mock.Anything, mock.MatchedBy(func(p *Purchase) bool {
		return p.ItemType == ItemSession && p.ListPriceCents == 4900 && p.PriceCents == 0 && *p.SubscriptionID == 9
	})).Return(nil)
	f.repo.On("CreateBooking", mock.Anything, mock.MatchedBy(func(b *Booking) bool {
		return b.PurchaseID == 100 && b.Status == BookingBooked && *b.SubscriptionID == 9
	})).Return(nil)
	f.notifier.On("SendBookingConfirmation", mock.Anything, "robin@example.com", "Robin", "Sam", now.Add(48*time.Hour)).Return(nil)

	receipt, err := f.svc.BookSession(context.Background(), 1, 5, strPtr("IGNORED"))
	require.NoError(t, err)

	assert.True(t, receipt.CoveredBySubscription)
	assert.Equal(t, 200, *receipt.BookingID)
	assert.Zero(t, receipt.AmountCharged)
	f.cards.AssertNotCalled(t, "RedeemWith", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.assertAll(t)
}

func TestBookSession_PayPerSession(t *testing.T) {
	f := newFixture(now)
	noSubscription(f)
	f.slots.On("LockByID", mock.Anything, 5).Return(futureSlot(1), nil)
	f.repo.On("UserHasBookingForSlot", mock.Anything, 1, 5).Return(false, nil)
	f.slots.On("CountBooked", mock.Anything, 5).Return(0, nil)
	f.cards.On("RedeemWith", mock.Anything, mock.Anything, "CARD", int64(4900), mock.Anything).
		Return(&giftcard.Redemption{RedeemedCents: 900, Status: giftcard.StatusRedeemed}, nil)
	f.payments.On("Charge", mock.Anything, mock.MatchedBy(func(req payment.ChargeRequest) bool {
		return req.AmountCents == 4000
	})).Return(&payment.Charge{ID: "order_3"}, nil)
	f.repo.On("CreatePurchase", mock.Anything, mock.Anything).Return(nil)
	f.repo.On("CreateBooking", mock.Anything, mock.MatchedBy(func(b *Booking) bool {
		return b.SubscriptionID == nil
	})).Return(nil)
	f.notifier.On("SendBookingConfirmation", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	receipt, err := f.svc.BookSession(context.Background(), 1, 5, strPtr("CARD"))
	require.NoError(t, err)
	assert.Equal(t, int64(4900), receipt.PriceCents)
	assert.Equal(t, int64(900), receipt.AmountFromGiftCard)
	assert.Equal(t, int64(4000), receipt.AmountCharged)
	f.assertAll(t)
}

func TestBookSession_SlotRejections(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(*fixture)
		wantKind  apperr.Kind
		wantErr   error
	}{
		{
			name: "unknown slot",
			setupMock: func(f *fixture) {
				f.slots.On("LockByID", mock.Anything, 5).Return(nil, slot.ErrSlotNotFound)
			},
			wantKind: apperr.KindNotFound,
			wantErr:  slot.ErrSlotNotFound,
		},
		{
			name: "slot in the past",
			setupMock: func(f *fixture) {
				past := futureSlot(1)
				past.StartTime = now.Add(-time.Hour)
				f.slots.On("LockByID", mock.Anything, 5).Return(past, nil)
			},
			wantKind: apperr.KindValidation,
			wantErr:  ErrSlotInPast,
		},
		{
			name: "already booked",
			setupMock: func(f *fixture) {
				f.slots.On("LockByID", mock.Anything, 5).Return(futureSlot(3), nil)
				f.repo.On("UserHasBookingForSlot", mock.Anything, 1, 5).Return(true, nil)
			},
			wantKind: apperr.KindConflict,
			wantErr:  ErrDuplicateBooking,
		},
		{
			name: "slot full",
			setupMock: func(f *fixture) {
				f.slots.On("LockByID", mock.Anything, 5).Return(futureSlot(2), nil)
				f.repo.On("UserHasBookingForSlot", mock.Anything, 1, 5).Return(false, nil)
				f.slots.On("CountBooked", mock.Anything, 5).Return(2, nil)
			},
			wantKind: apperr.KindConflict,
			wantErr:  ErrSlotFull,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(now)
			noSubscription(f)
			tt.setupMock(f)

			_, err := f.svc.BookSession(context.Background(), 1, 5, nil)
			assert.Equal(t, tt.wantKind, apperr.KindOf(err))
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, f.tx.committed)
			f.repo.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
		})
	}
}

func TestBookSession_LosesRaceForLastSession(t *testing.T) {
	f := newFixture(now)
	withSubscription(f, plan.TierBasic, 1)
	f.slots.On("LockByID", mock.Anything, 5).Return(futureSlot(4), nil)
	f.repo.On("UserHasBookingForSlot", mock.Anything, 1, 5).Return(false, nil)
	f.slots.On("CountBooked", mock.Anything, 5).Return(0, nil)
	f.subs.On("IncrementOnBooking", mock.Anything, mock.Anything, 9, plan.TierBasic).
		Return(apperr.Conflict("session limit reached", subscription.ErrSessionLimitExceeded))

	_, err := f.svc.BookSession(context.Background(), 1, 5, nil)

	assert.ErrorIs(t, err, subscription.ErrSessionLimitExceeded)
	f.repo.AssertNotCalled(t, "CreatePurchase", mock.Anything, mock.Anything)
}

func TestCancelBooking(t *testing.T) {
	subID := 9
	bookedAt := now.Add(-time.Hour)

	t.Run("returns the session", func(t *testing.T) {
		f := newFixture(now)
		f.repo.On("LockBooking", mock.Anything, 200).Return(&Booking{
			ID: 200, UserID: 1, TimeSlotID: 5, PurchaseID: 100, SubscriptionID: &subID,
			Status: BookingBooked, CreatedAt: bookedAt,
		}, nil)
		f.slots.On("GetByID", mock.Anything, 5).Return(futureSlot(1), nil)
		f.repo.On("CancelBooking", mock.Anything, 200).Return(nil)
		f.repo.On("CancelPurchase", mock.Anything, 100).Return(nil)
		f.subs.On("ReleaseSession", mock.Anything, mock.Anything, 9, bookedAt).Return(nil)
		f.notifier.On("SendCancellation", mock.Anything, "robin@example.com", "Robin", now.Add(48*time.Hour)).Return(nil)

		require.NoError(t, f.svc.CancelBooking(context.Background(), 1, 200))
		f.assertAll(t)
	})

	t.Run("someone else's booking", func(t *testing.T) {
		f := newFixture(now)
		f.repo.On("LockBooking", mock.Anything, 200).Return(&Booking{ID: 200, UserID: 2, Status: BookingBooked}, nil)

		err := f.svc.CancelBooking(context.Background(), 1, 200)
		assert.True(t, apperr.Is(err, apperr.KindForbidden))
		f.repo.AssertNotCalled(t, "CancelBooking", mock.Anything, mock.Anything)
	})

	t.Run("already cancelled", func(t *testing.T) {
		f := newFixture(now)
		f.repo.On("LockBooking", mock.Anything, 200).Return(&Booking{ID: 200, UserID: 1, Status: BookingCancelled}, nil)

		err := f.svc.CancelBooking(context.Background(), 1, 200)
		assert.True(t, apperr.Is(err, apperr.KindConflict))
	})

	t.Run("session already started", func(t *testing.T) {
		f := newFixture(now)
		f.repo.On("LockBooking", mock.Anything, 200).Return(&Booking{ID: 200, UserID: 1, TimeSlotID: 5, Status: BookingBooked}, nil)
		started := futureSlot(1)
		started.StartTime = now.Add(-time.Minute)
		f.slots.On("GetByID", mock.Anything, 5).Return(started, nil)

		err := f.svc.CancelBooking(context.Background(), 1, 200)
		assert.ErrorIs(t, err, ErrSlotInPast)
	})

	t.Run("unknown booking", func(t *testing.T) {
		f := newFixture(now)
		f.repo.On("LockBooking", mock.Anything, 201).Return(nil, ErrBookingNotFound)

		err := f.svc.CancelBooking(context.Background(), 1, 201)
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})
}

func TestListPurchasesAndBookings(t *testing.T) {
	f := newFixture(now)
	f.repo.On("ListPurchases", mock.Anything, 1).Return([]Purchase{{ID: 1}}, nil)
	f.repo.On("ListBookings", mock.Anything, 1).Return(nil, errors.New("db down"))

	purchases, err := f.svc.ListPurchases(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, purchases, 1)

	_, err = f.svc.ListBookings(context.Background(), 1)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}
