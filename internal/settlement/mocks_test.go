package settlement

import (
	"context"
	"time"

	"techdeputies/internal/course"
	"techdeputies/internal/giftcard"
	"techdeputies/internal/payment"
	"techdeputies/internal/plan"
	"techdeputies/internal/slot"
	"techdeputies/internal/subscription"
	"techdeputies/internal/user"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"
)

type fakeTx struct {
	calls     int
	committed int
	commitErr error
}

func (f *fakeTx) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	f.calls++
	if err := fn(nil); err != nil {
		return err
	}
	if f.commitErr != nil {
		return f.commitErr
	}
	f.committed++
	return nil
}

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) WithTx(tx *sqlx.Tx) Repository { return m }

func (m *MockRepository) CreatePurchase(ctx context.Context, p *Purchase) error {
	args := m.Called(ctx, p)
	if args.Error(0) == nil {
		p.ID = 100
	}
	return args.Error(0)
}

func (m *MockRepository) HasActivePurchase(ctx context.Context, userID int, itemType ItemType, itemID int) (bool, error) {
	args := m.Called(ctx, userID, itemType, itemID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) CancelPurchase(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) ListPurchases(ctx context.Context, userID int) ([]Purchase, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Purchase), args.Error(1)
}

func (m *MockRepository) CreateBooking(ctx context.Context, b *Booking) error {
	args := m.Called(ctx, b)
	if args.Error(0) == nil {
		b.ID = 200
	}
	return args.Error(0)
}

func (m *MockRepository) UserHasBookingForSlot(ctx context.Context, userID, slotID int) (bool, error) {
	args := m.Called(ctx, userID, slotID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) LockBooking(ctx context.Context, id int) (*Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockRepository) CancelBooking(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) ListBookings(ctx context.Context, userID int) ([]BookingDetails, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]BookingDetails), args.Error(1)
}

type MockSlotRepository struct {
	mock.Mock
}

func (m *MockSlotRepository) WithTx(tx *sqlx.Tx) slot.Repository { return m }

func (m *MockSlotRepository) Create(ctx context.Context, s *slot.TimeSlot) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockSlotRepository) GetByID(ctx context.Context, id int) (*slot.TimeSlot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*slot.TimeSlot), args.Error(1)
}

func (m *MockSlotRepository) LockByID(ctx context.Context, id int) (*slot.TimeSlot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*slot.TimeSlot), args.Error(1)
}

func (m *MockSlotRepository) CountBooked(ctx context.Context, slotID int) (int, error) {
	args := m.Called(ctx, slotID)
	return args.Int(0), args.Error(1)
}

func (m *MockSlotRepository) ListWithAvailability(ctx context.Context, onlyFuture bool) ([]slot.TimeSlotWithAvailability, error) {
	args := m.Called(ctx, onlyFuture)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]slot.TimeSlotWithAvailability), args.Error(1)
}

type MockCourseService struct {
	mock.Mock
}

func (m *MockCourseService) CreateCourse(ctx context.Context, req course.CreateCourseRequest) (*course.Course, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*course.Course), args.Error(1)
}

func (m *MockCourseService) GetCourse(ctx context.Context, id int) (*course.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*course.Course), args.Error(1)
}

func (m *MockCourseService) ListCourses(ctx context.Context) ([]course.Course, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]course.Course), args.Error(1)
}

type MockSubscriptionService struct {
	mock.Mock
}

func (m *MockSubscriptionService) GetActiveForUser(ctx context.Context, userID int) (*subscription.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}

func (m *MockSubscriptionService) ListForUser(ctx context.Context, userID int) ([]subscription.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]subscription.Subscription), args.Error(1)
}

func (m *MockSubscriptionService) Usage(ctx context.Context, userID int) (*subscription.Usage, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Usage), args.Error(1)
}

func (m *MockSubscriptionService) IncrementOnBooking(ctx context.Context, tx *sqlx.Tx, subscriptionID int, tier plan.Tier) error {
	return m.Called(ctx, tx, subscriptionID, tier).Error(0)
}

func (m *MockSubscriptionService) ReleaseSession(ctx context.Context, tx *sqlx.Tx, subscriptionID int, bookedAt time.Time) error {
	return m.Called(ctx, tx, subscriptionID, bookedAt).Error(0)
}

func (m *MockSubscriptionService) ResetOnPeriodRollover(ctx context.Context, subscriptionID int, start, end time.Time) error {
	return m.Called(ctx, subscriptionID, start, end).Error(0)
}

func (m *MockSubscriptionService) Activate(ctx context.Context, req subscription.ActivateRequest) (*subscription.Subscription, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}

func (m *MockSubscriptionService) Sync(ctx context.Context, req subscription.SyncRequest) (*subscription.Subscription, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}

func (m *MockSubscriptionService) RollOver(ctx context.Context, providerID string, start, end time.Time) error {
	return m.Called(ctx, providerID, start, end).Error(0)
}

func (m *MockSubscriptionService) MarkPastDue(ctx context.Context, providerID string) error {
	return m.Called(ctx, providerID).Error(0)
}

func (m *MockSubscriptionService) Cancel(ctx context.Context, providerID string) error {
	return m.Called(ctx, providerID).Error(0)
}

type MockGiftCardService struct {
	mock.Mock
}

func (m *MockGiftCardService) CheckBalance(ctx context.Context, code string) (*giftcard.Balance, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*giftcard.Balance), args.Error(1)
}

func (m *MockGiftCardService) Redeem(ctx context.Context, code string, amountCents int64, description string) (*giftcard.Redemption, error) {
	args := m.Called(ctx, code, amountCents, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*giftcard.Redemption), args.Error(1)
}

func (m *MockGiftCardService) RedeemWith(ctx context.Context, tx *sqlx.Tx, code string, amountCents int64, description string) (*giftcard.Redemption, error) {
	args := m.Called(ctx, tx, code, amountCents, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*giftcard.Redemption), args.Error(1)
}

func (m *MockGiftCardService) Create(ctx context.Context, req giftcard.CreateRequest) (*giftcard.GiftCard, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*giftcard.GiftCard), args.Error(1)
}

func (m *MockGiftCardService) Cancel(ctx context.Context, code string) (*giftcard.GiftCard, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*giftcard.GiftCard), args.Error(1)
}

func (m *MockGiftCardService) History(ctx context.Context, code string) ([]giftcard.Transaction, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]giftcard.Transaction), args.Error(1)
}

type MockAuthority struct {
	mock.Mock
}

func (m *MockAuthority) Charge(ctx context.Context, req payment.ChargeRequest) (*payment.Charge, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Charge), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendPurchaseReceipt(ctx context.Context, to, name, item string, priceCents, chargedCents, drawnCents int64) error {
	return m.Called(ctx, to, name, item, priceCents, chargedCents, drawnCents).Error(0)
}

func (m *MockNotifier) SendBookingConfirmation(ctx context.Context, to, name, technician string, when time.Time) error {
	return m.Called(ctx, to, name, technician, when).Error(0)
}

func (m *MockNotifier) SendCancellation(ctx context.Context, to, name string, when time.Time) error {
	return m.Called(ctx, to, name, when).Error(0)
}

type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) GetByID(ctx context.Context, userID int) (*user.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

// fixture bundles the mocks behind one service under test.
type fixture struct {
	repo     *MockRepository
	tx       *fakeTx
	courses  *MockCourseService
	slots    *MockSlotRepository
	subs     *MockSubscriptionService
	cards    *MockGiftCardService
	payments *MockAuthority
	notifier *MockNotifier
	users    *MockUsers
	svc      *service
}

func newFixture(now time.Time) *fixture {
	f := &fixture{
		repo:     new(MockRepository),
		tx:       &fakeTx{},
		courses:  new(MockCourseService),
		slots:    new(MockSlotRepository),
		subs:     new(MockSubscriptionService),
		cards:    new(MockGiftCardService),
		payments: new(MockAuthority),
		notifier: new(MockNotifier),
		users:    new(MockUsers),
	}
	svc := NewService(Deps{
		Repo:          f.repo,
		Tx:            f.tx,
		Courses:       f.courses,
		Slots:         f.slots,
		Subscriptions: f.subs,
		GiftCards:     f.cards,
		Payments:      f.payments,
		Notifier:      f.notifier,
		Users:         f.users,
	}, Config{SessionPriceCents: 4900, Currency: "USD"}).(*service)
	svc.now = func() time.Time { return now }
	f.svc = svc

	f.users.On("GetByID", mock.Anything, mock.Anything).
		Return(&user.User{ID: 1, Name: "Robin", Email: "robin@example.com"}, nil).Maybe()
	return f
}

func (f *fixture) assertAll(t mock.TestingT) {
	f.repo.AssertExpectations(t)
	f.courses.AssertExpectations(t)
	f.slots.AssertExpectations(t)
	f.subs.AssertExpectations(t)
	f.cards.AssertExpectations(t)
	f.payments.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}
