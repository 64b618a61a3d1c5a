package subscription

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"techdeputies/internal/db"
	"techdeputies/internal/plan"

	"github.com/jmoiron/sqlx"
)

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrSessionLimitExceeded = errors.New("session limit exceeded")
	ErrAlreadyActive        = errors.New("user already has an active subscription")
	ErrSubscriptionInactive = errors.New("subscription is not active")
)

const subscriptionColumns = `id, user_id, tier, status, provider_subscription_id,
	current_period_start, current_period_end, sessions_booked_this_period, created_at, updated_at`

type repository struct {
	q db.Querier
}

func NewRepository(q db.Querier) Repository {
	return &repository{q: q}
}

func (r *repository) WithTx(tx *sqlx.Tx) Repository {
	return &repository{q: tx}
}

func (r *repository) Create(ctx context.Context, sub *Subscription) error {
	query := `
		INSERT INTO subscriptions (user_id, tier, status, provider_subscription_id,
			current_period_start, current_period_end, sessions_booked_this_period)
		VALUES ($1, $2, $3, $4, $5, $6, 0)
		RETURNING ` + subscriptionColumns

	err := r.q.QueryRowxContext(ctx, query,
		sub.UserID, sub.Tier, sub.Status, sub.ProviderSubscriptionID,
		sub.CurrentPeriodStart, sub.CurrentPeriodEnd,
	).StructScan(sub)
	if db.IsUniqueViolation(err) {
		return ErrAlreadyActive
	}
	if err != nil {
		return fmt.Errorf("insert subscription: %w", err)
	}
	return nil
}

func (r *repository) get(ctx context.Context, query string, args ...interface{}) (*Subscription, error) {
	var sub Subscription
	err := r.q.GetContext(ctx, &sub, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	return &sub, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Subscription, error) {
	return r.get(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1`, id)
}

func (r *repository) LockByProviderID(ctx context.Context, providerID string) (*Subscription, error) {
	return r.get(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE provider_subscription_id = $1 FOR UPDATE`, providerID)
}

func (r *repository) GetActiveForUser(ctx context.Context, userID int) (*Subscription, error) {
	return r.get(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE user_id = $1 AND status = 'active'`, userID)
}

func (r *repository) ListForUser(ctx context.Context, userID int) ([]Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	subs := []Subscription{}
	if err := r.q.SelectContext(ctx, &subs, query, userID); err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return subs, nil
}

func (r *repository) CancelActiveForUser(ctx context.Context, userID int) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
		UPDATE subscriptions
		SET status = 'cancelled', updated_at = NOW()
		WHERE user_id = $1 AND status = 'active'
	`, userID)
	if err != nil {
		return 0, fmt.Errorf("cancel active subscriptions: %w", err)
	}
	return res.RowsAffected()
}

func (r *repository) IncrementSessions(ctx context.Context, id int, limit int) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE subscriptions
		SET sessions_booked_this_period = sessions_booked_this_period + 1,
			updated_at = NOW()
		WHERE id = $1
			AND status = 'active'
			AND ($2 = 0 OR sessions_booked_this_period < $2)
	`, id, limit)
	if err != nil {
		return fmt.Errorf("increment sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment sessions: %w", err)
	}
	if n > 0 {
		return nil
	}

	// Nothing matched: either the cap is reached or the subscription left
	// the active state after the caller read it.
	var status Status
	err = r.q.GetContext(ctx, &status, `SELECT status FROM subscriptions WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrSubscriptionNotFound
	}
	if err != nil {
		return fmt.Errorf("increment sessions: %w", err)
	}
	if status != StatusActive {
		return fmt.Errorf("%w: %s", ErrSubscriptionInactive, status)
	}
	return ErrSessionLimitExceeded
}

func (r *repository) ReleaseSession(ctx context.Context, id int, bookedAt time.Time) (bool, error) {
	res, err := r.q.ExecContext(ctx, `
		UPDATE subscriptions
		SET sessions_booked_this_period = sessions_booked_this_period - 1,
			updated_at = NOW()
		WHERE id = $1
			AND sessions_booked_this_period > 0
			AND current_period_start <= $2
			AND current_period_end > $2
	`, id, bookedAt)
	if err != nil {
		return false, fmt.Errorf("release session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("release session: %w", err)
	}
	return n > 0, nil
}

func (r *repository) ResetPeriod(ctx context.Context, id int, start, end time.Time) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE subscriptions
		SET sessions_booked_this_period = 0,
			current_period_start = $2,
			current_period_end = $3,
			updated_at = NOW()
		WHERE id = $1
	`, id, start, end)
	if err != nil {
		return fmt.Errorf("reset subscription period: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

func (r *repository) Update(ctx context.Context, id int, tier plan.Tier, status Status) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE subscriptions
		SET tier = $2, status = $3, updated_at = NOW()
		WHERE id = $1
	`, id, tier, status)
	if db.IsUniqueViolation(err) {
		return ErrAlreadyActive
	}
	if err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}
