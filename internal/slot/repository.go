package slot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"techdeputies/internal/db"

	"github.com/jmoiron/sqlx"
)

var (
	ErrSlotNotFound        = errors.New("time slot not found")
	ErrDuplicateExternalID = errors.New("time slot already imported")
)

type repository struct {
	q db.Querier
}

func NewRepository(q db.Querier) Repository {
	return &repository{q: q}
}

func (r *repository) WithTx(tx *sqlx.Tx) Repository {
	return &repository{q: tx}
}

func (r *repository) Create(ctx context.Context, slot *TimeSlot) error {
	query := `
		INSERT INTO time_slots (external_event_id, technician, start_time, end_time, capacity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, external_event_id, technician, start_time, end_time, capacity, created_at
	`

	err := r.q.QueryRowxContext(ctx, query,
		slot.ExternalEventID, slot.Technician, slot.StartTime, slot.EndTime, slot.Capacity,
	).StructScan(slot)
	if db.IsUniqueViolation(err) {
		return ErrDuplicateExternalID
	}
	if err != nil {
		return fmt.Errorf("insert time slot: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*TimeSlot, error) {
	return r.get(ctx, `
		SELECT id, external_event_id, technician, start_time, end_time, capacity, created_at
		FROM time_slots
		WHERE id = $1
	`, id)
}

func (r *repository) LockByID(ctx context.Context, id int) (*TimeSlot, error) {
	return r.get(ctx, `
		SELECT id, external_event_id, technician, start_time, end_time, capacity, created_at
		FROM time_slots
		WHERE id = $1
		FOR UPDATE
	`, id)
}

func (r *repository) get(ctx context.Context, query string, id int) (*TimeSlot, error) {
	var slot TimeSlot
	err := r.q.GetContext(ctx, &slot, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get time slot %d: %w", id, err)
	}
	return &slot, nil
}

func (r *repository) CountBooked(ctx context.Context, slotID int) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM bookings
		WHERE time_slot_id = $1 AND status = 'booked'
	`

	var count int
	if err := r.q.GetContext(ctx, &count, query, slotID); err != nil {
		return 0, fmt.Errorf("count bookings for slot %d: %w", slotID, err)
	}
	return count, nil
}

func (r *repository) ListWithAvailability(ctx context.Context, onlyFuture bool) ([]TimeSlotWithAvailability, error) {
	query := `
		SELECT t.id, t.external_event_id, t.technician, t.start_time, t.end_time, t.capacity, t.created_at,
			COUNT(b.id) AS booked_count
		FROM time_slots t
		LEFT JOIN bookings b ON b.time_slot_id = t.id AND b.status = 'booked'
	`
	if onlyFuture {
		query += " WHERE t.start_time > NOW()"
	}
	query += " GROUP BY t.id ORDER BY t.start_time ASC"

	var rows []TimeSlotWithAvailability
	if err := r.q.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list time slots: %w", err)
	}

	result := make([]TimeSlotWithAvailability, 0, len(rows))
	for _, row := range rows {
		result = append(result, newAvailability(row.TimeSlot, row.BookedCount))
	}
	return result, nil
}
