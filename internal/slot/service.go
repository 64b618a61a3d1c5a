package slot

import (
	"context"
	"errors"
	"time"

	"techdeputies/internal/apperr"
	"techdeputies/internal/logger"
)

var ErrTimeSlotInvalid = errors.New("invalid time slot")

type Service interface {
	CreateTimeSlot(ctx context.Context, req CreateTimeSlotRequest) (*TimeSlot, error)
	GetTimeSlot(ctx context.Context, id int) (*TimeSlotWithAvailability, error)
	ListTimeSlots(ctx context.Context, onlyFuture bool) ([]TimeSlotWithAvailability, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateTimeSlot(ctx context.Context, req CreateTimeSlotRequest) (*TimeSlot, error) {
	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return nil, apperr.Validation("start_time must be RFC3339", ErrTimeSlotInvalid)
	}

	endTime, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		return nil, apperr.Validation("end_time must be RFC3339", ErrTimeSlotInvalid)
	}

	if !endTime.After(startTime) {
		return nil, apperr.Validation("end_time must be after start_time", ErrTimeSlotInvalid)
	}

	if req.Capacity <= 0 {
		return nil, apperr.Validation("capacity must be positive", ErrTimeSlotInvalid)
	}

	slot := &TimeSlot{
		ExternalEventID: req.ExternalEventID,
		Technician:      req.Technician,
		StartTime:       startTime.UTC(),
		EndTime:         endTime.UTC(),
		Capacity:        req.Capacity,
	}
	err = s.repo.Create(ctx, slot)
	if errors.Is(err, ErrDuplicateExternalID) {
		return nil, apperr.Conflict("time slot already exists for this calendar event", err)
	}
	if err != nil {
		return nil, apperr.Internal("failed to create time slot", err)
	}

	logger.Info("time slot created", "slot_id", slot.ID, "technician", slot.Technician, "start", slot.StartTime)
	return slot, nil
}

func (s *service) GetTimeSlot(ctx context.Context, id int) (*TimeSlotWithAvailability, error) {
	slot, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrSlotNotFound) {
		return nil, apperr.NotFound("time slot not found", err)
	}
	if err != nil {
		return nil, apperr.Internal("failed to load time slot", err)
	}

	booked, err := s.repo.CountBooked(ctx, id)
	if err != nil {
		return nil, apperr.Internal("failed to count bookings", err)
	}

	view := newAvailability(*slot, booked)
	return &view, nil
}

func (s *service) ListTimeSlots(ctx context.Context, onlyFuture bool) ([]TimeSlotWithAvailability, error) {
	slots, err := s.repo.ListWithAvailability(ctx, onlyFuture)
	if err != nil {
		return nil, apperr.Internal("failed to list time slots", err)
	}
	return slots, nil
}
