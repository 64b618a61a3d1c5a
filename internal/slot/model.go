package slot

import "time"

// TimeSlot mirrors a bookable event published by the external scheduling calendar.
type TimeSlot struct {
	ID              int       `db:"id" json:"id"`
	ExternalEventID *string   `db:"external_event_id" json:"external_event_id,omitempty"`
	Technician      string    `db:"technician" json:"technician"`
	StartTime       time.Time `db:"start_time" json:"start_time"`
	EndTime         time.Time `db:"end_time" json:"end_time"`
	Capacity        int       `db:"capacity" json:"capacity"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

type TimeSlotWithAvailability struct {
	TimeSlot
	BookedCount int  `db:"booked_count" json:"booked_count"`
	Available   int  `db:"-" json:"available"`
	IsFull      bool `db:"-" json:"is_full"`
}

func newAvailability(slot TimeSlot, booked int) TimeSlotWithAvailability {
	available := slot.Capacity - booked
	if available < 0 {
		available = 0
	}
	return TimeSlotWithAvailability{
		TimeSlot:    slot,
		BookedCount: booked,
		Available:   available,
		IsFull:      available == 0,
	}
}

type CreateTimeSlotRequest struct {
	ExternalEventID *string `json:"external_event_id" validate:"omitempty,max=255"`
	Technician      string  `json:"technician" validate:"required,max=100"`
	StartTime       string  `json:"start_time" validate:"required"`
	EndTime         string  `json:"end_time" validate:"required"`
	Capacity        int     `json:"capacity" validate:"required,min=1"`
}
