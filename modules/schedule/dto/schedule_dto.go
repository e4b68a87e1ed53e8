package dto

import "github.com/google/uuid"

// ScheduleEntry mirrors the wire shape consumed by the booking table.
type ScheduleEntry struct {
	ScheduleID     uuid.UUID `json:"scheduleId"`
	CounselorEmail string    `json:"counselorEmail"`
	CounselorName  string    `json:"counselorName"`
	Day            string    `json:"day"`
	DayID          int       `json:"dayId"`
	Slot           string    `json:"slot"`
	SlotID         int       `json:"slotId"`
	StatusID       int       `json:"statusId"`
}

type CreateScheduleRequest struct {
	DayID  int `json:"dayId" validate:"required,min=1,max=7"`
	SlotID int `json:"slotId" validate:"required,min=1"`
	// Slot is the display label, e.g. "9:00 - 10:00".
	Slot string `json:"slot" validate:"required"`
}

type UpdateScheduleStatusRequest struct {
	StatusID int `json:"statusId" validate:"required,min=1,max=2"`
}
