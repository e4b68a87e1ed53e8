package entity

import (
	"admission-api/core/entity"

	"github.com/google/uuid"
)

// CounselorSchedule is one recurring bookable slot owned by a counselor.
// (day_id, slot_id) is deliberately not unique: several counselors may offer
// the same cell and the grid layer decides which one a student sees.
type CounselorSchedule struct {
	entity.BaseEntity
	CounselorID uuid.UUID `db:"counselor_id" json:"counselorId"`
	DayID       int       `db:"day_id" json:"dayId"`
	Day         string    `db:"day" json:"day"`
	SlotID      int       `db:"slot_id" json:"slotId"`
	Slot        string    `db:"slot" json:"slot"`
	StatusID    int       `db:"status_id" json:"statusId"`
}

// ScheduleWithCounselor is the listing projection joined with the owning
// counselor's public fields.
type ScheduleWithCounselor struct {
	CounselorSchedule
	CounselorName  string `db:"counselor_name" json:"counselorName"`
	CounselorEmail string `db:"counselor_email" json:"counselorEmail"`
	CounselorSlug  string `db:"counselor_slug" json:"counselorSlug"`
}
