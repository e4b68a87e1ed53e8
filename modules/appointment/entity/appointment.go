package entity

import (
	"database/sql"

	"admission-api/core/entity"

	"github.com/google/uuid"
)

// Appointment is one student booking against a counselor schedule slot.
// status_id walks pending -> paid -> completed, with cancelled reachable
// only from pending.
type Appointment struct {
	entity.BaseEntity
	ScheduleID  uuid.UUID     `db:"schedule_id" json:"scheduleId"`
	CounselorID uuid.UUID     `db:"counselor_id" json:"counselorId"`
	UserID      uuid.UUID     `db:"user_id" json:"userId"`
	StatusID    int           `db:"status_id" json:"statusId"`
	Content     string        `db:"content" json:"content"`
	OrderCode   sql.NullInt64 `db:"order_code" json:"-"`
	CheckoutURL string        `db:"checkout_url" json:"checkoutUrl,omitempty"`
}

// AppointmentWithDetails joins in the slot and the two parties for listings.
type AppointmentWithDetails struct {
	Appointment
	DayID          int    `db:"day_id" json:"dayId"`
	Day            string `db:"day" json:"day"`
	SlotID         int    `db:"slot_id" json:"slotId"`
	Slot           string `db:"slot" json:"slot"`
	CounselorName  string `db:"counselor_name" json:"counselorName"`
	CounselorEmail string `db:"counselor_email" json:"counselorEmail"`
	UserName       string `db:"user_name" json:"userName"`
	UserEmail      string `db:"user_email" json:"userEmail"`
}
