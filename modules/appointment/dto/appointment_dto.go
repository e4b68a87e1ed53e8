package dto

import "github.com/google/uuid"

type CreateAppointmentRequest struct {
	ScheduleID uuid.UUID `json:"scheduleId" validate:"required"`
	Content    string    `json:"content"`
}

// CreateAppointmentResponse hands the caller the checkout link to redirect to.
type CreateAppointmentResponse struct {
	AppointmentID uuid.UUID `json:"appointmentId"`
	CheckoutURL   string    `json:"checkoutUrl"`
	OrderCode     int64     `json:"orderCode"`
}

// PaymentCallbackRequest carries the return parameters the payment provider
// appends when redirecting the payer back.
type PaymentCallbackRequest struct {
	Code   string `json:"code"`
	Cancel bool   `json:"cancel"`
}

type UpdateAppointmentStatusRequest struct {
	StatusID int `json:"statusId" validate:"required"`
}

// BookingSession is the redis-held state between link creation and the
// payment callback.
type BookingSession struct {
	AppointmentID uuid.UUID `json:"appointmentId"`
	ScheduleID    uuid.UUID `json:"scheduleId"`
	UserID        uuid.UUID `json:"userId"`
	OrderCode     int64     `json:"orderCode"`
}

type PreviewBookingRequest struct {
	ScheduleID uuid.UUID `json:"scheduleId" validate:"required"`
}

// BookingSelection is the redis-held preview the two confirmation modals show
// before the booking is submitted: the chosen slot plus a snapshot of who is
// booking it. Discarded on confirm, cancel or TTL expiry.
type BookingSelection struct {
	SessionID      string    `json:"sessionId"`
	ScheduleID     uuid.UUID `json:"scheduleId"`
	CounselorName  string    `json:"counselorName"`
	CounselorEmail string    `json:"counselorEmail"`
	Day            string    `json:"day"`
	Slot           string    `json:"slot"`
	StudentID      uuid.UUID `json:"studentId"`
	StudentEmail   string    `json:"studentEmail"`
}

type ConfirmBookingRequest struct {
	Content string `json:"content"`
}

type MonthlyCount struct {
	Month string `json:"month" db:"month"`
	Total int    `json:"total" db:"total"`
}

type StatusCount struct {
	StatusID int `json:"statusId" db:"status_id"`
	Total    int `json:"total" db:"total"`
}

// StatisticsResponse aggregates the admin dashboard numbers. Each block is
// computed independently; a failing aggregate is zeroed, never fatal.
type StatisticsResponse struct {
	Monthly       []MonthlyCount `json:"monthly"`
	ByStatus      []StatusCount  `json:"byStatus"`
	TotalBookings int            `json:"totalBookings"`
	TotalRevenue  int64          `json:"totalRevenue"`
}
