package service

import (
	"context"
	"fmt"
	"time"

	"admission-api/core/cache"
	"admission-api/core/constants"
	"admission-api/core/errors"
	"admission-api/core/logger"
	"admission-api/modules/appointment/dto"
	"admission-api/modules/appointment/entity"
	paymentdto "admission-api/modules/payment/dto"

	"github.com/google/uuid"
)

// CreateAppointment runs the whole booking submission flow:
//
//  1. take the per-user in-flight guard so double-clicks cannot race,
//  2. re-check the slot and flip it available -> booked optimistically,
//  3. insert the pending appointment,
//  4. ask the payment provider for a checkout link,
//  5. stash the booking session in redis and queue the pending-payment sweep.
//
// Any failure after step 2 re-opens the slot before returning.
func (s *AppointmentService) CreateAppointment(ctx context.Context, userID uuid.UUID, req *dto.CreateAppointmentRequest) (*dto.CreateAppointmentResponse, *errors.AppError) {
	acquired, err := s.cache.AcquireBookingGuard(ctx, userID.String())
	if err != nil {
		logger.Error("AppointmentService:CreateAppointment:AcquireBookingGuard:Error:", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to start booking", err)
	}
	if !acquired {
		return nil, errors.NewAppError(errors.ErrBookingInFlight, "Another booking is already in progress, please wait", nil)
	}
	defer func() {
		if err := s.cache.ReleaseBookingGuard(ctx, userID.String()); err != nil {
			logger.Error("AppointmentService:CreateAppointment:ReleaseBookingGuard:Error:", err)
		}
	}()

	schedule, err := s.scheduleRepo.GetByID(ctx, req.ScheduleID)
	if err != nil {
		logger.Error("AppointmentService:CreateAppointment:GetSchedule:Error:", err)
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load the selected slot", err)
	}
	if schedule == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "The selected slot no longer exists", nil)
	}
	if schedule.StatusID != constants.ScheduleStatusAvailable {
		return nil, errors.NewAppError(errors.ErrSlotNotAvailable, "The selected slot is no longer available", nil)
	}
	if schedule.CounselorID == userID {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Counselors cannot book their own slots", nil)
	}

	booked, err := s.scheduleRepo.MarkBooked(ctx, schedule.ID)
	if err != nil {
		logger.Error("AppointmentService:CreateAppointment:MarkBooked:Error:", err)
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "Failed to reserve the slot", err)
	}
	if !booked {
		// Someone else won the row between the read and the update.
		return nil, errors.NewAppError(errors.ErrSlotNotAvailable, "The selected slot was just taken", nil)
	}

	appt, err := s.apptRepo.Create(ctx, &entity.Appointment{
		ScheduleID:  schedule.ID,
		CounselorID: schedule.CounselorID,
		UserID:      userID,
		StatusID:    constants.AppointmentStatusPending,
		Content:     req.Content,
	})
	if err != nil {
		logger.Error("AppointmentService:CreateAppointment:Create:Error:", err)
		s.reopenSlot(ctx, schedule.ID)
		return nil, errors.NewAppError(errors.ErrCreateFailed, "Failed to create the appointment", err)
	}

	orderCode := newOrderCode()
	link, appErr := s.payment.CreatePaymentLink(ctx, &paymentdto.CreatePaymentLinkRequest{
		OrderCode:   orderCode,
		Amount:      constants.ConsultationFee,
		Description: fmt.Sprintf("Tu van tuyen sinh %s", appt.ID.String()[:8]),
		ReturnURL:   s.returnURL,
		CancelURL:   s.cancelURL,
	})
	if appErr != nil {
		logger.Error("AppointmentService:CreateAppointment:CreatePaymentLink:Error:", appErr)
		s.abortPending(ctx, appt.ID, schedule.ID)
		return nil, appErr
	}

	if err := s.apptRepo.SetPaymentLink(ctx, appt.ID, link.OrderCode, link.CheckoutURL); err != nil {
		logger.Error("AppointmentService:CreateAppointment:SetPaymentLink:Error:", err)
		s.abortPending(ctx, appt.ID, schedule.ID)
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "Failed to attach the payment link", err)
	}

	session := dto.BookingSession{
		AppointmentID: appt.ID,
		ScheduleID:    schedule.ID,
		UserID:        userID,
		OrderCode:     link.OrderCode,
	}
	if err := s.cache.SetBookingSession(ctx, appt.ID.String(), session); err != nil {
		// The callback can fall back to the database; keep going.
		logger.Error("AppointmentService:CreateAppointment:SetBookingSession:Error:", err)
	}

	if s.tasks != nil {
		s.tasks.ScheduleAppointmentExpiry(ctx, appt.ID, constants.PendingPaymentTTL)
	}

	return &dto.CreateAppointmentResponse{
		AppointmentID: appt.ID,
		CheckoutURL:   link.CheckoutURL,
		OrderCode:     link.OrderCode,
	}, nil
}

// HandlePaymentCallback settles a pending appointment from the provider's
// return redirect. Cancel (or a non-success code) releases the slot; success
// is confirmed against the provider before the appointment flips to paid.
func (s *AppointmentService) HandlePaymentCallback(ctx context.Context, userID uuid.UUID, appointmentID uuid.UUID, req *dto.PaymentCallbackRequest) (*entity.AppointmentWithDetails, *errors.AppError) {
	appt, err := s.apptRepo.GetByID(ctx, appointmentID)
	if err != nil {
		logger.Error("AppointmentService:HandlePaymentCallback:GetByID:Error:", err)
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load the appointment", err)
	}
	if appt == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Appointment not found", nil)
	}
	if appt.UserID != userID {
		return nil, errors.NewAppError(errors.ErrForbidden, "Appointment belongs to another user", nil)
	}

	// A replayed callback on a settled appointment is answered idempotently.
	if appt.StatusID == constants.AppointmentStatusPaid && !req.Cancel {
		return appt, nil
	}
	if appt.StatusID != constants.AppointmentStatusPending {
		return nil, errors.NewAppError(errors.ErrInvalidTransition, "Appointment is no longer pending", nil)
	}

	var session dto.BookingSession
	if err := s.cache.GetBookingSession(ctx, appointmentID.String(), &session); err != nil {
		if err != cache.ErrSessionNotFound {
			logger.Error("AppointmentService:HandlePaymentCallback:GetBookingSession:Error:", err)
		}
		// Expired or missing session: the order code on the row is enough.
		session = dto.BookingSession{
			AppointmentID: appointmentID,
			ScheduleID:    appt.ScheduleID,
			UserID:        appt.UserID,
			OrderCode:     appt.OrderCode.Int64,
		}
	}

	if req.Cancel || req.Code != paymentCodeOK {
		if appErr := s.cancelPending(ctx, appointmentID, session.ScheduleID); appErr != nil {
			return nil, appErr
		}
		s.notify(ctx, appt.UserID, appt.UserEmail, "Lịch hẹn đã huỷ",
			"Thanh toán bị huỷ, khung giờ đã được mở lại.", "appointment_cancelled", appointmentID)
		return s.reload(ctx, appointmentID)
	}

	info, appErr := s.payment.GetPaymentLink(ctx, session.OrderCode)
	if appErr != nil {
		return nil, appErr
	}
	if info.Status != paymentdto.LinkStatusPaid {
		return nil, errors.NewAppError(errors.ErrInvalidTransition,
			fmt.Sprintf("Payment is not completed yet (provider status %s)", info.Status), nil)
	}

	moved, err := s.apptRepo.TransitionStatus(ctx, appointmentID,
		constants.AppointmentStatusPending, constants.AppointmentStatusPaid)
	if err != nil {
		logger.Error("AppointmentService:HandlePaymentCallback:TransitionStatus:Error:", err)
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "Failed to confirm the payment", err)
	}
	if !moved {
		return nil, errors.NewAppError(errors.ErrInvalidTransition, "Appointment is no longer pending", nil)
	}

	if err := s.cache.DeleteBookingSession(ctx, appointmentID.String()); err != nil {
		logger.Error("AppointmentService:HandlePaymentCallback:DeleteBookingSession:Error:", err)
	}

	s.notify(ctx, appt.UserID, appt.UserEmail, "Đặt lịch thành công",
		fmt.Sprintf("Lịch tư vấn %s (%s) đã được xác nhận.", appt.Day, appt.Slot),
		"appointment_paid", appointmentID)
	s.notify(ctx, appt.CounselorID, appt.CounselorEmail, "Lịch hẹn mới",
		fmt.Sprintf("Bạn có lịch tư vấn mới vào %s (%s).", appt.Day, appt.Slot),
		"appointment_paid", appointmentID)

	return s.reload(ctx, appointmentID)
}

// ExpirePendingAppointment is the asynq sweep handler: a pending appointment
// whose payment window lapsed is cancelled and its slot re-opened.
func (s *AppointmentService) ExpirePendingAppointment(ctx context.Context, appointmentID uuid.UUID) error {
	appt, err := s.apptRepo.GetByID(ctx, appointmentID)
	if err != nil {
		return err
	}
	if appt == nil || appt.StatusID != constants.AppointmentStatusPending {
		return nil
	}

	if appErr := s.cancelPending(ctx, appointmentID, appt.ScheduleID); appErr != nil {
		return appErr
	}
	logger.Info("Pending appointment expired", "appointmentId", appointmentID.String())

	s.notify(ctx, appt.UserID, appt.UserEmail, "Lịch hẹn đã hết hạn",
		"Thanh toán không hoàn tất trong thời gian cho phép, lịch hẹn đã bị huỷ.",
		"appointment_expired", appointmentID)
	return nil
}

// cancelPending flips pending -> cancelled, re-opens the slot and drops the
// redis session.
func (s *AppointmentService) cancelPending(ctx context.Context, appointmentID, scheduleID uuid.UUID) *errors.AppError {
	moved, err := s.apptRepo.TransitionStatus(ctx, appointmentID,
		constants.AppointmentStatusPending, constants.AppointmentStatusCancelled)
	if err != nil {
		logger.Error("AppointmentService:cancelPending:TransitionStatus:Error:", err)
		return errors.NewAppError(errors.ErrUpdateFailed, "Failed to cancel the appointment", err)
	}
	if !moved {
		return errors.NewAppError(errors.ErrInvalidTransition, "Appointment is no longer pending", nil)
	}

	s.reopenSlot(ctx, scheduleID)
	if err := s.cache.DeleteBookingSession(ctx, appointmentID.String()); err != nil {
		logger.Error("AppointmentService:cancelPending:DeleteBookingSession:Error:", err)
	}
	return nil
}

// abortPending undoes a half-built booking when link creation fails.
func (s *AppointmentService) abortPending(ctx context.Context, appointmentID, scheduleID uuid.UUID) {
	if _, err := s.apptRepo.TransitionStatus(ctx, appointmentID,
		constants.AppointmentStatusPending, constants.AppointmentStatusCancelled); err != nil {
		logger.Error("AppointmentService:abortPending:TransitionStatus:Error:", err)
	}
	s.reopenSlot(ctx, scheduleID)
}

func (s *AppointmentService) reopenSlot(ctx context.Context, scheduleID uuid.UUID) {
	if err := s.scheduleRepo.Reopen(ctx, scheduleID); err != nil {
		logger.Error("AppointmentService:reopenSlot:Reopen:Error:", err)
	}
}

func (s *AppointmentService) reload(ctx context.Context, appointmentID uuid.UUID) (*entity.AppointmentWithDetails, *errors.AppError) {
	appt, err := s.apptRepo.GetByID(ctx, appointmentID)
	if err != nil {
		logger.Error("AppointmentService:reload:GetByID:Error:", err)
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to reload the appointment", err)
	}
	return appt, nil
}

const paymentCodeOK = "00"

// newOrderCode derives a provider-unique numeric order code. Millisecond
// timestamps are unique enough under the per-user guard.
func newOrderCode() int64 {
	return time.Now().UnixMilli()
}
