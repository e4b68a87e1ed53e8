package service

import (
	"context"

	"admission-api/core/cache"
	"admission-api/core/constants"
	"admission-api/core/errors"
	"admission-api/core/logger"
	"admission-api/core/utils"
	"admission-api/modules/appointment/dto"

	"github.com/google/uuid"
)

// PreviewBooking starts the two-step confirmation: it validates the chosen
// slot is still open and parks a BookingSelection in redis so the confirm
// call can submit without the client re-sending the slot details.
func (s *AppointmentService) PreviewBooking(ctx context.Context, userID uuid.UUID, userEmail string, req *dto.PreviewBookingRequest) (*dto.BookingSelection, *errors.AppError) {
	schedule, err := s.scheduleRepo.GetByID(ctx, req.ScheduleID)
	if err != nil {
		logger.Error("AppointmentService:PreviewBooking:GetSchedule:Error:", err)
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

	selection := &dto.BookingSelection{
		SessionID:      utils.GenerateID(),
		ScheduleID:     schedule.ID,
		CounselorName:  schedule.CounselorName,
		CounselorEmail: schedule.CounselorEmail,
		Day:            schedule.Day,
		Slot:           schedule.Slot,
		StudentID:      userID,
		StudentEmail:   userEmail,
	}
	if err := s.cache.SetBookingSession(ctx, selection.SessionID, selection); err != nil {
		logger.Error("AppointmentService:PreviewBooking:SetBookingSession:Error:", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to store the booking selection", err)
	}
	return selection, nil
}

// ConfirmBookingSession submits the booking parked by PreviewBooking. The
// selection does not reserve the slot, so the create flow still re-checks
// availability under the in-flight guard.
func (s *AppointmentService) ConfirmBookingSession(ctx context.Context, userID uuid.UUID, sessionID string, req *dto.ConfirmBookingRequest) (*dto.CreateAppointmentResponse, *errors.AppError) {
	var selection dto.BookingSelection
	if err := s.cache.GetBookingSession(ctx, sessionID, &selection); err != nil {
		if err == cache.ErrSessionNotFound {
			return nil, errors.NewAppError(errors.ErrNotFound, "Booking selection expired, pick the slot again", nil)
		}
		logger.Error("AppointmentService:ConfirmBookingSession:GetBookingSession:Error:", err)
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load the booking selection", err)
	}
	if selection.StudentID != userID {
		return nil, errors.NewAppError(errors.ErrForbidden, "Booking selection belongs to another user", nil)
	}

	result, appErr := s.CreateAppointment(ctx, userID, &dto.CreateAppointmentRequest{
		ScheduleID: selection.ScheduleID,
		Content:    req.Content,
	})
	if appErr != nil {
		return nil, appErr
	}

	if err := s.cache.DeleteBookingSession(ctx, sessionID); err != nil {
		logger.Error("AppointmentService:ConfirmBookingSession:DeleteBookingSession:Error:", err)
	}
	return result, nil
}
