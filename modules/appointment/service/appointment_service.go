package service

import (
	"context"
	"time"

	"admission-api/core/cache"
	"admission-api/core/config"
	"admission-api/core/constants"
	coredto "admission-api/core/dto"
	"admission-api/core/errors"
	"admission-api/core/logger"
	"admission-api/core/params"
	"admission-api/core/tasks"
	"admission-api/modules/appointment/dto"
	"admission-api/modules/appointment/entity"
	"admission-api/modules/appointment/repository"
	paymentservice "admission-api/modules/payment/service"
	schedulerepo "admission-api/modules/schedule/repository"

	"github.com/google/uuid"
)

// TaskScheduler is the slice of the background task client the appointment
// flow uses. Nil disables background work (tests, tooling).
type TaskScheduler interface {
	EnqueueNotification(ctx context.Context, payload tasks.NotificationDeliverPayload)
	ScheduleAppointmentExpiry(ctx context.Context, appointmentID uuid.UUID, delay time.Duration)
}

// AppointmentService owns the appointment lifecycle: the booking flow in
// booking_flow.go plus listings, completion and the dashboard aggregates.
type AppointmentService struct {
	apptRepo     repository.AppointmentRepositoryInterface
	scheduleRepo schedulerepo.ScheduleRepositoryInterface
	cache        *cache.Cache
	payment      paymentservice.PaymentClientInterface
	tasks        TaskScheduler
	returnURL    string
	cancelURL    string
}

func NewAppointmentService(
	apptRepo repository.AppointmentRepositoryInterface,
	scheduleRepo schedulerepo.ScheduleRepositoryInterface,
	c *cache.Cache,
	payment paymentservice.PaymentClientInterface,
	taskClient TaskScheduler,
	paymentCfg config.PaymentConfig,
) *AppointmentService {
	return &AppointmentService{
		apptRepo:     apptRepo,
		scheduleRepo: scheduleRepo,
		cache:        c,
		payment:      payment,
		tasks:        taskClient,
		returnURL:    paymentCfg.ReturnURL,
		cancelURL:    paymentCfg.CancelURL,
	}
}

type AppointmentServiceInterface interface {
	CreateAppointment(ctx context.Context, userID uuid.UUID, req *dto.CreateAppointmentRequest) (*dto.CreateAppointmentResponse, *errors.AppError)
	PreviewBooking(ctx context.Context, userID uuid.UUID, userEmail string, req *dto.PreviewBookingRequest) (*dto.BookingSelection, *errors.AppError)
	ConfirmBookingSession(ctx context.Context, userID uuid.UUID, sessionID string, req *dto.ConfirmBookingRequest) (*dto.CreateAppointmentResponse, *errors.AppError)
	HandlePaymentCallback(ctx context.Context, userID uuid.UUID, appointmentID uuid.UUID, req *dto.PaymentCallbackRequest) (*entity.AppointmentWithDetails, *errors.AppError)
	ExpirePendingAppointment(ctx context.Context, appointmentID uuid.UUID) error
	GetByID(ctx context.Context, requesterID uuid.UUID, role string, appointmentID uuid.UUID) (*entity.AppointmentWithDetails, *errors.AppError)
	List(ctx context.Context, requesterID uuid.UUID, role string, qp *params.QueryParams) (*coredto.Pagination[entity.AppointmentWithDetails], *errors.AppError)
	MarkCompleted(ctx context.Context, requesterID uuid.UUID, role string, appointmentID uuid.UUID) *errors.AppError
	Statistics(ctx context.Context, months int) (*dto.StatisticsResponse, *errors.AppError)
}

func (s *AppointmentService) GetByID(ctx context.Context, requesterID uuid.UUID, role string, appointmentID uuid.UUID) (*entity.AppointmentWithDetails, *errors.AppError) {
	appt, err := s.apptRepo.GetByID(ctx, appointmentID)
	if err != nil {
		logger.Error("AppointmentService:GetByID:GetByID:Error:", err)
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load the appointment", err)
	}
	if appt == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Appointment not found", nil)
	}
	if role != constants.RoleAdmin && appt.UserID != requesterID && appt.CounselorID != requesterID {
		return nil, errors.NewAppError(errors.ErrForbidden, "Appointment belongs to another user", nil)
	}
	return appt, nil
}

// List scopes the listing by role: students see their own bookings,
// consultants their incoming ones, admins everything.
func (s *AppointmentService) List(ctx context.Context, requesterID uuid.UUID, role string, qp *params.QueryParams) (*coredto.Pagination[entity.AppointmentWithDetails], *errors.AppError) {
	filter := repository.ListFilter{}
	switch role {
	case constants.RoleAdmin:
	case constants.RoleConsultant:
		filter.CounselorID = requesterID
	default:
		filter.UserID = requesterID
	}

	appts, total, err := s.apptRepo.SelectPaged(ctx, filter, qp)
	if err != nil {
		logger.Error("AppointmentService:List:SelectPaged:Error:", err)
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to list appointments", err)
	}
	return coredto.NewPagination(appts, total, qp.PageNumber, qp.PageSize), nil
}

// MarkCompleted moves a paid appointment to completed. Only the counselor on
// the appointment (or an admin) may do it.
func (s *AppointmentService) MarkCompleted(ctx context.Context, requesterID uuid.UUID, role string, appointmentID uuid.UUID) *errors.AppError {
	appt, err := s.apptRepo.GetByID(ctx, appointmentID)
	if err != nil {
		logger.Error("AppointmentService:MarkCompleted:GetByID:Error:", err)
		return errors.NewAppError(errors.ErrGetFailed, "Failed to load the appointment", err)
	}
	if appt == nil {
		return errors.NewAppError(errors.ErrNotFound, "Appointment not found", nil)
	}
	if role != constants.RoleAdmin && appt.CounselorID != requesterID {
		return errors.NewAppError(errors.ErrForbidden, "Only the assigned counselor can complete this appointment", nil)
	}

	moved, err := s.apptRepo.TransitionStatus(ctx, appointmentID,
		constants.AppointmentStatusPaid, constants.AppointmentStatusCompleted)
	if err != nil {
		logger.Error("AppointmentService:MarkCompleted:TransitionStatus:Error:", err)
		return errors.NewAppError(errors.ErrUpdateFailed, "Failed to complete the appointment", err)
	}
	if !moved {
		return errors.NewAppError(errors.ErrInvalidTransition, "Only paid appointments can be completed", nil)
	}
	return nil
}

// Statistics aggregates the dashboard numbers. Each block is independent: a
// failing aggregate logs and leaves its field zeroed so one bad query does
// not blank the whole dashboard.
func (s *AppointmentService) Statistics(ctx context.Context, months int) (*dto.StatisticsResponse, *errors.AppError) {
	if months <= 0 {
		months = 6
	}
	stats := &dto.StatisticsResponse{
		Monthly:  []dto.MonthlyCount{},
		ByStatus: []dto.StatusCount{},
	}

	if monthly, err := s.apptRepo.CountMonthly(ctx, months); err == nil {
		stats.Monthly = monthly
	} else {
		logger.Error("AppointmentService:Statistics:CountMonthly:Error:", err)
	}

	if byStatus, err := s.apptRepo.CountByStatus(ctx); err == nil {
		stats.ByStatus = byStatus
		for _, c := range byStatus {
			stats.TotalBookings += c.Total
		}
	} else {
		logger.Error("AppointmentService:Statistics:CountByStatus:Error:", err)
	}

	if paid, err := s.apptRepo.CountPaid(ctx); err == nil {
		stats.TotalRevenue = int64(paid) * constants.ConsultationFee
	} else {
		logger.Error("AppointmentService:Statistics:CountPaid:Error:", err)
	}

	return stats, nil
}

func (s *AppointmentService) notify(ctx context.Context, userID uuid.UUID, email, title, message, notifType string, appointmentID uuid.UUID) {
	if s.tasks == nil {
		return
	}
	s.tasks.EnqueueNotification(ctx, tasks.NotificationDeliverPayload{
		UserID:  userID,
		Email:   email,
		Title:   title,
		Message: message,
		Type:    notifType,
		Data:    map[string]any{"appointmentId": appointmentID.String()},
	})
}
