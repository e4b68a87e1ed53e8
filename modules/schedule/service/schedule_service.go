package service

import (
	"context"

	"admission-api/core/constants"
	coredto "admission-api/core/dto"
	"admission-api/core/errors"
	"admission-api/core/logger"
	"admission-api/core/params"
	"admission-api/modules/schedule/dto"
	"admission-api/modules/schedule/entity"
	"admission-api/modules/schedule/repository"

	"github.com/google/uuid"
)

// ScheduleService owns the counselor schedule lifecycle and the grid
// projection used by the booking page.
type ScheduleService struct {
	repo repository.ScheduleRepositoryInterface
}

func NewScheduleService(repo repository.ScheduleRepositoryInterface) *ScheduleService {
	return &ScheduleService{repo: repo}
}

type ScheduleServiceInterface interface {
	SelectCounselorSchedules(ctx context.Context) ([]dto.ScheduleEntry, *errors.AppError)
	GetBookingGrid(ctx context.Context, policy ResolvePolicy) (*Grid, *errors.AppError)
	GetCounselorGrid(ctx context.Context, slug string) (*Grid, *errors.AppError)
	ListPaged(ctx context.Context, qp *params.QueryParams) (*coredto.Pagination[entity.ScheduleWithCounselor], *errors.AppError)
	Create(ctx context.Context, counselorID uuid.UUID, req *dto.CreateScheduleRequest) (*entity.CounselorSchedule, *errors.AppError)
	UpdateStatus(ctx context.Context, counselorID uuid.UUID, scheduleID uuid.UUID, isAdmin bool, req *dto.UpdateScheduleStatusRequest) *errors.AppError
	Delete(ctx context.Context, counselorID uuid.UUID, scheduleID uuid.UUID, isAdmin bool) *errors.AppError
}

// SelectCounselorSchedules returns every schedule entry in the flat wire
// shape; the caller builds whatever grid it needs from it.
func (s *ScheduleService) SelectCounselorSchedules(ctx context.Context) ([]dto.ScheduleEntry, *errors.AppError) {
	schedules, err := s.repo.SelectAll(ctx)
	if err != nil {
		logger.Error("ScheduleService:SelectCounselorSchedules:SelectAll:Error:", err)
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load schedules", err)
	}

	entries := make([]dto.ScheduleEntry, 0, len(schedules))
	for _, sch := range schedules {
		entries = append(entries, toScheduleEntry(sch))
	}
	return entries, nil
}

// GetBookingGrid builds the full day/slot grid over all counselors.
func (s *ScheduleService) GetBookingGrid(ctx context.Context, policy ResolvePolicy) (*Grid, *errors.AppError) {
	schedules, err := s.repo.SelectAll(ctx)
	if err != nil {
		logger.Error("ScheduleService:GetBookingGrid:SelectAll:Error:", err)
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load schedules", err)
	}
	return BuildScheduleIndex(toGridEntries(schedules)).Grid(policy), nil
}

// GetCounselorGrid builds the grid restricted to one counselor's public page.
func (s *ScheduleService) GetCounselorGrid(ctx context.Context, slug string) (*Grid, *errors.AppError) {
	schedules, err := s.repo.SelectByCounselorSlug(ctx, slug)
	if err != nil {
		logger.Error("ScheduleService:GetCounselorGrid:SelectByCounselorSlug:Error:", err)
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load counselor schedules", err)
	}
	if len(schedules) == 0 {
		return nil, errors.NewAppError(errors.ErrNotFound, "Counselor has no published schedule", nil)
	}
	return BuildScheduleIndex(toGridEntries(schedules)).Grid(AllMatches), nil
}

func (s *ScheduleService) ListPaged(ctx context.Context, qp *params.QueryParams) (*coredto.Pagination[entity.ScheduleWithCounselor], *errors.AppError) {
	schedules, total, err := s.repo.SelectPaged(ctx, qp)
	if err != nil {
		logger.Error("ScheduleService:ListPaged:SelectPaged:Error:", err)
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to list schedules", err)
	}
	return coredto.NewPagination(schedules, total, qp.PageNumber, qp.PageSize), nil
}

func (s *ScheduleService) Create(ctx context.Context, counselorID uuid.UUID, req *dto.CreateScheduleRequest) (*entity.CounselorSchedule, *errors.AppError) {
	if _, ok := DayNames[req.DayID]; !ok {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "dayId must be between 1 and 7", nil)
	}

	schedule := &entity.CounselorSchedule{
		CounselorID: counselorID,
		DayID:       req.DayID,
		Day:         DayName(req.DayID),
		SlotID:      req.SlotID,
		Slot:        req.Slot,
		StatusID:    constants.ScheduleStatusAvailable,
	}

	created, err := s.repo.Create(ctx, schedule)
	if err != nil {
		logger.Error("ScheduleService:Create:Create:Error:", err)
		return nil, errors.NewAppError(errors.ErrCreateFailed, "Failed to create schedule", err)
	}
	return created, nil
}

func (s *ScheduleService) UpdateStatus(ctx context.Context, counselorID uuid.UUID, scheduleID uuid.UUID, isAdmin bool, req *dto.UpdateScheduleStatusRequest) *errors.AppError {
	schedule, appErr := s.getOwned(ctx, counselorID, scheduleID, isAdmin)
	if appErr != nil {
		return appErr
	}

	if err := s.repo.UpdateStatus(ctx, schedule.ID, req.StatusID); err != nil {
		logger.Error("ScheduleService:UpdateStatus:UpdateStatus:Error:", err)
		return errors.NewAppError(errors.ErrUpdateFailed, "Failed to update schedule status", err)
	}
	return nil
}

func (s *ScheduleService) Delete(ctx context.Context, counselorID uuid.UUID, scheduleID uuid.UUID, isAdmin bool) *errors.AppError {
	schedule, appErr := s.getOwned(ctx, counselorID, scheduleID, isAdmin)
	if appErr != nil {
		return appErr
	}

	if schedule.StatusID == constants.ScheduleStatusBooked {
		return errors.NewAppError(errors.ErrInvalidTransition, "Cannot delete a booked slot", nil)
	}

	if err := s.repo.Delete(ctx, schedule.ID); err != nil {
		logger.Error("ScheduleService:Delete:Delete:Error:", err)
		return errors.NewAppError(errors.ErrDeleteFailed, "Failed to delete schedule", err)
	}
	return nil
}

func (s *ScheduleService) getOwned(ctx context.Context, counselorID uuid.UUID, scheduleID uuid.UUID, isAdmin bool) (*entity.ScheduleWithCounselor, *errors.AppError) {
	schedule, err := s.repo.GetByID(ctx, scheduleID)
	if err != nil {
		logger.Error("ScheduleService:getOwned:GetByID:Error:", err)
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load schedule", err)
	}
	if schedule == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Schedule not found", nil)
	}
	if !isAdmin && schedule.CounselorID != counselorID {
		return nil, errors.NewAppError(errors.ErrForbidden, "Schedule belongs to another counselor", nil)
	}
	return schedule, nil
}

func toScheduleEntry(sch entity.ScheduleWithCounselor) dto.ScheduleEntry {
	return dto.ScheduleEntry{
		ScheduleID:     sch.ID,
		CounselorEmail: sch.CounselorEmail,
		CounselorName:  sch.CounselorName,
		Day:            sch.Day,
		DayID:          sch.DayID,
		Slot:           sch.Slot,
		SlotID:         sch.SlotID,
		StatusID:       sch.StatusID,
	}
}

func toGridEntries(schedules []entity.ScheduleWithCounselor) []GridEntry {
	entries := make([]GridEntry, 0, len(schedules))
	for _, sch := range schedules {
		entries = append(entries, GridEntry{
			ID:             sch.ID.String(),
			DayID:          sch.DayID,
			Day:            sch.Day,
			SlotID:         sch.SlotID,
			Slot:           sch.Slot,
			StatusID:       sch.StatusID,
			CounselorName:  sch.CounselorName,
			CounselorEmail: sch.CounselorEmail,
		})
	}
	return entries
}
