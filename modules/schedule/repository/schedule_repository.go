package repository

import (
	"context"
	"database/sql"
	"fmt"

	"admission-api/core/constants"
	"admission-api/core/database"
	"admission-api/core/logger"
	"admission-api/core/params"
	"admission-api/modules/schedule/entity"

	"github.com/google/uuid"
)

// ScheduleRepository handles counselor_schedules database operations
type ScheduleRepository struct {
	DB database.Database
}

func NewScheduleRepository(db database.Database) *ScheduleRepository {
	return &ScheduleRepository{DB: db}
}

// ScheduleRepositoryInterface defines the repository contract
type ScheduleRepositoryInterface interface {
	SelectAll(ctx context.Context) ([]entity.ScheduleWithCounselor, error)
	SelectByCounselorSlug(ctx context.Context, slug string) ([]entity.ScheduleWithCounselor, error)
	SelectPaged(ctx context.Context, qp *params.QueryParams) ([]entity.ScheduleWithCounselor, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.ScheduleWithCounselor, error)
	Create(ctx context.Context, schedule *entity.CounselorSchedule) (*entity.CounselorSchedule, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, statusID int) error
	// MarkBooked flips an available slot to booked; reports false when the
	// slot was already taken (the optimistic guard of the booking flow).
	MarkBooked(ctx context.Context, id uuid.UUID) (bool, error)
	Reopen(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

const selectColumns = `
	s.id, s.counselor_id, s.day_id, s.day, s.slot_id, s.slot, s.status_id,
	s.created_at, s.updated_at,
	u.full_name AS counselor_name, u.email AS counselor_email, u.slug AS counselor_slug
`

func (r *ScheduleRepository) SelectAll(ctx context.Context) ([]entity.ScheduleWithCounselor, error) {
	query := `
		SELECT ` + selectColumns + `
		FROM counselor_schedules s
		JOIN users u ON u.id = s.counselor_id
		ORDER BY s.day_id, s.slot_id, s.created_at
	`

	schedules := []entity.ScheduleWithCounselor{}
	if err := r.DB.SelectContext(ctx, &schedules, query); err != nil {
		logger.Error("ScheduleRepository:SelectAll", err)
		return nil, err
	}
	return schedules, nil
}

func (r *ScheduleRepository) SelectByCounselorSlug(ctx context.Context, slug string) ([]entity.ScheduleWithCounselor, error) {
	query := `
		SELECT ` + selectColumns + `
		FROM counselor_schedules s
		JOIN users u ON u.id = s.counselor_id
		WHERE u.slug = $1
		ORDER BY s.day_id, s.slot_id
	`

	schedules := []entity.ScheduleWithCounselor{}
	if err := r.DB.SelectContext(ctx, &schedules, query, slug); err != nil {
		logger.Error("ScheduleRepository:SelectByCounselorSlug", err)
		return nil, err
	}
	return schedules, nil
}

func (r *ScheduleRepository) SelectPaged(ctx context.Context, qp *params.QueryParams) ([]entity.ScheduleWithCounselor, int, error) {
	where := ""
	args := []interface{}{}
	if qp.Search != "" {
		where = `WHERE u.full_name ILIKE $1 OR u.email ILIKE $1`
		args = append(args, "%"+qp.Search+"%")
	}

	countQuery := `
		SELECT COUNT(*)
		FROM counselor_schedules s
		JOIN users u ON u.id = s.counselor_id ` + where

	var total int
	if err := r.DB.GetContext(ctx, &total, countQuery, args...); err != nil {
		logger.Error("ScheduleRepository:SelectPaged:Count", err)
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM counselor_schedules s
		JOIN users u ON u.id = s.counselor_id %s
		ORDER BY s.day_id, s.slot_id, s.created_at
		LIMIT $%d OFFSET $%d`, selectColumns, where, len(args)+1, len(args)+2)
	args = append(args, qp.PageSize, qp.Offset())

	schedules := []entity.ScheduleWithCounselor{}
	if err := r.DB.SelectContext(ctx, &schedules, query, args...); err != nil {
		logger.Error("ScheduleRepository:SelectPaged", err)
		return nil, 0, err
	}
	return schedules, total, nil
}

func (r *ScheduleRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.ScheduleWithCounselor, error) {
	query := `
		SELECT ` + selectColumns + `
		FROM counselor_schedules s
		JOIN users u ON u.id = s.counselor_id
		WHERE s.id = $1
	`

	var schedule entity.ScheduleWithCounselor
	if err := r.DB.GetContext(ctx, &schedule, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("ScheduleRepository:GetByID", err)
		return nil, err
	}
	return &schedule, nil
}

func (r *ScheduleRepository) Create(ctx context.Context, schedule *entity.CounselorSchedule) (*entity.CounselorSchedule, error) {
	query := `
		INSERT INTO counselor_schedules (counselor_id, day_id, day, slot_id, slot, status_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, counselor_id, day_id, day, slot_id, slot, status_id, created_at, updated_at
	`

	var created entity.CounselorSchedule
	err := r.DB.GetContext(ctx, &created, query,
		schedule.CounselorID, schedule.DayID, schedule.Day,
		schedule.SlotID, schedule.Slot, schedule.StatusID)
	if err != nil {
		logger.Error("ScheduleRepository:Create", err)
		return nil, err
	}
	return &created, nil
}

func (r *ScheduleRepository) UpdateStatus(ctx context.Context, id uuid.UUID, statusID int) error {
	query := `UPDATE counselor_schedules SET status_id = $2, updated_at = NOW() WHERE id = $1`
	if _, err := r.DB.ExecContext(ctx, query, id, statusID); err != nil {
		logger.Error("ScheduleRepository:UpdateStatus", err)
		return err
	}
	return nil
}

func (r *ScheduleRepository) MarkBooked(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE counselor_schedules
		SET status_id = $2, updated_at = NOW()
		WHERE id = $1 AND status_id = $3
	`
	result, err := r.DB.ExecContext(ctx, query, id, constants.ScheduleStatusBooked, constants.ScheduleStatusAvailable)
	if err != nil {
		logger.Error("ScheduleRepository:MarkBooked", err)
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		logger.Error("ScheduleRepository:MarkBooked:RowsAffected", err)
		return false, err
	}
	return rows == 1, nil
}

func (r *ScheduleRepository) Reopen(ctx context.Context, id uuid.UUID) error {
	return r.UpdateStatus(ctx, id, constants.ScheduleStatusAvailable)
}

func (r *ScheduleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM counselor_schedules WHERE id = $1`
	if _, err := r.DB.ExecContext(ctx, query, id); err != nil {
		logger.Error("ScheduleRepository:Delete", err)
		return err
	}
	return nil
}
