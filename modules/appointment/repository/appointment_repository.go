package repository

import (
	"context"
	"database/sql"
	"fmt"

	"admission-api/core/constants"
	"admission-api/core/database"
	"admission-api/core/logger"
	"admission-api/core/params"
	"admission-api/modules/appointment/dto"
	"admission-api/modules/appointment/entity"

	"github.com/google/uuid"
)

// AppointmentRepository handles appointments database operations
type AppointmentRepository struct {
	DB database.Database
}

func NewAppointmentRepository(db database.Database) *AppointmentRepository {
	return &AppointmentRepository{DB: db}
}

// AppointmentRepositoryInterface defines the repository contract
type AppointmentRepositoryInterface interface {
	Create(ctx context.Context, appt *entity.Appointment) (*entity.Appointment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.AppointmentWithDetails, error)
	GetByOrderCode(ctx context.Context, orderCode int64) (*entity.Appointment, error)
	SetPaymentLink(ctx context.Context, id uuid.UUID, orderCode int64, checkoutURL string) error
	// TransitionStatus moves the appointment from one status to another and
	// reports whether the row was in the expected source status.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to int) (bool, error)
	SelectPaged(ctx context.Context, filter ListFilter, qp *params.QueryParams) ([]entity.AppointmentWithDetails, int, error)
	CountMonthly(ctx context.Context, months int) ([]dto.MonthlyCount, error)
	CountByStatus(ctx context.Context) ([]dto.StatusCount, error)
	CountPaid(ctx context.Context) (int, error)
}

// ListFilter restricts a listing to one side of the appointment.
type ListFilter struct {
	UserID      uuid.UUID
	CounselorID uuid.UUID
	StatusID    int
}

const detailColumns = `
	a.id, a.schedule_id, a.counselor_id, a.user_id, a.status_id, a.content,
	a.order_code, a.checkout_url, a.created_at, a.updated_at,
	s.day_id, s.day, s.slot_id, s.slot,
	c.full_name AS counselor_name, c.email AS counselor_email,
	u.full_name AS user_name, u.email AS user_email
`

const detailJoins = `
	FROM appointments a
	JOIN counselor_schedules s ON s.id = a.schedule_id
	JOIN users c ON c.id = a.counselor_id
	JOIN users u ON u.id = a.user_id
`

func (r *AppointmentRepository) Create(ctx context.Context, appt *entity.Appointment) (*entity.Appointment, error) {
	query := `
		INSERT INTO appointments (schedule_id, counselor_id, user_id, status_id, content)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, schedule_id, counselor_id, user_id, status_id, content,
		          order_code, checkout_url, created_at, updated_at
	`

	var created entity.Appointment
	err := r.DB.GetContext(ctx, &created, query,
		appt.ScheduleID, appt.CounselorID, appt.UserID, appt.StatusID, appt.Content)
	if err != nil {
		logger.Error("AppointmentRepository:Create", err)
		return nil, err
	}
	return &created, nil
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.AppointmentWithDetails, error) {
	query := `SELECT ` + detailColumns + detailJoins + ` WHERE a.id = $1`

	var appt entity.AppointmentWithDetails
	if err := r.DB.GetContext(ctx, &appt, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("AppointmentRepository:GetByID", err)
		return nil, err
	}
	return &appt, nil
}

func (r *AppointmentRepository) GetByOrderCode(ctx context.Context, orderCode int64) (*entity.Appointment, error) {
	query := `
		SELECT id, schedule_id, counselor_id, user_id, status_id, content,
		       order_code, checkout_url, created_at, updated_at
		FROM appointments WHERE order_code = $1
	`

	var appt entity.Appointment
	if err := r.DB.GetContext(ctx, &appt, query, orderCode); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("AppointmentRepository:GetByOrderCode", err)
		return nil, err
	}
	return &appt, nil
}

func (r *AppointmentRepository) SetPaymentLink(ctx context.Context, id uuid.UUID, orderCode int64, checkoutURL string) error {
	query := `
		UPDATE appointments
		SET order_code = $2, checkout_url = $3, updated_at = NOW()
		WHERE id = $1
	`
	if _, err := r.DB.ExecContext(ctx, query, id, orderCode, checkoutURL); err != nil {
		logger.Error("AppointmentRepository:SetPaymentLink", err)
		return err
	}
	return nil
}

func (r *AppointmentRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to int) (bool, error) {
	query := `
		UPDATE appointments
		SET status_id = $3, updated_at = NOW()
		WHERE id = $1 AND status_id = $2
	`
	result, err := r.DB.ExecContext(ctx, query, id, from, to)
	if err != nil {
		logger.Error("AppointmentRepository:TransitionStatus", err)
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		logger.Error("AppointmentRepository:TransitionStatus:RowsAffected", err)
		return false, err
	}
	return rows == 1, nil
}

func (r *AppointmentRepository) SelectPaged(ctx context.Context, filter ListFilter, qp *params.QueryParams) ([]entity.AppointmentWithDetails, int, error) {
	where := "WHERE 1=1"
	args := []interface{}{}

	if filter.UserID != uuid.Nil {
		args = append(args, filter.UserID)
		where += fmt.Sprintf(" AND a.user_id = $%d", len(args))
	}
	if filter.CounselorID != uuid.Nil {
		args = append(args, filter.CounselorID)
		where += fmt.Sprintf(" AND a.counselor_id = $%d", len(args))
	}
	if filter.StatusID != 0 {
		args = append(args, filter.StatusID)
		where += fmt.Sprintf(" AND a.status_id = $%d", len(args))
	}
	if qp.Search != "" {
		args = append(args, "%"+qp.Search+"%")
		where += fmt.Sprintf(" AND (c.full_name ILIKE $%d OR u.full_name ILIKE $%d OR u.email ILIKE $%d)",
			len(args), len(args), len(args))
	}

	var total int
	countQuery := `SELECT COUNT(*) ` + detailJoins + where
	if err := r.DB.GetContext(ctx, &total, countQuery, args...); err != nil {
		logger.Error("AppointmentRepository:SelectPaged:Count", err)
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s %s %s
		ORDER BY a.created_at DESC
		LIMIT $%d OFFSET $%d`, detailColumns, detailJoins, where, len(args)+1, len(args)+2)
	args = append(args, qp.PageSize, qp.Offset())

	appts := []entity.AppointmentWithDetails{}
	if err := r.DB.SelectContext(ctx, &appts, query, args...); err != nil {
		logger.Error("AppointmentRepository:SelectPaged", err)
		return nil, 0, err
	}
	return appts, total, nil
}

func (r *AppointmentRepository) CountMonthly(ctx context.Context, months int) ([]dto.MonthlyCount, error) {
	query := `
		SELECT to_char(date_trunc('month', created_at), 'YYYY-MM') AS month,
		       COUNT(*) AS total
		FROM appointments
		WHERE created_at >= date_trunc('month', NOW()) - ($1 - 1) * INTERVAL '1 month'
		GROUP BY 1
		ORDER BY 1
	`

	counts := []dto.MonthlyCount{}
	if err := r.DB.SelectContext(ctx, &counts, query, months); err != nil {
		logger.Error("AppointmentRepository:CountMonthly", err)
		return nil, err
	}
	return counts, nil
}

func (r *AppointmentRepository) CountByStatus(ctx context.Context) ([]dto.StatusCount, error) {
	query := `
		SELECT status_id, COUNT(*) AS total
		FROM appointments
		GROUP BY status_id
		ORDER BY status_id
	`

	counts := []dto.StatusCount{}
	if err := r.DB.SelectContext(ctx, &counts, query); err != nil {
		logger.Error("AppointmentRepository:CountByStatus", err)
		return nil, err
	}
	return counts, nil
}

func (r *AppointmentRepository) CountPaid(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM appointments WHERE status_id IN ($1, $2)`

	var total int
	err := r.DB.GetContext(ctx, &total, query,
		constants.AppointmentStatusPaid, constants.AppointmentStatusCompleted)
	if err != nil {
		logger.Error("AppointmentRepository:CountPaid", err)
		return 0, err
	}
	return total, nil
}
