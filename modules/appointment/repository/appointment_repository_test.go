package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"admission-api/core/constants"
	"admission-api/core/database"
	"admission-api/modules/appointment/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAppointmentRepoMock(t *testing.T) (*AppointmentRepository, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	return NewAppointmentRepository(database.NewWithSQLx(sqlx.NewDb(mockDB, "sqlmock"))), mock
}

var appointmentColumns = []string{
	"id", "schedule_id", "counselor_id", "user_id", "status_id", "content",
	"order_code", "checkout_url", "created_at", "updated_at",
}

// A freshly inserted appointment has no order code yet and an empty checkout
// URL; the returned row must scan cleanly into the entity.
func TestCreate_ScansRowWithoutPaymentLink(t *testing.T) {
	repo, mock := newAppointmentRepoMock(t)
	id := uuid.New()
	scheduleID, counselorID, userID := uuid.New(), uuid.New(), uuid.New()
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO appointments")).
		WithArgs(scheduleID, counselorID, userID, constants.AppointmentStatusPending, "Tư vấn chọn ngành").
		WillReturnRows(sqlmock.NewRows(appointmentColumns).
			AddRow(id, scheduleID, counselorID, userID, constants.AppointmentStatusPending,
				"Tư vấn chọn ngành", nil, "", now, now))

	created, err := repo.Create(context.Background(), &entity.Appointment{
		ScheduleID:  scheduleID,
		CounselorID: counselorID,
		UserID:      userID,
		StatusID:    constants.AppointmentStatusPending,
		Content:     "Tư vấn chọn ngành",
	})
	require.NoError(t, err)
	assert.Equal(t, id, created.ID)
	assert.False(t, created.OrderCode.Valid)
	assert.Empty(t, created.CheckoutURL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionStatus_MovesRowInSourceStatus(t *testing.T) {
	repo, mock := newAppointmentRepoMock(t)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE appointments")).
		WithArgs(id, constants.AppointmentStatusPending, constants.AppointmentStatusPaid).
		WillReturnResult(sqlmock.NewResult(0, 1))

	moved, err := repo.TransitionStatus(context.Background(), id,
		constants.AppointmentStatusPending, constants.AppointmentStatusPaid)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionStatus_StaleSourceReportsFalse(t *testing.T) {
	repo, mock := newAppointmentRepoMock(t)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE appointments")).
		WithArgs(id, constants.AppointmentStatusPending, constants.AppointmentStatusCancelled).
		WillReturnResult(sqlmock.NewResult(0, 0))

	moved, err := repo.TransitionStatus(context.Background(), id,
		constants.AppointmentStatusPending, constants.AppointmentStatusCancelled)
	require.NoError(t, err)
	assert.False(t, moved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetPaymentLink_WritesOrderCodeAndURL(t *testing.T) {
	repo, mock := newAppointmentRepoMock(t)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE appointments")).
		WithArgs(id, int64(240815001), "https://pay.example.vn/web/abc123").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetPaymentLink(context.Background(), id, 240815001, "https://pay.example.vn/web/abc123")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
