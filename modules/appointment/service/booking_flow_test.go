package service

import (
	"context"
	"testing"
	"time"

	"admission-api/core/cache"
	"admission-api/core/config"
	"admission-api/core/constants"
	coreentity "admission-api/core/entity"
	"admission-api/core/errors"
	"admission-api/core/params"
	"admission-api/core/tasks"
	"admission-api/modules/appointment/dto"
	"admission-api/modules/appointment/entity"
	"admission-api/modules/appointment/repository"
	paymentdto "admission-api/modules/payment/dto"
	scheduleentity "admission-api/modules/schedule/entity"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- in-memory fakes ----

type fakeScheduleRepo struct {
	schedules map[uuid.UUID]*scheduleentity.ScheduleWithCounselor
}

func (f *fakeScheduleRepo) SelectAll(context.Context) ([]scheduleentity.ScheduleWithCounselor, error) {
	return nil, nil
}
func (f *fakeScheduleRepo) SelectByCounselorSlug(context.Context, string) ([]scheduleentity.ScheduleWithCounselor, error) {
	return nil, nil
}
func (f *fakeScheduleRepo) SelectPaged(context.Context, *params.QueryParams) ([]scheduleentity.ScheduleWithCounselor, int, error) {
	return nil, 0, nil
}
func (f *fakeScheduleRepo) GetByID(_ context.Context, id uuid.UUID) (*scheduleentity.ScheduleWithCounselor, error) {
	sch, ok := f.schedules[id]
	if !ok {
		return nil, nil
	}
	copied := *sch
	return &copied, nil
}
func (f *fakeScheduleRepo) Create(_ context.Context, sch *scheduleentity.CounselorSchedule) (*scheduleentity.CounselorSchedule, error) {
	return sch, nil
}
func (f *fakeScheduleRepo) UpdateStatus(_ context.Context, id uuid.UUID, statusID int) error {
	if sch, ok := f.schedules[id]; ok {
		sch.StatusID = statusID
	}
	return nil
}
func (f *fakeScheduleRepo) MarkBooked(_ context.Context, id uuid.UUID) (bool, error) {
	sch, ok := f.schedules[id]
	if !ok || sch.StatusID != constants.ScheduleStatusAvailable {
		return false, nil
	}
	sch.StatusID = constants.ScheduleStatusBooked
	return true, nil
}
func (f *fakeScheduleRepo) Reopen(ctx context.Context, id uuid.UUID) error {
	return f.UpdateStatus(ctx, id, constants.ScheduleStatusAvailable)
}
func (f *fakeScheduleRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.schedules, id)
	return nil
}

type fakeAppointmentRepo struct {
	appts map[uuid.UUID]*entity.Appointment
}

func (f *fakeAppointmentRepo) Create(_ context.Context, appt *entity.Appointment) (*entity.Appointment, error) {
	created := *appt
	created.ID = uuid.New()
	f.appts[created.ID] = &created
	return &created, nil
}
func (f *fakeAppointmentRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.AppointmentWithDetails, error) {
	appt, ok := f.appts[id]
	if !ok {
		return nil, nil
	}
	return &entity.AppointmentWithDetails{Appointment: *appt, Day: "Thứ 2", Slot: "8:00 - 9:00"}, nil
}
func (f *fakeAppointmentRepo) GetByOrderCode(_ context.Context, orderCode int64) (*entity.Appointment, error) {
	for _, appt := range f.appts {
		if appt.OrderCode.Valid && appt.OrderCode.Int64 == orderCode {
			return appt, nil
		}
	}
	return nil, nil
}
func (f *fakeAppointmentRepo) SetPaymentLink(_ context.Context, id uuid.UUID, orderCode int64, checkoutURL string) error {
	appt := f.appts[id]
	appt.OrderCode.Int64 = orderCode
	appt.OrderCode.Valid = true
	appt.CheckoutURL = checkoutURL
	return nil
}
func (f *fakeAppointmentRepo) TransitionStatus(_ context.Context, id uuid.UUID, from, to int) (bool, error) {
	appt, ok := f.appts[id]
	if !ok || appt.StatusID != from {
		return false, nil
	}
	appt.StatusID = to
	return true, nil
}
func (f *fakeAppointmentRepo) SelectPaged(context.Context, repository.ListFilter, *params.QueryParams) ([]entity.AppointmentWithDetails, int, error) {
	return nil, 0, nil
}
func (f *fakeAppointmentRepo) CountMonthly(context.Context, int) ([]dto.MonthlyCount, error) {
	return nil, nil
}
func (f *fakeAppointmentRepo) CountByStatus(context.Context) ([]dto.StatusCount, error) {
	return nil, nil
}
func (f *fakeAppointmentRepo) CountPaid(context.Context) (int, error) { return 0, nil }

type fakePaymentClient struct {
	createErr  *errors.AppError
	linkStatus string
	calls      int
}

func (f *fakePaymentClient) CreatePaymentLink(_ context.Context, req *paymentdto.CreatePaymentLinkRequest) (*paymentdto.CreatePaymentLinkResponse, *errors.AppError) {
	f.calls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &paymentdto.CreatePaymentLinkResponse{
		CheckoutURL: "https://pay.example.com/link",
		OrderCode:   req.OrderCode,
	}, nil
}
func (f *fakePaymentClient) GetPaymentLink(_ context.Context, orderCode int64) (*paymentdto.PaymentLinkInfo, *errors.AppError) {
	status := f.linkStatus
	if status == "" {
		status = paymentdto.LinkStatusPaid
	}
	return &paymentdto.PaymentLinkInfo{OrderCode: orderCode, Status: status}, nil
}

type recordedTask struct {
	notifications []tasks.NotificationDeliverPayload
	expiries      []uuid.UUID
}

func (r *recordedTask) EnqueueNotification(_ context.Context, payload tasks.NotificationDeliverPayload) {
	r.notifications = append(r.notifications, payload)
}
func (r *recordedTask) ScheduleAppointmentExpiry(_ context.Context, id uuid.UUID, _ time.Duration) {
	r.expiries = append(r.expiries, id)
}

// ---- fixture ----

type flowFixture struct {
	svc       *AppointmentService
	schedRepo *fakeScheduleRepo
	apptRepo  *fakeAppointmentRepo
	payment   *fakePaymentClient
	tasks     *recordedTask
	cache     *cache.Cache
	mr        *miniredis.Miniredis

	studentID  uuid.UUID
	scheduleID uuid.UUID
}

func newFlowFixture(t *testing.T) *flowFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	c := cache.NewCacheFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	scheduleID := uuid.New()
	counselorID := uuid.New()
	schedRepo := &fakeScheduleRepo{schedules: map[uuid.UUID]*scheduleentity.ScheduleWithCounselor{
		scheduleID: {
			CounselorSchedule: scheduleentity.CounselorSchedule{
				BaseEntity:  coreentity.BaseEntity{ID: scheduleID},
				CounselorID: counselorID,
				DayID:       1,
				Day:         "Thứ 2",
				SlotID:      1,
				Slot:        "8:00 - 9:00",
				StatusID:    constants.ScheduleStatusAvailable,
			},
			CounselorName:  "Cô Lan",
			CounselorEmail: "lan@example.edu.vn",
		},
	}}
	apptRepo := &fakeAppointmentRepo{appts: map[uuid.UUID]*entity.Appointment{}}
	payment := &fakePaymentClient{}
	recorder := &recordedTask{}

	svc := NewAppointmentService(apptRepo, schedRepo, c, payment, recorder, config.PaymentConfig{
		ReturnURL: "https://portal.example.edu.vn/payment/return",
		CancelURL: "https://portal.example.edu.vn/payment/cancel",
	})

	return &flowFixture{
		svc:        svc,
		schedRepo:  schedRepo,
		apptRepo:   apptRepo,
		payment:    payment,
		tasks:      recorder,
		cache:      c,
		mr:         mr,
		studentID:  uuid.New(),
		scheduleID: scheduleID,
	}
}

// ---- tests ----

func TestCreateAppointment_HappyPath(t *testing.T) {
	f := newFlowFixture(t)

	result, appErr := f.svc.CreateAppointment(context.Background(), f.studentID, &dto.CreateAppointmentRequest{
		ScheduleID: f.scheduleID,
		Content:    "Tư vấn ngành CNTT",
	})

	require.Nil(t, appErr)
	assert.Equal(t, "https://pay.example.com/link", result.CheckoutURL)
	assert.NotEqual(t, uuid.Nil, result.AppointmentID)

	// Slot is held, appointment is pending with the link attached.
	assert.Equal(t, constants.ScheduleStatusBooked, f.schedRepo.schedules[f.scheduleID].StatusID)
	appt := f.apptRepo.appts[result.AppointmentID]
	require.NotNil(t, appt)
	assert.Equal(t, constants.AppointmentStatusPending, appt.StatusID)
	assert.True(t, appt.OrderCode.Valid)

	// Expiry sweep queued, session stored, guard released.
	assert.Equal(t, []uuid.UUID{result.AppointmentID}, f.tasks.expiries)
	var session dto.BookingSession
	require.NoError(t, f.cache.GetBookingSession(context.Background(), result.AppointmentID.String(), &session))
	assert.Equal(t, f.scheduleID, session.ScheduleID)
	assert.False(t, f.mr.Exists(constants.RedisKeyBookingGuard+f.studentID.String()))
}

func TestCreateAppointment_SlotNotAvailable(t *testing.T) {
	f := newFlowFixture(t)
	f.schedRepo.schedules[f.scheduleID].StatusID = constants.ScheduleStatusBooked

	_, appErr := f.svc.CreateAppointment(context.Background(), f.studentID, &dto.CreateAppointmentRequest{
		ScheduleID: f.scheduleID,
	})

	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrSlotNotAvailable, appErr.Code)
	assert.Zero(t, f.payment.calls)
}

func TestCreateAppointment_UnknownSchedule(t *testing.T) {
	f := newFlowFixture(t)

	_, appErr := f.svc.CreateAppointment(context.Background(), f.studentID, &dto.CreateAppointmentRequest{
		ScheduleID: uuid.New(),
	})

	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrNotFound, appErr.Code)
}

func TestCreateAppointment_GuardBlocksConcurrentSubmission(t *testing.T) {
	f := newFlowFixture(t)

	acquired, err := f.cache.AcquireBookingGuard(context.Background(), f.studentID.String())
	require.NoError(t, err)
	require.True(t, acquired)

	_, appErr := f.svc.CreateAppointment(context.Background(), f.studentID, &dto.CreateAppointmentRequest{
		ScheduleID: f.scheduleID,
	})

	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrBookingInFlight, appErr.Code)
	// The slot is untouched by the rejected attempt.
	assert.Equal(t, constants.ScheduleStatusAvailable, f.schedRepo.schedules[f.scheduleID].StatusID)
}

func TestCreateAppointment_PaymentFailureReopensSlot(t *testing.T) {
	f := newFlowFixture(t)
	f.payment.createErr = errors.NewAppError(errors.ErrUpstreamNetwork, "provider down", nil)

	_, appErr := f.svc.CreateAppointment(context.Background(), f.studentID, &dto.CreateAppointmentRequest{
		ScheduleID: f.scheduleID,
	})

	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrUpstreamNetwork, appErr.Code)
	assert.Equal(t, constants.ScheduleStatusAvailable, f.schedRepo.schedules[f.scheduleID].StatusID)
	// The half-built appointment is cancelled, not left pending.
	for _, appt := range f.apptRepo.appts {
		assert.Equal(t, constants.AppointmentStatusCancelled, appt.StatusID)
	}
	// Guard is released so the user can retry at once.
	assert.False(t, f.mr.Exists(constants.RedisKeyBookingGuard+f.studentID.String()))
}

func TestCreateAppointment_CounselorCannotBookOwnSlot(t *testing.T) {
	f := newFlowFixture(t)
	counselorID := f.schedRepo.schedules[f.scheduleID].CounselorID

	_, appErr := f.svc.CreateAppointment(context.Background(), counselorID, &dto.CreateAppointmentRequest{
		ScheduleID: f.scheduleID,
	})

	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrInvalidInput, appErr.Code)
}

func createPending(t *testing.T, f *flowFixture) uuid.UUID {
	t.Helper()
	result, appErr := f.svc.CreateAppointment(context.Background(), f.studentID, &dto.CreateAppointmentRequest{
		ScheduleID: f.scheduleID,
		Content:    "Tư vấn học bổng",
	})
	require.Nil(t, appErr)
	return result.AppointmentID
}

func TestHandlePaymentCallback_Success(t *testing.T) {
	f := newFlowFixture(t)
	apptID := createPending(t, f)

	appt, appErr := f.svc.HandlePaymentCallback(context.Background(), f.studentID, apptID,
		&dto.PaymentCallbackRequest{Code: "00"})

	require.Nil(t, appErr)
	assert.Equal(t, constants.AppointmentStatusPaid, appt.StatusID)
	// Session is gone, both parties got a notification.
	var session dto.BookingSession
	err := f.cache.GetBookingSession(context.Background(), apptID.String(), &session)
	assert.Equal(t, cache.ErrSessionNotFound, err)
	assert.Len(t, f.tasks.notifications, 2)
}

func TestHandlePaymentCallback_Cancel(t *testing.T) {
	f := newFlowFixture(t)
	apptID := createPending(t, f)

	appt, appErr := f.svc.HandlePaymentCallback(context.Background(), f.studentID, apptID,
		&dto.PaymentCallbackRequest{Code: "00", Cancel: true})

	require.Nil(t, appErr)
	assert.Equal(t, constants.AppointmentStatusCancelled, appt.StatusID)
	assert.Equal(t, constants.ScheduleStatusAvailable, f.schedRepo.schedules[f.scheduleID].StatusID)
}

func TestHandlePaymentCallback_ProviderNotPaid(t *testing.T) {
	f := newFlowFixture(t)
	apptID := createPending(t, f)
	f.payment.linkStatus = paymentdto.LinkStatusPending

	_, appErr := f.svc.HandlePaymentCallback(context.Background(), f.studentID, apptID,
		&dto.PaymentCallbackRequest{Code: "00"})

	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrInvalidTransition, appErr.Code)
	// Still pending; the sweep will settle it if the payer never returns.
	assert.Equal(t, constants.AppointmentStatusPending, f.apptRepo.appts[apptID].StatusID)
}

func TestHandlePaymentCallback_IdempotentOnPaid(t *testing.T) {
	f := newFlowFixture(t)
	apptID := createPending(t, f)

	_, appErr := f.svc.HandlePaymentCallback(context.Background(), f.studentID, apptID,
		&dto.PaymentCallbackRequest{Code: "00"})
	require.Nil(t, appErr)

	appt, appErr := f.svc.HandlePaymentCallback(context.Background(), f.studentID, apptID,
		&dto.PaymentCallbackRequest{Code: "00"})
	require.Nil(t, appErr)
	assert.Equal(t, constants.AppointmentStatusPaid, appt.StatusID)
}

func TestHandlePaymentCallback_WrongUser(t *testing.T) {
	f := newFlowFixture(t)
	apptID := createPending(t, f)

	_, appErr := f.svc.HandlePaymentCallback(context.Background(), uuid.New(), apptID,
		&dto.PaymentCallbackRequest{Code: "00"})

	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrForbidden, appErr.Code)
}

func TestHandlePaymentCallback_SessionExpiredFallsBackToRow(t *testing.T) {
	f := newFlowFixture(t)
	apptID := createPending(t, f)
	require.NoError(t, f.cache.DeleteBookingSession(context.Background(), apptID.String()))

	appt, appErr := f.svc.HandlePaymentCallback(context.Background(), f.studentID, apptID,
		&dto.PaymentCallbackRequest{Code: "00"})

	require.Nil(t, appErr)
	assert.Equal(t, constants.AppointmentStatusPaid, appt.StatusID)
}

func TestExpirePendingAppointment(t *testing.T) {
	f := newFlowFixture(t)
	apptID := createPending(t, f)

	require.NoError(t, f.svc.ExpirePendingAppointment(context.Background(), apptID))

	assert.Equal(t, constants.AppointmentStatusCancelled, f.apptRepo.appts[apptID].StatusID)
	assert.Equal(t, constants.ScheduleStatusAvailable, f.schedRepo.schedules[f.scheduleID].StatusID)
}

func TestExpirePendingAppointment_PaidIsLeftAlone(t *testing.T) {
	f := newFlowFixture(t)
	apptID := createPending(t, f)
	_, appErr := f.svc.HandlePaymentCallback(context.Background(), f.studentID, apptID,
		&dto.PaymentCallbackRequest{Code: "00"})
	require.Nil(t, appErr)

	require.NoError(t, f.svc.ExpirePendingAppointment(context.Background(), apptID))

	assert.Equal(t, constants.AppointmentStatusPaid, f.apptRepo.appts[apptID].StatusID)
}

func TestMarkCompleted(t *testing.T) {
	f := newFlowFixture(t)
	apptID := createPending(t, f)
	counselorID := f.schedRepo.schedules[f.scheduleID].CounselorID

	// Pending appointments cannot be completed.
	appErr := f.svc.MarkCompleted(context.Background(), counselorID, constants.RoleConsultant, apptID)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrInvalidTransition, appErr.Code)

	_, appErr = f.svc.HandlePaymentCallback(context.Background(), f.studentID, apptID,
		&dto.PaymentCallbackRequest{Code: "00"})
	require.Nil(t, appErr)

	// Another consultant cannot complete someone else's appointment.
	appErr = f.svc.MarkCompleted(context.Background(), uuid.New(), constants.RoleConsultant, apptID)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrForbidden, appErr.Code)

	require.Nil(t, f.svc.MarkCompleted(context.Background(), counselorID, constants.RoleConsultant, apptID))
	assert.Equal(t, constants.AppointmentStatusCompleted, f.apptRepo.appts[apptID].StatusID)
}
