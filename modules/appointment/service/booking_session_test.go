package service

import (
	"context"
	"testing"

	"admission-api/core/constants"
	"admission-api/core/errors"
	"admission-api/modules/appointment/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviewBooking_StoresSelection(t *testing.T) {
	f := newFlowFixture(t)

	selection, appErr := f.svc.PreviewBooking(context.Background(), f.studentID, "sv@example.edu.vn", &dto.PreviewBookingRequest{
		ScheduleID: f.scheduleID,
	})

	require.Nil(t, appErr)
	assert.NotEmpty(t, selection.SessionID)
	assert.Equal(t, f.scheduleID, selection.ScheduleID)
	assert.Equal(t, "Cô Lan", selection.CounselorName)
	assert.Equal(t, "Thứ 2", selection.Day)
	assert.Equal(t, "8:00 - 9:00", selection.Slot)
	assert.Equal(t, f.studentID, selection.StudentID)
	assert.True(t, f.mr.Exists(constants.RedisKeyBookingSession+selection.SessionID))

	// Previewing does not reserve the slot.
	assert.Equal(t, constants.ScheduleStatusAvailable, f.schedRepo.schedules[f.scheduleID].StatusID)
}

func TestPreviewBooking_BookedSlotRejected(t *testing.T) {
	f := newFlowFixture(t)
	f.schedRepo.schedules[f.scheduleID].StatusID = constants.ScheduleStatusBooked

	_, appErr := f.svc.PreviewBooking(context.Background(), f.studentID, "sv@example.edu.vn", &dto.PreviewBookingRequest{
		ScheduleID: f.scheduleID,
	})

	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrSlotNotAvailable, appErr.Code)
}

func TestConfirmBookingSession_SubmitsBooking(t *testing.T) {
	f := newFlowFixture(t)

	selection, appErr := f.svc.PreviewBooking(context.Background(), f.studentID, "sv@example.edu.vn", &dto.PreviewBookingRequest{
		ScheduleID: f.scheduleID,
	})
	require.Nil(t, appErr)

	result, appErr := f.svc.ConfirmBookingSession(context.Background(), f.studentID, selection.SessionID, &dto.ConfirmBookingRequest{
		Content: "Tư vấn ngành CNTT",
	})

	require.Nil(t, appErr)
	assert.NotEmpty(t, result.CheckoutURL)
	assert.Equal(t, constants.ScheduleStatusBooked, f.schedRepo.schedules[f.scheduleID].StatusID)
	// The selection is consumed.
	assert.False(t, f.mr.Exists(constants.RedisKeyBookingSession+selection.SessionID))
}

func TestConfirmBookingSession_ExpiredSelection(t *testing.T) {
	f := newFlowFixture(t)

	_, appErr := f.svc.ConfirmBookingSession(context.Background(), f.studentID, "gone", &dto.ConfirmBookingRequest{})

	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrNotFound, appErr.Code)
}

func TestConfirmBookingSession_WrongUser(t *testing.T) {
	f := newFlowFixture(t)

	selection, appErr := f.svc.PreviewBooking(context.Background(), f.studentID, "sv@example.edu.vn", &dto.PreviewBookingRequest{
		ScheduleID: f.scheduleID,
	})
	require.Nil(t, appErr)

	_, appErr = f.svc.ConfirmBookingSession(context.Background(), uuid.New(), selection.SessionID, &dto.ConfirmBookingRequest{})

	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrForbidden, appErr.Code)
	// The slot stays open for its rightful selector.
	assert.Equal(t, constants.ScheduleStatusAvailable, f.schedRepo.schedules[f.scheduleID].StatusID)
}

func TestConfirmBookingSession_SlotTakenMeanwhile(t *testing.T) {
	f := newFlowFixture(t)

	selection, appErr := f.svc.PreviewBooking(context.Background(), f.studentID, "sv@example.edu.vn", &dto.PreviewBookingRequest{
		ScheduleID: f.scheduleID,
	})
	require.Nil(t, appErr)

	// Someone else books the slot between preview and confirm.
	f.schedRepo.schedules[f.scheduleID].StatusID = constants.ScheduleStatusBooked

	_, appErr = f.svc.ConfirmBookingSession(context.Background(), f.studentID, selection.SessionID, &dto.ConfirmBookingRequest{})

	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrSlotNotAvailable, appErr.Code)
}
