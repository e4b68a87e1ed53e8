package service

import (
	"context"
	"testing"

	"admission-api/core/params"
	"admission-api/core/tasks"
	"admission-api/modules/notification/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotificationRepo struct {
	rows []entity.Notification
}

func (f *fakeNotificationRepo) Create(_ context.Context, n *entity.Notification) error {
	stored := *n
	stored.ID = uuid.New()
	f.rows = append(f.rows, stored)
	n.ID = stored.ID
	return nil
}

func (f *fakeNotificationRepo) SelectByUser(_ context.Context, userID uuid.UUID, qp *params.QueryParams) ([]entity.Notification, int, error) {
	out := []entity.Notification{}
	for _, row := range f.rows {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	return out, len(out), nil
}

func (f *fakeNotificationRepo) MarkAsRead(_ context.Context, userID uuid.UUID, ids []uuid.UUID) error {
	wanted := map[uuid.UUID]bool{}
	for _, id := range ids {
		wanted[id] = true
	}
	for i := range f.rows {
		if f.rows[i].UserID == userID && wanted[f.rows[i].ID] {
			f.rows[i].IsRead = true
		}
	}
	return nil
}

func (f *fakeNotificationRepo) MarkAllAsRead(_ context.Context, userID uuid.UUID) error {
	for i := range f.rows {
		if f.rows[i].UserID == userID {
			f.rows[i].IsRead = true
		}
	}
	return nil
}

func (f *fakeNotificationRepo) CountUnread(_ context.Context, userID uuid.UUID) (int, error) {
	count := 0
	for _, row := range f.rows {
		if row.UserID == userID && !row.IsRead {
			count++
		}
	}
	return count, nil
}

func TestDeliver_PersistsNotification(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewNotificationService(repo)
	userID := uuid.New()

	err := svc.Deliver(context.Background(), tasks.NotificationDeliverPayload{
		UserID:  userID,
		Title:   "Lịch hẹn đã được thanh toán",
		Message: "Buổi tư vấn của bạn đã được xác nhận.",
		Type:    "appointment_paid",
		Data:    map[string]any{"appointmentId": uuid.New().String()},
	})

	require.NoError(t, err)
	require.Len(t, repo.rows, 1)
	assert.Equal(t, userID, repo.rows[0].UserID)
	assert.Equal(t, "appointment_paid", repo.rows[0].Type)
	assert.False(t, repo.rows[0].IsRead)
	assert.Contains(t, repo.rows[0].Data, "appointmentId")
}

func TestMarkAsRead_OnlyRequestedIDs(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewNotificationService(repo)
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Deliver(context.Background(), tasks.NotificationDeliverPayload{
			UserID: userID, Title: "t", Message: "m", Type: "ticket_responded",
		}))
	}

	appErr := svc.MarkAsRead(context.Background(), userID, []uuid.UUID{repo.rows[0].ID, repo.rows[2].ID})
	require.Nil(t, appErr)

	assert.True(t, repo.rows[0].IsRead)
	assert.False(t, repo.rows[1].IsRead)
	assert.True(t, repo.rows[2].IsRead)

	count, appErr := svc.CountUnread(context.Background(), userID)
	require.Nil(t, appErr)
	assert.Equal(t, 1, count)
}

func TestMarkAllAsRead(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewNotificationService(repo)
	userID := uuid.New()
	other := uuid.New()

	require.NoError(t, svc.Deliver(context.Background(), tasks.NotificationDeliverPayload{UserID: userID, Title: "a", Message: "m", Type: "x"}))
	require.NoError(t, svc.Deliver(context.Background(), tasks.NotificationDeliverPayload{UserID: other, Title: "b", Message: "m", Type: "x"}))

	require.Nil(t, svc.MarkAllAsRead(context.Background(), userID))

	mine, appErr := svc.CountUnread(context.Background(), userID)
	require.Nil(t, appErr)
	assert.Equal(t, 0, mine)

	theirs, appErr := svc.CountUnread(context.Background(), other)
	require.Nil(t, appErr)
	assert.Equal(t, 1, theirs)
}

func TestMyNotifications_ScopedToUser(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewNotificationService(repo)
	userID := uuid.New()

	require.NoError(t, svc.Deliver(context.Background(), tasks.NotificationDeliverPayload{UserID: userID, Title: "mine", Message: "m", Type: "x"}))
	require.NoError(t, svc.Deliver(context.Background(), tasks.NotificationDeliverPayload{UserID: uuid.New(), Title: "other", Message: "m", Type: "x"}))

	page, appErr := svc.MyNotifications(context.Background(), userID, &params.QueryParams{PageNumber: 1, PageSize: 20})
	require.Nil(t, appErr)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "mine", page.Items[0].Title)
	assert.Equal(t, 1, page.TotalRecords)
}
