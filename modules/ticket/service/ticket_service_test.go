package service

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"admission-api/core/constants"
	"admission-api/core/errors"
	"admission-api/core/params"
	"admission-api/core/tasks"
	"admission-api/modules/ticket/dto"
	"admission-api/modules/ticket/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTicketRepo struct {
	tickets map[uuid.UUID]*entity.TicketWithUser
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[uuid.UUID]*entity.TicketWithUser{}}
}

func (f *fakeTicketRepo) Create(_ context.Context, t *entity.RequestTicket) (*entity.RequestTicket, error) {
	created := *t
	created.ID = uuid.New()
	created.CreatedAt = time.Now()
	f.tickets[created.ID] = &entity.TicketWithUser{
		RequestTicket: created,
		UserName:      "Nguyễn Văn A",
		UserEmail:     "a@example.edu.vn",
	}
	return &created, nil
}

func (f *fakeTicketRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.TicketWithUser, error) {
	ticket, ok := f.tickets[id]
	if !ok {
		return nil, nil
	}
	copied := *ticket
	return &copied, nil
}

func (f *fakeTicketRepo) SelectByUser(_ context.Context, userID uuid.UUID, _ *params.QueryParams) ([]entity.TicketWithUser, int, error) {
	out := []entity.TicketWithUser{}
	for _, t := range f.tickets {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, len(out), nil
}

func (f *fakeTicketRepo) SelectByStatus(_ context.Context, statusID int, _ *params.QueryParams) ([]entity.TicketWithUser, int, error) {
	out := []entity.TicketWithUser{}
	for _, t := range f.tickets {
		if statusID == 0 || t.StatusID == statusID {
			out = append(out, *t)
		}
	}
	return out, len(out), nil
}

func (f *fakeTicketRepo) Respond(_ context.Context, id uuid.UUID, responderID uuid.UUID, response string, statusID int) (bool, error) {
	ticket, ok := f.tickets[id]
	if !ok || ticket.StatusID != constants.TicketStatusPending {
		return false, nil
	}
	ticket.Response.String = response
	ticket.Response.Valid = true
	ticket.ResponderID.UUID = responderID
	ticket.ResponderID.Valid = true
	ticket.RespondedAt.Time = time.Now()
	ticket.RespondedAt.Valid = true
	ticket.StatusID = statusID
	return true, nil
}

func (f *fakeTicketRepo) UpdateStatus(_ context.Context, id uuid.UUID, statusID int) error {
	if ticket, ok := f.tickets[id]; ok {
		ticket.StatusID = statusID
	}
	return nil
}

func (f *fakeTicketRepo) CountByStatus(_ context.Context, statusID int) (int, error) {
	total := 0
	for _, t := range f.tickets {
		if t.StatusID == statusID {
			total++
		}
	}
	return total, nil
}

type fakeUploader struct {
	keys []string
	err  error
}

func (f *fakeUploader) Upload(_ context.Context, key, _ string, body io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	io.Copy(io.Discard, body)
	f.keys = append(f.keys, key)
	return key, nil
}

type fakeNotifier struct {
	payloads []tasks.NotificationDeliverPayload
}

func (f *fakeNotifier) EnqueueNotification(_ context.Context, p tasks.NotificationDeliverPayload) {
	f.payloads = append(f.payloads, p)
}

func TestCreateTicket(t *testing.T) {
	repo := newFakeTicketRepo()
	svc := NewTicketService(repo, &fakeUploader{}, &fakeNotifier{})
	userID := uuid.New()

	ticket, appErr := svc.CreateTicket(context.Background(), userID, &dto.CreateTicketRequest{
		Subject: "Hỏi về học bổng",
		Content: "Em muốn biết điều kiện xét học bổng đầu vào.",
	}, nil)

	require.Nil(t, appErr)
	assert.True(t, strings.HasPrefix(ticket.Code, "TK-"))
	assert.Equal(t, constants.TicketStatusPending, ticket.StatusID)
	assert.Equal(t, userID, ticket.UserID)
}

func TestCreateTicket_WithAttachment(t *testing.T) {
	repo := newFakeTicketRepo()
	uploader := &fakeUploader{}
	svc := NewTicketService(repo, uploader, nil)

	ticket, appErr := svc.CreateTicket(context.Background(), uuid.New(), &dto.CreateTicketRequest{
		Subject: "Bảng điểm",
		Content: "Đính kèm bảng điểm lớp 12.",
	}, &AttachmentUpload{
		Filename:    "bang-diem.pdf",
		ContentType: "application/pdf",
		Body:        bytes.NewReader([]byte("%PDF-1.4")),
	})

	require.Nil(t, appErr)
	require.Len(t, uploader.keys, 1)
	assert.True(t, strings.HasSuffix(uploader.keys[0], ".pdf"))
	assert.Equal(t, uploader.keys[0], ticket.AttachmentKey)
}

func TestCreateTicket_UploadFailure(t *testing.T) {
	repo := newFakeTicketRepo()
	svc := NewTicketService(repo, &fakeUploader{err: io.ErrUnexpectedEOF}, nil)

	_, appErr := svc.CreateTicket(context.Background(), uuid.New(), &dto.CreateTicketRequest{
		Subject: "s", Content: "c",
	}, &AttachmentUpload{Filename: "x.png", Body: bytes.NewReader(nil)})

	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrCreateFailed, appErr.Code)
	assert.Empty(t, repo.tickets)
}

func TestRespond(t *testing.T) {
	repo := newFakeTicketRepo()
	notifier := &fakeNotifier{}
	svc := NewTicketService(repo, nil, notifier)
	userID := uuid.New()

	created, appErr := svc.CreateTicket(context.Background(), userID, &dto.CreateTicketRequest{
		Subject: "Hỏi thủ tục nhập học", Content: "Cần những giấy tờ gì?",
	}, nil)
	require.Nil(t, appErr)

	responderID := uuid.New()
	ticket, appErr := svc.Respond(context.Background(), responderID, created.ID, &dto.RespondTicketRequest{
		Response: "Em cần CMND và học bạ bản sao công chứng.",
	})

	require.Nil(t, appErr)
	assert.Equal(t, constants.TicketStatusResponded, ticket.StatusID)
	assert.NotEmpty(t, ticket.Response)
	assert.NotNil(t, ticket.RespondedAt)

	require.Len(t, notifier.payloads, 1)
	assert.Equal(t, userID, notifier.payloads[0].UserID)
	assert.Equal(t, "ticket_responded", notifier.payloads[0].Type)

	// A second answer hits the pending-only guard.
	_, appErr = svc.Respond(context.Background(), responderID, created.ID, &dto.RespondTicketRequest{Response: "again"})
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrInvalidTransition, appErr.Code)
}

func TestClose(t *testing.T) {
	repo := newFakeTicketRepo()
	svc := NewTicketService(repo, nil, nil)
	userID := uuid.New()

	created, appErr := svc.CreateTicket(context.Background(), userID, &dto.CreateTicketRequest{
		Subject: "s", Content: "c",
	}, nil)
	require.Nil(t, appErr)

	// A stranger cannot close it.
	appErr = svc.Close(context.Background(), uuid.New(), constants.RoleStudent, created.ID)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrForbidden, appErr.Code)

	// The owner can.
	require.Nil(t, svc.Close(context.Background(), userID, constants.RoleStudent, created.ID))
	assert.Equal(t, constants.TicketStatusClosed, repo.tickets[created.ID].StatusID)

	// Closing twice is rejected.
	appErr = svc.Close(context.Background(), userID, constants.RoleStudent, created.ID)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrInvalidTransition, appErr.Code)
}

func TestGetByID_Visibility(t *testing.T) {
	repo := newFakeTicketRepo()
	svc := NewTicketService(repo, nil, nil)
	userID := uuid.New()

	created, appErr := svc.CreateTicket(context.Background(), userID, &dto.CreateTicketRequest{
		Subject: "s", Content: "c",
	}, nil)
	require.Nil(t, appErr)

	_, appErr = svc.GetByID(context.Background(), uuid.New(), constants.RoleStudent, created.ID)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrForbidden, appErr.Code)

	_, appErr = svc.GetByID(context.Background(), uuid.New(), constants.RoleConsultant, created.ID)
	assert.Nil(t, appErr)

	_, appErr = svc.GetByID(context.Background(), userID, constants.RoleStudent, created.ID)
	assert.Nil(t, appErr)
}
