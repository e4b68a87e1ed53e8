package service

import (
	"context"

	coredto "admission-api/core/dto"
	"admission-api/core/errors"
	"admission-api/core/logger"
	"admission-api/core/params"
	"admission-api/core/tasks"
	"admission-api/core/utils"
	"admission-api/modules/notification/entity"
	"admission-api/modules/notification/repository"

	"github.com/google/uuid"
)

type NotificationServiceInterface interface {
	MyNotifications(ctx context.Context, userID uuid.UUID, qp *params.QueryParams) (*coredto.Pagination[entity.Notification], *errors.AppError)
	MarkAsRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) *errors.AppError
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) *errors.AppError
	CountUnread(ctx context.Context, userID uuid.UUID) (int, *errors.AppError)
}

// NotificationService persists in-app notifications and reads them back for
// the bell dropdown. Deliver is the asynq handler side: it runs on the worker,
// not in a request.
type NotificationService struct {
	repo repository.NotificationRepositoryInterface
}

func NewNotificationService(repo repository.NotificationRepositoryInterface) *NotificationService {
	return &NotificationService{repo: repo}
}

// Deliver stores the notification and mirrors it to email when the payload
// carries an address. The email leg is best-effort: a failed SMTP send is
// logged and the task still succeeds, so asynq retries only cover the insert.
func (s *NotificationService) Deliver(ctx context.Context, payload tasks.NotificationDeliverPayload) error {
	notification := &entity.Notification{
		UserID:  payload.UserID,
		Title:   payload.Title,
		Message: payload.Message,
		Type:    payload.Type,
		Data:    entity.JSONB(payload.Data),
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		logger.Error("NotificationService:Deliver:Create:Error:", err)
		return err
	}

	if payload.Email != "" {
		if err := utils.SendEmailTLS(utils.EmailMessage{
			To:      []string{payload.Email},
			Subject: payload.Title,
			Body:    payload.Message,
		}); err != nil {
			logger.Warn("NotificationService:Deliver:SendEmail:Error:", err)
		}
	}
	return nil
}

func (s *NotificationService) MyNotifications(ctx context.Context, userID uuid.UUID, qp *params.QueryParams) (*coredto.Pagination[entity.Notification], *errors.AppError) {
	notifications, total, err := s.repo.SelectByUser(ctx, userID, qp)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to list notifications", err)
	}
	return coredto.NewPagination(notifications, total, qp.PageNumber, qp.PageSize), nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) *errors.AppError {
	if err := s.repo.MarkAsRead(ctx, userID, ids); err != nil {
		return errors.NewAppError(errors.ErrUpdateFailed, "Failed to mark notifications as read", err)
	}
	return nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) *errors.AppError {
	if err := s.repo.MarkAllAsRead(ctx, userID); err != nil {
		return errors.NewAppError(errors.ErrUpdateFailed, "Failed to mark notifications as read", err)
	}
	return nil
}

func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int, *errors.AppError) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, errors.NewAppError(errors.ErrGetFailed, "Failed to count unread notifications", err)
	}
	return count, nil
}
