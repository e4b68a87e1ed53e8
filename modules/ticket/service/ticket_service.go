package service

import (
	"context"
	"fmt"
	"io"
	"path"

	"admission-api/core/constants"
	coredto "admission-api/core/dto"
	"admission-api/core/errors"
	"admission-api/core/logger"
	"admission-api/core/params"
	"admission-api/core/tasks"
	"admission-api/core/utils"
	"admission-api/modules/ticket/dto"
	"admission-api/modules/ticket/entity"
	"admission-api/modules/ticket/repository"

	"github.com/google/uuid"
)

// AttachmentUploader is the slice of the storage layer tickets use. Nil
// disables attachments.
type AttachmentUploader interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// Notifier enqueues the ticket notifications. Nil disables them.
type Notifier interface {
	EnqueueNotification(ctx context.Context, payload tasks.NotificationDeliverPayload)
}

// AttachmentUpload is an optional file attached at creation time.
type AttachmentUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// TicketService owns the support ticket lifecycle.
type TicketService struct {
	repo     repository.TicketRepositoryInterface
	uploader AttachmentUploader
	notifier Notifier
}

func NewTicketService(repo repository.TicketRepositoryInterface, uploader AttachmentUploader, notifier Notifier) *TicketService {
	return &TicketService{repo: repo, uploader: uploader, notifier: notifier}
}

type TicketServiceInterface interface {
	CreateTicket(ctx context.Context, userID uuid.UUID, req *dto.CreateTicketRequest, attachment *AttachmentUpload) (*dto.TicketResponse, *errors.AppError)
	GetByID(ctx context.Context, requesterID uuid.UUID, role string, ticketID uuid.UUID) (*dto.TicketResponse, *errors.AppError)
	MyTickets(ctx context.Context, userID uuid.UUID, qp *params.QueryParams) (*coredto.Pagination[dto.TicketResponse], *errors.AppError)
	ListByStatus(ctx context.Context, statusID int, qp *params.QueryParams) (*coredto.Pagination[dto.TicketResponse], *errors.AppError)
	Respond(ctx context.Context, responderID uuid.UUID, ticketID uuid.UUID, req *dto.RespondTicketRequest) (*dto.TicketResponse, *errors.AppError)
	Close(ctx context.Context, requesterID uuid.UUID, role string, ticketID uuid.UUID) *errors.AppError
}

func (s *TicketService) CreateTicket(ctx context.Context, userID uuid.UUID, req *dto.CreateTicketRequest, attachment *AttachmentUpload) (*dto.TicketResponse, *errors.AppError) {
	ticket := &entity.RequestTicket{
		Code:     utils.GenerateTicketCode(),
		UserID:   userID,
		Subject:  req.Subject,
		Content:  req.Content,
		StatusID: constants.TicketStatusPending,
	}

	if attachment != nil {
		if s.uploader == nil {
			return nil, errors.NewAppError(errors.ErrInvalidInput, "Attachments are not enabled", nil)
		}
		key := fmt.Sprintf("tickets/%s/%s%s", userID, utils.GenerateID(), path.Ext(attachment.Filename))
		stored, err := s.uploader.Upload(ctx, key, attachment.ContentType, attachment.Body)
		if err != nil {
			logger.Error("TicketService:CreateTicket:Upload:Error:", err)
			return nil, errors.NewAppError(errors.ErrCreateFailed, "Failed to store the attachment", err)
		}
		ticket.AttachmentKey.String = stored
		ticket.AttachmentKey.Valid = true
	}

	created, err := s.repo.Create(ctx, ticket)
	if err != nil {
		logger.Error("TicketService:CreateTicket:Create:Error:", err)
		return nil, errors.NewAppError(errors.ErrCreateFailed, "Failed to create the ticket", err)
	}

	resp := toTicketResponse(&entity.TicketWithUser{RequestTicket: *created})
	return &resp, nil
}

func (s *TicketService) GetByID(ctx context.Context, requesterID uuid.UUID, role string, ticketID uuid.UUID) (*dto.TicketResponse, *errors.AppError) {
	ticket, appErr := s.load(ctx, ticketID)
	if appErr != nil {
		return nil, appErr
	}
	if ticket.UserID != requesterID && role != constants.RoleAdmin && role != constants.RoleConsultant {
		return nil, errors.NewAppError(errors.ErrForbidden, "Ticket belongs to another user", nil)
	}
	resp := toTicketResponse(ticket)
	return &resp, nil
}

func (s *TicketService) MyTickets(ctx context.Context, userID uuid.UUID, qp *params.QueryParams) (*coredto.Pagination[dto.TicketResponse], *errors.AppError) {
	tickets, total, err := s.repo.SelectByUser(ctx, userID, qp)
	if err != nil {
		logger.Error("TicketService:MyTickets:SelectByUser:Error:", err)
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to list tickets", err)
	}
	return coredto.NewPagination(toTicketResponses(tickets), total, qp.PageNumber, qp.PageSize), nil
}

func (s *TicketService) ListByStatus(ctx context.Context, statusID int, qp *params.QueryParams) (*coredto.Pagination[dto.TicketResponse], *errors.AppError) {
	tickets, total, err := s.repo.SelectByStatus(ctx, statusID, qp)
	if err != nil {
		logger.Error("TicketService:ListByStatus:SelectByStatus:Error:", err)
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to list tickets", err)
	}
	return coredto.NewPagination(toTicketResponses(tickets), total, qp.PageNumber, qp.PageSize), nil
}

func (s *TicketService) Respond(ctx context.Context, responderID uuid.UUID, ticketID uuid.UUID, req *dto.RespondTicketRequest) (*dto.TicketResponse, *errors.AppError) {
	ticket, appErr := s.load(ctx, ticketID)
	if appErr != nil {
		return nil, appErr
	}

	moved, err := s.repo.Respond(ctx, ticketID, responderID, req.Response, constants.TicketStatusResponded)
	if err != nil {
		logger.Error("TicketService:Respond:Respond:Error:", err)
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "Failed to answer the ticket", err)
	}
	if !moved {
		return nil, errors.NewAppError(errors.ErrInvalidTransition, "Ticket is not pending", nil)
	}

	if s.notifier != nil {
		s.notifier.EnqueueNotification(ctx, tasks.NotificationDeliverPayload{
			UserID:  ticket.UserID,
			Email:   ticket.UserEmail,
			Title:   "Yêu cầu hỗ trợ đã được trả lời",
			Message: fmt.Sprintf("Yêu cầu %s đã có phản hồi từ phòng tuyển sinh.", ticket.Code),
			Type:    "ticket_responded",
			Data:    map[string]any{"ticketId": ticketID.String(), "code": ticket.Code},
		})
	}

	updated, appErr := s.load(ctx, ticketID)
	if appErr != nil {
		return nil, appErr
	}
	resp := toTicketResponse(updated)
	return &resp, nil
}

// Close ends the ticket. The owner can close their own; staff can close any.
func (s *TicketService) Close(ctx context.Context, requesterID uuid.UUID, role string, ticketID uuid.UUID) *errors.AppError {
	ticket, appErr := s.load(ctx, ticketID)
	if appErr != nil {
		return appErr
	}
	if ticket.UserID != requesterID && role != constants.RoleAdmin && role != constants.RoleConsultant {
		return errors.NewAppError(errors.ErrForbidden, "Ticket belongs to another user", nil)
	}
	if ticket.StatusID == constants.TicketStatusClosed {
		return errors.NewAppError(errors.ErrInvalidTransition, "Ticket is already closed", nil)
	}

	if err := s.repo.UpdateStatus(ctx, ticketID, constants.TicketStatusClosed); err != nil {
		logger.Error("TicketService:Close:UpdateStatus:Error:", err)
		return errors.NewAppError(errors.ErrUpdateFailed, "Failed to close the ticket", err)
	}
	return nil
}

func (s *TicketService) load(ctx context.Context, ticketID uuid.UUID) (*entity.TicketWithUser, *errors.AppError) {
	ticket, err := s.repo.GetByID(ctx, ticketID)
	if err != nil {
		logger.Error("TicketService:load:GetByID:Error:", err)
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load the ticket", err)
	}
	if ticket == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Ticket not found", nil)
	}
	return ticket, nil
}

func toTicketResponse(t *entity.TicketWithUser) dto.TicketResponse {
	resp := dto.TicketResponse{
		ID:        t.ID,
		Code:      t.Code,
		UserID:    t.UserID,
		UserName:  t.UserName,
		UserEmail: t.UserEmail,
		Subject:   t.Subject,
		Content:   t.Content,
		StatusID:  t.StatusID,
		CreatedAt: t.CreatedAt,
	}
	if t.Response.Valid {
		resp.Response = t.Response.String
	}
	if t.RespondedAt.Valid {
		respondedAt := t.RespondedAt.Time
		resp.RespondedAt = &respondedAt
	}
	if t.AttachmentKey.Valid {
		resp.AttachmentKey = t.AttachmentKey.String
	}
	return resp
}

func toTicketResponses(tickets []entity.TicketWithUser) []dto.TicketResponse {
	out := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, toTicketResponse(&tickets[i]))
	}
	return out
}
