package controller

import (
	"strconv"

	"admission-api/core/constants"
	"admission-api/core/controller"
	"admission-api/core/errors"
	"admission-api/core/params"
	"admission-api/core/utils"
	"admission-api/modules/ticket/dto"
	"admission-api/modules/ticket/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// maxAttachmentSize caps ticket attachments at 5 MiB.
const maxAttachmentSize = 5 << 20

// TicketController handles support ticket HTTP requests
type TicketController struct {
	controller.BaseController
	TicketService service.TicketServiceInterface
}

func NewTicketController(svc service.TicketServiceInterface) *TicketController {
	return &TicketController{
		BaseController: controller.NewBaseController(),
		TicketService:  svc,
	}
}

func (c *TicketController) claims(ctx echo.Context) (*utils.TokenClaims, *errors.AppError) {
	claims, ok := ctx.Get(constants.ContextTokenData).(*utils.TokenClaims)
	if !ok {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "User not authenticated", nil)
	}
	return claims, nil
}

// Create handles POST /request-ticket
// @Summary Gửi yêu cầu hỗ trợ
// @Description Tạo ticket hỗ trợ, đính kèm tệp tuỳ chọn (multipart)
// @Tags Ticket
// @Security BearerAuth
// @Accept mpfd
// @Produce json
// @Param subject formData string true "Tiêu đề"
// @Param content formData string true "Nội dung"
// @Param attachment formData file false "Tệp đính kèm"
// @Success 200 {object} dto.TicketResponse
// @Router /request-ticket [post]
func (c *TicketController) Create(ctx echo.Context) error {
	claims, appErr := c.claims(ctx)
	if appErr != nil {
		return c.Unauthorized(appErr.Code, appErr.Message)
	}

	req := dto.CreateTicketRequest{
		Subject: ctx.FormValue("subject"),
		Content: ctx.FormValue("content"),
	}
	if req.Subject == "" || req.Content == "" {
		// JSON bodies are accepted too, for callers without an attachment.
		if err := ctx.Bind(&req); err != nil || req.Subject == "" || req.Content == "" {
			return c.BadRequest(errors.ErrInvalidRequestData, "subject and content are required")
		}
	}

	var attachment *service.AttachmentUpload
	if fileHeader, err := ctx.FormFile("attachment"); err == nil && fileHeader != nil {
		if fileHeader.Size > maxAttachmentSize {
			return c.BadRequest(errors.ErrInvalidRequestData, "Attachment exceeds the 5MB limit")
		}
		file, err := fileHeader.Open()
		if err != nil {
			return c.BadRequest(errors.ErrInvalidInput, "Failed to read the attachment")
		}
		defer file.Close()
		attachment = &service.AttachmentUpload{
			Filename:    fileHeader.Filename,
			ContentType: fileHeader.Header.Get("Content-Type"),
			Body:        file,
		}
	}

	result, appErr := c.TicketService.CreateTicket(ctx.Request().Context(), claims.UserID, &req, attachment)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Ticket created successfully")
}

// MyTickets handles GET /request-ticket/my-tickets
// @Summary Danh sách yêu cầu của tôi
// @Tags Ticket
// @Security BearerAuth
// @Produce json
// @Param pageNumber query int false "Trang"
// @Param pageSize query int false "Số bản ghi mỗi trang"
// @Success 200 {object} controller.Envelope
// @Router /request-ticket/my-tickets [get]
func (c *TicketController) MyTickets(ctx echo.Context) error {
	claims, appErr := c.claims(ctx)
	if appErr != nil {
		return c.Unauthorized(appErr.Code, appErr.Message)
	}

	qp := params.NewQueryParams(ctx)
	page, appErr := c.TicketService.MyTickets(ctx.Request().Context(), claims.UserID, qp)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, page, "Tickets retrieved successfully")
}

// List handles GET /request-ticket
// @Summary Danh sách yêu cầu hỗ trợ (nhân viên)
// @Description Lọc theo statusId: 1 chờ xử lý, 2 đã trả lời, 3 đã đóng; bỏ trống lấy tất cả
// @Tags Ticket
// @Security BearerAuth
// @Produce json
// @Param statusId query int false "Trạng thái"
// @Success 200 {object} controller.Envelope
// @Router /request-ticket [get]
func (c *TicketController) List(ctx echo.Context) error {
	statusID := 0
	if raw := ctx.QueryParam("statusId"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < constants.TicketStatusPending || parsed > constants.TicketStatusClosed {
			return c.BadRequest(errors.ErrInvalidRequestData, "statusId must be 1, 2 or 3")
		}
		statusID = parsed
	}

	qp := params.NewQueryParams(ctx)
	page, appErr := c.TicketService.ListByStatus(ctx.Request().Context(), statusID, qp)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, page, "Tickets retrieved successfully")
}

// Pending handles GET /request-ticket/pending
// @Summary Yêu cầu hỗ trợ đang chờ xử lý (nhân viên)
// @Tags Ticket
// @Security BearerAuth
// @Produce json
// @Param pageNumber query int false "Trang"
// @Param pageSize query int false "Số bản ghi mỗi trang"
// @Success 200 {object} controller.Envelope
// @Router /request-ticket/pending [get]
func (c *TicketController) Pending(ctx echo.Context) error {
	qp := params.NewQueryParams(ctx)
	page, appErr := c.TicketService.ListByStatus(ctx.Request().Context(), constants.TicketStatusPending, qp)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, page, "Pending tickets retrieved successfully")
}

// GetByID handles GET /request-ticket/:id
// @Summary Chi tiết yêu cầu hỗ trợ
// @Tags Ticket
// @Security BearerAuth
// @Produce json
// @Param id path string true "Ticket ID"
// @Success 200 {object} dto.TicketResponse
// @Failure 404 {object} errors.AppError
// @Router /request-ticket/{id} [get]
func (c *TicketController) GetByID(ctx echo.Context) error {
	claims, appErr := c.claims(ctx)
	if appErr != nil {
		return c.Unauthorized(appErr.Code, appErr.Message)
	}

	ticketID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid ticket id")
	}

	ticket, appErr := c.TicketService.GetByID(ctx.Request().Context(), claims.UserID, claims.Role, ticketID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, ticket, "Ticket retrieved successfully")
}

// Respond handles PATCH /request-ticket/:id/respond
// @Summary Trả lời yêu cầu hỗ trợ
// @Tags Ticket
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Ticket ID"
// @Param request body dto.RespondTicketRequest true "Nội dung trả lời"
// @Success 200 {object} dto.TicketResponse
// @Failure 409 {object} errors.AppError
// @Router /request-ticket/{id}/respond [patch]
func (c *TicketController) Respond(ctx echo.Context) error {
	claims, appErr := c.claims(ctx)
	if appErr != nil {
		return c.Unauthorized(appErr.Code, appErr.Message)
	}

	ticketID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid ticket id")
	}

	var req dto.RespondTicketRequest
	if err := ctx.Bind(&req); err != nil || req.Response == "" {
		return c.BadRequest(errors.ErrInvalidRequestData, "response is required")
	}

	ticket, appErr := c.TicketService.Respond(ctx.Request().Context(), claims.UserID, ticketID, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, ticket, "Ticket answered successfully")
}

// Close handles PATCH /request-ticket/:id/close
// @Summary Đóng yêu cầu hỗ trợ
// @Tags Ticket
// @Security BearerAuth
// @Param id path string true "Ticket ID"
// @Success 200 {object} controller.Envelope
// @Router /request-ticket/{id}/close [patch]
func (c *TicketController) Close(ctx echo.Context) error {
	claims, appErr := c.claims(ctx)
	if appErr != nil {
		return c.Unauthorized(appErr.Code, appErr.Message)
	}

	ticketID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid ticket id")
	}

	if appErr := c.TicketService.Close(ctx.Request().Context(), claims.UserID, claims.Role, ticketID); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, nil, "Ticket closed")
}
