package controller

import (
	"admission-api/core/constants"
	"admission-api/core/controller"
	"admission-api/core/errors"
	"admission-api/core/params"
	"admission-api/core/utils"
	"admission-api/modules/notification/dto"
	"admission-api/modules/notification/service"

	"github.com/labstack/echo/v4"
)

type NotificationController struct {
	controller.BaseController
	NotificationService service.NotificationServiceInterface
}

func NewNotificationController(svc service.NotificationServiceInterface) *NotificationController {
	return &NotificationController{
		BaseController:      controller.NewBaseController(),
		NotificationService: svc,
	}
}

func (c *NotificationController) claims(ctx echo.Context) (*utils.TokenClaims, *errors.AppError) {
	claims, ok := ctx.Get(constants.ContextTokenData).(*utils.TokenClaims)
	if !ok {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "User not authenticated", nil)
	}
	return claims, nil
}

// MyNotifications handles GET /notification
// @Summary Danh sách thông báo của tôi
// @Tags Notification
// @Security BearerAuth
// @Produce json
// @Param pageNumber query int false "Trang"
// @Param pageSize query int false "Số bản ghi mỗi trang"
// @Success 200 {object} controller.Envelope
// @Router /notification [get]
func (c *NotificationController) MyNotifications(ctx echo.Context) error {
	claims, appErr := c.claims(ctx)
	if appErr != nil {
		return c.Unauthorized(appErr.Code, appErr.Message)
	}

	qp := params.NewQueryParams(ctx)
	page, appErr := c.NotificationService.MyNotifications(ctx.Request().Context(), claims.UserID, qp)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, page, "Notifications retrieved successfully")
}

// MarkAsRead handles PATCH /notification/mark-read
// @Summary Đánh dấu đã đọc
// @Tags Notification
// @Security BearerAuth
// @Accept json
// @Param request body dto.MarkAsReadRequest true "Danh sách ID thông báo"
// @Success 200 {object} controller.Envelope
// @Router /notification/mark-read [patch]
func (c *NotificationController) MarkAsRead(ctx echo.Context) error {
	claims, appErr := c.claims(ctx)
	if appErr != nil {
		return c.Unauthorized(appErr.Code, appErr.Message)
	}

	var req dto.MarkAsReadRequest
	if err := ctx.Bind(&req); err != nil || len(req.IDs) == 0 {
		return c.BadRequest(errors.ErrInvalidRequestData, "ids is required")
	}

	if appErr := c.NotificationService.MarkAsRead(ctx.Request().Context(), claims.UserID, req.IDs); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, nil, "Notifications marked as read")
}

// MarkAllAsRead handles PATCH /notification/mark-all-read
// @Summary Đánh dấu tất cả đã đọc
// @Tags Notification
// @Security BearerAuth
// @Success 200 {object} controller.Envelope
// @Router /notification/mark-all-read [patch]
func (c *NotificationController) MarkAllAsRead(ctx echo.Context) error {
	claims, appErr := c.claims(ctx)
	if appErr != nil {
		return c.Unauthorized(appErr.Code, appErr.Message)
	}

	if appErr := c.NotificationService.MarkAllAsRead(ctx.Request().Context(), claims.UserID); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, nil, "All notifications marked as read")
}

// CountUnread handles GET /notification/unread-count
// @Summary Đếm thông báo chưa đọc
// @Tags Notification
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.UnreadCountResponse
// @Router /notification/unread-count [get]
func (c *NotificationController) CountUnread(ctx echo.Context) error {
	claims, appErr := c.claims(ctx)
	if appErr != nil {
		return c.Unauthorized(appErr.Code, appErr.Message)
	}

	count, appErr := c.NotificationService.CountUnread(ctx.Request().Context(), claims.UserID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, dto.UnreadCountResponse{Count: count}, "Unread count retrieved")
}
