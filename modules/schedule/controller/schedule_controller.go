package controller

import (
	"admission-api/core/constants"
	"admission-api/core/controller"
	"admission-api/core/errors"
	"admission-api/core/params"
	"admission-api/core/utils"
	"admission-api/modules/schedule/dto"
	"admission-api/modules/schedule/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ScheduleController handles counselor schedule HTTP requests
type ScheduleController struct {
	controller.BaseController
	ScheduleService service.ScheduleServiceInterface
}

func NewScheduleController(svc service.ScheduleServiceInterface) *ScheduleController {
	return &ScheduleController{
		BaseController:  controller.NewBaseController(),
		ScheduleService: svc,
	}
}

func (c *ScheduleController) claims(ctx echo.Context) (*utils.TokenClaims, *errors.AppError) {
	tokenData := ctx.Get(constants.ContextTokenData)
	claims, ok := tokenData.(*utils.TokenClaims)
	if !ok {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "User not authenticated", nil)
	}
	return claims, nil
}

// SelectCounselorSchedules handles GET /counselor-schedule/SelectCounselorSchedules
// @Summary Lấy danh sách lịch tư vấn
// @Description Trả về toàn bộ các khung giờ tư vấn của tất cả tư vấn viên
// @Tags Schedule
// @Produce json
// @Success 200 {array} dto.ScheduleEntry
// @Failure 500 {object} errors.AppError
// @Router /counselor-schedule/SelectCounselorSchedules [get]
func (c *ScheduleController) SelectCounselorSchedules(ctx echo.Context) error {
	entries, appErr := c.ScheduleService.SelectCounselorSchedules(ctx.Request().Context())
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, entries, "Schedules retrieved successfully")
}

// GetBookingGrid handles GET /counselor-schedule/grid
// @Summary Lấy lưới đặt lịch
// @Description Dựng lưới ngày/khung giờ cho trang đặt lịch
// @Tags Schedule
// @Produce json
// @Param policy query string false "first | all"
// @Success 200 {object} service.Grid
// @Failure 500 {object} errors.AppError
// @Router /counselor-schedule/grid [get]
func (c *ScheduleController) GetBookingGrid(ctx echo.Context) error {
	policy := service.FirstMatch
	if ctx.QueryParam("policy") == string(service.AllMatches) {
		policy = service.AllMatches
	}

	grid, appErr := c.ScheduleService.GetBookingGrid(ctx.Request().Context(), policy)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, grid, "Booking grid retrieved successfully")
}

// GetCounselorGrid handles GET /counselor-schedule/counselor/:slug
// @Summary Lấy lưới lịch của một tư vấn viên
// @Tags Schedule
// @Produce json
// @Param slug path string true "Slug của tư vấn viên"
// @Success 200 {object} service.Grid
// @Failure 404 {object} errors.AppError
// @Router /counselor-schedule/counselor/{slug} [get]
func (c *ScheduleController) GetCounselorGrid(ctx echo.Context) error {
	slug := ctx.Param("slug")
	if slug == "" {
		return c.BadRequest(errors.ErrInvalidInput, "Counselor slug is required")
	}

	grid, appErr := c.ScheduleService.GetCounselorGrid(ctx.Request().Context(), slug)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, grid, "Counselor grid retrieved successfully")
}

// ListPaged handles GET /counselor-schedule
// @Summary Danh sách lịch tư vấn (phân trang)
// @Tags Schedule
// @Security BearerAuth
// @Produce json
// @Param pageNumber query int false "Trang"
// @Param pageSize query int false "Số bản ghi mỗi trang"
// @Param search query string false "Tìm theo tên hoặc email tư vấn viên"
// @Success 200 {object} controller.Envelope
// @Router /counselor-schedule [get]
func (c *ScheduleController) ListPaged(ctx echo.Context) error {
	qp := params.NewQueryParams(ctx)
	page, appErr := c.ScheduleService.ListPaged(ctx.Request().Context(), qp)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, page, "Schedules retrieved successfully")
}

// Create handles POST /counselor-schedule
// @Summary Tạo khung giờ tư vấn
// @Tags Schedule
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateScheduleRequest true "Thông tin khung giờ"
// @Success 200 {object} controller.Envelope
// @Failure 400 {object} errors.AppError
// @Router /counselor-schedule [post]
func (c *ScheduleController) Create(ctx echo.Context) error {
	claims, appErr := c.claims(ctx)
	if appErr != nil {
		return c.Unauthorized(appErr.Code, appErr.Message)
	}

	var req dto.CreateScheduleRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}
	if req.SlotID <= 0 || req.Slot == "" {
		return c.BadRequest(errors.ErrInvalidRequestData, "slotId and slot are required")
	}

	created, appErr := c.ScheduleService.Create(ctx.Request().Context(), claims.UserID, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, created, "Schedule created successfully")
}

// UpdateStatus handles PATCH /counselor-schedule/:id/status
// @Summary Cập nhật trạng thái khung giờ
// @Tags Schedule
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param request body dto.UpdateScheduleStatusRequest true "Trạng thái mới"
// @Success 200 {object} controller.Envelope
// @Router /counselor-schedule/{id}/status [patch]
func (c *ScheduleController) UpdateStatus(ctx echo.Context) error {
	claims, appErr := c.claims(ctx)
	if appErr != nil {
		return c.Unauthorized(appErr.Code, appErr.Message)
	}

	scheduleID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid schedule id")
	}

	var req dto.UpdateScheduleStatusRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}
	if req.StatusID != constants.ScheduleStatusAvailable && req.StatusID != constants.ScheduleStatusBooked {
		return c.BadRequest(errors.ErrInvalidRequestData, "statusId must be 1 (available) or 2 (booked)")
	}

	isAdmin := claims.Role == constants.RoleAdmin
	if appErr := c.ScheduleService.UpdateStatus(ctx.Request().Context(), claims.UserID, scheduleID, isAdmin, &req); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, nil, "Schedule status updated")
}

// Delete handles DELETE /counselor-schedule/:id
// @Summary Xoá khung giờ tư vấn
// @Tags Schedule
// @Security BearerAuth
// @Param id path string true "Schedule ID"
// @Success 200 {object} controller.Envelope
// @Router /counselor-schedule/{id} [delete]
func (c *ScheduleController) Delete(ctx echo.Context) error {
	claims, appErr := c.claims(ctx)
	if appErr != nil {
		return c.Unauthorized(appErr.Code, appErr.Message)
	}

	scheduleID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid schedule id")
	}

	isAdmin := claims.Role == constants.RoleAdmin
	if appErr := c.ScheduleService.Delete(ctx.Request().Context(), claims.UserID, scheduleID, isAdmin); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, nil, "Schedule deleted")
}
