package controller

import (
	"strconv"

	"admission-api/core/constants"
	"admission-api/core/controller"
	"admission-api/core/errors"
	"admission-api/core/params"
	"admission-api/core/utils"
	"admission-api/modules/appointment/dto"
	"admission-api/modules/appointment/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// AppointmentController handles appointment HTTP requests
type AppointmentController struct {
	controller.BaseController
	AppointmentService service.AppointmentServiceInterface
}

func NewAppointmentController(svc service.AppointmentServiceInterface) *AppointmentController {
	return &AppointmentController{
		BaseController:     controller.NewBaseController(),
		AppointmentService: svc,
	}
}

func (c *AppointmentController) claims(ctx echo.Context) (*utils.TokenClaims, *errors.AppError) {
	claims, ok := ctx.Get(constants.ContextTokenData).(*utils.TokenClaims)
	if !ok {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "User not authenticated", nil)
	}
	return claims, nil
}

// Create handles POST /appointment/create
// @Summary Đặt lịch tư vấn
// @Description Giữ khung giờ, tạo lịch hẹn chờ thanh toán và trả về link thanh toán
// @Tags Appointment
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateAppointmentRequest true "Khung giờ và nội dung cần tư vấn"
// @Success 200 {object} dto.CreateAppointmentResponse
// @Failure 409 {object} errors.AppError
// @Failure 429 {object} errors.AppError
// @Router /appointment/create [post]
func (c *AppointmentController) Create(ctx echo.Context) error {
	claims, appErr := c.claims(ctx)
	if appErr != nil {
		return c.Unauthorized(appErr.Code, appErr.Message)
	}

	var req dto.CreateAppointmentRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}
	if req.ScheduleID == uuid.Nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "scheduleId is required")
	}

	result, appErr := c.AppointmentService.CreateAppointment(ctx.Request().Context(), claims.UserID, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Appointment created, redirect to checkout")
}

// PreviewBooking handles POST /booking-session
// @Summary Chọn khung giờ để đặt lịch
// @Description Kiểm tra khung giờ còn trống và tạo phiên chọn lịch tạm thời cho bước xác nhận
// @Tags Appointment
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.PreviewBookingRequest true "Khung giờ đã chọn"
// @Success 200 {object} dto.BookingSelection
// @Failure 409 {object} errors.AppError
// @Router /booking-session [post]
func (c *AppointmentController) PreviewBooking(ctx echo.Context) error {
	claims, appErr := c.claims(ctx)
	if appErr != nil {
		return c.Unauthorized(appErr.Code, appErr.Message)
	}

	var req dto.PreviewBookingRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}
	if req.ScheduleID == uuid.Nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "scheduleId is required")
	}

	selection, appErr := c.AppointmentService.PreviewBooking(ctx.Request().Context(), claims.UserID, claims.Email, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, selection, "Slot selected, confirm to book")
}

// ConfirmBooking handles POST /booking-session/:id/confirm
// @Summary Xác nhận đặt lịch từ phiên chọn
// @Tags Appointment
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body dto.ConfirmBookingRequest true "Nội dung cần tư vấn"
// @Success 200 {object} dto.CreateAppointmentResponse
// @Failure 404 {object} errors.AppError
// @Failure 409 {object} errors.AppError
// @Router /booking-session/{id}/confirm [post]
func (c *AppointmentController) ConfirmBooking(ctx echo.Context) error {
	claims, appErr := c.claims(ctx)
	if appErr != nil {
		return c.Unauthorized(appErr.Code, appErr.Message)
	}

	sessionID := ctx.Param("id")
	if sessionID == "" {
		return c.BadRequest(errors.ErrInvalidRequestData, "session id is required")
	}

	var req dto.ConfirmBookingRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}

	result, appErr := c.AppointmentService.ConfirmBookingSession(ctx.Request().Context(), claims.UserID, sessionID, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Appointment created, redirect to checkout")
}

// List handles GET /appointment
// @Summary Danh sách lịch hẹn
// @Description Sinh viên thấy lịch của mình, tư vấn viên thấy lịch được đặt với mình, admin thấy tất cả
// @Tags Appointment
// @Security BearerAuth
// @Produce json
// @Param pageNumber query int false "Trang"
// @Param pageSize query int false "Số bản ghi mỗi trang"
// @Success 200 {object} controller.Envelope
// @Router /appointment [get]
func (c *AppointmentController) List(ctx echo.Context) error {
	claims, appErr := c.claims(ctx)
	if appErr != nil {
		return c.Unauthorized(appErr.Code, appErr.Message)
	}

	qp := params.NewQueryParams(ctx)
	page, appErr := c.AppointmentService.List(ctx.Request().Context(), claims.UserID, claims.Role, qp)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, page, "Appointments retrieved successfully")
}

// GetByID handles GET /appointment/:id
// @Summary Chi tiết lịch hẹn
// @Tags Appointment
// @Security BearerAuth
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 200 {object} controller.Envelope
// @Failure 404 {object} errors.AppError
// @Router /appointment/{id} [get]
func (c *AppointmentController) GetByID(ctx echo.Context) error {
	claims, appErr := c.claims(ctx)
	if appErr != nil {
		return c.Unauthorized(appErr.Code, appErr.Message)
	}

	appointmentID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid appointment id")
	}

	appt, appErr := c.AppointmentService.GetByID(ctx.Request().Context(), claims.UserID, claims.Role, appointmentID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, appt, "Appointment retrieved successfully")
}

// PaymentCallback handles PATCH /appointment/:id/payment-call-back
// @Summary Xử lý kết quả thanh toán
// @Description Xác nhận hoặc huỷ lịch hẹn dựa trên kết quả trả về từ cổng thanh toán
// @Tags Appointment
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Param request body dto.PaymentCallbackRequest true "Kết quả thanh toán"
// @Success 200 {object} controller.Envelope
// @Failure 409 {object} errors.AppError
// @Router /appointment/{id}/payment-call-back [patch]
func (c *AppointmentController) PaymentCallback(ctx echo.Context) error {
	claims, appErr := c.claims(ctx)
	if appErr != nil {
		return c.Unauthorized(appErr.Code, appErr.Message)
	}

	appointmentID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid appointment id")
	}

	var req dto.PaymentCallbackRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}

	appt, appErr := c.AppointmentService.HandlePaymentCallback(ctx.Request().Context(), claims.UserID, appointmentID, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, appt, "Payment result processed")
}

// MarkCompleted handles PATCH /appointment/:id/status
// @Summary Hoàn thành lịch hẹn
// @Description Tư vấn viên đánh dấu buổi tư vấn đã diễn ra
// @Tags Appointment
// @Security BearerAuth
// @Param id path string true "Appointment ID"
// @Success 200 {object} controller.Envelope
// @Failure 409 {object} errors.AppError
// @Router /appointment/{id}/status [patch]
func (c *AppointmentController) MarkCompleted(ctx echo.Context) error {
	claims, appErr := c.claims(ctx)
	if appErr != nil {
		return c.Unauthorized(appErr.Code, appErr.Message)
	}

	appointmentID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid appointment id")
	}

	if appErr := c.AppointmentService.MarkCompleted(ctx.Request().Context(), claims.UserID, claims.Role, appointmentID); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, nil, "Appointment completed")
}

// Statistics handles GET /appointment/statistics/6-months
// @Summary Thống kê lịch hẹn
// @Description Số lượng đặt lịch theo tháng và theo trạng thái cho dashboard admin
// @Tags Appointment
// @Security BearerAuth
// @Produce json
// @Param months query int false "Số tháng gần nhất (mặc định 6)"
// @Success 200 {object} dto.StatisticsResponse
// @Router /appointment/statistics/6-months [get]
func (c *AppointmentController) Statistics(ctx echo.Context) error {
	months := 6
	if raw := ctx.QueryParam("months"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 24 {
			months = parsed
		}
	}

	stats, appErr := c.AppointmentService.Statistics(ctx.Request().Context(), months)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, stats, "Statistics retrieved successfully")
}
