package controller

import (
	"net/http"

	"admission-api/core/errors"
	"admission-api/core/logger"
	"admission-api/core/utils"

	"github.com/labstack/echo/v4"
)

// Response types.
//
// Every endpoint answers with the same envelope the admissions front-end
// consumes: {success, response, messageId, message, detailErrorList}.
// Callers treat success=false and a non-2xx status identically.
type (
	Envelope struct {
		Success         bool   `json:"success"`
		Response        any    `json:"response"`
		MessageID       string `json:"messageId"`
		Message         string `json:"message"`
		DetailErrorList any    `json:"detailErrorList"`
	}

	ValidationError struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	}
)

// Response handler interface and implementation
type BaseController interface {
	BadRequest(appErrCode errors.ErrorCode, message string, details ...any) error
	InternalServerError(appErrCode errors.ErrorCode, message string, details ...any) error
	NotFound(appErrCode errors.ErrorCode, message string, details ...any) error
	Unauthorized(appErrCode errors.ErrorCode, message string, details ...any) error
	Forbidden(appErrCode errors.ErrorCode, message string, details ...any) error
	Conflict(appErrCode errors.ErrorCode, message string, details ...any) error
	SuccessResponse(c echo.Context, data any, message string) error
	ErrorResponse(c echo.Context, err error) error
}

type responseHandler struct{}

func NewBaseController() BaseController {
	return &responseHandler{}
}

func NewEnvelope(success bool, data any, message string, details ...any) *Envelope {
	env := &Envelope{
		Success:   success,
		Response:  data,
		MessageID: utils.GenerateID(),
		Message:   message,
	}
	if len(details) > 0 {
		env.DetailErrorList = details[0]
	}
	return env
}

func NewValidationError(field, message string) ValidationError {
	return ValidationError{Field: field, Message: message}
}

func (h *responseHandler) BadRequest(appErrCode errors.ErrorCode, message string, details ...any) error {
	return echo.NewHTTPError(http.StatusBadRequest, NewEnvelope(false, nil, message, details...))
}

func (h *responseHandler) InternalServerError(appErrCode errors.ErrorCode, message string, details ...any) error {
	return echo.NewHTTPError(http.StatusInternalServerError, NewEnvelope(false, nil, message, details...))
}

func (h *responseHandler) NotFound(appErrCode errors.ErrorCode, message string, details ...any) error {
	return echo.NewHTTPError(http.StatusNotFound, NewEnvelope(false, nil, message, details...))
}

func (h *responseHandler) Unauthorized(appErrCode errors.ErrorCode, message string, details ...any) error {
	return echo.NewHTTPError(http.StatusUnauthorized, NewEnvelope(false, nil, message, details...))
}

func (h *responseHandler) Forbidden(appErrCode errors.ErrorCode, message string, details ...any) error {
	return echo.NewHTTPError(http.StatusForbidden, NewEnvelope(false, nil, message, details...))
}

func (h *responseHandler) Conflict(appErrCode errors.ErrorCode, message string, details ...any) error {
	return echo.NewHTTPError(http.StatusConflict, NewEnvelope(false, nil, message, details...))
}

func (h *responseHandler) SuccessResponse(c echo.Context, data any, message string) error {
	return c.JSON(http.StatusOK, NewEnvelope(true, data, message))
}

// ErrorResponse converts an AppError (or any error) into the failure
// envelope with the matching HTTP status.
func (h *responseHandler) ErrorResponse(c echo.Context, err error) error {
	httpStatus := http.StatusInternalServerError
	appCode := errors.ErrInternalServer
	msg := "internal server error"

	if err != nil {
		if ae, ok := err.(*errors.AppError); ok && ae != nil {
			appCode = ae.Code
			if ae.Message != "" {
				msg = ae.Message
			}
			switch appCode {
			case errors.ErrInvalidInput, errors.ErrInvalidRequestData:
				httpStatus = http.StatusBadRequest
			case errors.ErrUnauthorized, errors.ErrTokenExpired, errors.ErrInvalidTokenFormat, errors.ErrMissingAuthorizationHeader:
				httpStatus = http.StatusUnauthorized
			case errors.ErrForbidden:
				httpStatus = http.StatusForbidden
			case errors.ErrNotFound:
				httpStatus = http.StatusNotFound
			case errors.ErrAlreadyExists, errors.ErrSlotNotAvailable, errors.ErrInvalidTransition:
				httpStatus = http.StatusConflict
			case errors.ErrBookingInFlight, errors.ErrRateLimited:
				httpStatus = http.StatusTooManyRequests
			case errors.ErrSessionExpired:
				httpStatus = http.StatusGone
			case errors.ErrUpstreamNetwork, errors.ErrUpstreamHTTP, errors.ErrUpstreamApplication, errors.ErrUpstreamDataShape:
				httpStatus = http.StatusBadGateway
			default:
				httpStatus = http.StatusInternalServerError
			}
		} else if err.Error() != "" {
			msg = err.Error()
		}
	}

	env := NewEnvelope(false, nil, msg)
	logger.Error("BaseController:ErrorResponse",
		"status", httpStatus,
		"code", appCode,
		"message", msg,
		"messageId", env.MessageID,
	)
	return c.JSON(httpStatus, env)
}
