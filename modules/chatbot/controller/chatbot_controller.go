package controller

import (
	"admission-api/core/constants"
	"admission-api/core/controller"
	"admission-api/core/errors"
	"admission-api/core/utils"
	"admission-api/modules/chatbot/dto"
	"admission-api/modules/chatbot/service"

	"github.com/labstack/echo/v4"
)

// ChatbotController handles chatbot HTTP requests
type ChatbotController struct {
	controller.BaseController
	ChatbotService service.ChatbotServiceInterface
}

func NewChatbotController(svc service.ChatbotServiceInterface) *ChatbotController {
	return &ChatbotController{
		BaseController: controller.NewBaseController(),
		ChatbotService: svc,
	}
}

// Ask handles POST /chatbot/ask
// @Summary Hỏi trợ lý ảo tuyển sinh
// @Description Chuyển câu hỏi đến chatbot; khi engine lỗi sẽ trả lời dự phòng với cờ degraded
// @Tags Chatbot
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.AskRequest true "Câu hỏi"
// @Success 200 {object} dto.AskResponse
// @Failure 429 {object} errors.AppError
// @Router /chatbot/ask [post]
func (c *ChatbotController) Ask(ctx echo.Context) error {
	claims, ok := ctx.Get(constants.ContextTokenData).(*utils.TokenClaims)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	var req dto.AskRequest
	if err := ctx.Bind(&req); err != nil || req.Question == "" {
		return c.BadRequest(errors.ErrInvalidRequestData, "question is required")
	}

	result, appErr := c.ChatbotService.Ask(ctx.Request().Context(), claims.UserID.String(), &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Answer retrieved successfully")
}
