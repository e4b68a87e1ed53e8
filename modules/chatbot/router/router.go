package router

import (
	"admission-api/core/middleware"
	"admission-api/modules/chatbot/controller"

	"github.com/labstack/echo/v4"
)

// ChatbotRouter handles chatbot routes
type ChatbotRouter struct {
	ChatbotController *controller.ChatbotController
}

func NewChatbotRouter(chatbotController *controller.ChatbotController) *ChatbotRouter {
	return &ChatbotRouter{
		ChatbotController: chatbotController,
	}
}

// Setup registers chatbot routes
func (r *ChatbotRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")
	routes := v1.Group("/chatbot", mw.AuthMiddleware())

	routes.POST("/ask", r.ChatbotController.Ask)
}
