package chatbot

import (
	"admission-api/core/config"
	"admission-api/core/middleware"
	"admission-api/modules/chatbot/controller"
	"admission-api/modules/chatbot/router"
	"admission-api/modules/chatbot/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Echo, mw *middleware.Middleware) {
	engine := service.NewHTTPEngine(config.Get().Chatbot)
	svc := service.NewChatbotService(engine)
	ctrl := controller.NewChatbotController(svc)
	router.NewChatbotRouter(ctrl).Setup(e, mw)
}
