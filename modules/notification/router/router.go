package router

import (
	"admission-api/core/middleware"
	"admission-api/modules/notification/controller"

	"github.com/labstack/echo/v4"
)

type NotificationRouter struct {
	NotificationController *controller.NotificationController
}

func NewNotificationRouter(ctrl *controller.NotificationController) *NotificationRouter {
	return &NotificationRouter{NotificationController: ctrl}
}

func (r *NotificationRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")
	routes := v1.Group("/notification", mw.AuthMiddleware())

	routes.GET("", r.NotificationController.MyNotifications)
	routes.GET("/unread-count", r.NotificationController.CountUnread)
	routes.PATCH("/mark-read", r.NotificationController.MarkAsRead)
	routes.PATCH("/mark-all-read", r.NotificationController.MarkAllAsRead)
}
