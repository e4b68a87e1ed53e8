package notification

import (
	"admission-api/core/database"
	"admission-api/core/middleware"
	"admission-api/modules/notification/controller"
	"admission-api/modules/notification/repository"
	"admission-api/modules/notification/router"
	"admission-api/modules/notification/service"

	"github.com/labstack/echo/v4"
)

// Init wires the notification module and returns the service so the server
// can register its Deliver method as the worker's notification handler.
func Init(e *echo.Echo, db database.Database, mw *middleware.Middleware) *service.NotificationService {
	repo := repository.NewNotificationRepository(db)
	svc := service.NewNotificationService(repo)
	ctrl := controller.NewNotificationController(svc)

	router.NewNotificationRouter(ctrl).Setup(e, mw)

	return svc
}
