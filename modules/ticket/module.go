package ticket

import (
	"admission-api/core/database"
	"admission-api/core/middleware"
	"admission-api/modules/ticket/controller"
	"admission-api/modules/ticket/repository"
	"admission-api/modules/ticket/router"
	"admission-api/modules/ticket/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Echo, db database.Database, uploader service.AttachmentUploader, notifier service.Notifier, mw *middleware.Middleware) *service.TicketService {
	repo := repository.NewTicketRepository(db)
	svc := service.NewTicketService(repo, uploader, notifier)
	ctrl := controller.NewTicketController(svc)
	router.NewTicketRouter(ctrl).Setup(e, mw)
	return svc
}
