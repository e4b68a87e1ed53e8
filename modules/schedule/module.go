package schedule

import (
	"admission-api/core/database"
	"admission-api/core/middleware"
	"admission-api/modules/schedule/controller"
	"admission-api/modules/schedule/repository"
	"admission-api/modules/schedule/router"
	"admission-api/modules/schedule/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Echo, db database.Database, mw *middleware.Middleware) *service.ScheduleService {
	repo := repository.NewScheduleRepository(db)
	svc := service.NewScheduleService(repo)
	ctrl := controller.NewScheduleController(svc)
	router.NewScheduleRouter(ctrl).Setup(e, mw)
	return svc
}
