package appointment

import (
	"admission-api/core/cache"
	"admission-api/core/config"
	"admission-api/core/database"
	"admission-api/core/middleware"
	"admission-api/modules/appointment/controller"
	"admission-api/modules/appointment/repository"
	"admission-api/modules/appointment/router"
	"admission-api/modules/appointment/service"
	paymentservice "admission-api/modules/payment/service"
	schedulerepo "admission-api/modules/schedule/repository"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Echo, db database.Database, c *cache.Cache, taskClient service.TaskScheduler, mw *middleware.Middleware) *service.AppointmentService {
	cfg := config.Get()

	apptRepo := repository.NewAppointmentRepository(db)
	schedRepo := schedulerepo.NewScheduleRepository(db)
	paymentClient := paymentservice.NewPaymentClient(cfg.Payment)

	svc := service.NewAppointmentService(apptRepo, schedRepo, c, paymentClient, taskClient, cfg.Payment)
	ctrl := controller.NewAppointmentController(svc)
	router.NewAppointmentRouter(ctrl).Setup(e, mw)
	return svc
}
