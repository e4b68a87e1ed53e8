package router

import (
	"admission-api/core/constants"
	"admission-api/core/middleware"
	"admission-api/modules/schedule/controller"

	"github.com/labstack/echo/v4"
)

// ScheduleRouter handles counselor schedule routes
type ScheduleRouter struct {
	ScheduleController *controller.ScheduleController
}

func NewScheduleRouter(scheduleController *controller.ScheduleController) *ScheduleRouter {
	return &ScheduleRouter{
		ScheduleController: scheduleController,
	}
}

// Setup registers schedule routes
func (r *ScheduleRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")
	routes := v1.Group("/counselor-schedule")

	// Public: the booking page loads these before sign-in.
	routes.GET("/SelectCounselorSchedules", r.ScheduleController.SelectCounselorSchedules)
	routes.GET("/grid", r.ScheduleController.GetBookingGrid)
	routes.GET("/counselor/:slug", r.ScheduleController.GetCounselorGrid)

	// Counselor/admin management.
	routes.GET("", r.ScheduleController.ListPaged,
		mw.AuthMiddleware(), mw.RequireRole(constants.RoleConsultant, constants.RoleAdmin))
	routes.POST("", r.ScheduleController.Create,
		mw.AuthMiddleware(), mw.RequireRole(constants.RoleConsultant, constants.RoleAdmin))
	routes.PATCH("/:id/status", r.ScheduleController.UpdateStatus,
		mw.AuthMiddleware(), mw.RequireRole(constants.RoleConsultant, constants.RoleAdmin))
	routes.DELETE("/:id", r.ScheduleController.Delete,
		mw.AuthMiddleware(), mw.RequireRole(constants.RoleConsultant, constants.RoleAdmin))
}
