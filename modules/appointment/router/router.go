package router

import (
	"admission-api/core/constants"
	"admission-api/core/middleware"
	"admission-api/modules/appointment/controller"

	"github.com/labstack/echo/v4"
)

// AppointmentRouter handles appointment routes
type AppointmentRouter struct {
	AppointmentController *controller.AppointmentController
}

func NewAppointmentRouter(appointmentController *controller.AppointmentController) *AppointmentRouter {
	return &AppointmentRouter{
		AppointmentController: appointmentController,
	}
}

// Setup registers appointment routes
func (r *AppointmentRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")
	routes := v1.Group("/appointment", mw.AuthMiddleware())

	routes.POST("/create", r.AppointmentController.Create)
	routes.GET("", r.AppointmentController.List)
	routes.GET("/:id", r.AppointmentController.GetByID)
	routes.PATCH("/:id/payment-call-back", r.AppointmentController.PaymentCallback)
	routes.PATCH("/:id/status", r.AppointmentController.MarkCompleted,
		mw.RequireRole(constants.RoleConsultant, constants.RoleAdmin))
	routes.GET("/statistics/6-months", r.AppointmentController.Statistics,
		mw.RequireRole(constants.RoleAdmin))

	sessions := v1.Group("/booking-session", mw.AuthMiddleware())
	sessions.POST("", r.AppointmentController.PreviewBooking)
	sessions.POST("/:id/confirm", r.AppointmentController.ConfirmBooking)
}
