package router

import (
	"admission-api/core/constants"
	"admission-api/core/middleware"
	"admission-api/modules/ticket/controller"

	"github.com/labstack/echo/v4"
)

// TicketRouter handles support ticket routes
type TicketRouter struct {
	TicketController *controller.TicketController
}

func NewTicketRouter(ticketController *controller.TicketController) *TicketRouter {
	return &TicketRouter{
		TicketController: ticketController,
	}
}

// Setup registers ticket routes
func (r *TicketRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")
	routes := v1.Group("/request-ticket", mw.AuthMiddleware())

	routes.POST("", r.TicketController.Create)
	routes.GET("/my-tickets", r.TicketController.MyTickets)
	routes.GET("/:id", r.TicketController.GetByID)
	routes.PATCH("/:id/close", r.TicketController.Close)

	// Staff only.
	routes.GET("", r.TicketController.List,
		mw.RequireRole(constants.RoleConsultant, constants.RoleAdmin))
	routes.GET("/pending", r.TicketController.Pending,
		mw.RequireRole(constants.RoleConsultant, constants.RoleAdmin))
	routes.PATCH("/:id/respond", r.TicketController.Respond,
		mw.RequireRole(constants.RoleConsultant, constants.RoleAdmin))
}
