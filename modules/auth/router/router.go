package router

import (
	"admission-api/core/middleware"
	"admission-api/modules/auth/controller"

	"github.com/labstack/echo/v4"
)

// AuthRouter handles authentication routes
type AuthRouter struct {
	AuthController *controller.AuthController
}

func NewAuthRouter(authController *controller.AuthController) *AuthRouter {
	return &AuthRouter{
		AuthController: authController,
	}
}

// Setup registers authentication routes
func (r *AuthRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")
	routes := v1.Group("/User")

	routes.POST("/register", r.AuthController.Register)
	routes.POST("/login", r.AuthController.Login)
	routes.POST("/refresh", r.AuthController.Refresh)
	routes.POST("/forgot-password", r.AuthController.ForgotPassword)
	routes.POST("/reset-password", r.AuthController.ResetPassword)
	routes.GET("/google/login", r.AuthController.GoogleAuthURL)
	routes.POST("/google/callback", r.AuthController.GoogleCallback)
	routes.GET("/counselors", r.AuthController.SelectCounselors)

	routes.POST("/logout", r.AuthController.Logout, mw.AuthMiddleware())
	routes.GET("/SelectUserProfile", r.AuthController.SelectUserProfile, mw.AuthMiddleware())
	routes.PATCH("/profile", r.AuthController.UpdateProfile, mw.AuthMiddleware())
}
