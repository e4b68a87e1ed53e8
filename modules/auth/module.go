package auth

import (
	"admission-api/core/cache"
	"admission-api/core/config"
	"admission-api/core/database"
	"admission-api/core/middleware"
	"admission-api/modules/auth/controller"
	"admission-api/modules/auth/repository"
	"admission-api/modules/auth/router"
	"admission-api/modules/auth/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Echo, db database.Database, c *cache.Cache, mw *middleware.Middleware) {
	repo := repository.NewUserRepository(db)
	authSvc := service.NewAuthService(repo, c)
	googleSvc := service.NewGoogleOAuthService(repo, authSvc, c, config.Get().GoogleAPI)
	userSvc := service.NewUserService(repo)

	ctrl := controller.NewAuthController(authSvc, googleSvc, userSvc)
	router.NewAuthRouter(ctrl).Setup(e, mw)
}
