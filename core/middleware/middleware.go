package middleware

import (
	"admission-api/core/cache"
	"admission-api/core/constants"
	"admission-api/core/controller"
	"admission-api/core/errors"
	"admission-api/core/logger"
	"admission-api/core/utils"

	"github.com/labstack/echo/v4"
)

type Middleware struct {
	cache *cache.Cache
	base  controller.BaseController
}

func NewMiddleware(c *cache.Cache) *Middleware {
	return &Middleware{
		cache: c,
		base:  controller.NewBaseController(),
	}
}

// AuthMiddleware validates the bearer token, rejects blacklisted tokens and
// stores the parsed claims in the echo context under ContextTokenData.
func (m *Middleware) AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := utils.GetTokenFromHeader(c.Request().Header.Get("Authorization"))
			if token == "" {
				return m.base.Unauthorized(errors.ErrMissingAuthorizationHeader, "Missing or malformed Authorization header")
			}

			if m.cache != nil {
				blacklisted, err := m.cache.IsTokenBlacklisted(c.Request().Context(), token)
				if err != nil {
					// Redis trouble must not lock every user out; log and continue.
					logger.Error("Middleware:AuthMiddleware:IsTokenBlacklisted:Error:", err)
				} else if blacklisted {
					return m.base.Unauthorized(errors.ErrUnauthorized, "Token has been revoked")
				}
			}

			claims, err := utils.ValidateAndParseToken(token)
			if err != nil {
				return m.base.Unauthorized(errors.ErrUnauthorized, "Invalid or expired token")
			}
			if claims.Scope != constants.ScopeTokenAccess {
				return m.base.Unauthorized(errors.ErrUnauthorized, "Token scope is not valid for this resource")
			}

			c.Set(constants.ContextTokenData, claims)
			return next(c)
		}
	}
}

// RequireRole guards consultant/admin routes. Must run after AuthMiddleware.
func (m *Middleware) RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get(constants.ContextTokenData).(*utils.TokenClaims)
			if !ok {
				return m.base.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
			}
			for _, role := range roles {
				if claims.Role == role {
					return next(c)
				}
			}
			return m.base.Forbidden(errors.ErrForbidden, "Insufficient role")
		}
	}
}

// TokenClaims pulls the parsed claims back out of the context.
func TokenClaims(c echo.Context) (*utils.TokenClaims, bool) {
	claims, ok := c.Get(constants.ContextTokenData).(*utils.TokenClaims)
	return claims, ok
}
