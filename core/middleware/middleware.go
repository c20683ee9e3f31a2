package middleware

import (
	"net/http"
	"strings"

	"campus-scheduler/core/constants"
	"campus-scheduler/core/errors"
	"campus-scheduler/core/logger"
	"campus-scheduler/core/utils"

	"github.com/labstack/echo/v4"
)

type Middleware struct{}

func NewMiddleware() *Middleware {
	return &Middleware{}
}

// AuthMiddleware validates the bearer token and stores the claims in the
// request context under constants.ContextTokenData.
func (m *Middleware) AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return c.JSON(http.StatusUnauthorized,
					errors.NewAppError(errors.ErrMissingAuthorizationHeader, "Missing Authorization header", nil))
			}

			token := header
			if strings.HasPrefix(header, "Bearer ") {
				token = strings.TrimPrefix(header, "Bearer ")
			}

			claims, appErr := utils.ValidateAndParseToken(token)
			if appErr != nil {
				logger.Warn("Middleware:Auth:InvalidToken", "error", appErr)
				return c.JSON(http.StatusUnauthorized, appErr)
			}

			c.Set(constants.ContextTokenData, claims)
			return next(c)
		}
	}
}

// RequireRole allows the request only for the listed roles. Admin always passes.
func (m *Middleware) RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get(constants.ContextTokenData).(*utils.TokenClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized,
					errors.NewAppError(errors.ErrUnauthorized, "User not authenticated", nil))
			}
			if claims.Role == constants.RoleAdmin {
				return next(c)
			}
			for _, role := range roles {
				if claims.Role == role {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden,
				errors.NewAppError(errors.ErrForbidden, "Insufficient role", nil))
		}
	}
}
