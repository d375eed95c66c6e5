package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	jwtpkg "github.com/ridecrew/ridecrew/internal/pkg/jwt"
	"github.com/ridecrew/ridecrew/internal/pkg/models"
	"github.com/ridecrew/ridecrew/internal/utils"
)

// Context keys populated by JWTAuthMiddleware
const (
	ContextUserID   = "user_id"
	ContextUserName = "user_name"
	ContextUserRole = "user_role"
)

// JWTAuthMiddleware creates a middleware for JWT authentication
func JWTAuthMiddleware(config models.JWTConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return utils.UnauthorizedResponse(c, "Authorization header is required")
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return utils.UnauthorizedResponse(c, "Invalid authorization format")
			}

			claims, err := jwtpkg.ValidateToken(parts[1], config.Secret)
			if err != nil {
				return utils.UnauthorizedResponse(c, "Invalid token")
			}

			identity, err := jwtpkg.IdentityFromClaims(claims)
			if err != nil {
				return utils.UnauthorizedResponse(c, "Invalid token: "+err.Error())
			}

			c.Set(ContextUserID, identity.UserID)
			c.Set(ContextUserName, identity.Name)
			c.Set(ContextUserRole, identity.Role)

			return next(c)
		}
	}
}
