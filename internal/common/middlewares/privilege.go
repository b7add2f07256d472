package middlewares

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/c14220110/findmyclinic-backend/internal/common/response"
)

// RequireUserType allows the request through only when the session's
// userType is one of userTypes. Use after RequireSession.
func RequireUserType(userTypes ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := ClaimsFrom(c)
			if !ok {
				return response.Error(c, http.StatusUnauthorized, "Authentication required")
			}
			for _, t := range userTypes {
				if claims.UserType == t {
					return next(c)
				}
			}
			return response.Error(c, http.StatusForbidden, "Insufficient privileges")
		}
	}
}
