package middlewares

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/c14220110/findmyclinic-backend/internal/common/response"
	"github.com/c14220110/findmyclinic-backend/pkg/utils"
)

const (
	// ContextKeyClaims holds *utils.Claims for an authenticated request.
	ContextKeyClaims = "claims"
	// SessionCookie is the cookie carrying the session token.
	SessionCookie = "session"
)

type SessionConfig struct {
	Secret  []byte
	Revoked *utils.RevocationList
}

// Session reads a token from the Authorization header or the session cookie.
// A missing or invalid token leaves the request anonymous; RequireSession
// decides whether that is acceptable.
func Session(cfg SessionConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenStr := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if tokenStr == "" {
				if cookie, err := c.Cookie(SessionCookie); err == nil {
					tokenStr = cookie.Value
				}
			}
			if tokenStr == "" {
				return next(c)
			}

			claims, err := utils.ValidateJWTToken(cfg.Secret, tokenStr)
			if err != nil {
				zerolog.Ctx(c.Request().Context()).Debug().Err(err).Msg("ignoring session token")
				return next(c)
			}
			if cfg.Revoked != nil && cfg.Revoked.IsRevoked(claims.ID) {
				return next(c)
			}
			c.Set(ContextKeyClaims, claims)
			return next(c)
		}
	}
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// RequireSession rejects anonymous requests with 401.
func RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := ClaimsFrom(c); !ok {
				return response.Error(c, http.StatusUnauthorized, "Authentication required")
			}
			return next(c)
		}
	}
}

// ClaimsFrom returns the session claims stored by Session.
func ClaimsFrom(c echo.Context) (*utils.Claims, bool) {
	claims, ok := c.Get(ContextKeyClaims).(*utils.Claims)
	return claims, ok && claims != nil
}
