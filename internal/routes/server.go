package routes

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/c14220110/findmyclinic-backend/internal/common/middlewares"
)

// NewServer returns an echo instance with the standard middleware chain and
// every route registered.
func NewServer(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middlewares.HTTPErrorHandler(deps.Logger)

	e.Use(echomw.RequestID())
	e.Use(middlewares.ContextLogger(deps.Logger))
	e.Use(middlewares.RequestLogger(deps.Logger))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(corsConfig(deps.Config.CORSOrigins)))
	if deps.Config.RateLimitPerSecond > 0 {
		e.Use(echomw.RateLimiter(echomw.NewRateLimiterMemoryStore(rate.Limit(deps.Config.RateLimitPerSecond))))
	}

	Init(e, deps)
	return e
}

func corsConfig(origins []string) echomw.CORSConfig {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	wildcard := len(origins) == 1 && origins[0] == "*"
	return echomw.CORSConfig{
		AllowOrigins:     origins,
		AllowCredentials: !wildcard,
	}
}
