package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/c14220110/findmyclinic-backend/internal/common/response"
	"github.com/c14220110/findmyclinic-backend/internal/directory/services"
)

type StatsController struct {
	StatsService *services.StatsService
}

func NewStatsController(service *services.StatsService) *StatsController {
	return &StatsController{StatsService: service}
}

// GetStats handles GET /api/stats for the landing page counters.
func (sc *StatsController) GetStats(c echo.Context) error {
	stats, err := sc.StatsService.GetStats(c.Request().Context())
	if err != nil {
		zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg("stats")
		return response.Error(c, http.StatusInternalServerError, "Failed to fetch stats")
	}
	return response.JSON(c, http.StatusOK, "Stats retrieved successfully", stats)
}
