package controllers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/c14220110/findmyclinic-backend/internal/common/middlewares"
	"github.com/c14220110/findmyclinic-backend/internal/common/response"
	"github.com/c14220110/findmyclinic-backend/internal/queue/services"
	"github.com/c14220110/findmyclinic-backend/pkg/storage"
	"github.com/c14220110/findmyclinic-backend/ws"
)

type QueueController struct {
	QueueService *services.QueueService
	Hub          ws.Publisher
}

func NewQueueController(service *services.QueueService, hub ws.Publisher) *QueueController {
	return &QueueController{QueueService: service, Hub: hub}
}

func (qc *QueueController) ListTokens(c echo.Context) error {
	tokens, err := qc.QueueService.ListTokens(c.Request().Context(), c.Param("clinicId"))
	if err != nil {
		zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg("list queue tokens")
		return response.Error(c, http.StatusInternalServerError, "Failed to fetch queue")
	}
	return response.JSON(c, http.StatusOK, "Queue retrieved successfully", tokens)
}

// JoinQueue handles POST /api/clinics/:clinicId/queue.
func (qc *QueueController) JoinQueue(c echo.Context) error {
	var input services.JoinQueueInput
	if err := c.Bind(&input); err != nil {
		return response.Error(c, http.StatusBadRequest, "Failed to create queue token")
	}

	token, err := qc.QueueService.JoinQueue(c.Request().Context(), c.Param("clinicId"), input)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return response.Error(c, http.StatusNotFound, "Clinic not found")
		case errors.Is(err, services.ErrValidation), errors.Is(err, storage.ErrInvalidInput):
			return response.Error(c, http.StatusBadRequest, "Failed to create queue token")
		}
		zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg("join queue")
		return response.Error(c, http.StatusInternalServerError, "Failed to create queue token")
	}

	qc.Hub.Publish(ws.Event{Type: ws.EventQueueTokenCreated, ClinicID: token.ClinicID, Data: token})
	return response.JSON(c, http.StatusCreated, "Queue token created successfully", token)
}

func (qc *QueueController) GetToken(c echo.Context) error {
	token, err := qc.QueueService.GetToken(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return response.Error(c, http.StatusNotFound, "Queue token not found")
		}
		zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg("get queue token")
		return response.Error(c, http.StatusInternalServerError, "Failed to fetch queue token")
	}
	return response.JSON(c, http.StatusOK, "Queue token retrieved successfully", token)
}

type statusRequest struct {
	Status string `json:"status"`
}

// UpdateTokenStatus handles PUT /api/queue-tokens/:id/status for staff.
func (qc *QueueController) UpdateTokenStatus(c echo.Context) error {
	claims, _ := middlewares.ClaimsFrom(c)

	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "Invalid status")
	}

	token, err := qc.QueueService.UpdateTokenStatus(c.Request().Context(), claims.UserID, c.Param("id"), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidStatus):
			return response.Error(c, http.StatusBadRequest, "Invalid status")
		case errors.Is(err, storage.ErrNotFound):
			return response.Error(c, http.StatusNotFound, "Queue token not found")
		case errors.Is(err, services.ErrForbidden):
			return response.Error(c, http.StatusForbidden, "Only staff of this clinic can update its queue")
		case errors.Is(err, services.ErrInvalidTransition):
			return response.Error(c, http.StatusConflict, "Invalid status transition")
		}
		zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg("update queue token status")
		return response.Error(c, http.StatusInternalServerError, "Failed to update queue token")
	}

	qc.Hub.Publish(ws.Event{Type: ws.EventQueueTokenUpdated, ClinicID: token.ClinicID, Data: token})
	return response.JSON(c, http.StatusOK, "Queue token updated successfully", token)
}

// Estimate handles GET /api/queue/estimate?urgency=
func (qc *QueueController) Estimate(c echo.Context) error {
	return response.JSON(c, http.StatusOK, "Estimate retrieved successfully", qc.QueueService.Estimate(c.QueryParam("urgency")))
}
