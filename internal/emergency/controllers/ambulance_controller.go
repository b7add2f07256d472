package controllers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/c14220110/findmyclinic-backend/internal/common/middlewares"
	"github.com/c14220110/findmyclinic-backend/internal/common/response"
	"github.com/c14220110/findmyclinic-backend/internal/emergency/services"
	"github.com/c14220110/findmyclinic-backend/internal/models"
	"github.com/c14220110/findmyclinic-backend/pkg/storage"
	"github.com/c14220110/findmyclinic-backend/ws"
)

type AmbulanceController struct {
	AmbulanceService *services.AmbulanceService
	Hub              ws.Publisher
}

func NewAmbulanceController(service *services.AmbulanceService, hub ws.Publisher) *AmbulanceController {
	return &AmbulanceController{AmbulanceService: service, Hub: hub}
}

// CreateRequest handles POST /api/ambulance-requests. A session is optional.
func (ac *AmbulanceController) CreateRequest(c echo.Context) error {
	var input models.NewAmbulanceRequest
	if err := c.Bind(&input); err != nil {
		return response.Error(c, http.StatusBadRequest, "Failed to create ambulance request")
	}

	userID := ""
	if claims, ok := middlewares.ClaimsFrom(c); ok {
		userID = claims.UserID
	}

	req, err := ac.AmbulanceService.Create(c.Request().Context(), userID, input)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			return response.Error(c, http.StatusBadRequest, "Failed to create ambulance request")
		}
		zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg("create ambulance request")
		return response.Error(c, http.StatusInternalServerError, "Failed to create ambulance request")
	}

	ac.Hub.Publish(ws.Event{Type: ws.EventAmbulanceCreated, Data: req})
	return response.JSON(c, http.StatusCreated, "Ambulance request created successfully", req)
}

func (ac *AmbulanceController) ListRequests(c echo.Context) error {
	reqs, err := ac.AmbulanceService.List(c.Request().Context())
	if err != nil {
		zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg("list ambulance requests")
		return response.Error(c, http.StatusInternalServerError, "Failed to fetch ambulance requests")
	}
	return response.JSON(c, http.StatusOK, "Ambulance requests retrieved successfully", reqs)
}

func (ac *AmbulanceController) GetRequest(c echo.Context) error {
	req, err := ac.AmbulanceService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return response.Error(c, http.StatusNotFound, "Ambulance request not found")
		}
		zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg("get ambulance request")
		return response.Error(c, http.StatusInternalServerError, "Failed to fetch ambulance request")
	}
	return response.JSON(c, http.StatusOK, "Ambulance request retrieved successfully", req)
}

type statusUpdateRequest struct {
	Status           string  `json:"status"`
	EstimatedArrival *string `json:"estimatedArrival"`
}

func (ac *AmbulanceController) UpdateStatus(c echo.Context) error {
	var body statusUpdateRequest
	if err := c.Bind(&body); err != nil {
		return response.Error(c, http.StatusBadRequest, "Invalid status")
	}

	req, err := ac.AmbulanceService.UpdateStatus(c.Request().Context(), c.Param("id"), body.Status, body.EstimatedArrival)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidStatus):
			return response.Error(c, http.StatusBadRequest, "Invalid status")
		case errors.Is(err, storage.ErrNotFound):
			return response.Error(c, http.StatusNotFound, "Ambulance request not found")
		}
		zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg("update ambulance status")
		return response.Error(c, http.StatusInternalServerError, "Failed to update ambulance request")
	}

	ac.Hub.Publish(ws.Event{Type: ws.EventAmbulanceUpdated, Data: req})
	return response.JSON(c, http.StatusOK, "Ambulance request updated successfully", req)
}
