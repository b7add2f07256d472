package controllers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/c14220110/findmyclinic-backend/internal/common/response"
	"github.com/c14220110/findmyclinic-backend/internal/directory/services"
	"github.com/c14220110/findmyclinic-backend/internal/models"
)

type ContactController struct {
	ContactService *services.ContactService
}

func NewContactController(service *services.ContactService) *ContactController {
	return &ContactController{ContactService: service}
}

func (cc *ContactController) CreateContactRequest(c echo.Context) error {
	var input models.NewContactRequest
	if err := c.Bind(&input); err != nil {
		return response.Error(c, http.StatusBadRequest, "Invalid contact request data")
	}
	req, err := cc.ContactService.CreateContactRequest(c.Request().Context(), input)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			return response.Error(c, http.StatusBadRequest, "Invalid contact request data")
		}
		zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg("create contact request")
		return response.Error(c, http.StatusInternalServerError, "Failed to submit contact request")
	}
	return response.JSON(c, http.StatusCreated, "Contact request submitted successfully", req)
}

func (cc *ContactController) ListContactRequests(c echo.Context) error {
	requests, err := cc.ContactService.ListContactRequests(c.Request().Context())
	if err != nil {
		zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg("list contact requests")
		return response.Error(c, http.StatusInternalServerError, "Failed to fetch contact requests")
	}
	return response.JSON(c, http.StatusOK, "Contact requests retrieved successfully", requests)
}
