package controllers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/c14220110/findmyclinic-backend/internal/account/services"
	"github.com/c14220110/findmyclinic-backend/internal/common/middlewares"
	"github.com/c14220110/findmyclinic-backend/internal/common/response"
	"github.com/c14220110/findmyclinic-backend/internal/models"
	"github.com/c14220110/findmyclinic-backend/pkg/storage"
)

type StaffController struct {
	StaffService *services.StaffService
}

func NewStaffController(service *services.StaffService) *StaffController {
	return &StaffController{StaffService: service}
}

func (sc *StaffController) CreateStaff(c echo.Context) error {
	var input models.NewClinicStaff
	if err := c.Bind(&input); err != nil {
		return response.Error(c, http.StatusBadRequest, "Failed to create clinic staff")
	}

	staff, err := sc.StaffService.Create(c.Request().Context(), input)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			return response.Error(c, http.StatusBadRequest, "Failed to create clinic staff")
		}
		zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg("create clinic staff")
		return response.Error(c, http.StatusInternalServerError, "Failed to create clinic staff")
	}
	return response.JSON(c, http.StatusCreated, "Clinic staff created successfully", staff)
}

func (sc *StaffController) GetMyStaff(c echo.Context) error {
	claims, _ := middlewares.ClaimsFrom(c)

	staff, err := sc.StaffService.GetByUserID(c.Request().Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return response.Error(c, http.StatusNotFound, "Staff profile not found")
		}
		zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg("get clinic staff")
		return response.Error(c, http.StatusInternalServerError, "Failed to fetch staff profile")
	}
	return response.JSON(c, http.StatusOK, "Staff profile retrieved successfully", staff)
}
