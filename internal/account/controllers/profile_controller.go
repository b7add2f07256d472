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

type ProfileController struct {
	ProfileService *services.ProfileService
}

func NewProfileController(service *services.ProfileService) *ProfileController {
	return &ProfileController{ProfileService: service}
}

// CreateProfile handles POST /api/patient-profiles. The owner is always the
// session user.
func (pc *ProfileController) CreateProfile(c echo.Context) error {
	claims, _ := middlewares.ClaimsFrom(c)

	var details models.PatientDetails
	if err := c.Bind(&details); err != nil {
		return response.Error(c, http.StatusBadRequest, "Failed to create patient profile")
	}

	out, err := pc.ProfileService.Create(c.Request().Context(), claims.UserID, details)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProfileExists):
			return response.Error(c, http.StatusConflict, "Profile already exists")
		case errors.Is(err, services.ErrValidation):
			return response.Error(c, http.StatusBadRequest, "Failed to create patient profile")
		}
		zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg("create patient profile")
		return response.Error(c, http.StatusInternalServerError, "Failed to create patient profile")
	}
	return response.JSON(c, http.StatusCreated, "Patient profile created successfully", out)
}

func (pc *ProfileController) GetMyProfile(c echo.Context) error {
	claims, _ := middlewares.ClaimsFrom(c)

	out, err := pc.ProfileService.GetByUserID(c.Request().Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return response.Error(c, http.StatusNotFound, "Profile not found")
		}
		zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg("get patient profile")
		return response.Error(c, http.StatusInternalServerError, "Failed to fetch patient profile")
	}
	return response.JSON(c, http.StatusOK, "Patient profile retrieved successfully", out)
}

func (pc *ProfileController) UpdateMyProfile(c echo.Context) error {
	claims, _ := middlewares.ClaimsFrom(c)

	var patch models.PatientProfilePatch
	if err := c.Bind(&patch); err != nil {
		return response.Error(c, http.StatusBadRequest, "Invalid profile data")
	}

	profile, err := pc.ProfileService.Update(c.Request().Context(), claims.UserID, patch)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			return response.Error(c, http.StatusBadRequest, "Invalid profile data")
		case errors.Is(err, storage.ErrNotFound):
			return response.Error(c, http.StatusNotFound, "Profile not found")
		}
		zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg("update patient profile")
		return response.Error(c, http.StatusInternalServerError, "Failed to update patient profile")
	}
	return response.JSON(c, http.StatusOK, "Patient profile updated successfully", profile)
}
