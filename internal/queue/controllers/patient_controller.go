package controllers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/c14220110/findmyclinic-backend/internal/common/response"
	"github.com/c14220110/findmyclinic-backend/internal/models"
	"github.com/c14220110/findmyclinic-backend/internal/queue/services"
)

type PatientController struct {
	PatientService *services.PatientService
}

func NewPatientController(service *services.PatientService) *PatientController {
	return &PatientController{PatientService: service}
}

// RegisterPatient handles POST /api/patients. A known phone number returns
// the existing patient with 200.
func (pc *PatientController) RegisterPatient(c echo.Context) error {
	var input models.NewPatient
	if err := c.Bind(&input); err != nil {
		return response.Error(c, http.StatusBadRequest, "Invalid patient data")
	}

	patient, created, err := pc.PatientService.RegisterPatient(c.Request().Context(), input)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			return response.Error(c, http.StatusBadRequest, "Invalid patient data")
		}
		zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg("register patient")
		return response.Error(c, http.StatusInternalServerError, "Failed to register patient")
	}
	if !created {
		return response.JSON(c, http.StatusOK, "Patient already registered", patient)
	}
	return response.JSON(c, http.StatusCreated, "Patient registered successfully", patient)
}
