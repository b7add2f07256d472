package controllers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/c14220110/findmyclinic-backend/internal/common/middlewares"
	"github.com/c14220110/findmyclinic-backend/internal/common/response"
	"github.com/c14220110/findmyclinic-backend/internal/directory/services"
	"github.com/c14220110/findmyclinic-backend/internal/models"
	"github.com/c14220110/findmyclinic-backend/pkg/storage"
	"github.com/c14220110/findmyclinic-backend/ws"
)

type ClinicController struct {
	ClinicService *services.ClinicService
	Hub           ws.Publisher
}

func NewClinicController(service *services.ClinicService, hub ws.Publisher) *ClinicController {
	return &ClinicController{ClinicService: service, Hub: hub}
}

// ListClinics handles GET /api/clinics?search=&area=
func (cc *ClinicController) ListClinics(c echo.Context) error {
	clinics, err := cc.ClinicService.ListClinics(c.Request().Context(), models.ClinicQuery{
		Search: c.QueryParam("search"),
		Area:   c.QueryParam("area"),
	})
	if err != nil {
		zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg("list clinics")
		return response.Error(c, http.StatusInternalServerError, "Failed to fetch clinics")
	}
	return response.JSON(c, http.StatusOK, "Clinics retrieved successfully", clinics)
}

// NearbyClinics handles GET /api/clinics/nearby?lat=&lng=&radiusKm=&limit=
func (cc *ClinicController) NearbyClinics(c echo.Context) error {
	lat, errLat := strconv.ParseFloat(c.QueryParam("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.QueryParam("lng"), 64)
	if errLat != nil || errLng != nil {
		return response.Error(c, http.StatusBadRequest, "lat and lng must be numbers")
	}

	q := services.NearbyQuery{Lat: lat, Lng: lng}
	if v := c.QueryParam("radiusKm"); v != "" {
		radius, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(radius) || math.IsInf(radius, 0) || radius <= 0 {
			return response.Error(c, http.StatusBadRequest, "radiusKm must be a positive number")
		}
		q.RadiusKm = radius
	}
	if v := c.QueryParam("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 {
			return response.Error(c, http.StatusBadRequest, "limit must be a positive integer")
		}
		q.Limit = limit
	}

	clinics, err := cc.ClinicService.Nearby(c.Request().Context(), q)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			return response.Error(c, http.StatusBadRequest, "Invalid coordinates")
		}
		zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg("nearby clinics")
		return response.Error(c, http.StatusInternalServerError, "Failed to fetch clinics")
	}
	return response.JSON(c, http.StatusOK, "Nearby clinics retrieved successfully", clinics)
}

func (cc *ClinicController) GetClinic(c echo.Context) error {
	clinic, err := cc.ClinicService.GetClinic(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return response.Error(c, http.StatusNotFound, "Clinic not found")
		}
		zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg("get clinic")
		return response.Error(c, http.StatusInternalServerError, "Failed to fetch clinic")
	}
	return response.JSON(c, http.StatusOK, "Clinic retrieved successfully", clinic)
}

func (cc *ClinicController) CreateClinic(c echo.Context) error {
	var input models.NewClinic
	if err := c.Bind(&input); err != nil {
		return response.Error(c, http.StatusBadRequest, "Invalid clinic data")
	}
	clinic, err := cc.ClinicService.CreateClinic(c.Request().Context(), input)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			return response.Error(c, http.StatusBadRequest, "Invalid clinic data")
		}
		zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg("create clinic")
		return response.Error(c, http.StatusInternalServerError, "Failed to create clinic")
	}
	return response.JSON(c, http.StatusCreated, "Clinic created successfully", clinic)
}

// UpdateClinic handles PATCH /api/clinics/:id for the clinic's own staff.
func (cc *ClinicController) UpdateClinic(c echo.Context) error {
	claims, _ := middlewares.ClaimsFrom(c)

	var update models.ClinicUpdate
	if err := c.Bind(&update); err != nil {
		return response.Error(c, http.StatusBadRequest, "Invalid clinic update")
	}

	id := c.Param("id")
	clinic, err := cc.ClinicService.UpdateClinic(c.Request().Context(), claims.UserID, id, update)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			return response.Error(c, http.StatusBadRequest, "Invalid clinic update")
		case errors.Is(err, storage.ErrNotFound):
			return response.Error(c, http.StatusNotFound, "Clinic not found")
		case errors.Is(err, services.ErrForbidden):
			return response.Error(c, http.StatusForbidden, "Only staff of this clinic can update it")
		}
		zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg("update clinic")
		return response.Error(c, http.StatusInternalServerError, "Failed to update clinic")
	}

	cc.Hub.Publish(ws.Event{Type: ws.EventClinicUpdated, ClinicID: clinic.ID, Data: clinic})
	return response.JSON(c, http.StatusOK, "Clinic updated successfully", clinic)
}
