package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/c14220110/findmyclinic-backend/internal/account/services"
	"github.com/c14220110/findmyclinic-backend/internal/common/middlewares"
	"github.com/c14220110/findmyclinic-backend/internal/common/response"
	"github.com/c14220110/findmyclinic-backend/pkg/storage"
)

type QRController struct {
	QRService *services.QRService
}

func NewQRController(service *services.QRService) *QRController {
	return &QRController{QRService: service}
}

func (qc *QRController) GetQRCode(c echo.Context) error {
	code, err := qc.QRService.GetActive(c.Request().Context(), c.Param("profileId"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return response.Error(c, http.StatusNotFound, "QR code not found")
		}
		zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg("get QR code")
		return response.Error(c, http.StatusInternalServerError, "Failed to fetch QR code")
	}
	return response.JSON(c, http.StatusOK, "QR code retrieved successfully", code)
}

// GetQRCodeImage handles GET /api/qr-codes/:profileId/image?size= and
// responds with a PNG rather than the JSON envelope.
func (qc *QRController) GetQRCodeImage(c echo.Context) error {
	size := 0
	if v := c.QueryParam("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return response.Error(c, http.StatusBadRequest, "size must be an integer")
		}
		size = n
	}

	png, err := qc.QRService.Image(c.Request().Context(), c.Param("profileId"), size)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return response.Error(c, http.StatusNotFound, "QR code not found")
		}
		zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg("render QR code")
		return response.Error(c, http.StatusInternalServerError, "Failed to render QR code")
	}
	return c.Blob(http.StatusOK, "image/png", png)
}

type ScanRequest struct {
	QRCodeData string `json:"qrCodeData"`
}

func (qc *QRController) ScanQRCode(c echo.Context) error {
	claims, _ := middlewares.ClaimsFrom(c)

	var req ScanRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "Invalid QR code format")
	}

	result, err := qc.QRService.Scan(c.Request().Context(), claims.UserID, req.QRCodeData)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidQRFormat):
			return response.Error(c, http.StatusBadRequest, "Invalid QR code format")
		case errors.Is(err, services.ErrInvalidQRType):
			return response.Error(c, http.StatusBadRequest, "Invalid QR code type")
		case errors.Is(err, storage.ErrNotFound):
			return response.Error(c, http.StatusNotFound, "Patient profile not found")
		case errors.Is(err, services.ErrForbidden):
			return response.Error(c, http.StatusForbidden, "Only clinic staff can scan QR codes")
		case errors.Is(err, services.ErrExpired):
			return response.Error(c, http.StatusGone, "QR code expired")
		}
		zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg("scan QR code")
		return response.Error(c, http.StatusInternalServerError, "Failed to scan QR code")
	}
	return response.JSON(c, http.StatusOK, "QR code scanned successfully", result)
}

func (qc *QRController) RegenerateQRCode(c echo.Context) error {
	claims, _ := middlewares.ClaimsFrom(c)

	code, err := qc.QRService.Regenerate(c.Request().Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return response.Error(c, http.StatusNotFound, "Profile not found")
		}
		zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg("regenerate QR code")
		return response.Error(c, http.StatusInternalServerError, "Failed to regenerate QR code")
	}
	return response.JSON(c, http.StatusOK, "QR code regenerated successfully", code)
}
