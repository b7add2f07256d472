package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/c14220110/findmyclinic-backend/internal/account/services"
	"github.com/c14220110/findmyclinic-backend/internal/common/middlewares"
	"github.com/c14220110/findmyclinic-backend/internal/common/response"
)

type AuthController struct {
	AuthService *services.AuthService
	// SecureCookie marks the session cookie Secure; off in development.
	SecureCookie bool
}

func NewAuthController(service *services.AuthService, secureCookie bool) *AuthController {
	return &AuthController{AuthService: service, SecureCookie: secureCookie}
}

type SignupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	UserType string `json:"userType"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func (ac *AuthController) Signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "Failed to create user account")
	}

	session, err := ac.AuthService.Signup(c.Request().Context(), req.Username, req.Password, req.UserType)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUsernameTaken):
			return response.Error(c, http.StatusBadRequest, "Username already exists")
		case errors.Is(err, services.ErrValidation):
			return response.Error(c, http.StatusBadRequest, "Failed to create user account")
		}
		zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg("signup")
		return response.Error(c, http.StatusInternalServerError, "Failed to create user account")
	}

	ac.setSessionCookie(c, session.Token, session.ExpiresAt)
	return response.JSON(c, http.StatusCreated, "User created successfully", echo.Map{
		"user":     userSummary{ID: session.User.ID, Username: session.User.Username},
		"userType": session.UserType,
		"token":    session.Token,
	})
}

func (ac *AuthController) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "Invalid request payload")
	}

	session, err := ac.AuthService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return response.Error(c, http.StatusUnauthorized, "Invalid credentials")
		}
		zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg("login")
		return response.Error(c, http.StatusInternalServerError, "Login failed")
	}

	ac.setSessionCookie(c, session.Token, session.ExpiresAt)
	return response.JSON(c, http.StatusOK, "Login successful", echo.Map{
		"user":        userSummary{ID: session.User.ID, Username: session.User.Username},
		"userType":    session.UserType,
		"clinicStaff": session.ClinicStaff,
		"token":       session.Token,
	})
}

func (ac *AuthController) Logout(c echo.Context) error {
	if claims, ok := middlewares.ClaimsFrom(c); ok {
		ac.AuthService.Logout(claims)
	}
	c.SetCookie(&http.Cookie{
		Name:     middlewares.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   ac.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return response.JSON(c, http.StatusOK, "Logout successful", nil)
}

// Session handles GET /api/auth/session.
func (ac *AuthController) Session(c echo.Context) error {
	claims, ok := middlewares.ClaimsFrom(c)
	if !ok {
		return response.JSON(c, http.StatusOK, "No active session", echo.Map{"authenticated": false})
	}
	return response.JSON(c, http.StatusOK, "Session active", echo.Map{
		"authenticated": true,
		"userId":        claims.UserID,
		"userType":      claims.UserType,
	})
}

func (ac *AuthController) setSessionCookie(c echo.Context, token string, exp time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     middlewares.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   ac.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
