package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/c14220110/findmyclinic-backend/config"
	accountControllers "github.com/c14220110/findmyclinic-backend/internal/account/controllers"
	accountServices "github.com/c14220110/findmyclinic-backend/internal/account/services"
	"github.com/c14220110/findmyclinic-backend/internal/common/middlewares"
	directoryControllers "github.com/c14220110/findmyclinic-backend/internal/directory/controllers"
	directoryServices "github.com/c14220110/findmyclinic-backend/internal/directory/services"
	emergencyControllers "github.com/c14220110/findmyclinic-backend/internal/emergency/controllers"
	emergencyServices "github.com/c14220110/findmyclinic-backend/internal/emergency/services"
	"github.com/c14220110/findmyclinic-backend/internal/models"
	queueControllers "github.com/c14220110/findmyclinic-backend/internal/queue/controllers"
	queueServices "github.com/c14220110/findmyclinic-backend/internal/queue/services"
	"github.com/c14220110/findmyclinic-backend/pkg/storage"
	"github.com/c14220110/findmyclinic-backend/pkg/utils"
	"github.com/c14220110/findmyclinic-backend/ws"
)

// Deps are the shared resources every route is built from.
type Deps struct {
	Store  storage.Storage
	Config *config.Config
	Logger zerolog.Logger
	// Hub serves /ws/queue. Publisher receives domain events and defaults
	// to Hub.
	Hub       *ws.Hub
	Publisher ws.Publisher
	Revoked   *utils.RevocationList
}

type noopPublisher struct{}

func (noopPublisher) Publish(ws.Event) {}

// Init registers every route on e.
func Init(e *echo.Echo, deps Deps) {
	publisher := deps.Publisher
	if publisher == nil {
		if deps.Hub != nil {
			publisher = deps.Hub
		} else {
			publisher = noopPublisher{}
		}
	}
	if deps.Revoked == nil {
		deps.Revoked = utils.NewRevocationList()
	}
	cfg := deps.Config
	secret := []byte(cfg.JWTSecret)

	// Services
	clinicService := directoryServices.NewClinicService(deps.Store, deps.Logger)
	contactService := directoryServices.NewContactService(deps.Store, deps.Logger)
	statsService := directoryServices.NewStatsService(deps.Store)
	patientService := queueServices.NewPatientService(deps.Store, deps.Logger)
	queueService := queueServices.NewQueueService(deps.Store, deps.Logger)
	authService := accountServices.NewAuthService(deps.Store, accountServices.AuthConfig{
		Secret:     secret,
		SessionTTL: cfg.SessionTTL,
		BcryptCost: cfg.BcryptCost,
		Revoked:    deps.Revoked,
	}, deps.Logger)
	qrService := accountServices.NewQRService(deps.Store, cfg.QRCodeTTL, deps.Logger)
	profileService := accountServices.NewProfileService(deps.Store, qrService, deps.Logger)
	staffService := accountServices.NewStaffService(deps.Store, deps.Logger)
	ambulanceService := emergencyServices.NewAmbulanceService(deps.Store, deps.Logger)

	// Controllers
	clinicController := directoryControllers.NewClinicController(clinicService, publisher)
	contactController := directoryControllers.NewContactController(contactService)
	statsController := directoryControllers.NewStatsController(statsService)
	patientController := queueControllers.NewPatientController(patientService)
	queueController := queueControllers.NewQueueController(queueService, publisher)
	authController := accountControllers.NewAuthController(authService, !cfg.IsDevelopment())
	profileController := accountControllers.NewProfileController(profileService)
	qrController := accountControllers.NewQRController(qrService)
	staffController := accountControllers.NewStaffController(staffService)
	ambulanceController := emergencyControllers.NewAmbulanceController(ambulanceService, publisher)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	if deps.Hub != nil {
		e.GET("/ws/queue", ws.ServeWS(deps.Hub))
	}

	api := e.Group("/api", middlewares.Session(middlewares.SessionConfig{Secret: secret, Revoked: deps.Revoked}))
	session := middlewares.RequireSession()
	staffOnly := middlewares.RequireUserType(models.UserTypeStaff)

	// Directory
	clinics := api.Group("/clinics")
	clinics.GET("", clinicController.ListClinics)
	clinics.POST("", clinicController.CreateClinic)
	clinics.GET("/nearby", clinicController.NearbyClinics)
	clinics.GET("/:id", clinicController.GetClinic)
	clinics.PATCH("/:id", clinicController.UpdateClinic, session, staffOnly)
	clinics.GET("/:clinicId/queue", queueController.ListTokens)
	clinics.POST("/:clinicId/queue", queueController.JoinQueue)

	api.POST("/contact", contactController.CreateContactRequest)
	api.GET("/contact", contactController.ListContactRequests)
	api.GET("/stats", statsController.GetStats)

	// Queue
	api.POST("/patients", patientController.RegisterPatient)
	api.GET("/queue-tokens/:id", queueController.GetToken)
	api.PUT("/queue-tokens/:id/status", queueController.UpdateTokenStatus, session, staffOnly)
	api.GET("/queue/estimate", queueController.Estimate)

	// Account
	auth := api.Group("/auth")
	auth.POST("/signup", authController.Signup)
	auth.POST("/login", authController.Login)
	auth.POST("/logout", authController.Logout)
	auth.GET("/session", authController.Session)

	profiles := api.Group("/patient-profiles", session)
	profiles.POST("", profileController.CreateProfile)
	profiles.GET("/me", profileController.GetMyProfile)
	profiles.PUT("/me", profileController.UpdateMyProfile)

	qr := api.Group("/qr-codes")
	qr.POST("/scan", qrController.ScanQRCode, session)
	qr.POST("/regenerate", qrController.RegenerateQRCode, session)
	qr.GET("/:profileId", qrController.GetQRCode)
	qr.GET("/:profileId/image", qrController.GetQRCodeImage)

	api.POST("/clinic-staff", staffController.CreateStaff)
	api.GET("/clinic-staff/me", staffController.GetMyStaff, session)

	// Emergency
	ambulance := api.Group("/ambulance-requests")
	ambulance.POST("", ambulanceController.CreateRequest)
	ambulance.GET("", ambulanceController.ListRequests)
	ambulance.GET("/:id", ambulanceController.GetRequest)
	ambulance.PUT("/:id/status", ambulanceController.UpdateStatus)
}
