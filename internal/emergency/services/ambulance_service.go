package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/c14220110/findmyclinic-backend/internal/models"
	"github.com/c14220110/findmyclinic-backend/pkg/storage"
)

var (
	ErrValidation    = errors.New("validation failed")
	ErrInvalidStatus = errors.New("unknown ambulance status")
)

type AmbulanceService struct {
	Store  storage.Storage
	Logger zerolog.Logger

	now func() time.Time
}

func NewAmbulanceService(store storage.Storage, logger zerolog.Logger) *AmbulanceService {
	return &AmbulanceService{Store: store, Logger: logger, now: time.Now}
}

// Create files an ambulance request. userID is empty for anonymous callers;
// otherwise the caller's patient profile, if any, is attached.
func (s *AmbulanceService) Create(ctx context.Context, userID string, input models.NewAmbulanceRequest) (models.AmbulanceRequest, error) {
	if missing := missingFields(input.AmbulanceDetails); len(missing) > 0 {
		return models.AmbulanceRequest{}, fmt.Errorf("%w: missing %s", ErrValidation, strings.Join(missing, ", "))
	}
	if input.Status == "" {
		input.Status = models.AmbulanceRequested
	}
	if !models.ValidAmbulanceStatus(input.Status) {
		return models.AmbulanceRequest{}, fmt.Errorf("%w: unknown status %q", ErrValidation, input.Status)
	}

	input.PatientProfileID = nil
	if userID != "" {
		profile, err := s.Store.GetPatientProfileByUserID(ctx, userID)
		switch {
		case err == nil:
			input.PatientProfileID = &profile.ID
		case !errors.Is(err, storage.ErrNotFound):
			return models.AmbulanceRequest{}, err
		}
	}

	if input.EstimatedArrival == nil || *input.EstimatedArrival == "" {
		eta := EstimatedArrival(s.now(), input.UrgencyLevel)
		input.EstimatedArrival = &eta
	}

	req, err := s.Store.CreateAmbulanceRequest(ctx, input)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidInput) {
			return models.AmbulanceRequest{}, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return models.AmbulanceRequest{}, err
	}
	s.Logger.Info().Str("requestId", req.ID).Str("urgency", req.UrgencyLevel).Msg("ambulance requested")
	return req, nil
}

// EstimatedArrival is now plus the urgency table's minutes, as RFC 3339.
func EstimatedArrival(now time.Time, urgency string) string {
	minutes := models.EstimateMinutes(urgency)
	return now.Add(time.Duration(minutes) * time.Minute).UTC().Format(time.RFC3339)
}

func missingFields(d models.AmbulanceDetails) []string {
	required := []struct {
		name  string
		value string
	}{
		{"emergencyType", d.EmergencyType},
		{"urgencyLevel", d.UrgencyLevel},
		{"patientName", d.PatientName},
		{"patientAge", d.PatientAge},
		{"contactPhone", d.ContactPhone},
		{"pickupAddress", d.PickupAddress},
		{"city", d.City},
		{"state", d.State},
		{"zipCode", d.ZipCode},
		{"symptoms", d.Symptoms},
		{"hasInsurance", d.HasInsurance},
	}
	var missing []string
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

func (s *AmbulanceService) List(ctx context.Context) ([]models.AmbulanceRequest, error) {
	return s.Store.GetAmbulanceRequests(ctx)
}

func (s *AmbulanceService) Get(ctx context.Context, id string) (models.AmbulanceRequest, error) {
	return s.Store.GetAmbulanceRequestByID(ctx, id)
}

func (s *AmbulanceService) UpdateStatus(ctx context.Context, id, status string, estimatedArrival *string) (models.AmbulanceRequest, error) {
	if !models.ValidAmbulanceStatus(status) {
		return models.AmbulanceRequest{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	req, err := s.Store.UpdateAmbulanceRequestStatus(ctx, id, status, estimatedArrival, s.now())
	if err != nil {
		return models.AmbulanceRequest{}, err
	}
	s.Logger.Info().Str("requestId", id).Str("status", status).Msg("ambulance status changed")
	return req, nil
}
