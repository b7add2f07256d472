package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/c14220110/findmyclinic-backend/internal/models"
	"github.com/c14220110/findmyclinic-backend/pkg/storage"
)

type ProfileService struct {
	Store  storage.Storage
	QR     *QRService
	Logger zerolog.Logger
}

func NewProfileService(store storage.Storage, qr *QRService, logger zerolog.Logger) *ProfileService {
	return &ProfileService{Store: store, QR: qr, Logger: logger}
}

// ProfileWithCode pairs a profile with its active QR code, if any.
type ProfileWithCode struct {
	Profile models.PatientProfile `json:"profile"`
	QRCode  *models.PatientQRCode `json:"qrCode"`
}

// Create stores the profile for userID and issues its first QR code.
func (s *ProfileService) Create(ctx context.Context, userID string, details models.PatientDetails) (ProfileWithCode, error) {
	details.FirstName = strings.TrimSpace(details.FirstName)
	details.LastName = strings.TrimSpace(details.LastName)
	details.Email = strings.TrimSpace(details.Email)
	details.Phone = strings.TrimSpace(details.Phone)
	if details.FirstName == "" || details.LastName == "" || details.Email == "" || details.Phone == "" {
		return ProfileWithCode{}, fmt.Errorf("%w: firstName, lastName, email and phone are required", ErrValidation)
	}

	if _, err := s.Store.GetPatientProfileByUserID(ctx, userID); err == nil {
		return ProfileWithCode{}, ErrProfileExists
	} else if !errors.Is(err, storage.ErrNotFound) {
		return ProfileWithCode{}, err
	}

	profile, err := s.Store.CreatePatientProfile(ctx, models.NewPatientProfile{UserID: &userID, PatientDetails: details})
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return ProfileWithCode{}, ErrProfileExists
		}
		return ProfileWithCode{}, err
	}

	code, err := s.QR.Generate(ctx, profile.ID)
	if err != nil {
		return ProfileWithCode{}, fmt.Errorf("generate QR code: %w", err)
	}
	s.Logger.Info().Str("profileId", profile.ID).Str("userId", userID).Msg("patient profile created")
	return ProfileWithCode{Profile: profile, QRCode: &code}, nil
}

func (s *ProfileService) GetByUserID(ctx context.Context, userID string) (ProfileWithCode, error) {
	profile, err := s.Store.GetPatientProfileByUserID(ctx, userID)
	if err != nil {
		return ProfileWithCode{}, err
	}
	out := ProfileWithCode{Profile: profile}
	code, err := s.Store.GetActiveQRCodeByProfileID(ctx, profile.ID)
	switch {
	case err == nil:
		out.QRCode = &code
	case !errors.Is(err, storage.ErrNotFound):
		return ProfileWithCode{}, err
	}
	return out, nil
}

func (s *ProfileService) Update(ctx context.Context, userID string, patch models.PatientProfilePatch) (models.PatientProfile, error) {
	for _, required := range []*string{patch.FirstName, patch.LastName, patch.Email, patch.Phone} {
		if required != nil && strings.TrimSpace(*required) == "" {
			return models.PatientProfile{}, fmt.Errorf("%w: required fields cannot be cleared", ErrValidation)
		}
	}
	return s.Store.UpdatePatientProfileByUserID(ctx, userID, patch)
}
