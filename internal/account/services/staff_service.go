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

type StaffService struct {
	Store  storage.Storage
	Logger zerolog.Logger
}

func NewStaffService(store storage.Storage, logger zerolog.Logger) *StaffService {
	return &StaffService{Store: store, Logger: logger}
}

func (s *StaffService) Create(ctx context.Context, input models.NewClinicStaff) (models.ClinicStaff, error) {
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Email = strings.TrimSpace(input.Email)
	if input.UserID == "" || input.ClinicID == "" || input.FirstName == "" || input.LastName == "" ||
		input.Role == "" || input.Email == "" {
		return models.ClinicStaff{}, fmt.Errorf("%w: userId, clinicId, firstName, lastName, role and email are required", ErrValidation)
	}
	if !models.ValidStaffRole(input.Role) {
		return models.ClinicStaff{}, fmt.Errorf("%w: unknown role %q", ErrValidation, input.Role)
	}
	if err := s.mustExist(s.Store.GetUser(ctx, input.UserID)); err != nil {
		return models.ClinicStaff{}, err
	}
	if err := s.mustExist(s.Store.GetClinic(ctx, input.ClinicID)); err != nil {
		return models.ClinicStaff{}, err
	}

	staff, err := s.Store.CreateClinicStaff(ctx, input)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidInput) || errors.Is(err, storage.ErrConflict) {
			return models.ClinicStaff{}, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return models.ClinicStaff{}, err
	}
	s.Logger.Info().Str("staffId", staff.ID).Str("clinicId", staff.ClinicID).Str("role", staff.Role).Msg("clinic staff created")
	return staff, nil
}

// mustExist turns a lookup miss into a validation error.
func (s *StaffService) mustExist(_ any, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return err
}

func (s *StaffService) GetByUserID(ctx context.Context, userID string) (models.ClinicStaff, error) {
	return s.Store.GetClinicStaffByUserID(ctx, userID)
}
