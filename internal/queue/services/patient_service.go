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

type PatientService struct {
	Store  storage.Storage
	Logger zerolog.Logger
}

func NewPatientService(store storage.Storage, logger zerolog.Logger) *PatientService {
	return &PatientService{Store: store, Logger: logger}
}

// RegisterPatient returns the existing patient with the same phone, or
// creates one. created reports which happened.
func (s *PatientService) RegisterPatient(ctx context.Context, input models.NewPatient) (patient models.Patient, created bool, err error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Phone = strings.TrimSpace(input.Phone)
	if input.Name == "" || input.Phone == "" {
		return models.Patient{}, false, fmt.Errorf("%w: name and phone are required", ErrValidation)
	}

	existing, err := s.Store.GetPatientByPhone(ctx, input.Phone)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return models.Patient{}, false, err
	}

	patient, err = s.Store.CreatePatient(ctx, input)
	if err != nil {
		return models.Patient{}, false, err
	}
	s.Logger.Debug().Str("patientId", patient.ID).Msg("patient registered")
	return patient, true, nil
}
