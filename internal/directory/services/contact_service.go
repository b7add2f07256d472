package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/c14220110/findmyclinic-backend/internal/models"
	"github.com/c14220110/findmyclinic-backend/pkg/storage"
)

type ContactService struct {
	Store  storage.Storage
	Logger zerolog.Logger
}

func NewContactService(store storage.Storage, logger zerolog.Logger) *ContactService {
	return &ContactService{Store: store, Logger: logger}
}

func (s *ContactService) CreateContactRequest(ctx context.Context, input models.NewContactRequest) (models.ContactRequest, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	if input.Name == "" || input.Email == "" {
		return models.ContactRequest{}, fmt.Errorf("%w: name and email are required", ErrValidation)
	}
	req, err := s.Store.CreateContactRequest(ctx, input)
	if err != nil {
		return models.ContactRequest{}, err
	}
	s.Logger.Info().Str("contactId", req.ID).Msg("contact request received")
	return req, nil
}

func (s *ContactService) ListContactRequests(ctx context.Context) ([]models.ContactRequest, error) {
	return s.Store.GetContactRequests(ctx)
}
