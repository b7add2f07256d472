package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/c14220110/findmyclinic-backend/internal/models"
	"github.com/c14220110/findmyclinic-backend/pkg/storage"
)

type QueueService struct {
	Store  storage.Storage
	Logger zerolog.Logger

	now func() time.Time
	// mu makes the read-check-write of a status change atomic.
	mu sync.Mutex
}

func NewQueueService(store storage.Storage, logger zerolog.Logger) *QueueService {
	return &QueueService{Store: store, Logger: logger, now: time.Now}
}

type JoinQueueInput struct {
	PatientID         string `json:"patientId"`
	EstimatedWaitTime *int   `json:"estimatedWaitTime"`
}

func (s *QueueService) ListTokens(ctx context.Context, clinicID string) ([]models.QueueToken, error) {
	return s.Store.GetQueueTokens(ctx, clinicID)
}

func (s *QueueService) GetToken(ctx context.Context, id string) (models.QueueToken, error) {
	return s.Store.GetQueueToken(ctx, id)
}

// JoinQueue issues the next token of the clinic. Without an estimate the
// clinic's current wait time is used.
func (s *QueueService) JoinQueue(ctx context.Context, clinicID string, input JoinQueueInput) (models.QueueToken, error) {
	clinic, err := s.Store.GetClinic(ctx, clinicID)
	if err != nil {
		return models.QueueToken{}, err
	}

	input.PatientID = strings.TrimSpace(input.PatientID)
	if input.PatientID == "" {
		return models.QueueToken{}, fmt.Errorf("%w: patientId is required", ErrValidation)
	}
	if input.EstimatedWaitTime != nil && *input.EstimatedWaitTime < 0 {
		return models.QueueToken{}, fmt.Errorf("%w: estimatedWaitTime must not be negative", ErrValidation)
	}
	if _, err := s.Store.GetPatient(ctx, input.PatientID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.QueueToken{}, fmt.Errorf("%w: unknown patient %s", ErrValidation, input.PatientID)
		}
		return models.QueueToken{}, err
	}

	wait := input.EstimatedWaitTime
	if wait == nil || *wait == 0 {
		current := clinic.CurrentWaitTime
		wait = &current
	}

	token, err := s.Store.CreateQueueToken(ctx, models.NewQueueToken{
		ClinicID:          clinicID,
		PatientID:         input.PatientID,
		Status:            models.TokenStatusWaiting,
		EstimatedWaitTime: wait,
	})
	if err != nil {
		return models.QueueToken{}, err
	}
	s.Logger.Info().Str("clinicId", clinicID).Int("tokenNumber", token.TokenNumber).Msg("queue token issued")
	return token, nil
}

// UpdateTokenStatus moves a token along its lifecycle on behalf of a staff
// member of the token's clinic.
func (s *QueueService) UpdateTokenStatus(ctx context.Context, staffUserID, id, status string) (models.QueueToken, error) {
	if !models.ValidTokenStatus(status) {
		return models.QueueToken{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.Store.GetQueueToken(ctx, id)
	if err != nil {
		return models.QueueToken{}, err
	}
	staff, err := s.Store.GetClinicStaffByUserID(ctx, staffUserID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return models.QueueToken{}, fmt.Errorf("staff lookup: %w", err)
	}
	if err != nil || !staff.IsActive || staff.ClinicID != token.ClinicID {
		return models.QueueToken{}, fmt.Errorf("%w: not staff of clinic %s", ErrForbidden, token.ClinicID)
	}
	if !ValidTransition(status, token.Status) {
		return models.QueueToken{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, token.Status, status)
	}

	now := s.now()
	update := models.QueueTokenUpdate{Status: &status}
	switch status {
	case models.TokenStatusCalled:
		update.CalledAt = &now
	case models.TokenStatusCompleted:
		update.CompletedAt = &now
	}

	updated, err := s.Store.UpdateQueueToken(ctx, id, update)
	if err != nil {
		return models.QueueToken{}, err
	}
	if status == models.TokenStatusCompleted || status == models.TokenStatusCancelled {
		if _, err := s.Store.AdjustClinicQueueSize(ctx, updated.ClinicID, -1); err != nil {
			return models.QueueToken{}, fmt.Errorf("adjust queue size: %w", err)
		}
	}
	s.Logger.Info().Str("tokenId", id).Str("from", token.Status).Str("to", status).Msg("queue token status changed")
	return updated, nil
}

type Estimate struct {
	Urgency string `json:"urgency"`
	Minutes int    `json:"minutes"`
}

func (s *QueueService) Estimate(urgency string) Estimate {
	return Estimate{Urgency: urgency, Minutes: models.EstimateMinutes(urgency)}
}
