package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/skip2/go-qrcode"

	"github.com/c14220110/findmyclinic-backend/internal/models"
	"github.com/c14220110/findmyclinic-backend/pkg/storage"
)

const (
	QRPayloadType    = "patient_profile"
	QRPayloadVersion = "1.0"

	DefaultQRImageSize = 256
	MinQRImageSize     = 64
	MaxQRImageSize     = 1024
)

// QRPayload is the JSON document encoded into a patient's code.
type QRPayload struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	Version   string `json:"version"`
}

type QRService struct {
	Store  storage.Storage
	TTL    time.Duration
	Logger zerolog.Logger

	now func() time.Time
}

func NewQRService(store storage.Storage, ttl time.Duration, logger zerolog.Logger) *QRService {
	return &QRService{Store: store, TTL: ttl, Logger: logger, now: time.Now}
}

// Generate creates a new active code for the profile. A zero TTL means the
// code never expires.
func (s *QRService) Generate(ctx context.Context, profileID string) (models.PatientQRCode, error) {
	input, err := s.newCode(profileID)
	if err != nil {
		return models.PatientQRCode{}, err
	}
	return s.Store.CreatePatientQRCode(ctx, input)
}

func (s *QRService) newCode(profileID string) (models.NewPatientQRCode, error) {
	now := s.now()
	data, err := json.Marshal(QRPayload{
		ID:        profileID,
		Type:      QRPayloadType,
		Timestamp: now.UnixMilli(),
		Version:   QRPayloadVersion,
	})
	if err != nil {
		return models.NewPatientQRCode{}, err
	}

	input := models.NewPatientQRCode{PatientProfileID: profileID, QRCodeData: string(data)}
	if s.TTL > 0 {
		exp := now.Add(s.TTL)
		input.ExpiresAt = &exp
	}
	return input, nil
}

func (s *QRService) GetActive(ctx context.Context, profileID string) (models.PatientQRCode, error) {
	return s.Store.GetActiveQRCodeByProfileID(ctx, profileID)
}

// Image renders the active code of the profile as a PNG of size pixels,
// clamped to the supported range.
func (s *QRService) Image(ctx context.Context, profileID string, size int) ([]byte, error) {
	code, err := s.Store.GetActiveQRCodeByProfileID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(code.QRCodeData, qrcode.Medium, ClampQRImageSize(size))
}

func ClampQRImageSize(size int) int {
	switch {
	case size == 0:
		return DefaultQRImageSize
	case size < MinQRImageSize:
		return MinQRImageSize
	case size > MaxQRImageSize:
		return MaxQRImageSize
	}
	return size
}

// Regenerate replaces every code of the user's profile with a fresh one.
func (s *QRService) Regenerate(ctx context.Context, userID string) (models.PatientQRCode, error) {
	profile, err := s.Store.GetPatientProfileByUserID(ctx, userID)
	if err != nil {
		return models.PatientQRCode{}, err
	}
	input, err := s.newCode(profile.ID)
	if err != nil {
		return models.PatientQRCode{}, err
	}
	code, err := s.Store.RotatePatientQRCode(ctx, input)
	if err != nil {
		return models.PatientQRCode{}, fmt.Errorf("rotate codes: %w", err)
	}
	s.Logger.Info().Str("profileId", profile.ID).Msg("QR code regenerated")
	return code, nil
}

type ScanResult struct {
	Profile       models.PatientProfile `json:"profile"`
	ScanTimestamp string                `json:"scanTimestamp"`
}

// Scan resolves a scanned payload to its profile on behalf of a clinic
// staff member. Scans of an expired code are recorded and return ErrExpired.
func (s *QRService) Scan(ctx context.Context, staffUserID, data string) (ScanResult, error) {
	var payload QRPayload
	if err := json.Unmarshal([]byte(data), &payload); err != nil || payload.ID == "" {
		return ScanResult{}, ErrInvalidQRFormat
	}
	if payload.Type != QRPayloadType {
		return ScanResult{}, fmt.Errorf("%w: %q", ErrInvalidQRType, payload.Type)
	}

	profile, err := s.Store.GetPatientProfileByID(ctx, payload.ID)
	if err != nil {
		return ScanResult{}, err
	}

	staff, err := s.Store.GetClinicStaffByUserID(ctx, staffUserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ScanResult{}, ErrForbidden
		}
		return ScanResult{}, err
	}
	if !staff.IsActive {
		return ScanResult{}, ErrForbidden
	}

	now := s.now()
	code, err := s.Store.GetActiveQRCodeByProfileID(ctx, profile.ID)
	switch {
	case err == nil:
		result := models.ScanResultSuccess
		if code.Expired(now) {
			result = models.ScanResultExpired
		}
		if _, err := s.Store.RecordQRCodeScan(ctx, models.NewQRCodeScan{
			QRCodeID:         code.ID,
			ScannedByStaffID: staff.ID,
			ClinicID:         staff.ClinicID,
			ScanResult:       result,
			ScanData:         &data,
		}); err != nil {
			return ScanResult{}, fmt.Errorf("record scan: %w", err)
		}
		if result == models.ScanResultExpired {
			return ScanResult{}, ErrExpired
		}
		if _, err := s.Store.IncrementQRCodeScanCount(ctx, code.ID, now); err != nil {
			return ScanResult{}, fmt.Errorf("increment scan count: %w", err)
		}
	case !errors.Is(err, storage.ErrNotFound):
		return ScanResult{}, err
	}

	s.Logger.Info().Str("profileId", profile.ID).Str("clinicId", staff.ClinicID).Msg("QR code scanned")
	return ScanResult{Profile: profile, ScanTimestamp: now.UTC().Format(time.RFC3339)}, nil
}
