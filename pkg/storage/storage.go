// Package storage defines the persistence contract shared by the memory and
// MariaDB drivers.
package storage

import (
	"context"
	"time"

	"github.com/c14220110/findmyclinic-backend/internal/models"
)

// Storage is implemented by every driver. Lookups of missing records return
// ErrNotFound.
type Storage interface {
	GetUser(ctx context.Context, id string) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
	CreateUser(ctx context.Context, username, passwordHash string) (models.User, error)

	// Clinics
	GetClinics(ctx context.Context) ([]models.Clinic, error)
	GetClinic(ctx context.Context, id string) (models.Clinic, error)
	CreateClinic(ctx context.Context, input models.NewClinic) (models.Clinic, error)
	UpdateClinic(ctx context.Context, id string, update models.ClinicUpdate) (models.Clinic, error)
	SearchClinics(ctx context.Context, query models.ClinicQuery) ([]models.Clinic, error)
	// AdjustClinicQueueSize adds delta to queueSize, flooring the result at 0.
	AdjustClinicQueueSize(ctx context.Context, id string, delta int) (models.Clinic, error)

	// Patients
	GetPatient(ctx context.Context, id string) (models.Patient, error)
	GetPatientByPhone(ctx context.Context, phone string) (models.Patient, error)
	CreatePatient(ctx context.Context, input models.NewPatient) (models.Patient, error)

	// Queue tokens
	GetQueueTokens(ctx context.Context, clinicID string) ([]models.QueueToken, error)
	GetQueueToken(ctx context.Context, id string) (models.QueueToken, error)
	CreateQueueToken(ctx context.Context, input models.NewQueueToken) (models.QueueToken, error)
	UpdateQueueToken(ctx context.Context, id string, update models.QueueTokenUpdate) (models.QueueToken, error)
	GetNextTokenNumber(ctx context.Context, clinicID string) (int, error)

	// Contact requests
	CreateContactRequest(ctx context.Context, input models.NewContactRequest) (models.ContactRequest, error)
	GetContactRequests(ctx context.Context) ([]models.ContactRequest, error)

	// Patient profiles
	CreatePatientProfile(ctx context.Context, input models.NewPatientProfile) (models.PatientProfile, error)
	GetPatientProfileByID(ctx context.Context, id string) (models.PatientProfile, error)
	GetPatientProfileByUserID(ctx context.Context, userID string) (models.PatientProfile, error)
	UpdatePatientProfileByUserID(ctx context.Context, userID string, patch models.PatientProfilePatch) (models.PatientProfile, error)

	// QR codes
	CreatePatientQRCode(ctx context.Context, input models.NewPatientQRCode) (models.PatientQRCode, error)
	GetActiveQRCodeByProfileID(ctx context.Context, profileID string) (models.PatientQRCode, error)
	// RotatePatientQRCode deactivates every code of the profile and creates
	// input as its only active code in one atomic step.
	RotatePatientQRCode(ctx context.Context, input models.NewPatientQRCode) (models.PatientQRCode, error)
	IncrementQRCodeScanCount(ctx context.Context, id string, scannedAt time.Time) (models.PatientQRCode, error)
	RecordQRCodeScan(ctx context.Context, input models.NewQRCodeScan) (models.QRCodeScan, error)

	// Ambulance requests
	CreateAmbulanceRequest(ctx context.Context, input models.NewAmbulanceRequest) (models.AmbulanceRequest, error)
	GetAmbulanceRequests(ctx context.Context) ([]models.AmbulanceRequest, error)
	GetAmbulanceRequestByID(ctx context.Context, id string) (models.AmbulanceRequest, error)
	UpdateAmbulanceRequestStatus(ctx context.Context, id, status string, estimatedArrival *string, at time.Time) (models.AmbulanceRequest, error)

	// Clinic staff
	CreateClinicStaff(ctx context.Context, input models.NewClinicStaff) (models.ClinicStaff, error)
	GetClinicStaffByUserID(ctx context.Context, userID string) (models.ClinicStaff, error)
}

// NextTokenNumber returns max(existing)+1, or 1 when the clinic has no tokens.
func NextTokenNumber(tokens []models.QueueToken) int {
	next := 1
	for _, t := range tokens {
		if t.TokenNumber >= next {
			next = t.TokenNumber + 1
		}
	}
	return next
}

// StampAmbulanceStatus sets the lifecycle timestamp that matches status.
func StampAmbulanceStatus(r *models.AmbulanceRequest, status string, at time.Time) {
	r.Status = status
	switch status {
	case models.AmbulanceDispatched:
		r.DispatchedAt = &at
	case models.AmbulanceArrived:
		r.ArrivedAt = &at
	case models.AmbulanceCompleted:
		r.CompletedAt = &at
	}
}
