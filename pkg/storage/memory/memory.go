// Package memory is the default storage driver. Everything lives in process
// memory and is rebuilt from the seed directory on restart.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/c14220110/findmyclinic-backend/internal/models"
	"github.com/c14220110/findmyclinic-backend/pkg/storage"
	"github.com/c14220110/findmyclinic-backend/pkg/storage/seed"
)

// Store keeps each table as an insertion ordered slice plus an id index.
// A single RWMutex serialises writers so compound updates (token numbering
// and the clinic counters, QR rotation) are atomic.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	users     []models.User
	userIdx   map[string]int
	clinics   []models.Clinic
	clinicIdx map[string]int
	patients  []models.Patient
	tokens    []models.QueueToken
	tokenIdx  map[string]int
	contacts  []models.ContactRequest
	profiles  []models.PatientProfile
	qrCodes   []models.PatientQRCode
	qrIdx     map[string]int
	scans     []models.QRCodeScan
	ambulance []models.AmbulanceRequest
	ambIdx    map[string]int
	staff     []models.ClinicStaff
}

var _ storage.Storage = (*Store)(nil)

type Option func(*Store)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{
		now:       time.Now,
		userIdx:   make(map[string]int),
		clinicIdx: make(map[string]int),
		tokenIdx:  make(map[string]int),
		qrIdx:     make(map[string]int),
		ambIdx:    make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadSeed inserts the sample clinics with their mock counters and returns
// how many were added.
func (s *Store) LoadSeed(clinics []seed.Clinic) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for _, c := range clinics {
		status := c.Status
		if status == "" {
			status = models.ClinicStatusOpen
		}
		s.appendClinic(models.Clinic{
			ID:              uuid.NewString(),
			Name:            c.Name,
			Address:         c.Address,
			Area:            c.Area,
			Phone:           c.Phone,
			Email:           c.Email,
			Latitude:        c.Latitude,
			Longitude:       c.Longitude,
			CurrentWaitTime: c.CurrentWaitTime,
			QueueSize:       c.QueueSize,
			Status:          status,
			IsActive:        true,
			CreatedAt:       now,
		})
	}
	return len(clinics)
}

func (s *Store) appendClinic(c models.Clinic) {
	s.clinicIdx[c.ID] = len(s.clinics)
	s.clinics = append(s.clinics, c)
}

// Users

func (s *Store) GetUser(_ context.Context, id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.userIdx[id]
	if !ok {
		return models.User{}, fmt.Errorf("user %s: %w", id, storage.ErrNotFound)
	}
	return s.users[i], nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, fmt.Errorf("user %q: %w", username, storage.ErrNotFound)
}

func (s *Store) CreateUser(_ context.Context, username, passwordHash string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return models.User{}, fmt.Errorf("user %q: %w", username, storage.ErrConflict)
		}
	}
	u := models.User{ID: uuid.NewString(), Username: username, Password: passwordHash}
	s.userIdx[u.ID] = len(s.users)
	s.users = append(s.users, u)
	return u, nil
}

// Clinics

func (s *Store) GetClinics(_ context.Context) ([]models.Clinic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeClinics(), nil
}

func (s *Store) activeClinics() []models.Clinic {
	out := make([]models.Clinic, 0, len(s.clinics))
	for _, c := range s.clinics {
		if c.IsActive {
			out = append(out, c)
		}
	}
	return out
}

func (s *Store) GetClinic(_ context.Context, id string) (models.Clinic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.clinicIdx[id]
	if !ok {
		return models.Clinic{}, fmt.Errorf("clinic %s: %w", id, storage.ErrNotFound)
	}
	return s.clinics[i], nil
}

func (s *Store) CreateClinic(_ context.Context, input models.NewClinic) (models.Clinic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := models.Clinic{
		ID:              uuid.NewString(),
		Name:            input.Name,
		Address:         input.Address,
		Area:            input.Area,
		Phone:           input.Phone,
		Email:           input.Email,
		Latitude:        input.Latitude,
		Longitude:       input.Longitude,
		CurrentWaitTime: 0,
		QueueSize:       0,
		Status:          models.ClinicStatusOpen,
		IsActive:        true,
		CreatedAt:       s.now(),
	}
	s.appendClinic(c)
	return c, nil
}

func (s *Store) UpdateClinic(_ context.Context, id string, update models.ClinicUpdate) (models.Clinic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.clinicIdx[id]
	if !ok {
		return models.Clinic{}, fmt.Errorf("clinic %s: %w", id, storage.ErrNotFound)
	}
	update.Apply(&s.clinics[i])
	return s.clinics[i], nil
}

func (s *Store) AdjustClinicQueueSize(_ context.Context, id string, delta int) (models.Clinic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.clinicIdx[id]
	if !ok {
		return models.Clinic{}, fmt.Errorf("clinic %s: %w", id, storage.ErrNotFound)
	}
	c := &s.clinics[i]
	c.QueueSize += delta
	if c.QueueSize < 0 {
		c.QueueSize = 0
	}
	return *c, nil
}

func (s *Store) SearchClinics(_ context.Context, query models.ClinicQuery) ([]models.Clinic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	term := strings.ToLower(strings.TrimSpace(query.Search))
	area := strings.ToLower(strings.TrimSpace(query.Area))
	out := make([]models.Clinic, 0)
	for _, c := range s.activeClinics() {
		if term != "" && !strings.Contains(strings.ToLower(c.Name), term) &&
			!strings.Contains(strings.ToLower(c.Address), term) {
			continue
		}
		if area != "" && !strings.EqualFold(c.Area, area) &&
			!strings.Contains(strings.ToLower(c.Address), area) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// Patients

func (s *Store) GetPatient(_ context.Context, id string) (models.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.patients {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Patient{}, fmt.Errorf("patient %s: %w", id, storage.ErrNotFound)
}

func (s *Store) GetPatientByPhone(_ context.Context, phone string) (models.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.patients {
		if p.Phone == phone {
			return p, nil
		}
	}
	return models.Patient{}, fmt.Errorf("patient with phone %q: %w", phone, storage.ErrNotFound)
}

func (s *Store) CreatePatient(_ context.Context, input models.NewPatient) (models.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := models.Patient{
		ID:        uuid.NewString(),
		Name:      input.Name,
		Phone:     input.Phone,
		Email:     emptyToNil(input.Email),
		CreatedAt: s.now(),
	}
	s.patients = append(s.patients, p)
	return p, nil
}

// Queue tokens

func (s *Store) GetQueueTokens(_ context.Context, clinicID string) ([]models.QueueToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clinicTokens(clinicID), nil
}

func (s *Store) clinicTokens(clinicID string) []models.QueueToken {
	out := make([]models.QueueToken, 0)
	for _, t := range s.tokens {
		if t.ClinicID == clinicID {
			out = append(out, t)
		}
	}
	return out
}

func (s *Store) GetQueueToken(_ context.Context, id string) (models.QueueToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.tokenIdx[id]
	if !ok {
		return models.QueueToken{}, fmt.Errorf("queue token %s: %w", id, storage.ErrNotFound)
	}
	return s.tokens[i], nil
}

// CreateQueueToken numbers the token and bumps the clinic counters under the
// same lock, so concurrent joins never share a number.
func (s *Store) CreateQueueToken(_ context.Context, input models.NewQueueToken) (models.QueueToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ci, ok := s.clinicIdx[input.ClinicID]
	if !ok {
		return models.QueueToken{}, fmt.Errorf("clinic %s: %w", input.ClinicID, storage.ErrNotFound)
	}

	status := input.Status
	if status == "" {
		status = models.TokenStatusWaiting
	}
	var wait *int
	if input.EstimatedWaitTime != nil && *input.EstimatedWaitTime != 0 {
		w := *input.EstimatedWaitTime
		wait = &w
	}

	t := models.QueueToken{
		ID:                uuid.NewString(),
		ClinicID:          input.ClinicID,
		PatientID:         input.PatientID,
		TokenNumber:       storage.NextTokenNumber(s.clinicTokens(input.ClinicID)),
		Status:            status,
		EstimatedWaitTime: wait,
		CreatedAt:         s.now(),
	}
	s.tokenIdx[t.ID] = len(s.tokens)
	s.tokens = append(s.tokens, t)

	clinic := &s.clinics[ci]
	clinic.QueueSize++
	if wait != nil && *wait > clinic.CurrentWaitTime {
		clinic.CurrentWaitTime = *wait
	}
	return t, nil
}

func (s *Store) UpdateQueueToken(_ context.Context, id string, update models.QueueTokenUpdate) (models.QueueToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.tokenIdx[id]
	if !ok {
		return models.QueueToken{}, fmt.Errorf("queue token %s: %w", id, storage.ErrNotFound)
	}
	update.Apply(&s.tokens[i])
	return s.tokens[i], nil
}

func (s *Store) GetNextTokenNumber(_ context.Context, clinicID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return storage.NextTokenNumber(s.clinicTokens(clinicID)), nil
}

// Contact requests

func (s *Store) CreateContactRequest(_ context.Context, input models.NewContactRequest) (models.ContactRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := models.ContactRequest{
		ID:         uuid.NewString(),
		Name:       input.Name,
		Email:      input.Email,
		Phone:      emptyToNil(input.Phone),
		Message:    emptyToNil(input.Message),
		ClinicName: emptyToNil(input.ClinicName),
		CreatedAt:  s.now(),
	}
	s.contacts = append(s.contacts, r)
	return r, nil
}

func (s *Store) GetContactRequests(_ context.Context) ([]models.ContactRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ContactRequest, len(s.contacts))
	copy(out, s.contacts)
	return out, nil
}

// Patient profiles

func (s *Store) CreatePatientProfile(_ context.Context, input models.NewPatientProfile) (models.PatientProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if input.UserID != nil {
		if _, ok := s.profileByUser(*input.UserID); ok {
			return models.PatientProfile{}, fmt.Errorf("profile for user %s: %w", *input.UserID, storage.ErrConflict)
		}
	}
	details := input.PatientDetails
	if details.PreferredLanguage == "" {
		details.PreferredLanguage = "en"
	}
	now := s.now()
	p := models.PatientProfile{
		ID:             uuid.NewString(),
		UserID:         input.UserID,
		PatientDetails: details,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.profiles = append(s.profiles, p)
	return p, nil
}

func (s *Store) profileByUser(userID string) (int, bool) {
	for i, p := range s.profiles {
		if p.UserID != nil && *p.UserID == userID {
			return i, true
		}
	}
	return -1, false
}

func (s *Store) GetPatientProfileByID(_ context.Context, id string) (models.PatientProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.profiles {
		if p.ID == id {
			return p, nil
		}
	}
	return models.PatientProfile{}, fmt.Errorf("patient profile %s: %w", id, storage.ErrNotFound)
}

func (s *Store) GetPatientProfileByUserID(_ context.Context, userID string) (models.PatientProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.profileByUser(userID)
	if !ok {
		return models.PatientProfile{}, fmt.Errorf("patient profile for user %s: %w", userID, storage.ErrNotFound)
	}
	return s.profiles[i], nil
}

func (s *Store) UpdatePatientProfileByUserID(_ context.Context, userID string, patch models.PatientProfilePatch) (models.PatientProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.profileByUser(userID)
	if !ok {
		return models.PatientProfile{}, fmt.Errorf("patient profile for user %s: %w", userID, storage.ErrNotFound)
	}
	patch.Apply(&s.profiles[i].PatientDetails)
	s.profiles[i].UpdatedAt = s.now()
	return s.profiles[i], nil
}

// QR codes

func (s *Store) CreatePatientQRCode(_ context.Context, input models.NewPatientQRCode) (models.PatientQRCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertQRCodeLocked(input), nil
}

func (s *Store) RotatePatientQRCode(_ context.Context, input models.NewPatientQRCode) (models.PatientQRCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.qrCodes {
		if s.qrCodes[i].PatientProfileID == input.PatientProfileID {
			s.qrCodes[i].IsActive = false
		}
	}
	return s.insertQRCodeLocked(input), nil
}

func (s *Store) insertQRCodeLocked(input models.NewPatientQRCode) models.PatientQRCode {
	q := models.PatientQRCode{
		ID:               uuid.NewString(),
		PatientProfileID: input.PatientProfileID,
		QRCodeData:       input.QRCodeData,
		IsActive:         true,
		ExpiresAt:        input.ExpiresAt,
		CreatedAt:        s.now(),
	}
	s.qrIdx[q.ID] = len(s.qrCodes)
	s.qrCodes = append(s.qrCodes, q)
	return q
}

// GetActiveQRCodeByProfileID returns the newest active code of the profile.
func (s *Store) GetActiveQRCodeByProfileID(_ context.Context, profileID string) (models.PatientQRCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.qrCodes) - 1; i >= 0; i-- {
		q := s.qrCodes[i]
		if q.PatientProfileID == profileID && q.IsActive {
			return q, nil
		}
	}
	return models.PatientQRCode{}, fmt.Errorf("active qr code for profile %s: %w", profileID, storage.ErrNotFound)
}

func (s *Store) IncrementQRCodeScanCount(_ context.Context, id string, scannedAt time.Time) (models.PatientQRCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.qrIdx[id]
	if !ok {
		return models.PatientQRCode{}, fmt.Errorf("qr code %s: %w", id, storage.ErrNotFound)
	}
	s.qrCodes[i].ScanCount++
	s.qrCodes[i].LastScannedAt = &scannedAt
	return s.qrCodes[i], nil
}

func (s *Store) RecordQRCodeScan(_ context.Context, input models.NewQRCodeScan) (models.QRCodeScan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.qrIdx[input.QRCodeID]; !ok {
		return models.QRCodeScan{}, fmt.Errorf("qr code %s: %w", input.QRCodeID, storage.ErrNotFound)
	}
	scan := models.QRCodeScan{
		ID:               uuid.NewString(),
		QRCodeID:         input.QRCodeID,
		ScannedByStaffID: input.ScannedByStaffID,
		ClinicID:         input.ClinicID,
		ScanResult:       input.ScanResult,
		ScanData:         input.ScanData,
		CreatedAt:        s.now(),
	}
	s.scans = append(s.scans, scan)
	return scan, nil
}

// Ambulance requests

func (s *Store) CreateAmbulanceRequest(_ context.Context, input models.NewAmbulanceRequest) (models.AmbulanceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status := input.Status
	if status == "" {
		status = models.AmbulanceRequested
	}
	r := models.AmbulanceRequest{
		ID:               uuid.NewString(),
		PatientProfileID: input.PatientProfileID,
		AmbulanceDetails: input.AmbulanceDetails,
		Status:           status,
		EstimatedArrival: input.EstimatedArrival,
		CreatedAt:        s.now(),
	}
	s.ambIdx[r.ID] = len(s.ambulance)
	s.ambulance = append(s.ambulance, r)
	return r, nil
}

// GetAmbulanceRequests lists requests newest first.
func (s *Store) GetAmbulanceRequests(_ context.Context) ([]models.AmbulanceRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.AmbulanceRequest, 0, len(s.ambulance))
	for i := len(s.ambulance) - 1; i >= 0; i-- {
		out = append(out, s.ambulance[i])
	}
	return out, nil
}

func (s *Store) GetAmbulanceRequestByID(_ context.Context, id string) (models.AmbulanceRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.ambIdx[id]
	if !ok {
		return models.AmbulanceRequest{}, fmt.Errorf("ambulance request %s: %w", id, storage.ErrNotFound)
	}
	return s.ambulance[i], nil
}

func (s *Store) UpdateAmbulanceRequestStatus(_ context.Context, id, status string, estimatedArrival *string, at time.Time) (models.AmbulanceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.ambIdx[id]
	if !ok {
		return models.AmbulanceRequest{}, fmt.Errorf("ambulance request %s: %w", id, storage.ErrNotFound)
	}
	r := &s.ambulance[i]
	storage.StampAmbulanceStatus(r, status, at)
	if estimatedArrival != nil {
		eta := *estimatedArrival
		r.EstimatedArrival = &eta
	}
	return *r, nil
}

// Clinic staff

func (s *Store) CreateClinicStaff(_ context.Context, input models.NewClinicStaff) (models.ClinicStaff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}
	st := models.ClinicStaff{
		ID:        uuid.NewString(),
		UserID:    input.UserID,
		ClinicID:  input.ClinicID,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Role:      input.Role,
		Email:     input.Email,
		Phone:     emptyToNil(input.Phone),
		IsActive:  active,
		CreatedAt: s.now(),
	}
	s.staff = append(s.staff, st)
	return st, nil
}

func (s *Store) GetClinicStaffByUserID(_ context.Context, userID string) (models.ClinicStaff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.staff {
		if st.UserID == userID {
			return st, nil
		}
	}
	return models.ClinicStaff{}, fmt.Errorf("clinic staff for user %s: %w", userID, storage.ErrNotFound)
}

func emptyToNil(v *string) *string {
	if v == nil || *v == "" {
		return nil
	}
	s := *v
	return &s
}
